package handler

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taskflow/taskflow-go/internal/apperror"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service *service.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService) *TaskHandler {
	return &TaskHandler{service: svc}
}

// HandleList handles GET /tasks requests.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		return err
	}

	list, err := h.service.List(r.Context(), userID, q)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, list)
	return nil
}

// HandleCreate handles POST /tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	var req model.CreateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	task, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		return err
	}

	writeData(w, http.StatusCreated, task)
	return nil
}

// HandleAnalytics handles GET /tasks/analytics requests.
func (h *TaskHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	analytics, err := h.service.Analytics(r.Context(), userID)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, analytics)
	return nil
}

// HandleGet handles GET /tasks/{id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	task, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, task)
	return nil
}

// HandleUpdate handles PATCH /tasks/{id} requests.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	var req model.UpdateTaskRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	task, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, task)
	return nil
}

// HandleToggle handles PATCH /tasks/{id}/toggle requests.
func (h *TaskHandler) HandleToggle(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	task, err := h.service.Toggle(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, task)
	return nil
}

// HandleDelete handles DELETE /tasks/{id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// parseListQuery reads GET /tasks parameters over the defaults and validates them.
func parseListQuery(values url.Values) (model.ListTasksQuery, error) {
	q := model.DefaultListTasksQuery()

	var err error
	if q.Page, err = intParam(values, "page", q.Page); err != nil {
		return q, err
	}
	if q.Limit, err = intParam(values, "limit", q.Limit); err != nil {
		return q, err
	}

	q.Status = model.Status(values.Get("status"))
	q.Priority = model.Priority(values.Get("priority"))
	q.Search = strings.TrimSpace(values.Get("search"))
	q.Category = values.Get("category")
	if v := values.Get("sort"); v != "" {
		q.Sort = model.SortField(v)
	}
	if v := values.Get("direction"); v != "" {
		q.Direction = model.SortDirection(v)
	}

	return q, validateStruct(q)
}

func intParam(values url.Values, key string, fallback int) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.Validation(key + " must be a number")
	}
	return n, nil
}
