package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

// CategoryHandler handles HTTP requests for category operations.
type CategoryHandler struct {
	service *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(svc *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{service: svc}
}

// HandleList handles GET /categories requests.
func (h *CategoryHandler) HandleList(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	categories, err := h.service.List(r.Context(), userID)
	if err != nil {
		return err
	}

	writeData(w, http.StatusOK, categories)
	return nil
}

// HandleCreate handles POST /categories requests.
func (h *CategoryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) error {
	userID, err := requireUser(r)
	if err != nil {
		return err
	}

	var req model.CreateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}

	category, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		return err
	}

	writeData(w, http.StatusCreated, category)
	return nil
}

// HandleDelete handles DELETE /categories/{id} requests.
func (h *CategoryHandler) HandleDelete(w http.ResponseWriter, r *http.Request) error {
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
