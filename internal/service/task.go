package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/apperror"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

// TaskService handles task business logic. Every operation is scoped to the
// calling user; tasks owned by someone else behave as if they did not exist.
type TaskService struct {
	tasks TaskStore
	now   func() time.Time
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks TaskStore) *TaskService {
	return &TaskService{tasks: tasks, now: time.Now}
}

// Create stores a new task. Priority defaults to MEDIUM and status to PENDING.
func (s *TaskService) Create(ctx context.Context, userID string, req model.CreateTaskRequest) (*model.Task, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	task := &model.Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    model.PriorityMedium,
		Status:      model.StatusPending,
		DueDate:     due,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}

	if err := s.tasks.Create(ctx, task, req.CategoryIDs); err != nil {
		return nil, apperror.Internal(err)
	}
	return task, nil
}

// List returns one page of the user's tasks.
//
// Sorting by priority happens after the page is fetched: the store returns
// the page newest first and it is then reordered by rank. The order is
// therefore correct within a page but not across pages.
func (s *TaskService) List(ctx context.Context, userID string, q model.ListTasksQuery) (model.TaskList, error) {
	if q.Page < 1 || q.Page > model.MaxPage || q.Limit < 1 {
		return model.TaskList{}, ErrInvalidPage
	}

	filter := model.TaskFilter{
		Status:     q.Status,
		Priority:   q.Priority,
		Search:     q.Search,
		CategoryID: q.Category,
	}

	order := model.TaskOrder{Field: q.Sort, Direction: q.Direction}
	if q.Sort == model.SortPriority {
		order = model.TaskOrder{Field: model.SortCreatedAt, Direction: model.SortDesc}
	}

	tasks, err := s.tasks.List(ctx, userID, filter, order, (q.Page-1)*q.Limit, q.Limit)
	if err != nil {
		return model.TaskList{}, apperror.Internal(err)
	}
	total, err := s.tasks.Count(ctx, userID, filter)
	if err != nil {
		return model.TaskList{}, apperror.Internal(err)
	}

	if q.Sort == model.SortPriority {
		sortByPriority(tasks, q.Direction)
	}

	return model.TaskList{
		Tasks: tasks,
		Pagination: model.Pagination{
			Page:  q.Page,
			Limit: q.Limit,
			Total: total,
			Pages: (total + q.Limit - 1) / q.Limit,
		},
	}, nil
}

// Get returns a single task.
func (s *TaskService) Get(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapTaskErr(err)
	}
	return task, nil
}

// Update applies the fields present in req. An empty due date clears it.
func (s *TaskService) Update(ctx context.Context, userID, id string, req model.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapTaskErr(err)
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = req.Description
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.DueDate != nil {
		due, err := parseDueDate(req.DueDate)
		if err != nil {
			return nil, err
		}
		task.DueDate = due
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.tasks.Update(ctx, task, req.CategoryIDs); err != nil {
		return nil, mapTaskErr(err)
	}
	return task, nil
}

// Delete removes a task.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	if err := s.tasks.Delete(ctx, userID, id); err != nil {
		return mapTaskErr(err)
	}
	return nil
}

// Toggle flips a task between PENDING and COMPLETED. IN_PROGRESS becomes
// COMPLETED.
func (s *TaskService) Toggle(ctx context.Context, userID, id string) (*model.Task, error) {
	task, err := s.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapTaskErr(err)
	}

	if task.Status == model.StatusCompleted {
		task.Status = model.StatusPending
	} else {
		task.Status = model.StatusCompleted
	}
	task.UpdatedAt = s.now().UTC()

	if err := s.tasks.Update(ctx, task, nil); err != nil {
		return nil, mapTaskErr(err)
	}
	return task, nil
}

// Analytics summarises all of the user's tasks. It is recomputed on every call.
func (s *TaskService) Analytics(ctx context.Context, userID string) (model.Analytics, error) {
	tasks, err := s.tasks.ListAll(ctx, userID)
	if err != nil {
		return model.Analytics{}, apperror.Internal(err)
	}
	return computeAnalytics(tasks, s.now()), nil
}

// sortByPriority orders tasks by rank, URGENT first for asc. Ties keep
// their fetched order.
func sortByPriority(tasks []model.Task, dir model.SortDirection) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if dir == model.SortDesc {
			return tasks[i].Priority.Rank() > tasks[j].Priority.Rank()
		}
		return tasks[i].Priority.Rank() < tasks[j].Priority.Rank()
	})
}

var dueDateLayouts = []string{"2006-01-02", time.RFC3339}

// parseDueDate reads an optional due date. Nil and "" both mean none.
func parseDueDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.Parse(layout, *raw); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, ErrInvalidDueDate
}

func mapTaskErr(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return apperror.Internal(err)
}
