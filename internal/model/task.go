package model

import "time"

// Priority is the urgency of a task. Its rank, not its name, defines ordering.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists every priority from highest to lowest.
var Priorities = []Priority{PriorityUrgent, PriorityHigh, PriorityMedium, PriorityLow}

// Rank maps a priority to its numeric order: URGENT=0 (highest) through LOW=3.
// Unknown values sort after LOW.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 3
	}
	return len(Priorities)
}

// Status is the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// Statuses lists every status value.
var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted}

// Task is a user-owned unit of work.
type Task struct {
	ID          string        `json:"id"`
	UserID      string        `json:"userId"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Priority    Priority      `json:"priority"`
	Status      Status        `json:"status"`
	DueDate     *time.Time    `json:"dueDate"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Categories  []CategoryRef `json:"categories"`
}

// CreateTaskRequest represents a task creation request. DueDate accepts
// "YYYY-MM-DD", an RFC 3339 timestamp, or "" for none.
type CreateTaskRequest struct {
	Title       string    `json:"title" validate:"required,min=1,max=255"`
	Description *string   `json:"description"`
	Priority    *Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status      *Status   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	DueDate     *string   `json:"dueDate"`
	CategoryIDs []string  `json:"categoryIds" validate:"omitempty,max=50,dive,required"`
}

// UpdateTaskRequest is a partial update: nil fields are left unchanged.
// A DueDate of "" clears the due date; a nil DueDate keeps it.
type UpdateTaskRequest struct {
	Title       *string   `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string   `json:"description"`
	Priority    *Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status      *Status   `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	DueDate     *string   `json:"dueDate"`
	CategoryIDs *[]string `json:"categoryIds" validate:"omitempty,max=50,dive,required"`
}

// SortField names the column a task list is ordered by.
type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortDueDate   SortField = "dueDate"
	SortPriority  SortField = "priority"
)

// SortDirection is asc or desc.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// TaskFilter holds the conjunctive filters applied to a user's tasks.
// Empty fields do not filter.
type TaskFilter struct {
	Status     Status
	Priority   Priority
	Search     string
	CategoryID string
}

// TaskOrder is the ordering a store applies natively.
type TaskOrder struct {
	Field     SortField
	Direction SortDirection
}

// MaxPage bounds the page number so (page-1)*limit stays far from int overflow.
const MaxPage = 1000000

// ListTasksQuery represents the query parameters of GET /tasks.
type ListTasksQuery struct {
	Page      int           `json:"page" validate:"gte=1,lte=1000000"`
	Limit     int           `json:"limit" validate:"gte=1,lte=100"`
	Status    Status        `json:"status" validate:"omitempty,oneof=PENDING IN_PROGRESS COMPLETED"`
	Priority  Priority      `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Search    string        `json:"search" validate:"max=100"`
	Category  string        `json:"category" validate:"max=36"`
	Sort      SortField     `json:"sort" validate:"oneof=createdAt dueDate priority"`
	Direction SortDirection `json:"direction" validate:"oneof=asc desc"`
}

// DefaultListTasksQuery returns page 1 of 10, newest first.
func DefaultListTasksQuery() ListTasksQuery {
	return ListTasksQuery{
		Page:      1,
		Limit:     10,
		Sort:      SortCreatedAt,
		Direction: SortDesc,
	}
}

// Pagination describes the page returned by a task list.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// TaskList is the response body of GET /tasks.
type TaskList struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
