package service

import (
	"context"

	"github.com/taskflow/taskflow-go/internal/model"
)

// UserStore persists users and their single live refresh token.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	SetRefreshToken(ctx context.Context, userID, token string) error
	// RotateRefreshToken must replace oldToken atomically and fail with
	// repository.ErrStaleRefreshToken when oldToken is no longer stored.
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// TaskStore persists tasks. Every method is scoped to the owning user.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task, categoryIDs []string) error
	GetByID(ctx context.Context, userID, id string) (*model.Task, error)
	List(ctx context.Context, userID string, filter model.TaskFilter, order model.TaskOrder, offset, limit int) ([]model.Task, error)
	Count(ctx context.Context, userID string, filter model.TaskFilter) (int, error)
	ListAll(ctx context.Context, userID string) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task, categoryIDs *[]string) error
	Delete(ctx context.Context, userID, id string) error
}

// CategoryStore persists categories.
type CategoryStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Category, error)
	ExistsByName(ctx context.Context, userID, name string) (bool, error)
	Create(ctx context.Context, c *model.Category) error
	Delete(ctx context.Context, userID, id string) error
}
