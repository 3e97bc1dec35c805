package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/apperror"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

// CategoryService handles category business logic.
type CategoryService struct {
	categories CategoryStore
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

// List returns the user's categories ordered by name.
func (s *CategoryService) List(ctx context.Context, userID string) ([]model.Category, error) {
	categories, err := s.categories.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return categories, nil
}

// Create adds a category. Names are unique per user.
func (s *CategoryService) Create(ctx context.Context, userID string, req model.CreateCategoryRequest) (*model.Category, error) {
	exists, err := s.categories.ExistsByName(ctx, userID, req.Name)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if exists {
		return nil, ErrCategoryExists
	}

	c := &model.Category{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicateCategory) {
			return nil, ErrCategoryExists
		}
		return nil, apperror.Internal(err)
	}
	return c, nil
}

// Delete removes a category. Tasks that carried it keep existing.
func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	if err := s.categories.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return ErrCategoryNotFound
		}
		return apperror.Internal(err)
	}
	return nil
}
