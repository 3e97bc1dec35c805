package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/taskflow/taskflow-go/internal/model"
)

// CategoryRepository handles category persistence operations.
type CategoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new CategoryRepository.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// ListByUser returns a user's categories ordered by name.
func (r *CategoryRepository) ListByUser(ctx context.Context, userID string) ([]model.Category, error) {
	query := `SELECT id, user_id, name, color, created_at FROM categories WHERE user_id = ? ORDER BY name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.CreatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// ExistsByName reports whether userID already has a category called name.
func (r *CategoryRepository) ExistsByName(ctx context.Context, userID, name string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE user_id = ? AND name = ?)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, userID, name).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// Create inserts a category. The (user, name) unique key is the final arbiter
// of duplicates.
func (r *CategoryRepository) Create(ctx context.Context, c *model.Category) error {
	query := `INSERT INTO categories (id, user_id, name, color, created_at) VALUES (?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	if _, err := r.db.ExecContext(ctx, query, c.ID, c.UserID, c.Name, c.Color, now); err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateCategory
		}
		return err
	}

	c.CreatedAt = now
	return nil
}

// Delete removes a category owned by userID. Task associations go with it;
// the tasks stay.
func (r *CategoryRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(result, ErrCategoryNotFound)
}
