package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/taskflow/taskflow-go/internal/model"
)

// UserRepository handles user persistence operations.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, email, password_hash, name, refresh_token, created_at, updated_at`

// Create inserts a new user. The caller assigns the ID.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, nullString(user.Name), nullString(user.RefreshToken), now, now,
	)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

// GetByEmail retrieves a user by their email address. The match is exact.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

// GetByID retrieves a user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// SetRefreshToken overwrites the stored refresh token, revoking any previous one.
func (r *UserRepository) SetRefreshToken(ctx context.Context, userID, token string) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, token, time.Now().UTC(), userID)
	if err != nil {
		return err
	}
	return expectOneRow(result, ErrUserNotFound)
}

// RotateRefreshToken replaces oldToken with newToken only if oldToken is still
// the stored value. Of several concurrent rotations of the same token, exactly
// one succeeds; the rest get ErrStaleRefreshToken.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error {
	query := `UPDATE users SET refresh_token = ?, updated_at = ? WHERE id = ? AND refresh_token = ?`

	result, err := r.db.ExecContext(ctx, query, newToken, time.Now().UTC(), userID, oldToken)
	if err != nil {
		return err
	}
	return expectOneRow(result, ErrStaleRefreshToken)
}

// ClearRefreshToken removes the stored refresh token. Clearing an already
// cleared token, or a missing user, is not an error.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `UPDATE users SET refresh_token = NULL, updated_at = ? WHERE id = ?`

	_, err := r.db.ExecContext(ctx, query, time.Now().UTC(), userID)
	return err
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		user         model.User
		name         sql.NullString
		refreshToken sql.NullString
	)
	err := row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &name, &refreshToken, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	user.Name = stringPtr(name)
	user.RefreshToken = stringPtr(refreshToken)
	return &user, nil
}

// expectOneRow maps an UPDATE/DELETE that touched no rows to notFound.
func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
