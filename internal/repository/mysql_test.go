package repository

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-go/internal/model"
)

// openTestDB connects to the MySQL instance named by TEST_DATABASE_DSN and
// applies migrations. Tests are skipped when it is unset.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set - skipping MySQL test")
	}

	db, err := NewDB(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db))
	return db
}

// createTestUser inserts a user with a unique email and removes it, with
// everything it owns, when the test ends.
func createTestUser(t *testing.T, db *sql.DB) *model.User {
	t.Helper()
	user := &model.User{
		ID:           uuid.NewString(),
		Email:        uuid.NewString() + "@example.com",
		PasswordHash: "hash",
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	t.Cleanup(func() {
		db.Exec(`DELETE FROM users WHERE id = ?`, user.ID)
	})
	return user
}

func TestMySQLUserRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	user := createTestUser(t, db)

	found, err := users.GetByEmail(ctx, user.Email)
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.Nil(t, found.RefreshToken)

	_, err = users.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)

	dup := &model.User{ID: uuid.NewString(), Email: user.Email, PasswordHash: "hash"}
	assert.ErrorIs(t, users.Create(ctx, dup), ErrDuplicateEmail)
}

func TestMySQLRefreshTokenRotation(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	users := NewUserRepository(db)
	user := createTestUser(t, db)

	require.NoError(t, users.SetRefreshToken(ctx, user.ID, "token-1"))
	require.NoError(t, users.RotateRefreshToken(ctx, user.ID, "token-1", "token-2"))
	assert.ErrorIs(t, users.RotateRefreshToken(ctx, user.ID, "token-1", "token-3"), ErrStaleRefreshToken)

	found, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.RefreshToken)
	assert.Equal(t, "token-2", *found.RefreshToken)

	// Setting the same value again still matches the row.
	require.NoError(t, users.SetRefreshToken(ctx, user.ID, "token-2"))

	require.NoError(t, users.ClearRefreshToken(ctx, user.ID))
	require.NoError(t, users.ClearRefreshToken(ctx, user.ID))
	assert.ErrorIs(t, users.RotateRefreshToken(ctx, user.ID, "token-2", "token-4"), ErrStaleRefreshToken)
}

func TestMySQLTaskRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)
	owner := createTestUser(t, db)
	other := createTestUser(t, db)

	work := &model.Category{ID: uuid.NewString(), UserID: owner.ID, Name: "work", Color: "#ff0000"}
	require.NoError(t, categories.Create(ctx, work))
	foreign := &model.Category{ID: uuid.NewString(), UserID: other.ID, Name: "work", Color: "#00ff00"}
	require.NoError(t, categories.Create(ctx, foreign))

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	due := base.AddDate(0, 0, 2)
	for i, title := range []string{"Fix login bug", "Buy milk", "fix 100% of tests"} {
		task := &model.Task{
			ID:        uuid.NewString(),
			UserID:    owner.ID,
			Title:     title,
			Priority:  model.PriorityMedium,
			Status:    model.StatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			UpdatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		var categoryIDs []string
		if i == 0 {
			task.DueDate = &due
			task.Priority = model.PriorityHigh
			categoryIDs = []string{work.ID, foreign.ID}
		}
		require.NoError(t, tasks.Create(ctx, task, categoryIDs))
	}

	newest := model.TaskOrder{Field: model.SortCreatedAt, Direction: model.SortDesc}
	all, err := tasks.List(ctx, owner.ID, model.TaskFilter{}, newest, 0, 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "fix 100% of tests", all[0].Title)
	bug := all[2]
	assert.Equal(t, []model.CategoryRef{{ID: work.ID, Name: "work", Color: "#ff0000"}}, bug.Categories)
	require.NotNil(t, bug.DueDate)
	assert.True(t, due.Equal(*bug.DueDate))

	filtered, err := tasks.List(ctx, owner.ID, model.TaskFilter{Search: "FIX"}, newest, 0, 10)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)

	literal, err := tasks.Count(ctx, owner.ID, model.TaskFilter{Search: "100%"})
	require.NoError(t, err)
	assert.Equal(t, 1, literal)

	byCategory, err := tasks.Count(ctx, owner.ID, model.TaskFilter{CategoryID: work.ID, Priority: model.PriorityHigh})
	require.NoError(t, err)
	assert.Equal(t, 1, byCategory)

	page, err := tasks.List(ctx, owner.ID, model.TaskFilter{}, newest, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	byDue, err := tasks.List(ctx, owner.ID, model.TaskFilter{}, model.TaskOrder{Field: model.SortDueDate, Direction: model.SortDesc}, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, bug.ID, byDue[0].ID)

	_, err = tasks.GetByID(ctx, other.ID, bug.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	// An update that changes nothing still counts as a match.
	unchanged, err := tasks.GetByID(ctx, owner.ID, bug.ID)
	require.NoError(t, err)
	require.NoError(t, tasks.Update(ctx, unchanged, nil))
	assert.Len(t, unchanged.Categories, 1)

	cleared := []string{}
	unchanged.Status = model.StatusCompleted
	require.NoError(t, tasks.Update(ctx, unchanged, &cleared))
	assert.Empty(t, unchanged.Categories)

	stolen := *unchanged
	stolen.UserID = other.ID
	assert.ErrorIs(t, tasks.Update(ctx, &stolen, nil), ErrTaskNotFound)

	assert.ErrorIs(t, tasks.Delete(ctx, other.ID, bug.ID), ErrTaskNotFound)
	require.NoError(t, tasks.Delete(ctx, owner.ID, bug.ID))
	_, err = tasks.GetByID(ctx, owner.ID, bug.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	remaining, err := tasks.ListAll(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestMySQLCategoryRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	tasks := NewTaskRepository(db)
	categories := NewCategoryRepository(db)
	owner := createTestUser(t, db)

	home := &model.Category{ID: uuid.NewString(), UserID: owner.ID, Name: "home", Color: "#123456"}
	require.NoError(t, categories.Create(ctx, home))
	assert.ErrorIs(t, categories.Create(ctx, &model.Category{ID: uuid.NewString(), UserID: owner.ID, Name: "home", Color: "#654321"}), ErrDuplicateCategory)
	require.NoError(t, categories.Create(ctx, &model.Category{ID: uuid.NewString(), UserID: owner.ID, Name: "Home", Color: "#654321"}))

	exists, err := categories.ExistsByName(ctx, owner.ID, "home")
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := categories.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	now := time.Now().UTC()
	task := &model.Task{
		ID:        uuid.NewString(),
		UserID:    owner.ID,
		Title:     "Water plants",
		Priority:  model.PriorityLow,
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, tasks.Create(ctx, task, []string{home.ID}))

	assert.ErrorIs(t, categories.Delete(ctx, uuid.NewString(), home.ID), ErrCategoryNotFound)
	require.NoError(t, categories.Delete(ctx, owner.ID, home.ID))

	kept, err := tasks.GetByID(ctx, owner.ID, task.ID)
	require.NoError(t, err)
	assert.Empty(t, kept.Categories)
}
