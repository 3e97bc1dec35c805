package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"

	"github.com/taskflow/taskflow-go/internal/model"
)

func TestNewRepositories(t *testing.T) {
	if NewUserRepository(nil) == nil {
		t.Fatal("expected non-nil UserRepository")
	}
	if NewTaskRepository(nil) == nil {
		t.Fatal("expected non-nil TaskRepository")
	}
	if NewCategoryRepository(nil) == nil {
		t.Fatal("expected non-nil CategoryRepository")
	}
}

func TestIsDuplicateEntryError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sentinel", ErrUserNotFound, false},
		{"duplicate entry", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry 'a@b.c' for key 'uq_users_email'"}, true},
		{"wrapped duplicate entry", fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062}), true},
		{"other mysql error", &mysql.MySQLError{Number: 1452}, false},
		{"message only", errors.New("Duplicate entry 'x'"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateEntryError(tt.err))
		})
	}
}

func TestBuildTaskWhere(t *testing.T) {
	tests := []struct {
		name      string
		filter    model.TaskFilter
		wantWhere string
		wantArgs  []any
	}{
		{
			name:      "ownership only",
			wantWhere: "t.user_id = ?",
			wantArgs:  []any{"u1"},
		},
		{
			name:      "status and priority",
			filter:    model.TaskFilter{Status: model.StatusPending, Priority: model.PriorityHigh},
			wantWhere: "t.user_id = ? AND t.status = ? AND t.priority = ?",
			wantArgs:  []any{"u1", model.StatusPending, model.PriorityHigh},
		},
		{
			name:      "search is lowercased and escaped",
			filter:    model.TaskFilter{Search: "Fix 100%_Now"},
			wantWhere: "t.user_id = ? AND LOWER(t.title) LIKE ?",
			wantArgs:  []any{"u1", `%fix 100\%\_now%`},
		},
		{
			name:      "category membership",
			filter:    model.TaskFilter{CategoryID: "c1"},
			wantWhere: "t.user_id = ? AND EXISTS (SELECT 1 FROM task_categories tc WHERE tc.task_id = t.id AND tc.category_id = ?)",
			wantArgs:  []any{"u1", "c1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, args := buildTaskWhere("u1", tt.filter)
			assert.Equal(t, tt.wantWhere, where)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestBuildTaskOrder(t *testing.T) {
	tests := []struct {
		order model.TaskOrder
		want  string
	}{
		{model.TaskOrder{Field: model.SortCreatedAt, Direction: model.SortDesc}, "t.created_at DESC, t.id DESC"},
		{model.TaskOrder{Field: model.SortCreatedAt, Direction: model.SortAsc}, "t.created_at ASC, t.id ASC"},
		{model.TaskOrder{Field: model.SortDueDate, Direction: model.SortAsc}, "t.due_date IS NULL, t.due_date ASC, t.created_at DESC, t.id DESC"},
		{model.TaskOrder{Field: model.SortPriority, Direction: model.SortAsc}, "t.created_at DESC, t.id DESC"},
		{model.TaskOrder{}, "t.created_at DESC, t.id DESC"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, buildTaskOrder(tt.order), "%+v", tt.order)
	}
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `a\\b\%c\_d`, escapeLike(`a\b%c_d`))
}
