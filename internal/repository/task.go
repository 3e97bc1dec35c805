package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/taskflow/taskflow-go/internal/model"
)

// TaskRepository handles task persistence operations. Every query is scoped
// by user ID, so a task owned by someone else is indistinguishable from a
// missing one.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `t.id, t.user_id, t.title, t.description, t.priority, t.status, t.due_date, t.created_at, t.updated_at`

// Create inserts a task and links it to the given categories. Category IDs the
// user does not own are ignored.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task, categoryIDs []string) error {
	query := `INSERT INTO tasks (id, user_id, title, description, priority, status, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, query,
			task.ID, task.UserID, task.Title, nullString(task.Description), task.Priority, task.Status,
			nullTime(task.DueDate), task.CreatedAt.UTC(), task.UpdatedAt.UTC(),
		)
		if err != nil {
			return err
		}

		if err := linkCategories(ctx, tx, task.UserID, task.ID, categoryIDs); err != nil {
			return err
		}
		return attachCategories(ctx, tx, []*model.Task{task})
	})
}

// GetByID retrieves a task owned by userID.
func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.id = ? AND t.user_id = ?`

	task, err := scanTask(r.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if err := attachCategories(ctx, r.db, []*model.Task{task}); err != nil {
		return nil, err
	}
	return task, nil
}

// List returns one page of a user's tasks matching filter, in the given order.
func (r *TaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter, order model.TaskOrder, offset, limit int) ([]model.Task, error) {
	where, args := buildTaskWhere(userID, filter)
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE ` + where +
		` ORDER BY ` + buildTaskOrder(order) + ` LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	tasks, err := r.queryTasks(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	ptrs := make([]*model.Task, len(tasks))
	for i := range tasks {
		ptrs[i] = &tasks[i]
	}
	if err := attachCategories(ctx, r.db, ptrs); err != nil {
		return nil, err
	}
	return tasks, nil
}

// Count returns how many of a user's tasks match filter.
func (r *TaskRepository) Count(ctx context.Context, userID string, filter model.TaskFilter) (int, error) {
	where, args := buildTaskWhere(userID, filter)
	query := `SELECT COUNT(*) FROM tasks t WHERE ` + where

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// ListAll returns every task a user owns, without categories.
func (r *TaskRepository) ListAll(ctx context.Context, userID string) ([]model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks t WHERE t.user_id = ? ORDER BY t.created_at ASC`
	return r.queryTasks(ctx, query, userID)
}

// Update writes every mutable column of task. When categoryIDs is non-nil the
// task's categories are replaced by it.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task, categoryIDs *[]string) error {
	query := `UPDATE tasks SET title = ?, description = ?, priority = ?, status = ?, due_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, query,
			task.Title, nullString(task.Description), task.Priority, task.Status, nullTime(task.DueDate),
			task.UpdatedAt.UTC(), task.ID, task.UserID,
		)
		if err != nil {
			return err
		}
		if err := expectOneRow(result, ErrTaskNotFound); err != nil {
			return err
		}

		if categoryIDs != nil {
			if _, err := tx.ExecContext(ctx, `DELETE FROM task_categories WHERE task_id = ?`, task.ID); err != nil {
				return err
			}
			if err := linkCategories(ctx, tx, task.UserID, task.ID, *categoryIDs); err != nil {
				return err
			}
		}
		return attachCategories(ctx, tx, []*model.Task{task})
	})
}

// Delete removes a task owned by userID.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectOneRow(result, ErrTaskNotFound)
}

func (r *TaskRepository) queryTasks(ctx context.Context, query string, args ...any) ([]model.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	return tasks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*model.Task, error) {
	var (
		task        model.Task
		description sql.NullString
		dueDate     sql.NullTime
	)
	err := row.Scan(
		&task.ID, &task.UserID, &task.Title, &description, &task.Priority, &task.Status,
		&dueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Description = stringPtr(description)
	task.DueDate = timePtr(dueDate)
	task.Categories = []model.CategoryRef{}
	return &task, nil
}

// buildTaskWhere renders the ownership scope plus the conjunctive filters.
func buildTaskWhere(userID string, filter model.TaskFilter) (string, []any) {
	clauses := []string{"t.user_id = ?"}
	args := []any{userID}

	if filter.Status != "" {
		clauses = append(clauses, "t.status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		clauses = append(clauses, "t.priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.Search != "" {
		clauses = append(clauses, "LOWER(t.title) LIKE ?")
		args = append(args, "%"+escapeLike(strings.ToLower(filter.Search))+"%")
	}
	if filter.CategoryID != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM task_categories tc WHERE tc.task_id = t.id AND tc.category_id = ?)")
		args = append(args, filter.CategoryID)
	}

	return strings.Join(clauses, " AND "), args
}

// buildTaskOrder renders an ORDER BY list for the natively sortable fields.
// Due dates sort nulls last in both directions. Anything else falls back to
// newest first.
func buildTaskOrder(order model.TaskOrder) string {
	dir := "DESC"
	if order.Direction == model.SortAsc {
		dir = "ASC"
	}

	switch order.Field {
	case model.SortCreatedAt:
		return "t.created_at " + dir + ", t.id " + dir
	case model.SortDueDate:
		return "t.due_date IS NULL, t.due_date " + dir + ", t.created_at DESC, t.id DESC"
	}
	return "t.created_at DESC, t.id DESC"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// linkCategories associates taskID with those of categoryIDs that userID owns.
func linkCategories(ctx context.Context, q querier, userID, taskID string, categoryIDs []string) error {
	if len(categoryIDs) == 0 {
		return nil
	}

	query := `INSERT IGNORE INTO task_categories (task_id, category_id)
		SELECT ?, c.id FROM categories c WHERE c.user_id = ? AND c.id IN (` + placeholders(len(categoryIDs)) + `)`

	args := []any{taskID, userID}
	for _, id := range categoryIDs {
		args = append(args, id)
	}

	_, err := q.ExecContext(ctx, query, args...)
	return err
}

// attachCategories loads the categories of tasks in a single query.
func attachCategories(ctx context.Context, q querier, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}

	byID := make(map[string]*model.Task, len(tasks))
	args := make([]any, 0, len(tasks))
	for _, t := range tasks {
		t.Categories = []model.CategoryRef{}
		byID[t.ID] = t
		args = append(args, t.ID)
	}

	query := `SELECT tc.task_id, c.id, c.name, c.color
		FROM task_categories tc JOIN categories c ON c.id = tc.category_id
		WHERE tc.task_id IN (` + placeholders(len(args)) + `)
		ORDER BY c.name ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			taskID string
			ref    model.CategoryRef
		)
		if err := rows.Scan(&taskID, &ref.ID, &ref.Name, &ref.Color); err != nil {
			return err
		}
		if t, ok := byID[taskID]; ok {
			t.Categories = append(t.Categories, ref)
		}
	}

	return rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}
