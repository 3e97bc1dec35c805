package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/taskflow/taskflow-go/internal/model"
)

// MemoryStore is a process-local stand-in for the MySQL schema, used when no
// DSN is configured and in tests. One mutex guards all tables, which gives
// the same atomicity the SQL adapters get from single statements.
type MemoryStore struct {
	mu             sync.RWMutex
	users          map[string]model.User
	tasks          map[string]model.Task
	categories     map[string]model.Category
	taskCategories map[string]map[string]struct{}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:          make(map[string]model.User),
		tasks:          make(map[string]model.Task),
		categories:     make(map[string]model.Category),
		taskCategories: make(map[string]map[string]struct{}),
	}
}

// MemoryUserRepository implements the user store on a MemoryStore.
type MemoryUserRepository struct {
	s *MemoryStore
}

// NewMemoryUserRepository creates a new MemoryUserRepository backed by s.
func NewMemoryUserRepository(s *MemoryStore) *MemoryUserRepository {
	return &MemoryUserRepository{s: s}
}

// Create inserts a user. A duplicate email yields ErrDuplicateEmail.
func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email {
			return ErrDuplicateEmail
		}
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = cloneUser(*user)
	return nil
}

// GetByEmail returns a copy of the user with the given email, or ErrUserNotFound.
func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			found := cloneUser(u)
			return &found, nil
		}
	}
	return nil, ErrUserNotFound
}

// GetByID returns a copy of the user, or ErrUserNotFound.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	found := cloneUser(u)
	return &found, nil
}

// SetRefreshToken replaces the stored refresh token unconditionally.
func (r *MemoryUserRepository) SetRefreshToken(_ context.Context, userID, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.RefreshToken = &token
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

// RotateRefreshToken swaps oldToken for newToken only if oldToken is still
// the stored one. Otherwise it returns ErrStaleRefreshToken.
func (r *MemoryUserRepository) RotateRefreshToken(_ context.Context, userID, oldToken, newToken string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[userID]
	if !ok || u.RefreshToken == nil || *u.RefreshToken != oldToken {
		return ErrStaleRefreshToken
	}
	u.RefreshToken = &newToken
	u.UpdatedAt = time.Now().UTC()
	r.s.users[userID] = u
	return nil
}

// ClearRefreshToken removes the stored refresh token. Clearing twice is not an error.
func (r *MemoryUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if u, ok := r.s.users[userID]; ok {
		u.RefreshToken = nil
		u.UpdatedAt = time.Now().UTC()
		r.s.users[userID] = u
	}
	return nil
}

// MemoryTaskRepository implements the task store on a MemoryStore.
type MemoryTaskRepository struct {
	s *MemoryStore
}

// NewMemoryTaskRepository creates a new MemoryTaskRepository backed by s.
func NewMemoryTaskRepository(s *MemoryStore) *MemoryTaskRepository {
	return &MemoryTaskRepository{s: s}
}

// Create stores task and links the categoryIDs owned by the same user.
// Unknown or foreign category IDs are skipped.
func (r *MemoryTaskRepository) Create(_ context.Context, task *model.Task, categoryIDs []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.tasks[task.ID] = cloneTask(*task)
	r.linkCategories(task.UserID, task.ID, categoryIDs)
	task.Categories = r.categoriesOf(task.ID)
	return nil
}

// GetByID returns the user's task with its categories, or ErrTaskNotFound.
func (r *MemoryTaskRepository) GetByID(_ context.Context, userID, id string) (*model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, ErrTaskNotFound
	}
	found := cloneTask(t)
	found.Categories = r.categoriesOf(id)
	return &found, nil
}

// List returns the filtered tasks in order, skipping offset and returning at
// most limit. An offset past the end yields an empty page.
func (r *MemoryTaskRepository) List(_ context.Context, userID string, filter model.TaskFilter, order model.TaskOrder, offset, limit int) ([]model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := r.filter(userID, filter)
	sort.SliceStable(matched, taskLess(matched, order))

	page := []model.Task{}
	if offset < 0 || limit <= 0 || offset >= len(matched) {
		return page, nil
	}
	end := len(matched)
	if limit < end-offset {
		end = offset + limit
	}
	for i := offset; i < end; i++ {
		t := matched[i]
		t.Categories = r.categoriesOf(t.ID)
		page = append(page, t)
	}
	return page, nil
}

// Count returns how many of the user's tasks match filter.
func (r *MemoryTaskRepository) Count(_ context.Context, userID string, filter model.TaskFilter) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return len(r.filter(userID, filter)), nil
}

// ListAll returns every task of the user, oldest first, without categories.
func (r *MemoryTaskRepository) ListAll(_ context.Context, userID string) ([]model.Task, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tasks := r.filter(userID, model.TaskFilter{})
	sort.SliceStable(tasks, func(i, j int) bool { return tasks[i].CreatedAt.Before(tasks[j].CreatedAt) })
	return tasks, nil
}

// Update overwrites the stored task. A non-nil categoryIDs replaces its links.
func (r *MemoryTaskRepository) Update(_ context.Context, task *model.Task, categoryIDs *[]string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return ErrTaskNotFound
	}

	r.s.tasks[task.ID] = cloneTask(*task)
	if categoryIDs != nil {
		delete(r.s.taskCategories, task.ID)
		r.linkCategories(task.UserID, task.ID, *categoryIDs)
	}
	task.Categories = r.categoriesOf(task.ID)
	return nil
}

// Delete removes the user's task and its category links.
func (r *MemoryTaskRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tasks[id]
	if !ok || t.UserID != userID {
		return ErrTaskNotFound
	}
	delete(r.s.tasks, id)
	delete(r.s.taskCategories, id)
	return nil
}

// filter returns copies of the user's tasks matching f. Callers hold the lock.
func (r *MemoryTaskRepository) filter(userID string, f model.TaskFilter) []model.Task {
	search := strings.ToLower(f.Search)

	var out []model.Task
	for _, t := range r.s.tasks {
		if t.UserID != userID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		if f.CategoryID != "" {
			if _, ok := r.s.taskCategories[t.ID][f.CategoryID]; !ok {
				continue
			}
		}
		out = append(out, cloneTask(t))
	}
	return out
}

func (r *MemoryTaskRepository) linkCategories(userID, taskID string, categoryIDs []string) {
	for _, id := range categoryIDs {
		c, ok := r.s.categories[id]
		if !ok || c.UserID != userID {
			continue
		}
		if r.s.taskCategories[taskID] == nil {
			r.s.taskCategories[taskID] = make(map[string]struct{})
		}
		r.s.taskCategories[taskID][id] = struct{}{}
	}
}

func (r *MemoryTaskRepository) categoriesOf(taskID string) []model.CategoryRef {
	refs := []model.CategoryRef{}
	for id := range r.s.taskCategories[taskID] {
		if c, ok := r.s.categories[id]; ok {
			refs = append(refs, model.CategoryRef{ID: c.ID, Name: c.Name, Color: c.Color})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Name < refs[j].Name })
	return refs
}

// taskLess mirrors buildTaskOrder.
func taskLess(tasks []model.Task, order model.TaskOrder) func(i, j int) bool {
	asc := order.Direction == model.SortAsc
	newestFirst := func(a, b model.Task) bool {
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	}

	return func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		switch order.Field {
		case model.SortCreatedAt:
			if asc {
				return newestFirst(b, a)
			}
			return newestFirst(a, b)
		case model.SortDueDate:
			if (a.DueDate == nil) != (b.DueDate == nil) {
				return b.DueDate == nil
			}
			if a.DueDate != nil && !a.DueDate.Equal(*b.DueDate) {
				if asc {
					return a.DueDate.Before(*b.DueDate)
				}
				return a.DueDate.After(*b.DueDate)
			}
		}
		return newestFirst(a, b)
	}
}

// MemoryCategoryRepository implements the category store on a MemoryStore.
type MemoryCategoryRepository struct {
	s *MemoryStore
}

// NewMemoryCategoryRepository creates a new MemoryCategoryRepository backed by s.
func NewMemoryCategoryRepository(s *MemoryStore) *MemoryCategoryRepository {
	return &MemoryCategoryRepository{s: s}
}

// ListByUser returns the user's categories.
func (r *MemoryCategoryRepository) ListByUser(_ context.Context, userID string) ([]model.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	categories := []model.Category{}
	for _, c := range r.s.categories {
		if c.UserID == userID {
			categories = append(categories, c)
		}
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
	return categories, nil
}

// ExistsByName reports whether the user already has a category called name.
func (r *MemoryCategoryRepository) ExistsByName(_ context.Context, userID, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return r.existsByName(userID, name), nil
}

// Create inserts a category, or returns ErrDuplicateCategory.
func (r *MemoryCategoryRepository) Create(_ context.Context, c *model.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.existsByName(c.UserID, c.Name) {
		return ErrDuplicateCategory
	}
	c.CreatedAt = time.Now().UTC()
	r.s.categories[c.ID] = *c
	return nil
}

// Delete removes the category and unlinks it from tasks. The tasks remain.
func (r *MemoryCategoryRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.categories[id]
	if !ok || c.UserID != userID {
		return ErrCategoryNotFound
	}
	delete(r.s.categories, id)
	for _, links := range r.s.taskCategories {
		delete(links, id)
	}
	return nil
}

func (r *MemoryCategoryRepository) existsByName(userID, name string) bool {
	for _, c := range r.s.categories {
		if c.UserID == userID && c.Name == name {
			return true
		}
	}
	return false
}

func cloneUser(u model.User) model.User {
	if u.Name != nil {
		name := *u.Name
		u.Name = &name
	}
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		u.RefreshToken = &token
	}
	return u
}

func cloneTask(t model.Task) model.Task {
	if t.Description != nil {
		d := *t.Description
		t.Description = &d
	}
	if t.DueDate != nil {
		due := *t.DueDate
		t.DueDate = &due
	}
	t.Categories = nil
	return t
}
