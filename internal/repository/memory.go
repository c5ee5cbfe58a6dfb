package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tomlord1122/todo-tracker/internal/domain"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

// memoryTodoRepository is an in-process TodoRepository with the same
// ownership semantics as the GORM one.
type memoryTodoRepository struct {
	mu    sync.RWMutex
	todos map[string]memoryTodo
	seq   uint64
	now   func() time.Time
}

type memoryTodo struct {
	todo domain.Todo
	seq  uint64 // insertion order, breaks createdAt ties
}

// NewMemoryTodoRepository creates an in-memory todo repository with the
// same contract as the GORM one.
func NewMemoryTodoRepository() TodoRepository {
	return &memoryTodoRepository{todos: make(map[string]memoryTodo), now: now}
}

// ListByUser returns copies of the user's todos, newest first.
func (r *memoryTodoRepository) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("list todos", err)
	}

	r.mu.RLock()
	rows := make([]memoryTodo, 0)
	for _, row := range r.todos {
		if row.todo.UserID == userID {
			rows = append(rows, row)
		}
	}
	r.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].todo.CreatedAt.Equal(rows[j].todo.CreatedAt) {
			return rows[i].todo.CreatedAt.After(rows[j].todo.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})

	todos := make([]domain.Todo, 0, len(rows))
	for _, row := range rows {
		todos = append(todos, row.todo)
	}
	return todos, nil
}

// GetByID returns the todo when it exists and belongs to userID.
func (r *memoryTodoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get todo", err)
	}
	id, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	row, ok := r.todos[id]
	if !ok || row.todo.UserID != userID {
		return nil, ErrNotFound
	}
	todo := row.todo
	return &todo, nil
}

// Create stores a new incomplete todo owned by userID.
func (r *memoryTodoRepository) Create(ctx context.Context, userID string, in schema.NewTodo) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create todo", err)
	}

	todo := domain.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       in.Title,
		IsCompleted: false,
		CreatedAt:   r.now(),
	}

	r.mu.Lock()
	r.seq++
	r.todos[todo.ID] = memoryTodo{todo: todo, seq: r.seq}
	r.mu.Unlock()

	return &todo, nil
}

// Update applies the supplied fields to the caller's todo.
func (r *memoryTodoRepository) Update(ctx context.Context, id, userID string, patch schema.TodoPatch) (*domain.Todo, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("update todo", err)
	}
	id, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.todos[id]
	if !ok || row.todo.UserID != userID {
		return nil, ErrNotFound
	}
	if patch.Title != nil {
		row.todo.Title = *patch.Title
	}
	if patch.IsCompleted != nil {
		row.todo.IsCompleted = *patch.IsCompleted
	}
	r.todos[id] = row

	todo := row.todo
	return &todo, nil
}

// Delete removes the caller's todo and reports whether it existed.
func (r *memoryTodoRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, unavailable("delete todo", err)
	}
	id, ok := parseID(id)
	if !ok {
		return false, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	row, ok := r.todos[id]
	if !ok || row.todo.UserID != userID {
		return false, nil
	}
	delete(r.todos, id)
	return true, nil
}
