package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-tracker/internal/domain"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

// TodoRepository performs ownership-scoped todo persistence. Every method
// takes the acting user's id and only ever touches that user's rows, so a
// todo owned by someone else is reported exactly like a missing one.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID string) ([]domain.Todo, error)
	GetByID(ctx context.Context, id, userID string) (*domain.Todo, error)
	Create(ctx context.Context, userID string, in schema.NewTodo) (*domain.Todo, error)
	Update(ctx context.Context, id, userID string, patch schema.TodoPatch) (*domain.Todo, error)
	Delete(ctx context.Context, id, userID string) (bool, error)
}

// gormTodoRepository implements TodoRepository using GORM
type gormTodoRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewGormTodoRepository creates a new GORM todo repository
func NewGormTodoRepository(db *gorm.DB) TodoRepository {
	return &gormTodoRepository{db: db, now: now}
}

// ListByUser returns the user's todos, newest first.
func (r *gormTodoRepository) ListByUser(ctx context.Context, userID string) ([]domain.Todo, error) {
	todos := make([]domain.Todo, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, unavailable("list todos", err)
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

// GetByID returns the todo when it exists and belongs to userID.
func (r *gormTodoRepository) GetByID(ctx context.Context, id, userID string) (*domain.Todo, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	var todo domain.Todo
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Take(&todo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get todo", err)
	}
	return &todo, nil
}

// Create inserts a todo for userID. Id, owner, completion and timestamp
// are all decided here.
func (r *gormTodoRepository) Create(ctx context.Context, userID string, in schema.NewTodo) (*domain.Todo, error) {
	todo := &domain.Todo{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       in.Title,
		IsCompleted: false,
		CreatedAt:   r.now(),
	}
	if err := r.db.WithContext(ctx).Create(todo).Error; err != nil {
		return nil, unavailable("create todo", err)
	}
	return todo, nil
}

// Update applies the patch with one conditional UPDATE ... RETURNING, so
// ownership is checked by the same statement that writes.
func (r *gormTodoRepository) Update(ctx context.Context, id, userID string, patch schema.TodoPatch) (*domain.Todo, error) {
	id, ok := parseID(id)
	if !ok {
		return nil, ErrNotFound
	}

	updates := make(map[string]any, 2)
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.IsCompleted != nil {
		updates["is_completed"] = *patch.IsCompleted
	}
	if len(updates) == 0 {
		return r.GetByID(ctx, id, userID)
	}

	var todo domain.Todo
	res := r.db.WithContext(ctx).
		Model(&todo).
		Clauses(clause.Returning{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return nil, unavailable("update todo", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &todo, nil
}

// Delete removes the row matching both id and owner and reports whether
// anything was removed.
func (r *gormTodoRepository) Delete(ctx context.Context, id, userID string) (bool, error) {
	id, ok := parseID(id)
	if !ok {
		return false, nil
	}

	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Todo{})
	if res.Error != nil {
		return false, unavailable("delete todo", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// parseID canonicalises a todo id. Malformed ids never reach the uuid
// column, where Postgres would fail the cast instead of matching no rows.
func parseID(id string) (string, bool) {
	u, err := uuid.Parse(id)
	if err != nil {
		return "", false
	}
	return u.String(), true
}

// Postgres stores microseconds; truncating here keeps the returned record
// equal to what a later read sees.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// unavailable wraps an infrastructure failure in ErrStorageUnavailable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
