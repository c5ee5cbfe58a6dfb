package repository

import (
	"context"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-tracker/internal/domain"
)

// UserRepository mirrors identity-provider accounts locally so todos and
// profiles have a row to reference.
type UserRepository interface {
	// Ensure creates the user row if it does not exist yet.
	Ensure(ctx context.Context, userID string) error
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GORM user repository
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

// Ensure inserts the user row, ignoring one that already exists.
func (r *gormUserRepository) Ensure(ctx context.Context, userID string) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.User{ID: userID, CreatedAt: now()}).Error
	if err != nil {
		return unavailable("ensure user", err)
	}
	return nil
}

type memoryUserRepository struct {
	mu    sync.Mutex
	users map[string]struct{}
}

// NewMemoryUserRepository creates an in-memory user repository
func NewMemoryUserRepository() UserRepository {
	return &memoryUserRepository{users: make(map[string]struct{})}
}

// Ensure records userID.
func (r *memoryUserRepository) Ensure(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return unavailable("ensure user", err)
	}
	r.mu.Lock()
	r.users[userID] = struct{}{}
	r.mu.Unlock()
	return nil
}
