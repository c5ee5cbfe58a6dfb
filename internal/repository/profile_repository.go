package repository

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Tomlord1122/todo-tracker/internal/domain"
	"github.com/Tomlord1122/todo-tracker/internal/schema"
)

// ProfileRepository stores one profile per user, keyed by the user id.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	// Create inserts a profile unless one exists and returns the stored row.
	Create(ctx context.Context, userID string, fullName *string) (*domain.Profile, error)
	Update(ctx context.Context, userID string, patch schema.ProfilePatch) (*domain.Profile, error)
}

type gormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GORM profile repository
func NewGormProfileRepository(db *gorm.DB) ProfileRepository {
	return &gormProfileRepository{db: db}
}

// Get returns the profile of userID or ErrNotFound
func (r *gormProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.db.WithContext(ctx).Where("id = ?", userID).Take(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("get profile", err)
	}
	return &p, nil
}

// Create inserts the profile, leaving an existing row untouched
func (r *gormProfileRepository) Create(ctx context.Context, userID string, fullName *string) (*domain.Profile, error) {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.Profile{ID: userID, FullName: fullName, CreatedAt: now()}).Error
	if err != nil {
		return nil, unavailable("create profile", err)
	}
	return r.Get(ctx, userID)
}

// Update applies the supplied fields; an empty string stores NULL
func (r *gormProfileRepository) Update(ctx context.Context, userID string, patch schema.ProfilePatch) (*domain.Profile, error) {
	updates := make(map[string]any, 2)
	if patch.FullName != nil {
		updates["full_name"] = emptyToNil(*patch.FullName)
	}
	if patch.AvatarURL != nil {
		updates["avatar_url"] = emptyToNil(*patch.AvatarURL)
	}
	if len(updates) == 0 {
		return r.Get(ctx, userID)
	}

	var p domain.Profile
	res := r.db.WithContext(ctx).
		Model(&p).
		Clauses(clause.Returning{}).
		Where("id = ?", userID).
		Updates(updates)
	if res.Error != nil {
		return nil, unavailable("update profile", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return &p, nil
}

type memoryProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

// NewMemoryProfileRepository creates an in-memory profile repository
func NewMemoryProfileRepository() ProfileRepository {
	return &memoryProfileRepository{profiles: make(map[string]domain.Profile)}
}

// Get returns the stored profile or ErrNotFound
func (r *memoryProfileRepository) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("get profile", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

// Create stores the profile unless one exists
func (r *memoryProfileRepository) Create(ctx context.Context, userID string, fullName *string) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("create profile", err)
	}
	r.mu.Lock()
	p, ok := r.profiles[userID]
	if !ok {
		p = domain.Profile{ID: userID, FullName: fullName, CreatedAt: now()}
		r.profiles[userID] = p
	}
	r.mu.Unlock()
	return &p, nil
}

// Update applies the supplied fields; an empty string clears one
func (r *memoryProfileRepository) Update(ctx context.Context, userID string, patch schema.ProfilePatch) (*domain.Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, unavailable("update profile", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.FullName != nil {
		p.FullName = emptyToNil(*patch.FullName)
	}
	if patch.AvatarURL != nil {
		p.AvatarURL = emptyToNil(*patch.AvatarURL)
	}
	r.profiles[userID] = p
	return &p, nil
}

// emptyToNil maps a cleared text field to NULL.
func emptyToNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
