package domain

import "time"

// Todo is a single task owned by exactly one user. The table itself is
// created by the goose migrations, not by AutoMigrate.
type Todo struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"not null;index:todos_user_id_idx"`
	Title       string    `gorm:"not null"`
	IsCompleted bool      `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
}

// User is the local mirror of an identity-provider account. Only the id
// is known here; deleting the row cascades to the user's todos and profile.
type User struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

// Profile carries display data for a user.
type Profile struct {
	ID        string `gorm:"primaryKey"`
	FullName  *string
	AvatarURL *string
	CreatedAt time.Time
}
