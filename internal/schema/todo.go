// Package schema defines the accepted shapes for todo and profile
// mutations and validates them before they reach storage.
package schema

import (
	"strings"
)

// MaxTitleLength is counted in characters, not bytes.
const MaxTitleLength = 500

// CreateTodo is the decoded body of a create request. Fields such as id,
// userId and createdAt are deliberately absent: the server owns them.
type CreateTodo struct {
	Title string `json:"title"`
}

// UpdateTodo is the decoded body of an update request. Nil means the
// field was not supplied.
type UpdateTodo struct {
	Title       *string `json:"title"`
	IsCompleted *bool   `json:"isCompleted"`
}

// NewTodo is a validated create payload.
type NewTodo struct {
	Title string `json:"title" validate:"required,max=500"`
}

// TodoPatch is a validated update payload holding only supplied fields.
type TodoPatch struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=500"`
	IsCompleted *bool   `json:"isCompleted"`
}

// ValidateCreate trims the title and checks its length.
func ValidateCreate(in CreateTodo) (NewTodo, error) {
	out := NewTodo{Title: strings.TrimSpace(in.Title)}
	if err := check(out); err != nil {
		return NewTodo{}, err
	}
	return out, nil
}

// ValidateUpdate rejects empty patches and applies the create rules to
// a supplied title.
func ValidateUpdate(in UpdateTodo) (TodoPatch, error) {
	if in.Title == nil && in.IsCompleted == nil {
		return TodoPatch{}, invalid("At least one field (title or isCompleted) must be provided")
	}

	out := TodoPatch{IsCompleted: in.IsCompleted}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		out.Title = &title
	}
	if err := check(out); err != nil {
		return TodoPatch{}, err
	}
	return out, nil
}
