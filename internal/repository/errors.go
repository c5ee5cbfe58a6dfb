// Package repository holds the persistence layer. All todo and profile
// access is scoped to the acting user.
package repository

import "errors"

var (
	// ErrNotFound covers both "does not exist" and "belongs to someone else".
	ErrNotFound = errors.New("not found")

	// ErrStorageUnavailable wraps any infrastructure failure.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
