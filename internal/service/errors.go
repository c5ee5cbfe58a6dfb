// Package service maps repository records to response DTOs and
// translates storage errors into the outcomes handlers report.
package service

import "errors"

var (
	ErrTodoNotFound    = errors.New("todo not found")
	ErrProfileNotFound = errors.New("profile not found")

	// ErrAvatarsDisabled is returned when no object store is configured.
	ErrAvatarsDisabled = errors.New("avatar uploads are disabled")
	ErrAvatarTooLarge  = errors.New("avatar too large")
	// ErrAvatarType rejects uploads that are not images.
	ErrAvatarType = errors.New("avatar must be an image")
)
