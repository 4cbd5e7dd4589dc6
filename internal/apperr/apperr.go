// Package apperr defines the error taxonomy shared by the complaint service
// and the HTTP layer. Handlers match on the sentinels with errors.Is to pick
// a status code; everything unmatched is treated as a persistence failure.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed, missing or out-of-enum input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks an unknown complaint id.
	ErrNotFound = errors.New("not found")
	// ErrUnsupportedMedia marks a rejected evidence file type.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrConflict marks a duplicate feedback submission.
	ErrConflict = errors.New("conflict")
)

// Validation wraps ErrValidation with a reason.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// NotFound wraps ErrNotFound with the missing resource.
func NotFound(what string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, what)
}

// UnsupportedMedia wraps ErrUnsupportedMedia with the offending file name.
func UnsupportedMedia(filename string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedMedia, filename)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}
