package entity

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound marks lookups of pending posts that no longer exist,
	// either never created or already published and forgotten.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidInput marks rejected arguments. Callers wrap it with the
	// specific complaint.
	ErrInvalidInput = errors.New("invalid input")
)

// ValidationError reports which artifact field failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
}
