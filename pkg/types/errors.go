// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrInvalidInput indicates invalid input or options
	ErrInvalidInput = errors.New("invalid input")

	// ErrTimeout indicates operation timeout
	ErrTimeout = errors.New("operation timeout")

	// ErrPoolClosed indicates the worker pool no longer accepts tasks
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrPoolNotStarted indicates a submission to a pool that was never started
	ErrPoolNotStarted = errors.New("worker pool is not started")
)

// ValidationError reports malformed options or a malformed item collection.
// It is raised before any item executes and is never retried.
type ValidationError struct {
	// Field names the offending option or item path, if known
	Field string

	// Message is the human-readable reason
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is makes errors.Is(err, ErrInvalidInput) true for every ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	var validationErr *ValidationError
	return errors.As(err, &validationErr)
}
