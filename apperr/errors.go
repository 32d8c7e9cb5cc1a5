// Package apperr holds the error kinds shared by the engine, the store and the HTTP layer.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrPreconditionViolation = errors.New("precondition violated")
	ErrNoActiveWorkDay       = errors.New("no active work day")
	ErrNotFound              = errors.New("not found")
	ErrConfigurationMissing  = errors.New("overtime parameters are not configured")
	ErrValidation            = errors.New("validation failed")
	ErrProtected             = errors.New("record is referenced by dependent records")
	ErrForbidden             = errors.New("forbidden")
	ErrUnauthorized          = errors.New("unauthorized")
)

// PreconditionError is returned when a workflow guard refuses an action.
// It matches ErrPreconditionViolation under errors.Is.
type PreconditionError struct {
	Action  string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

func (e *PreconditionError) Unwrap() error {
	return ErrPreconditionViolation
}

// Validation wraps ErrValidation with a field-level message.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
