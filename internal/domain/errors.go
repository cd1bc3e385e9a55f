package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// Lifecycle errors
	ErrValidation    = errors.New("validation failed")
	ErrEventNotFound = errors.New("event not found")
	ErrPersistence   = errors.New("persistence failed")

	// Storage errors
	ErrStateNotFound = errors.New("ledger state not found")
	ErrCorruptState  = errors.New("ledger state is corrupt")
)

// ValidationError lists every constraint an input violated.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(e.Violations, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError returns nil when there are no violations.
func NewValidationError(violations []string) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}

// NotFoundError is returned when an id is not in the live collection.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s: %s", ErrEventNotFound, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrEventNotFound
}

// PersistenceError wraps a failed durable write. The in-memory state was not changed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.Err}
}
