package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the target record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConstraintViolation is returned when a write would break a uniqueness constraint.
	ErrConstraintViolation = errors.New("constraint violation")
)

// ConstraintError names the field whose uniqueness constraint was violated.
type ConstraintError struct {
	Field string
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violation: %s already exists", e.Field)
}

func (e *ConstraintError) Unwrap() error { return ErrConstraintViolation }
