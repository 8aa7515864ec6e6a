package directory

import (
	"errors"
	"fmt"

	"github.com/garnizeh/staffdir/pkg/repository"
)

var (
	// ErrValidation matches every *ValidationError through errors.Is.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the employee does not exist.
	ErrNotFound = repository.ErrNotFound
	// ErrConstraintViolation is returned when a write would duplicate an email.
	ErrConstraintViolation = repository.ErrConstraintViolation
)

// ValidationError reports a rejected input field. No store call was made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// Message maps err to the stable text shown to clients. Unknown errors get a
// generic message so internal causes never leak.
func Message(err error) string {
	var ve *ValidationError
	var ce *repository.ConstraintError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Reason
	case errors.Is(err, ErrNotFound):
		return "Employee not found"
	case errors.As(err, &ce):
		return capitalize(ce.Field) + " already exists"
	case errors.Is(err, ErrConstraintViolation):
		return "Email already exists"
	default:
		return "Internal server error"
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	if c := s[0]; c >= 'a' && c <= 'z' {
		return string(c-'a'+'A') + s[1:]
	}
	return s
}
