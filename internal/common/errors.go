// Package common defines shared constants and sentinel errors used across
// the bookmarks server and client. Callers should use errors.Is / errors.As
// to match these values.
package common

import (
	"errors"
	"fmt"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal      = errors.New("internal error")
	ErrFeatureDisabled = errors.New("feature disabled")

	// Input rejected before any business logic runs.
	ErrValidation = errors.New("validation error")

	// Auth flow outcomes.
	ErrDuplicateCredential = errors.New("credentials taken")
	ErrInvalidCredential   = errors.New("invalid credentials")
	ErrUnauthenticated     = errors.New("unauthenticated")

	// Ownership outcome. Also returned when the resource does not exist.
	ErrForbidden = errors.New("access to resources denied")

	// Token errors (invalid, malformed or expired).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// ConstraintViolationError is returned by stores when a write breaks a
// uniqueness constraint. Field names the offending column.
type ConstraintViolationError struct {
	Field string
	Err   error
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("constraint violation on %q: %v", e.Field, e.Err)
}

func (e *ConstraintViolationError) Unwrap() error { return e.Err }

// ValidationError describes a rejected input field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError is a shorthand for &ValidationError{...}.
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
