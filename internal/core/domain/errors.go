package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCustomerNotFound  = errors.New("customer not found")
	ErrDuplicateCustomer = errors.New("customer id already exists")
	ErrValidation        = errors.New("validation failed")
	ErrPersistence       = errors.New("persistence failure")
	ErrUpstream          = errors.New("upstream provider failure")

	// ErrUnauthorized is the parent of every authentication failure below.
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = &authError{msg: "invalid username or password"}
	ErrTokenMissing       = &authError{msg: "missing authentication token"}
	ErrTokenExpired       = &authError{msg: "token has expired"}
	ErrTokenInvalid       = &authError{msg: "invalid token"}
	ErrTokenRevoked       = &authError{msg: "token has been revoked"}
)

// authError is a distinct authentication failure that also matches
// ErrUnauthorized under errors.Is.
type authError struct {
	msg string
}

func (e *authError) Error() string { return e.msg }

func (e *authError) Is(target error) bool { return target == ErrUnauthorized }

// ValidationError describes bad client input. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
