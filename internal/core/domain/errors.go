package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials        = errors.New("invalid email, password or role")
	ErrIdentityExists            = errors.New("email already registered")
	ErrDuplicateIdentity         = errors.New("a user with this email already exists")
	ErrInvalidToken              = errors.New("invalid token")
	ErrExpiredToken              = errors.New("token expired")
	ErrUnknownSubject            = errors.New("token subject no longer exists")
	ErrUnauthenticated           = errors.New("authentication required")
	ErrForbidden                 = errors.New("access forbidden")
	ErrAuthenticationUnavailable = errors.New("authentication temporarily unavailable")
	ErrValidation                = errors.New("validation failed")

	ErrUserNotFound   = errors.New("user not found")
	ErrIssueNotFound  = errors.New("issue not found")
	ErrReportNotFound = errors.New("report not found")

	// Storage-level errors returned by resource stores.
	ErrRecordNotFound = errors.New("record not found")
	ErrRecordConflict = errors.New("record conflicts with an existing record")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Required returns a ValidationError for a missing field.
func Required(field string) error {
	return &ValidationError{Field: field, Reason: "is required"}
}

// Invalid returns a ValidationError with a custom reason.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
