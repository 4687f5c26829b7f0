package services

import (
	"fmt"

	apperrors "github.com/charlesng35/bellcenter/pkg/errors"
)

// ValidationError reports a rejected request field. It unwraps to a field-keyed
// AppError so the HTTP layer renders it as a 400 with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap exposes the API representation of the failure.
func (e *ValidationError) Unwrap() error {
	return apperrors.NewFieldError(e.Field, e.Message)
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AccessDeniedError is returned when the caller is not an eligible inbox owner.
type AccessDeniedError struct {
	UserID string
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("user %q is not permitted to access notifications", e.UserID)
}

// Unwrap maps the denial to the forbidden API error.
func (e *AccessDeniedError) Unwrap() error {
	return apperrors.ErrForbidden
}
