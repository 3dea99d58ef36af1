package services

import (
	"errors"
	"fmt"
)

// Errors returned by the services. Their text is safe to show to clients.
var (
	ErrDuplicateUsername    = errors.New("username already taken")
	ErrAlreadyExists        = errors.New("username or email already in use")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNotAuthenticated     = errors.New("user not authenticated")
	ErrWrongCurrentPassword = errors.New("wrong current password")
	ErrPasswordMismatch     = errors.New("new passwords do not match")
	ErrUserNotFound         = errors.New("user not found")
	ErrForbidden            = errors.New("you do not own this expense")

	ErrNotFound        = errors.New("not found")
	ErrExpenseNotFound = fmt.Errorf("expense %w", ErrNotFound)
	ErrPhotoNotFound   = fmt.Errorf("photo %w", ErrNotFound)
)

// ValidationError reports bad or missing client input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
