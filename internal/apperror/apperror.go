// Package apperror defines the domain error taxonomy shared by the
// repository, service and handler layers.
//
// Every constructor returns an *AppError wrapping one sentinel. Callers test
// the kind with errors.Is and read the human-readable message with errors.As;
// the handler layer is the only place that turns a kind into an HTTP status.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrCatalogEmpty = errors.New("catalog empty")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed is the InvalidInput kind: a user-correctable field problem.
func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateUsername reports a registration conflict.
func DuplicateUsername(username string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("username %q is already taken", username),
		Field:   "username",
	}
}

// AccessDenied is returned by every ownership-guarded operation when the
// principal does not own the target. The message is identical whether the
// target is missing or belongs to someone else.
func AccessDenied() *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: "access denied",
	}
}

// InvalidCredentials is the single login failure. It never says whether the
// username or the password was wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "invalid username or password",
	}
}

func CatalogEmpty() *AppError {
	return &AppError{
		Err:     ErrCatalogEmpty,
		Message: "no global foods available",
	}
}
