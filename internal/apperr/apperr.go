// Package apperr defines the error taxonomy shared by the store, lifecycle
// engine, and API layers, and its mapping onto HTTP status codes.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for conditions that carry no extra detail.
var (
	// ErrAuth means there is no valid session; the caller must re-authenticate.
	ErrAuth = errors.New("not authenticated")
	// ErrPermission means the actor lacks the capability for the action.
	ErrPermission = errors.New("permission denied")
	// ErrNotFound means the record vanished between read and write.
	ErrNotFound = errors.New("not found")
	// ErrConflict means an update supplied a stale version.
	ErrConflict = errors.New("version conflict")
)

// ValidationError reports a missing or invalid field on create/update.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid or missing field: %s", e.Field)
}

// Validation returns a ValidationError for the given field.
func Validation(field string) error {
	return &ValidationError{Field: field}
}

// InvalidTransitionError reports a status transition not allowed from the
// record's current state.
type InvalidTransitionError struct {
	Resource string
	From     string
	To       string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: invalid transition %q -> %q", e.Resource, e.From, e.To)
}

// StorageError reports a failed object-storage operation. Record creation
// that hits one is aborted with no metadata row persisted.
type StorageError struct {
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("object storage: %v", e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// HTTPStatus maps a taxonomy error to the HTTP status code the API returns.
func HTTPStatus(err error) int {
	var ve *ValidationError
	var te *InvalidTransitionError
	var se *StorageError
	switch {
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrPermission):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.As(err, &ve), errors.As(err, &te):
		return http.StatusBadRequest
	case errors.As(err, &se):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
