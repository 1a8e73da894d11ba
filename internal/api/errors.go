package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/taskherald/taskherald/internal/domain"
	"github.com/taskherald/taskherald/internal/service"
	"github.com/taskherald/taskherald/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Validation errors
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrAlreadyFinished):
		return http.StatusConflict

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Domain validation messages are written for user display; strip the
	// "validation failed: " family prefix.
	case errors.Is(err, domain.ErrValidation):
		msg := err.Error()
		if rest, ok := strings.CutPrefix(msg, domain.ErrValidation.Error()+": "); ok {
			return rest
		}
		return msg

	case errors.Is(err, store.ErrTaskNotFound):
		return "Task not found"

	case errors.Is(err, store.ErrNotFound):
		return "Not found"

	case errors.Is(err, service.ErrAlreadyFinished):
		return "Task is already finished"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	default:
		return "An unexpected error occurred"
	}
}
