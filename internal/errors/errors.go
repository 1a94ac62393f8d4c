package errors

import (
	"context"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// Error is a request-mappable service error: a client-safe message plus the
// HTTP status it should surface as. Internal detail stays in server logs.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

// Validation creates a 400 error for missing or malformed input.
func Validation(msg string) error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// NotFound creates a 404 error.
func NotFound(msg string) error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

// Conflict creates a 409 error (e.g. duplicate phone).
func Conflict(msg string) error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

// Unauthorized creates a 401 error (bad password).
func Unauthorized(msg string) error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

// QuotaExceeded creates a 400 error for the photo cap.
func QuotaExceeded(msg string) error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

// Map converts repo/infra errors into an HTTP status plus a client-safe
// message. Keeps handlers clean by centralizing error mapping; anything
// unrecognized becomes a generic 500.
func Map(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var svcErr *Error
	switch {
	case errors.As(err, &svcErr):
		return svcErr.Status, svcErr.Message

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
