package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/pkg/errors"
	"gorm.io/gorm"
)

// StatusClientClosedRequest is reported when the caller went away mid-request.
const StatusClientClosedRequest = 499

// APIError is an error with the HTTP status and client-facing message it
// should be rendered with. The wrapped cause carries a stack trace.
type APIError struct {
	Status  int
	Message string
	cause   error
}

func (e *APIError) Error() string {
	if e.cause != nil && e.cause.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.cause }

// Stack returns the cause formatted with its stack trace.
func (e *APIError) Stack() string {
	if e.cause == nil {
		return ""
	}
	return fmt.Sprintf("%+v", e.cause)
}

func newAPIError(status int, msg string) *APIError {
	return &APIError{Status: status, Message: msg, cause: pkgerrors.New(msg)}
}

// BadRequest covers validation failures and business-rule violations
// (duplicate email, duplicate review, self-follow).
func BadRequest(msg string) *APIError { return newAPIError(http.StatusBadRequest, msg) }

// Unauthorized is a missing or invalid credential.
func Unauthorized(msg string) *APIError { return newAPIError(http.StatusUnauthorized, msg) }

// Forbidden is an authenticated caller lacking role or ownership.
func Forbidden(msg string) *APIError { return newAPIError(http.StatusForbidden, msg) }

// NotFound is a referenced entity that does not exist.
func NotFound(msg string) *APIError { return newAPIError(http.StatusNotFound, msg) }

// TooManyRequests is returned by the rate limiter.
func TooManyRequests(msg string) *APIError { return newAPIError(http.StatusTooManyRequests, msg) }

// Internal wraps an unclassified failure.
func Internal(err error) *APIError {
	if err == nil {
		err = pkgerrors.New("internal error")
	}
	return &APIError{Status: http.StatusInternalServerError, Message: err.Error(), cause: pkgerrors.WithStack(err)}
}

// Map converts repo/infra errors into APIErrors.
// Keeps service layer clean by centralizing error mapping.
func Map(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr

	case errors.Is(err, gorm.ErrRecordNotFound):
		return &APIError{Status: http.StatusNotFound, Message: "Resource not found", cause: pkgerrors.WithStack(err)}

	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &APIError{Status: http.StatusBadRequest, Message: "Duplicate value", cause: pkgerrors.WithStack(err)}

	case errors.Is(err, context.DeadlineExceeded):
		return &APIError{Status: http.StatusGatewayTimeout, Message: "request timed out", cause: pkgerrors.WithStack(err)}

	case errors.Is(err, context.Canceled):
		return &APIError{Status: StatusClientClosedRequest, Message: "request was canceled", cause: pkgerrors.WithStack(err)}

	default:
		// fallback → bubble up error message for debugging
		return Internal(err)
	}
}

// MapNotFound is Map, except that a missing record becomes a 404 with msg.
func MapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NotFound(msg)
	}
	return Map(err)
}

// From returns err as an APIError, mapping it first when needed.
func From(err error) *APIError {
	var apiErr *APIError
	if errors.As(Map(err), &apiErr) {
		return apiErr
	}
	return Internal(err)
}
