package api

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of a failed API call
type ErrorKind int

const (
	// KindTransport indicates a network or HTTP-level failure. The hub was
	// unreachable or answered with a status that carries no user-facing
	// message. Transport failures are recovered locally (rollback, retry on
	// the next poll), never shown as-is in an input surface.
	KindTransport ErrorKind = iota

	// KindValidation indicates the hub rejected the request payload
	// (duplicate address, unreachable board, missing field). Message is
	// user-facing and surfaced inline.
	KindValidation
)

// String returns a human-readable name for the error kind
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "Transport Error"
	case KindValidation:
		return "Validation Error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// Error represents a failed call to the hub
type Error struct {
	Kind       ErrorKind // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (0 for network-level failures)
	Err        error     // Underlying error (if any)
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTransportError creates a transport-level error
func NewTransportError(message string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Message: message,
		Err:     err,
	}
}

// NewHTTPError creates a transport error for an unexpected status code
func NewHTTPError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindTransport,
		Message:    message,
		StatusCode: statusCode,
	}
}

// NewValidationError creates a validation error carrying the hub's
// user-facing rejection message
func NewValidationError(statusCode int, message string) *Error {
	return &Error{
		Kind:       KindValidation,
		Message:    message,
		StatusCode: statusCode,
	}
}

// IsTransport checks if an error is a transport-level failure
func IsTransport(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindTransport
	}
	return false
}

// IsValidation checks if an error is a hub-side validation rejection
func IsValidation(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == KindValidation
	}
	return false
}

// UserMessage returns the message to surface in an input form. Validation
// errors carry the hub's own wording; anything else gets a generic line so
// transport detail never leaks into the UI.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Kind == KindValidation {
		return apiErr.Message
	}
	return "Could not reach the hub. Check the connection and try again."
}
