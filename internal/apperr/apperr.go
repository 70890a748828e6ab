// Package apperr defines the error taxonomy shared by all handlers.
// Every failure a handler can report carries an explicit Kind; the HTTP
// status is derived from the kind through a single lookup table instead
// of matching on message text.
package apperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Kind classifies an error for HTTP mapping.
type Kind int

const (
	Internal Kind = iota
	Validation
	Unauthorized
	Forbidden
	NotFound
	Conflict
	Unavailable
)

var statusByKind = map[Kind]int{
	Internal:     http.StatusInternalServerError,
	Validation:   http.StatusBadRequest,
	Unauthorized: http.StatusUnauthorized,
	Forbidden:    http.StatusForbidden,
	NotFound:     http.StatusNotFound,
	Conflict:     http.StatusConflict,
	Unavailable:  http.StatusServiceUnavailable,
}

// Error is a tagged application error.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// E constructs a tagged error with a client-facing message.
func E(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap tags an underlying error while keeping it available via Unwrap.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the kind from err, defaulting to Internal for
// untagged errors.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// StatusOf returns the HTTP status for err's kind.
func StatusOf(err error) int {
	return statusByKind[KindOf(err)]
}

// Respond writes err as the standard JSON error body. Untagged errors
// are reported as a generic internal error so upstream details never
// reach the client.
func Respond(c echo.Context, err error) error {
	var ae *Error
	if !errors.As(err, &ae) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal server error"})
	}
	return c.JSON(statusByKind[ae.Kind], echo.Map{"error": ae.Message})
}
