package apperrors

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies an application error. The HTTP layer maps kinds straight to
// status codes; services never deal in raw storage errors.
type Kind int

const (
	KindBadRequest Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindInternal
)

var kindStatus = map[Kind]int{
	KindBadRequest:   http.StatusBadRequest,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindNotFound:     http.StatusNotFound,
	KindConflict:     http.StatusConflict,
	KindInternal:     http.StatusInternalServerError,
}

// Error carries a kind, the HTTP status to respond with, and one or more
// human-readable messages.
type Error struct {
	Kind       Kind     `json:"-"`
	StatusCode int      `json:"statusCode"`
	Messages   []string `json:"messages"`
}

func (e *Error) Error() string {
	if len(e.Messages) == 0 {
		return "application error"
	}
	return strings.Join(e.Messages, ", ")
}

// New builds an Error with the default status code for its kind.
func New(kind Kind, messages ...string) *Error {
	return &Error{Kind: kind, StatusCode: kindStatus[kind], Messages: messages}
}

// WithStatus overrides the status code, e.g. 422 for schema validation
// failures that are still KindBadRequest.
func (e *Error) WithStatus(code int) *Error {
	e.StatusCode = code
	return e
}

func BadRequest(messages ...string) *Error   { return New(KindBadRequest, messages...) }
func Unauthorized(messages ...string) *Error { return New(KindUnauthorized, messages...) }
func Forbidden(messages ...string) *Error    { return New(KindForbidden, messages...) }
func NotFound(messages ...string) *Error     { return New(KindNotFound, messages...) }
func Conflict(messages ...string) *Error     { return New(KindConflict, messages...) }
func Internal(messages ...string) *Error     { return New(KindInternal, messages...) }

// Validation is a BadRequest reported as 422, matching how request schema
// violations are surfaced to clients.
func Validation(messages ...string) *Error {
	return New(KindBadRequest, messages...).WithStatus(http.StatusUnprocessableEntity)
}

// KindOf extracts the kind from any error; non-application errors count as
// internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// AsError returns err as *Error, wrapping unknown errors into a generic
// internal error so no storage detail leaks to clients.
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("Internal server error")
}
