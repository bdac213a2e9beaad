// Package apperror defines the error taxonomy shared by every layer.
//
// Services and repositories return *AppError values that wrap one of the
// sentinel errors below. Handlers never inspect messages; they use
// errors.Is against the sentinels to pick an HTTP status.
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
	ErrUpstream     = errors.New("upstream error")
)

// UpstreamKind classifies a failed call to a third-party catalog API.
type UpstreamKind string

const (
	UpstreamUnavailable UpstreamKind = "unavailable" // connection refused, DNS, missing API key
	UpstreamTimeout     UpstreamKind = "timeout"
	UpstreamBadResponse UpstreamKind = "bad_response" // non-2xx or undecodable body
)

type AppError struct {
	Err     error  // sentinel, matched with errors.Is
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Kind    UpstreamKind
	cause   error
}

func (e *AppError) Error() string {
	return e.Message
}

// Unwrap exposes both the sentinel and, for upstream errors, the transport
// error that caused it.
func (e *AppError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// Conflict reports a uniqueness violation on field. value is echoed back in
// the message when non-empty.
func Conflict(resource, field, value string) *AppError {
	msg := fmt.Sprintf("%s with this %s already exists", resource, field)
	if value != "" {
		msg = fmt.Sprintf("%s with %s %q already exists", resource, field, value)
	}
	return &AppError{
		Err:     ErrConflict,
		Message: msg,
		Field:   field,
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Upstream wraps a failed call to the named third-party source.
func Upstream(source string, kind UpstreamKind, cause error) *AppError {
	var msg string
	switch kind {
	case UpstreamTimeout:
		msg = fmt.Sprintf("%s did not respond in time", source)
	case UpstreamBadResponse:
		msg = fmt.Sprintf("%s returned an invalid response", source)
	default:
		msg = fmt.Sprintf("%s is unavailable", source)
	}
	return &AppError{
		Err:     ErrUpstream,
		Message: msg,
		Kind:    kind,
		cause:   cause,
	}
}
