// Package apierror defines the error kinds reported by the service, and
// their mapping to HTTP status codes.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	Validation              Kind = "validation_error"
	NotFound                Kind = "not_found"
	Unauthorized            Kind = "unauthorized"
	NotAssociated           Kind = "not_associated"
	AlreadyOwns             Kind = "already_owns"
	RateLimited             Kind = "rate_limited"
	MetadataTooLarge        Kind = "metadata_too_large"
	CollectionUninitialized Kind = "collection_uninitialized"
	PartialMintFailure      Kind = "partial_mint_failure"
	DownstreamUnavailable   Kind = "downstream_unavailable"
	Internal                Kind = "internal_error"
)

// Status returns the HTTP status code for an error kind.
func (k Kind) Status() int {
	switch k {
	case Validation, NotAssociated, AlreadyOwns, MetadataTooLarge:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case Unauthorized:
		return http.StatusUnauthorized
	case RateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Error is an error with a kind, a client-facing message, and optional
// machine-readable data for the client.
type Error struct {
	Kind    Kind
	Message string
	// Underlying cause, reported as details.
	Err  error
	Data any
	// Seconds, only for RateLimited.
	RetryAfter int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Details returns the underlying cause as a string, or "" if there is none.
func (e *Error) Details() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) WithData(data any) *Error {
	e.Data = data
	return e
}

func RateLimit(retryAfter int, format string, args ...any) *Error {
	e := New(RateLimited, format, args...)
	e.RetryAfter = retryAfter
	return e
}

// From returns err as an *Error. Errors without a kind are reported as
// Internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: Internal, Message: "internal server error", Err: err}
}

// KindOf returns the kind of err, or "" for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}
