package internal

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/origami-service/origami/pkg/cachecontrol"
)

// HTTPError represents an HTTP error with all data needed for rendering.
// It implements the error interface and provides structured data for
// the error handler to build the error page.
type HTTPError struct {
	// Err is the underlying error (for logging, not exposed to users).
	Err error

	// Message is the user-facing error message.
	Message string

	// MaxAge is how long the error response may be cached. Unset means 0.
	MaxAge cachecontrol.Age

	// NoTelemetry keeps the error out of Sentry.
	NoTelemetry bool

	// Stack is captured for server errors.
	Stack string

	// Code is the HTTP status code (e.g., 404, 500).
	Code int
}

func (e *HTTPError) Error() string {
	return e.Message
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

func (e *HTTPError) StatusCode() int {
	return e.Code
}

func (e *HTTPError) StatusText() string {
	return http.StatusText(e.Code)
}

func (e *HTTPError) CacheMaxAge() cachecontrol.Age {
	return e.MaxAge
}

func (e *HTTPError) SkipTelemetry() bool {
	return e.NoTelemetry
}

func (e *HTTPError) StackTrace() string {
	return e.Stack
}

// HTTPErrorOption configures an HTTPError.
type HTTPErrorOption func(*HTTPError)

// NewHTTPError creates a new HTTPError with the given status code and message.
// Server errors record the stack of the caller.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	e := &HTTPError{
		Code:    code,
		Message: message,
	}
	if code >= http.StatusInternalServerError {
		e.Stack = string(debug.Stack())
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func WithError(err error) HTTPErrorOption {
	return func(e *HTTPError) {
		e.Err = err
	}
}

// WithCacheMaxAge lets caches keep the error response for age.
func WithCacheMaxAge(age cachecontrol.Age) HTTPErrorOption {
	return func(e *HTTPError) {
		e.MaxAge = age
	}
}

// WithoutTelemetry keeps the error out of Sentry.
func WithoutTelemetry() HTTPErrorOption {
	return func(e *HTTPError) {
		e.NoTelemetry = true
	}
}

// Convenience constructors for common HTTP errors.

func ErrBadRequest(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusBadRequest, message, opts...)
}

func ErrUnauthorized(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusUnauthorized, message, opts...)
}

func ErrForbidden(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusForbidden, message, opts...)
}

func ErrNotFound(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusNotFound, message, opts...)
}

func ErrMethodNotAllowed(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusMethodNotAllowed, message, opts...)
}

func ErrInternal(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusInternalServerError, message, opts...)
}

func ErrServiceUnavailable(message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(http.StatusServiceUnavailable, message, opts...)
}

// Helper functions for error inspection.

func IsHTTPError(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr)
}

// AsHTTPError extracts the HTTPError from an error chain if present.
// Returns nil if there is none.
func AsHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return nil
}

type (
	statusReporter     interface{ Status() int }
	statusCodeReporter interface{ StatusCode() int }
	httpStatusReporter interface{ HTTPStatus() int }
)

// StatusOf resolves the response status for err. The first error in the
// chain reporting a usable code through Status, StatusCode or HTTPStatus
// (checked in that order) decides; otherwise it is 500.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusInternalServerError
	}

	var s statusReporter
	if errors.As(err, &s) && validStatus(s.Status()) {
		return s.Status()
	}
	var sc statusCodeReporter
	if errors.As(err, &sc) && validStatus(sc.StatusCode()) {
		return sc.StatusCode()
	}
	var hs httpStatusReporter
	if errors.As(err, &hs) && validStatus(hs.HTTPStatus()) {
		return hs.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// CacheMaxAgeOf returns the cache hint carried by err, if any.
func CacheMaxAgeOf(err error) cachecontrol.Age {
	var h interface{ CacheMaxAge() cachecontrol.Age }
	if errors.As(err, &h) {
		return h.CacheMaxAge()
	}
	return cachecontrol.Age{}
}

// SkipsTelemetry reports whether err asked to stay out of Sentry.
func SkipsTelemetry(err error) bool {
	var s interface{ SkipTelemetry() bool }
	return errors.As(err, &s) && s.SkipTelemetry()
}

// StackOf returns the first non-empty stack trace carried by err.
func StackOf(err error) string {
	for err != nil {
		if s, ok := err.(interface{ StackTrace() string }); ok && s.StackTrace() != "" {
			return s.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// net/http rejects codes outside this range.
func validStatus(code int) bool {
	return code >= 100 && code <= 999
}
