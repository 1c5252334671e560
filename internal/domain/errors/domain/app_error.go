package domain

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Status classes reported alongside every failure response.
const (
	StatusFail  = "fail"
	StatusError = "error"
)

const maxStackDepth = 32

// AppError is the single error value carried from handlers to the response writer.
//
// An operational AppError is an anticipated rejection whose message and status are safe
// to show to any client. A non-operational AppError marks a defect: production clients
// only ever see a generic message for it.
//
// All fields are set at construction and never change afterwards.
type AppError struct {
	message     string
	statusCode  int
	status      string
	operational bool
	cause       error
	stack       []uintptr
}

// New creates an operational AppError. Every error a handler raises on purpose goes
// through here.
func New(message string, statusCode int) *AppError {
	return newAppError(message, statusCode, true, nil)
}

// Wrap creates an operational AppError that keeps cause for diagnostics.
func Wrap(cause error, message string, statusCode int) *AppError {
	return newAppError(message, statusCode, true, cause)
}

// Internal classifies an arbitrary error as a defect with status 500.
func Internal(cause error) *AppError {
	message := "internal error"
	if cause != nil {
		message = cause.Error()
	}
	return newAppError(message, http.StatusInternalServerError, false, cause)
}

func newAppError(message string, statusCode int, operational bool, cause error) *AppError {
	if statusCode < 400 || statusCode > 599 {
		statusCode = http.StatusInternalServerError
	}

	pcs := make([]uintptr, maxStackDepth)
	// Skip runtime.Callers, newAppError and the exported constructor.
	n := runtime.Callers(3, pcs)

	return &AppError{
		message:     message,
		statusCode:  statusCode,
		status:      statusClass(statusCode),
		operational: operational,
		cause:       cause,
		stack:       pcs[:n],
	}
}

func statusClass(statusCode int) string {
	if statusCode/100 == 4 {
		return StatusFail
	}
	return StatusError
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e == nil {
		return "<nil app error>"
	}
	if e.cause != nil && e.cause.Error() != e.message {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying cause, if any.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

// Message returns the client-facing message.
func (e *AppError) Message() string { return e.message }

// StatusCode returns the HTTP status code.
func (e *AppError) StatusCode() int { return e.statusCode }

// Status returns "fail" for 4xx codes and "error" for everything else.
func (e *AppError) Status() string { return e.status }

// IsOperational reports whether the error is an anticipated, disclosable failure.
func (e *AppError) IsOperational() bool { return e.operational }

// Cause returns the original low-level failure, or nil.
func (e *AppError) Cause() error { return e.cause }

// StackTrace renders the call stack captured when the error was constructed.
func (e *AppError) StackTrace() string {
	var b strings.Builder
	b.WriteString(e.Error())

	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			fmt.Fprintf(&b, "\n    at %s (%s:%d)", frame.Function, frame.File, frame.Line)
		}
		if !more {
			break
		}
	}
	return b.String()
}

// AsAppError finds the first AppError in err's chain. A typed nil *AppError does not count.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr != nil {
		return appErr, true
	}
	return nil, false
}
