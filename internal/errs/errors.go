// Package errs provides the unified error type used across all of DocDeck.
//
// Every subsystem (docstore backends, filestore, session, server, …) wraps
// its native errors into *errs.Error before returning them to callers.
// Callers use the Is* predicates to handle errors without importing
// driver-specific packages.
//
// Usage:
//
//	// In a backend, wrap native errors:
//	return errs.Wrap(errs.ErrKindTimeout, "find timed out", err)
//
//	// In a handler, pick a status from the kind:
//	w.WriteHeader(errs.HTTPStatus(err))
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrKind categorises an error without exposing subsystem-specific codes.
// All backends (MongoDB, Postgres, MySQL, MinIO, …) map their native errors
// to one of these kinds, giving callers a single consistent API.
type ErrKind int

const (
	ErrKindUnknown              ErrKind = iota
	ErrKindNotFound                     // no document, no object, no bucket
	ErrKindConnectionFailed             // bad connection string, unreachable host, auth at connect time
	ErrKindTimeout                      // context deadline / cancellation
	ErrKindQueryFailed                  // driver operation error
	ErrKindInvalidInput                 // bad arguments from the caller
	ErrKindPermissionDenied             // access denied
	ErrKindNotConnected                 // no live connection handle
	ErrKindInvalidFilter                // filter text is not a JSON object
	ErrKindUnsupportedOperation         // unknown query operation
	ErrKindConflict                     // duplicate key / constraint violation
)

func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "not_found"
	case ErrKindConnectionFailed:
		return "connection_failed"
	case ErrKindTimeout:
		return "timeout"
	case ErrKindQueryFailed:
		return "query_failed"
	case ErrKindInvalidInput:
		return "invalid_input"
	case ErrKindPermissionDenied:
		return "permission_denied"
	case ErrKindNotConnected:
		return "not_connected"
	case ErrKindInvalidFilter:
		return "invalid_filter"
	case ErrKindUnsupportedOperation:
		return "unsupported_operation"
	case ErrKindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by all DocDeck subsystems.
// Backends produce it; callers inspect it via the Is* predicates below.
type Error struct {
	Kind    ErrKind
	Message string
	Cause   error // original driver-level error, preserved for logging
}

func (e *Error) Error() string {
	if e.Message == "" && e.Cause != nil {
		return fmt.Sprintf("[%s] %v", e.Kind, e.Cause)
	}
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap allows errors.Is / errors.As to traverse the cause chain.
func (e *Error) Unwrap() error {
	return e.Cause
}

// --- Constructors ---

// New creates an *Error with the given kind and message and no cause.
func New(kind ErrKind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Newf is New with a formatted message.
func Newf(kind ErrKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an *Error with the given kind, message, and an underlying cause.
func Wrap(kind ErrKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// --- Predicates ---

// IsNotFound reports whether err represents a "not found" result.
func IsNotFound(err error) bool {
	return KindOf(err) == ErrKindNotFound
}

// IsTimeout reports whether err was caused by a deadline or context cancellation.
func IsTimeout(err error) bool {
	return KindOf(err) == ErrKindTimeout
}

// IsConnectionFailed reports whether err is a connectivity or connect-time auth failure.
func IsConnectionFailed(err error) bool {
	return KindOf(err) == ErrKindConnectionFailed
}

// IsQueryFailed reports whether err is a backend operation failure.
func IsQueryFailed(err error) bool {
	return KindOf(err) == ErrKindQueryFailed
}

// IsInvalidInput reports whether err was caused by bad input from the caller.
func IsInvalidInput(err error) bool {
	return KindOf(err) == ErrKindInvalidInput
}

// IsPermissionDenied reports whether err is an access control failure.
func IsPermissionDenied(err error) bool {
	return KindOf(err) == ErrKindPermissionDenied
}

// IsNotConnected reports whether err was raised because no connection is open.
func IsNotConnected(err error) bool {
	return KindOf(err) == ErrKindNotConnected
}

// IsInvalidFilter reports whether err was caused by malformed filter text.
func IsInvalidFilter(err error) bool {
	return KindOf(err) == ErrKindInvalidFilter
}

// IsUnsupportedOperation reports whether err names an unknown query operation.
func IsUnsupportedOperation(err error) bool {
	return KindOf(err) == ErrKindUnsupportedOperation
}

// IsConflict reports whether err is a duplicate key or constraint violation.
func IsConflict(err error) bool {
	return KindOf(err) == ErrKindConflict
}

// KindOf extracts the ErrKind from any error in the chain.
func KindOf(err error) ErrKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ErrKindUnknown
}

// --- Transport helpers ---

// HTTPStatus maps an error to the status code the API answers with.
// Caller mistakes are 400, everything the backend raised is 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case ErrKindNotConnected, ErrKindInvalidFilter, ErrKindUnsupportedOperation, ErrKindInvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Public returns the message sent to API clients: the error message
// followed by the driver's own text, without the kind prefix.
func Public(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	switch {
	case e.Cause == nil:
		return e.Message
	case e.Message == "":
		return Public(e.Cause)
	default:
		return e.Message + ": " + Public(e.Cause)
	}
}
