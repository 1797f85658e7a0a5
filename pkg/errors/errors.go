// Package errors defines the failure kinds shared by the repositories and the analytics engine.
// Callers map a Kind to a transport status; nothing below the HTTP layer knows about status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
)

type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindValidation         Kind = "validation"
	KindStorageUnavailable Kind = "storage_unavailable"
	KindQueryFailure       Kind = "query_failure"
)

const (
	titleStorageUnavailable = "Database connection failed"
	titleValidation         = "Validation error"
)

// Error is a classified failure. Title is the short category rendered as the "error" field of a
// response body and Message is the detail.
type Error struct {
	Kind    Kind
	Title   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Title, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Title, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status the kind maps to.
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsServerFault reports whether the failure originates on the server side.
func (e *Error) IsServerFault() bool {
	return e.Kind == KindStorageUnavailable || e.Kind == KindQueryFailure
}

// ToHTTPError renders the failure as an ectoerror HTTP error carrying the message.
func (e *Error) ToHTTPError() *httperror.HTTPError {
	return httperror.NewHTTPError(e.StatusCode(), e.Message)
}

// NotFound builds an entity-specific not found error.
func NotFound(title string, format string, args ...any) *Error {
	return &Error{
		Kind:    KindNotFound,
		Title:   title,
		Message: fmt.Sprintf(format, args...),
	}
}

// Validation builds a client-side validation error.
func Validation(format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Title:   titleValidation,
		Message: fmt.Sprintf(format, args...),
	}
}

// StorageUnavailable reports that no connection could be obtained from the store.
func StorageUnavailable(cause error) *Error {
	msg := "storage is unavailable"
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Kind:    KindStorageUnavailable,
		Title:   titleStorageUnavailable,
		Message: msg,
		Cause:   cause,
	}
}

// QueryFailure reports that a statement failed to execute. The title names the operation.
func QueryFailure(title string, cause error) *Error {
	msg := title
	if cause != nil {
		msg = cause.Error()
	}
	return &Error{
		Kind:    KindQueryFailure,
		Title:   title,
		Message: msg,
		Cause:   cause,
	}
}

// As extracts an *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of err, or an empty Kind when err is not classified.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return ""
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
