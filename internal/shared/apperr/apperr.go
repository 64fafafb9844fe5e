// Package apperr defines the error kinds surfaced by request handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the HTTP boundary.
type Kind int

const (
	KindUnclassified Kind = iota
	KindValidation
	KindNotFound
	KindCompilation
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindNotFound:
		return "not_found"
	case KindCompilation:
		return "compilation_error"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is user-facing; Details carries
// diagnostic text such as compiler output.
type Error struct {
	Kind    Kind
	Message string
	Details string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Validation reports missing or malformed input.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NotFound reports a referenced storage object that does not exist.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Compilation reports a compiler failure with its captured diagnostics.
func Compilation(message, details string, cause error) *Error {
	return &Error{Kind: KindCompilation, Message: message, Details: details, Cause: cause}
}

// Unclassified wraps any other failure. An empty message falls back to the
// cause's text.
func Unclassified(message string, cause error) *Error {
	e := &Error{Kind: KindUnclassified, Message: message, Cause: cause}
	if cause != nil {
		if message == "" {
			e.Message = cause.Error()
		} else {
			e.Details = cause.Error()
		}
	}
	if e.Message == "" {
		e.Message = "An error occurred"
	}
	return e
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// HTTPStatus maps err to a response status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
