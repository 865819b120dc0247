// Package domainerrors defines the coded, user-facing error taxonomy shared
// by services and the HTTP facade. Infrastructure layers return sentinel
// errors; services translate them into these before they cross a contract
// boundary.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies an error class to callers and to the HTTP mapping.
type Code string

const (
	// CodeAuthRequired: the action needs an authenticated session and none
	// is present. Surfaced as a prompt to authenticate, never retried.
	CodeAuthRequired Code = "auth_required"

	// CodeValidationFailed: recoverable input error; no remote call was made.
	// Carries per-field messages when the input is a form.
	CodeValidationFailed Code = "validation_failed"

	// CodeRemoteFailure: the upstream store API failed; local state was left
	// at last-known-good. Callers may retry manually.
	CodeRemoteFailure Code = "remote_failure"

	CodeNotFound    Code = "not_found"
	CodeConflict    Code = "conflict"
	CodeBadRequest  Code = "bad_request"
	CodeUnavailable Code = "unavailable"
	CodeInternal    Code = "internal"
)

// Error is the coded error carried across service boundaries.
type Error struct {
	Code    Code
	Message string
	// Fields holds per-field validation messages for CodeValidationFailed.
	Fields map[string]string
	cause  error
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Code)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a human-readable message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap builds a coded error that preserves the underlying cause for
// errors.Is/As chains and logging.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithFields attaches per-field validation messages.
func (e *Error) WithFields(fields map[string]string) *Error {
	e.Fields = fields
	return e
}

// CodeOf extracts the code from err, or CodeInternal when err is not a
// domain error.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code to an HTTP status for the facade's error
// envelope.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeAuthRequired:
		return http.StatusUnauthorized
	case CodeValidationFailed, CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeRemoteFailure:
		return http.StatusBadGateway
	case CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
