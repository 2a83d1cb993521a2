// ABOUTME: Typed error taxonomy surfaced by the request pipeline
// ABOUTME: Closed tagged set so callers can branch on kind, never on message text

package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind identifies one variant of the closed failure set.
type ErrorKind string

const (
	ErrorKindGeneric        ErrorKind = "generic"
	ErrorKindValidation     ErrorKind = "validation"
	ErrorKindAuthentication ErrorKind = "authentication"
	ErrorKindAuthorization  ErrorKind = "authorization"
	ErrorKindNotFound       ErrorKind = "not_found"
)

// Default user-facing messages used when the server supplies no detail.
const (
	MessageGeneric          = "Something went wrong. Please try again later."
	MessageNotAuthenticated = "You are not authenticated. Please log in."
	MessageNoPermission     = "You don't have permission to access this resource."
	MessageCSRFFailed       = "CSRF validation failed. Please refresh and try again."
	MessageNotFound         = "The requested resource was not found."
)

// APIError is the one error type that crosses the pipeline boundary. Every
// unrecoverable failure is converted into exactly one APIError; raw responses
// and transport errors never reach callers directly.
type APIError struct {
	Kind        ErrorKind
	Message     string
	HTTPStatus  int    // 0 when the failure happened before any response
	StatusText  string // empty when HTTPStatus is 0
	FieldIssues []string
	Cause       error
}

func (e *APIError) Error() string {
	if e.HTTPStatus > 0 {
		return fmt.Sprintf("%s: %s (status %d %s)", e.Kind, e.Message, e.HTTPStatus, e.StatusText)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Cause
}

// JoinedIssues renders the field-level issues of a validation error as a
// single human-readable string.
func (e *APIError) JoinedIssues() string {
	return strings.Join(e.FieldIssues, "; ")
}

// NewGenericError covers everything not claimed by a more specific kind,
// including unset configuration and unparseable error bodies.
func NewGenericError(message string, cause error) *APIError {
	if message == "" {
		message = MessageGeneric
	}
	return &APIError{Kind: ErrorKindGeneric, Message: message, Cause: cause}
}

// NewValidationError reports a request rejected before dispatch. The issues
// list carries one entry per offending field.
func NewValidationError(message string, issues []string) *APIError {
	return &APIError{Kind: ErrorKindValidation, Message: message, FieldIssues: issues}
}

func NewAuthenticationError(message string) *APIError {
	if message == "" {
		message = MessageNotAuthenticated
	}
	return &APIError{Kind: ErrorKindAuthentication, Message: message}
}

func NewAuthorizationError(message string) *APIError {
	if message == "" {
		message = MessageNoPermission
	}
	return &APIError{Kind: ErrorKindAuthorization, Message: message}
}

func NewNotFoundError(message string) *APIError {
	if message == "" {
		message = MessageNotFound
	}
	return &APIError{Kind: ErrorKindNotFound, Message: message}
}

// WithStatus attaches the HTTP status line that produced the error.
func (e *APIError) WithStatus(status int, statusText string) *APIError {
	e.HTTPStatus = status
	e.StatusText = statusText
	return e
}

// KindOf extracts the taxonomy kind from any error chain. Errors that are not
// an APIError report ErrorKindGeneric.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ErrorKindGeneric
}

func IsAuthenticationError(err error) bool { return isKind(err, ErrorKindAuthentication) }
func IsAuthorizationError(err error) bool  { return isKind(err, ErrorKindAuthorization) }
func IsNotFoundError(err error) bool       { return isKind(err, ErrorKindNotFound) }
func IsValidationError(err error) bool     { return isKind(err, ErrorKindValidation) }

func isKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
