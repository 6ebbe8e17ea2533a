// Package serviceerror defines the error taxonomy shared by the consent and
// audit services. Errors carry a stable code so callers can classify them
// with errors.Is regardless of the description attached at the failure site.
package serviceerror

import (
	"fmt"
	"net/http"
)

// ServiceErrorType separates caller mistakes from server faults
type ServiceErrorType string

const (
	ClientErrorType ServiceErrorType = "client_error"
	ServerErrorType ServiceErrorType = "server_error"
)

// ServiceError is an error with a stable code and HTTP mapping
type ServiceError struct {
	Code        string           `json:"code"`
	Type        ServiceErrorType `json:"type"`
	Message     string           `json:"error"`
	Description string           `json:"error_description,omitempty"`
	Cause       error            `json:"-"`
}

var (
	InternalServerError = ServiceError{
		Type:        ServerErrorType,
		Code:        "SSE-5000",
		Message:     "internal_server_error",
		Description: "An unexpected error occurred",
	}

	DatabaseError = ServiceError{
		Type:        ServerErrorType,
		Code:        "SSE-5001",
		Message:     "database_error",
		Description: "A database error occurred",
	}

	// AuditWriteError is returned when an access attempt could not be
	// persisted. No access decision is released in that case.
	AuditWriteError = ServiceError{
		Type:        ServerErrorType,
		Code:        "SSE-5002",
		Message:     "audit_write_failed",
		Description: "The access attempt could not be recorded",
	}

	ValidationError = ServiceError{
		Type:        ClientErrorType,
		Code:        "CSE-4001",
		Message:     "validation_error",
		Description: "Validation failed",
	}

	UnauthorizedError = ServiceError{
		Type:        ClientErrorType,
		Code:        "CSE-4010",
		Message:     "unauthorized",
		Description: "Authentication is required",
	}

	ForbiddenError = ServiceError{
		Type:        ClientErrorType,
		Code:        "CSE-4003",
		Message:     "forbidden",
		Description: "The caller is not allowed to perform this operation",
	}

	NotFoundError = ServiceError{
		Type:        ClientErrorType,
		Code:        "CSE-4004",
		Message:     "resource_not_found",
		Description: "Resource not found",
	}

	ConflictError = ServiceError{
		Type:        ClientErrorType,
		Code:        "CSE-4009",
		Message:     "conflict",
		Description: "Request conflicts with current state",
	}
)

// New returns a copy of base carrying a call-site description.
func New(base ServiceError, description string) *ServiceError {
	return &ServiceError{
		Type:        base.Type,
		Code:        base.Code,
		Message:     base.Message,
		Description: description,
	}
}

// Newf is New with a formatted description.
func Newf(base ServiceError, format string, args ...any) *ServiceError {
	return New(base, fmt.Sprintf(format, args...))
}

// Wrap is New with an underlying cause kept for errors.Unwrap.
func Wrap(base ServiceError, description string, cause error) *ServiceError {
	e := New(base, description)
	e.Cause = cause
	return e
}

// Error returns the message followed by description and cause
func (e ServiceError) Error() string {
	msg := e.Message
	if e.Description != "" {
		msg = msg + ": " + e.Description
	}
	if e.Cause != nil {
		msg = msg + ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause
func (e ServiceError) Unwrap() error {
	return e.Cause
}

// Is matches any ServiceError with the same code.
func (e ServiceError) Is(target error) bool {
	switch t := target.(type) {
	case ServiceError:
		return e.Code == t.Code
	case *ServiceError:
		return t != nil && e.Code == t.Code
	}
	return false
}

// IsClientError reports whether the caller can fix the request.
func (e ServiceError) IsClientError() bool {
	return e.Type == ClientErrorType
}

// HTTPStatus maps the error to a response status code.
func (e ServiceError) HTTPStatus() int {
	switch e.Code {
	case ValidationError.Code:
		return http.StatusBadRequest
	case UnauthorizedError.Code:
		return http.StatusUnauthorized
	case ForbiddenError.Code:
		return http.StatusForbidden
	case NotFoundError.Code:
		return http.StatusNotFound
	case ConflictError.Code:
		return http.StatusConflict
	}
	if e.Type == ClientErrorType {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
