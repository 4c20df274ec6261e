package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Authentication errors
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrTokenExpired ErrorCode = "TOKEN_EXPIRED"
	ErrTokenInvalid ErrorCode = "TOKEN_INVALID"

	// Authorization errors
	ErrForbidden ErrorCode = "FORBIDDEN"

	// Validation errors
	ErrValidation   ErrorCode = "VALIDATION_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"

	// Resource errors
	ErrNotFound      ErrorCode = "NOT_FOUND"
	ErrAlreadyExists ErrorCode = "ALREADY_EXISTS"

	// Workflow errors
	ErrWorkflowNotFound ErrorCode = "WORKFLOW_NOT_FOUND"
	ErrWorkflowInvalid  ErrorCode = "WORKFLOW_INVALID"
	ErrStyleNotFound    ErrorCode = "STYLE_NOT_FOUND"

	// Database errors
	ErrDatabaseError ErrorCode = "DATABASE_ERROR"

	// Internal errors
	ErrInternal ErrorCode = "INTERNAL_ERROR"
)

// APIError represents a structured API error
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Details    any       `json:"details,omitempty"`
	HTTPStatus int       `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a new APIError
func New(code ErrorCode, message string, httpStatus int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// WithDetails adds details to an error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// Common error constructors
func Unauthorized(message string) *APIError {
	return New(ErrUnauthorized, message, http.StatusUnauthorized)
}

func Forbidden(message string) *APIError {
	return New(ErrForbidden, message, http.StatusForbidden)
}

func NotFound(resource string) *APIError {
	return New(ErrNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

func AlreadyExists(resource string) *APIError {
	return New(ErrAlreadyExists, fmt.Sprintf("%s already exists", resource), http.StatusConflict)
}

func Validation(message string) *APIError {
	return New(ErrValidation, message, http.StatusBadRequest)
}

func InvalidInput(message string) *APIError {
	return New(ErrInvalidInput, message, http.StatusBadRequest)
}

func Internal(message string) *APIError {
	return New(ErrInternal, message, http.StatusInternalServerError)
}

func DatabaseError(err error) *APIError {
	return New(ErrDatabaseError, "database operation failed", http.StatusInternalServerError).WithDetails(err.Error())
}

func WorkflowNotFound(name string) *APIError {
	return New(ErrWorkflowNotFound, fmt.Sprintf("workflow %q not found", name), http.StatusNotFound)
}

func WorkflowInvalid(name string, problems []string) *APIError {
	return New(ErrWorkflowInvalid, fmt.Sprintf("workflow %q is invalid", name), http.StatusUnprocessableEntity).WithDetails(problems)
}

func StyleNotFound(code string) *APIError {
	return New(ErrStyleNotFound, fmt.Sprintf("style %q not found", code), http.StatusNotFound)
}

// As returns err as an *APIError, wrapping anything else as an internal error
func As(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return Internal(err.Error())
}

// ErrorResponse is the standard API error response format
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}
