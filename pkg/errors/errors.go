package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound        = errors.New("resource not found")
	ErrAlreadyExists   = errors.New("resource already exists")
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrInternal        = errors.New("internal error")
	ErrConflict        = errors.New("conflict")
	ErrTooManyRequests = errors.New("too many requests")

	// ErrTokenExpired and ErrTokenInvalid are returned by token verification.
	// Callers that do not need to tell them apart should treat both as
	// unauthorized.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

// Error type names carried in the response envelope.
const (
	TypeValidation      = "ValidationError"
	TypeBadRequest      = "BadRequestError"
	TypeUnauthorized    = "UnauthorizedError"
	TypeForbidden       = "ForbiddenError"
	TypeNotFound        = "NotFoundError"
	TypeConflict        = "ConflictError"
	TypeTooManyRequests = "TooManyRequestsError"
	TypeInternal        = "InternalError"
)

// Detail describes a single problem, optionally tied to an input field.
type Detail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string   `json:"code"`
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Status  int      `json:"-"`
	Details []Detail `json:"details,omitempty"`
	Err     error    `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail appends a field-level detail and returns the same error.
func (e *AppError) WithDetail(field, message string) *AppError {
	e.Details = append(e.Details, Detail{Field: field, Message: message})
	return e
}

// NotFound creates a 404 error.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Type:    TypeNotFound,
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error for a duplicate unique attribute.
func AlreadyExists(resource, field string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Type:    TypeConflict,
		Message: fmt.Sprintf("%s already exists with the provided %s", resource, field),
		Status:  http.StatusConflict,
		Details: []Detail{{Field: field, Message: fmt.Sprintf("%s is already in use", field)}},
		Err:     ErrAlreadyExists,
	}
}

// Conflict creates a 409 error.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    "CONFLICT",
		Type:    TypeConflict,
		Message: message,
		Status:  http.StatusConflict,
		Err:     ErrConflict,
	}
}

// BadRequest creates a 400 error for a request the core cannot act on.
func BadRequest(message string) *AppError {
	return &AppError{
		Code:    "BAD_REQUEST",
		Type:    TypeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// InvalidInput creates a 400 validation error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Type:    TypeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Validation creates a 400 error carrying per-field details.
func Validation(details []Detail) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Type:    TypeValidation,
		Message: "validation failed",
		Status:  http.StatusBadRequest,
		Details: details,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Type:    TypeUnauthorized,
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Type:    TypeForbidden,
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// TooManyRequests creates a 429 error.
func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    "RATE_LIMITED",
		Type:    TypeTooManyRequests,
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     ErrTooManyRequests,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Type:    TypeInternal,
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrTokenExpired), errors.Is(err, ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// TypeOf returns the envelope error type for the given error.
func TypeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Type != "" {
		return appErr.Type
	}

	switch HTTPStatus(err) {
	case http.StatusNotFound:
		return TypeNotFound
	case http.StatusConflict:
		return TypeConflict
	case http.StatusBadRequest:
		return TypeBadRequest
	case http.StatusUnauthorized:
		return TypeUnauthorized
	case http.StatusForbidden:
		return TypeForbidden
	case http.StatusTooManyRequests:
		return TypeTooManyRequests
	default:
		return TypeInternal
	}
}
