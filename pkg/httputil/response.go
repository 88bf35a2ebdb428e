package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/logger"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/validator"
)

// Response is the uniform JSON envelope for every success and error reply.
type Response struct {
	Success    bool       `json:"success"`
	StatusCode int        `json:"statusCode"`
	Message    string     `json:"message"`
	Data       any        `json:"data,omitempty"`
	Error      *ErrorBody `json:"error,omitempty"`
}

// ErrorBody carries the machine-readable part of an error response.
type ErrorBody struct {
	Type      string             `json:"type"`
	Code      string             `json:"code,omitempty"`
	Details   []apperrors.Detail `json:"details"`
	RequestID string             `json:"requestId,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a success envelope.
func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Response{
		Success:    true,
		StatusCode: status,
		Message:    message,
		Data:       data,
	})
}

// WriteError writes a standardized error envelope for err. AppErrors keep
// their status, type and details; validation errors become 400s with one
// detail per field; anything else is mapped via apperrors.HTTPStatus, and
// 5xx responses hide the cause and are logged. It prefers the request-scoped
// logger from context over the fallback logger.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	body := ErrorBody{RequestID: logger.CorrelationIDFromContext(r.Context())}
	var (
		status  int
		message string
	)

	var valErr *validator.ValidationError
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &valErr):
		appErr = valErr.AppError()
		status, message = appErr.Status, appErr.Message
		body.Type, body.Code, body.Details = appErr.Type, appErr.Code, appErr.Details
	case errors.As(err, &appErr):
		status, message = appErr.Status, appErr.Message
		body.Type, body.Code, body.Details = appErr.Type, appErr.Code, appErr.Details
	default:
		status = apperrors.HTTPStatus(err)
		body.Type = apperrors.TypeOf(err)
		message = http.StatusText(status)
		if status < http.StatusInternalServerError {
			message = err.Error()
		}
	}

	if status >= http.StatusInternalServerError {
		message = "an internal error occurred"
		body.Details = nil
		l.ErrorContext(r.Context(), "internal error",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	if body.Details == nil {
		body.Details = []apperrors.Detail{}
	}

	WriteJSON(w, status, Response{
		Success:    false,
		StatusCode: status,
		Message:    message,
		Error:      &body,
	})
}
