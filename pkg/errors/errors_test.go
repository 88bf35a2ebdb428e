package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Sentinel error identity ---

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound, ErrAlreadyExists, ErrInvalidInput, ErrUnauthorized,
		ErrForbidden, ErrInternal, ErrConflict, ErrTooManyRequests,
		ErrTokenExpired, ErrTokenInvalid,
	}

	for i := 0; i < len(sentinels); i++ {
		for j := i + 1; j < len(sentinels); j++ {
			assert.NotEqual(t, sentinels[i], sentinels[j],
				"sentinels %d and %d should be distinct", i, j)
		}
	}
}

// --- AppError behavior ---

func TestAppError_ErrorString_WithWrappedError(t *testing.T) {
	inner := fmt.Errorf("db connection lost")
	appErr := &AppError{Code: "INTERNAL_ERROR", Message: "something broke", Err: inner}
	assert.Contains(t, appErr.Error(), "INTERNAL_ERROR")
	assert.Contains(t, appErr.Error(), "something broke")
	assert.Contains(t, appErr.Error(), "db connection lost")
}

func TestAppError_ErrorString_WithoutWrappedError(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "intern not found"}
	assert.Equal(t, "NOT_FOUND: intern not found", appErr.Error())
}

func TestAppError_Unwrap(t *testing.T) {
	appErr := &AppError{Code: "NOT_FOUND", Message: "nope", Err: ErrNotFound}
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestAppError_WithDetail(t *testing.T) {
	err := Unauthorized("invalid password").WithDetail("password", "password does not match")
	require.Len(t, err.Details, 1)
	assert.Equal(t, Detail{Field: "password", Message: "password does not match"}, err.Details[0])
}

// --- Constructor functions ---

func TestNotFound(t *testing.T) {
	err := NotFound("no intern found with the provided email")
	require.NotNil(t, err)
	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, TypeNotFound, err.Type)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestAlreadyExists(t *testing.T) {
	err := AlreadyExists("intern", "email")
	require.NotNil(t, err)
	assert.Equal(t, "ALREADY_EXISTS", err.Code)
	assert.Equal(t, TypeConflict, err.Type)
	assert.Contains(t, err.Message, "intern")
	assert.Contains(t, err.Message, "email")
	assert.Equal(t, http.StatusConflict, err.Status)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
	assert.True(t, errors.Is(err, ErrAlreadyExists))
}

func TestBadRequest(t *testing.T) {
	err := BadRequest("refresh token is required")
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, TypeBadRequest, err.Type)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestValidation(t *testing.T) {
	err := Validation([]Detail{{Field: "email", Message: "must be a valid email address"}})
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, TypeValidation, err.Type)
	assert.Len(t, err.Details, 1)
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("invalid token")
	require.NotNil(t, err)
	assert.Equal(t, "UNAUTHORIZED", err.Code)
	assert.Equal(t, http.StatusUnauthorized, err.Status)
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestForbidden(t *testing.T) {
	err := Forbidden("not allowed")
	assert.Equal(t, "FORBIDDEN", err.Code)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.True(t, errors.Is(err, ErrForbidden))
}

func TestTooManyRequests(t *testing.T) {
	err := TooManyRequests("slow down")
	assert.Equal(t, http.StatusTooManyRequests, err.Status)
	assert.Equal(t, TypeTooManyRequests, err.Type)
}

func TestInternal(t *testing.T) {
	inner := fmt.Errorf("segfault")
	err := Internal(inner)
	require.NotNil(t, err)
	assert.Equal(t, "INTERNAL_ERROR", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Contains(t, err.Error(), "segfault")
	assert.NotContains(t, err.Message, "segfault")
}

func TestConflict(t *testing.T) {
	err := Conflict("token already rotated")
	assert.Equal(t, "CONFLICT", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.True(t, errors.Is(err, ErrConflict))
}

// --- Wrap ---

func TestWrap(t *testing.T) {
	wrapped := Wrap(ErrNotFound, "get intern")
	assert.Contains(t, wrapped.Error(), "get intern")
	assert.True(t, errors.Is(wrapped, ErrNotFound))
}

// --- HTTPStatus / TypeOf ---

func TestHTTPStatus_AppError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("missing")))
}

func TestHTTPStatus_SentinelErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrAlreadyExists, http.StatusConflict},
		{ErrConflict, http.StatusConflict},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrTokenExpired, http.StatusUnauthorized},
		{ErrTokenInvalid, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrTooManyRequests, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(wrapped))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(fmt.Errorf("unknown")))
}

func TestTypeOf(t *testing.T) {
	assert.Equal(t, TypeForbidden, TypeOf(Forbidden("no")))
	assert.Equal(t, TypeUnauthorized, TypeOf(fmt.Errorf("verify: %w", ErrTokenExpired)))
	assert.Equal(t, TypeConflict, TypeOf(ErrAlreadyExists))
	assert.Equal(t, TypeInternal, TypeOf(fmt.Errorf("boom")))
}
