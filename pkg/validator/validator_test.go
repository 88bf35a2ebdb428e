package validator

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

type signupPayload struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type periodPayload struct {
	Status    string    `json:"status" validate:"omitempty,oneof=pending approved rejected"`
	StartDate time.Time `json:"startDate" validate:"required"`
	EndDate   time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}

func TestValidate_Success(t *testing.T) {
	err := Validate(signupPayload{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestValidate_MissingRequired_UsesJSONName(t *testing.T) {
	err := Validate(signupPayload{Email: "alice@example.com", Password: "secret1"})
	require.Error(t, err)

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "username")
	assert.Equal(t, "is required", fields["username"])
}

func TestValidate_InvalidEmail(t *testing.T) {
	err := Validate(signupPayload{Username: "alice", Email: "not-an-email", Password: "secret1"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["email"])
}

func TestValidate_ShortPassword(t *testing.T) {
	err := Validate(signupPayload{Username: "alice", Email: "alice@example.com", Password: "abc"})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	assert.Contains(t, valErr.Fields()["password"], "6")
}

func TestValidate_OneOfAndGtField(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	err := Validate(periodPayload{Status: "archived", StartDate: start, EndDate: start.Add(-time.Hour)})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields["status"], "one of")
	assert.Contains(t, fields["endDate"], "must be after")
}

func TestValidationError_Details(t *testing.T) {
	err := Validate(signupPayload{})

	var valErr *ValidationError
	require.ErrorAs(t, err, &valErr)
	details := valErr.Details()
	require.Len(t, details, 3)
	assert.Equal(t, "username", details[0].Field)
	assert.Equal(t, "username is required", details[0].Message)

	appErr := valErr.AppError()
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, apperrors.TypeValidation, appErr.Type)
	assert.Len(t, appErr.Details, 3)
}

func TestDecodeAndValidate_Success(t *testing.T) {
	body := `{"username":"alice","email":"alice@example.com","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var s signupPayload
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	require.NoError(t, err)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "alice@example.com", s.Email)
}

func TestDecodeAndValidate_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{invalid"))

	var s signupPayload
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func TestDecodeAndValidate_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))

	var s signupPayload
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "request body is empty", appErr.Message)
}

func TestDecodeAndValidate_UnknownField(t *testing.T) {
	body := `{"username":"alice","email":"alice@example.com","password":"secret1","role":"admin"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var s signupPayload
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.HTTPStatus(err))
}

func TestDecodeAndValidate_BodyTooLarge(t *testing.T) {
	body := `{"username":"` + strings.Repeat("a", MaxBodyBytes+1) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var s signupPayload
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "request body too large", appErr.Message)
}

func TestDecodeAndValidate_ValidationFails(t *testing.T) {
	body := `{"username":"","email":"bad","password":"secret1"}`
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))

	var s signupPayload
	err := DecodeAndValidate(httptest.NewRecorder(), req, &s)

	var valErr *ValidationError
	assert.ErrorAs(t, err, &valErr)
}
