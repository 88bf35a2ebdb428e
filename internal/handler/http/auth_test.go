package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/service"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

func newTestAuthHandler(secure bool) (*AuthHandler, *mockAuthService) {
	svc := new(mockAuthService)
	return NewAuthHandler(svc, NewSessionCookies(secure), newTestLogger()), svc
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func refreshCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == refreshCookieName {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", refreshCookieName)
	return nil
}

// --- SignUp ---

func TestAuthHandler_SignUp_Success(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	pair := samplePair()
	svc.On("Signup", mock.Anything, service.SignupInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "secret1",
	}).Return(&domain.AuthResult{Intern: sampleIntern(domain.RoleIntern), Tokens: pair}, nil)

	rr := httptest.NewRecorder()
	h.SignUp(rr, jsonRequest(http.MethodPost, "/api/v1/auth/sign-up",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`))

	require.Equal(t, http.StatusCreated, rr.Code)

	body := decodeEnvelope(t, rr)
	assert.True(t, body.Success)
	assert.Equal(t, http.StatusCreated, body.StatusCode)

	var data struct {
		Intern      domain.PublicIntern `json:"intern"`
		AccessToken string              `json:"accessToken"`
	}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "access.jwt.token", data.AccessToken)
	assert.Equal(t, domain.RoleIntern, data.Intern.Role)
	assert.NotContains(t, string(body.Data), "password")

	c := refreshCookie(t, rr)
	assert.Equal(t, "refresh.jwt.token", c.Value)
	assert.True(t, c.HttpOnly)
	assert.False(t, c.Secure)
	assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
	assert.Equal(t, "/api/v1/auth", c.Path)
	assert.Greater(t, c.MaxAge, 0)
	svc.AssertExpectations(t)
}

func TestAuthHandler_SignUp_SecureCookie(t *testing.T) {
	h, svc := newTestAuthHandler(true)
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(&domain.AuthResult{Intern: sampleIntern(domain.RoleIntern), Tokens: samplePair()}, nil)

	rr := httptest.NewRecorder()
	h.SignUp(rr, jsonRequest(http.MethodPost, "/api/v1/auth/sign-up",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`))

	assert.True(t, refreshCookie(t, rr).Secure)
}

func TestAuthHandler_SignUp_ValidationError(t *testing.T) {
	h, svc := newTestAuthHandler(false)

	rr := httptest.NewRecorder()
	h.SignUp(rr, jsonRequest(http.MethodPost, "/api/v1/auth/sign-up",
		`{"username":"al","email":"not-an-email","password":"123"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	body := decodeEnvelope(t, rr)
	require.NotNil(t, body.Error)
	assert.Equal(t, apperrors.TypeValidation, body.Error.Type)

	fields := make([]string, 0, len(body.Error.Details))
	for _, d := range body.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.ElementsMatch(t, []string{"username", "email", "password"}, fields)
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestAuthHandler_SignUp_UnknownField(t *testing.T) {
	h, svc := newTestAuthHandler(false)

	rr := httptest.NewRecorder()
	h.SignUp(rr, jsonRequest(http.MethodPost, "/api/v1/auth/sign-up",
		`{"username":"alice","email":"alice@x.com","password":"secret1","role":"admin"}`))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
}

func TestAuthHandler_SignUp_DuplicateEmail(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	svc.On("Signup", mock.Anything, mock.Anything).
		Return(nil, apperrors.AlreadyExists("intern", "email"))

	rr := httptest.NewRecorder()
	h.SignUp(rr, jsonRequest(http.MethodPost, "/api/v1/auth/sign-up",
		`{"username":"alice","email":"alice@x.com","password":"secret1"}`))

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}

// --- Login ---

func TestAuthHandler_Login_Success(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	svc.On("Login", mock.Anything, service.LoginInput{Email: "alice@x.com", Password: "secret1"}).
		Return(&domain.AuthResult{Intern: sampleIntern(domain.RoleIntern), Tokens: samplePair()}, nil)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonRequest(http.MethodPost, "/api/v1/auth/login",
		`{"email":"alice@x.com","password":"secret1"}`))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "refresh.jwt.token", refreshCookie(t, rr).Value)
	body := decodeEnvelope(t, rr)
	assert.Contains(t, string(body.Data), `"accessToken":"access.jwt.token"`)
}

func TestAuthHandler_Login_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"unknown email", apperrors.NotFound("intern not found"), http.StatusNotFound},
		{"not approved", apperrors.Forbidden("account is pending approval"), http.StatusForbidden},
		{"wrong password", apperrors.Unauthorized("invalid credentials"), http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, svc := newTestAuthHandler(false)
			svc.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err)

			rr := httptest.NewRecorder()
			h.Login(rr, jsonRequest(http.MethodPost, "/api/v1/auth/login",
				`{"email":"alice@x.com","password":"secret1"}`))

			assert.Equal(t, tt.status, rr.Code)
			assert.Empty(t, rr.Result().Cookies())
		})
	}
}

func TestAuthHandler_Login_EmptyBody(t *testing.T) {
	h, _ := newTestAuthHandler(false)

	rr := httptest.NewRecorder()
	h.Login(rr, jsonRequest(http.MethodPost, "/api/v1/auth/login", ""))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "request body is empty", decodeEnvelope(t, rr).Message)
}

// --- Logout ---

func TestAuthHandler_Logout_ClearsCookie(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	svc.On("Logout", mock.Anything, "refresh.jwt.token").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh.jwt.token"})
	rr := httptest.NewRecorder()
	h.Logout(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	c := refreshCookie(t, rr)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Logout_MissingCookie(t *testing.T) {
	h, svc := newTestAuthHandler(false)

	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	svc.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
}

// --- RefreshToken ---

func TestAuthHandler_RefreshToken_Rotates(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	next := samplePair()
	next.AccessToken = "access.jwt.next"
	next.RefreshToken = "refresh.jwt.next"
	svc.On("RefreshToken", mock.Anything, "refresh.jwt.token").Return(&next, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh.jwt.token"})
	rr := httptest.NewRecorder()
	h.RefreshToken(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "refresh.jwt.next", refreshCookie(t, rr).Value)

	body := decodeEnvelope(t, rr)
	var data AccessTokenResponse
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "access.jwt.next", data.AccessToken)
}

func TestAuthHandler_RefreshToken_MissingCookie(t *testing.T) {
	h, svc := newTestAuthHandler(false)

	rr := httptest.NewRecorder()
	h.RefreshToken(rr, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	svc.AssertNotCalled(t, "RefreshToken", mock.Anything, mock.Anything)
}

func TestAuthHandler_RefreshToken_Revoked_ClearsCookie(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	svc.On("RefreshToken", mock.Anything, "refresh.jwt.token").
		Return(nil, apperrors.Unauthorized("refresh token has been revoked"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh.jwt.token"})
	rr := httptest.NewRecorder()
	h.RefreshToken(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, -1, refreshCookie(t, rr).MaxAge)
	assert.Equal(t, "refresh token has been revoked", decodeEnvelope(t, rr).Message)
}

func TestAuthHandler_RefreshToken_InternalError_KeepsCookie(t *testing.T) {
	h, svc := newTestAuthHandler(false)
	svc.On("RefreshToken", mock.Anything, "refresh.jwt.token").
		Return(nil, apperrors.Internal(assert.AnError))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: refreshCookieName, Value: "refresh.jwt.token"})
	rr := httptest.NewRecorder()
	h.RefreshToken(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, rr.Result().Cookies())
}
