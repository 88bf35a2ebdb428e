package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/service"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/httputil"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/validator"
)

// AuthService is the subset of service.AuthService used by AuthHandler.
type AuthService interface {
	Signup(ctx context.Context, input service.SignupInput) (*domain.AuthResult, error)
	Login(ctx context.Context, input service.LoginInput) (*domain.AuthResult, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error)
}

// AuthHandler handles HTTP requests for auth endpoints.
type AuthHandler struct {
	service AuthService
	cookies *SessionCookies
	logger  *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc AuthService, cookies *SessionCookies, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{service: svc, cookies: cookies, logger: logger}
}

// --- Request DTOs ---

// SignupRequest is the JSON request body for intern signup.
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginRequest is the JSON request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// --- Response types ---

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Intern      domain.PublicIntern `json:"intern"`
	AccessToken string              `json:"accessToken"`
}

// AccessTokenResponse is returned by refresh-token.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
}

// --- Handlers ---

// SignUp handles POST /api/v1/auth/sign-up
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.Signup(r.Context(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookies.Set(w, result.Tokens.RefreshToken, result.Tokens.RefreshExpiresAt)
	httputil.WriteSuccess(w, http.StatusCreated, "Intern registered successfully", AuthResponse{
		Intern:      result.Intern,
		AccessToken: result.Tokens.AccessToken,
	})
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.Login(r.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookies.Set(w, result.Tokens.RefreshToken, result.Tokens.RefreshExpiresAt)
	httputil.WriteSuccess(w, http.StatusOK, "Login successful", AuthResponse{
		Intern:      result.Intern,
		AccessToken: result.Tokens.AccessToken,
	})
}

// Logout handles POST /api/v1/auth/logout. The caller is already
// authenticated by bearer token; the refresh token comes from the cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		httputil.WriteError(w, r, apperrors.BadRequest("refresh token cookie is missing"), h.logger)
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookies.Clear(w)
	httputil.WriteSuccess(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken handles POST /api/v1/auth/refresh-token
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := refreshTokenFromRequest(r)
	if token == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("refresh token is required"), h.logger)
		return
	}

	pair, err := h.service.RefreshToken(r.Context(), token)
	if err != nil {
		if apperrors.HTTPStatus(err) == http.StatusUnauthorized {
			h.cookies.Clear(w)
		}
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	h.cookies.Set(w, pair.RefreshToken, pair.RefreshExpiresAt)
	httputil.WriteSuccess(w, http.StatusOK, "Token refreshed successfully", AccessTokenResponse{
		AccessToken: pair.AccessToken,
	})
}
