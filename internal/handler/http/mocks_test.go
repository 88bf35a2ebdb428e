package http

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/service"
)

// --- Mock Auth Service ---

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Signup(ctx context.Context, input service.SignupInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, input service.LoginInput) (*domain.AuthResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AuthResult), args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *mockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.TokenPair), args.Error(1)
}

// --- Mock Intern Service ---

type mockInternService struct {
	mock.Mock
}

func (m *mockInternService) CreateIntern(ctx context.Context, adminID string, input service.CreateInternInput) (*domain.PublicIntern, error) {
	args := m.Called(ctx, adminID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PublicIntern), args.Error(1)
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTManager(now func() time.Time) *auth.JWTManager {
	return auth.NewJWTManager(auth.Config{
		AccessSecret:  "test-access-secret-0123456789abcdef",
		RefreshSecret: "test-refresh-secret-0123456789abcdef",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, auth.WithClock(now))
}

func sampleIntern(role domain.Role) domain.PublicIntern {
	now := time.Now().UTC()
	return domain.PublicIntern{
		ID:             "7b0e4c7a-3f71-4c1e-9a55-0d7c1f6f9a11",
		Username:       "alice",
		Email:          "alice@x.com",
		Role:           role,
		ApprovalStatus: domain.ApprovalPending,
		Status:         domain.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func samplePair() domain.TokenPair {
	return domain.TokenPair{
		AccessToken:      "access.jwt.token",
		RefreshToken:     "refresh.jwt.token",
		RefreshExpiresAt: time.Now().Add(7 * 24 * time.Hour),
	}
}
