package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
)

// --- Mock Intern Repository ---

type mockInternRepository struct {
	mock.Mock
}

func (m *mockInternRepository) Create(ctx context.Context, intern *domain.Intern) error {
	args := m.Called(ctx, intern)
	return args.Error(0)
}

func (m *mockInternRepository) GetByID(ctx context.Context, id string) (*domain.Intern, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Intern), args.Error(1)
}

func (m *mockInternRepository) GetByEmail(ctx context.Context, email string) (*domain.Intern, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Intern), args.Error(1)
}

func (m *mockInternRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

// --- Mock Refresh Token Repository ---

type mockRefreshTokenRepository struct {
	mock.Mock
}

func (m *mockRefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) Exists(ctx context.Context, tokenHash string) (bool, error) {
	args := m.Called(ctx, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockRefreshTokenRepository) Delete(ctx context.Context, tokenHash string) (int64, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRefreshTokenRepository) DeleteByInternID(ctx context.Context, internID string) (int64, error) {
	args := m.Called(ctx, internID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRefreshTokenRepository) Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken) error {
	args := m.Called(ctx, oldHash, next)
	return args.Error(0)
}

func (m *mockRefreshTokenRepository) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock Event Publisher ---

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) PublishInternRegistered(ctx context.Context, intern *domain.Intern) error {
	args := m.Called(ctx, intern)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishInternLoggedIn(ctx context.Context, intern *domain.Intern, at time.Time) error {
	args := m.Called(ctx, intern, at)
	return args.Error(0)
}

func (m *mockEventPublisher) PublishInternCreated(ctx context.Context, intern *domain.Intern, createdBy string) error {
	args := m.Called(ctx, intern, createdBy)
	return args.Error(0)
}

// --- Test Helpers ---

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func testClock() time.Time { return testNow }

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

func newTestJWTManager() *auth.JWTManager {
	return auth.NewJWTManager(auth.Config{
		AccessSecret:  "test-access-secret-0123456789abcdef",
		RefreshSecret: "test-refresh-secret-0123456789abcdef",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}, auth.WithClock(testClock))
}

func newTestHasher() *auth.PasswordHasher {
	return auth.NewPasswordHasher(4)
}

// hashForTest creates a bcrypt hash with cost 4 for fast tests.
func hashForTest(password string) string {
	h, err := newTestHasher().Hash(password)
	if err != nil {
		panic(err)
	}
	return h
}

type authFixture struct {
	interns *mockInternRepository
	tokens  *mockRefreshTokenRepository
	events  *mockEventPublisher
	jwt     *auth.JWTManager
	svc     *AuthService
}

func newAuthFixture(cfg AuthConfig) *authFixture {
	f := &authFixture{
		interns: new(mockInternRepository),
		tokens:  new(mockRefreshTokenRepository),
		events:  new(mockEventPublisher),
		jwt:     newTestJWTManager(),
	}
	f.svc = NewAuthService(f.interns, f.tokens, f.jwt, newTestHasher(), f.events, cfg, newTestLogger(), WithClock(testClock))
	return f
}

func (f *authFixture) assertExpectations(t mock.TestingT) {
	f.interns.AssertExpectations(t)
	f.tokens.AssertExpectations(t)
	f.events.AssertExpectations(t)
}
