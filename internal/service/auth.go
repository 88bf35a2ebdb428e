package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/repository"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

const tracerName = "github.com/PrithiviPM2580/ltg-intern-management-system/internal/service"

// EventPublisher publishes intern domain events. Failures are logged by the
// services and never fail the request.
type EventPublisher interface {
	PublishInternRegistered(ctx context.Context, intern *domain.Intern) error
	PublishInternLoggedIn(ctx context.Context, intern *domain.Intern, at time.Time) error
	PublishInternCreated(ctx context.Context, intern *domain.Intern, createdBy string) error
}

// Option configures a service.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func applyOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// AuthConfig holds the policy knobs of AuthService.
type AuthConfig struct {
	// AdminEmails are granted the admin role at signup. Entries are
	// compared after trimming and lowercasing.
	AdminEmails []string

	// SingleSession drops every earlier refresh token of an account on login.
	SingleSession bool
}

// AuthService implements signup, login, logout and refresh-token rotation.
type AuthService struct {
	interns repository.InternRepository
	tokens  repository.RefreshTokenRepository
	jwt     *auth.JWTManager
	hasher  *auth.PasswordHasher
	events  EventPublisher
	logger  *slog.Logger

	adminEmails   map[string]struct{}
	singleSession bool
	now           func() time.Time
	tracer        trace.Tracer
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	interns repository.InternRepository,
	tokens repository.RefreshTokenRepository,
	jwt *auth.JWTManager,
	hasher *auth.PasswordHasher,
	events EventPublisher,
	cfg AuthConfig,
	logger *slog.Logger,
	opts ...Option,
) *AuthService {
	o := applyOptions(opts)

	admins := make(map[string]struct{}, len(cfg.AdminEmails))
	for _, e := range cfg.AdminEmails {
		if e = normalizeEmail(e); e != "" {
			admins[e] = struct{}{}
		}
	}

	return &AuthService{
		interns:       interns,
		tokens:        tokens,
		jwt:           jwt,
		hasher:        hasher,
		events:        events,
		logger:        logger,
		adminEmails:   admins,
		singleSession: cfg.SingleSession,
		now:           o.now,
		tracer:        otel.Tracer(tracerName),
	}
}

// SignupInput holds the parameters for creating an account.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

// LoginInput holds the parameters for a login.
type LoginInput struct {
	Email    string
	Password string
}

// Signup creates an account and signs it in. Addresses on the admin list get
// the admin role and are approved immediately; everyone else starts as a
// pending intern.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (_ *domain.AuthResult, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Signup")
	defer func() { s.finish(span, opSignup, err) }()

	email := normalizeEmail(input.Email)

	exists, err := s.interns.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apperrors.AlreadyExists("intern", "email")
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	role, approval := domain.RoleIntern, domain.ApprovalPending
	if _, ok := s.adminEmails[email]; ok {
		role, approval = domain.RoleAdmin, domain.ApprovalApproved
	}

	now := s.now().UTC()
	intern := &domain.Intern{
		ID:             uuid.NewString(),
		Username:       strings.TrimSpace(input.Username),
		Email:          email,
		PasswordHash:   hash,
		Role:           role,
		ApprovalStatus: approval,
		Status:         domain.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.interns.Create(ctx, intern); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("intern", "email")
		}
		return nil, apperrors.Internal(fmt.Errorf("create intern: %w", err))
	}
	span.SetAttributes(attribute.String("intern.id", intern.ID), attribute.String("intern.role", role.String()))

	tokens, err := s.issueTokens(ctx, intern.Identity())
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishInternRegistered(ctx, intern); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish intern.registered event",
			slog.String("intern_id", intern.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "intern registered",
		slog.String("intern_id", intern.ID),
		slog.String("role", role.String()),
	)

	return &domain.AuthResult{Intern: intern.Public(), Tokens: tokens}, nil
}

// Login verifies credentials and issues a fresh token pair. Intern accounts
// must be approved; admins are exempt.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (_ *domain.AuthResult, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer func() { s.finish(span, opLogin, err) }()

	intern, err := s.interns.GetByEmail(ctx, normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound("no intern found with the provided email")
		}
		return nil, apperrors.Internal(fmt.Errorf("get intern by email: %w", err))
	}
	span.SetAttributes(attribute.String("intern.id", intern.ID))

	if !intern.CanLogin() {
		return nil, apperrors.Forbidden("intern account has not been approved")
	}

	if err := s.hasher.Compare(intern.PasswordHash, input.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.InfoContext(ctx, "login with wrong password", slog.String("intern_id", intern.ID))
			return nil, apperrors.Unauthorized("invalid password")
		}
		return nil, apperrors.Internal(err)
	}

	if s.singleSession {
		n, err := s.tokens.DeleteByInternID(ctx, intern.ID)
		if err != nil {
			return nil, apperrors.Internal(fmt.Errorf("drop previous sessions: %w", err))
		}
		if n > 0 {
			s.logger.DebugContext(ctx, "dropped previous sessions",
				slog.String("intern_id", intern.ID),
				slog.Int64("count", n),
			)
		}
	}

	tokens, err := s.issueTokens(ctx, intern.Identity())
	if err != nil {
		return nil, err
	}

	if err := s.events.PublishInternLoggedIn(ctx, intern, s.now()); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish intern.logged_in event",
			slog.String("intern_id", intern.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "intern logged in", slog.String("intern_id", intern.ID))

	return &domain.AuthResult{Intern: intern.Public(), Tokens: tokens}, nil
}

// Logout deletes the refresh-token record for refreshToken. The token is not
// verified and an unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) (err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Logout")
	defer func() { s.finish(span, opLogout, err) }()

	if refreshToken == "" {
		return apperrors.BadRequest("refresh token is required")
	}

	n, err := s.tokens.Delete(ctx, auth.HashToken(refreshToken))
	if err != nil {
		return apperrors.Internal(fmt.Errorf("delete refresh token: %w", err))
	}
	if n == 0 {
		s.logger.DebugContext(ctx, "logout for unknown refresh token")
	}
	return nil
}

// RefreshToken rotates a refresh token: the old record is replaced by a new
// one and a new access token is issued. Only one of several concurrent
// rotations of the same token succeeds.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (_ *domain.TokenPair, err error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.RefreshToken")
	defer func() { s.finish(span, opRefresh, err) }()

	if refreshToken == "" {
		return nil, apperrors.BadRequest("refresh token is required")
	}

	id, err := s.jwt.VerifyRefreshToken(refreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) || errors.Is(err, apperrors.ErrTokenInvalid) {
			s.logger.InfoContext(ctx, "refresh token rejected", slog.String("error", err.Error()))
			return nil, apperrors.Unauthorized("invalid or expired refresh token")
		}
		return nil, apperrors.Internal(err)
	}

	oldHash := auth.HashToken(refreshToken)
	ok, err := s.tokens.Exists(ctx, oldHash)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("check refresh token: %w", err))
	}
	if !ok {
		s.logger.WarnContext(ctx, "refresh token not found in store", slog.String("intern_id", id.InternID))
		return nil, apperrors.Unauthorized("refresh token has been revoked")
	}

	pair, record, err := s.signPair(id)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Rotate(ctx, oldHash, record); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "refresh token rotated concurrently", slog.String("intern_id", id.InternID))
			return nil, apperrors.Unauthorized("refresh token has been revoked")
		}
		return nil, apperrors.Internal(fmt.Errorf("rotate refresh token: %w", err))
	}

	s.logger.InfoContext(ctx, "tokens refreshed", slog.String("intern_id", id.InternID))

	return &pair, nil
}

// issueTokens signs a token pair for id and persists the refresh record.
func (s *AuthService) issueTokens(ctx context.Context, id domain.Identity) (domain.TokenPair, error) {
	pair, record, err := s.signPair(id)
	if err != nil {
		return domain.TokenPair{}, err
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return domain.TokenPair{}, apperrors.Internal(fmt.Errorf("store refresh token: %w", err))
	}
	return pair, nil
}

func (s *AuthService) signPair(id domain.Identity) (domain.TokenPair, *domain.RefreshToken, error) {
	access, err := s.jwt.IssueAccessToken(id)
	if err != nil {
		return domain.TokenPair{}, nil, apperrors.Internal(fmt.Errorf("issue access token: %w", err))
	}
	refresh, expiresAt, err := s.jwt.IssueRefreshToken(id)
	if err != nil {
		return domain.TokenPair{}, nil, apperrors.Internal(fmt.Errorf("issue refresh token: %w", err))
	}

	record := &domain.RefreshToken{
		ID:        uuid.NewString(),
		InternID:  id.InternID,
		TokenHash: auth.HashToken(refresh),
		ExpiresAt: expiresAt,
		CreatedAt: s.now().UTC(),
	}
	pair := domain.TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		RefreshExpiresAt: expiresAt,
	}
	return pair, record, nil
}

func (s *AuthService) finish(span trace.Span, operation string, err error) {
	finishSpan(span, err)
	recordOutcome(operation, err)
}

func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, apperrors.TypeOf(err))
	}
	span.End()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
