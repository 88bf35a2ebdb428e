package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

// DefaultIssuer is the iss claim of every token this service signs.
const DefaultIssuer = "ltg-intern-service"

// Claims is the JWT payload for both token kinds.
type Claims struct {
	InternID string `json:"internId"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Config holds the signing material and lifetimes. Access and refresh tokens
// are signed with separate secrets so one kind can never verify as the other.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type tokenKind struct {
	name   string
	secret []byte
	ttl    time.Duration
}

// JWTManager issues and verifies HS256 access and refresh tokens. It holds
// no mutable state and is safe for concurrent use.
type JWTManager struct {
	access  tokenKind
	refresh tokenKind
	issuer  string
	now     func() time.Time
}

// Option configures a JWTManager.
type Option func(*JWTManager)

// WithClock overrides the time source used for iat/exp and for validation.
func WithClock(now func() time.Time) Option {
	return func(m *JWTManager) { m.now = now }
}

// NewJWTManager creates a JWT manager.
func NewJWTManager(cfg Config, opts ...Option) *JWTManager {
	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}
	m := &JWTManager{
		access:  tokenKind{name: "access", secret: []byte(cfg.AccessSecret), ttl: cfg.AccessTTL},
		refresh: tokenKind{name: "refresh", secret: []byte(cfg.RefreshSecret), ttl: cfg.RefreshTTL},
		issuer:  issuer,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// IssueAccessToken signs a short-lived access token for id.
func (m *JWTManager) IssueAccessToken(id domain.Identity) (string, error) {
	token, _, err := m.issue(m.access, id)
	return token, err
}

// IssueRefreshToken signs a refresh token for id and returns its expiry, which
// callers persist alongside the token record.
func (m *JWTManager) IssueRefreshToken(id domain.Identity) (string, time.Time, error) {
	return m.issue(m.refresh, id)
}

// VerifyAccessToken checks signature, issuer and expiry of an access token.
func (m *JWTManager) VerifyAccessToken(token string) (domain.Identity, error) {
	return m.verify(m.access, token)
}

// VerifyRefreshToken checks signature, issuer and expiry of a refresh token.
// It does not consult the token store.
func (m *JWTManager) VerifyRefreshToken(token string) (domain.Identity, error) {
	return m.verify(m.refresh, token)
}

func (m *JWTManager) issue(kind tokenKind, id domain.Identity) (string, time.Time, error) {
	now := m.now().UTC()
	expiresAt := now.Add(kind.ttl)

	claims := &Claims{
		InternID: id.InternID,
		Role:     string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.InternID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(kind.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", kind.name, err)
	}
	// Persisted expiry must equal the encoded one, which has second precision.
	return signed, claims.ExpiresAt.Time, nil
}

func (m *JWTManager) verify(kind tokenKind, token string) (domain.Identity, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return kind.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return domain.Identity{}, fmt.Errorf("verify %s token: %w: %w", kind.name, apperrors.ErrTokenExpired, err)
	default:
		return domain.Identity{}, fmt.Errorf("verify %s token: %w: %w", kind.name, apperrors.ErrTokenInvalid, err)
	}

	role := domain.Role(claims.Role)
	if claims.InternID == "" || claims.Subject != claims.InternID || !role.IsValid() {
		return domain.Identity{}, fmt.Errorf("verify %s token: %w: malformed identity claims", kind.name, apperrors.ErrTokenInvalid)
	}

	return domain.Identity{InternID: claims.InternID, Role: role}, nil
}
