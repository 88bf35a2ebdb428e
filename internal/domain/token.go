package domain

import (
	"time"
)

// Identity is what a token asserts: the account and its role.
type Identity struct {
	InternID string
	Role     Role
}

// RefreshToken is a persisted refresh-token record. The token itself is never
// stored; TokenHash is its SHA-256 digest.
type RefreshToken struct {
	ID        string
	InternID  string
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is past its expiry at now.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// TokenPair holds a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// AuthResult is returned by signup and login.
type AuthResult struct {
	Intern PublicIntern
	Tokens TokenPair
}
