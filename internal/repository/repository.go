package repository

import (
	"context"
	"time"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
)

// InternRepository defines the interface for account persistence operations.
type InternRepository interface {
	// Create inserts a new account. A duplicate email returns an error
	// wrapping apperrors.ErrAlreadyExists.
	Create(ctx context.Context, intern *domain.Intern) error

	// GetByID retrieves an account by its unique identifier.
	GetByID(ctx context.Context, id string) (*domain.Intern, error)

	// GetByEmail retrieves an account by email, ignoring case.
	GetByEmail(ctx context.Context, email string) (*domain.Intern, error)

	// ExistsByEmail reports whether an account with the email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// RefreshTokenRepository defines the interface for refresh token persistence.
// Records are addressed by the SHA-256 hex digest of the token string.
type RefreshTokenRepository interface {
	// Create stores a new refresh token record.
	Create(ctx context.Context, token *domain.RefreshToken) error

	// Exists reports whether an unexpired record with the hash exists.
	Exists(ctx context.Context, tokenHash string) (bool, error)

	// Delete removes the record with the hash and returns the number of
	// rows deleted.
	Delete(ctx context.Context, tokenHash string) (int64, error)

	// DeleteByInternID removes every record of the account.
	DeleteByInternID(ctx context.Context, internID string) (int64, error)

	// Rotate atomically replaces the unexpired record oldHash with next.
	// It returns apperrors.ErrNotFound when oldHash is no longer present,
	// which is how a losing concurrent rotation is detected.
	Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken) error

	// PurgeExpired deletes records that expired before the given time.
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
