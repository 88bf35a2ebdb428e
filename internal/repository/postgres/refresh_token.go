package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/database"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

// RefreshTokenRepository implements repository.RefreshTokenRepository using PostgreSQL.
type RefreshTokenRepository struct {
	db database.DBTX
}

// NewRefreshTokenRepository creates a new PostgreSQL-backed refresh token repository.
func NewRefreshTokenRepository(db database.DBTX) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

const insertRefreshToken = `
		INSERT INTO refresh_tokens (id, intern_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)`

// Create stores a new refresh token record.
func (r *RefreshTokenRepository) Create(ctx context.Context, t *domain.RefreshToken) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateRefreshToken", insertRefreshToken)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, insertRefreshToken, t.ID, t.InternID, t.TokenHash, t.ExpiresAt, t.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert refresh token: %w", apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert refresh token: %w", err)
	}

	return nil
}

// Exists reports whether an unexpired record with the hash exists.
func (r *RefreshTokenRepository) Exists(ctx context.Context, tokenHash string) (exists bool, err error) {
	query := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_hash = $1 AND expires_at > NOW())`

	ctx, end := database.TraceQuery(ctx, "RefreshTokenExists", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("check refresh token: %w", err)
	}
	return exists, nil
}

// Delete removes a single record by its hash.
func (r *RefreshTokenRepository) Delete(ctx context.Context, tokenHash string) (_ int64, err error) {
	query := `DELETE FROM refresh_tokens WHERE token_hash = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteRefreshToken", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, tokenHash)
	if err != nil {
		return 0, fmt.Errorf("delete refresh token: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteByInternID removes every record belonging to the account.
func (r *RefreshTokenRepository) DeleteByInternID(ctx context.Context, internID string) (_ int64, err error) {
	query := `DELETE FROM refresh_tokens WHERE intern_id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteRefreshTokensByIntern", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, internID)
	if err != nil {
		return 0, fmt.Errorf("delete refresh tokens by intern: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Rotate deletes the unexpired record oldHash and inserts next in one
// transaction. When the delete matches nothing the transaction is rolled
// back and apperrors.ErrNotFound is returned.
func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldHash string, next *domain.RefreshToken) (err error) {
	deleteOld := `DELETE FROM refresh_tokens WHERE token_hash = $1 AND expires_at > NOW()`

	ctx, end := database.TraceQuery(ctx, "RotateRefreshToken", deleteOld)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rotate refresh token: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, deleteOld, oldHash)
	if err != nil {
		return fmt.Errorf("delete rotated refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	if _, err = tx.Exec(ctx, insertRefreshToken, next.ID, next.InternID, next.TokenHash, next.ExpiresAt, next.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert rotated refresh token: %w", apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert rotated refresh token: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rotate refresh token: %w", err)
	}
	return nil
}

// PurgeExpired deletes records whose expiry is at or before the given time.
func (r *RefreshTokenRepository) PurgeExpired(ctx context.Context, before time.Time) (_ int64, err error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at <= $1`

	ctx, end := database.TraceQuery(ctx, "PurgeExpiredRefreshTokens", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, before)
	if err != nil {
		return 0, fmt.Errorf("purge expired refresh tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
