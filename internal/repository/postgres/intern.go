package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/database"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

const internColumns = `id, username, email, password_hash, role, approval_status, status,
		phone_number, position, department, location, supervisor_name,
		start_date, end_date, created_at, updated_at`

// InternRepository implements repository.InternRepository using PostgreSQL.
type InternRepository struct {
	db database.DBTX
}

// NewInternRepository creates a new PostgreSQL-backed intern repository.
func NewInternRepository(db database.DBTX) *InternRepository {
	return &InternRepository{db: db}
}

// Create inserts a new account into the database.
func (r *InternRepository) Create(ctx context.Context, i *domain.Intern) (err error) {
	query := `
		INSERT INTO interns (` + internColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	ctx, end := database.TraceQuery(ctx, "CreateIntern", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		i.ID,
		i.Username,
		i.Email,
		i.PasswordHash,
		string(i.Role),
		string(i.ApprovalStatus),
		string(i.Status),
		i.PhoneNumber,
		i.Position,
		i.Department,
		i.Location,
		i.SupervisorName,
		i.StartDate,
		i.EndDate,
		i.CreatedAt,
		i.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert intern: %w", apperrors.ErrAlreadyExists)
		}
		return fmt.Errorf("insert intern: %w", err)
	}

	return nil
}

// GetByID retrieves an account by its ID.
func (r *InternRepository) GetByID(ctx context.Context, id string) (*domain.Intern, error) {
	query := `SELECT ` + internColumns + ` FROM interns WHERE id = $1`
	return r.scanIntern(ctx, "GetInternByID", query, id)
}

// GetByEmail retrieves an account by email. The comparison is
// case-insensitive and backed by the unique lower(email) index.
func (r *InternRepository) GetByEmail(ctx context.Context, email string) (*domain.Intern, error) {
	query := `SELECT ` + internColumns + ` FROM interns WHERE lower(email) = lower($1)`
	return r.scanIntern(ctx, "GetInternByEmail", query, email)
}

// ExistsByEmail reports whether an account with the email exists.
func (r *InternRepository) ExistsByEmail(ctx context.Context, email string) (exists bool, err error) {
	query := `SELECT EXISTS (SELECT 1 FROM interns WHERE lower(email) = lower($1))`

	ctx, end := database.TraceQuery(ctx, "InternExistsByEmail", query)
	defer func() { end(err) }()

	if err = r.db.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("check intern email: %w", err)
	}
	return exists, nil
}

// scanIntern executes a query that returns a single account row and scans it.
func (r *InternRepository) scanIntern(ctx context.Context, op, query string, args ...any) (_ *domain.Intern, err error) {
	ctx, end := database.TraceQuery(ctx, op, query)
	defer func() {
		if errors.Is(err, apperrors.ErrNotFound) {
			end(nil)
			return
		}
		end(err)
	}()

	var (
		i                      domain.Intern
		role, approval, status string
	)
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&role,
		&approval,
		&status,
		&i.PhoneNumber,
		&i.Position,
		&i.Department,
		&i.Location,
		&i.SupervisorName,
		&i.StartDate,
		&i.EndDate,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan intern: %w", err)
	}

	i.Role = domain.Role(role)
	i.ApprovalStatus = domain.ApprovalStatus(approval)
	i.Status = domain.InternshipStatus(status)
	return &i, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
