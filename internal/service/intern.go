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
	"go.opentelemetry.io/otel/trace"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/auth"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/repository"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
)

// InternService implements admin-side intern provisioning.
type InternService struct {
	interns repository.InternRepository
	hasher  *auth.PasswordHasher
	events  EventPublisher
	logger  *slog.Logger
	now     func() time.Time
	tracer  trace.Tracer
}

// NewInternService creates a new intern service.
func NewInternService(
	interns repository.InternRepository,
	hasher *auth.PasswordHasher,
	events EventPublisher,
	logger *slog.Logger,
	opts ...Option,
) *InternService {
	o := applyOptions(opts)
	return &InternService{
		interns: interns,
		hasher:  hasher,
		events:  events,
		logger:  logger,
		now:     o.now,
		tracer:  otel.Tracer(tracerName),
	}
}

// CreateInternInput holds the parameters for provisioning an intern.
type CreateInternInput struct {
	FullName       string
	Email          string
	Password       string
	PhoneNumber    string
	Location       string
	Position       string
	Department     string
	SupervisorName string
	ApprovalStatus domain.ApprovalStatus
	StartDate      time.Time
	EndDate        time.Time
}

// CreateIntern provisions an intern-role account on behalf of the admin
// adminID. The approval status defaults to pending.
func (s *InternService) CreateIntern(ctx context.Context, adminID string, input CreateInternInput) (_ *domain.PublicIntern, err error) {
	ctx, span := s.tracer.Start(ctx, "InternService.CreateIntern")
	defer func() {
		finishSpan(span, err)
		recordOutcome(opCreateIntern, err)
	}()

	approval := input.ApprovalStatus
	if approval == "" {
		approval = domain.ApprovalPending
	}
	if !approval.IsValid() {
		return nil, apperrors.InvalidInput("approvalStatus must be one of: pending approved rejected").
			WithDetail("approvalStatus", "approvalStatus must be one of: pending approved rejected")
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, apperrors.InvalidInput("endDate must be after startDate").
			WithDetail("endDate", "endDate must be after startDate")
	}

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

	now := s.now().UTC()
	start, end := input.StartDate.UTC(), input.EndDate.UTC()
	intern := &domain.Intern{
		ID:             uuid.NewString(),
		Username:       strings.TrimSpace(input.FullName),
		Email:          email,
		PasswordHash:   hash,
		Role:           domain.RoleIntern,
		ApprovalStatus: approval,
		Status:         domain.StatusActive,
		PhoneNumber:    input.PhoneNumber,
		Position:       input.Position,
		Department:     input.Department,
		Location:       input.Location,
		SupervisorName: input.SupervisorName,
		StartDate:      &start,
		EndDate:        &end,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.interns.Create(ctx, intern); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			return nil, apperrors.AlreadyExists("intern", "email")
		}
		return nil, apperrors.Internal(fmt.Errorf("create intern: %w", err))
	}
	span.SetAttributes(attribute.String("intern.id", intern.ID))

	if err := s.events.PublishInternCreated(ctx, intern, adminID); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish intern.created event",
			slog.String("intern_id", intern.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "intern created",
		slog.String("intern_id", intern.ID),
		slog.String("created_by", adminID),
		slog.String("approval_status", string(approval)),
	)

	public := intern.Public()
	return &public, nil
}
