package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/domain"
	"github.com/PrithiviPM2580/ltg-intern-management-system/internal/service"
	apperrors "github.com/PrithiviPM2580/ltg-intern-management-system/pkg/errors"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/httputil"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/middleware"
	"github.com/PrithiviPM2580/ltg-intern-management-system/pkg/validator"
)

// InternService is the subset of service.InternService used by InternHandler.
type InternService interface {
	CreateIntern(ctx context.Context, adminID string, input service.CreateInternInput) (*domain.PublicIntern, error)
}

// InternHandler handles admin intern management endpoints.
type InternHandler struct {
	service InternService
	logger  *slog.Logger
}

// NewInternHandler creates a new intern HTTP handler.
func NewInternHandler(svc InternService, logger *slog.Logger) *InternHandler {
	return &InternHandler{service: svc, logger: logger}
}

// CreateInternRequest is the JSON request body for admin intern creation.
type CreateInternRequest struct {
	FullName       string    `json:"fullName" validate:"required,min=3,max=50"`
	Email          string    `json:"email" validate:"required,email,max=100"`
	Password       string    `json:"password" validate:"required,min=6,max=72"`
	PhoneNumber    string    `json:"phoneNumber" validate:"required,min=10,max=15"`
	Location       string    `json:"location" validate:"required,min=2,max=100"`
	Position       string    `json:"position" validate:"required,min=2,max=100"`
	Department     string    `json:"department" validate:"required,min=2,max=100"`
	SupervisorName string    `json:"supervisorName" validate:"required,min=3,max=100"`
	ApprovalStatus string    `json:"approvalStatus" validate:"omitempty,oneof=pending approved rejected"`
	StartDate      time.Time `json:"startDate" validate:"required"`
	EndDate        time.Time `json:"endDate" validate:"required,gtfield=StartDate"`
}

// InternResponse wraps a single intern.
type InternResponse struct {
	Intern *domain.PublicIntern `json:"intern"`
}

// CreateIntern handles POST /api/v1/interns/create-intern
func (h *InternHandler) CreateIntern(w http.ResponseWriter, r *http.Request) {
	adminID := middleware.UserIDFromContext(r.Context())
	if adminID == "" {
		httputil.WriteError(w, r, apperrors.Unauthorized("authentication required"), h.logger)
		return
	}

	var req CreateInternRequest
	if err := validator.DecodeAndValidate(w, r, &req); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	intern, err := h.service.CreateIntern(r.Context(), adminID, service.CreateInternInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Password:       req.Password,
		PhoneNumber:    req.PhoneNumber,
		Location:       req.Location,
		Position:       req.Position,
		Department:     req.Department,
		SupervisorName: req.SupervisorName,
		ApprovalStatus: domain.ApprovalStatus(req.ApprovalStatus),
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteSuccess(w, http.StatusCreated, "Intern created successfully", InternResponse{Intern: intern})
}
