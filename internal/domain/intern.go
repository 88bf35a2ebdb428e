package domain

import (
	"time"
)

// Intern is an account in the system. Despite the name it covers both
// intern-role and admin-role accounts.
type Intern struct {
	ID             string
	Username       string
	Email          string
	PasswordHash   string
	Role           Role
	ApprovalStatus ApprovalStatus
	Status         InternshipStatus

	// Profile fields, set when an admin provisions the intern.
	PhoneNumber    string
	Position       string
	Department     string
	Location       string
	SupervisorName string
	StartDate      *time.Time
	EndDate        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanLogin reports whether the account may complete a login. Admins are not
// subject to approval.
func (i *Intern) CanLogin() bool {
	return i.Role == RoleAdmin || i.ApprovalStatus == ApprovalApproved
}

// Identity returns the token identity of the account.
func (i *Intern) Identity() Identity {
	return Identity{InternID: i.ID, Role: i.Role}
}

// Public returns the outward view of the account. It never carries the
// password hash.
func (i *Intern) Public() PublicIntern {
	return PublicIntern{
		ID:             i.ID,
		Username:       i.Username,
		Email:          i.Email,
		Role:           i.Role,
		ApprovalStatus: i.ApprovalStatus,
		Status:         i.Status,
		PhoneNumber:    i.PhoneNumber,
		Position:       i.Position,
		Department:     i.Department,
		Location:       i.Location,
		SupervisorName: i.SupervisorName,
		StartDate:      i.StartDate,
		EndDate:        i.EndDate,
		CreatedAt:      i.CreatedAt,
		UpdatedAt:      i.UpdatedAt,
	}
}

// PublicIntern is the JSON view of an account.
type PublicIntern struct {
	ID             string           `json:"id"`
	Username       string           `json:"username"`
	Email          string           `json:"email"`
	Role           Role             `json:"role"`
	ApprovalStatus ApprovalStatus   `json:"approvalStatus"`
	Status         InternshipStatus `json:"status,omitempty"`
	PhoneNumber    string           `json:"phoneNumber,omitempty"`
	Position       string           `json:"position,omitempty"`
	Department     string           `json:"department,omitempty"`
	Location       string           `json:"location,omitempty"`
	SupervisorName string           `json:"supervisorName,omitempty"`
	StartDate      *time.Time       `json:"startDate,omitempty"`
	EndDate        *time.Time       `json:"endDate,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}
