package domain

// Role is the authorization role carried in tokens.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleIntern Role = "intern"
)

// ValidRoles returns the set of valid roles.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleIntern}
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleIntern
}

func (r Role) String() string { return string(r) }

// ApprovalStatus gates whether an intern-role account may log in.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// IsValid reports whether s is a known approval status.
func (s ApprovalStatus) IsValid() bool {
	switch s {
	case ApprovalPending, ApprovalApproved, ApprovalRejected:
		return true
	}
	return false
}

// InternshipStatus tracks where an intern is in their internship.
type InternshipStatus string

const (
	StatusActive    InternshipStatus = "active"
	StatusInactive  InternshipStatus = "inactive"
	StatusCompleted InternshipStatus = "completed"
)
