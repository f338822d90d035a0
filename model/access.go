package model

import "time"

// Role is a membership role within a business.
type Role string

const (
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
	RoleStaff Role = "STAFF"
)

// Roles is the closed role set, highest authority first.
var Roles = []Role{RoleOwner, RoleAdmin, RoleStaff}

// Rank orders roles by authority; unknown roles rank lowest.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleStaff:
		return 1
	default:
		return 0
	}
}

func (r Role) Valid() bool { return r.Rank() > 0 }

// MembershipStatus is the lifecycle state of a membership.
type MembershipStatus string

const (
	MembershipActive    MembershipStatus = "ACTIVE"
	MembershipInvited   MembershipStatus = "INVITED"
	MembershipSuspended MembershipStatus = "SUSPENDED"
	MembershipRemoved   MembershipStatus = "REMOVED"
)

// Membership links a principal to a business with a role.
type Membership struct {
	ID         string           `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID     string           `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_member_user_business"`
	BusinessID string           `json:"business_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_member_user_business"`
	Role       Role             `json:"role" gorm:"type:varchar(16);not null;default:'STAFF'"`
	Status     MembershipStatus `json:"status" gorm:"type:varchar(16);not null;default:'INVITED'"`
	LastUsedAt *time.Time       `json:"last_used_at,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	Business   *Business        `json:"business,omitempty" gorm:"foreignKey:BusinessID"`
}

func (Membership) TableName() string { return "business_members" }

func (m *Membership) IsActive() bool {
	return m != nil && m.Status == MembershipActive
}

// AppKey identifies a tool in the suite.
type AppKey string

// ActionKey identifies an operation within a tool.
type ActionKey string

// TenantContext is the resolved scope of a request.
type TenantContext struct {
	BusinessID string `json:"businessId"`
	Role       Role   `json:"role"`
	UserID     string `json:"userId"`
}
