package model

import "time"

// GlobalRole is the platform-wide trust level of a principal. It is independent
// of the per-business membership role.
type GlobalRole string

const (
	GlobalRoleUser  GlobalRole = "user"
	GlobalRoleAdmin GlobalRole = "admin"
)

// Principal is an authenticated user.
type Principal struct {
	ID         string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Email      string     `json:"email" gorm:"uniqueIndex;not null"`
	GlobalRole GlobalRole `json:"global_role" gorm:"type:varchar(16);not null;default:'user'"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (Principal) TableName() string { return "users" }

// Session is what a SessionProvider hands to the tenant resolver. It is passed
// explicitly; nothing reads it from ambient state.
type Session struct {
	ID        string    `json:"id"`
	Principal Principal `json:"principal"`
	// ActiveBusinessID is the business the user last switched to, if any.
	ActiveBusinessID string    `json:"active_business_id,omitempty"`
	IssuedAt         time.Time `json:"issued_at"`
	ExpiresAt        time.Time `json:"expires_at"`
}

// Authenticated reports whether the session carries a principal identity.
func (s *Session) Authenticated() bool {
	return s != nil && s.Principal.ID != ""
}
