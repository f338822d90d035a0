package model

import "time"

// Plan is the billing tier of a business.
type Plan string

const (
	PlanFree    Plan = "free"
	PlanPremium Plan = "premium"
)

// Business is the tenant unit.
type Business struct {
	ID            string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name          string     `json:"name" gorm:"not null"`
	OwnerUserID   string     `json:"owner_user_id" gorm:"type:varchar(64);index"`
	Plan          Plan       `json:"plan" gorm:"type:varchar(16);not null;default:'free'"`
	PlanExpiresAt *time.Time `json:"plan_expires_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Business) TableName() string { return "businesses" }

// HasPremium reports whether the business has an unexpired premium plan at now.
func (b *Business) HasPremium(now time.Time) bool {
	if b == nil || b.Plan != PlanPremium {
		return false
	}
	return b.PlanExpiresAt == nil || now.Before(*b.PlanExpiresAt)
}
