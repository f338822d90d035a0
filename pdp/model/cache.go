package model

import (
	"time"

	"github.com/acemetillidie0001/obd-premium-apps/model"
)

// MembershipCacheEntry is what the membership cache stores per principal.
type MembershipCacheEntry struct {
	UserID      string             `json:"user_id"`
	Memberships []model.Membership `json:"memberships"`
	CachedAt    time.Time          `json:"cached_at"`
}
