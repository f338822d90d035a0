// util/cache_service.go

package util

import (
	"context"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps/db"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
)

// CacheService fronts the redis helpers. Every method is a no-op miss when
// redis is not configured.
type CacheService struct {
	ttl time.Duration
}

func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{ttl: ttl}
}

func (c *CacheService) Enabled() bool {
	return c != nil && db.RedisEnabled()
}

func (c *CacheService) GetMemberships(ctx context.Context, userID string) ([]model.Membership, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	entry, err := db.GetCachedMemberships(ctx, userID)
	if err != nil || entry == nil {
		return nil, false, err
	}
	return entry.Memberships, true, nil
}

func (c *CacheService) SetMemberships(ctx context.Context, userID string, memberships []model.Membership) error {
	if !c.Enabled() {
		return nil
	}
	return db.CacheMemberships(ctx, &pdp_model.MembershipCacheEntry{
		UserID:      userID,
		Memberships: memberships,
		CachedAt:    time.Now().UTC(),
	}, c.ttl)
}

func (c *CacheService) DeleteMemberships(ctx context.Context, userID string) error {
	if !c.Enabled() {
		return nil
	}
	return db.DeleteCachedMemberships(ctx, userID)
}
