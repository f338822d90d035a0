// service/tenant_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/acemetillidie0001/obd-premium-apps/dao"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type ITenantService interface {
	Resolve(ctx context.Context, session *model.Session, selector string) (*model.TenantContext, error)
	ListContexts(ctx context.Context, session *model.Session) ([]model.BusinessChoice, error)
	Switch(ctx context.Context, session *model.Session, businessID string) (*model.TenantContext, error)
}

// MembershipToucher is implemented by stores that can record a business switch.
type MembershipToucher interface {
	TouchMembership(ctx context.Context, userID, businessID string, at time.Time) error
}

// TenantService resolves which business a request acts on and with which role.
//
// Precedence, first match wins:
//  1. an explicit selector, which must name an ACTIVE membership;
//  2. the session's ActiveBusinessID when it still names an ACTIVE membership;
//  3. the only ACTIVE membership;
//  4. the most recently used membership, then higher role, then oldest
//     membership, then business id.
type TenantService struct {
	store dao.MembershipStore
	cache *util.CacheService
	now   func() time.Time
}

func NewTenantService(store dao.MembershipStore, cache *util.CacheService) *TenantService {
	return &TenantService{store: store, cache: cache, now: time.Now}
}

func (s *TenantService) Resolve(ctx context.Context, session *model.Session, selector string) (*model.TenantContext, error) {
	membership, err := s.resolveMembership(ctx, session, selector)
	if err != nil {
		return nil, err
	}
	return contextFor(session.Principal.ID, membership), nil
}

// ListContexts returns every ACTIVE business of the caller in preference order.
// The entry Resolve would pick without a selector is marked Active.
func (s *TenantService) ListContexts(ctx context.Context, session *model.Session) ([]model.BusinessChoice, error) {
	if err := s.authenticate(session); err != nil {
		return nil, err
	}
	active, err := s.activeMemberships(ctx, session.Principal.ID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return []model.BusinessChoice{}, nil
	}

	currentID := pick(active, session.ActiveBusinessID).BusinessID
	userID := session.Principal.ID
	sortByPreference(userID, active)

	choices := make([]model.BusinessChoice, 0, len(active))
	for i := range active {
		m := &active[i]
		choice := model.BusinessChoice{
			BusinessID: m.BusinessID,
			Role:       effectiveRole(userID, m),
			LastUsedAt: m.LastUsedAt,
			Active:     m.BusinessID == currentID,
		}
		if m.Business != nil {
			choice.Name = m.Business.Name
			choice.Plan = m.Business.Plan
		}
		choices = append(choices, choice)
	}
	return choices, nil
}

// Switch validates businessID like an explicit selector and records it as the
// most recently used business when the store supports it.
func (s *TenantService) Switch(ctx context.Context, session *model.Session, businessID string) (*model.TenantContext, error) {
	if businessID == "" {
		return nil, obd_errors.Validation("", []util.FieldError{{Field: "businessId", Rule: "required"}})
	}
	tc, err := s.Resolve(ctx, session, businessID)
	if err != nil {
		return nil, err
	}

	if toucher, ok := s.store.(MembershipToucher); ok {
		if err := toucher.TouchMembership(ctx, tc.UserID, tc.BusinessID, s.now().UTC()); err != nil {
			return nil, storeError(err)
		}
	}
	if err := s.cache.DeleteMemberships(ctx, tc.UserID); err != nil {
		logger.Warn("Failed to invalidate membership cache", zap.String("userID", tc.UserID), zap.Error(err))
	}
	logger.Info("Business switched", zap.String("userID", tc.UserID), zap.String("businessID", tc.BusinessID))
	return tc, nil
}

// resolveMembership also serves the gate, which needs the Business for the plan check.
func (s *TenantService) resolveMembership(ctx context.Context, session *model.Session, selector string) (*model.Membership, error) {
	if err := s.authenticate(session); err != nil {
		return nil, err
	}
	userID := session.Principal.ID

	active, err := s.activeMemberships(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, obd_errors.NoBusinessContext(obd_errors.ErrNoBusinessContext)
	}

	if selector != "" {
		for i := range active {
			if active[i].BusinessID == selector {
				return &active[i], nil
			}
		}
		logger.Debug("Selected business is not an active membership",
			zap.String("userID", userID), zap.String("businessID", selector))
		return nil, obd_errors.BusinessNotAllowed(fmt.Errorf("%w: %s", obd_errors.ErrBusinessNotAllowed, selector))
	}

	return pick(active, session.ActiveBusinessID), nil
}

// businessFor returns the membership's Business, loading it when the store
// did not join it.
func (s *TenantService) businessFor(ctx context.Context, m *model.Membership) (*model.Business, error) {
	if m.Business != nil {
		return m.Business, nil
	}
	business, err := s.store.GetBusiness(ctx, m.BusinessID)
	if err != nil {
		if errors.Is(err, obd_errors.ErrNotFound) {
			return nil, nil
		}
		return nil, storeError(err)
	}
	return business, nil
}

func (s *TenantService) authenticate(session *model.Session) error {
	if !session.Authenticated() {
		return obd_errors.Unauthorized(obd_errors.ErrUnauthenticated)
	}
	if !session.ExpiresAt.IsZero() && !s.now().Before(session.ExpiresAt) {
		return obd_errors.Unauthorized(obd_errors.ErrSessionExpired)
	}
	return nil
}

// activeMemberships loads the caller's memberships, cache first, and keeps the
// ACTIVE ones. Store failures come back as AppErrors.
func (s *TenantService) activeMemberships(ctx context.Context, userID string) ([]model.Membership, error) {
	memberships, hit, err := s.cache.GetMemberships(ctx, userID)
	if err != nil {
		logger.Warn("Membership cache read failed", zap.String("userID", userID), zap.Error(err))
	}
	if !hit {
		memberships, err = s.store.ListMemberships(ctx, userID)
		if err != nil {
			logger.Error("Membership lookup failed", zap.String("userID", userID), zap.Error(err))
			return nil, storeError(err)
		}
		if err := s.cache.SetMemberships(ctx, userID, memberships); err != nil {
			logger.Warn("Membership cache write failed", zap.String("userID", userID), zap.Error(err))
		}
	}

	active := make([]model.Membership, 0, len(memberships))
	for _, m := range memberships {
		if m.IsActive() && m.UserID == userID {
			active = append(active, m)
		}
	}
	return active, nil
}

// pick applies precedence steps 2-4 to a non-empty ACTIVE list.
func pick(active []model.Membership, sessionBusinessID string) *model.Membership {
	if sessionBusinessID != "" {
		for i := range active {
			if active[i].BusinessID == sessionBusinessID {
				return &active[i]
			}
		}
	}
	if len(active) == 1 {
		return &active[0]
	}
	userID := active[0].UserID
	ordered := append([]model.Membership(nil), active...)
	sortByPreference(userID, ordered)
	return &ordered[0]
}

func sortByPreference(userID string, memberships []model.Membership) {
	sort.SliceStable(memberships, func(i, j int) bool {
		a, b := &memberships[i], &memberships[j]
		switch {
		case a.LastUsedAt != nil && b.LastUsedAt == nil:
			return true
		case a.LastUsedAt == nil && b.LastUsedAt != nil:
			return false
		case a.LastUsedAt != nil && !a.LastUsedAt.Equal(*b.LastUsedAt):
			return a.LastUsedAt.After(*b.LastUsedAt)
		}
		if ra, rb := effectiveRole(userID, a).Rank(), effectiveRole(userID, b).Rank(); ra != rb {
			return ra > rb
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.BusinessID < b.BusinessID
	})
}

// effectiveRole treats the business owner as OWNER regardless of the stored role.
func effectiveRole(userID string, m *model.Membership) model.Role {
	if m.Business != nil && m.Business.OwnerUserID != "" && m.Business.OwnerUserID == userID {
		return model.RoleOwner
	}
	return m.Role
}

func contextFor(userID string, m *model.Membership) *model.TenantContext {
	return &model.TenantContext{
		BusinessID: m.BusinessID,
		Role:       effectiveRole(userID, m),
		UserID:     userID,
	}
}

// storeError never yields FORBIDDEN: an unreachable store is DB_UNAVAILABLE,
// anything else UNKNOWN_ERROR.
func storeError(err error) error {
	if dao.IsUnavailable(err) {
		return obd_errors.DBUnavailable(err)
	}
	return obd_errors.Unknown(err)
}
