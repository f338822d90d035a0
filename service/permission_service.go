// service/permission_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
	"github.com/acemetillidie0001/obd-premium-apps/pdp/engine"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type IPermissionService interface {
	Require(ctx context.Context, session *model.Session, selector string, app model.AppKey, action model.ActionKey) (*model.TenantContext, error)
	Check(ctx context.Context, session *model.Session, selector string, app model.AppKey, action model.ActionKey) (*CheckResult, error)
	Allowed(ctx context.Context, session *model.Session, selector string) (*model.TenantContext, []pdp_model.Requirement, error)
}

// CheckResult is a gate outcome for a resolved tenant.
type CheckResult struct {
	Tenant  *model.TenantContext `json:"tenant"`
	Allowed bool                 `json:"allowed"`
	Reason  string               `json:"reason"`
	// Err is the error Require would return for a denial.
	Err error `json:"-"`
}

type requestIDKey struct{}

// WithRequestID tags ctx so decision events can be correlated with logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// PermissionService runs resolve, then the role matrix, then the plan gate.
// A failing step short-circuits the rest.
type PermissionService struct {
	tenants *TenantService
	premium *PremiumService
	events  *util.EventBus
	now     func() time.Time
}

func NewPermissionService(tenants *TenantService, premium *PremiumService, events *util.EventBus) *PermissionService {
	return &PermissionService{tenants: tenants, premium: premium, events: events, now: time.Now}
}

func (s *PermissionService) Require(ctx context.Context, session *model.Session, selector string, app model.AppKey, action model.ActionKey) (*model.TenantContext, error) {
	result, err := s.Check(ctx, session, selector, app, action)
	if err != nil {
		return nil, err
	}
	if !result.Allowed {
		return nil, result.Err
	}
	return result.Tenant, nil
}

// Check returns an error only when the tenant cannot be resolved. Denials by
// the matrix or the plan gate come back as a result with Allowed false.
func (s *PermissionService) Check(ctx context.Context, session *model.Session, selector string, app model.AppKey, action model.ActionKey) (*CheckResult, error) {
	event := pdp_model.DecisionEvent{
		RequestID: requestID(ctx),
		App:       app,
		Action:    action,
		At:        s.now().UTC(),
	}
	if session != nil {
		event.UserID = session.Principal.ID
	}

	membership, err := s.tenants.resolveMembership(ctx, session, selector)
	if err != nil {
		event.Code = string(obd_errors.CodeOf(err))
		s.publish(ctx, event)
		return nil, err
	}
	tc := contextFor(session.Principal.ID, membership)
	event.BusinessID = tc.BusinessID
	event.Role = tc.Role

	result := &CheckResult{Tenant: tc}
	decision := engine.EvaluateFor(tc.Role, app, action)
	result.Reason = decision.Reason

	switch {
	case !decision.Allowed:
		result.Err = obd_errors.RoleNotPermitted(fmt.Errorf("%w: %s may not %s on %s (%s)",
			obd_errors.ErrRoleNotPermitted, tc.Role, action, app, decision.Reason))
	default:
		business, err := s.tenants.businessFor(ctx, membership)
		if err != nil {
			event.Code = string(obd_errors.CodeOf(err))
			s.publish(ctx, event)
			return nil, err
		}
		if err := s.premium.Check(business, app); err != nil {
			result.Reason = pdp_model.ReasonPremiumRequired
			result.Err = err
		} else {
			result.Allowed = true
		}
	}

	event.Allowed = result.Allowed
	event.Reason = result.Reason
	if result.Err != nil {
		event.Code = string(obd_errors.CodeOf(result.Err))
	}
	s.publish(ctx, event)

	logger.Debug("Access decided",
		zap.String("userID", tc.UserID),
		zap.String("businessID", tc.BusinessID),
		zap.String("app", string(app)),
		zap.String("action", string(action)),
		zap.Bool("allowed", result.Allowed),
		zap.String("reason", result.Reason))
	return result, nil
}

// Allowed lists the (app, action) pairs the caller may perform in the resolved
// business, after both the matrix and the plan gate.
func (s *PermissionService) Allowed(ctx context.Context, session *model.Session, selector string) (*model.TenantContext, []pdp_model.Requirement, error) {
	membership, err := s.tenants.resolveMembership(ctx, session, selector)
	if err != nil {
		return nil, nil, err
	}
	tc := contextFor(session.Principal.ID, membership)
	business, err := s.tenants.businessFor(ctx, membership)
	if err != nil {
		return nil, nil, err
	}

	allowed := make([]pdp_model.Requirement, 0)
	for _, req := range engine.AllowedFor(tc.Role) {
		if s.premium.Check(business, req.App) == nil {
			allowed = append(allowed, req)
		}
	}
	return tc, allowed, nil
}

func (s *PermissionService) publish(ctx context.Context, event pdp_model.DecisionEvent) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, pdp_model.EventAccessDecided, event)
}

// EnsureSameTenant blocks requests whose body names a business other than the
// resolved one. An empty claim is accepted.
func EnsureSameTenant(tc *model.TenantContext, claimedBusinessID string) error {
	if claimedBusinessID == "" {
		return nil
	}
	if tc == nil || tc.BusinessID != claimedBusinessID {
		return obd_errors.TenantSafetyBlocked(fmt.Errorf("%w: claimed %q", obd_errors.ErrTenantMismatch, claimedBusinessID))
	}
	return nil
}
