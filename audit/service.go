// audit/service.go
package audit

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	pdp_model "github.com/acemetillidie0001/obd-premium-apps/pdp/model"
	"github.com/acemetillidie0001/obd-premium-apps/util"
)

type Service interface {
	LogDecision(ctx context.Context, log AuditLog) error
	QueryDecisions(ctx context.Context, q Query) ([]AuditLog, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) LogDecision(ctx context.Context, log AuditLog) error {
	return s.repo.LogDecision(ctx, log)
}

// QueryDecisions refuses unscoped queries; audit data never crosses businesses.
func (s *service) QueryDecisions(ctx context.Context, q Query) ([]AuditLog, error) {
	if q.BusinessID == "" {
		return nil, obd_errors.NoBusinessContext(obd_errors.ErrNoBusinessContext)
	}
	logs, err := s.repo.QueryDecisions(ctx, q)
	if err != nil {
		return nil, obd_errors.Upstream(fmt.Errorf("%w: %w", obd_errors.ErrUpstreamUnavailable, err))
	}
	return logs, nil
}

// Subscribe records every access.decided event published on bus.
func Subscribe(bus *util.EventBus, svc Service) {
	bus.Subscribe(pdp_model.EventAccessDecided, func(ctx context.Context, e util.Event) error {
		decision, ok := e.Payload.(pdp_model.DecisionEvent)
		if !ok {
			return fmt.Errorf("unexpected %s payload %T", e.Type, e.Payload)
		}
		if err := svc.LogDecision(ctx, FromDecision(decision)); err != nil {
			logger.Warn("Failed to record access decision", zap.String("app", string(decision.App)), zap.Error(err))
			return err
		}
		return nil
	})
}
