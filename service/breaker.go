// service/breaker.go
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/acemetillidie0001/obd-premium-apps/dao"
	obd_errors "github.com/acemetillidie0001/obd-premium-apps/errors"
	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
	"github.com/acemetillidie0001/obd-premium-apps/model"
)

type BreakerConfig struct {
	FailureThreshold uint32
	Timeout          time.Duration
	// OnStateChange is called after every transition, e.g. to export a gauge.
	OnStateChange func(name, state string)
}

// BreakerStore guards a MembershipStore with a circuit breaker. Only
// unavailability counts as failure; a query error from a healthy store does not
// trip it.
type BreakerStore struct {
	next    dao.MembershipStore
	breaker *gobreaker.CircuitBreaker[any]
}

func NewBreakerStore(name string, next dao.MembershipStore, cfg BreakerConfig) *BreakerStore {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !dao.IsUnavailable(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
			if cfg.OnStateChange != nil {
				cfg.OnStateChange(name, to.String())
			}
		},
	}
	return &BreakerStore{next: next, breaker: gobreaker.NewCircuitBreaker[any](settings)}
}

func (s *BreakerStore) State() string {
	return s.breaker.State().String()
}

func (s *BreakerStore) ListMemberships(ctx context.Context, userID string) ([]model.Membership, error) {
	result, err := s.execute(func() (any, error) {
		return s.next.ListMemberships(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	memberships, _ := result.([]model.Membership)
	return memberships, nil
}

func (s *BreakerStore) GetBusiness(ctx context.Context, businessID string) (*model.Business, error) {
	result, err := s.execute(func() (any, error) {
		return s.next.GetBusiness(ctx, businessID)
	})
	if err != nil {
		return nil, err
	}
	business, _ := result.(*model.Business)
	return business, nil
}

// TouchMembership passes through when the wrapped store supports it.
func (s *BreakerStore) TouchMembership(ctx context.Context, userID, businessID string, at time.Time) error {
	toucher, ok := s.next.(MembershipToucher)
	if !ok {
		return nil
	}
	_, err := s.execute(func() (any, error) {
		return nil, toucher.TouchMembership(ctx, userID, businessID, at)
	})
	return err
}

func (s *BreakerStore) execute(fn func() (any, error)) (any, error) {
	result, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("membership store %s: %w: %w", s.breaker.Name(), obd_errors.ErrDatabaseUnavailable, err)
	}
	return result, err
}
