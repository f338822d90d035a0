// util/event_bus_test.go
package util

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
)

func TestEventBus_PublishDeliversToSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger.InitNop()

	bus := NewEventBus()
	bus.Start(context.Background())

	var calls atomic.Int32
	var got atomic.Value
	bus.Subscribe("access.decided", func(_ context.Context, e Event) error {
		calls.Add(1)
		got.Store(e.Payload)
		return nil
	})
	bus.Subscribe("access.decided", func(context.Context, Event) error {
		calls.Add(1)
		return errors.New("subscriber failure")
	})

	bus.Publish(context.Background(), "access.decided", "payload")
	bus.Publish(context.Background(), "other", "ignored")
	bus.Stop()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "payload", got.Load())
}

func TestEventBus_HandlerOutlivesCancelledContext(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger.InitNop()

	bus := NewEventBus()
	bus.Start(context.Background())

	var ctxErr atomic.Value
	bus.Subscribe("e", func(ctx context.Context, _ Event) error {
		ctxErr.Store(ctx.Err() == nil)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	bus.Publish(ctx, "e", nil)
	bus.Stop()

	assert.Equal(t, true, ctxErr.Load())
}

func TestEventBus_StopWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)
	bus := NewEventBus()
	bus.Stop()
}

func TestEventBus_StartStopsOnCancel(t *testing.T) {
	defer goleak.VerifyNone(t)
	logger.InitNop()

	ctx, cancel := context.WithCancel(context.Background())
	bus := NewEventBus()
	bus.Start(ctx)
	cancel()
	bus.Stop()
}
