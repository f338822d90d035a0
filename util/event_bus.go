// util/event_bus.go

package util

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
)

// Event represents an event in the system
type Event struct {
	Type    string
	Payload interface{}
}

// EventHandler is a function that handles an event
type EventHandler func(context.Context, Event) error

// EventBus manages event subscriptions and publications
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	errorChan   chan error
	handlers    sync.WaitGroup
	pump        sync.WaitGroup
	stop        context.CancelFunc
}

// NewEventBus creates a new EventBus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]EventHandler),
		errorChan:   make(chan error, 100),
	}
}

// Subscribe adds a new subscriber for a specific event type
func (eb *EventBus) Subscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
}

// Publish hands the event to every subscriber on its own goroutine and returns
// immediately. Handlers get a context detached from the caller's cancellation
// so a finished request does not abort them.
func (eb *EventBus) Publish(ctx context.Context, eventType string, payload interface{}) {
	eb.mu.RLock()
	handlers := append([]EventHandler(nil), eb.subscribers[eventType]...)
	eb.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	event := Event{
		Type:    eventType,
		Payload: payload,
	}
	hctx := context.WithoutCancel(ctx)

	for _, handler := range handlers {
		eb.handlers.Add(1)
		go func(h EventHandler) {
			defer eb.handlers.Done()
			if err := h(hctx, event); err != nil {
				select {
				case eb.errorChan <- fmt.Errorf("event handler error: %w", err):
				default:
					// If error channel is full, log the error
					logger.Error("Error channel full, logging event handler error",
						zap.Error(err),
						zap.String("eventType", eventType))
				}
			}
		}(handler)
	}
}

// Start begins processing handler errors until ctx is cancelled or Stop is called.
func (eb *EventBus) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	eb.mu.Lock()
	eb.stop = cancel
	eb.mu.Unlock()

	eb.pump.Add(1)
	go func() {
		defer eb.pump.Done()
		eb.processErrors(ctx)
	}()
}

// Stop waits for in-flight handlers, then stops the error pump.
func (eb *EventBus) Stop() {
	eb.handlers.Wait()

	eb.mu.Lock()
	stop := eb.stop
	eb.stop = nil
	eb.mu.Unlock()
	if stop != nil {
		stop()
	}
	eb.pump.Wait()
}

// Wait blocks until every handler started so far has returned.
func (eb *EventBus) Wait() {
	eb.handlers.Wait()
}

// processErrors handles errors from event handlers
func (eb *EventBus) processErrors(ctx context.Context) {
	for {
		select {
		case err := <-eb.errorChan:
			logger.Error("Event handler error", zap.Error(err))
		case <-ctx.Done():
			// drain what is already queued
			for {
				select {
				case err := <-eb.errorChan:
					logger.Error("Event handler error", zap.Error(err))
				default:
					return
				}
			}
		}
	}
}

// Unsubscribe removes a subscriber for a specific event type
func (eb *EventBus) Unsubscribe(eventType string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if handlers, exists := eb.subscribers[eventType]; exists {
		for i, h := range handlers {
			if fmt.Sprintf("%p", h) == fmt.Sprintf("%p", handler) {
				eb.subscribers[eventType] = append(handlers[:i], handlers[i+1:]...)
				break
			}
		}
	}
}
