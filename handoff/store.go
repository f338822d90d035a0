// handoff/store.go
package handoff

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	logger "github.com/acemetillidie0001/obd-premium-apps/logging"
)

const (
	itemPrefix     = "handoff:"
	consumedPrefix = "handoff-consumed:"
)

// Observer is told the outcome of every store operation, e.g. for metrics.
type Observer interface {
	HandoffOutcome(op, outcome string)
}

// Store moves draft suggestions between tools through a session Storage.
// A nil Storage is allowed and makes every operation a no-op.
type Store struct {
	storage  Storage
	maxTTL   time.Duration
	observer Observer
	now      func() time.Time
}

type Option func(*Store)

// WithMaxTTL clamps Create's ttl.
func WithMaxTTL(d time.Duration) Option { return func(s *Store) { s.maxTTL = d } }

func WithObserver(o Observer) Option { return func(s *Store) { s.observer = o } }

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option { return func(s *Store) { s.now = now } }

func NewStore(storage Storage, opts ...Option) *Store {
	s := &Store{storage: storage, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create stamps and persists draft under key. It returns nil, and never an
// error, when ttl is not positive, storage is absent, or persisting fails.
// Data must be a JSON object or array; it is stored and returned compacted,
// so insignificant whitespace in draft.Data is not preserved.
func (s *Store) Create(ctx context.Context, key string, draft Draft, ttl time.Duration) *Payload {
	if ttl <= 0 || s.storage == nil || key == "" {
		s.observe("create", "skipped")
		return nil
	}
	if s.maxTTL > 0 && ttl > s.maxTTL {
		ttl = s.maxTTL
	}

	data, ok := compact(draft.Data)
	if !ok {
		s.observe("create", "invalid")
		return nil
	}

	now := s.now().UTC()
	p := &Payload{
		ID:         uuid.NewString(),
		SourceApp:  draft.SourceApp,
		BusinessID: draft.BusinessID,
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
		Data:       data,
	}
	if !wellFormed(p) {
		s.observe("create", "invalid")
		return nil
	}

	raw, err := json.Marshal(p)
	if err != nil {
		s.observe("create", "error")
		return nil
	}
	if err := s.storage.SetItem(ctx, itemPrefix+key, string(raw), ttl); err != nil {
		logger.Warn("Failed to store handoff", zap.String("key", key), zap.Error(err))
		s.observe("create", "error")
		return nil
	}
	s.observe("create", "ok")
	return p
}

// Read returns the payload under key. Expired or undecodable payloads are
// removed and reported as absent.
func (s *Store) Read(ctx context.Context, key string) *Payload {
	if s.storage == nil {
		return nil
	}
	raw, ok, err := s.storage.GetItem(ctx, itemPrefix+key)
	if err != nil {
		logger.Warn("Failed to read handoff", zap.String("key", key), zap.Error(err))
		s.observe("read", "error")
		return nil
	}
	if !ok {
		s.observe("read", "absent")
		return nil
	}

	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.remove(ctx, key)
		s.observe("read", "invalid")
		return nil
	}
	if p.expiredAt(s.now()) {
		s.remove(ctx, key)
		s.observe("read", "expired")
		return nil
	}
	s.observe("read", "ok")
	return &p
}

// Validate is the package Validate with Now defaulting to the store clock.
func (s *Store) Validate(p *Payload, opts ValidateOptions) ValidationResult {
	if opts.Now.IsZero() {
		opts.Now = s.now()
	}
	return Validate(p, opts)
}

// Clear removes key. Removing an absent key is not an error.
func (s *Store) Clear(ctx context.Context, key string) error {
	if s.storage == nil {
		return nil
	}
	return s.storage.RemoveItem(ctx, itemPrefix+key)
}

// ApplyResult is the outcome of Apply. Payload is set only when Applied.
type ApplyResult struct {
	Found   bool     `json:"found"`
	Applied bool     `json:"applied"`
	Reason  Reason   `json:"reason,omitempty"`
	Notice  string   `json:"notice,omitempty"`
	Payload *Payload `json:"payload,omitempty"`
}

// Apply consumes the payload under key on an explicit user action. Whatever the
// outcome, the payload is gone afterwards. A payload id that was already
// applied or dismissed is rejected as invalid_payload.
func (s *Store) Apply(ctx context.Context, key string, opts ValidateOptions) ApplyResult {
	p := s.Read(ctx, key)
	if p == nil {
		return ApplyResult{}
	}
	defer s.remove(ctx, key)

	if res := s.Validate(p, opts); !res.OK {
		s.observe("apply", string(res.Reason))
		return ApplyResult{Found: true, Reason: res.Reason, Notice: Notice(res.Reason)}
	}

	first, err := s.markConsumed(ctx, p)
	if err != nil {
		logger.Warn("Failed to mark handoff consumed", zap.String("key", key), zap.Error(err))
	}
	if !first {
		s.observe("apply", "consumed")
		return ApplyResult{Found: true, Reason: ReasonInvalidPayload, Notice: Notice(ReasonInvalidPayload)}
	}

	s.observe("apply", "ok")
	return ApplyResult{Found: true, Applied: true, Payload: p}
}

// Dismiss discards the payload under key so it is never offered again.
func (s *Store) Dismiss(ctx context.Context, key string) error {
	if p := s.Read(ctx, key); p != nil {
		if _, err := s.markConsumed(ctx, p); err != nil {
			logger.Warn("Failed to mark handoff dismissed", zap.String("key", key), zap.Error(err))
		}
		s.observe("dismiss", "ok")
	}
	return s.Clear(ctx, key)
}

// markConsumed reports whether p was not consumed before. A failing marker
// write counts as consumed so a payload is never applied twice.
func (s *Store) markConsumed(ctx context.Context, p *Payload) (bool, error) {
	ttl := p.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		ttl = time.Second
	}
	name := consumedPrefix + p.ID

	if m, ok := s.storage.(onceMarker); ok {
		return m.MarkOnce(ctx, name, ttl)
	}
	if _, seen, err := s.storage.GetItem(ctx, name); err != nil || seen {
		return false, err
	}
	if err := s.storage.SetItem(ctx, name, "1", ttl); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) remove(ctx context.Context, key string) {
	if err := s.Clear(ctx, key); err != nil {
		logger.Warn("Failed to clear handoff", zap.String("key", key), zap.Error(err))
	}
}

func (s *Store) observe(op, outcome string) {
	if s.observer != nil {
		s.observer.HandoffOutcome(op, outcome)
	}
}

func compact(data json.RawMessage) (json.RawMessage, bool) {
	if len(data) == 0 || len(data) > MaxDataBytes {
		return nil, false
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, data); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}
