// handoff/storage.go
package handoff

import (
	"context"
	"sync"
	"time"

	"github.com/acemetillidie0001/obd-premium-apps/db"
)

// Storage is a per-session string key/value store.
type Storage interface {
	GetItem(ctx context.Context, key string) (string, bool, error)
	// SetItem stores value; ttl <= 0 keeps it until removed.
	SetItem(ctx context.Context, key, value string, ttl time.Duration) error
	RemoveItem(ctx context.Context, key string) error
}

// onceMarker is implemented by storages that can set a marker atomically.
type onceMarker interface {
	MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

type memoryItem struct {
	value   string
	expires time.Time
}

// MemoryStorage keeps items in process memory, one instance per browser tab
// or session.
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: map[string]memoryItem{}, now: time.Now}
}

func (m *MemoryStorage) GetItem(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[key]
	if !ok {
		return "", false, nil
	}
	if !item.expires.IsZero() && !m.now().Before(item.expires) {
		delete(m.items, key)
		return "", false, nil
	}
	return item.value, true, nil
}

func (m *MemoryStorage) SetItem(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryStorage) RemoveItem(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryStorage) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[key]; ok && (item.expires.IsZero() || m.now().Before(item.expires)) {
		return false, nil
	}
	item := memoryItem{value: "1"}
	if ttl > 0 {
		item.expires = m.now().Add(ttl)
	}
	m.items[key] = item
	return true, nil
}

// Len reports the number of unexpired items and drops the expired ones.
func (m *MemoryStorage) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for key, item := range m.items {
		if !item.expires.IsZero() && !now.Before(item.expires) {
			delete(m.items, key)
		}
	}
	return len(m.items)
}

// sweepInterval bounds how often For walks the session table. A session is
// only reclaimed once it has been idle for at least this long.
const sweepInterval = time.Minute

type memorySession struct {
	storage *MemoryStorage
	touched time.Time
}

// MemorySessions hands out one MemoryStorage per session id. It is the
// fallback when redis is not configured. Idle sessions whose items have all
// expired or been removed are reclaimed on a later For.
type MemorySessions struct {
	mu        sync.Mutex
	sessions  map[string]*memorySession
	now       func() time.Time
	lastSweep time.Time
}

func NewMemorySessions() *MemorySessions {
	return &MemorySessions{sessions: map[string]*memorySession{}, now: time.Now}
}

func (s *MemorySessions) For(sessionID string) Storage {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sweepInterval {
		s.sweep(now)
		s.lastSweep = now
	}
	sess, ok := s.sessions[sessionID]
	if !ok {
		storage := NewMemoryStorage()
		storage.now = s.now
		sess = &memorySession{storage: storage}
		s.sessions[sessionID] = sess
	}
	sess.touched = now
	return sess.storage
}

// sweep must be called with s.mu held.
func (s *MemorySessions) sweep(now time.Time) {
	for id, sess := range s.sessions {
		if now.Sub(sess.touched) >= sweepInterval && sess.storage.Len() == 0 {
			delete(s.sessions, id)
		}
	}
}

// RedisStorage scopes items to one session in redis.
type RedisStorage struct {
	sessionID string
}

func NewRedisStorage(sessionID string) *RedisStorage {
	return &RedisStorage{sessionID: sessionID}
}

func (r *RedisStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return db.GetSessionItem(ctx, r.sessionID, key)
}

func (r *RedisStorage) SetItem(ctx context.Context, key, value string, ttl time.Duration) error {
	return db.SetSessionItem(ctx, r.sessionID, key, value, ttl)
}

func (r *RedisStorage) RemoveItem(ctx context.Context, key string) error {
	return db.RemoveSessionItem(ctx, r.sessionID, key)
}

func (r *RedisStorage) MarkOnce(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return db.MarkOnce(ctx, r.sessionID+":"+key, ttl)
}
