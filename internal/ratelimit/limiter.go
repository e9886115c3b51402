// Package ratelimit implements a fixed-window request counter keyed by client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one Check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter counts hits per key inside fixed windows.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

type entry struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter keeps windows in process memory. State is lost on restart and
// is not shared between replicas.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	now     func() time.Time
}

// NewMemoryLimiter builds an empty in-process limiter.
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check opens a new window on the first hit or once the stored window has
// passed, rejects once count has reached limit, and otherwise increments.
func (m *MemoryLimiter) Check(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || now.After(e.resetAt) {
		e = &entry{count: 1, resetAt: now.Add(window)}
		m.entries[key] = e
		return Decision{Allowed: true, Remaining: max(0, limit-e.count), ResetAt: e.resetAt}, nil
	}

	if e.count >= limit {
		return Decision{Allowed: false, Remaining: 0, ResetAt: e.resetAt}, nil
	}

	e.count++
	return Decision{Allowed: true, Remaining: max(0, limit-e.count), ResetAt: e.resetAt}, nil
}

// Sweep drops windows that have already expired.
func (m *MemoryLimiter) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for key, e := range m.entries {
		if now.After(e.resetAt) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}
