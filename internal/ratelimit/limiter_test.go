package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestLimiter() (*MemoryLimiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)}
	l := NewMemoryLimiter()
	l.now = clock.Now
	return l, clock
}

func TestMemoryLimiterEleventhRequestRejected(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()
	start := clock.Now()

	for i := 1; i <= 10; i++ {
		d, err := l.Check(ctx, "copilot:1.1.1.1", 10, time.Minute)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 10-i, d.Remaining)
		assert.Equal(t, start.Add(time.Minute), d.ResetAt)
		clock.Advance(time.Second)
	}

	d, err := l.Check(ctx, "copilot:1.1.1.1", 10, time.Minute)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Equal(t, start.Add(time.Minute), d.ResetAt)
}

func TestMemoryLimiterResetsAfterWindow(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _ = l.Check(ctx, "k", 3, time.Minute)
	}
	d, _ := l.Check(ctx, "k", 3, time.Minute)
	require.False(t, d.Allowed)

	// Exactly at resetAt the old window still applies.
	clock.Advance(time.Minute)
	d, _ = l.Check(ctx, "k", 3, time.Minute)
	require.False(t, d.Allowed)

	clock.Advance(time.Millisecond)
	d, _ = l.Check(ctx, "k", 3, time.Minute)
	require.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
	assert.Equal(t, clock.Now().Add(time.Minute), d.ResetAt)
}

func TestMemoryLimiterKeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	d, _ := l.Check(ctx, "copilot:a", 1, time.Minute)
	require.True(t, d.Allowed)
	d, _ = l.Check(ctx, "copilot:a", 1, time.Minute)
	require.False(t, d.Allowed)
	d, _ = l.Check(ctx, "copilot:b", 1, time.Minute)
	require.True(t, d.Allowed)
}

func TestMemoryLimiterConcurrentHitsNeverExceedLimit(t *testing.T) {
	l, _ := newTestLimiter()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, _ := l.Check(ctx, "shared", 10, time.Minute)
			if d.Allowed {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, allowed)
}

func TestMemoryLimiterSweep(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()
	_, _ = l.Check(ctx, "old", 5, time.Second)
	clock.Advance(2 * time.Second)
	_, _ = l.Check(ctx, "fresh", 5, time.Minute)

	assert.Equal(t, 1, l.Sweep())
	assert.Len(t, l.entries, 1)
}

type fakeCounter struct {
	counts map[string]int64
	ttl    time.Duration
	err    error
}

func (f *fakeCounter) FixedWindowHit(_ context.Context, scope string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.counts[scope]++
	if f.ttl == 0 {
		return f.counts[scope], window, nil
	}
	return f.counts[scope], f.ttl, nil
}

func TestRedisLimiter(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}, ttl: 20 * time.Second}
	l := NewRedisLimiter(counter)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }
	ctx := context.Background()

	d, err := l.Check(ctx, "copilot:ip", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, now.Add(20*time.Second), d.ResetAt)

	d, _ = l.Check(ctx, "copilot:ip", 2, time.Minute)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, _ = l.Check(ctx, "copilot:ip", 2, time.Minute)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestRedisLimiterPropagatesErrors(t *testing.T) {
	l := NewRedisLimiter(&fakeCounter{err: errors.New("redis down")})
	_, err := l.Check(context.Background(), "k", 1, time.Minute)
	assert.Error(t, err)
}

func TestMemoryLimiterLimitThreeScenario(t *testing.T) {
	l, clock := newTestLimiter()
	ctx := context.Background()
	start := clock.Now()

	for i := 0; i < 3; i++ {
		d, err := l.Check(ctx, "k", 3, 60*time.Second)
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := l.Check(ctx, "k", 3, 60*time.Second)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, start.Add(60*time.Second), d.ResetAt)

	clock.Advance(61 * time.Second)
	d, err = l.Check(ctx, "k", 3, 60*time.Second)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}
