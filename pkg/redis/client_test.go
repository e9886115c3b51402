package redis

import (
	"context"
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"github.com/redis/go-redis/v9"
)

func TestFixedWindowHit(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	client := &Client{store: mock}

	count, ttl, err := client.FixedWindowHit(ctx, "copilot:1.2.3.4", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected counter 1 got %d", count)
	}
	if ttl != time.Minute {
		t.Fatalf("expected full window ttl, got %v", ttl)
	}
	if len(mock.expireCalls) != 1 || mock.expireCalls[0].key != "ops:rate_limit:copilot:1.2.3.4" {
		t.Fatalf("expected expire for first increment, got %+v", mock.expireCalls)
	}

	count, _, err = client.FixedWindowHit(ctx, "copilot:1.2.3.4", time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("unexpected second count %d", count)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expire should not be set again")
	}
}

func TestFixedWindowHitRepairsMissingExpiry(t *testing.T) {
	ctx := context.Background()
	mock := newMockCmdable()
	mock.incr["ops:rate_limit:scope"] = 4
	client := &Client{store: mock}

	count, ttl, err := client.FixedWindowHit(ctx, "scope", 30*time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 5 || ttl != 30*time.Second {
		t.Fatalf("unexpected count=%d ttl=%v", count, ttl)
	}
	if len(mock.expireCalls) != 1 {
		t.Fatalf("expected expiry to be restored")
	}
}

func TestNilStoreErrors(t *testing.T) {
	client := &Client{}
	if err := client.Ping(context.Background()); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if _, err := client.IncrWithTTL(context.Background(), "k", time.Second); err == nil {
		t.Fatalf("expected error from uninitialized client")
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close without raw client should be a no-op: %v", err)
	}
}

func TestKeyBuilders(t *testing.T) {
	client := &Client{}
	if got := client.RateLimitKey("copilot:unknown"); got != "ops:rate_limit:copilot:unknown" {
		t.Fatalf("unexpected rate limit key %s", got)
	}
	if got := client.buildKey("rate_limit", " ", "x"); got != "ops:rate_limit:x" {
		t.Fatalf("blank parts should be skipped, got %s", got)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatalf("expected missing url error")
	}
	opts, err := optionsFromConfig(config.RedisConfig{URL: "redis://localhost:6379/2", PoolSize: 7, DialTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.DB != 2 || opts.PoolSize != 7 || opts.DialTimeout != time.Second {
		t.Fatalf("unexpected options %+v", opts)
	}
}

type mockCmdable struct {
	incr        map[string]int64
	ttl         map[string]time.Duration
	expireCalls []expireCall
}

type expireCall struct {
	key string
	ttl time.Duration
}

func newMockCmdable() *mockCmdable {
	return &mockCmdable{
		incr: make(map[string]int64),
		ttl:  make(map[string]time.Duration),
	}
}

func (m *mockCmdable) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (m *mockCmdable) Incr(ctx context.Context, key string) *redis.IntCmd {
	m.incr[key]++
	return redis.NewIntResult(m.incr[key], nil)
}

func (m *mockCmdable) PExpire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	m.expireCalls = append(m.expireCalls, expireCall{key: key, ttl: expiration})
	m.ttl[key] = expiration
	return redis.NewBoolResult(true, nil)
}

func (m *mockCmdable) PTTL(ctx context.Context, key string) *redis.DurationCmd {
	ttl, ok := m.ttl[key]
	if !ok {
		return redis.NewDurationResult(-1, nil)
	}
	return redis.NewDurationResult(ttl, nil)
}

func (m *mockCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(m.incr, key)
		delete(m.ttl, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
