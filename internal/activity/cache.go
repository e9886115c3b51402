// Package activity serves operational activity rows mapped from an upstream
// feed, with an in-memory slot and a durable file mirror in front of it.
package activity

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Source tags describe how a lookup was served.
const (
	SourceMemory      = "memory_cache"
	SourceDiskFresh   = "disk_cache_fresh"
	SourceFetched     = "fetched"
	SourceDiskStale   = "disk_cache_stale"
	SourceUnavailable = "unavailable"
)

const (
	DefaultTTL      = 5 * time.Minute
	DefaultMaxItems = 200
	staleRetryAfter = time.Minute
)

var errNoFetcher = pkgerrors.New(pkgerrors.CodeDependency, "activity feed not configured")

// Options bound a single lookup.
type Options struct {
	TTL      time.Duration
	MaxItems int
}

func (o Options) withDefaults() Options {
	if o.TTL <= 0 {
		o.TTL = DefaultTTL
	}
	if o.MaxItems <= 0 {
		o.MaxItems = DefaultMaxItems
	}
	return o
}

// Result is the outcome of a lookup. Rows is nil only when Source is
// SourceUnavailable; FetchedAt is zero in that case.
type Result struct {
	Rows      []types.ActivityEvent
	Source    string
	FetchedAt time.Time
}

type lookupObserver interface {
	ObserveLookup(source string)
}

type slot struct {
	fetchedAt time.Time
	expiresAt time.Time
	rows      []types.ActivityEvent
}

// Cache is safe for concurrent use. The slot lock is never held across the
// upstream fetch, so concurrent misses may refresh in parallel; the last
// writer wins and every writer stores a complete snapshot.
type Cache struct {
	fetcher  Fetcher
	mirror   Mirror
	now      func() time.Time
	logg     *logger.Logger
	observer lookupObserver

	mu   sync.Mutex
	slot slot
}

// CacheOption configures optional cache behavior.
type CacheOption func(*Cache)

func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func WithLogger(logg *logger.Logger) CacheOption {
	return func(c *Cache) { c.logg = logg }
}

func WithObserver(observer lookupObserver) CacheOption {
	return func(c *Cache) { c.observer = observer }
}

func NewCache(fetcher Fetcher, mirror Mirror, opts ...CacheOption) *Cache {
	c := &Cache{fetcher: fetcher, mirror: mirror, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Rows resolves activity rows, preferring the memory slot, then a fresh
// mirror, then the upstream feed, then a stale mirror.
func (c *Cache) Rows(ctx context.Context, opts Options) Result {
	opts = opts.withDefaults()
	ctx, span := telemetry.Tracer("activity").Start(ctx, "activity.rows")
	defer span.End()

	res := c.resolve(ctx, opts)
	span.SetAttributes(
		attribute.String("activity.source", res.Source),
		attribute.Int("activity.rows", len(res.Rows)),
	)
	if c.observer != nil {
		c.observer.ObserveLookup(res.Source)
	}
	return res
}

func (c *Cache) resolve(ctx context.Context, opts Options) Result {
	now := c.now()

	c.mu.Lock()
	current := c.slot
	c.mu.Unlock()
	if current.rows != nil && now.Before(current.expiresAt) {
		return Result{Rows: head(current.rows, opts.MaxItems), Source: SourceMemory, FetchedAt: current.fetchedAt}
	}

	disk := c.loadMirror(ctx)
	if disk != nil && now.Before(disk.FetchedAt.Add(opts.TTL)) {
		c.store(slot{fetchedAt: disk.FetchedAt, expiresAt: disk.FetchedAt.Add(opts.TTL), rows: disk.Rows})
		return Result{Rows: head(disk.Rows, opts.MaxItems), Source: SourceDiskFresh, FetchedAt: disk.FetchedAt}
	}

	fetchedAt := c.now()
	rows, err := c.fetch(ctx, fetchedAt, opts.MaxItems)
	if err == nil {
		if c.mirror != nil {
			if saveErr := c.mirror.Save(Snapshot{FetchedAt: fetchedAt, Rows: rows}); saveErr != nil {
				c.warn(ctx, "activity.mirror.save_failed", saveErr)
			}
		}
		c.store(slot{fetchedAt: fetchedAt, expiresAt: fetchedAt.Add(opts.TTL), rows: rows})
		return Result{Rows: rows, Source: SourceFetched, FetchedAt: fetchedAt}
	}

	c.warn(ctx, "activity.refresh_failed", err)
	if disk != nil {
		c.store(slot{fetchedAt: disk.FetchedAt, expiresAt: now.Add(min(opts.TTL, staleRetryAfter)), rows: disk.Rows})
		return Result{Rows: head(disk.Rows, opts.MaxItems), Source: SourceDiskStale, FetchedAt: disk.FetchedAt}
	}
	return Result{Rows: nil, Source: SourceUnavailable}
}

func (c *Cache) fetch(ctx context.Context, anchor time.Time, maxItems int) ([]types.ActivityEvent, error) {
	ctx, span := telemetry.Tracer("activity").Start(ctx, "activity.fetch")
	defer span.End()

	if c.fetcher == nil {
		return nil, errNoFetcher
	}
	todos, err := c.fetcher.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		return nil, err
	}
	todos = head(todos, maxItems)
	rows := make([]types.ActivityEvent, 0, len(todos))
	for _, todo := range todos {
		rows = append(rows, MapTodo(todo, anchor))
	}
	return rows, nil
}

func (c *Cache) loadMirror(ctx context.Context) *Snapshot {
	if c.mirror == nil {
		return nil
	}
	snap, err := c.mirror.Load()
	if err != nil {
		c.warn(ctx, "activity.mirror.unreadable", err)
		return nil
	}
	return snap
}

func (c *Cache) store(s slot) {
	c.mu.Lock()
	c.slot = s
	c.mu.Unlock()
}

func (c *Cache) warn(ctx context.Context, msg string, err error) {
	if c.logg == nil {
		return
	}
	c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), msg)
}

func head[T any](list []T, n int) []T {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
