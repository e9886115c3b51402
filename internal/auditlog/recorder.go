// Package auditlog records every API request and summarises the trail for the
// health endpoint.
package auditlog

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/opspulse-backend/pkg/db/models"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

// HealthWindow is the rolling window reported by the health endpoint.
const HealthWindow = 24 * time.Hour

// Entry is the mutable audit record for one in-flight request. Middleware
// opens it, handlers annotate it, and it is written once the response is done.
type Entry struct {
	mu            sync.Mutex
	errorType     string
	modelUsed     string
	promptVersion string
	schemaPass    *bool
}

func (e *Entry) SetErrorType(v string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.errorType = v
	e.mu.Unlock()
}

func (e *Entry) SetModelUsed(v string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.modelUsed = v
	e.mu.Unlock()
}

func (e *Entry) SetPromptVersion(v string) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.promptVersion = v
	e.mu.Unlock()
}

func (e *Entry) SetSchemaPass(v bool) {
	if e == nil {
		return
	}
	e.mu.Lock()
	e.schemaPass = &v
	e.mu.Unlock()
}

// ErrorType returns the annotated error type, "" when none was set.
func (e *Entry) ErrorType() string {
	if e == nil {
		return ""
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errorType
}

// Row materialises the entry into a persistable row.
func (e *Entry) Row(ts time.Time, endpoint string, status int, latency time.Duration) *models.APILog {
	row := &models.APILog{
		TS:         ts.UnixMilli(),
		Endpoint:   endpoint,
		StatusCode: status,
		LatencyMs:  latency.Milliseconds(),
	}
	if e == nil {
		return row
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	row.ErrorType = optional(e.errorType)
	row.ModelUsed = optional(e.modelUsed)
	row.PromptVersion = optional(e.promptVersion)
	if e.schemaPass != nil {
		v := *e.schemaPass
		row.SchemaPass = &v
	}
	return row
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

type entryKey struct{}

// WithEntry attaches a fresh entry to ctx.
func WithEntry(ctx context.Context) (context.Context, *Entry) {
	e := &Entry{}
	return context.WithValue(ctx, entryKey{}, e), e
}

// EntryFrom returns the request's entry, or nil outside an audited request.
// Every Entry method tolerates nil.
func EntryFrom(ctx context.Context) *Entry {
	if ctx == nil {
		return nil
	}
	e, _ := ctx.Value(entryKey{}).(*Entry)
	return e
}

// Service writes audit rows and reads back the health summary.
type Service interface {
	Record(ctx context.Context, row *models.APILog)
	Health(ctx context.Context) (Summary, error)
}

type service struct {
	repo  Repository
	logg  *logger.Logger
	clock func() time.Time
}

// Option configures optional service behavior.
type Option func(*service)

func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.clock = now
		}
	}
}

func NewService(repo Repository, logg *logger.Logger, opts ...Option) Service {
	s := &service{repo: repo, logg: logg, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Record persists row. A failed write is logged and swallowed.
func (s *service) Record(ctx context.Context, row *models.APILog) {
	if s.repo == nil || row == nil {
		return
	}
	ctx = context.WithoutCancel(ctx)
	if err := s.repo.Insert(ctx, row); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "endpoint", row.Endpoint), "auditlog.insert_failed", err)
	}
}

// Health summarises the last HealthWindow of rows.
func (s *service) Health(ctx context.Context) (Summary, error) {
	if s.repo == nil {
		return Summary{}, nil
	}
	since := s.clock().Add(-HealthWindow).UnixMilli()
	rows, err := s.repo.Since(ctx, since)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows), nil
}
