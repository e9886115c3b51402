package auditlog

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/pkg/db/models"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestRepo(t *testing.T) Repository {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migrate.Run(context.Background(), sqlDB, migrate.Source{Dialect: "sqlite3"}, "up"))
	return NewRepository(conn)
}

func ptr[T any](v T) *T { return &v }

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, Summary{}, s)
	assert.Nil(t, s.SchemaPassRate)
}

func TestSummarize(t *testing.T) {
	rows := []models.APILog{
		{Endpoint: "/api/revenue", StatusCode: 200, LatencyMs: 40},
		{Endpoint: "/api/copilot", StatusCode: 200, LatencyMs: 900, SchemaPass: ptr(true)},
		{Endpoint: "/api/copilot", StatusCode: 200, LatencyMs: 1500, SchemaPass: ptr(false)},
		{Endpoint: "/api/copilot", StatusCode: 429, LatencyMs: 2},
		{Endpoint: "/api/activity", StatusCode: 400, LatencyMs: 5},
	}
	s := Summarize(rows)

	assert.Equal(t, 5, s.TotalRequests)
	assert.Equal(t, 3, s.CopilotRequests)
	assert.InDelta(t, 0.4, s.ErrorRate, 1e-9)
	// sorted: 2 5 40 900 1500; floor(0.95*4) = 3
	assert.Equal(t, int64(900), s.P95LatencyMs)
	require.NotNil(t, s.SchemaPassRate)
	assert.InDelta(t, 1.0/3.0, *s.SchemaPassRate, 1e-9)
}

func TestSummarizeNoCopilotRows(t *testing.T) {
	s := Summarize([]models.APILog{{Endpoint: "/api/metrics", StatusCode: 200, LatencyMs: 7}})
	assert.Nil(t, s.SchemaPassRate)
	assert.Equal(t, int64(7), s.P95LatencyMs)
	assert.Zero(t, s.ErrorRate)
}

func TestRepositoryRoundTripAndWindow(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 18, 12, 0, 0, 0, time.UTC)

	old := &models.APILog{TS: now.Add(-25 * time.Hour).UnixMilli(), Endpoint: "/api/revenue", StatusCode: 200, LatencyMs: 10}
	recent := &models.APILog{
		TS:            now.Add(-time.Hour).UnixMilli(),
		Endpoint:      "/api/copilot",
		StatusCode:    200,
		LatencyMs:     1200,
		ErrorType:     ptr("schema_invalid"),
		ModelUsed:     ptr("gpt-4o"),
		PromptVersion: ptr("v2"),
		SchemaPass:    ptr(false),
	}
	require.NoError(t, repo.Insert(ctx, old))
	require.NoError(t, repo.Insert(ctx, recent))
	assert.NotZero(t, recent.ID)

	svc := NewService(repo, nil, WithClock(func() time.Time { return now }))
	summary, err := svc.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.TotalRequests)
	assert.Equal(t, 1, summary.CopilotRequests)
	require.NotNil(t, summary.SchemaPassRate)
	assert.Zero(t, *summary.SchemaPassRate)

	rows, err := repo.Since(ctx, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "/api/revenue", rows[0].Endpoint)
	require.NotNil(t, rows[1].SchemaPass)
	assert.False(t, *rows[1].SchemaPass)
	assert.Equal(t, "gpt-4o", *rows[1].ModelUsed)
	assert.Nil(t, rows[0].ErrorType)
}

type failingRepo struct{ Repository }

func (failingRepo) Insert(context.Context, *models.APILog) error { return errors.New("disk full") }

func TestRecordSwallowsInsertFailure(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "test", Output: &buf})
	svc := NewService(failingRepo{}, logg)

	assert.NotPanics(t, func() {
		svc.Record(context.Background(), &models.APILog{Endpoint: "/api/copilot", StatusCode: 200})
	})
	assert.Contains(t, buf.String(), "auditlog.insert_failed")
}

func TestEntryAnnotations(t *testing.T) {
	ctx, entry := WithEntry(context.Background())
	require.Same(t, entry, EntryFrom(ctx))

	entry.SetErrorType("openai_error")
	entry.SetModelUsed("gpt-4o-mini")
	entry.SetPromptVersion("v1")
	entry.SetSchemaPass(true)

	ts := time.UnixMilli(1_700_000_000_000)
	row := entry.Row(ts, "/api/copilot", 200, 1500*time.Millisecond)
	assert.Equal(t, int64(1_700_000_000_000), row.TS)
	assert.Equal(t, int64(1500), row.LatencyMs)
	assert.Equal(t, "openai_error", *row.ErrorType)
	assert.Equal(t, "gpt-4o-mini", *row.ModelUsed)
	assert.Equal(t, "v1", *row.PromptVersion)
	assert.True(t, *row.SchemaPass)

	var nilEntry *Entry
	nilEntry.SetErrorType("ignored")
	assert.Nil(t, EntryFrom(context.Background()))
	bare := nilEntry.Row(ts, "/api/revenue", 200, 0)
	assert.Nil(t, bare.ErrorType)
	assert.Nil(t, bare.SchemaPass)
}
