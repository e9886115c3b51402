// Package analytics resolves revenue and activity data for the configured
// data mode and derives the reports served by the dashboard endpoints.
package analytics

import (
	"context"
	"math"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/activity"
	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/angelmondragon/opspulse-backend/internal/anomalies"
	"github.com/angelmondragon/opspulse-backend/internal/forecast"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
)

const (
	SeriesDays        = 30
	ForecastDays      = 7
	AnomalyWindow     = 7
	AnomalyZThreshold = 2.2
	DashboardRows     = 84
	CopilotRows       = 120
	DefaultMaxItems   = 220
)

// DemoSource supplies synthetic figures when live data is disabled or missing.
type DemoSource interface {
	RevenueSeries(days int, end time.Time) []types.RevenuePoint
	ActivityRows(count int, end time.Time) []types.ActivityEvent
}

// ActivityCache is the live activity lookup.
type ActivityCache interface {
	Rows(ctx context.Context, opts activity.Options) activity.Result
}

// Config controls data resolution.
type Config struct {
	Mode     types.DataMode
	CacheTTL time.Duration
	MaxItems int
}

// Service provides the analytics reports for the configured data mode.
type Service interface {
	Mode() types.DataMode
	// RevenueSeries returns the 30-day series and its provenance.
	RevenueSeries(ctx context.Context) types.SeriesResult
	// ActivityRows returns recent activity; count applies only to synthetic rows.
	ActivityRows(ctx context.Context, count int) types.ActivityResult
	Revenue(ctx context.Context) (*types.RevenueReport, error)
	Forecast(ctx context.Context) (*types.ForecastReport, error)
	Anomalies(ctx context.Context) (*types.AnomalyReport, error)
	Activity(ctx context.Context, q types.ActivityQuery) (*types.ActivityPage, error)
	Clients(ctx context.Context) (*types.ClientsReport, error)
}

type service struct {
	cfg   Config
	demo  DemoSource
	live  ActivityCache
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

// NewService builds the analytics service. live may be nil, in which case
// mixed and live modes always use the demo fallback.
func NewService(cfg Config, demo DemoSource, live ActivityCache, opts ...Option) (Service, error) {
	if demo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "demo source required")
	}
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = DefaultMaxItems
	}
	cfg.Mode = types.ParseDataMode(string(cfg.Mode))

	s := &service{cfg: cfg, demo: demo, live: live, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *service) Mode() types.DataMode {
	return s.cfg.Mode
}

func (s *service) liveRows(ctx context.Context) activity.Result {
	if s.live == nil {
		return activity.Result{Source: activity.SourceUnavailable}
	}
	return s.live.Rows(ctx, activity.Options{TTL: s.cfg.CacheTTL, MaxItems: s.cfg.MaxItems})
}

func (s *service) RevenueSeries(ctx context.Context) types.SeriesResult {
	mode := s.cfg.Mode
	now := s.clock()

	switch mode {
	case types.DataModeLive:
		live := s.liveRows(ctx)
		if live.Rows != nil {
			end := live.FetchedAt
			if end.IsZero() {
				end = now
			}
			if derived := activity.DeriveRevenueSeries(live.Rows, SeriesDays, end); derived != nil {
				return types.SeriesResult{Series: derived, Mode: mode, Source: types.ActivitySource(live.Source)}
			}
		}
		return types.SeriesResult{Series: s.demo.RevenueSeries(SeriesDays, now), Mode: mode, Source: types.SourceDemoFallback}
	case types.DataModeMixed:
		return types.SeriesResult{Series: s.demo.RevenueSeries(SeriesDays, now), Mode: mode, Source: types.SourceDemoRevenue}
	default:
		return types.SeriesResult{Series: s.demo.RevenueSeries(SeriesDays, now), Mode: mode, Source: types.SourceDemo}
	}
}

func (s *service) ActivityRows(ctx context.Context, count int) types.ActivityResult {
	mode := s.cfg.Mode
	if mode == types.DataModeDemo {
		return types.ActivityResult{Rows: s.demo.ActivityRows(count, s.clock()), Mode: mode, Source: types.SourceDemo}
	}
	live := s.liveRows(ctx)
	if live.Rows != nil {
		return types.ActivityResult{Rows: live.Rows, Mode: mode, Source: live.Source}
	}
	return types.ActivityResult{Rows: s.demo.ActivityRows(count, s.clock()), Mode: mode, Source: types.SourceDemoFallback}
}

func (s *service) Revenue(ctx context.Context) (*types.RevenueReport, error) {
	res := s.RevenueSeries(ctx)
	return &types.RevenueReport{
		Series:     res.Series,
		KPIs:       ComputeKPIs(res.Series),
		DataMode:   res.Mode,
		DataSource: res.Source,
	}, nil
}

func (s *service) Forecast(ctx context.Context) (*types.ForecastReport, error) {
	res := s.RevenueSeries(ctx)
	points, err := forecast.Build(res.Series, ForecastDays)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build forecast")
	}
	return &types.ForecastReport{Forecast: points, DataMode: res.Mode, DataSource: res.Source}, nil
}

func (s *service) Anomalies(ctx context.Context) (*types.AnomalyReport, error) {
	res := s.RevenueSeries(ctx)
	found := anomalies.Detect(res.Series, anomalies.Options{Window: AnomalyWindow, ZThreshold: AnomalyZThreshold})
	return &types.AnomalyReport{Anomalies: found, DataMode: res.Mode, DataSource: res.Source}, nil
}

func (s *service) Activity(ctx context.Context, q types.ActivityQuery) (*types.ActivityPage, error) {
	q, err := NormalizeActivityQuery(q)
	if err != nil {
		return nil, err
	}
	res := s.ActivityRows(ctx, DashboardRows)
	sorted := SortActivity(res.Rows, q.SortBy, q.SortDir)

	total := len(sorted)
	totalPages := max(1, int(math.Ceil(float64(total)/float64(q.PageSize))))
	page := min(q.Page, totalPages)
	start := min((page-1)*q.PageSize, total)
	end := min(start+q.PageSize, total)

	return &types.ActivityPage{
		Rows:       sorted[start:end],
		Page:       page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: totalPages,
		DataMode:   res.Mode,
		DataSource: res.Source,
	}, nil
}

func (s *service) Clients(ctx context.Context) (*types.ClientsReport, error) {
	res := s.ActivityRows(ctx, DashboardRows)
	return &types.ClientsReport{
		Clients:    SummarizeClients(res.Rows, s.clock()),
		DataMode:   res.Mode,
		DataSource: res.Source,
	}, nil
}

// ComputeKPIs totals the series; the remaining tiles are fixed demo figures.
func ComputeKPIs(series []types.RevenuePoint) types.KPIs {
	var total float64
	for _, p := range series {
		total += p.Revenue
	}
	return types.KPIs{
		TotalRevenue30d:        total,
		ActiveStores:           42,
		UpcomingCateringOrders: 14,
		OnTimePickupRate:       0.93,
		Deltas: types.KPIDeltas{
			TotalRevenue30d:        4.2,
			ActiveStores:           0.0,
			UpcomingCateringOrders: -6.4,
			OnTimePickupRate:       1.1,
		},
	}
}
