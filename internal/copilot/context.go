package copilot

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
)

const (
	MaxExtraDataPoints   = 12
	MaxExtraPointLen     = 240
	truncatedPointLen    = 237
	promptVersionMarker  = "prompt_version:"
	activityStatsWindow  = 30 * 24 * time.Hour
	complexQueryMinChars = 120
)

var complexQueryTerms = []string{"why", "root cause", "cause", "action plan", "what should", "recommend", "anomal"}

// TopAnomaly is the strongest anomaly in the context summary.
type TopAnomaly struct {
	Date      string
	Revenue   float64
	Z         float64
	Direction types.Direction
}

// ContextSummary is the machine-readable half of a data context.
type ContextSummary struct {
	LastDate     string
	LastRevenue  float64
	WeekOverWeek float64
	TopAnomaly   *TopAnomaly
}

// DataContext is what the model (or the fallback) is allowed to reason over.
type DataContext struct {
	DataPoints []string
	Summary    ContextSummary
}

// ContextInput bundles the analytics a context is built from.
type ContextInput struct {
	Series          []types.RevenuePoint
	Forecast        []types.ForecastPoint
	Anomalies       []types.Anomaly
	PromptVersion   string
	ExtraDataPoints []string
}

// BuildDataContext renders the analytics into data-point strings. Caller
// supplied points are normalised and placed first.
func BuildDataContext(in ContextInput) (DataContext, error) {
	if len(in.Series) == 0 {
		return DataContext{}, pkgerrors.New(pkgerrors.CodeInternal, "revenue series is empty")
	}
	last := in.Series[len(in.Series)-1]
	last7 := sumRevenue(tail(in.Series, 0, 7))
	prev7 := sumRevenue(tail(in.Series, 7, 14))
	wow := 0.0
	if prev7 != 0 {
		wow = (last7 - prev7) / prev7
	}

	points := []string{
		fmt.Sprintf("Latest date: %s revenue %s", last.Date, num(last.Revenue)),
		fmt.Sprintf("Last 7 days total revenue: %s", num(last7)),
		fmt.Sprintf("Previous 7 days total revenue: %s", num(prev7)),
		fmt.Sprintf("Week-over-week change: %s%%", fixed(wow*100, 1)),
	}

	summary := ContextSummary{LastDate: last.Date, LastRevenue: last.Revenue, WeekOverWeek: wow}
	if len(in.Anomalies) > 0 {
		top := in.Anomalies[0]
		points = append(points, fmt.Sprintf("Top anomaly: %s revenue %s (z=%s, baseline %s)",
			top.Date, num(top.Revenue), fixed(top.Z, 2), num(top.BaselineAvg)))
		summary.TopAnomaly = &TopAnomaly{Date: top.Date, Revenue: top.Revenue, Z: top.Z, Direction: top.Direction}
	}
	for i, a := range in.Anomalies {
		if i == 4 {
			break
		}
		points = append(points, fmt.Sprintf("Anomaly %d: %s revenue %s (z=%s)", i+1, a.Date, num(a.Revenue), fixed(a.Z, 2)))
	}

	forecastParts := make([]string, 0, 7)
	for i, p := range in.Forecast {
		if i == 7 {
			break
		}
		forecastParts = append(forecastParts, fmt.Sprintf("%s: %s", p.Date, num(p.Revenue)))
	}
	points = append(points, "7-day forecast: "+strings.Join(forecastParts, ", "))
	points = append(points, promptMarker(in.PromptVersion))

	if extra := NormalizeExtraDataPoints(in.ExtraDataPoints); len(extra) > 0 {
		points = append(extra, points...)
	}
	return DataContext{DataPoints: points, Summary: summary}, nil
}

// NormalizeExtraDataPoints collapses whitespace, drops empties, keeps the
// first twelve and truncates long entries.
func NormalizeExtraDataPoints(raw []string) []string {
	out := make([]string, 0, min(len(raw), MaxExtraDataPoints))
	for _, p := range raw {
		p = strings.Join(strings.Fields(p), " ")
		if p == "" {
			continue
		}
		if utf8.RuneCountInString(p) > MaxExtraPointLen {
			p = string([]rune(p)[:truncatedPointLen]) + "…"
		}
		out = append(out, p)
		if len(out) == MaxExtraDataPoints {
			break
		}
	}
	return out
}

// ActivityStats summarises the last 30 days of activity. CompletionRate is
// nil when there were no rows.
type ActivityStats struct {
	Total30d       int
	Completed30d   int
	Pending30d     int
	CompletionRate *float64
}

// PendingRatio is nil when there were no rows.
func (s ActivityStats) PendingRatio() *float64 {
	if s.Total30d == 0 {
		return nil
	}
	r := float64(s.Pending30d) / float64(s.Total30d)
	return &r
}

func ComputeActivityStats(rows []types.ActivityEvent, now time.Time) ActivityStats {
	cutoff := now.Add(-activityStatsWindow)
	var stats ActivityStats
	for _, row := range rows {
		if row.Timestamp.IsZero() || row.Timestamp.Before(cutoff) {
			continue
		}
		stats.Total30d++
		if strings.EqualFold(string(row.Status), string(types.StatusCompleted)) {
			stats.Completed30d++
		}
	}
	stats.Pending30d = stats.Total30d - stats.Completed30d
	if stats.Total30d > 0 {
		rate := float64(stats.Completed30d) / float64(stats.Total30d)
		stats.CompletionRate = &rate
	}
	return stats
}

// IsComplexQuery routes long or diagnostic questions to the quality model.
func IsComplexQuery(query string) bool {
	if utf8.RuneCountInString(query) > complexQueryMinChars {
		return true
	}
	q := strings.ToLower(query)
	for _, term := range complexQueryTerms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}

// ChooseModel picks the quality model for complex queries.
func ChooseModel(query, cheap, quality string) string {
	if IsComplexQuery(query) {
		return quality
	}
	return cheap
}

// NormalizePromptVersion maps anything but "v2" to "v1".
func NormalizePromptVersion(v string) string {
	if v == "v2" {
		return "v2"
	}
	return "v1"
}

func promptMarker(version string) string {
	return promptVersionMarker + " " + version
}

// tail returns series[len-to : len-from], clipped to the series.
func tail(series []types.RevenuePoint, from, to int) []types.RevenuePoint {
	n := len(series)
	lo, hi := max(0, n-to), max(0, n-from)
	return series[lo:hi]
}

func sumRevenue(points []types.RevenuePoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Revenue
	}
	return total
}

// num prints a number the shortest way that round-trips.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// fixed rounds half away from zero before printing, so 62.5 renders as 63.
func fixed(v float64, digits int) string {
	if v == 0 {
		v = 0
	}
	p := math.Pow(10, float64(digits))
	return strconv.FormatFloat(math.Round(v*p)/p, 'f', digits, 64)
}
