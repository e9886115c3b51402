package activity

import (
	"math"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

const (
	derivedBaseline  = 10500
	derivedLiftPerEv = 55
	derivedMin       = 6500
	derivedMax       = 26000
)

// DeriveRevenueSeries turns activity rows into a daily revenue series ending
// on end's calendar day. Each day starts at a fixed baseline, adds the
// revenue deltas of its rows plus a per-event lift, and is clamped. Returns
// nil when there are no rows.
func DeriveRevenueSeries(rows []types.ActivityEvent, days int, end time.Time) []types.RevenuePoint {
	if len(rows) == 0 {
		return nil
	}
	if days <= 0 {
		days = 30
	}

	type bucket struct {
		revenue float64
		count   int
	}
	end = end.UTC()
	order := make([]string, 0, days)
	buckets := make(map[string]*bucket, days)
	for i := days - 1; i >= 0; i-- {
		key := end.AddDate(0, 0, -i).Format(types.DateLayout)
		order = append(order, key)
		buckets[key] = &bucket{revenue: derivedBaseline}
	}

	for _, row := range rows {
		b, ok := buckets[row.Timestamp.UTC().Format(types.DateLayout)]
		if !ok {
			continue
		}
		b.count++
		if !math.IsNaN(row.RevenueDelta) && !math.IsInf(row.RevenueDelta, 0) {
			b.revenue += row.RevenueDelta
		}
	}

	series := make([]types.RevenuePoint, 0, days)
	for _, key := range order {
		b := buckets[key]
		value := math.Round(b.revenue + float64(b.count*derivedLiftPerEv))
		series = append(series, types.RevenuePoint{
			Date:    key,
			Revenue: math.Min(derivedMax, math.Max(derivedMin, value)),
		})
	}
	return series
}
