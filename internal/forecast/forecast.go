// Package forecast projects the revenue series a few days forward.
package forecast

import (
	"fmt"
	"math"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

const trailing = 7

// Build extrapolates linearly from the last week's average, using the change
// against the week before as a per-day slope. Estimates never go negative and
// dates continue one calendar day after the last input point.
func Build(series []types.RevenuePoint, days int) ([]types.ForecastPoint, error) {
	if len(series) == 0 || days <= 0 {
		return []types.ForecastPoint{}, nil
	}

	n := len(series)
	lastAvg := average(series[max(0, n-trailing):])
	prevAvg := lastAvg
	if n > trailing {
		prevAvg = average(series[max(0, n-2*trailing) : n-trailing])
	}
	slope := (lastAvg - prevAvg) / trailing

	lastDay, err := series[n-1].Day()
	if err != nil {
		return nil, fmt.Errorf("parsing last series date %q: %w", series[n-1].Date, err)
	}

	out := make([]types.ForecastPoint, 0, days)
	for i := 1; i <= days; i++ {
		out = append(out, types.ForecastPoint{
			Date:    lastDay.AddDate(0, 0, i).Format(types.DateLayout),
			Revenue: math.Max(0, math.Round(lastAvg+slope*float64(i))),
		})
	}
	return out, nil
}

func average(points []types.RevenuePoint) float64 {
	if len(points) == 0 {
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Revenue
	}
	return total / float64(len(points))
}
