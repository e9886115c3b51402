// Package anomalies flags days whose revenue breaks from the trailing week.
package anomalies

import (
	"math"
	"sort"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

const (
	DefaultWindow     = 7
	DefaultZThreshold = 2.2
)

// Options tunes the rolling z-score detector.
type Options struct {
	Window     int
	ZThreshold float64
}

func (o Options) withDefaults() Options {
	if o.Window <= 0 {
		o.Window = DefaultWindow
	}
	if o.ZThreshold <= 0 {
		o.ZThreshold = DefaultZThreshold
	}
	return o
}

// Detect scores every point from index Window onward against the mean and
// population standard deviation of the Window points before it. A baseline
// with zero deviation cannot produce a z-score, so that point is skipped.
// Results are ordered by descending |z|.
func Detect(series []types.RevenuePoint, opts Options) []types.Anomaly {
	opts = opts.withDefaults()
	out := []types.Anomaly{}

	for i := opts.Window; i < len(series); i++ {
		baseline := series[i-opts.Window : i]
		avg := mean(baseline)
		deviation := stddev(baseline, avg)
		if deviation == 0 {
			continue
		}

		current := series[i].Revenue
		z := (current - avg) / deviation
		if math.Abs(z) < opts.ZThreshold {
			continue
		}

		direction := types.DirectionUp
		if z < 0 {
			direction = types.DirectionDown
		}
		out = append(out, types.Anomaly{
			Date:        series[i].Date,
			Revenue:     current,
			Z:           z,
			Direction:   direction,
			BaselineAvg: math.Round(avg),
		})
	}

	sort.SliceStable(out, func(a, b int) bool {
		return math.Abs(out[a].Z) > math.Abs(out[b].Z)
	})
	return out
}

// CountByDirection splits a result set into down and up counts.
func CountByDirection(list []types.Anomaly) (down, up int) {
	for _, a := range list {
		if a.Direction == types.DirectionDown {
			down++
		} else {
			up++
		}
	}
	return down, up
}

func mean(points []types.RevenuePoint) float64 {
	var total float64
	for _, p := range points {
		total += p.Revenue
	}
	return total / float64(len(points))
}

func stddev(points []types.RevenuePoint, avg float64) float64 {
	var variance float64
	for _, p := range points {
		d := p.Revenue - avg
		variance += d * d
	}
	return math.Sqrt(variance / float64(len(points)))
}
