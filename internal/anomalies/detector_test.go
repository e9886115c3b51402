package anomalies

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSeries(values ...float64) []types.RevenuePoint {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]types.RevenuePoint, len(values))
	for i, v := range values {
		out[i] = types.RevenuePoint{Date: start.AddDate(0, 0, i).Format(types.DateLayout), Revenue: v}
	}
	return out
}

func repeat(value float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = value
	}
	return out
}

func TestDetectEmptyAndShortSeries(t *testing.T) {
	assert.Empty(t, Detect(nil, Options{}))
	assert.Empty(t, Detect(buildSeries(1, 2, 3, 4, 5, 6, 7), Options{}))
}

func TestDetectSkipsZeroVarianceBaseline(t *testing.T) {
	values := append(repeat(10000, 21), 6000)
	got := Detect(buildSeries(values...), Options{Window: 7, ZThreshold: 2.2})
	assert.Empty(t, got, "flat baseline has no deviation, so the drop cannot be scored")
}

func TestDetectFlagsDropAgainstNoisyBaseline(t *testing.T) {
	values := []float64{10000, 10100, 9900, 10050, 9950, 10000, 10100, 6000}
	got := Detect(buildSeries(values...), Options{})
	require.Len(t, got, 1)

	a := got[0]
	assert.Equal(t, "2026-01-08", a.Date)
	assert.Equal(t, types.DirectionDown, a.Direction)
	assert.Equal(t, 6000.0, a.Revenue)
	assert.Equal(t, 10014.0, a.BaselineAvg)
	assert.Less(t, a.Z, -2.2)
}

func TestDetectThresholdIsInclusiveAndSortedByMagnitude(t *testing.T) {
	// mean 100, population sd exactly 10, so 130 scores z == 3.
	got := Detect(buildSeries(90, 110, 90, 110, 130), Options{Window: 4, ZThreshold: 3})
	require.Len(t, got, 1)
	assert.Equal(t, 3.0, got[0].Z)
	assert.Equal(t, types.DirectionUp, got[0].Direction)

	mixed := buildSeries(100, 110, 90, 100, 110, 90, 100, 40, 100, 110, 90, 100, 110, 90, 100, 170)
	got = Detect(mixed, Options{})
	require.GreaterOrEqual(t, len(got), 2)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, math.Abs(got[i-1].Z), math.Abs(got[i].Z), fmt.Sprintf("index %d", i))
	}
	for _, a := range got {
		assert.GreaterOrEqual(t, math.Abs(a.Z), DefaultZThreshold)
		if a.Z < 0 {
			assert.Equal(t, types.DirectionDown, a.Direction)
		} else {
			assert.Equal(t, types.DirectionUp, a.Direction)
		}
	}
}

func TestCountByDirection(t *testing.T) {
	down, up := CountByDirection([]types.Anomaly{
		{Direction: types.DirectionDown},
		{Direction: types.DirectionUp},
		{Direction: types.DirectionDown},
	})
	assert.Equal(t, 2, down)
	assert.Equal(t, 1, up)
}
