package forecast

import (
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSeries(start string, values ...float64) []types.RevenuePoint {
	day, _ := time.Parse(types.DateLayout, start)
	out := make([]types.RevenuePoint, len(values))
	for i, v := range values {
		out[i] = types.RevenuePoint{Date: day.AddDate(0, 0, i).Format(types.DateLayout), Revenue: v}
	}
	return out
}

func TestBuildEmpty(t *testing.T) {
	got, err := Build(nil, 7)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBuildNonPositiveDays(t *testing.T) {
	series := buildSeries("2026-02-01", 100, 200, 300)
	for _, days := range []int{0, -3} {
		got, err := Build(series, days)
		require.NoError(t, err)
		assert.NotNil(t, got, "days %d", days)
		assert.Empty(t, got, "days %d", days)
	}
}

func TestBuildFlatTwoWeeks(t *testing.T) {
	values := make([]float64, 14)
	for i := range values {
		values[i] = 10000
	}
	got, err := Build(buildSeries("2026-02-01", values...), 7)
	require.NoError(t, err)
	require.Len(t, got, 7)
	for i, p := range got {
		assert.Equal(t, 10000.0, p.Revenue, "day %d", i+1)
	}
	assert.Equal(t, "2026-02-15", got[0].Date)
	assert.Equal(t, "2026-02-21", got[6].Date)
}

func TestBuildRisingSlope(t *testing.T) {
	values := []float64{7000, 7000, 7000, 7000, 7000, 7000, 7000, 14000, 14000, 14000, 14000, 14000, 14000, 14000}
	got, err := Build(buildSeries("2026-02-01", values...), 3)
	require.NoError(t, err)
	// slope (14000-7000)/7 = 1000 per day.
	assert.Equal(t, []types.ForecastPoint{
		{Date: "2026-02-15", Revenue: 15000},
		{Date: "2026-02-16", Revenue: 16000},
		{Date: "2026-02-17", Revenue: 17000},
	}, got)
}

func TestBuildClampsAtZero(t *testing.T) {
	values := []float64{20000, 20000, 20000, 20000, 20000, 20000, 20000, 1000, 1000, 1000, 1000, 1000, 1000, 1000}
	got, err := Build(buildSeries("2026-02-01", values...), 7)
	require.NoError(t, err)
	for _, p := range got {
		assert.GreaterOrEqual(t, p.Revenue, 0.0)
	}
	assert.Equal(t, 0.0, got[6].Revenue)
}

func TestBuildShortSeriesUsesFlatSlope(t *testing.T) {
	got, err := Build(buildSeries("2026-12-30", 100, 200, 300), 2)
	require.NoError(t, err)
	assert.Equal(t, []types.ForecastPoint{
		{Date: "2027-01-02", Revenue: 200},
		{Date: "2027-01-03", Revenue: 200},
	}, got)
}

func TestBuildPartialPreviousWeek(t *testing.T) {
	// prev slice holds 3 points averaging 1000, last 7 average 2000.
	values := []float64{1000, 1000, 1000, 2000, 2000, 2000, 2000, 2000, 2000, 2000}
	got, err := Build(buildSeries("2026-03-01", values...), 1)
	require.NoError(t, err)
	assert.Equal(t, 2143.0, got[0].Revenue)
}

func TestBuildRejectsBadDate(t *testing.T) {
	_, err := Build([]types.RevenuePoint{{Date: "not-a-date", Revenue: 1}}, 7)
	assert.Error(t, err)
}
