package demo

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var end = time.Date(2026, 3, 18, 15, 30, 0, 0, time.UTC)

func TestLCGMatchesMinimalStandard(t *testing.T) {
	g := newLCG(1)
	g.next()
	assert.Equal(t, int64(16807), g.state)
	g.next()
	assert.Equal(t, int64(282475249), g.state)

	for i := 0; i < 1000; i++ {
		v := g.next()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestLCGNonPositiveSeed(t *testing.T) {
	assert.Equal(t, int64(lcgModulus-1), newLCG(0).state)
	assert.Equal(t, int64(lcgModulus-1), newLCG(lcgModulus).state)
}

func TestDaySeed(t *testing.T) {
	assert.Equal(t, int64(20260318), daySeed(end))
}

func TestRevenueSeriesShape(t *testing.T) {
	series := NewGenerator().RevenueSeries(30, end)
	require.Len(t, series, 30)
	assert.Equal(t, "2026-02-17", series[0].Date)
	assert.Equal(t, "2026-03-18", series[29].Date)

	for i, p := range series {
		assert.GreaterOrEqual(t, p.Revenue, 6800.0)
		assert.LessOrEqual(t, p.Revenue, 24000.0)
		assert.Equal(t, math.Trunc(p.Revenue), p.Revenue)
		if i > 0 {
			assert.Less(t, series[i-1].Date, p.Date)
		}
	}
}

func TestRevenueSeriesDeterministicPerDay(t *testing.T) {
	g := NewGenerator()
	a := g.RevenueSeries(30, end)
	b := g.RevenueSeries(30, end.Add(6*time.Hour))
	assert.Equal(t, a, b, "same calendar day")

	c := g.RevenueSeries(30, end.AddDate(0, 0, 1))
	assert.NotEqual(t, a[29].Revenue, c[29].Revenue)
}

func TestRevenueSeriesPlantedOutliers(t *testing.T) {
	series := NewGenerator().RevenueSeries(30, end)
	dip, spike := series[29-9], series[29-17]
	neighbours := func(i int) float64 {
		return (series[i-1].Revenue + series[i+1].Revenue) / 2
	}
	assert.Less(t, dip.Revenue, neighbours(29-9))
	assert.Greater(t, spike.Revenue, neighbours(29-17))
}

func TestRevenueSeriesEmpty(t *testing.T) {
	assert.Empty(t, NewGenerator().RevenueSeries(0, end))
}

func TestActivityRows(t *testing.T) {
	rows := NewGenerator().ActivityRows(84, end)
	require.Len(t, rows, 84)

	assert.Equal(t, end, rows[0].Timestamp)
	assert.Equal(t, "act_2026-03-18_0", rows[0].ID)

	for i, row := range rows {
		assert.True(t, strings.HasSuffix(row.ID, "_"+strconv.Itoa(i)))
		assert.Contains(t, stores, row.Store)
		assert.Contains(t, channels, row.Channel)
		assert.NotContains(t, row.Action, "{channel}")
		assert.Contains(t, []types.Status{types.StatusCompleted, types.StatusPending}, row.Status)
		assert.Zero(t, math.Mod(row.RevenueDelta, 10))
		assert.False(t, row.Timestamp.After(end))
		assert.True(t, strings.HasPrefix(row.ID, "act_"+row.Timestamp.Format(types.DateLayout)))
	}
	assert.Equal(t, rows, NewGenerator().ActivityRows(84, end))
}

func TestActivityRowsEmpty(t *testing.T) {
	assert.Empty(t, NewGenerator().ActivityRows(0, end))
}
