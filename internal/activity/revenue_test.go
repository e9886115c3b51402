package activity

import (
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveRevenueSeries(t *testing.T) {
	end := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	rows := []types.ActivityEvent{
		{Timestamp: time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC), RevenueDelta: 200},
		{Timestamp: time.Date(2026, 5, 10, 10, 0, 0, 0, time.UTC), RevenueDelta: -90},
		{Timestamp: time.Date(2026, 5, 8, 10, 0, 0, 0, time.UTC), RevenueDelta: 30000},
		{Timestamp: time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC), RevenueDelta: 500},
	}

	series := DeriveRevenueSeries(rows, 3, end)
	require.Len(t, series, 3)
	assert.Equal(t, types.RevenuePoint{Date: "2026-05-08", Revenue: 26000}, series[0])
	assert.Equal(t, types.RevenuePoint{Date: "2026-05-09", Revenue: 10500}, series[1])
	assert.Equal(t, types.RevenuePoint{Date: "2026-05-10", Revenue: 10720}, series[2])
}

func TestDeriveRevenueSeriesClampsLow(t *testing.T) {
	end := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	rows := []types.ActivityEvent{{Timestamp: end, RevenueDelta: -9000}}
	series := DeriveRevenueSeries(rows, 1, end)
	require.Len(t, series, 1)
	assert.Equal(t, 6500.0, series[0].Revenue)
}

func TestDeriveRevenueSeriesEmpty(t *testing.T) {
	assert.Nil(t, DeriveRevenueSeries(nil, 30, time.Now()))
	assert.Len(t, DeriveRevenueSeries([]types.ActivityEvent{{Timestamp: time.Now()}}, 0, time.Now()), 30)
}
