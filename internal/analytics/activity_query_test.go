package analytics

import (
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeActivityQuery(t *testing.T) {
	q, err := NormalizeActivityQuery(types.ActivityQuery{Page: -2, PageSize: 50, SortDir: "sideways"})
	require.NoError(t, err)
	assert.Equal(t, types.ActivityQuery{Page: 1, PageSize: 50, SortBy: SortTimestamp, SortDir: SortDesc}, q)

	q, err = NormalizeActivityQuery(types.ActivityQuery{Page: 3, PageSize: 20, SortBy: "revenue_delta", SortDir: "asc"})
	require.NoError(t, err)
	assert.Equal(t, SortAsc, q.SortDir)

	_, err = NormalizeActivityQuery(types.ActivityQuery{SortBy: "id"})
	assert.Error(t, err)
}

func TestSortActivityText(t *testing.T) {
	rows := []types.ActivityEvent{
		{ID: "1", Store: "West Loop"},
		{ID: "2", Store: "downtown"},
		{ID: "3", Store: "Capitol Hill"},
		{ID: "4", Store: "Downtown"},
	}
	got := SortActivity(rows, SortStore, SortAsc)
	assert.Equal(t, "Capitol Hill", got[0].Store)
	assert.Equal(t, "West Loop", got[3].Store)
	assert.Equal(t, "1", rows[0].ID, "input is not mutated")

	got = SortActivity(rows, SortStore, SortDesc)
	assert.Equal(t, "West Loop", got[0].Store)
	assert.Equal(t, "Capitol Hill", got[3].Store)
}

func TestSortActivityNumericStable(t *testing.T) {
	rows := []types.ActivityEvent{
		{ID: "a", RevenueDelta: 10},
		{ID: "b", RevenueDelta: -40},
		{ID: "c", RevenueDelta: 10},
		{ID: "d", RevenueDelta: 90},
	}
	ids := func(list []types.ActivityEvent) []string {
		out := make([]string, len(list))
		for i, r := range list {
			out[i] = r.ID
		}
		return out
	}
	assert.Equal(t, []string{"b", "a", "c", "d"}, ids(SortActivity(rows, SortRevenueDelta, SortAsc)))
	assert.Equal(t, []string{"d", "a", "c", "b"}, ids(SortActivity(rows, SortRevenueDelta, SortDesc)))
}

func TestSortActivityZeroTimestampsLast(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []types.ActivityEvent{
		{ID: "none"},
		{ID: "early", Timestamp: base},
		{ID: "late", Timestamp: base.Add(time.Hour)},
	}
	asc := SortActivity(rows, SortTimestamp, SortAsc)
	assert.Equal(t, []string{"early", "late", "none"}, []string{asc[0].ID, asc[1].ID, asc[2].ID})
	desc := SortActivity(rows, SortTimestamp, SortDesc)
	assert.Equal(t, []string{"late", "early", "none"}, []string{desc[0].ID, desc[1].ID, desc[2].ID})
}
