package analytics

import (
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeClients(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := []types.ActivityEvent{
		{ID: "1", Store: "Mission", Channel: "DoorDash", Status: types.StatusCompleted, Timestamp: now.Add(-time.Hour)},
		{ID: "2", Store: "Uptown", Channel: "Google", Status: types.StatusPending, Timestamp: now.AddDate(0, 0, -10)},
		{ID: "3", Store: "Mission", Channel: "Uber Eats", Status: types.StatusPending, Timestamp: now.Add(-2 * time.Hour)},
		{ID: "4", Store: "Mission", Channel: "Uber Eats", Status: types.StatusCompleted, Timestamp: now.AddDate(0, 0, -45)},
		{ID: "5", Store: " Mission ", Channel: "DoorDash", Status: "completed", Timestamp: now.AddDate(0, 0, -3)},
	}

	got := SummarizeClients(rows, now)
	require.Len(t, got, 2)

	mission := got[0]
	assert.Equal(t, "Mission", mission.Name)
	assert.Equal(t, 3, mission.Events30d)
	assert.Equal(t, 2, mission.Completed30d)
	assert.Equal(t, 1, mission.Pending30d)
	assert.Equal(t, "DoorDash", mission.PrimaryChannel, "most frequent within 30 days")
	assert.Equal(t, "Active", mission.ActiveStatus)
	require.NotNil(t, mission.LastActivity)
	assert.Equal(t, now.Add(-time.Hour), *mission.LastActivity)

	uptown := got[1]
	assert.Equal(t, "Inactive", uptown.ActiveStatus)
	assert.Equal(t, 1, uptown.Pending30d)
}

func TestSummarizeClientsFallbacks(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := []types.ActivityEvent{{ID: "live_7", Timestamp: now.AddDate(0, 0, -60)}}

	got := SummarizeClients(rows, now)
	require.Len(t, got, 1)
	assert.Regexp(t, `^Store [A-J]$`, got[0].Name)
	assert.Equal(t, got[0].Name, storeNameFromID("live_7"))
	assert.Equal(t, defaultPrimaryChannel, got[0].PrimaryChannel)
	assert.Equal(t, 0, got[0].Events30d)
	assert.Equal(t, "Inactive", got[0].ActiveStatus)
}

func TestSummarizeClientsEmpty(t *testing.T) {
	got := SummarizeClients(nil, time.Now())
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
