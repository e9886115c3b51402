package activity

import (
	"math"
	"testing"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/stretchr/testify/assert"
)

var anchor = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

func TestMapTodo(t *testing.T) {
	ev := MapTodo(Todo{ID: 1, UserID: 1, Title: "delectus aut autem"}, anchor)

	assert.Equal(t, "live_1", ev.ID)
	assert.Equal(t, "River North", ev.Store)
	assert.Equal(t, "Uber Eats", ev.Channel)
	assert.Equal(t, "Delectus aut autem", ev.Action)
	assert.Equal(t, types.StatusPending, ev.Status)
	assert.Equal(t, time.Date(2026, 5, 9, 11, 23, 0, 0, time.UTC), ev.Timestamp)
	assert.Equal(t, 140.0, ev.RevenueDelta)
}

func TestMapTodoIsDeterministic(t *testing.T) {
	for id := 1; id <= 200; id++ {
		todo := Todo{ID: id, UserID: (id % 10) + 1, Title: "x", Completed: id%3 == 0}
		a, b := MapTodo(todo, anchor), MapTodo(todo, anchor)
		assert.Equal(t, a, b)

		assert.Zero(t, math.Mod(a.RevenueDelta, 10), "delta is a multiple of ten")
		assert.GreaterOrEqual(t, a.RevenueDelta, -380.0)
		assert.LessOrEqual(t, a.RevenueDelta, 520.0)
		assert.False(t, a.Timestamp.After(anchor))
		assert.True(t, a.Timestamp.After(anchor.AddDate(0, 0, -15)))
	}
}

func TestMapTodoEdgeInputs(t *testing.T) {
	ev := MapTodo(Todo{ID: -3, UserID: -11, Title: "   ", Completed: true}, anchor)
	assert.Equal(t, fallbackAction, ev.Action)
	assert.Equal(t, types.StatusCompleted, ev.Status)
	assert.Contains(t, Stores, ev.Store)
	assert.Contains(t, Channels, ev.Channel)

	zero := MapTodo(Todo{}, anchor)
	assert.Equal(t, "live_0", zero.ID)
	assert.Equal(t, "Downtown", zero.Store)
	assert.Equal(t, "DoorDash", zero.Channel)
	assert.Equal(t, anchor, zero.Timestamp)
}
