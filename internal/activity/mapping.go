package activity

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

// Stores and Channels are the fixed vocabularies upstream items are projected onto.
var (
	Stores = []string{
		"Downtown", "River North", "West Loop", "South Market", "Lakeside",
		"Uptown", "Old Town", "Mission", "SoMa", "Capitol Hill",
	}
	Channels = []string{"DoorDash", "Uber Eats", "Google", "Website", "Catering"}
)

const fallbackAction = "External dataset event"

// MapTodo projects an upstream item onto an activity event. The projection is
// deterministic in the item and the anchor instant.
func MapTodo(todo Todo, anchor time.Time) types.ActivityEvent {
	id, userID := todo.ID, todo.UserID

	daysAgo := mod(id, 14)
	minutesOffset := mod(id*37, 24*60)
	ts := anchor.UTC().AddDate(0, 0, -daysAgo).Add(-time.Duration(minutesOffset) * time.Minute)

	rand := seededNumber(float64(id*13 + userID*97))
	delta := roundHalfUp(((rand-0.42)*900)/10) * 10

	status := types.StatusPending
	if todo.Completed {
		status = types.StatusCompleted
	}

	return types.ActivityEvent{
		ID:           fmt.Sprintf("live_%d", id),
		Timestamp:    ts,
		Store:        Stores[mod(userID, len(Stores))],
		Channel:      Channels[mod(id, len(Channels))],
		Action:       actionFromTitle(todo.Title),
		Status:       status,
		RevenueDelta: delta,
	}
}

func actionFromTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return fallbackAction
	}
	r, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(r)) + title[size:]
}

// seededNumber maps an integer seed onto [0, 1).
func seededNumber(seed float64) float64 {
	x := math.Sin(seed) * 10000
	return x - math.Floor(x)
}

func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// mod keeps the result non-negative so odd upstream ids still index the tables.
func mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}
