// Package demo generates deterministic sample analytics so the service runs
// without any upstream. Output depends only on the calendar day of the end
// instant.
package demo

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
)

const activitySeedOffset = 99

var (
	stores = []string{
		"Downtown", "River North", "West Loop", "South Market", "Lakeside",
		"Uptown", "Old Town", "Mission", "SoMa", "Capitol Hill",
	}
	channels        = []string{"DoorDash", "Uber Eats", "Google", "Website", "Catering"}
	actionTemplates = []string{
		"Menu sync completed",
		"Promo pushed to {channel}",
		"Photo audit completed",
		"Store hours updated",
		"Refund workflow reviewed",
		"Delivery radius adjusted",
		"Catering request confirmed",
		"Outage alert acknowledged",
		"Payment provider reconciliation",
		"Customer review response sent",
	}
)

// Generator is the seeded demo data source.
type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// RevenueSeries returns days of revenue ending on end's calendar day, with a
// weekend lift, a Monday dip and two planted outliers (a dip nine days back
// and a spike seventeen days back).
func (g *Generator) RevenueSeries(days int, end time.Time) []types.RevenuePoint {
	if days <= 0 {
		return []types.RevenuePoint{}
	}
	end = end.UTC()
	rnd := newLCG(daySeed(end))

	base := 12800 + rnd.next()*600
	trend := 22 + rnd.next()*8

	series := make([]types.RevenuePoint, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := end.AddDate(0, 0, -i)

		seasonal := 1.0
		switch day.Weekday() {
		case time.Friday, time.Saturday:
			seasonal = 1.14
		case time.Monday:
			seasonal = 0.92
		}
		noise := (rnd.next() - 0.5) * 1200

		revenue := (base+trend*float64(days-i))*seasonal + noise
		switch i {
		case 9:
			revenue *= 0.82
		case 17:
			revenue *= 1.23
		}

		series = append(series, types.RevenuePoint{
			Date:    dayKey(day),
			Revenue: clamp(roundHalfUp(revenue), 6800, 24000),
		})
	}
	return series
}

// ActivityRows returns count events walking back from end at irregular
// 12-25 minute steps.
func (g *Generator) ActivityRows(count int, end time.Time) []types.ActivityEvent {
	if count <= 0 {
		return []types.ActivityEvent{}
	}
	end = end.UTC()
	rnd := newLCG(daySeed(end) + activitySeedOffset)

	rows := make([]types.ActivityEvent, 0, count)
	for i := 0; i < count; i++ {
		step := 12 + int(rnd.next()*14)
		ts := end.Add(-time.Duration(i*step) * time.Minute)

		channel := pick(rnd, channels)
		store := pick(rnd, stores)
		action := strings.Replace(pick(rnd, actionTemplates), "{channel}", channel, 1)

		status := types.StatusPending
		if rnd.next() > 0.22 {
			status = types.StatusCompleted
		}
		delta := roundHalfUp(((rnd.next()-0.35)*850)/10) * 10

		rows = append(rows, types.ActivityEvent{
			ID:           fmt.Sprintf("act_%s_%d", dayKey(ts), i),
			Timestamp:    ts,
			Store:        store,
			Channel:      channel,
			Action:       action,
			Status:       status,
			RevenueDelta: delta,
		})
	}
	return rows
}
