package types

import (
	"strings"
	"time"
)

// DateLayout is the calendar-day format used by every series.
const DateLayout = "2006-01-02"

// DataMode selects where analytics figures come from.
type DataMode string

const (
	DataModeDemo  DataMode = "demo"
	DataModeMixed DataMode = "mixed"
	DataModeLive  DataMode = "live"
)

// ParseDataMode normalises raw configuration, defaulting to demo.
func ParseDataMode(raw string) DataMode {
	switch DataMode(strings.ToLower(strings.TrimSpace(raw))) {
	case DataModeMixed:
		return DataModeMixed
	case DataModeLive:
		return DataModeLive
	default:
		return DataModeDemo
	}
}

// Provenance tags returned in data_source.
const (
	SourceDemo         = "demo"
	SourceDemoFallback = "demo_fallback"
	SourceDemoRevenue  = "demo_revenue"
	sourceActivityPref = "activity_"
)

// ActivitySource tags a revenue series derived from live activity rows.
func ActivitySource(cacheSource string) string {
	return sourceActivityPref + cacheSource
}

// RevenuePoint is one calendar day of revenue. Series are ascending by date.
type RevenuePoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

// Day parses the point's date as a UTC calendar day.
func (p RevenuePoint) Day() (time.Time, error) {
	return time.ParseInLocation(DateLayout, p.Date, time.UTC)
}

// ForecastPoint is a projected day of revenue.
type ForecastPoint struct {
	Date    string  `json:"date"`
	Revenue float64 `json:"revenue"`
}

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Anomaly flags a day whose revenue deviates from its trailing baseline.
type Anomaly struct {
	Date        string    `json:"date"`
	Revenue     float64   `json:"revenue"`
	Z           float64   `json:"z"`
	Direction   Direction `json:"direction"`
	BaselineAvg float64   `json:"baseline_avg"`
}

// KPIs are the headline tiles on the revenue view.
type KPIs struct {
	TotalRevenue30d        float64   `json:"total_revenue_30d"`
	ActiveStores           int       `json:"active_stores"`
	UpcomingCateringOrders int       `json:"upcoming_catering_orders"`
	OnTimePickupRate       float64   `json:"on_time_pickup_rate"`
	Deltas                 KPIDeltas `json:"deltas"`
}

// KPIDeltas are percentage changes against the prior period.
type KPIDeltas struct {
	TotalRevenue30d        float64 `json:"total_revenue_30d"`
	ActiveStores           float64 `json:"active_stores"`
	UpcomingCateringOrders float64 `json:"upcoming_catering_orders"`
	OnTimePickupRate       float64 `json:"on_time_pickup_rate"`
}

// SeriesResult is a revenue series plus where it came from.
type SeriesResult struct {
	Series []RevenuePoint
	Mode   DataMode
	Source string
}
