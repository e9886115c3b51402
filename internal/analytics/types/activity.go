package types

import "time"

type Status string

const (
	StatusCompleted Status = "Completed"
	StatusPending   Status = "Pending"
)

// ActivityEvent is one operational event at a store.
type ActivityEvent struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Store        string    `json:"store"`
	Channel      string    `json:"channel"`
	Action       string    `json:"action"`
	Status       Status    `json:"status"`
	RevenueDelta float64   `json:"revenue_delta"`
}

// ActivityResult is a set of rows plus where they came from.
type ActivityResult struct {
	Rows   []ActivityEvent
	Mode   DataMode
	Source string
}

// ActivityQuery controls paging and ordering of the activity feed.
type ActivityQuery struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
}

// ActivityPage is the /api/activity payload.
type ActivityPage struct {
	Rows       []ActivityEvent `json:"rows"`
	Page       int             `json:"page"`
	PageSize   int             `json:"pageSize"`
	Total      int             `json:"total"`
	TotalPages int             `json:"totalPages"`
	DataMode   DataMode        `json:"data_mode"`
	DataSource string          `json:"data_source"`
}

// ClientSummary rolls activity up per store.
type ClientSummary struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	PrimaryChannel string     `json:"primary_channel"`
	ActiveStatus   string     `json:"active_status"`
	LastActivity   *time.Time `json:"last_activity"`
	Events30d      int        `json:"events_30d"`
	Completed30d   int        `json:"completed_30d"`
	Pending30d     int        `json:"pending_30d"`
}
