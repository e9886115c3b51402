package types

// RevenueReport is the /api/revenue payload.
type RevenueReport struct {
	Series     []RevenuePoint `json:"series"`
	KPIs       KPIs           `json:"kpis"`
	DataMode   DataMode       `json:"data_mode"`
	DataSource string         `json:"data_source"`
}

type ForecastReport struct {
	Forecast   []ForecastPoint `json:"forecast"`
	DataMode   DataMode        `json:"data_mode"`
	DataSource string          `json:"data_source"`
}

type AnomalyReport struct {
	Anomalies  []Anomaly `json:"anomalies"`
	DataMode   DataMode  `json:"data_mode"`
	DataSource string    `json:"data_source"`
}

type ClientsReport struct {
	Clients    []ClientSummary `json:"clients"`
	DataMode   DataMode        `json:"data_mode"`
	DataSource string          `json:"data_source"`
}
