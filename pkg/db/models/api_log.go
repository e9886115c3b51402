package models

// APILog is one row of the request audit trail. TS and LatencyMs are
// milliseconds; the nullable columns are only set when they apply.
type APILog struct {
	ID            int64   `gorm:"primaryKey;autoIncrement"`
	TS            int64   `gorm:"column:ts;not null"`
	Endpoint      string  `gorm:"type:text;not null"`
	StatusCode    int     `gorm:"not null"`
	LatencyMs     int64   `gorm:"not null"`
	ErrorType     *string `gorm:"type:text"`
	ModelUsed     *string `gorm:"type:text"`
	PromptVersion *string `gorm:"type:text"`
	SchemaPass    *bool
}

func (APILog) TableName() string {
	return "api_logs"
}
