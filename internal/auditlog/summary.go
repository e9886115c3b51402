package auditlog

import (
	"slices"

	"github.com/angelmondragon/opspulse-backend/pkg/db/models"
)

// CopilotEndpoint is the path whose rows feed the schema pass rate.
const CopilotEndpoint = "/api/copilot"

// Summary aggregates a window of audit rows.
type Summary struct {
	TotalRequests   int
	P95LatencyMs    int64
	ErrorRate       float64
	CopilotRequests int
	// SchemaPassRate is nil when the window has no copilot rows.
	SchemaPassRate *float64
}

// Summarize computes the health figures over rows. Errors are status >= 400;
// p95 takes sorted[floor(0.95*(n-1))].
func Summarize(rows []models.APILog) Summary {
	s := Summary{TotalRequests: len(rows)}
	if len(rows) == 0 {
		return s
	}

	latencies := make([]int64, 0, len(rows))
	errorCount, passed := 0, 0
	for _, row := range rows {
		latencies = append(latencies, row.LatencyMs)
		if row.StatusCode >= 400 {
			errorCount++
		}
		if row.Endpoint == CopilotEndpoint {
			s.CopilotRequests++
			if row.SchemaPass != nil && *row.SchemaPass {
				passed++
			}
		}
	}

	s.P95LatencyMs = percentile(latencies, 0.95)
	s.ErrorRate = float64(errorCount) / float64(len(rows))
	if s.CopilotRequests > 0 {
		rate := float64(passed) / float64(s.CopilotRequests)
		s.SchemaPassRate = &rate
	}
	return s
}

func percentile(values []int64, p float64) int64 {
	if len(values) == 0 {
		return 0
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return sorted[int(p*float64(len(sorted)-1))]
}
