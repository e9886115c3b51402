package controllers

import (
	"math"
	"net/http"

	"github.com/angelmondragon/opspulse-backend/api/responses"
	"github.com/angelmondragon/opspulse-backend/internal/analytics/types"
	"github.com/angelmondragon/opspulse-backend/internal/auditlog"
	"github.com/angelmondragon/opspulse-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

// SystemHealth is the /api/metrics payload.
type SystemHealth struct {
	P95LatencyMs24h     int64    `json:"p95_latency_ms_24h"`
	ErrorRate24h        float64  `json:"error_rate_24h"`
	CopilotRequests24h  int      `json:"copilot_requests_24h"`
	CopilotSchemaPass24 *float64 `json:"copilot_schema_pass_rate_24h"`
	AIRequests24h       int      `json:"ai_requests_24h"`
	TotalRequests24h    int      `json:"total_requests_24h"`
	DataMode            string   `json:"data_mode"`
	DataCacheTTLSeconds int64    `json:"data_cache_ttl_seconds"`
	LiveActivityURL     string   `json:"live_activity_url"`
	OpenAIConfigured    bool     `json:"openai_configured"`
}

// SystemMetrics reports the rolling 24h health computed from the audit log.
func SystemMetrics(cfg *config.Config, audit auditlog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var summary auditlog.Summary
		if audit != nil {
			var err error
			summary, err = audit.Health(r.Context())
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "Failed to compute metrics."))
				return
			}
		}
		responses.WriteJSON(w, http.StatusOK, SystemHealth{
			P95LatencyMs24h:     summary.P95LatencyMs,
			ErrorRate24h:        summary.ErrorRate,
			CopilotRequests24h:  summary.CopilotRequests,
			CopilotSchemaPass24: summary.SchemaPassRate,
			AIRequests24h:       summary.CopilotRequests,
			TotalRequests24h:    summary.TotalRequests,
			DataMode:            string(types.ParseDataMode(cfg.Data.Mode)),
			DataCacheTTLSeconds: int64(math.Round(cfg.Data.CacheTTL().Seconds())),
			LiveActivityURL:     cfg.LiveActivity.URL,
			OpenAIConfigured:    cfg.OpenAI.Configured(),
		})
	}
}
