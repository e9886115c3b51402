package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CopilotMetrics records the outcome of each copilot answer.
type CopilotMetrics struct {
	responses    *prometheus.CounterVec
	modelLatency *prometheus.HistogramVec
	schemaChecks *prometheus.CounterVec
}

// NewCopilotMetrics registers the copilot metrics on the provided registerer.
func NewCopilotMetrics(reg prometheus.Registerer) *CopilotMetrics {
	if reg == nil {
		return &CopilotMetrics{}
	}
	responses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_responses_total",
		Help: "Copilot answers by mode and fallback reason.",
	}, []string{"mode", "fallback_reason"})
	modelLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "copilot_model_call_duration_seconds",
		Help:    "Latency of model backend calls.",
		Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
	}, []string{"model", "outcome"})
	schemaChecks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "copilot_schema_checks_total",
		Help: "Schema validation results per attempt.",
	}, []string{"attempt", "result"})
	reg.MustRegister(responses, modelLatency, schemaChecks)
	return &CopilotMetrics{
		responses:    responses,
		modelLatency: modelLatency,
		schemaChecks: schemaChecks,
	}
}

// IncResponse counts one delivered answer.
func (c *CopilotMetrics) IncResponse(mode, fallbackReason string) {
	if c == nil || c.responses == nil {
		return
	}
	c.responses.WithLabelValues(normalizeLabel(mode), normalizeLabel(fallbackReason)).Inc()
}

// ObserveModelCall records how long a backend call took and whether it failed.
func (c *CopilotMetrics) ObserveModelCall(model string, failed bool, duration time.Duration) {
	if c == nil || c.modelLatency == nil {
		return
	}
	outcome := "ok"
	if failed {
		outcome = "error"
	}
	c.modelLatency.WithLabelValues(normalizeLabel(model), outcome).Observe(duration.Seconds())
}

// IncSchemaCheck counts one validation attempt ("initial" or "strict").
func (c *CopilotMetrics) IncSchemaCheck(attempt string, passed bool) {
	if c == nil || c.schemaChecks == nil {
		return
	}
	result := "pass"
	if !passed {
		result = "fail"
	}
	c.schemaChecks.WithLabelValues(normalizeLabel(attempt), result).Inc()
}
