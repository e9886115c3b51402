package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// HTTPMetrics records request volume, latency and throttling per endpoint.
type HTTPMetrics struct {
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
	rateLimited *prometheus.CounterVec
}

// NewHTTPMetrics registers the HTTP metrics on the provided registerer.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "API requests by endpoint and status class.",
	}, []string{"endpoint", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "API request latency in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	rateLimited := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"policy"})
	reg.MustRegister(requests, latency, rateLimited)
	return &HTTPMetrics{requests: requests, latency: latency, rateLimited: rateLimited}
}

// ObserveRequest records one completed request.
func (h *HTTPMetrics) ObserveRequest(endpoint string, status int, duration time.Duration) {
	if h == nil || h.requests == nil {
		return
	}
	endpoint = normalizeLabel(endpoint)
	h.requests.WithLabelValues(endpoint, statusClass(status)).Inc()
	h.latency.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// IncRateLimited counts a rejected request for the named policy.
func (h *HTTPMetrics) IncRateLimited(policy string) {
	if h == nil || h.rateLimited == nil {
		return
	}
	h.rateLimited.WithLabelValues(normalizeLabel(policy)).Inc()
}
