package metrics

import "github.com/prometheus/client_golang/prometheus"

// ActivityCacheMetrics counts how each activity lookup was served.
type ActivityCacheMetrics struct {
	lookups *prometheus.CounterVec
}

// NewActivityCacheMetrics registers the cache metrics on the provided registerer.
func NewActivityCacheMetrics(reg prometheus.Registerer) *ActivityCacheMetrics {
	if reg == nil {
		return &ActivityCacheMetrics{}
	}
	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "activity_cache_lookups_total",
		Help: "Activity cache lookups by serving source.",
	}, []string{"source"})
	reg.MustRegister(lookups)
	return &ActivityCacheMetrics{lookups: lookups}
}

// ObserveLookup counts one lookup served from source.
func (a *ActivityCacheMetrics) ObserveLookup(source string) {
	if a == nil || a.lookups == nil {
		return
	}
	a.lookups.WithLabelValues(normalizeLabel(source)).Inc()
}
