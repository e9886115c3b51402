package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/metrics"
)

// Logging logs request start and completion and feeds the HTTP metrics.
// m may be nil.
func Logging(logg *logger.Logger, m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"method": r.Method,
					"path":   r.URL.Path,
				})
			}

			rec := recorderFor(w)
			start := time.Now()

			if logg != nil {
				logg.Debug(ctx, "request.start")
			}

			next.ServeHTTP(rec, r.WithContext(ctx))

			duration := time.Since(start)
			m.ObserveRequest(routePattern(r), rec.code(), duration)

			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"status":      rec.code(),
					"duration_ms": duration.Milliseconds(),
				})
				logg.Info(ctx, "request.complete")
			}
		})
	}
}

// routePattern keeps metric label cardinality bounded to registered routes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}
