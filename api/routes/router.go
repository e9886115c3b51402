package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/opspulse-backend/api/controllers"
	"github.com/angelmondragon/opspulse-backend/api/middleware"
	"github.com/angelmondragon/opspulse-backend/internal/analytics"
	"github.com/angelmondragon/opspulse-backend/internal/auditlog"
	"github.com/angelmondragon/opspulse-backend/internal/copilot"
	"github.com/angelmondragon/opspulse-backend/internal/ratelimit"
	"github.com/angelmondragon/opspulse-backend/pkg/config"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/metrics"
)

// Dependencies are the services the router wires into handlers. Pingers,
// HTTPMetrics and MetricsHandler may be nil.
type Dependencies struct {
	Config         *config.Config
	Logger         *logger.Logger
	Pingers        map[string]controllers.Pinger
	Analytics      analytics.Service
	Copilot        copilot.Service
	Audit          auditlog.Service
	Limiter        ratelimit.Limiter
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

const copilotPolicy = "copilot"

func NewRouter(deps Dependencies) http.Handler {
	cfg, logg := deps.Config, deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.Pingers))
	})

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Audit(deps.Audit))

		r.Get("/revenue", controllers.Revenue(deps.Analytics, logg))
		r.Get("/forecast", controllers.Forecast(deps.Analytics, logg))
		r.Get("/anomalies", controllers.Anomalies(deps.Analytics, logg))
		r.Get("/activity", controllers.Activity(deps.Analytics, logg))
		r.Get("/clients", controllers.Clients(deps.Analytics, logg))
		r.Get("/metrics", controllers.SystemMetrics(cfg, deps.Audit, logg))

		policy := middleware.RateLimitPolicy{
			Name:   copilotPolicy,
			Limit:  cfg.Copilot.RateLimit,
			Window: cfg.Copilot.RateWindow,
		}
		r.With(
			middleware.APIKey(cfg.Copilot.APIKey, logg),
			middleware.RateLimit(policy, deps.Limiter, deps.HTTPMetrics, logg),
		).Post("/copilot", controllers.Copilot(deps.Copilot, logg))
	})

	return r
}
