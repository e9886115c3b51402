package controllers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/opspulse-backend/api/responses"
	"github.com/angelmondragon/opspulse-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

const envHeader = "X-OpsPulse-Env"

// Pinger is any dependency with a reachability check.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every configured dependency. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, pingers map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := map[string]string{}
		var errs error
		for name, p := range pingers {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				errs = multierr.Append(errs, err)
				continue
			}
			checks[name] = "up"
		}

		if errs != nil {
			err := pkgerrors.Wrap(pkgerrors.CodeDependency, errs, "dependency unavailable").
				WithDetails(map[string]any{"checks": checks})
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
