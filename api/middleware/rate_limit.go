package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/angelmondragon/opspulse-backend/api/responses"
	"github.com/angelmondragon/opspulse-backend/internal/ratelimit"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
	"github.com/angelmondragon/opspulse-backend/pkg/metrics"
)

const rateLimitResetHeader = "X-RateLimit-Reset"

// RateLimitPolicy names a throttled surface and its budget.
type RateLimitPolicy struct {
	Name   string
	Limit  int
	Window time.Duration
}

func (p RateLimitPolicy) enabled() bool {
	return p.Limit > 0 && p.Window > 0
}

func (p RateLimitPolicy) key(ip string) string {
	name := p.Name
	if name == "" {
		name = "api"
	}
	return name + ":" + ip
}

// RateLimit enforces policy per client identity. A limiter failure lets the
// request through and logs a warning.
func RateLimit(policy RateLimitPolicy, limiter ratelimit.Limiter, m *metrics.HTTPMetrics, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || limiter == nil {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := ClientIP(r)

			decision, err := limiter.Check(ctx, policy.key(ip), policy.Limit, policy.Window)
			if err != nil {
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{"policy": policy.Name, "error": err.Error()}), "ratelimit.check_failed")
				}
				next.ServeHTTP(w, r)
				return
			}

			if !decision.Allowed {
				m.IncRateLimited(policy.Name)
				if logg != nil {
					logg.Warn(logg.WithFields(ctx, map[string]any{
						"policy":         policy.Name,
						"limit":          policy.Limit,
						"window_seconds": int(policy.Window.Seconds()),
						"reset_at":       decision.ResetAt.UnixMilli(),
					}), "ratelimit.blocked")
				}
				w.Header().Set(rateLimitResetHeader, strconv.FormatInt(decision.ResetAt.UnixMilli(), 10))
				err := pkgerrors.New(pkgerrors.CodeRateLimit, "Rate limit exceeded. Try again soon.").
					WithDetails(map[string]any{"reset_at": decision.ResetAt.UnixMilli()})
				responses.WriteError(ctx, nil, w, err)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
