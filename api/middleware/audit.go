package middleware

import (
	"net/http"
	"time"

	"github.com/angelmondragon/opspulse-backend/api/responses"
	"github.com/angelmondragon/opspulse-backend/internal/auditlog"
)

// Audit opens an audit entry for the request and records it once the handler
// returns. Handlers annotate the entry through auditlog.EntryFrom.
func Audit(svc auditlog.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if svc == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, entry := auditlog.WithEntry(r.Context())
			rec := recorderFor(w)
			start := time.Now()

			defer func() {
				status := rec.code()
				if p := recover(); p != nil {
					entry.SetErrorType(responses.ErrorTypeServer)
					svc.Record(ctx, entry.Row(time.Now(), r.URL.Path, http.StatusInternalServerError, time.Since(start)))
					panic(p)
				}
				svc.Record(ctx, entry.Row(time.Now(), r.URL.Path, status, time.Since(start)))
			}()

			next.ServeHTTP(rec, r.WithContext(ctx))
		})
	}
}
