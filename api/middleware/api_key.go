package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/angelmondragon/opspulse-backend/api/responses"
	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
	"github.com/angelmondragon/opspulse-backend/pkg/logger"
)

const apiKeyHeader = "X-API-Key"

// APIKey rejects requests whose x-api-key does not match expected.
func APIKey(expected string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(apiKeyHeader)
			if expected == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(expected)) != 1 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Invalid x-api-key."))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
