package middleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/cors"
)

// CORS applies the configured origin policy. The copilot key travels in
// x-api-key, so it must be an allowed header.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id", "X-Requested-With"},
		ExposedHeaders:   []string{requestIDHeader, rateLimitResetHeader, HeaderMode, HeaderFallback, HeaderPromptVersion, HeaderModelUsed},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	}).Handler
}
