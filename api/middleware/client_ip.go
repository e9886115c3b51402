package middleware

import (
	"net/http"
	"strings"
)

const unknownClient = "unknown"

// ClientIP identifies the caller: first X-Forwarded-For entry, then
// X-Real-IP, else "unknown".
func ClientIP(r *http.Request) string {
	if r == nil {
		return unknownClient
	}
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		if ip := strings.TrimSpace(strings.SplitN(header, ",", 2)[0]); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	return unknownClient
}
