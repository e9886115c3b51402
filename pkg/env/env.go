package env

import (
	"os"
	"strings"
	"time"
)

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

// Duration parses a Go duration ("250ms", "30s") or returns fallback when the
// variable is missing or malformed.
func Duration(key string, fallback time.Duration) time.Duration {
	raw := Get(key, "")
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
