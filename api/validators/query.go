package validators

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
)

// ParseQueryInt reads an integer query parameter, returning defaultVal when it
// is absent. Non-numeric or out-of-range values are validation errors tagged
// invalid_<key> in the audit trail.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, invalidQuery(key, raw, map[string]any{"reason": "must be numeric"})
	}
	if value < min || value > max {
		return 0, invalidQuery(key, raw, map[string]any{"reason": "out of range", "min": min, "max": max})
	}
	return value, nil
}

func invalidQuery(key, raw string, details map[string]any) *pkgerrors.Error {
	details["error_type"] = "invalid_" + key
	details["field"] = key
	details["value"] = raw
	return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Invalid %s parameter.", key)).WithDetails(details)
}

// QueryIntOr parses key, returning fallback when it is missing or not an
// integer.
func QueryIntOr(r *http.Request, key string, fallback int) int {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
