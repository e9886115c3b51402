package metrics

import "strconv"

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}

// statusClass buckets a status code as 2xx, 4xx, ...
func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
