package responses

// SuccessEnvelope wraps non-dashboard payloads such as health and system metrics.
type SuccessEnvelope struct {
	Data any `json:"data"`
}

// APIError is the public shape of every error response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
