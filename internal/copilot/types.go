// Package copilot turns analytics context and a free-text question into a
// structured recommendation, through a model backend or a deterministic
// template fallback.
package copilot

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Action is one recommended next step.
type Action struct {
	Action   string   `json:"action"`
	Reason   string   `json:"reason"`
	Priority Priority `json:"priority"`
}

// Answer is the schema-checked body of a copilot response.
type Answer struct {
	Summary            string   `json:"summary"`
	KeyDrivers         []string `json:"key_drivers"`
	RecommendedActions []Action `json:"recommended_actions"`
	Confidence         float64  `json:"confidence"`
	UsedDataPoints     []string `json:"used_data_points"`
}

// Modes and fallback reasons reported in Meta.
const (
	ModeLive = "live"
	ModeDemo = "demo"

	ReasonNone          = "none"
	ReasonDemoMode      = "demo_mode"
	ReasonModelError    = "openai_error"
	ReasonSchemaInvalid = "schema_invalid"
)

// Meta describes how the answer was produced.
type Meta struct {
	Mode           string `json:"mode"`
	FallbackReason string `json:"fallback_reason"`
	PromptVersion  string `json:"prompt_version"`
}

// Response is the wire payload: the answer fields plus meta.
type Response struct {
	Answer
	Meta Meta `json:"meta"`
}
