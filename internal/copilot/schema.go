package copilot

// Field bounds of the answer contract.
const (
	SummaryMaxLen     = 1200
	MinKeyDrivers     = 3
	MaxKeyDrivers     = 6
	MinActions        = 3
	MaxActions        = 6
	ActionMaxLen      = 240
	ReasonMaxLen      = 600
	MinUsedDataPoints = 1
	MaxUsedDataPoints = 16
	answerSchemaName  = "ops_copilot_response"
)

var (
	answerKeys = []string{"summary", "key_drivers", "recommended_actions", "confidence", "used_data_points"}
	actionKeys = []string{"action", "reason", "priority"}
)

// SchemaName names the structured output format sent to the model.
func SchemaName() string {
	return answerSchemaName
}

// JSONSchema is the strict structured-output schema sent with model calls.
func JSONSchema() map[string]any {
	nonEmpty := map[string]any{"type": "string", "minLength": 1}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"summary": map[string]any{"type": "string", "minLength": 1},
			"key_drivers": map[string]any{
				"type":     "array",
				"minItems": MinKeyDrivers,
				"maxItems": MaxKeyDrivers,
				"items":    nonEmpty,
			},
			"recommended_actions": map[string]any{
				"type":     "array",
				"minItems": MinActions,
				"maxItems": MaxActions,
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"properties": map[string]any{
						"action":   nonEmpty,
						"reason":   nonEmpty,
						"priority": map[string]any{"type": "string", "enum": []string{"high", "medium", "low"}},
					},
					"required": actionKeys,
				},
			},
			"confidence": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"used_data_points": map[string]any{
				"type":     "array",
				"minItems": MinUsedDataPoints,
				"maxItems": MaxUsedDataPoints,
				"items":    nonEmpty,
			},
		},
		"required": answerKeys,
	}
}
