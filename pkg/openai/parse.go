package openai

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ParseFailure says why no structured payload could be extracted.
type ParseFailure int

const (
	FailureNone ParseFailure = iota
	// FailureMalformedEnvelope: the body is not a JSON object.
	FailureMalformedEnvelope
	// FailureNoContent: no known field carried a payload.
	FailureNoContent
	// FailureInvalidJSON: a text field was found but it is not a JSON object.
	FailureInvalidJSON
)

func (f ParseFailure) String() string {
	switch f {
	case FailureNone:
		return "none"
	case FailureMalformedEnvelope:
		return "malformed_envelope"
	case FailureNoContent:
		return "no_content"
	case FailureInvalidJSON:
		return "invalid_json"
	}
	return "unknown"
}

// Shapes report which field a payload came from.
const (
	ShapeParsed      = "output.content.parsed"
	ShapeJSON        = "output.content.json"
	ShapeOutputText  = "output_text"
	ShapeContentText = "output.content.text"
	ShapeChatMessage = "choices.message.content"
)

// ParseResult is the outcome of ParseStructuredOutput.
type ParseResult struct {
	Payload json.RawMessage
	Shape   string
	Failure ParseFailure
}

// ParseError carries a ParseFailure through error chains.
type ParseError struct {
	Failure ParseFailure
}

func (e *ParseError) Error() string {
	return "structured output unavailable: " + e.Failure.String()
}

type contentPart struct {
	Parsed json.RawMessage `json:"parsed"`
	JSON   json.RawMessage `json:"json"`
	Text   *string         `json:"text"`
}

type textCandidate struct {
	shape string
	value *string
}

type envelope struct {
	Output []struct {
		Content []contentPart `json:"content"`
	} `json:"output"`
	OutputText *string `json:"output_text"`
	Choices    []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ParseStructuredOutput is the single reader for model output. Known shapes
// are tried in order: a pre-parsed object on the first content part, its
// json field, the top-level output_text, the content part's text, and a
// chat-completions message. Text fields must hold valid JSON; whether it is
// the right shape is left to the caller's validator.
func ParseStructuredOutput(body []byte) ParseResult {
	var env envelope
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || json.Unmarshal(trimmed, &env) != nil {
		return ParseResult{Failure: FailureMalformedEnvelope}
	}

	first := firstContent(env)
	if first != nil {
		if isObject(first.Parsed) {
			return ParseResult{Payload: first.Parsed, Shape: ShapeParsed}
		}
		if isObject(first.JSON) {
			return ParseResult{Payload: first.JSON, Shape: ShapeJSON}
		}
	}

	texts := []textCandidate{{shape: ShapeOutputText, value: env.OutputText}}
	if first != nil {
		texts = append(texts, textCandidate{shape: ShapeContentText, value: first.Text})
	}
	if len(env.Choices) > 0 {
		texts = append(texts, textCandidate{shape: ShapeChatMessage, value: env.Choices[0].Message.Content})
	}

	for _, t := range texts {
		if t.value == nil || strings.TrimSpace(*t.value) == "" {
			continue
		}
		raw := json.RawMessage(strings.TrimSpace(*t.value))
		if !json.Valid(raw) {
			return ParseResult{Shape: t.shape, Failure: FailureInvalidJSON}
		}
		return ParseResult{Payload: raw, Shape: t.shape}
	}
	return ParseResult{Failure: FailureNoContent}
}

// firstContent returns the first content part of the first output item that
// has any, skipping items such as reasoning traces.
func firstContent(env envelope) *contentPart {
	for _, item := range env.Output {
		if len(item.Content) > 0 {
			return &item.Content[0]
		}
	}
	return nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
