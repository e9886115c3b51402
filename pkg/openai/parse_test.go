package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseStructuredOutputShapes(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		shape   string
		payload string
	}{
		{"parsed", `{"output":[{"content":[{"parsed":{"a":1},"text":"{\"b\":2}"}]}]}`, ShapeParsed, `{"a":1}`},
		{"json", `{"output":[{"content":[{"json":{"a":2}}]}]}`, ShapeJSON, `{"a":2}`},
		{"output_text wins over content text", `{"output_text":" {\"a\":3} ","output":[{"content":[{"text":"{\"b\":4}"}]}]}`, ShapeOutputText, `{"a":3}`},
		{"content text", `{"output":[{"content":[{"type":"output_text","text":"{\"a\":5}"}]}]}`, ShapeContentText, `{"a":5}`},
		{"skips reasoning item", `{"output":[{"type":"reasoning","summary":[]},{"content":[{"text":"{\"a\":6}"}]}]}`, ShapeContentText, `{"a":6}`},
		{"chat completions", `{"choices":[{"message":{"content":"{\"a\":7}"}}]}`, ShapeChatMessage, `{"a":7}`},
		{"blank output_text falls through", `{"output_text":"  ","choices":[{"message":{"content":"{\"a\":8}"}}]}`, ShapeChatMessage, `{"a":8}`},
		{"array text is left to the validator", `{"output_text":"[1]"}`, ShapeOutputText, `[1]`},
		{"scalar text is left to the validator", `{"output":[{"content":[{"text":"\"done\""}]}]}`, ShapeContentText, `"done"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ParseStructuredOutput([]byte(tc.body))
			assert.Equal(t, FailureNone, res.Failure)
			assert.Equal(t, tc.shape, res.Shape)
			assert.JSONEq(t, tc.payload, string(res.Payload))
		})
	}
}

func TestParseStructuredOutputFailures(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		failure ParseFailure
	}{
		{"not json", `<html>`, FailureMalformedEnvelope},
		{"array envelope", `[1,2]`, FailureMalformedEnvelope},
		{"empty", ``, FailureMalformedEnvelope},
		{"no fields", `{"id":"resp_1"}`, FailureNoContent},
		{"null parsed", `{"output":[{"content":[{"parsed":null}]}]}`, FailureNoContent},
		{"prose text", `{"output_text":"Sure! Here is your answer."}`, FailureInvalidJSON},
		{"truncated text", `{"output_text":"{\"summary\":\"cut"}`, FailureInvalidJSON},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := ParseStructuredOutput([]byte(tc.body))
			assert.Equal(t, tc.failure, res.Failure)
			assert.Nil(t, res.Payload)
		})
	}
}

func TestParseFailureString(t *testing.T) {
	assert.Equal(t, "invalid_json", FailureInvalidJSON.String())
	assert.Equal(t, "structured output unavailable: no_content", (&ParseError{Failure: FailureNoContent}).Error())
}
