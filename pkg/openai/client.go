// Package openai is a minimal client for the Responses API with strict
// JSON-schema structured output.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
)

const (
	DefaultBaseURL              = "https://api.openai.com/v1"
	responseBodyReadLimit       = 4 << 20
	errorBodyReadLimit    int64 = 1024
)

var errAPIKeyRequired = errors.New("openai api key is required")

// Client calls the Responses endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// NewClient builds a client for apiKey.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		apiKey:     trimmedKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// StructuredRequest is one schema-constrained generation.
type StructuredRequest struct {
	Model           string
	System          string
	User            string
	MaxOutputTokens int
	SchemaName      string
	Schema          map[string]any
}

type inputMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type inputText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type textFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type responsesRequest struct {
	Model           string         `json:"model"`
	Input           []inputMessage `json:"input"`
	MaxOutputTokens int            `json:"max_output_tokens,omitempty"`
	Text            struct {
		Format textFormat `json:"format"`
	} `json:"text"`
}

// CreateStructured sends req and returns the model's JSON object. Transport
// failures and non-2xx statuses are dependency errors, an expired context is
// a timeout, and a body no known shape can be read from is a *ParseError.
func (c *Client) CreateStructured(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "openai client not configured")
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}

	body := responsesRequest{
		Model: req.Model,
		Input: []inputMessage{
			{Role: "system", Content: req.System},
			{Role: "user", Content: []inputText{{Type: "input_text", Text: req.User}}},
		},
		MaxOutputTokens: req.MaxOutputTokens,
	}
	body.Text.Format = textFormat{Type: "json_schema", Name: req.SchemaName, Schema: req.Schema, Strict: true}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal responses request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.buildURL("responses"), bytes.NewReader(payload))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build responses request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "responses request timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute responses request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "responses request failed")
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read responses body")
	}

	result := ParseStructuredOutput(raw)
	if result.Failure != FailureNone {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, &ParseError{Failure: result.Failure}, "parse responses body")
	}
	return result.Payload, nil
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
