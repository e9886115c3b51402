package eval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	copilotPath     = "/api/copilot"
	readinessPath   = "/api/revenue"
	apiKeyHeader    = "X-API-Key"
	resetHeader     = "X-RateLimit-Reset"
	defaultTimeout  = 30 * time.Second
	resetSlack      = 250 * time.Millisecond
	DefaultBackoff  = 6500 * time.Millisecond
	pollInterval    = 500 * time.Millisecond
	maxResponseBody = 1 << 20
)

// Reply is the final HTTP exchange for one case.
type Reply struct {
	Status int
	Body   json.RawMessage
}

// OK reports a 2xx status.
func (r Reply) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client posts questions to a copilot endpoint.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
	onWait  func(time.Duration)
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

func WithClock(now func() time.Time) ClientOption {
	return func(cl *Client) {
		if now != nil {
			cl.now = now
		}
	}
}

// WithSleep replaces the wait used between rate-limited attempts.
func WithSleep(fn func(context.Context, time.Duration) error) ClientOption {
	return func(cl *Client) {
		if fn != nil {
			cl.sleep = fn
		}
	}
}

// WithWaitHook is called with the delay before a rate-limited retry.
func WithWaitHook(fn func(time.Duration)) ClientOption {
	return func(cl *Client) { cl.onWait = fn }
}

func NewClient(baseURL, apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: defaultTimeout},
		now:     time.Now,
		sleep:   Sleep,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// BaseURL returns the server the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ask posts one case. A 429 is retried once after the advertised reset.
func (c *Client) Ask(ctx context.Context, tc Case) (Reply, error) {
	payload, err := json.Marshal(map[string]string{
		"query":          tc.Query,
		"prompt_version": tc.PromptVersion,
	})
	if err != nil {
		return Reply{}, err
	}

	var reply Reply
	for attempt := 0; attempt < 2; attempt++ {
		var header http.Header
		reply, header, err = c.post(ctx, payload)
		if err != nil {
			return Reply{}, err
		}
		if reply.Status != http.StatusTooManyRequests || attempt == 1 {
			break
		}
		wait := c.retryDelay(header.Get(resetHeader))
		if c.onWait != nil {
			c.onWait(wait)
		}
		if err := c.sleep(ctx, wait); err != nil {
			return Reply{}, err
		}
	}
	return reply, nil
}

func (c *Client) post(ctx context.Context, payload []byte) (Reply, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+copilotPath, bytes.NewReader(payload))
	if err != nil {
		return Reply{}, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return Reply{}, nil, fmt.Errorf("post copilot: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return Reply{}, nil, fmt.Errorf("read copilot response: %w", err)
	}
	return Reply{Status: resp.StatusCode, Body: body}, resp.Header, nil
}

// retryDelay waits until the reset instant plus slack, or the default backoff
// when the header is missing or already past.
func (c *Client) retryDelay(raw string) time.Duration {
	resetMs, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return DefaultBackoff
	}
	remaining := time.UnixMilli(resetMs).Sub(c.now())
	if remaining <= 0 {
		return DefaultBackoff
	}
	return remaining + resetSlack
}

// WaitForServer polls the revenue endpoint until it answers 2xx.
func (c *Client) WaitForServer(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+readinessPath, nil)
		if err != nil {
			return err
		}
		if resp, err := c.http.Do(req); err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return nil
			}
		}
		if err := c.sleep(ctx, pollInterval); err != nil {
			return fmt.Errorf("timed out waiting for server at %s", c.baseURL)
		}
	}
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
