package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/opspulse-backend/pkg/errors"
)

const (
	DefaultFeedURL           = "https://jsonplaceholder.typicode.com/todos"
	DefaultFeedTimeout       = 7500 * time.Millisecond
	errorBodyReadLimit int64 = 1024
)

// Todo is one upstream item. Fields are lenient because the feed is not ours.
type Todo struct {
	ID        int
	UserID    int
	Title     string
	Completed bool
}

// Fetcher pulls the raw upstream list.
type Fetcher interface {
	Fetch(ctx context.Context) ([]Todo, error)
}

// HTTPFeed reads the public todo dataset over HTTP.
type HTTPFeed struct {
	httpClient *http.Client
	url        string
	timeout    time.Duration
}

// FeedOption configures optional feed behavior.
type FeedOption func(*HTTPFeed)

// WithFeedHTTPClient overrides the default HTTP client.
func WithFeedHTTPClient(client *http.Client) FeedOption {
	return func(f *HTTPFeed) {
		if client != nil {
			f.httpClient = client
		}
	}
}

// WithFeedTimeout bounds each fetch.
func WithFeedTimeout(timeout time.Duration) FeedOption {
	return func(f *HTTPFeed) {
		if timeout > 0 {
			f.timeout = timeout
		}
	}
}

// NewHTTPFeed builds a feed for url, falling back to the public default.
func NewHTTPFeed(url string, opts ...FeedOption) *HTTPFeed {
	feed := &HTTPFeed{
		httpClient: &http.Client{},
		url:        strings.TrimSpace(url),
		timeout:    DefaultFeedTimeout,
	}
	if feed.url == "" {
		feed.url = DefaultFeedURL
	}
	for _, opt := range opts {
		if opt != nil {
			opt(feed)
		}
	}
	return feed
}

// URL reports the upstream endpoint.
func (f *HTTPFeed) URL() string {
	return f.url
}

// Fetch GETs the feed. Non-2xx responses, transport errors and the timeout
// are reported as dependency errors.
func (f *HTTPFeed) Fetch(ctx context.Context) ([]Todo, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build activity feed request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, pkgerrors.Wrap(pkgerrors.CodeTimeout, err, "activity feed timed out")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute activity feed request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "activity feed request failed")
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode activity feed")
	}
	return todosFrom(payload), nil
}

// todosFrom accepts any JSON document; a non-array yields no items and
// non-object elements become zero-valued todos.
func todosFrom(payload any) []Todo {
	list, ok := payload.([]any)
	if !ok {
		return []Todo{}
	}
	out := make([]Todo, 0, len(list))
	for _, raw := range list {
		obj, _ := raw.(map[string]any)
		title, _ := obj["title"].(string)
		out = append(out, Todo{
			ID:        toInt(obj["id"]),
			UserID:    toInt(obj["userId"]),
			Title:     title,
			Completed: truthy(obj["completed"]),
		})
	}
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return int(parsed)
		}
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	case nil:
		return false
	default:
		return true
	}
}
