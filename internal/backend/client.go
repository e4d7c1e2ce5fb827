// Package backend implements the HTTP client for the personal data service
// (memory search, people lookup, profile, status, weather, time, health and
// finance endpoints). Every call returns a Result envelope; transport
// failures, non-2xx statuses and malformed JSON are folded into the envelope
// rather than returned as errors, so callers at the tool boundary never have
// to handle a raised failure.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Result is the uniform envelope for a single backend call.
type Result struct {
	Success bool           `json:"success"`
	Payload map[string]any `json:"payload,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// Config configures the backend service connection.
type Config struct {
	URL     string        // e.g. "http://127.0.0.1:8080"
	APIKey  string        // X-API-Key header value
	Timeout time.Duration // default: 15 seconds
}

// Client performs single-attempt calls against the backend REST API.
// It is stateless and safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a new backend client. Returns nil if the URL is empty.
func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	// Ensure no trailing slash
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	if c == nil {
		return ""
	}
	return c.config.URL
}

// MemorySearch calls POST /api/v1/memory/search.
func (c *Client) MemorySearch(ctx context.Context, query string, limit int) Result {
	if limit <= 0 {
		limit = 5
	}
	return c.post(ctx, "/api/v1/memory/search", map[string]any{
		"query": query,
		"limit": limit,
	})
}

// MemoryPeople calls POST /api/v1/memory/people.
func (c *Client) MemoryPeople(ctx context.Context, name string) Result {
	return c.post(ctx, "/api/v1/memory/people", map[string]any{
		"name": name,
	})
}

// ProfileSelf calls GET /api/v1/profile/self.
func (c *Client) ProfileSelf(ctx context.Context) Result {
	return c.get(ctx, "/api/v1/profile/self", nil)
}

// StatusUpdate calls POST /api/v1/status/update.
func (c *Client) StatusUpdate(ctx context.Context, status string) Result {
	return c.post(ctx, "/api/v1/status/update", map[string]any{
		"status": status,
	})
}

// WeatherCurrent calls GET /api/v1/weather/current for a location.
func (c *Client) WeatherCurrent(ctx context.Context, location string) Result {
	return c.get(ctx, "/api/v1/weather/current", map[string]string{
		"location": location,
	})
}

// TimeCurrent calls GET /api/v1/time/current for an IANA timezone.
func (c *Client) TimeCurrent(ctx context.Context, timezone string) Result {
	return c.get(ctx, "/api/v1/time/current", map[string]string{
		"timezone": timezone,
	})
}

// HealthSummary calls POST /api/v1/health/summary.
func (c *Client) HealthSummary(ctx context.Context, metric, period string) Result {
	return c.post(ctx, "/api/v1/health/summary", map[string]any{
		"metric": metric,
		"period": period,
	})
}

// FinanceSpending calls POST /api/v1/finance/spending.
func (c *Client) FinanceSpending(ctx context.Context, category, period string) Result {
	return c.post(ctx, "/api/v1/finance/spending", map[string]any{
		"category": category,
		"period":   period,
	})
}

// Ping probes backend reachability. Unlike the data calls it returns a plain
// error, because its only caller is diagnostics.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("backend not configured")
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.URL+"/api/v1/profile/self", nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backend unreachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]any) Result {
	if c == nil {
		return Result{Success: false, Error: "backend not configured"}
	}
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("marshal request: %v", err)}
	}
	req, err := http.NewRequestWithContext(ctx, "POST", c.config.URL+path, bytes.NewReader(jsonBody))
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)
	return c.do(req, path)
}

func (c *Client) get(ctx context.Context, path string, query map[string]string) Result {
	if c == nil {
		return Result{Success: false, Error: "backend not configured"}
	}
	req, err := http.NewRequestWithContext(ctx, "GET", c.config.URL+path, nil)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("build request: %v", err)}
	}
	if len(query) > 0 {
		q := req.URL.Query()
		for k, v := range query {
			q.Set(k, v)
		}
		req.URL.RawQuery = q.Encode()
	}
	c.setHeaders(req)
	return c.do(req, path)
}

func (c *Client) setHeaders(req *http.Request) {
	if c.config.APIKey != "" {
		req.Header.Set("X-API-Key", c.config.APIKey)
	}
}

func (c *Client) do(req *http.Request, path string) Result {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Warn("backend call failed", "path", path, "error", err)
		return Result{Success: false, Error: fmt.Sprintf("backend request failed: %v", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Success: false, Error: fmt.Sprintf("read response: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		slog.Warn("backend call rejected", "path", path, "status", resp.StatusCode)
		return Result{Success: false, Error: fmt.Sprintf("backend status %d: %s", resp.StatusCode, truncateBody(respBody))}
	}

	var payload map[string]any
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &payload); err != nil {
			return Result{Success: false, Error: fmt.Sprintf("malformed backend response: %v", err)}
		}
	}
	return Result{Success: true, Payload: payload}
}

func truncateBody(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
