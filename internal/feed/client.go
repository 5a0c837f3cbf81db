// Package feed is a thin client for the cloud time-series feed the sensor
// publishes to. Feeds are keyed by name and carry a single {"value": ...}
// payload whose value may arrive as a JSON number or a quoted string.
// Readings are always degrees Celsius regardless of the display unit.
package feed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const defaultTimeout = 5 * time.Second

// Client talks to the feed endpoints.
type Client struct {
	http    *http.Client
	baseURL string
}

// New builds a client for the given base URL (no trailing slash needed).
// A non-positive timeout falls back to the default.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type payload struct {
	Feed  string `json:"feed,omitempty"`
	Value any    `json:"value"`
}

// Get fetches the last value published to the named feed.
func (c *Client) Get(ctx context.Context, feedName string) (float64, error) {
	url := fmt.Sprintf("%s/get-data?feed=%s", c.baseURL, feedName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("feed %q get: %w", feedName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("feed %q get: unexpected status %d", feedName, resp.StatusCode)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var p payload
	if err := dec.Decode(&p); err != nil {
		return 0, fmt.Errorf("feed %q get: decode: %w", feedName, err)
	}
	return parseValue(feedName, p.Value)
}

// Post publishes a new value to the named feed.
func (c *Client) Post(ctx context.Context, feedName string, value float64) error {
	body, err := json.Marshal(payload{Feed: feedName, Value: value})
	if err != nil {
		return err
	}
	url := c.baseURL + "/send-data"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("feed %q post: %w", feedName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feed %q post: unexpected status %d", feedName, resp.StatusCode)
	}
	return nil
}

// Probe reports whether the feed is reachable. Evaluated once at startup to
// choose between the polled and simulated sources.
func (c *Client) Probe(ctx context.Context, feedName string) bool {
	if c.baseURL == "" {
		return false
	}
	_, err := c.Get(ctx, feedName)
	return err == nil
}

// parseValue accepts the value as a number or a numeric string.
func parseValue(feedName string, v any) (float64, error) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("feed %q: non-numeric value %q", feedName, t.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, fmt.Errorf("feed %q: non-numeric value %q", feedName, t)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("feed %q: missing or malformed value", feedName)
	}
}
