// Package client is the SDK for the cursorwatch daemon API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cursorwatch/cursorwatch/pkg/api"
	"github.com/cursorwatch/cursorwatch/pkg/store"
)

// DefaultEndpoint is where cursorwatch-d listens unless configured otherwise.
const DefaultEndpoint = "http://127.0.0.1:7197"

const maxAttempts = 3

// Client talks to a running cursorwatch-d. Read requests are retried with
// exponential backoff on network errors and 5xx responses; the daemon itself
// degrades gracefully, so a 200 always carries a usable summary.
type Client struct {
	endpoint string
	http     *http.Client
	backoff  BackoffStrategy
}

// NewClient creates a daemon client. endpoint defaults to DefaultEndpoint
// if empty.
func NewClient(endpoint string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 10 * time.Second},
		backoff:  DefaultBackoff(),
	}
}

// GetSummary fetches the current usage summary. force asks the daemon to
// bypass its freshness window.
func (c *Client) GetSummary(ctx context.Context, force bool) (api.SummaryResponse, error) {
	url := c.endpoint + "/v1/summary"
	if force {
		url += "?refresh=true"
	}
	var resp api.SummaryResponse
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return api.SummaryResponse{}, err
	}
	return resp, nil
}

// Refresh forces a fetch and returns the resulting summary.
func (c *Client) Refresh(ctx context.Context) (api.SummaryResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/v1/refresh", nil)
	if err != nil {
		return api.SummaryResponse{}, err
	}
	var resp api.SummaryResponse
	if err := c.doJSON(req, &resp); err != nil {
		return api.SummaryResponse{}, err
	}
	return resp, nil
}

// ClearCache discards the daemon's resident cache entry (token rotation).
func (c *Client) ClearCache(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.endpoint+"/v1/cache", nil)
	if err != nil {
		return err
	}
	var resp api.StatusResponse
	return c.doJSON(req, &resp)
}

// Connectivity runs the daemon's diagnostic probe.
func (c *Client) Connectivity(ctx context.Context) (bool, error) {
	var resp api.ConnectivityResponse
	if err := c.getJSON(ctx, c.endpoint+"/v1/connectivity", &resp); err != nil {
		return false, err
	}
	return resp.OK, nil
}

// GetHistory fetches recent fetch records, newest first.
func (c *Client) GetHistory(ctx context.Context, limit int) ([]*store.FetchRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var records []*store.FetchRecord
	url := fmt.Sprintf("%s/v1/history?limit=%d", c.endpoint, limit)
	if err := c.getJSON(ctx, url, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// Ping checks the health of the daemon.
func (c *Client) Ping(ctx context.Context) error {
	var resp api.StatusResponse
	if err := c.getJSON(ctx, c.endpoint+"/v1/health", &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("unexpected health status: %s", resp.Status)
	}
	return nil
}

// getJSON performs a GET with retries on transient failures.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(c.backoff.Next(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		lastErr = c.doJSON(req, out)
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) doJSON(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return &transientError{err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return &transientError{fmt.Errorf("daemon returned %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type transientError struct {
	err error
}

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

func isTransient(err error) bool {
	_, ok := err.(*transientError)
	return ok
}
