// Package fetch retrieves and parses the four raw datasets over HTTP.
//
// Each Fetch* method performs one GET and parses the body into domain
// records. Failures are fatal to the caller: the downstream join needs all
// four tables, so there is no retry or partial-result path.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Client fetches the raw datasets. Safe for sequential use from one
// goroutine, which is all the one-shot pipeline needs.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a dataset client with the given per-request timeout.
func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// get performs one GET and returns the response body. Non-200 statuses are
// errors; a short body excerpt is included for diagnosis.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: status %d: %s", url, resp.StatusCode, body)
	}

	return resp.Body, nil
}
