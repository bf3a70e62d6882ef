// Package maps adapts the external distance-matrix service to the
// RouteEstimator port. One HTTP call per estimate, no retries: the
// refresher decides what to do with a failure.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	endpoint string
	apiKey   string
	timeout  time.Duration
	http     *http.Client
}

func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		timeout:  timeout,
		http:     &http.Client{},
	}
}

type matrixResponse struct {
	Rows []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration *struct {
				Text string `json:"text"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// EstimateTravelMinutes asks the routing service for the driving time
// between two formatted addresses. All failure modes (transport, HTTP
// status, response shape, unparsable duration) collapse to one error.
func (c *Client) EstimateTravelMinutes(ctx context.Context, origin, destination string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("origins", origin)
	q.Set("destinations", destination)
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build routing request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("routing service returned status %d", resp.StatusCode)
	}

	var matrix matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&matrix); err != nil {
		return 0, fmt.Errorf("failed to decode routing response: %w", err)
	}

	if len(matrix.Rows) == 0 || len(matrix.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("routing response has no elements")
	}
	el := matrix.Rows[0].Elements[0]
	if el.Status != "OK" || el.Duration == nil {
		return 0, fmt.Errorf("routing element status %q", el.Status)
	}

	minutes, err := parseDurationMinutes(el.Duration.Text)
	if err != nil {
		return 0, err
	}
	return minutes, nil
}

// parseDurationMinutes extracts the leading integer of a duration text
// such as "25 mins" or "1 min".
func parseDurationMinutes(text string) (int, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty duration text")
	}
	minutes, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, fmt.Errorf("unparsable duration %q: %w", text, err)
	}
	if minutes < 0 {
		return 0, fmt.Errorf("negative duration %q", text)
	}
	return minutes, nil
}
