// Package metrics provides the HTTP client for the external engagement
// analytics provider. It implements port.MetricsProvider.
package metrics

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"resonate/internal/core/domain"
)

// Client fetches engagement snapshots from the analytics provider over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a metrics provider client. The base URL points at the
// provider's API root, e.g. https://analytics.example.com.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// FetchLatestMetrics returns the latest engagement counts for a submission.
// Any transport or decode failure is returned as-is; the orchestrator treats
// these as per-item failures and keeps the previously stored score.
func (c *Client) FetchLatestMetrics(ctx context.Context, submissionID uuid.UUID) (domain.EngagementSnapshot, error) {
	var snapshot domain.EngagementSnapshot

	url := fmt.Sprintf("%s/v1/submissions/%s/metrics", c.baseURL, submissionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return snapshot, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return snapshot, fmt.Errorf("metrics provider request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snapshot, fmt.Errorf("metrics provider returned status %d for submission %s", resp.StatusCode, submissionID)
	}
	if err = json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return snapshot, fmt.Errorf("decode metrics response: %w", err)
	}
	return snapshot, nil
}
