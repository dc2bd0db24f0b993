// Package adapter provides the REST client for the off-chain live trading
// adapter, which approves or rejects async trade requests before they can be
// fulfilled on-chain.
package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

// Client is the REST client for the live trading adapter API.
type Client struct {
	baseURL    string
	networkID  int64
	httpClient *http.Client
}

// NewClient creates a new adapter client.
//
// baseURL is the adapter API root, e.g. "https://api.overtime.io".
func NewClient(baseURL string, networkID int64) *Client {
	return &Client{
		baseURL:   baseURL,
		networkID: networkID,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// readMessageResponse is the adapter's wire shape for a request status.
type readMessageResponse struct {
	Allow   bool   `json:"allow"`
	Message string `json:"message"`
}

// ReadMessage returns the adapter's decision for the given request id. A nil
// decision with nil error means the adapter has not processed the request
// yet (the adapter answers 404 until it has).
func (c *Client) ReadMessage(ctx context.Context, requestID string) (*domain.AdapterDecision, error) {
	path := fmt.Sprintf("/overtime-v2/networks/%d/live-trading/read-message/request/%s",
		c.networkID, url.PathEscape(requestID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("adapter: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("adapter: http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("adapter: read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("adapter: %w: %s", domain.ErrRateLimited, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("adapter: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var decoded readMessageResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("adapter: decode response: %w", err)
	}
	return &domain.AdapterDecision{Allow: decoded.Allow, Message: decoded.Message}, nil
}
