// Package markets provides the REST client for the Overtime markets API:
// pre-game and live market listings, plus an explicit snapshot fallback so
// callers keep serving the last good listing across transient API outages.
package markets

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

// Client is the REST client for the markets API.
type Client struct {
	baseURL    string
	networkID  int64
	httpClient *http.Client
}

// NewClient creates a new markets API client.
//
// baseURL is the API root, e.g. "https://api.overtime.io".
func NewClient(baseURL string, networkID int64) *Client {
	return &Client{
		baseURL:   baseURL,
		networkID: networkID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// ListMarkets returns the open pre-game markets, optionally filtered by
// sport.
func (c *Client) ListMarkets(ctx context.Context, sport string) ([]domain.SportMarket, error) {
	params := url.Values{}
	params.Set("ungroup", "true")
	if sport != "" {
		params.Set("sport", sport)
	}

	path := fmt.Sprintf("/overtime-v2/networks/%d/markets?%s", c.networkID, params.Encode())
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("markets: list markets: %w", err)
	}
	return decodeMarkets(body)
}

// ListLiveMarkets returns the markets currently tradable in-play.
func (c *Client) ListLiveMarkets(ctx context.Context) ([]domain.SportMarket, error) {
	path := fmt.Sprintf("/overtime-v2/networks/%d/live-markets", c.networkID)
	body, err := c.doGet(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("markets: list live markets: %w", err)
	}
	markets, err := decodeMarkets(body)
	if err != nil {
		return nil, err
	}
	for i := range markets {
		markets[i].IsLive = true
	}
	return markets, nil
}

// GetMarket returns a single market by its game id.
func (c *Client) GetMarket(ctx context.Context, gameID string) (domain.SportMarket, error) {
	path := fmt.Sprintf("/overtime-v2/networks/%d/markets/%s", c.networkID, url.PathEscape(gameID))
	body, err := c.doGet(ctx, path)
	if err != nil {
		return domain.SportMarket{}, fmt.Errorf("markets: get market %s: %w", gameID, err)
	}

	var market domain.SportMarket
	if err := json.Unmarshal(body, &market); err != nil {
		return domain.SportMarket{}, fmt.Errorf("markets: decode market: %w", err)
	}
	market.FetchedAt = time.Now().UTC()
	return market, nil
}

func decodeMarkets(body []byte) ([]domain.SportMarket, error) {
	var markets []domain.SportMarket
	if err := json.Unmarshal(body, &markets); err != nil {
		return nil, fmt.Errorf("markets: decode markets: %w", err)
	}
	now := time.Now().UTC()
	for i := range markets {
		markets[i].FetchedAt = now
	}
	return markets, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
