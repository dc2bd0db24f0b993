// Package relay provides the HTTP client for the smart-account relay
// service, which executes trades through a smart-contract wallet so the
// bettor does not sign or pay gas directly.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/ovbet/overbot/internal/domain"
	"github.com/ovbet/overbot/internal/trading"
)

// Client executes built transactions through the relay service. It
// implements trading.RelayExecutor.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ trading.RelayExecutor = (*Client)(nil)

// NewClient creates a relay client. apiKey may be empty when the relay does
// not require authentication.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// executeRequest is the relay's wire shape for a transaction execution.
type executeRequest struct {
	NetworkID  int64  `json:"networkId"`
	To         string `json:"to"`
	Data       string `json:"data"`
	Value      string `json:"value"`
	Collateral string `json:"collateral,omitempty"`
	Method     string `json:"method,omitempty"`
}

type executeResponse struct {
	TxHash string `json:"txHash"`
	Error  string `json:"error,omitempty"`
}

// Execute submits the call to the relay and returns the resulting
// transaction hash. The relay owns gas planning for this path.
func (c *Client) Execute(ctx context.Context, req trading.RelayRequest) (domain.SubmissionResult, error) {
	payload := executeRequest{
		NetworkID: req.NetworkID,
		To:        req.To.Hex(),
		Data:      hexutil.Encode(req.CallData),
		Value:     "0x0",
		Method:    req.Method,
	}
	if req.Value != nil && req.Value.Sign() > 0 {
		payload.Value = hexutil.EncodeBig(req.Value)
	}
	if req.Collateral != (common.Address{}) {
		payload.Collateral = req.Collateral.Hex()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("relay: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/executeTransaction", bytes.NewReader(body))
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("relay: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("relay: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("relay: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return domain.SubmissionResult{}, fmt.Errorf("relay: execute failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded executeResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("relay: decode response: %w", err)
	}
	if decoded.Error != "" {
		return domain.SubmissionResult{}, fmt.Errorf("relay: execute rejected: %s", decoded.Error)
	}
	if decoded.TxHash == "" {
		return domain.SubmissionResult{}, fmt.Errorf("relay: response carries no transaction hash")
	}

	return domain.SubmissionResult{TxHash: common.HexToHash(decoded.TxHash)}, nil
}
