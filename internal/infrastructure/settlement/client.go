// Package settlement talks to the credit token ledger. Two providers exist:
// Client calls the chain's signing gateway, Simulator synthesizes results
// locally. Both produce the same result shape so persistence downstream is
// uniform.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hydrochain/hydrochain-api/internal/core/domain"
	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

// Config captures the settings required to reach the signing gateway. The
// chain is considered configured only when all three values are present.
type Config struct {
	RPCURL          string
	SigningKey      string
	ContractAddress string
	Timeout         time.Duration
}

// Configured reports whether every chain setting is present.
func (c Config) Configured() bool {
	return c.RPCURL != "" && c.SigningKey != "" && c.ContractAddress != ""
}

// Client mints credit tokens through the chain's signing gateway. Each Mint
// issues exactly one HTTP call; retries are the caller's decision (and the
// issuance workflow deliberately makes none).
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient builds a gateway client. cfg.Timeout bounds the whole HTTP
// exchange; it defaults to 5s.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

type mintParams struct {
	Contract    string `json:"contract"`
	VolumeUnits int64  `json:"volumeUnits"`
	MetadataURI string `json:"metadataUri"`
}

type rpcRequest struct {
	JSONRPC string     `json:"jsonrpc"`
	Method  string     `json:"method"`
	Params  mintParams `json:"params"`
	ID      int        `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result *domain.SettlementResult `json:"result"`
	Error  *rpcError                `json:"error"`
}

// Mint submits a single mint call to the gateway and decodes the settlement
// result.
func (c *Client) Mint(ctx context.Context, req ports.MintRequest) (*domain.SettlementResult, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "hc_mintCredit",
		Params: mintParams{
			Contract:    c.cfg.ContractAddress,
			VolumeUnits: req.VolumeUnits,
			MetadataURI: req.MetadataURI,
		},
		ID: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("settlement: encode mint request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.RPCURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("settlement: build mint request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.SigningKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("settlement: mint call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("settlement: gateway returned status %d", resp.StatusCode)
	}

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("settlement: decode mint response: %w", err)
	}
	if decoded.Error != nil {
		return nil, fmt.Errorf("settlement: mint rejected: %s", decoded.Error.Message)
	}
	if decoded.Result == nil || decoded.Result.TxHash == "" {
		return nil, fmt.Errorf("settlement: gateway returned empty result")
	}

	decoded.Result.Simulated = false
	return decoded.Result, nil
}
