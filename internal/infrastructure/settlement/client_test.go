package settlement

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hydrochain/hydrochain-api/internal/core/ports"
)

func newTestClient(url string) *Client {
	return NewClient(Config{
		RPCURL:          url,
		SigningKey:      "test-key",
		ContractAddress: "0xcontract",
		Timeout:         time.Second,
	})
}

func TestClient_Mint_Success(t *testing.T) {
	var got rpcRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("missing signing key header")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{
				"tokenId":         "42",
				"transactionHash": "0xabc",
				"blockNumber":     19_000_001,
			},
		})
	}))
	defer srv.Close()

	result, err := newTestClient(srv.URL).Mint(context.Background(), ports.MintRequest{
		VolumeUnits: 250_500_000,
		MetadataURI: "data:application/json;base64,e30=",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Method != "hc_mintCredit" {
		t.Errorf("unexpected rpc method: %q", got.Method)
	}
	if got.Params.Contract != "0xcontract" {
		t.Errorf("unexpected contract: %q", got.Params.Contract)
	}
	if got.Params.VolumeUnits != 250_500_000 {
		t.Errorf("unexpected volume units: %d", got.Params.VolumeUnits)
	}

	if result.TokenID != "42" || result.TxHash != "0xabc" || result.BlockNumber != 19_000_001 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Simulated {
		t.Error("a real gateway result must not be marked simulated")
	}
}

func TestClient_Mint_RPCError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": -32000, "message": "insufficient gas"},
		})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Mint(context.Background(), ports.MintRequest{}); err == nil {
		t.Fatal("expected an error for an rpc error response")
	}
}

func TestClient_Mint_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Mint(context.Background(), ports.MintRequest{}); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}

func TestClient_Mint_EmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).Mint(context.Background(), ports.MintRequest{}); err == nil {
		t.Fatal("expected an error for an empty result")
	}
}

func TestConfig_Configured(t *testing.T) {
	full := Config{RPCURL: "http://gw", SigningKey: "k", ContractAddress: "0x1"}
	if !full.Configured() {
		t.Error("all settings present must report configured")
	}
	for _, partial := range []Config{
		{SigningKey: "k", ContractAddress: "0x1"},
		{RPCURL: "http://gw", ContractAddress: "0x1"},
		{RPCURL: "http://gw", SigningKey: "k"},
	} {
		if partial.Configured() {
			t.Errorf("missing setting must report unconfigured: %+v", partial)
		}
	}
}
