package relay

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/trading"
)

func TestExecute(t *testing.T) {
	var gotBody map[string]any
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-API-Key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		w.Write([]byte(`{"txHash": "0x00000000000000000000000000000000000000000000000000000000000000f7"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	result, err := c.Execute(context.Background(), trading.RelayRequest{
		NetworkID: 10,
		To:        common.HexToAddress("0x0000000000000000000000000000000000000a01"),
		Method:    "trade",
		CallData:  []byte{0xde, 0xad},
		Value:     big.NewInt(1000),
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	wantHash := common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000f7")
	if result.TxHash != wantHash {
		t.Errorf("tx hash = %s, want %s", result.TxHash.Hex(), wantHash.Hex())
	}
	if gotKey != "secret" {
		t.Errorf("api key header = %q, want %q", gotKey, "secret")
	}
	if gotBody["data"] != "0xdead" {
		t.Errorf("calldata = %v, want 0xdead", gotBody["data"])
	}
	if gotBody["value"] != "0x3e8" {
		t.Errorf("value = %v, want 0x3e8", gotBody["value"])
	}
	if gotBody["networkId"] != float64(10) {
		t.Errorf("network id = %v, want 10", gotBody["networkId"])
	}
}

func TestExecuteRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error": "insufficient session balance"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Execute(context.Background(), trading.RelayRequest{NetworkID: 10})
	if err == nil {
		t.Fatal("expected error for rejected execution")
	}
}

func TestExecuteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	_, err := c.Execute(context.Background(), trading.RelayRequest{NetworkID: 10})
	if err == nil {
		t.Fatal("expected error for 502 response")
	}
}
