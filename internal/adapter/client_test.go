package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovbet/overbot/internal/domain"
)

func TestReadMessageApproved(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"allow": true, "message": "Trade processed"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	decision, err := c.ReadMessage(context.Background(), "0xabc123")
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if decision == nil || !decision.Allow {
		t.Errorf("decision = %+v, want allow=true", decision)
	}
	if decision.Message != "Trade processed" {
		t.Errorf("message = %q, want %q", decision.Message, "Trade processed")
	}

	wantPath := "/overtime-v2/networks/10/live-trading/read-message/request/0xabc123"
	if gotPath != wantPath {
		t.Errorf("path = %s, want %s", gotPath, wantPath)
	}
}

func TestReadMessageRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"allow": false, "message": "Odds moved beyond slippage"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	decision, err := c.ReadMessage(context.Background(), "0xabc123")
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if decision == nil || decision.Allow {
		t.Errorf("decision = %+v, want allow=false", decision)
	}
}

func TestReadMessageNotProcessedYet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	decision, err := c.ReadMessage(context.Background(), "0xabc123")
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if decision != nil {
		t.Errorf("decision = %+v, want nil for unprocessed request", decision)
	}
}

func TestReadMessageRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	_, err := c.ReadMessage(context.Background(), "0xabc123")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestReadMessageServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 10)
	_, err := c.ReadMessage(context.Background(), "0xabc123")
	if err == nil {
		t.Error("expected error for 500 response")
	}
}
