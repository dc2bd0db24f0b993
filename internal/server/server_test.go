package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ovbet/overbot/internal/server/handler"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := testLogger()
	return New(Config{Port: 0, APIKey: "secret"}, Handlers{
		Health:  handler.NewHealthHandler(nil, logger),
		Tickets: handler.NewTicketHandler(nil, nil, logger),
		Markets: handler.NewMarketHandler(nil, logger),
	}, nil, nil, logger)
}

func TestHealthBypassesAuth(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("health without credentials: status = %d, want 200", rec.Code)
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, path := range []string{"/api/tickets", "/api/markets"} {
		rec := httptest.NewRecorder()
		srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s without credentials: status = %d, want 401", path, rec.Code)
		}
	}
}
