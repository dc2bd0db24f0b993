// Package server exposes the HTTP and WebSocket API over the trading
// pipeline, ticket store, and markets layer.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ovbet/overbot/internal/domain"
	"github.com/ovbet/overbot/internal/server/handler"
	"github.com/ovbet/overbot/internal/server/middleware"
	"github.com/ovbet/overbot/internal/server/ws"
)

// Config holds the HTTP server configuration.
type Config struct {
	Port        int
	CORSOrigins []string
	APIKey      string // if empty, authentication is disabled

	// RateLimit is the allowed requests per client IP per RateWindow.
	// Zero disables rate limiting.
	RateLimit  int
	RateWindow time.Duration
}

// Handlers aggregates the HTTP handlers the server registers.
type Handlers struct {
	Health  *handler.HealthHandler
	Tickets *handler.TicketHandler
	Markets *handler.MarketHandler
	Quotes  *handler.QuoteHandler
}

// Server is the HTTP + WebSocket API server.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

// New creates a Server with all routes registered and the middleware chain
// (auth, rate limiting, logging, CORS) applied. The limiter and wsHub may be
// nil to disable the corresponding features.
func New(cfg Config, handlers Handlers, limiter domain.RateLimiter, wsHub *ws.Hub, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	// Tickets and trade submission.
	mux.HandleFunc("GET /api/tickets", handlers.Tickets.ListTickets)
	mux.HandleFunc("GET /api/tickets/{id}", handlers.Tickets.GetTicket)
	mux.HandleFunc("POST /api/trades", handlers.Tickets.SubmitTrade)

	// Markets. The literal live route takes precedence over the wildcard.
	mux.HandleFunc("GET /api/markets", handlers.Markets.ListMarkets)
	mux.HandleFunc("GET /api/markets/live", handlers.Markets.ListLiveMarkets)
	mux.HandleFunc("GET /api/markets/{gameId}", handlers.Markets.GetMarket)

	// Pre-trade quotes, absent when no chain backend is wired.
	if handlers.Quotes != nil {
		mux.HandleFunc("POST /api/quote", handlers.Quotes.QuoteTrade)
	}

	// WebSocket ticket status stream.
	if wsHub != nil {
		mux.HandleFunc("GET /ws", wsHub.HandleWS)
	}

	var h http.Handler = mux
	h = middleware.Auth(cfg.APIKey)(h)
	if limiter != nil && cfg.RateLimit > 0 {
		window := cfg.RateWindow
		if window <= 0 {
			window = time.Minute
		}
		h = middleware.RateLimit(limiter, cfg.RateLimit, window)(h)
	}

	// Health check sits outside auth and rate limiting so load balancers can
	// poll it without credentials.
	root := http.NewServeMux()
	root.HandleFunc("GET /api/health", handlers.Health.HealthCheck)
	root.Handle("/", h)

	h = middleware.Logging(logger)(root)
	h = middleware.CORS(cfg.CORSOrigins)(h)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", cfg.Port),
		Handler:     h,
		ReadTimeout: 15 * time.Second,
		// Trade submission follows live fulfillment to a terminal state
		// within the request, so writes get a generous deadline.
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger.With(slog.String("component", "server")),
	}
}

// Start begins listening for HTTP requests. It blocks until the server
// encounters an error or is shut down.
func (s *Server) Start() error {
	s.logger.Info("starting",
		slog.String("addr", s.httpServer.Addr),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server: listen: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight requests
// to complete within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
