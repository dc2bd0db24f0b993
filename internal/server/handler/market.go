package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

// MarketService defines what the market handler needs from the markets
// layer. It is declared locally so the handler package does not depend on
// the concrete service implementation.
type MarketService interface {
	Markets(ctx context.Context, sport string) ([]domain.SportMarket, error)
	LiveMarkets(ctx context.Context) ([]domain.SportMarket, error)
	GetMarket(ctx context.Context, gameID string) (domain.SportMarket, error)
	UpdatedAt() time.Time
}

// MarketHandler serves market listing endpoints.
type MarketHandler struct {
	markets MarketService
	logger  *slog.Logger
}

// NewMarketHandler creates a MarketHandler.
func NewMarketHandler(markets MarketService, logger *slog.Logger) *MarketHandler {
	return &MarketHandler{
		markets: markets,
		logger:  logger,
	}
}

// listMarketsResponse wraps the list endpoint output. UpdatedAt is the last
// successful upstream fetch; listings may come from the fallback snapshot
// when the upstream is down.
type listMarketsResponse struct {
	Markets   []domain.SportMarket `json:"markets"`
	Count     int                  `json:"count"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// ListMarkets returns open pre-game markets, optionally filtered by sport.
// GET /api/markets?sport=Basketball
func (h *MarketHandler) ListMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.markets.Markets(r.Context(), r.URL.Query().Get("sport"))
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to list markets")
		return
	}

	if markets == nil {
		markets = []domain.SportMarket{}
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets:   markets,
		Count:     len(markets),
		UpdatedAt: h.markets.UpdatedAt(),
	})
}

// ListLiveMarkets returns in-play markets.
// GET /api/markets/live
func (h *MarketHandler) ListLiveMarkets(w http.ResponseWriter, r *http.Request) {
	markets, err := h.markets.LiveMarkets(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list live markets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to list live markets")
		return
	}

	if markets == nil {
		markets = []domain.SportMarket{}
	}

	writeJSON(w, http.StatusOK, listMarketsResponse{
		Markets:   markets,
		Count:     len(markets),
		UpdatedAt: h.markets.UpdatedAt(),
	})
}

// GetMarket returns a single market by its game id.
// GET /api/markets/{gameId}
func (h *MarketHandler) GetMarket(w http.ResponseWriter, r *http.Request) {
	gameID := pathParam(r, "gameId")
	if gameID == "" {
		writeError(w, http.StatusBadRequest, "missing game id")
		return
	}

	market, err := h.markets.GetMarket(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "market not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get market failed",
			slog.String("game_id", gameID),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to get market")
		return
	}

	writeJSON(w, http.StatusOK, market)
}
