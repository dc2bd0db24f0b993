package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ovbet/overbot/internal/domain"
	"github.com/ovbet/overbot/internal/trading"
)

// QuoteService prices a trade request against the sports AMM.
type QuoteService interface {
	QuoteTrade(ctx context.Context, req *domain.TradeRequest) (trading.QuoteResult, error)
}

// QuoteHandler serves the pre-trade quote endpoint.
type QuoteHandler struct {
	quotes QuoteService
	logger *slog.Logger
}

// NewQuoteHandler creates a QuoteHandler.
func NewQuoteHandler(quotes QuoteService, logger *slog.Logger) *QuoteHandler {
	return &QuoteHandler{
		quotes: quotes,
		logger: logger,
	}
}

// QuoteTrade prices a trade body without submitting it.
// POST /api/quote
func (h *QuoteHandler) QuoteTrade(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTradeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	quote, err := h.quotes.QuoteTrade(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTrade) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: quote failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusBadGateway, "failed to quote trade")
		return
	}

	writeJSON(w, http.StatusOK, quote)
}
