package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/domain"
)

// TicketReader is the read slice of the ticket store the handler needs.
type TicketReader interface {
	Get(ctx context.Context, id string) (domain.Ticket, error)
	List(ctx context.Context, opts domain.ListOpts) ([]domain.Ticket, error)
}

// TradeService runs one trade through the submission pipeline to a terminal
// ticket state.
type TradeService interface {
	ProcessTrade(ctx context.Context, req *domain.TradeRequest) (domain.Ticket, error)
}

// TicketHandler serves ticket and trade submission endpoints.
type TicketHandler struct {
	tickets        TicketReader
	trades         TradeService
	defaultExecSec int
	logger         *slog.Logger
}

// NewTicketHandler creates a TicketHandler. A nil trades service disables
// the submission endpoint.
func NewTicketHandler(tickets TicketReader, trades TradeService, logger *slog.Logger) *TicketHandler {
	return &TicketHandler{
		tickets: tickets,
		trades:  trades,
		logger:  logger,
	}
}

// WithDefaultExecutionBudget sets the fulfillment wait budget applied to
// live/SGP submissions that do not carry their own.
func (h *TicketHandler) WithDefaultExecutionBudget(sec int) *TicketHandler {
	h.defaultExecSec = sec
	return h
}

// listTicketsResponse wraps the list endpoint output.
type listTicketsResponse struct {
	Tickets []domain.Ticket `json:"tickets"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListTickets returns submitted tickets, newest first.
// GET /api/tickets?limit=50&offset=0
func (h *TicketHandler) ListTickets(w http.ResponseWriter, r *http.Request) {
	opts := parseListOpts(r)

	tickets, err := h.tickets.List(r.Context(), opts)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "handler: list tickets failed",
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to list tickets")
		return
	}

	if tickets == nil {
		tickets = []domain.Ticket{}
	}

	writeJSON(w, http.StatusOK, listTicketsResponse{
		Tickets: tickets,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	})
}

// GetTicket returns a single ticket by its ID.
// GET /api/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id := pathParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing ticket id")
		return
	}

	ticket, err := h.tickets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "ticket not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "handler: get ticket failed",
			slog.String("ticket_id", id),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "failed to get ticket")
		return
	}

	writeJSON(w, http.StatusOK, ticket)
}

// tradeRequestBody is the JSON shape of a trade submission. Wei-denominated
// amounts are JSON numbers; big.Int keeps their full precision.
type tradeRequestBody struct {
	Legs                 []domain.TradeLeg `json:"legs"`
	BuyInAmount          *big.Int          `json:"buyInAmount"`
	ExpectedQuote        *big.Int          `json:"expectedQuote"`
	AdditionalSlippage   *big.Int          `json:"additionalSlippage"`
	Referral             string            `json:"referral,omitempty"`
	Collateral           common.Address    `json:"collateral"`
	IsDefaultCollateral  bool              `json:"isDefaultCollateral"`
	IsEth                bool              `json:"isEth"`
	IsFreeBet            bool              `json:"isFreeBet"`
	IsSystemBet          bool              `json:"isSystemBet"`
	SystemBetDenominator uint8             `json:"systemBetDenominator"`
	IsLive               bool              `json:"isLive"`
	IsSGP                bool              `json:"isSgp"`
	IsRelayed            bool              `json:"isRelayed"`
	SkipGasEstimation    bool              `json:"skipGasEstimation"`
	GasLimitOverride     uint64            `json:"gasLimitOverride"`
	MaxExecutionSec      int               `json:"maxAllowedExecutionSec"`
}

// decodeTradeRequest parses a trade submission body into a domain request.
func decodeTradeRequest(r *http.Request) (*domain.TradeRequest, error) {
	var body tradeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return nil, err
	}

	return &domain.TradeRequest{
		Legs:                   body.Legs,
		BuyInAmount:            body.BuyInAmount,
		ExpectedQuote:          body.ExpectedQuote,
		AdditionalSlippage:     body.AdditionalSlippage,
		Referral:               body.Referral,
		Collateral:             body.Collateral,
		IsDefaultCollateral:    body.IsDefaultCollateral,
		IsEth:                  body.IsEth,
		IsFreeBet:              body.IsFreeBet,
		IsSystemBet:            body.IsSystemBet,
		SystemBetDenominator:   body.SystemBetDenominator,
		IsLive:                 body.IsLive,
		IsSGP:                  body.IsSGP,
		IsRelayed:              body.IsRelayed,
		SkipGasEstimation:      body.SkipGasEstimation,
		GasLimitOverride:       body.GasLimitOverride,
		MaxAllowedExecutionSec: body.MaxExecutionSec,
	}, nil
}

// SubmitTrade runs a trade through the pipeline and returns the terminal
// ticket. A ticket with status "failed" or "timed_out" is still a 201; the
// trade ran, the outcome is in the body.
// POST /api/trades
func (h *TicketHandler) SubmitTrade(w http.ResponseWriter, r *http.Request) {
	if h.trades == nil {
		writeError(w, http.StatusServiceUnavailable, "trade submission is not available in this mode")
		return
	}

	req, err := decodeTradeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.IsAsync() && req.MaxAllowedExecutionSec <= 0 && h.defaultExecSec > 0 {
		req.MaxAllowedExecutionSec = h.defaultExecSec
	}

	ticket, err := h.trades.ProcessTrade(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTrade) || errors.Is(err, domain.ErrNoContract) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if ticket.ID == "" {
			// Submission was rejected before anything hit the chain.
			h.logger.ErrorContext(r.Context(), "handler: trade submission failed",
				slog.String("error", err.Error()),
			)
			writeError(w, http.StatusBadGateway, "trade submission failed: "+err.Error())
			return
		}
	}

	writeJSON(w, http.StatusCreated, ticket)
}
