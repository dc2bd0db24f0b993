package domain

import "time"

// FulfillmentState tracks an async (live/SGP) trade request through the
// off-chain adapter and on-chain fulfillment.
type FulfillmentState string

const (
	FulfillmentPendingAdapter  FulfillmentState = "pending_adapter"
	FulfillmentAdapterApproved FulfillmentState = "adapter_approved"
	FulfillmentFulfilled       FulfillmentState = "fulfilled"
	FulfillmentAdapterError    FulfillmentState = "adapter_error"
	FulfillmentTimedOut        FulfillmentState = "timed_out"
)

// Terminal reports whether the state ends the polling loop.
func (s FulfillmentState) Terminal() bool {
	switch s {
	case FulfillmentFulfilled, FulfillmentAdapterError, FulfillmentTimedOut:
		return true
	default:
		return false
	}
}

// TicketStatus is the persisted lifecycle of a submitted ticket.
type TicketStatus string

const (
	TicketPending   TicketStatus = "pending"
	TicketApproved  TicketStatus = "approved"
	TicketFulfilled TicketStatus = "fulfilled"
	TicketFailed    TicketStatus = "failed"
	TicketTimedOut  TicketStatus = "timed_out"
	TicketSettled   TicketStatus = "settled"
)

// Ticket is the bookkeeping record for one submitted trade.
type Ticket struct {
	ID          string       `json:"id"`
	RequestID   string       `json:"requestId,omitempty"`
	TxHash      string       `json:"txHash"`
	Kind        string       `json:"kind"` // "trade", "system_bet", "live", "sgp"
	Status      TicketStatus `json:"status"`
	ErrorReason string       `json:"errorReason,omitempty"`
	BuyIn       string       `json:"buyIn"`
	Quote       string       `json:"quote"`
	Collateral  string       `json:"collateral"`
	IsFreeBet   bool         `json:"isFreeBet"`
	IsSystemBet bool         `json:"isSystemBet"`
	IsLive      bool         `json:"isLive"`
	IsSGP       bool         `json:"isSgp"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// TicketKind derives the persisted kind label for a request.
func TicketKind(r *TradeRequest) string {
	switch {
	case r.IsLive:
		return "live"
	case r.IsSGP:
		return "sgp"
	case r.IsSystemBet:
		return "system_bet"
	default:
		return "trade"
	}
}

// StatusUpdate is one externally observable fulfillment transition. It is
// pushed to the caller-supplied sinks; the pipeline writes it and never
// reads it back.
type StatusUpdate struct {
	TicketID  string           `json:"ticketId"`
	RequestID string           `json:"requestId,omitempty"`
	State     FulfillmentState `json:"state"`
	Message   string           `json:"message,omitempty"`
	At        time.Time        `json:"at"`
}
