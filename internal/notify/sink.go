package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ovbet/overbot/internal/domain"
)

// TicketChannel is the signal bus channel carrying ticket status updates.
const TicketChannel = "tickets:status"

// StoreSink persists fulfillment transitions as ticket status changes.
type StoreSink struct {
	store  domain.TicketStore
	logger *slog.Logger
}

// NewStoreSink creates a StoreSink over the given ticket store.
func NewStoreSink(store domain.TicketStore, logger *slog.Logger) *StoreSink {
	return &StoreSink{
		store:  store,
		logger: logger.With(slog.String("component", "store_sink")),
	}
}

// ticketStatusFor maps a fulfillment state to its persisted ticket status.
func ticketStatusFor(state domain.FulfillmentState) domain.TicketStatus {
	switch state {
	case domain.FulfillmentPendingAdapter:
		return domain.TicketPending
	case domain.FulfillmentAdapterApproved:
		return domain.TicketApproved
	case domain.FulfillmentFulfilled:
		return domain.TicketFulfilled
	case domain.FulfillmentAdapterError:
		return domain.TicketFailed
	case domain.FulfillmentTimedOut:
		return domain.TicketTimedOut
	default:
		return domain.TicketPending
	}
}

// Update writes the transition to the store. Failures are logged, not
// propagated; the polling loop must never stall on bookkeeping.
func (s *StoreSink) Update(ctx context.Context, u domain.StatusUpdate) {
	reason := ""
	if u.State == domain.FulfillmentAdapterError {
		reason = u.Message
	}
	if err := s.store.UpdateStatus(ctx, u.TicketID, ticketStatusFor(u.State), reason); err != nil {
		s.logger.ErrorContext(ctx, "ticket status write failed",
			slog.String("ticket_id", u.TicketID),
			slog.String("state", string(u.State)),
			slog.String("error", err.Error()),
		)
	}
}

// NotifySink forwards terminal transitions to the operator notifier.
// Timeouts are not forwarded; a timed-out wait carries no final outcome for
// the bet.
type NotifySink struct {
	notifier *Notifier
}

// NewNotifySink creates a NotifySink over the given notifier.
func NewNotifySink(notifier *Notifier) *NotifySink {
	return &NotifySink{notifier: notifier}
}

// Update sends a notification for terminal, non-timeout transitions.
func (s *NotifySink) Update(ctx context.Context, u domain.StatusUpdate) {
	if !u.State.Terminal() || u.State == domain.FulfillmentTimedOut {
		return
	}

	title := "Ticket " + u.TicketID
	var message string
	switch u.State {
	case domain.FulfillmentFulfilled:
		message = "Trade fulfilled on-chain."
	case domain.FulfillmentAdapterError:
		message = fmt.Sprintf("Trade rejected: %s", u.Message)
	}
	// Delivery failures are already logged inside the notifier.
	_ = s.notifier.Notify(ctx, string(u.State), title, message)
}

// BusSink publishes every transition to the signal bus so server instances
// can fan it out to their WebSocket clients.
type BusSink struct {
	bus    domain.SignalBus
	logger *slog.Logger
}

// NewBusSink creates a BusSink over the given signal bus.
func NewBusSink(bus domain.SignalBus, logger *slog.Logger) *BusSink {
	return &BusSink{
		bus:    bus,
		logger: logger.With(slog.String("component", "bus_sink")),
	}
}

// Update publishes the transition as JSON on the ticket channel.
func (s *BusSink) Update(ctx context.Context, u domain.StatusUpdate) {
	payload, err := json.Marshal(u)
	if err != nil {
		s.logger.ErrorContext(ctx, "status update marshal failed",
			slog.String("ticket_id", u.TicketID),
			slog.String("error", err.Error()),
		)
		return
	}
	if err := s.bus.Publish(ctx, TicketChannel, payload); err != nil {
		s.logger.ErrorContext(ctx, "status update publish failed",
			slog.String("ticket_id", u.TicketID),
			slog.String("error", err.Error()),
		)
	}
}

// MultiSink fans one update out to several sinks in order.
type MultiSink []domain.StatusSink

// Update delivers the transition to every sink.
func (m MultiSink) Update(ctx context.Context, u domain.StatusUpdate) {
	for _, s := range m {
		s.Update(ctx, u)
	}
}

// Compile-time interface checks.
var (
	_ domain.StatusSink = (*StoreSink)(nil)
	_ domain.StatusSink = (*NotifySink)(nil)
	_ domain.StatusSink = (*BusSink)(nil)
	_ domain.StatusSink = (MultiSink)(nil)
)
