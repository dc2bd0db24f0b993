package trading

import (
	"context"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/domain"
)

const (
	// defaultTickInterval is the delay between fulfillment checks.
	defaultTickInterval = time.Second

	// statusUpdatePeriodTicks controls how often the in-progress message is
	// re-emitted while waiting for on-chain fulfillment.
	statusUpdatePeriodTicks = 5
)

// AdapterClient polls the off-chain risk adapter for a request's approval
// status. A nil decision with nil error means the adapter has not answered
// yet.
type AdapterClient interface {
	ReadMessage(ctx context.Context, requestID string) (*domain.AdapterDecision, error)
}

// FulfillmentReader checks the on-chain fulfillment flag for a request id.
type FulfillmentReader interface {
	IsFulfillAllowed(ctx context.Context, requestID [32]byte) (bool, error)
}

// PollResult is the poller's exit state. Exactly one of the terminal
// conditions holds: fulfilled, adapter error, or timeout.
type PollResult struct {
	IsFulfilledTx      bool
	IsFulfilledAdapter bool
	IsAdapterError     bool
	ErrorReason        string
	TimedOut           bool
}

// Poller drives the wait-for-fulfillment state machine for async trades:
// poll the adapter until it approves or rejects, check the on-chain flag
// each tick, and stop on fulfillment, adapter rejection, or the wall-clock
// budget. State transitions are pushed to the status sink; the poller never
// reads the sink back.
type Poller struct {
	adapter AdapterClient
	sink    domain.StatusSink
	tick    time.Duration
	logger  *slog.Logger
}

// NewPoller creates a Poller with the standard 1-second cadence.
func NewPoller(adapter AdapterClient, sink domain.StatusSink, logger *slog.Logger) *Poller {
	return &Poller{
		adapter: adapter,
		sink:    sink,
		tick:    defaultTickInterval,
		logger:  logger.With(slog.String("component", "fulfillment_poller")),
	}
}

// SetTickInterval changes the delay between checks. Must be called before
// Wait; used by tests to shorten the loop.
func (p *Poller) SetTickInterval(d time.Duration) {
	p.tick = d
}

// pollState is the mutable loop state for one Wait call.
type pollState struct {
	ticketID  string
	requestID common.Hash
	result    PollResult
}

// Wait blocks until the request reaches a terminal state or the wall-clock
// budget elapses. Transport errors from the adapter or the chain read are
// treated as "no answer this tick" and the loop continues.
func (p *Poller) Wait(ctx context.Context, reader FulfillmentReader, requestID common.Hash, ticketID string, maxAllowedExecutionSec int, progressMessage string) PollResult {
	st := &pollState{ticketID: ticketID, requestID: requestID}
	start := time.Now()
	budget := time.Duration(maxAllowedExecutionSec) * time.Second

	p.emit(ctx, st, domain.FulfillmentPendingAdapter, "")
	p.check(ctx, reader, st)

	counter := 0
	for !st.result.IsFulfilledTx && !st.result.IsAdapterError && time.Since(start) < budget {
		counter++
		if counter%statusUpdatePeriodTicks == 0 && st.result.IsFulfilledAdapter {
			p.emit(ctx, st, domain.FulfillmentAdapterApproved, progressMessage)
		}

		select {
		case <-ctx.Done():
			p.logger.WarnContext(ctx, "fulfillment wait aborted",
				slog.String("request_id", requestID.Hex()),
				slog.String("error", ctx.Err().Error()),
			)
			return st.result
		case <-time.After(p.tick):
		}

		p.check(ctx, reader, st)
	}

	if !st.result.IsFulfilledTx && !st.result.IsAdapterError {
		st.result.TimedOut = true
		p.logger.WarnContext(ctx, "fulfillment wait timed out",
			slog.String("request_id", requestID.Hex()),
			slog.Int("budget_sec", maxAllowedExecutionSec),
		)
		p.emit(ctx, st, domain.FulfillmentTimedOut, "")
	}

	return st.result
}

// check runs one tick: adapter poll (until approved), then the on-chain
// fulfillment flag.
func (p *Poller) check(ctx context.Context, reader FulfillmentReader, st *pollState) {
	if !st.result.IsFulfilledAdapter {
		decision, err := p.adapter.ReadMessage(ctx, st.requestID.Hex())
		switch {
		case err != nil:
			p.logger.WarnContext(ctx, "adapter poll failed",
				slog.String("request_id", st.requestID.Hex()),
				slog.String("error", err.Error()),
			)
		case decision == nil:
			// Adapter has not processed the request yet.
		case decision.Allow:
			st.result.IsFulfilledAdapter = true
			p.emit(ctx, st, domain.FulfillmentAdapterApproved, decision.Message)
		default:
			st.result.IsAdapterError = true
			st.result.ErrorReason = decision.Message
			p.emit(ctx, st, domain.FulfillmentAdapterError, decision.Message)
			return
		}
	}

	fulfilled, err := reader.IsFulfillAllowed(ctx, st.requestID)
	if err != nil {
		p.logger.WarnContext(ctx, "fulfillment flag read failed",
			slog.String("request_id", st.requestID.Hex()),
			slog.String("error", err.Error()),
		)
		return
	}
	if fulfilled {
		st.result.IsFulfilledTx = true
		p.emit(ctx, st, domain.FulfillmentFulfilled, "")
	}
}

func (p *Poller) emit(ctx context.Context, st *pollState, state domain.FulfillmentState, message string) {
	if p.sink == nil {
		return
	}
	p.sink.Update(ctx, domain.StatusUpdate{
		TicketID:  st.ticketID,
		RequestID: st.requestID.Hex(),
		State:     state,
		Message:   message,
		At:        time.Now().UTC(),
	})
}
