package trading

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ovbet/overbot/internal/domain"
)

type adapterStep struct {
	decision *domain.AdapterDecision
	err      error
}

// scriptedAdapter replays a fixed sequence of answers; the last step repeats
// once the script runs out.
type scriptedAdapter struct {
	steps []adapterStep
	calls int
}

func (a *scriptedAdapter) ReadMessage(ctx context.Context, requestID string) (*domain.AdapterDecision, error) {
	step := a.steps[len(a.steps)-1]
	if a.calls < len(a.steps) {
		step = a.steps[a.calls]
	}
	a.calls++
	return step.decision, step.err
}

type readerStep struct {
	fulfilled bool
	err       error
}

type scriptedReader struct {
	steps []readerStep
	calls int
}

func (r *scriptedReader) IsFulfillAllowed(ctx context.Context, requestID [32]byte) (bool, error) {
	step := readerStep{}
	if len(r.steps) > 0 {
		step = r.steps[len(r.steps)-1]
		if r.calls < len(r.steps) {
			step = r.steps[r.calls]
		}
	}
	r.calls++
	return step.fulfilled, step.err
}

type recordSink struct {
	updates []domain.StatusUpdate
}

func (s *recordSink) Update(ctx context.Context, u domain.StatusUpdate) {
	s.updates = append(s.updates, u)
}

func (s *recordSink) states() []domain.FulfillmentState {
	out := make([]domain.FulfillmentState, 0, len(s.updates))
	for _, u := range s.updates {
		out = append(out, u.State)
	}
	return out
}

var testRequestID = common.HexToHash("0x00000000000000000000000000000000000000000000000000000000000000aa")

func TestWaitFulfilled(t *testing.T) {
	adapter := &scriptedAdapter{steps: []adapterStep{
		{decision: &domain.AdapterDecision{Allow: true, Message: "approved"}},
	}}
	reader := &scriptedReader{steps: []readerStep{
		{fulfilled: false},
		{fulfilled: false},
		{fulfilled: true},
	}}
	sink := &recordSink{}

	p := NewPoller(adapter, sink, testLogger())
	p.SetTickInterval(5 * time.Millisecond)

	res := p.Wait(context.Background(), reader, testRequestID, "ticket-1", 5, "waiting")
	if !res.IsFulfilledTx {
		t.Error("expected on-chain fulfillment")
	}
	if !res.IsFulfilledAdapter {
		t.Error("expected adapter approval before fulfillment")
	}
	if res.IsAdapterError || res.TimedOut {
		t.Errorf("unexpected terminal flags: %+v", res)
	}

	states := sink.states()
	if len(states) < 3 {
		t.Fatalf("expected at least 3 status updates, got %v", states)
	}
	if states[0] != domain.FulfillmentPendingAdapter {
		t.Errorf("first state = %s, want pending_adapter", states[0])
	}
	if states[len(states)-1] != domain.FulfillmentFulfilled {
		t.Errorf("last state = %s, want fulfilled", states[len(states)-1])
	}
}

func TestWaitAdapterRejects(t *testing.T) {
	adapter := &scriptedAdapter{steps: []adapterStep{
		{decision: &domain.AdapterDecision{Allow: false, Message: "odds moved"}},
	}}
	reader := &scriptedReader{}
	sink := &recordSink{}

	p := NewPoller(adapter, sink, testLogger())
	p.SetTickInterval(5 * time.Millisecond)

	res := p.Wait(context.Background(), reader, testRequestID, "ticket-2", 5, "waiting")
	if !res.IsAdapterError {
		t.Error("expected adapter error")
	}
	if res.ErrorReason != "odds moved" {
		t.Errorf("error reason = %q, want %q", res.ErrorReason, "odds moved")
	}
	if adapter.calls != 1 {
		t.Errorf("adapter polled %d times after rejection, want 1", adapter.calls)
	}
	if reader.calls != 0 {
		t.Errorf("chain flag checked %d times after rejection, want 0", reader.calls)
	}

	states := sink.states()
	if states[len(states)-1] != domain.FulfillmentAdapterError {
		t.Errorf("last state = %s, want adapter_error", states[len(states)-1])
	}
}

func TestWaitTimeout(t *testing.T) {
	adapter := &scriptedAdapter{steps: []adapterStep{
		{decision: nil}, // never answers
	}}
	reader := &scriptedReader{steps: []readerStep{{fulfilled: false}}}
	sink := &recordSink{}

	p := NewPoller(adapter, sink, testLogger())
	p.SetTickInterval(50 * time.Millisecond)

	start := time.Now()
	res := p.Wait(context.Background(), reader, testRequestID, "ticket-3", 1, "waiting")
	elapsed := time.Since(start)

	if !res.TimedOut {
		t.Error("expected timeout")
	}
	if res.IsFulfilledTx || res.IsAdapterError {
		t.Errorf("unexpected terminal flags: %+v", res)
	}
	if elapsed < 900*time.Millisecond || elapsed > 3*time.Second {
		t.Errorf("wait took %v, want roughly the 1s budget", elapsed)
	}

	states := sink.states()
	if states[len(states)-1] != domain.FulfillmentTimedOut {
		t.Errorf("last state = %s, want timed_out", states[len(states)-1])
	}
}

func TestWaitAdapterTransportErrorRetries(t *testing.T) {
	adapter := &scriptedAdapter{steps: []adapterStep{
		{err: errors.New("connection refused")},
		{decision: &domain.AdapterDecision{Allow: true}},
	}}
	reader := &scriptedReader{steps: []readerStep{
		{err: errors.New("rpc unavailable")},
		{fulfilled: true},
	}}
	sink := &recordSink{}

	p := NewPoller(adapter, sink, testLogger())
	p.SetTickInterval(5 * time.Millisecond)

	res := p.Wait(context.Background(), reader, testRequestID, "ticket-4", 5, "waiting")
	if !res.IsFulfilledTx {
		t.Errorf("transport errors should not be terminal, got %+v", res)
	}
	if adapter.calls < 2 {
		t.Errorf("adapter polled %d times, want at least 2", adapter.calls)
	}
}

func TestWaitProgressReemitted(t *testing.T) {
	adapter := &scriptedAdapter{steps: []adapterStep{
		{decision: &domain.AdapterDecision{Allow: true, Message: "approved"}},
	}}
	steps := make([]readerStep, 12)
	steps[11] = readerStep{fulfilled: true}
	reader := &scriptedReader{steps: steps}
	sink := &recordSink{}

	p := NewPoller(adapter, sink, testLogger())
	p.SetTickInterval(time.Millisecond)

	res := p.Wait(context.Background(), reader, testRequestID, "ticket-5", 5, "still waiting")
	if !res.IsFulfilledTx {
		t.Fatalf("expected fulfillment, got %+v", res)
	}

	// Approval once plus a re-emit every 5 ticks while waiting.
	approved := 0
	for _, u := range sink.updates {
		if u.State == domain.FulfillmentAdapterApproved {
			approved++
		}
	}
	if approved < 3 {
		t.Errorf("expected approval plus periodic re-emits, got %d approved updates", approved)
	}
}

func TestWaitContextCanceled(t *testing.T) {
	adapter := &scriptedAdapter{steps: []adapterStep{{decision: nil}}}
	reader := &scriptedReader{steps: []readerStep{{fulfilled: false}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewPoller(adapter, &recordSink{}, testLogger())
	p.SetTickInterval(time.Hour)

	done := make(chan PollResult, 1)
	go func() {
		done <- p.Wait(ctx, reader, testRequestID, "ticket-6", 600, "waiting")
	}()

	select {
	case res := <-done:
		if res.IsFulfilledTx || res.IsAdapterError {
			t.Errorf("canceled wait should carry no terminal success, got %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after context cancellation")
	}
}
