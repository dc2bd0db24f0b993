package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type statusWrite struct {
	id     string
	status domain.TicketStatus
	reason string
}

type stubStore struct {
	domain.TicketStore
	writes []statusWrite
}

func (s *stubStore) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, reason string) error {
	s.writes = append(s.writes, statusWrite{id: id, status: status, reason: reason})
	return nil
}

type stubBus struct {
	channels []string
	payloads [][]byte
}

func (b *stubBus) Publish(ctx context.Context, channel string, payload []byte) error {
	b.channels = append(b.channels, channel)
	b.payloads = append(b.payloads, payload)
	return nil
}

func (b *stubBus) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	return nil, nil
}

type countSender struct {
	sent   int
	titles []string
}

func (c *countSender) Send(ctx context.Context, title, message string) error {
	c.sent++
	c.titles = append(c.titles, title)
	return nil
}

func (c *countSender) Name() string { return "count" }

func update(state domain.FulfillmentState, message string) domain.StatusUpdate {
	return domain.StatusUpdate{
		TicketID:  "t-1",
		RequestID: "0xaa",
		State:     state,
		Message:   message,
		At:        time.Now().UTC(),
	}
}

func TestStoreSinkMapsStates(t *testing.T) {
	tests := []struct {
		state      domain.FulfillmentState
		message    string
		wantStatus domain.TicketStatus
		wantReason string
	}{
		{domain.FulfillmentPendingAdapter, "", domain.TicketPending, ""},
		{domain.FulfillmentAdapterApproved, "ok", domain.TicketApproved, ""},
		{domain.FulfillmentFulfilled, "", domain.TicketFulfilled, ""},
		{domain.FulfillmentAdapterError, "odds moved", domain.TicketFailed, "odds moved"},
		{domain.FulfillmentTimedOut, "", domain.TicketTimedOut, ""},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			store := &stubStore{}
			sink := NewStoreSink(store, testLogger())

			sink.Update(context.Background(), update(tt.state, tt.message))

			if len(store.writes) != 1 {
				t.Fatalf("expected 1 store write, got %d", len(store.writes))
			}
			if store.writes[0].status != tt.wantStatus {
				t.Errorf("status = %s, want %s", store.writes[0].status, tt.wantStatus)
			}
			if store.writes[0].reason != tt.wantReason {
				t.Errorf("reason = %q, want %q", store.writes[0].reason, tt.wantReason)
			}
		})
	}
}

func TestNotifySinkSkipsNonTerminalAndTimeouts(t *testing.T) {
	sender := &countSender{}
	sink := NewNotifySink(NewNotifier([]Sender{sender}, nil, testLogger()))

	sink.Update(context.Background(), update(domain.FulfillmentPendingAdapter, ""))
	sink.Update(context.Background(), update(domain.FulfillmentAdapterApproved, ""))
	sink.Update(context.Background(), update(domain.FulfillmentTimedOut, ""))
	if sender.sent != 0 {
		t.Errorf("non-terminal and timeout updates must not notify, got %d sends", sender.sent)
	}

	sink.Update(context.Background(), update(domain.FulfillmentFulfilled, ""))
	sink.Update(context.Background(), update(domain.FulfillmentAdapterError, "rejected"))
	if sender.sent != 2 {
		t.Errorf("expected 2 notifications for terminal states, got %d", sender.sent)
	}
}

func TestBusSinkPublishesJSON(t *testing.T) {
	bus := &stubBus{}
	sink := NewBusSink(bus, testLogger())

	sink.Update(context.Background(), update(domain.FulfillmentFulfilled, ""))

	if len(bus.payloads) != 1 {
		t.Fatalf("expected 1 publish, got %d", len(bus.payloads))
	}
	if bus.channels[0] != TicketChannel {
		t.Errorf("channel = %s, want %s", bus.channels[0], TicketChannel)
	}

	var decoded domain.StatusUpdate
	if err := json.Unmarshal(bus.payloads[0], &decoded); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if decoded.TicketID != "t-1" || decoded.State != domain.FulfillmentFulfilled {
		t.Errorf("decoded update = %+v", decoded)
	}
}

func TestMultiSinkFansOut(t *testing.T) {
	store := &stubStore{}
	bus := &stubBus{}
	sink := MultiSink{
		NewStoreSink(store, testLogger()),
		NewBusSink(bus, testLogger()),
	}

	sink.Update(context.Background(), update(domain.FulfillmentFulfilled, ""))

	if len(store.writes) != 1 {
		t.Errorf("store sink missed the update")
	}
	if len(bus.payloads) != 1 {
		t.Errorf("bus sink missed the update")
	}
}

func TestNotifierEventFilter(t *testing.T) {
	sender := &countSender{}
	n := NewNotifier([]Sender{sender}, []string{"fulfilled"}, testLogger())

	if err := n.Notify(context.Background(), "adapter_error", "t", "m"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if sender.sent != 0 {
		t.Errorf("filtered event must not send, got %d", sender.sent)
	}

	if err := n.Notify(context.Background(), "fulfilled", "t", "m"); err != nil {
		t.Fatalf("Notify failed: %v", err)
	}
	if sender.sent != 1 {
		t.Errorf("allowed event should send, got %d", sender.sent)
	}
}
