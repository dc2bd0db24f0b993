package domain

import (
	"context"
	"time"
)

// ListOpts carries standard pagination parameters.
type ListOpts struct {
	Limit  int
	Offset int
}

// TicketStore persists submitted tickets and their fulfillment outcomes.
type TicketStore interface {
	Create(ctx context.Context, t Ticket) error
	Get(ctx context.Context, id string) (Ticket, error)
	List(ctx context.Context, opts ListOpts) ([]Ticket, error)
	UpdateStatus(ctx context.Context, id string, status TicketStatus, errorReason string) error
	SetRequestID(ctx context.Context, id string, requestID string) error

	// ListSettledBefore returns terminal tickets last updated before cutoff,
	// for archival. DeleteBefore removes them after a successful archive.
	ListSettledBefore(ctx context.Context, cutoff time.Time, limit int) ([]Ticket, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
