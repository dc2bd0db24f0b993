package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

// BlobWriter is the slice of the client the archiver needs.
type BlobWriter interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) error
}

// TicketArchiveStore is the slice of the ticket store the archiver needs.
type TicketArchiveStore interface {
	ListSettledBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Ticket, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Archiver moves settled tickets out of the primary store into JSON-lines
// objects, partitioned by the cutoff month. Rows are deleted only after the
// upload succeeds.
type Archiver struct {
	writer  BlobWriter
	tickets TicketArchiveStore
	logger  *slog.Logger
}

// NewArchiver creates an Archiver.
func NewArchiver(writer BlobWriter, tickets TicketArchiveStore, logger *slog.Logger) *Archiver {
	return &Archiver{
		writer:  writer,
		tickets: tickets,
		logger:  logger.With(slog.String("component", "ticket_archiver")),
	}
}

// ArchiveSettled uploads every terminal ticket last updated before the
// cutoff and deletes the archived rows. It returns the number of tickets
// archived.
func (a *Archiver) ArchiveSettled(ctx context.Context, cutoff time.Time) (int64, error) {
	tickets, err := a.tickets.ListSettledBefore(ctx, cutoff, 0)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive settled query: %w", err)
	}
	if len(tickets) == 0 {
		return 0, nil
	}

	buf, err := marshalJSONL(tickets)
	if err != nil {
		return 0, fmt.Errorf("s3blob: archive settled marshal: %w", err)
	}

	key := archiveKey(cutoff)
	if err := a.writer.Put(ctx, key, bytes.NewReader(buf), "application/x-ndjson"); err != nil {
		return 0, fmt.Errorf("s3blob: archive settled upload: %w", err)
	}

	deleted, err := a.tickets.DeleteBefore(ctx, cutoff)
	if err != nil {
		// The archive object exists; the rows will be retried (and
		// re-uploaded) on the next run.
		return int64(len(tickets)), fmt.Errorf("s3blob: archive settled delete: %w", err)
	}

	a.logger.InfoContext(ctx, "settled tickets archived",
		slog.String("key", key),
		slog.Int("archived", len(tickets)),
		slog.Int64("deleted", deleted),
	)
	return int64(len(tickets)), nil
}

// archiveKey builds the object key for one archival run, partitioned by the
// year-month of the cutoff and unique per cutoff so successive runs never
// overwrite each other:
//
//	archive/tickets/2026-08/20260801T000000Z.jsonl
func archiveKey(cutoff time.Time) string {
	c := cutoff.UTC()
	return fmt.Sprintf("archive/tickets/%s/%s.jsonl", c.Format("2006-01"), c.Format("20060102T150405Z"))
}

// marshalJSONL serialises tickets as newline-delimited JSON.
func marshalJSONL(tickets []domain.Ticket) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	for i, t := range tickets {
		if err := enc.Encode(t); err != nil {
			return nil, fmt.Errorf("jsonl encode ticket %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}
