package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ovbet/overbot/internal/domain"
)

// TicketStore implements domain.TicketStore using PostgreSQL.
type TicketStore struct {
	pool *pgxpool.Pool
}

// NewTicketStore creates a TicketStore backed by the given connection pool.
func NewTicketStore(pool *pgxpool.Pool) *TicketStore {
	return &TicketStore{pool: pool}
}

const ticketSelectCols = `id, COALESCE(request_id, ''), tx_hash, kind, status, error_reason,
	buy_in, quote, collateral, is_free_bet, is_system_bet, is_live, is_sgp,
	created_at, updated_at`

func scanTicket(row pgx.Row) (domain.Ticket, error) {
	var t domain.Ticket
	err := row.Scan(
		&t.ID, &t.RequestID, &t.TxHash, &t.Kind, &t.Status, &t.ErrorReason,
		&t.BuyIn, &t.Quote, &t.Collateral, &t.IsFreeBet, &t.IsSystemBet,
		&t.IsLive, &t.IsSGP, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

// Create inserts a new ticket row.
func (s *TicketStore) Create(ctx context.Context, t domain.Ticket) error {
	const query = `
		INSERT INTO tickets (
			id, request_id, tx_hash, kind, status, error_reason,
			buy_in, quote, collateral, is_free_bet, is_system_bet, is_live, is_sgp,
			created_at, updated_at
		) VALUES (
			$1, NULLIF($2, ''), $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12, $13,
			$14, $15
		)`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.RequestID, t.TxHash, t.Kind, t.Status, t.ErrorReason,
		t.BuyIn, t.Quote, t.Collateral, t.IsFreeBet, t.IsSystemBet, t.IsLive, t.IsSGP,
		t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("postgres: create ticket %s: %w", t.ID, err)
	}
	return nil
}

// Get returns a ticket by its id. It returns domain.ErrNotFound when no row
// exists.
func (s *TicketStore) Get(ctx context.Context, id string) (domain.Ticket, error) {
	query := `SELECT ` + ticketSelectCols + ` FROM tickets WHERE id = $1`
	t, err := scanTicket(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Ticket{}, fmt.Errorf("postgres: ticket %s: %w", id, domain.ErrNotFound)
		}
		return domain.Ticket{}, fmt.Errorf("postgres: get ticket %s: %w", id, err)
	}
	return t, nil
}

// List returns tickets ordered newest first, with pagination.
func (s *TicketStore) List(ctx context.Context, opts domain.ListOpts) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketSelectCols + ` FROM tickets ORDER BY created_at DESC`
	args := []any{}
	argIdx := 1

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list tickets: %w", err)
	}
	return tickets, nil
}

// UpdateStatus sets a ticket's status and error reason.
func (s *TicketStore) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus, errorReason string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tickets SET status = $2, error_reason = $3, updated_at = NOW() WHERE id = $1`,
		id, status, errorReason,
	)
	if err != nil {
		return fmt.Errorf("postgres: update ticket %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: ticket %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetRequestID records the async request id recovered from the receipt.
func (s *TicketStore) SetRequestID(ctx context.Context, id string, requestID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tickets SET request_id = $2, updated_at = NOW() WHERE id = $1`,
		id, requestID,
	)
	if err != nil {
		return fmt.Errorf("postgres: set ticket %s request id: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("postgres: ticket %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// terminalStatuses are the states eligible for archival.
var terminalStatuses = []string{
	string(domain.TicketFulfilled),
	string(domain.TicketFailed),
	string(domain.TicketTimedOut),
	string(domain.TicketSettled),
}

// ListSettledBefore returns terminal tickets last updated before cutoff,
// oldest first, for archival.
func (s *TicketStore) ListSettledBefore(ctx context.Context, cutoff time.Time, limit int) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketSelectCols + `
		FROM tickets
		WHERE status = ANY($1) AND updated_at < $2
		ORDER BY updated_at ASC`
	args := []any{terminalStatuses, cutoff}
	if limit > 0 {
		query += " LIMIT $3"
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list settled tickets: %w", err)
	}
	defer rows.Close()

	var tickets []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan settled ticket: %w", err)
		}
		tickets = append(tickets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list settled tickets: %w", err)
	}
	return tickets, nil
}

// DeleteBefore removes terminal tickets last updated before cutoff. Returns
// the number deleted.
func (s *TicketStore) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM tickets WHERE status = ANY($1) AND updated_at < $2`,
		terminalStatuses, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("postgres: delete settled tickets: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Compile-time interface check.
var _ domain.TicketStore = (*TicketStore)(nil)
