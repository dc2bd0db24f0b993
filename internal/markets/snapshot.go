package markets

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

// Lister is the slice of the markets client the snapshot wraps.
type Lister interface {
	ListMarkets(ctx context.Context, sport string) ([]domain.SportMarket, error)
	ListLiveMarkets(ctx context.Context) ([]domain.SportMarket, error)
}

// Snapshot wraps a markets Lister with a last-known-good fallback: when a
// fetch fails and a previous listing exists, the previous listing is served
// instead of the error. The snapshot is owned by whoever constructs it;
// there is no shared global state.
type Snapshot struct {
	lister Lister
	logger *slog.Logger

	mu        sync.RWMutex
	markets   []domain.SportMarket
	live      []domain.SportMarket
	updatedAt time.Time
}

// NewSnapshot creates a Snapshot over the given lister.
func NewSnapshot(lister Lister, logger *slog.Logger) *Snapshot {
	return &Snapshot{
		lister: lister,
		logger: logger.With(slog.String("component", "markets_snapshot")),
	}
}

// Markets fetches the open pre-game markets, falling back to the last good
// listing on error. The error is returned only when no fallback exists.
func (s *Snapshot) Markets(ctx context.Context, sport string) ([]domain.SportMarket, error) {
	fetched, err := s.lister.ListMarkets(ctx, sport)
	if err == nil {
		s.mu.Lock()
		s.markets = fetched
		s.updatedAt = time.Now().UTC()
		s.mu.Unlock()
		return fetched, nil
	}

	s.mu.RLock()
	cached := s.markets
	s.mu.RUnlock()
	if cached == nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "markets fetch failed, serving last snapshot",
		slog.Int("cached_markets", len(cached)),
		slog.String("error", err.Error()),
	)
	return cached, nil
}

// LiveMarkets fetches the in-play markets with the same fallback rule.
func (s *Snapshot) LiveMarkets(ctx context.Context) ([]domain.SportMarket, error) {
	fetched, err := s.lister.ListLiveMarkets(ctx)
	if err == nil {
		s.mu.Lock()
		s.live = fetched
		s.updatedAt = time.Now().UTC()
		s.mu.Unlock()
		return fetched, nil
	}

	s.mu.RLock()
	cached := s.live
	s.mu.RUnlock()
	if cached == nil {
		return nil, err
	}

	s.logger.WarnContext(ctx, "live markets fetch failed, serving last snapshot",
		slog.Int("cached_markets", len(cached)),
		slog.String("error", err.Error()),
	)
	return cached, nil
}

// UpdatedAt reports when the snapshot last held a successful fetch.
func (s *Snapshot) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}
