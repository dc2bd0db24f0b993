package markets

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

// Getter is the single-market slice of the markets client.
type Getter interface {
	GetMarket(ctx context.Context, gameID string) (domain.SportMarket, error)
}

// Service combines the snapshot listings with a cached single-market lookup.
type Service struct {
	snapshot *Snapshot
	getter   Getter
	cache    domain.MarketCache
	logger   *slog.Logger
}

// NewService creates a Service. The cache may be nil, in which case every
// GetMarket call goes to the upstream API.
func NewService(snapshot *Snapshot, getter Getter, cache domain.MarketCache, logger *slog.Logger) *Service {
	return &Service{
		snapshot: snapshot,
		getter:   getter,
		cache:    cache,
		logger:   logger.With(slog.String("component", "markets_service")),
	}
}

// Markets lists open pre-game markets, optionally filtered by sport.
func (s *Service) Markets(ctx context.Context, sport string) ([]domain.SportMarket, error) {
	return s.snapshot.Markets(ctx, sport)
}

// LiveMarkets lists in-play markets.
func (s *Service) LiveMarkets(ctx context.Context) ([]domain.SportMarket, error) {
	return s.snapshot.LiveMarkets(ctx)
}

// UpdatedAt reports when the snapshot last held a successful fetch. The zero
// time means no fetch has succeeded yet.
func (s *Service) UpdatedAt() time.Time {
	return s.snapshot.UpdatedAt()
}

// GetMarket returns one market by its game id, served from the cache when a
// fresh entry exists.
func (s *Service) GetMarket(ctx context.Context, gameID string) (domain.SportMarket, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, gameID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.WarnContext(ctx, "market cache read failed",
				slog.String("game_id", gameID),
				slog.String("error", err.Error()),
			)
		}
	}

	market, err := s.getter.GetMarket(ctx, gameID)
	if err != nil {
		return domain.SportMarket{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, market); err != nil {
			s.logger.WarnContext(ctx, "market cache write failed",
				slog.String("game_id", gameID),
				slog.String("error", err.Error()),
			)
		}
	}
	return market, nil
}
