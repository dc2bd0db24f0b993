package markets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/ovbet/overbot/internal/domain"
)

type scriptedLister struct {
	markets []domain.SportMarket
	live    []domain.SportMarket
	err     error
}

func (l *scriptedLister) ListMarkets(ctx context.Context, sport string) ([]domain.SportMarket, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.markets, nil
}

func (l *scriptedLister) ListLiveMarkets(ctx context.Context) ([]domain.SportMarket, error) {
	if l.err != nil {
		return nil, l.err
	}
	return l.live, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSnapshotServesLastGoodListing(t *testing.T) {
	lister := &scriptedLister{markets: []domain.SportMarket{{GameID: "game-1"}, {GameID: "game-2"}}}
	s := NewSnapshot(lister, testLogger())

	first, err := s.Markets(context.Background(), "")
	if err != nil {
		t.Fatalf("Markets failed: %v", err)
	}
	if len(first) != 2 {
		t.Fatalf("expected 2 markets, got %d", len(first))
	}

	lister.err = errors.New("api down")
	second, err := s.Markets(context.Background(), "")
	if err != nil {
		t.Fatalf("fallback should swallow the error, got %v", err)
	}
	if len(second) != 2 || second[0].GameID != "game-1" {
		t.Errorf("fallback listing = %v, want the previous snapshot", second)
	}
}

func TestSnapshotNoFallbackPropagatesError(t *testing.T) {
	lister := &scriptedLister{err: errors.New("api down")}
	s := NewSnapshot(lister, testLogger())

	if _, err := s.Markets(context.Background(), ""); err == nil {
		t.Error("expected error when no snapshot exists yet")
	}
	if _, err := s.LiveMarkets(context.Background()); err == nil {
		t.Error("expected error when no live snapshot exists yet")
	}
}

func TestSnapshotLiveIndependentOfPreGame(t *testing.T) {
	lister := &scriptedLister{
		markets: []domain.SportMarket{{GameID: "pre-1"}},
		live:    []domain.SportMarket{{GameID: "live-1", IsLive: true}},
	}
	s := NewSnapshot(lister, testLogger())

	if _, err := s.Markets(context.Background(), ""); err != nil {
		t.Fatalf("Markets failed: %v", err)
	}

	lister.err = errors.New("api down")
	// Live listing was never fetched successfully, so it has no fallback.
	if _, err := s.LiveMarkets(context.Background()); err == nil {
		t.Error("live fallback should be independent of the pre-game snapshot")
	}
}
