package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ovbet/overbot/internal/domain"
)

type fakeMarketService struct {
	markets   []domain.SportMarket
	live      []domain.SportMarket
	getErr    error
	sport     string
	updatedAt time.Time
}

func (f *fakeMarketService) Markets(ctx context.Context, sport string) ([]domain.SportMarket, error) {
	f.sport = sport
	return f.markets, nil
}

func (f *fakeMarketService) LiveMarkets(ctx context.Context) ([]domain.SportMarket, error) {
	return f.live, nil
}

func (f *fakeMarketService) GetMarket(ctx context.Context, gameID string) (domain.SportMarket, error) {
	if f.getErr != nil {
		return domain.SportMarket{}, f.getErr
	}
	for _, m := range f.markets {
		if m.GameID == gameID {
			return m, nil
		}
	}
	return domain.SportMarket{}, domain.ErrNotFound
}

func (f *fakeMarketService) UpdatedAt() time.Time {
	return f.updatedAt
}

func marketMux(h *MarketHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/markets", h.ListMarkets)
	mux.HandleFunc("GET /api/markets/live", h.ListLiveMarkets)
	mux.HandleFunc("GET /api/markets/{gameId}", h.GetMarket)
	return mux
}

func TestListMarkets(t *testing.T) {
	fetched := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := &fakeMarketService{
		markets:   []domain.SportMarket{{GameID: "0x01", HomeTeam: "Lakers", AwayTeam: "Celtics"}},
		updatedAt: fetched,
	}
	h := NewMarketHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	marketMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets?sport=Basketball", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if svc.sport != "Basketball" {
		t.Errorf("sport filter = %q, want Basketball", svc.sport)
	}
	var resp listMarketsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 1 || len(resp.Markets) != 1 {
		t.Errorf("response = %+v", resp)
	}
	if !resp.UpdatedAt.Equal(fetched) {
		t.Errorf("updatedAt = %v, want %v", resp.UpdatedAt, fetched)
	}
}

func TestListLiveMarketsTakesPrecedenceOverWildcard(t *testing.T) {
	svc := &fakeMarketService{
		markets: []domain.SportMarket{{GameID: "live"}},
		live:    []domain.SportMarket{{GameID: "0x02", IsLive: true}, {GameID: "0x03", IsLive: true}},
	}
	h := NewMarketHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	marketMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/live", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp listMarketsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("count = %d, want 2 live markets", resp.Count)
	}
}

func TestGetMarket(t *testing.T) {
	svc := &fakeMarketService{markets: []domain.SportMarket{{GameID: "0x01", HomeTeam: "Heat"}}}
	h := NewMarketHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	marketMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0x01", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var market domain.SportMarket
	if err := json.Unmarshal(rec.Body.Bytes(), &market); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if market.HomeTeam != "Heat" {
		t.Errorf("market = %+v", market)
	}
}

func TestGetMarketNotFound(t *testing.T) {
	h := NewMarketHandler(&fakeMarketService{}, testLogger())

	rec := httptest.NewRecorder()
	marketMux(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0xff", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
