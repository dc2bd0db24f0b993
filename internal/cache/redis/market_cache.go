package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ovbet/overbot/internal/domain"
)

// Pre-game market metadata is stable for minutes; live markets reprice
// continuously and must expire fast.
const (
	marketTTL     = 5 * time.Minute
	liveMarketTTL = 30 * time.Second
)

// MarketCache implements domain.MarketCache with JSON-serialized markets
// keyed by game id.
//
// Key schema:
//
//	sportmarket:{gameID} - JSON-encoded domain.SportMarket
type MarketCache struct {
	rdb *redis.Client
}

// NewMarketCache creates a MarketCache backed by the given Client.
func NewMarketCache(c *Client) *MarketCache {
	return &MarketCache{rdb: c.Underlying()}
}

func marketKey(gameID string) string { return "sportmarket:" + gameID }

// Set stores a market. Live markets get a short TTL so stale in-play odds
// never linger.
func (mc *MarketCache) Set(ctx context.Context, market domain.SportMarket) error {
	data, err := json.Marshal(market)
	if err != nil {
		return fmt.Errorf("redis: marshal market %s: %w", market.GameID, err)
	}

	ttl := marketTTL
	if market.IsLive {
		ttl = liveMarketTTL
	}

	if err := mc.rdb.Set(ctx, marketKey(market.GameID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set market %s: %w", market.GameID, err)
	}
	return nil
}

// Get retrieves a market by its game id. It returns domain.ErrNotFound when
// the key does not exist or has expired.
func (mc *MarketCache) Get(ctx context.Context, gameID string) (domain.SportMarket, error) {
	data, err := mc.rdb.Get(ctx, marketKey(gameID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.SportMarket{}, domain.ErrNotFound
		}
		return domain.SportMarket{}, fmt.Errorf("redis: get market %s: %w", gameID, err)
	}

	var market domain.SportMarket
	if err := json.Unmarshal(data, &market); err != nil {
		return domain.SportMarket{}, fmt.Errorf("redis: unmarshal market %s: %w", gameID, err)
	}
	return market, nil
}

// Invalidate removes a market from the cache.
func (mc *MarketCache) Invalidate(ctx context.Context, gameID string) error {
	if err := mc.rdb.Del(ctx, marketKey(gameID)).Err(); err != nil {
		return fmt.Errorf("redis: invalidate market %s: %w", gameID, err)
	}
	return nil
}

// Compile-time interface check.
var _ domain.MarketCache = (*MarketCache)(nil)
