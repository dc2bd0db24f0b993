package domain

import (
	"context"
	"time"
)

// MarketCache provides fast sport-market metadata lookups.
type MarketCache interface {
	Set(ctx context.Context, market SportMarket) error
	Get(ctx context.Context, gameID string) (SportMarket, error)
	Invalidate(ctx context.Context, gameID string) error
}

// RateLimiter provides distributed rate limiting for trade submission.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// SignalBus provides pub/sub fan-out of ticket status events.
type SignalBus interface {
	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

// StatusSink receives fulfillment transitions for one trade. Implementations
// forward them to the ticket store, notification channels, or connected
// WebSocket clients. Updates within one trade are serialized by the
// sequential polling loop.
type StatusSink interface {
	Update(ctx context.Context, u StatusUpdate)
}
