// Package dedup makes webhook delivery idempotent by remembering processed update ids.
package dedup

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memohai/scholarbot/internal/cache"
)

const DefaultTTL = 24 * time.Hour

// Guard marks update ids as seen with an atomic set-if-absent.
type Guard struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewGuard creates a guard with the given retention window (DefaultTTL when <= 0).
func NewGuard(log *slog.Logger, client redis.Cmdable, ttl time.Duration) *Guard {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Guard{
		client: client,
		ttl:    ttl,
		logger: log.With(slog.String("service", "dedup")),
	}
}

// MarkIfNew returns true for the first caller that sees updateID within the window.
func (g *Guard) MarkIfNew(ctx context.Context, updateID int64) (bool, error) {
	ok, err := g.client.SetNX(ctx, cache.UpdateKey(updateID), "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("mark update %d: %w", updateID, err)
	}
	if !ok {
		g.logger.Info("duplicate update skipped", slog.Int64("update_id", updateID))
	}
	return ok, nil
}
