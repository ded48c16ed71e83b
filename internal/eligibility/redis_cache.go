package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memohai/scholarbot/internal/cache"
)

// RedisCache stores the name list as one JSON array under cache.LookupSetKey.
// A corrupt payload is treated as a miss.
type RedisCache struct {
	client redis.Cmdable
}

func NewRedisCache(client redis.Cmdable) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) LoadNames(ctx context.Context) ([]string, bool, error) {
	raw, err := c.client.Get(ctx, cache.LookupSetKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get lookup set: %w", err)
	}
	var names []string
	if err := json.Unmarshal(raw, &names); err != nil {
		return nil, false, nil
	}
	return names, true, nil
}

func (c *RedisCache) StoreNames(ctx context.Context, names []string, ttl time.Duration) error {
	if names == nil {
		names = []string{}
	}
	payload, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cache.LookupSetKey, payload, ttl).Err()
}
