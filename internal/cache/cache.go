// Package cache opens the Redis client shared by the ephemeral stores and names their keys.
package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/memohai/scholarbot/internal/config"
)

// LookupSetKey holds the cached eligibility name list.
const LookupSetKey = "lookup_fio_set"

// StateKey is the conversation state key of a chat.
func StateKey(chatID int64) string {
	return "state_" + strconv.FormatInt(chatID, 10)
}

// UpdateKey is the dedup marker key of an inbound update.
func UpdateKey(updateID int64) string {
	return "update_" + strconv.FormatInt(updateID, 10)
}

// Open parses the Redis URL, connects and pings.
func Open(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(strings.TrimSpace(cfg.URL))
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
