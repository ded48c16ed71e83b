package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/memohai/scholarbot/internal/config"
)

func TestKeys(t *testing.T) {
	if got := StateKey(-100123); got != "state_-100123" {
		t.Fatalf("unexpected state key: %s", got)
	}
	if got := UpdateKey(987); got != "update_987" {
		t.Fatalf("unexpected update key: %s", got)
	}
}

func TestOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := Open(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	defer client.Close()
	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set failed: %v", err)
	}
}

func TestOpenInvalidURL(t *testing.T) {
	if _, err := Open(context.Background(), config.RedisConfig{URL: "not a url"}); err == nil {
		t.Fatal("expected error for invalid url")
	}
}
