// Package convstate keeps the short-lived "what input are we waiting for" state of a chat.
package convstate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/memohai/scholarbot/internal/cache"
)

const DefaultTTL = 24 * time.Hour

// Awaiting names the input a chat is expected to send next.
type Awaiting string

const AwaitingEmail Awaiting = "email"

// State is the pending step of a chat. ProfileID references, but does not own, a profile.
type State struct {
	Awaiting  Awaiting `json:"await"`
	ProfileID int64    `json:"profileId"`
}

// UnmarshalJSON accepts profileId both as a number and as a numeric string.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw struct {
		Awaiting  Awaiting        `json:"await"`
		ProfileID json.RawMessage `json:"profileId"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.Awaiting = raw.Awaiting
	s.ProfileID = 0
	idRaw := bytes.Trim(bytes.TrimSpace(raw.ProfileID), `"`)
	if len(idRaw) == 0 || string(idRaw) == "null" {
		return nil
	}
	id, err := strconv.ParseInt(string(idRaw), 10, 64)
	if err != nil {
		return fmt.Errorf("profileId: %w", err)
	}
	s.ProfileID = id
	return nil
}

// Store is a Redis-backed conversation state store. Losing state only means the user is
// asked again, so no durability is required.
type Store struct {
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

// NewStore creates a store with the given retention window (DefaultTTL when <= 0).
func NewStore(log *slog.Logger, client redis.Cmdable, ttl time.Duration) *Store {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		client: client,
		ttl:    ttl,
		logger: log.With(slog.String("service", "convstate")),
	}
}

// Get returns the chat state. A missing or unreadable entry reports ok=false.
func (s *Store) Get(ctx context.Context, chatID int64) (State, bool, error) {
	raw, err := s.client.Get(ctx, cache.StateKey(chatID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("get conversation state: %w", err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		s.logger.Warn("drop unreadable conversation state", slog.Int64("chat_id", chatID), slog.Any("error", err))
		return State{}, false, nil
	}
	if st.Awaiting == "" {
		return State{}, false, nil
	}
	return st, true, nil
}

// Set stores the chat state with the store's retention window.
func (s *Store) Set(ctx context.Context, chatID int64, st State) error {
	payload, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, cache.StateKey(chatID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("set conversation state: %w", err)
	}
	return nil
}

// Clear removes the chat state; clearing an absent state is not an error.
func (s *Store) Clear(ctx context.Context, chatID int64) error {
	if err := s.client.Del(ctx, cache.StateKey(chatID)).Err(); err != nil {
		return fmt.Errorf("clear conversation state: %w", err)
	}
	return nil
}
