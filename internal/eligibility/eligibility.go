// Package eligibility answers whether a canonical full name is on the approved list.
//
// The list lives in the durable store and is cached as a whole for a bounded time.
// Concurrent misses share a single reload.
package eligibility

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 24 * time.Hour

// ErrDependency reports that the durable list could not be read.
var ErrDependency = errors.New("eligibility source unavailable")

// NameSource lists the canonical names from the durable store.
type NameSource interface {
	ListLookupNames(ctx context.Context) ([]string, error)
}

// SetCache holds a cached copy of the whole name list.
type SetCache interface {
	LoadNames(ctx context.Context) ([]string, bool, error)
	StoreNames(ctx context.Context, names []string, ttl time.Duration) error
}

// Index is the eligibility lookup.
type Index struct {
	source NameSource
	cache  SetCache
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewIndex creates an index. The cache may be nil, in which case every call reads the source.
func NewIndex(log *slog.Logger, source NameSource, cache SetCache, ttl time.Duration) *Index {
	if log == nil {
		log = slog.Default()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Index{
		source: source,
		cache:  cache,
		ttl:    ttl,
		logger: log.With(slog.String("service", "eligibility")),
	}
}

// Contains reports whether canonical is eligible. The name must already be normalized.
func (ix *Index) Contains(ctx context.Context, canonical string) (bool, error) {
	if canonical == "" {
		return false, nil
	}
	if ix.cache != nil {
		names, ok, err := ix.cache.LoadNames(ctx)
		if err != nil {
			ix.logger.Warn("eligibility cache read failed", slog.Any("error", err))
		} else if ok {
			return contains(names, canonical), nil
		}
	}
	v, err, _ := ix.group.Do("reload", func() (any, error) {
		return ix.reload(ctx)
	})
	if err != nil {
		return false, err
	}
	set := v.(map[string]struct{})
	_, found := set[canonical]
	return found, nil
}

// Refresh reloads the list from the source, overwrites the cached copy and returns the
// number of names loaded.
func (ix *Index) Refresh(ctx context.Context) (int, error) {
	v, err, _ := ix.group.Do("reload", func() (any, error) {
		return ix.reload(ctx)
	})
	if err != nil {
		return 0, err
	}
	return len(v.(map[string]struct{})), nil
}

func (ix *Index) reload(ctx context.Context) (map[string]struct{}, error) {
	names, err := ix.source.ListLookupNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDependency, err)
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	if ix.cache != nil {
		if err := ix.cache.StoreNames(ctx, names, ix.ttl); err != nil {
			ix.logger.Warn("eligibility cache write failed", slog.Any("error", err))
		}
	}
	ix.logger.Debug("eligibility list reloaded", slog.Int("names", len(set)))
	return set, nil
}

func contains(names []string, canonical string) bool {
	for _, n := range names {
		if n == canonical {
			return true
		}
	}
	return false
}
