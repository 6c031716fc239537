// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// summary.go provides a Valkey-backed cache for the expensive aggregate
// responses: the home summary and per-category statistics. The JSON body
// is stored as rendered so cache hits skip both the DB aggregation and
// re-serialization.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// summaryKeyPrefix is the Valkey key prefix for cached summaries.
	summaryKeyPrefix = "summary:"

	// DefaultSummaryTTL is how long an aggregate response stays cached.
	DefaultSummaryTTL = 5 * time.Minute
)

// SummaryCache manages cached aggregate JSON responses in Valkey.
// A cache failure is never fatal: misses and errors both fall through
// to the database.
type SummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSummaryCache creates a summary cache backed by the given Valkey client.
func NewSummaryCache(client *redis.Client, ttl time.Duration) *SummaryCache {
	if ttl == 0 {
		ttl = DefaultSummaryTTL
	}
	return &SummaryCache{client: client, ttl: ttl}
}

// Get retrieves a cached JSON body. Returns false on miss.
func (sc *SummaryCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := sc.client.Get(ctx, summaryKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("summary cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("summary cache hit", "key", key)
	return val, true
}

// Set stores a JSON body under a key with the configured TTL.
func (sc *SummaryCache) Set(ctx context.Context, key string, body []byte) {
	if err := sc.client.Set(ctx, summaryKeyPrefix+key, body, sc.ttl).Err(); err != nil {
		slog.Warn("summary cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached summary.
func (sc *SummaryCache) Invalidate(ctx context.Context, key string) {
	if err := sc.client.Del(ctx, summaryKeyPrefix+key).Err(); err != nil {
		slog.Warn("summary cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("summary cache invalidated", "key", key)
}

// InvalidateAll removes every cached summary by scanning for the prefix.
// Called after writes that can shift any aggregate: publishing, liking,
// category changes.
func (sc *SummaryCache) InvalidateAll(ctx context.Context) {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := sc.client.Scan(ctx, cursor, summaryKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("summary cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := sc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("summary cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("summary cache fully cleared", "deleted", deleted)
	}
}

// HomeKey returns the cache key for the home summary.
func HomeKey() string {
	return "_home"
}

// CategoryStatsKey returns the cache key for one category's statistics.
func CategoryStatsKey(slug string) string {
	return fmt.Sprintf("category:%s", slug)
}
