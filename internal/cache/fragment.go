// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	listingKeyPrefix = "listing:"

	// DefaultFragmentTTL is how long a rendered listing fragment stays cached.
	DefaultFragmentTTL = 5 * time.Minute
)

// FragmentCache stores rendered category listing fragments in Valkey, keyed
// by category slug. A nil *FragmentCache is valid and caches nothing.
type FragmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFragmentCache creates a fragment cache backed by the given Valkey client.
func NewFragmentCache(client *redis.Client, ttl time.Duration) *FragmentCache {
	if ttl == 0 {
		ttl = DefaultFragmentTTL
	}
	return &FragmentCache{client: client, ttl: ttl}
}

// ListingKey returns the Valkey key for a category's listing fragment.
func ListingKey(category string) string {
	return listingKeyPrefix + category
}

// Get returns the cached fragment for category. Errors are logged and
// reported as a miss.
func (fc *FragmentCache) Get(ctx context.Context, category string) ([]byte, bool) {
	if fc == nil {
		return nil, false
	}
	val, err := fc.client.Get(ctx, ListingKey(category)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		slog.Warn("fragment cache get error", "category", category, "error", err)
		return nil, false
	}
	return val, true
}

// Set stores a rendered fragment for category with the configured TTL.
func (fc *FragmentCache) Set(ctx context.Context, category string, html []byte) {
	if fc == nil {
		return
	}
	if err := fc.client.Set(ctx, ListingKey(category), html, fc.ttl).Err(); err != nil {
		slog.Warn("fragment cache set error", "category", category, "error", err)
	}
}

// Invalidate removes the cached fragments of the given categories.
func (fc *FragmentCache) Invalidate(ctx context.Context, categories ...string) {
	if fc == nil || len(categories) == 0 {
		return
	}
	keys := make([]string, 0, len(categories))
	for _, c := range categories {
		keys = append(keys, ListingKey(c))
	}
	if err := fc.client.Del(ctx, keys...).Err(); err != nil {
		slog.Warn("fragment cache invalidate error", "categories", categories, "error", err)
		return
	}
	slog.Debug("fragment cache invalidated", "categories", categories)
}

// InvalidateAll removes every cached listing fragment by scanning for the
// key prefix. Called at server start, when templates may have changed.
func (fc *FragmentCache) InvalidateAll(ctx context.Context) {
	if fc == nil {
		return
	}
	var cursor uint64
	var deleted int
	for {
		keys, next, err := fc.client.Scan(ctx, cursor, listingKeyPrefix+"*", 100).Result()
		if err != nil {
			slog.Warn("fragment cache scan error", "error", err)
			return
		}
		if len(keys) > 0 {
			if err := fc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("fragment cache bulk delete error", "error", err)
			}
			deleted += len(keys)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if deleted > 0 {
		slog.Info("fragment cache cleared", "deleted", deleted)
	}
}
