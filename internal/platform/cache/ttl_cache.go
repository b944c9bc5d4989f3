// Package cache provides TTL memoization of source fetch functions.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps a fetch failure for which no previously cached
// value could be served.
var ErrUnavailable = errors.New("source unavailable")

// Cache memoizes the result of a fetch function per key with a TTL.
//
// Semantics:
//   - A fresh entry (age < ttl) is returned without invoking the fetch.
//   - On expiry the fetch runs again; its result replaces the entry wholesale.
//   - If the fetch fails and a stale entry exists, the stale entry is served
//     (availability over freshness). The caller sees stale=true and a warning
//     is logged; no error surfaces.
//   - If the fetch fails with no prior entry, the error is returned wrapped
//     in ErrUnavailable.
//   - At most one fetch per key is in flight at a time; concurrent callers
//     for the same key block and then observe the winner's fresh entry.
//   - A cancelled fetch never writes an entry.
//
// An optional Redis client adds a shared second level in front of the fetch,
// in the same best-effort, nil-client-bypass style as the rest of the
// platform: Redis being down or holding garbage never fails a Get. Entries
// are stored without a Redis expiry because expired values must stay
// retrievable for stale serving; freshness is judged from the embedded
// fetch timestamp.
type Cache[T any] struct {
	rdb       *redis.Client
	namespace string

	mu    sync.Mutex
	slots map[string]*slot[T]

	now func() time.Time // overridable in tests
}

// slot holds the cached value for one key. Its mutex serializes fetches
// for that key without blocking other keys.
type slot[T any] struct {
	mu        sync.Mutex
	value     T
	fetchedAt time.Time // zero means never fetched
}

// payload is the Redis wire form of a cache entry.
type payload[T any] struct {
	Value     T         `json:"value"`
	FetchedAt time.Time `json:"fetched_at"`
}

// New creates a Cache. rdb may be nil to run purely in-process.
// If namespace is empty, "lenderdash" is used.
func New[T any](rdb *redis.Client, namespace string) *Cache[T] {
	if namespace == "" {
		namespace = "lenderdash"
	}
	return &Cache[T]{
		rdb:       rdb,
		namespace: namespace,
		slots:     map[string]*slot[T]{},
		now:       time.Now,
	}
}

// Get returns the cached value for key if it is younger than ttl, otherwise
// invokes fetch and caches the result. The second return value reports
// whether a stale value was served after a failed refresh.
func (c *Cache[T]) Get(ctx context.Context, key string, ttl time.Duration, fetch func(ctx context.Context) (T, error)) (T, bool, error) {
	s := c.slot(key)

	// Per-key serialization: a concurrent caller parks here while a fetch
	// for the same key is in flight, then sees the fresh entry below.
	s.mu.Lock()
	defer s.mu.Unlock()

	now := c.now()
	if !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < ttl {
		return s.value, false, nil
	}

	// Second level: another process may have refreshed the entry already.
	if p, ok := c.redisGet(ctx, key); ok && p.FetchedAt.After(s.fetchedAt) {
		s.value = p.Value
		s.fetchedAt = p.FetchedAt
		if now.Sub(s.fetchedAt) < ttl {
			return s.value, false, nil
		}
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		if ctx.Err() != nil {
			// Cancelled fetches must not touch the entry.
			return zero, false, ctx.Err()
		}
		if !s.fetchedAt.IsZero() {
			slog.Warn("serving stale cache entry after failed refresh",
				"key", key, "age", now.Sub(s.fetchedAt), "error", err)
			return s.value, true, nil
		}
		return zero, false, fmt.Errorf("%w: %s: %v", ErrUnavailable, key, err)
	}

	s.value = v
	s.fetchedAt = c.now()
	c.redisSet(ctx, key, payload[T]{Value: s.value, FetchedAt: s.fetchedAt})
	return s.value, false, nil
}

func (c *Cache[T]) slot(key string) *slot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.slots[key]
	if !ok {
		s = &slot[T]{}
		c.slots[key] = s
	}
	return s
}

func (c *Cache[T]) redisGet(ctx context.Context, key string) (payload[T], bool) {
	var p payload[T]
	if c.rdb == nil {
		return p, false
	}
	b, err := c.rdb.Get(ctx, c.redisKey(key)).Bytes()
	if err != nil || len(b) == 0 {
		return p, false
	}
	if err := json.Unmarshal(b, &p); err != nil {
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, c.redisKey(key)).Err()
		return p, false
	}
	return p, true
}

func (c *Cache[T]) redisSet(ctx context.Context, key string, p payload[T]) {
	if c.rdb == nil {
		return
	}
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	// Best effort: don't fail the Get if the write-through fails.
	_ = c.rdb.Set(ctx, c.redisKey(key), b, 0).Err()
}

func (c *Cache[T]) redisKey(key string) string {
	return c.namespace + ":" + safe(key)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
