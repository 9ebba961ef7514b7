package identity

import (
	"context"
	"time"

	"devhub/internal/core/cache"
)

// Cached wraps a Provider with a short-TTL redis cache. Concurrent fetches
// for the same user collapse into one upstream call (singleflight in the
// cache layer). Reconciliation semantics tolerate a slightly stale profile:
// manual sync only guarantees that a row exists.
type Cached struct {
	next  Provider
	cache *cache.Cache
	ttl   time.Duration
}

func NewCached(next Provider, c *cache.Cache, ttl time.Duration) *Cached {
	return &Cached{next: next, cache: c, ttl: ttl}
}

func (c *Cached) Profile(ctx context.Context, userID string) (*Profile, error) {
	return cache.GetOrLoadJSON[Profile](c.cache, ctx, "identity:profile:"+userID, c.ttl,
		func(ctx context.Context) (*Profile, error) {
			return c.next.Profile(ctx, userID)
		})
}
