package provider

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedResolver memoizes successful lookups of another Resolver for the
// lifetime of one run. Failures are never cached so a later item can retry
// an identifier that hit a transient error.
type CachedResolver struct {
	next  Resolver
	store *cache.Cache
}

// NewCachedResolver wraps next. A non-positive ttl keeps entries for the
// whole process.
func NewCachedResolver(next Resolver, ttl time.Duration) *CachedResolver {
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	return &CachedResolver{
		next:  next,
		store: cache.New(ttl, 10*time.Minute),
	}
}

func cacheKey(kind Kind, id string) string {
	return string(kind) + ":" + id
}

// Resolve returns the cached result for kind and id or asks the wrapped resolver.
func (c *CachedResolver) Resolve(ctx context.Context, id string, kind Kind) (Result, error) {
	key := cacheKey(kind, id)
	if cached, ok := c.store.Get(key); ok {
		return cached.(Result), nil
	}

	result, err := c.next.Resolve(ctx, id, kind)
	if err != nil {
		return Result{}, err
	}
	c.store.Set(key, result, cache.DefaultExpiration)
	return result, nil
}

// Len reports how many lookups are currently cached.
func (c *CachedResolver) Len() int {
	return c.store.ItemCount()
}
