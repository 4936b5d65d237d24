package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrCacheMiss is returned when a key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// DefaultCacheTTL bounds how long profile and balance views may be
// served without revisiting the source of truth.
const DefaultCacheTTL = 300 * time.Second

// CacheRepository is the cache layer contract. It is a disposable
// projection: the source of truth is always PostgreSQL, and any write
// that touches a mirrored entity must Invalidate the matching keys
// before reporting success.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string) error
	Close() error
}

// GetOrLoad returns the cached value for key, falling back to loader on
// a miss and caching the loaded value. Cache failures degrade to a
// straight load; they never fail the read.
func GetOrLoad[T any](ctx context.Context, cache CacheRepository, key string, ttl time.Duration, loader func() (T, error)) (T, error) {
	var cached T
	if err := cache.Get(ctx, key, &cached); err == nil {
		return cached, nil
	}

	loaded, err := loader()
	if err != nil {
		return loaded, err
	}
	_ = cache.Set(ctx, key, loaded, ttl)
	return loaded, nil
}

// Cache keys are namespaced per user so entries never leak across users.

func ProfileCacheKey(username string) string {
	return fmt.Sprintf("profile:%s", username)
}

func BalanceCacheKey(username string) string {
	return fmt.Sprintf("balance:%s", username)
}
