package repositories

import (
	"context"
	"time"
)

// NoopCacheRepository always misses. It is the graceful-degradation
// path when Redis is unreachable at startup: reads go straight to the
// source of truth and invalidation is a no-op.
type NoopCacheRepository struct{}

func NewNoopCacheRepository() CacheRepository {
	return NoopCacheRepository{}
}

func (NoopCacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	return ErrCacheMiss
}

func (NoopCacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return nil
}

func (NoopCacheRepository) Invalidate(ctx context.Context, keys ...string) error {
	return nil
}

func (NoopCacheRepository) Close() error { return nil }
