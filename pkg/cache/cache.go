package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Service defines cache operations interface. Values are JSON encoded so
// every layer decodes into the caller's destination the same way.
type Service interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	DeleteByPattern(ctx context.Context, pattern string) error
	Close() error
}

// GetOrLoad returns the cached value for key, calling load and storing its
// result on a miss. Cache read/write failures never mask a successful load.
func GetOrLoad[T any](ctx context.Context, c Service, key string, ttl time.Duration, load func(ctx context.Context) (T, error)) (T, bool, error) {
	var cached T
	if err := c.Get(ctx, key, &cached); err == nil {
		return cached, true, nil
	}

	value, err := load(ctx)
	if err != nil {
		var zero T
		return zero, false, err
	}
	_ = c.Set(ctx, key, value, ttl)
	return value, false, nil
}
