// Package cache provides a small string cache used for payment-intent
// idempotency keys and oracle explanation caching. A Redis adapter is
// used when an address is configured; otherwise an in-memory adapter
// keeps the demo dependency-free.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Service is the cache contract shared by the adapters.
type Service interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// SetNX sets the key only if it does not exist and reports whether
	// it was set. Used for idempotency tokens.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// New returns a Redis-backed cache when addr is non-empty and the
// in-memory cache otherwise.
func New(addr, password string, db int) Service {
	if addr == "" {
		return NewMemoryCache()
	}
	return NewRedisCache(addr, password, db)
}
