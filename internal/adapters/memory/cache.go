package memory

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrCacheMiss is returned by LocalCache.Get for absent or expired keys.
var ErrCacheMiss = errors.New("cache miss")

// LocalCache implements ports.CacheService in process memory. It stands in
// for Valkey when no address is configured.
type LocalCache struct {
	c *gocache.Cache
}

// NewLocalCache creates a cache whose entries default to defaultTTL and are
// purged every cleanup interval.
func NewLocalCache(defaultTTL, cleanup time.Duration) *LocalCache {
	return &LocalCache{c: gocache.New(defaultTTL, cleanup)}
}

// Get retrieves a value by key.
func (l *LocalCache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := l.c.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, ErrCacheMiss
	}
	return b, nil
}

// Set stores a copy of value. A non-positive TTL uses the default expiration.
func (l *LocalCache) Set(_ context.Context, key string, value []byte, ttlSeconds int) error {
	ttl := gocache.DefaultExpiration
	if ttlSeconds > 0 {
		ttl = time.Duration(ttlSeconds) * time.Second
	}
	l.c.Set(key, append([]byte(nil), value...), ttl)
	return nil
}

// Delete removes a key.
func (l *LocalCache) Delete(_ context.Context, key string) error {
	l.c.Delete(key)
	return nil
}

// Len reports the number of entries, expired ones included until purged.
func (l *LocalCache) Len() int {
	return l.c.ItemCount()
}
