package source

import (
	"context"
	"sync"
)

// Cache stores fetched image bodies keyed by URI.
//
// Bodies are cached in their encoded form and decoded on every request, so
// each request owns a fresh pixel buffer and no raster is ever shared.
type Cache interface {
	// Get returns the cached body for key. A miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores body under key.
	Set(ctx context.Context, key string, body []byte) error
}

// MemoryCache is an in-process Cache.
//
// MemoryCache is safe for concurrent use by multiple goroutines. All methods
// use appropriate locking to prevent data races.
//
// # Memory Management
//
// Entries remain in memory until explicitly removed via Evict() or Clear(),
// or until the total size would exceed MaxBytes, at which point the cache is
// emptied before the new body is stored. For long-running processes handling
// many distinct URLs, set a limit or use RedisCache.
type MemoryCache struct {
	mu       sync.RWMutex
	bodies   map[string][]byte
	size     int64
	maxBytes int64
}

// NewMemoryCache creates an empty cache. maxBytes <= 0 means unbounded.
func NewMemoryCache(maxBytes int64) *MemoryCache {
	return &MemoryCache{
		bodies:   make(map[string][]byte),
		maxBytes: maxBytes,
	}
}

// Get returns the cached body for key.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	body, ok := c.bodies[key]
	return body, ok, nil
}

// Set stores body under key. Bodies larger than the limit are not cached.
func (c *MemoryCache) Set(_ context.Context, key string, body []byte) error {
	n := int64(len(body))

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.maxBytes > 0 && n > c.maxBytes {
		return nil
	}
	if old, ok := c.bodies[key]; ok {
		c.size -= int64(len(old))
	}
	if c.maxBytes > 0 && c.size+n > c.maxBytes {
		c.bodies = make(map[string][]byte)
		c.size = 0
	}
	c.bodies[key] = body
	c.size += n
	return nil
}

// Len reports the number of cached bodies.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.bodies)
}

// Clear removes every entry.
func (c *MemoryCache) Clear() {
	c.mu.Lock()
	c.bodies = make(map[string][]byte)
	c.size = 0
	c.mu.Unlock()
}

// Evict removes the entry for key, if any. After eviction the next fetch of
// key goes to the network.
func (c *MemoryCache) Evict(key string) {
	c.mu.Lock()
	if old, ok := c.bodies[key]; ok {
		c.size -= int64(len(old))
		delete(c.bodies, key)
	}
	c.mu.Unlock()
}
