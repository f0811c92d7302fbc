package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache is a process-local TTL cache
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache; expired items are swept every cleanup
func NewMemoryCache(defaultTTL, cleanup time.Duration) *MemoryCache {
	return &MemoryCache{items: gocache.New(defaultTTL, cleanup)}
}

func (c *MemoryCache) Get(key string) ([]byte, bool) {
	val, found := c.items.Get(key)
	if !found {
		return nil, false
	}
	data, ok := val.([]byte)
	return data, ok
}

// Set stores value. ttl 0 uses the default TTL.
func (c *MemoryCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, value, ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

// Len returns the number of unexpired items
func (c *MemoryCache) Len() int { return c.items.ItemCount() }
