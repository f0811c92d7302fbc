package cache

import (
	"errors"
	"time"
)

// LayeredCache reads memory first and falls back to disk, promoting hits
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory cache in front of a disk cache
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

func (c *LayeredCache) Get(key string) ([]byte, bool) {
	if val, ok := c.memory.Get(key); ok {
		return val, true
	}
	val, ok := c.disk.Get(key)
	if !ok {
		return nil, false
	}
	_ = c.memory.Set(key, val, 0)
	return val, true
}

// Set writes memory then disk. ttl applies to both layers; 0 keeps each
// layer's default.
func (c *LayeredCache) Set(key string, value []byte, ttl time.Duration) error {
	if err := c.memory.Set(key, value, ttl); err != nil {
		return err
	}
	return c.disk.Set(key, value, ttl)
}

func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}
