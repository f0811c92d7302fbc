// Package cache stores transcripts between requests.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/newslens/internal/model"
)

const keyPrefix = "newslens:v1:"

// Cache is a byte-oriented TTL store. ttl 0 means the layer default.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key hashes namespace and parts into a filesystem-safe key
func Key(namespace string, parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return keyPrefix + namespace + ":" + hex.EncodeToString(hash[:16])
}

// GetJSON decodes a cached value into out. Undecodable entries count as misses.
func GetJSON(c Cache, key string, out any) bool {
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, out) == nil
}

// SetJSON encodes value and stores it
func SetJSON(c Cache, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value: %w", err)
	}
	return c.Set(key, data, ttl)
}

// New builds the cache described by cfg: layered memory+disk, memory only
// when Dir is empty, or Noop when disabled.
func New(cfg model.CacheConfig) (Cache, error) {
	if !cfg.Enabled {
		return Noop{}, nil
	}

	memoryTTL := time.Duration(cfg.MemoryTTL) * time.Minute
	if memoryTTL <= 0 {
		memoryTTL = 30 * time.Minute
	}
	if cfg.Dir == "" {
		return NewMemoryCache(memoryTTL, 10*time.Minute), nil
	}

	dir, err := ExpandHome(cfg.Dir)
	if err != nil {
		return nil, err
	}
	diskTTL := time.Duration(cfg.DiskTTL) * time.Hour
	if diskTTL <= 0 {
		diskTTL = 24 * time.Hour
	}

	return NewLayeredCache(memoryTTL, dir, diskTTL), nil
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Noop never stores anything
type Noop struct{}

func (Noop) Get(string) ([]byte, bool)                { return nil, false }
func (Noop) Set(string, []byte, time.Duration) error { return nil }
func (Noop) Delete(string) error                      { return nil }
func (Noop) Clear() error                             { return nil }
