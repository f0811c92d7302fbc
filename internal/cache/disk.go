package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiskCache persists entries as one JSON file per key
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache creates a disk cache rooted at dir
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

type diskEntry struct {
	Data      []byte    `json:"data"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Get returns a stored value. Expired or corrupt files are removed.
func (c *DiskCache) Get(key string) ([]byte, bool) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry diskEntry
	if err := json.Unmarshal(raw, &entry); err != nil || c.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		return nil, false
	}
	return entry.Data, true
}

// Set writes the entry to a temp file and renames it into place so
// concurrent readers never see a partial file
func (c *DiskCache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	raw, err := json.Marshal(diskEntry{Data: value, ExpiresAt: c.now().Add(ttl)})
	if err != nil {
		return fmt.Errorf("marshal entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

func (c *DiskCache) Delete(key string) error {
	err := os.Remove(c.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (c *DiskCache) Clear() error {
	return os.RemoveAll(c.dir)
}

func (c *DiskCache) path(key string) string {
	return filepath.Join(c.dir, strings.ReplaceAll(key, ":", "_")+".json")
}
