package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/matzehuels/smfinstall/pkg/observability"
)

// FilePrefix is the file name prefix shared by every cache record.
// The leading dot keeps records out of ordinary directory listings.
const FilePrefix = ".cache_"

// FileCache implements a file-based cache inside the installer's target directory.
type FileCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewFileCache creates a file-based cache in dir.
// The directory is created if it doesn't exist. A ttl of 0 means records
// never expire.
func NewFileCache(dir string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", dir, ErrNotDirectory)
	}
	return &FileCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

// cacheEntry wraps cached data with metadata.
type cacheEntry struct {
	Data      json.RawMessage `json:"data"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Dir returns the directory holding the cache records.
func (c *FileCache) Dir() string { return c.dir }

// Get retrieves a value from the cache and unmarshals it into v.
func (c *FileCache) Get(ctx context.Context, key string, v any) (bool, error) {
	if key == "" {
		return false, ErrEmptyKey
	}
	path := c.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		observability.Cache().OnCacheMiss(ctx, key)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil || len(entry.Data) == 0 {
		// Invalid cache entry - treat as miss
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, key)
		return false, nil
	}

	if !entry.ExpiresAt.IsZero() && c.now().After(entry.ExpiresAt) {
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, key)
		return false, nil
	}

	if err := json.Unmarshal(entry.Data, v); err != nil {
		// Shape no longer matches the caller's type - recompute
		_ = os.Remove(path)
		observability.Cache().OnCacheMiss(ctx, key)
		return false, nil
	}

	observability.Cache().OnCacheHit(ctx, key)
	return true, nil
}

// Set stores a value in the cache.
// The record is written to a temporary file and renamed into place so an
// interrupted write never leaves a half-written record behind.
func (c *FileCache) Set(ctx context.Context, key string, v any) error {
	if key == "" {
		return ErrEmptyKey
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	entry := cacheEntry{Data: data}
	if c.ttl > 0 {
		entry.ExpiresAt = c.now().Add(c.ttl)
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := c.path(key)
	tmp, err := os.CreateTemp(c.dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(entryData); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	observability.Cache().OnCacheSet(ctx, key, len(entryData))
	return nil
}

// Clear removes every cache record in the directory.
// Only regular files named with [FilePrefix] are touched.
func (c *FileCache) Clear(ctx context.Context) (int, error) {
	entries, err := os.ReadDir(c.dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), FilePrefix) {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return count, err
		}
		count++
	}
	return count, nil
}

// path converts a cache key to a file path.
func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, FilePrefix+Hash([]byte(key)))
}

// Ensure FileCache implements Cache.
var _ Cache = (*FileCache)(nil)
