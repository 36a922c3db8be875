// Package cache stores generated Go sources keyed by a hash of their .vex
// input and the generator options, so unchanged files are not regenerated.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

const indexVersion = "vex-1"

// Cache is a content-addressed store of generated files
type Cache struct {
	mu         sync.Mutex
	fs         afero.Fs
	dir        string
	maxEntries int
	maxAge     time.Duration
	index      *Index
	stats      Stats
}

// Index tracks all cached entries
type Index struct {
	Version string            `json:"version"`
	Entries map[string]*Entry `json:"entries"`
	Updated time.Time         `json:"updated"`
}

// Entry is one cached artifact
type Entry struct {
	Key         string    `json:"key"`
	Source      string    `json:"source,omitempty"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	Created     time.Time `json:"created"`
	LastAccess  time.Time `json:"last_access"`
	AccessCount int       `json:"access_count"`
}

// Stats tracks cache effectiveness
type Stats struct {
	Hits       int64 `json:"hits"`
	Misses     int64 `json:"misses"`
	Evictions  int64 `json:"evictions"`
	TotalSize  int64 `json:"total_size"`
	EntryCount int   `json:"entry_count"`
}

// Config holds cache configuration
type Config struct {
	Fs         afero.Fs      // Filesystem holding the cache (default: OS)
	Dir        string        // Cache directory (default: $HOME/.cache/vex)
	MaxEntries int           // Entries kept before LRU eviction; 0 means unlimited
	MaxAge     time.Duration // Entry lifetime; 0 means entries never expire
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Fs:         afero.NewOsFs(),
		Dir:        filepath.Join(homeDir, ".cache", "vex"),
		MaxEntries: 1024,
		MaxAge:     7 * 24 * time.Hour,
	}
}

// New opens the cache in config.Dir, loading its index if one exists
func New(config Config) (*Cache, error) {
	defaults := DefaultConfig()
	if config.Fs == nil {
		config.Fs = defaults.Fs
	}
	if config.Dir == "" {
		config.Dir = defaults.Dir
	}

	if err := config.Fs.MkdirAll(filepath.Join(config.Dir, "artifacts"), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}

	c := &Cache{
		fs:         config.Fs,
		dir:        config.Dir,
		maxEntries: config.MaxEntries,
		maxAge:     config.MaxAge,
		index:      newIndex(),
	}

	if err := c.loadIndex(); err != nil {
		// missing or corrupted index, start fresh
		c.index = newIndex()
	}
	return c, nil
}

// Get retrieves a cached artifact
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index.Entries[key]
	if !ok {
		c.stats.Misses++
		return nil, false
	}
	if c.isExpired(entry) {
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	data, err := afero.ReadFile(c.fs, entry.Path)
	if err != nil {
		c.removeLocked(key)
		c.stats.Misses++
		return nil, false
	}

	entry.LastAccess = time.Now()
	entry.AccessCount++
	c.stats.Hits++
	return data, true
}

// Put stores data under key. source names the file the artifact was
// generated from and is informational only.
func (c *Cache) Put(key, source string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	path := filepath.Join(c.dir, "artifacts", key)
	if err := afero.WriteFile(c.fs, path, data, 0644); err != nil {
		return errors.Wrap(err, "failed to write cache file")
	}

	if old, ok := c.index.Entries[key]; ok {
		c.stats.TotalSize -= old.Size
	}
	now := time.Now()
	c.index.Entries[key] = &Entry{
		Key:        key,
		Source:     source,
		Path:       path,
		Size:       int64(len(data)),
		Created:    now,
		LastAccess: now,
	}
	c.stats.TotalSize += int64(len(data))
	c.evictLocked()
	return c.saveIndexLocked()
}

// Delete removes an entry from the cache
func (c *Cache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.index.Entries[key]; !ok {
		return nil
	}
	c.removeLocked(key)
	return c.saveIndexLocked()
}

// Prune drops expired entries and returns how many were removed
func (c *Cache) Prune() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, entry := range c.index.Entries {
		if c.isExpired(entry) {
			c.removeLocked(key)
			n++
		}
	}
	return n, c.saveIndexLocked()
}

// Clear removes every cached entry
func (c *Cache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	artifacts := filepath.Join(c.dir, "artifacts")
	if err := c.fs.RemoveAll(artifacts); err != nil {
		return errors.Wrap(err, "failed to clear artifacts")
	}
	if err := c.fs.MkdirAll(artifacts, 0755); err != nil {
		return errors.Wrap(err, "failed to recreate artifacts directory")
	}

	c.index = newIndex()
	c.stats = Stats{}
	return c.saveIndexLocked()
}

// Flush writes the index, recording access times gathered by Get
func (c *Cache) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveIndexLocked()
}

// GetStats returns cache statistics
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := c.stats
	stats.EntryCount = len(c.index.Entries)
	return stats
}

// Key derives a cache key from the given inputs. Inputs are length
// prefixed so that ("ab", "c") and ("a", "bc") differ.
func Key(inputs ...string) string {
	h := sha256.New()
	for _, input := range inputs {
		fmt.Fprintf(h, "%d:", len(input))
		h.Write([]byte(input))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Private methods

func newIndex() *Index {
	return &Index{
		Version: indexVersion,
		Entries: make(map[string]*Entry),
		Updated: time.Now(),
	}
}

func (c *Cache) indexPath() string {
	return filepath.Join(c.dir, "index.json")
}

func (c *Cache) loadIndex() error {
	data, err := afero.ReadFile(c.fs, c.indexPath())
	if err != nil {
		return err
	}

	var index Index
	if err := json.Unmarshal(data, &index); err != nil {
		return err
	}
	if index.Version != indexVersion || index.Entries == nil {
		return errors.Errorf("unsupported cache index version %q", index.Version)
	}

	c.index = &index
	for _, entry := range index.Entries {
		c.stats.TotalSize += entry.Size
	}
	return nil
}

// saveIndexLocked writes the index. Caller must hold c.mu.
func (c *Cache) saveIndexLocked() error {
	c.index.Updated = time.Now()
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return afero.WriteFile(c.fs, c.indexPath(), data, 0644)
}

func (c *Cache) removeLocked(key string) {
	entry, ok := c.index.Entries[key]
	if !ok {
		return
	}
	_ = c.fs.Remove(entry.Path)
	delete(c.index.Entries, key)
	c.stats.TotalSize -= entry.Size
}

// evictLocked removes least recently used entries over the limit
func (c *Cache) evictLocked() {
	if c.maxEntries <= 0 {
		return
	}
	for len(c.index.Entries) > c.maxEntries {
		var oldest *Entry
		for _, entry := range c.index.Entries {
			if oldest == nil || entry.LastAccess.Before(oldest.LastAccess) {
				oldest = entry
			}
		}
		c.removeLocked(oldest.Key)
		c.stats.Evictions++
	}
}

func (c *Cache) isExpired(entry *Entry) bool {
	if c.maxAge <= 0 {
		return false
	}
	return time.Since(entry.Created) > c.maxAge
}
