package omie

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/fivetwenty-io/omie-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrCacheMiss         = errors.New("key not found")
	ErrCacheEntryExpired = errors.New("entry expired")
)

// CacheEntry is a cached raw response.
type CacheEntry struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header,omitempty"`
	Data       []byte      `json:"data"`
	ExpiresAt  time.Time   `json:"expires_at"`
}

// Expired reports whether the entry is stale at now.
func (e *CacheEntry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Cache stores raw responses by request fingerprint.
type Cache interface {
	Get(ctx context.Context, key string) (*CacheEntry, error)
	Set(ctx context.Context, key string, entry *CacheEntry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key string) bool
}

// MemoryCache is an in-process LRU cache with per-entry expiry. Expired
// entries are dropped when read or by Cleanup; the least recently used
// entry is evicted when the cache is full.
type MemoryCache struct {
	items *lru.Cache[string, *CacheEntry]

	mu  sync.RWMutex
	now func() time.Time
}

// NewMemoryCache creates a memory cache holding at most maxSize entries.
func NewMemoryCache(maxSize int) *MemoryCache {
	if maxSize <= 0 {
		maxSize = constants.DefaultCacheSize
	}

	// lru.New only fails for a non-positive size.
	items, _ := lru.New[string, *CacheEntry](maxSize)

	return &MemoryCache{
		items: items,
		now:   time.Now,
	}
}

// SetClock replaces the time source used for expiry checks.
func (c *MemoryCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = now
}

func (c *MemoryCache) clock() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.now()
}

// Get retrieves a live entry.
func (c *MemoryCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	entry, ok := c.items.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}

	if entry.Expired(c.clock()) {
		c.items.Remove(key)

		return nil, ErrCacheEntryExpired
	}

	return entry, nil
}

// Set stores an entry, evicting the least recently used one when full.
func (c *MemoryCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	c.items.Add(key, entry)

	return nil
}

// Delete removes an entry.
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.items.Remove(key)

	return nil
}

// Clear removes all entries.
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.items.Purge()

	return nil
}

// Has reports whether a live entry exists without touching its recency.
func (c *MemoryCache) Has(ctx context.Context, key string) bool {
	entry, ok := c.items.Peek(key)

	return ok && !entry.Expired(c.clock())
}

// Len returns the number of stored entries, including expired ones not yet
// swept.
func (c *MemoryCache) Len() int {
	return c.items.Len()
}

// Cleanup removes expired entries and returns how many were removed.
func (c *MemoryCache) Cleanup() int {
	now := c.clock()
	removed := 0

	for _, key := range c.items.Keys() {
		entry, ok := c.items.Peek(key)
		if ok && entry.Expired(now) {
			c.items.Remove(key)

			removed++
		}
	}

	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (c *MemoryCache) RunCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DefaultCleanupInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Cleanup()
		}
	}
}
