package preview

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	// DefaultCacheTTL is how long a cached preview stays fresh.
	DefaultCacheTTL = time.Hour

	// DefaultCacheMaxSize is the entry capacity bound.
	DefaultCacheMaxSize = 1000
)

type cacheEntry struct {
	meta     *LinkMetadata
	cachedAt time.Time
}

// Cache is a TTL-aware LRU store of URL → LinkMetadata. Expiry is lazy: an
// entry past its TTL is removed when read, not by a background sweep, so
// expired-but-unread entries may occupy capacity until evicted. The outer
// mutex makes each read-check-remove and insert-with-eviction atomic.
//
// Construct one per process and inject it; there is no package-level instance.
type Cache struct {
	ttl time.Duration

	mu      sync.Mutex
	entries *lru.Cache[string, cacheEntry]

	now func() time.Time
}

func NewCache(ttl time.Duration, maxSize int) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	if maxSize <= 0 {
		maxSize = DefaultCacheMaxSize
	}

	entries, err := lru.New[string, cacheEntry](maxSize)
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}

	return &Cache{
		ttl:     ttl,
		entries: entries,
		now:     time.Now,
	}, nil
}

// Get returns the cached metadata for url, or nil on a miss. A fresh hit is
// promoted to most-recently-used; a stale hit is removed and reported as a
// miss.
func (c *Cache) Get(url string) *LinkMetadata {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries.Get(url)
	if !ok {
		return nil
	}

	if c.now().Sub(entry.cachedAt) > c.ttl {
		c.entries.Remove(url)

		return nil
	}

	return entry.meta
}

// Set stores metadata for url at the most-recently-used position, resetting
// both recency and timestamp for an existing key. When at capacity the single
// least-recently-used entry is evicted.
func (c *Cache) Set(url string, meta *LinkMetadata) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Add(url, cacheEntry{meta: meta, cachedAt: c.now()})
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries.Purge()
}

// Len returns the number of resident entries, including any that are expired
// but not yet read.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.entries.Len()
}
