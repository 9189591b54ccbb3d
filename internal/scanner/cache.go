package scanner

import (
	"sync"
	"time"

	"github.com/sells-group/quote-sync/internal/model"
)

// DefaultTTL is how long a scan result is served from cache.
const DefaultTTL = 300 * time.Second

// Cache holds the last scan result until it expires. Concurrent scans may
// overwrite each other's result; the last Set wins.
type Cache struct {
	mu        sync.Mutex
	ttl       time.Duration
	now       func() time.Time
	entries   []model.RemoteEntry
	expiresAt time.Time
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithClock overrides the cache's time source.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		c.now = now
	}
}

// NewCache creates a cache with the given TTL (DefaultTTL when <= 0).
func NewCache(ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{ttl: ttl, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns a copy of the cached entries while they are fresh.
func (c *Cache) Get() ([]model.RemoteEntry, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil || !c.now().Before(c.expiresAt) {
		return nil, time.Time{}, false
	}
	return append(make([]model.RemoteEntry, 0, len(c.entries)), c.entries...), c.expiresAt, true
}

// Set stores entries and restarts the TTL.
func (c *Cache) Set(entries []model.RemoteEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(make([]model.RemoteEntry, 0, len(entries)), entries...)
	c.expiresAt = c.now().Add(c.ttl)
}

// Invalidate drops the cached result.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.expiresAt = time.Time{}
}
