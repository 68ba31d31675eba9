package storage

import (
	"sync"
	"time"

	"github.com/m3rciful/typekeeper/internal/domain"
)

// DefaultCacheTTL is how long a cached record is trusted before reloading.
const DefaultCacheTTL = 5 * time.Minute

type cacheEntry struct {
	rec    domain.UserRecord
	stored time.Time
}

// Cache keeps recently used records in memory. It is never authoritative:
// an expired or missing entry means the caller reloads from the Store.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[int64]cacheEntry
	now     func() time.Time
}

// NewCache creates a cache; a non-positive ttl selects DefaultCacheTTL.
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[int64]cacheEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached record while it is younger than the TTL.
func (c *Cache) Get(userID int64) (domain.UserRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok {
		return domain.UserRecord{}, false
	}
	if c.now().Sub(e.stored) >= c.ttl {
		delete(c.entries, userID)
		return domain.UserRecord{}, false
	}
	return e.rec.Clone(), true
}

// Put overwrites the entry for rec.UserID and restarts its TTL.
func (c *Cache) Put(rec domain.UserRecord) {
	c.mu.Lock()
	c.entries[rec.UserID] = cacheEntry{rec: rec.Clone(), stored: c.now()}
	c.mu.Unlock()
}

// Invalidate drops the entry for userID.
func (c *Cache) Invalidate(userID int64) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for id, e := range c.entries {
		if now.Sub(e.stored) >= c.ttl {
			delete(c.entries, id)
			n++
		}
	}
	return n
}

// Len reports the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
