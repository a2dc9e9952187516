// Package cache is a small in-memory TTL cache used to keep repeated status
// reads off the history store.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	expiresAt time.Time
}

// Cache maps keys to values that expire after a TTL. Expired entries are
// swept by a background goroutine; Stop shuts it down.
type Cache struct {
	mu          sync.RWMutex
	items       map[string]entry
	ttl         time.Duration
	ticker      *time.Ticker
	stopCleanup chan struct{}
}

// New creates a cache whose entries live for ttl.
func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	c := &Cache{
		items:       make(map[string]entry),
		ttl:         ttl,
		ticker:      time.NewTicker(ttl),
		stopCleanup: make(chan struct{}),
	}
	go c.cleanup()
	return c
}

func (c *Cache) cleanup() {
	for {
		select {
		case <-c.ticker.C:
			now := time.Now()
			c.mu.Lock()
			for key, e := range c.items {
				if now.After(e.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		case <-c.stopCleanup:
			c.ticker.Stop()
			return
		}
	}
}

// Stop ends the cleanup goroutine.
func (c *Cache) Stop() {
	close(c.stopCleanup)
}

// Get returns the live value for key, if any.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.items[key]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for the cache's TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

// Delete removes key.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Clear removes everything.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]entry)
}
