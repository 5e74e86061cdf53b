// Package cache is a small TTL cache for read-heavy catalog listings.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

type TTL[V any] struct {
	ttl   time.Duration
	now   func() time.Time
	mu    sync.RWMutex
	items map[string]entry[V]
}

// New returns a cache; ttl <= 0 disables caching.
func New[V any](ttl time.Duration) *TTL[V] {
	return &TTL[V]{ttl: ttl, now: time.Now, items: make(map[string]entry[V])}
}

func (c *TTL[V]) Get(key string) (V, bool) {
	var zero V
	if c.ttl <= 0 {
		return zero, false
	}
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok || c.now().After(e.expires) {
		return zero, false
	}
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	c.items[key] = entry[V]{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry.
func (c *TTL[V]) Invalidate() {
	c.mu.Lock()
	c.items = make(map[string]entry[V])
	c.mu.Unlock()
}
