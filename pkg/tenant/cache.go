package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache stores tenants for request-scoped lookups. Keys are caller-chosen
// (id or code).
type Cache interface {
	Get(ctx context.Context, key string) (*Tenant, bool)
	Set(ctx context.Context, key string, t *Tenant) error
	Delete(ctx context.Context, key string) error
}

// NoOpCache disables caching.
type NoOpCache struct{}

func (NoOpCache) Get(ctx context.Context, key string) (*Tenant, bool) { return nil, false }

func (NoOpCache) Set(ctx context.Context, key string, t *Tenant) error { return nil }

func (NoOpCache) Delete(ctx context.Context, key string) error { return nil }

type cacheEntry struct {
	tenant    Tenant
	expiresAt time.Time
}

// MemoryCache is a TTL-bounded in-process cache.
type MemoryCache struct {
	mu    sync.RWMutex
	items map[string]cacheEntry
	ttl   time.Duration
}

// NewMemoryCache creates a cache whose entries expire after ttl.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MemoryCache{
		items: make(map[string]cacheEntry),
		ttl:   ttl,
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*Tenant, bool) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		return nil, false
	}

	cp := entry.tenant
	return &cp, true
}

func (c *MemoryCache) Set(ctx context.Context, key string, t *Tenant) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheEntry{tenant: *t, expiresAt: time.Now().Add(c.ttl)}
	return nil
}

func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}
