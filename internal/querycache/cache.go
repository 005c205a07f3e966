// Package querycache memoizes read queries under string keys until they are
// invalidated.
package querycache

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	KeyPublicProducts = "products:public"
	KeyAdminProducts  = "products:admin"
	productKeyPrefix  = "product:"
)

// ProductKey is the cache key of a single product lookup.
func ProductKey(id string) string { return productKeyPrefix + id }

type entry struct {
	value    any
	storedAt time.Time
}

// Cache is safe for concurrent use. Only successful loads are stored.
type Cache struct {
	mu       sync.RWMutex
	entries  map[string]entry
	gens     map[string]uint64
	inflight map[string]int
	group    singleflight.Group
	ttl      time.Duration
	now      func() time.Time
}

// New creates a Cache. A ttl of zero keeps entries until invalidated.
func New(ttl time.Duration) *Cache {
	return &Cache{
		entries:  make(map[string]entry),
		gens:     make(map[string]uint64),
		inflight: make(map[string]int),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Fetch returns the cached value for key or runs load once for all
// concurrent callers.
func Fetch[T any](ctx context.Context, c *Cache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if v, ok := c.lookup(key); ok {
		return v.(T), nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		gen := c.begin(key)
		defer c.end(key)
		loaded, err := load(ctx)
		if err != nil {
			return nil, err
		}
		c.store(key, gen, loaded)
		return loaded, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Invalidate drops the given keys.
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.dropLocked(k)
	}
}

// InvalidatePrefix drops every key starting with prefix, including keys
// whose load is still running.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			c.dropLocked(k)
		}
	}
	for k := range c.inflight {
		if strings.HasPrefix(k, prefix) {
			c.dropLocked(k)
		}
	}
}

// InvalidateProducts drops every product query.
func (c *Cache) InvalidateProducts() {
	c.Invalidate(KeyAdminProducts, KeyPublicProducts)
	c.InvalidatePrefix(productKeyPrefix)
}

// Has reports whether a fresh entry exists for key.
func (c *Cache) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c *Cache) lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(e.storedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// begin marks key as loading and returns its generation.
func (c *Cache) begin(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]++
	return c.gens[key]
}

func (c *Cache) end(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[key]--
	if c.inflight[key] <= 0 {
		delete(c.inflight, key)
	}
}

// store skips the write when the key was invalidated after the load started.
func (c *Cache) store(key string, gen uint64, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[key] != gen {
		return
	}
	c.entries[key] = entry{value: v, storedAt: c.now()}
}

func (c *Cache) dropLocked(key string) {
	delete(c.entries, key)
	c.gens[key]++
	c.group.Forget(key)
}
