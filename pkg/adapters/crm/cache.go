package crm

import (
	"sync"
	"time"
)

const defaultCacheTTL = 5 * time.Minute

// cache is a single-value TTL cache for CRM reference data. A failed refresh
// falls back to the stale value when one exists.
type cache[T any] struct {
	mu      sync.Mutex
	ttl     time.Duration
	value   T
	loaded  bool
	expires time.Time
}

func newCache[T any](ttl time.Duration) *cache[T] {
	return &cache[T]{ttl: ttl}
}

func (c *cache[T]) get(fetch func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && time.Now().Before(c.expires) {
		return c.value, nil
	}

	value, err := fetch()
	if err != nil {
		if c.loaded {
			return c.value, nil
		}
		var zero T
		return zero, err
	}

	c.value = value
	c.loaded = true
	c.expires = time.Now().Add(c.ttl)
	return value, nil
}

// invalidate drops the cached value.
func (c *cache[T]) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
}
