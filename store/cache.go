package store

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Cache is a thin wrapper around hashicorp/golang-lru's fixed-size cache,
// giving the hot-key read path the LRU contract from spec scenario 4:
// capacity N, eviction on the (N+1)th distinct key, and a Get that
// refreshes recency the same as a Put would.
type Cache struct {
	inner *lru.Cache[string, string]
}

// NewCache builds a cache holding at most capacity entries.
func NewCache(capacity int) (*Cache, error) {
	inner, err := lru.New[string, string](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache{inner: inner}, nil
}

// Put installs or refreshes key, evicting the least recently used entry if
// the cache was already at capacity.
func (c *Cache) Put(key, value string) {
	c.inner.Add(key, value)
}

// Get returns the cached value for key, refreshing its recency, and whether
// it was present.
func (c *Cache) Get(key string) (string, bool) {
	return c.inner.Get(key)
}

// Del evicts key, if present.
func (c *Cache) Del(key string) {
	c.inner.Remove(key)
}

// Len reports the number of entries currently cached.
func (c *Cache) Len() int {
	return c.inner.Len()
}
