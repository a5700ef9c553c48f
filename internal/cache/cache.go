// Package cache provides thread-safe generic caching and the process-wide
// caches used while rendering pages.
package cache

import (
	"strings"
	"sync"
)

type Cache[K comparable, V any] struct {
	mu    sync.RWMutex
	items map[K]V
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{
		items: make(map[K]V),
	}
}

func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	val, ok := c.items[key]
	return val, ok
}

func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = value
}

func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// DeleteFunc removes every entry whose key matches and reports how many went.
func (c *Cache[K, V]) DeleteFunc(match func(K) bool) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.items {
		if match(k) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[K]V)
}

// PathCache holds values keyed by URL path. Every invalidation bumps a
// generation counter so a load that started before it cannot write its
// result back afterwards.
type PathCache[V any] struct {
	*Cache[string, V]
	generation uint64
}

func NewPathCache[V any]() *PathCache[V] {
	return &PathCache[V]{Cache: NewCache[string, V]()}
}

// Generation is taken before a load and handed to SetIfCurrent.
func (c *PathCache[V]) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// SetIfCurrent stores value only if no invalidation happened since gen was
// read. It reports whether the value was stored.
func (c *PathCache[V]) SetIfCurrent(path string, value V, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation != gen {
		return false
	}
	c.items[path] = value
	return true
}

// Invalidate drops path and everything beneath it, so invalidating "/blog"
// also drops "/blog/42".
func (c *PathCache[V]) Invalidate(path string) int {
	path = strings.TrimSuffix(path, "/")

	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	n := 0
	for key := range c.items {
		if key == path || strings.HasPrefix(key, path+"/") {
			delete(c.items, key)
			n++
		}
	}
	return n
}
