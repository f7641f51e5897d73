// Package objcache keeps intrusively counted objects alive under an LRU
// policy. The cache owns one reference per cached slot, so an object stays
// alive while cached even when no handle to it exists elsewhere.
package objcache

import (
	"sync"

	"github.com/hashicorp/golang-lru/simplelru"

	intrusive "github.com/alex-c-239/intrusive-ptr"
)

// Cache is an LRU cache of counted objects. All methods are safe for
// concurrent use.
type Cache[T intrusive.RefCounted] struct {
	mu  sync.Mutex
	lru *simplelru.LRU
}

// New creates a cache holding at most size objects.
func New[T intrusive.RefCounted](size int) (*Cache[T], error) {
	lru, err := simplelru.NewLRU(size, func(key interface{}, value interface{}) {
		intrusive.Release(value.(T))
	})
	if err != nil {
		return nil, err
	}
	return &Cache[T]{lru: lru}, nil
}

// Put caches p's object under key, taking one reference for the cached slot.
// A previously cached object under the same key is released, as is the victim
// if the insert evicts one. Caching through an empty handle is a no-op.
func (c *Cache[T]) Put(key interface{}, p intrusive.Ptr[T]) {
	if p.IsNil() {
		return
	}
	obj := p.Get()
	intrusive.Retain(obj)

	c.mu.Lock()
	// Add silently overwrites same-key entries without running the eviction
	// callback, which would leak the old slot's reference.
	c.lru.Remove(key)
	c.lru.Add(key, obj)
	c.mu.Unlock()
}

// Get returns a freshly retained handle over the object cached under key.
func (c *Cache[T]) Get(key interface{}) (intrusive.Ptr[T], bool) {
	c.mu.Lock()
	v, ok := c.lru.Get(key)
	if !ok {
		c.mu.Unlock()
		return intrusive.Ptr[T]{}, false
	}
	p := intrusive.NewRef(v.(T))
	c.mu.Unlock()
	return p, true
}

// Contains reports whether key is cached, without changing recency.
func (c *Cache[T]) Contains(key interface{}) bool {
	c.mu.Lock()
	ok := c.lru.Contains(key)
	c.mu.Unlock()
	return ok
}

// Remove drops the entry cached under key, releasing the cache's reference.
func (c *Cache[T]) Remove(key interface{}) bool {
	c.mu.Lock()
	ok := c.lru.Remove(key)
	c.mu.Unlock()
	return ok
}

// Purge drops every entry, releasing all of the cache's references.
func (c *Cache[T]) Purge() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.Lock()
	n := c.lru.Len()
	c.mu.Unlock()
	return n
}
