// Package pool provides a bounded free list of intrusively counted objects.
// Objects come out wrapped in a handle and return to the pool on their own
// when the last reference is released.
package pool

import (
	"errors"
	"sync"

	intrusive "github.com/alex-c-239/intrusive-ptr"
)

var (
	ErrOutOfObjects    = errors.New("Not enough free objects in the pool")
	ErrInvalidCapacity = errors.New("The requested capacity is invalid")
)

// Item carries one pooled value together with its reference count. When the
// count reaches zero the item puts itself back on its pool's free list, so a
// reused item always starts from a zero counter.
type Item[T any] struct {
	intrusive.RefCount
	Value T

	pool *Pool[T]
}

// Destroy returns the item to its pool. Called by the release path, not by
// users.
func (i *Item[T]) Destroy() {
	i.pool.put(i)
}

// Pool hands out counted objects up to a fixed capacity.
type Pool[T any] struct {
	mu       sync.Mutex
	free     []*Item[T]
	used     int
	capacity int
	reset    func(*T)
}

// NewPool creates a pool of at most capacity live objects. reset, if not nil,
// runs on an item's value each time the item returns to the free list.
func NewPool[T any](capacity int, reset func(*T)) (*Pool[T], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	return &Pool[T]{
		capacity: capacity,
		reset:    reset,
	}, nil
}

// Get returns a handle over a free item, allocating one if the free list is
// empty. The handle holds the item's only reference. Returns ErrOutOfObjects
// when capacity live items are already out.
func (p *Pool[T]) Get() (intrusive.Ptr[*Item[T]], error) {
	p.mu.Lock()
	if p.used >= p.capacity {
		p.mu.Unlock()
		return intrusive.Ptr[*Item[T]]{}, ErrOutOfObjects
	}
	var it *Item[T]
	if n := len(p.free); n > 0 {
		it = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	} else {
		it = &Item[T]{pool: p}
	}
	p.used++
	p.mu.Unlock()

	return intrusive.NewRef(it), nil
}

func (p *Pool[T]) put(it *Item[T]) {
	if p.reset != nil {
		p.reset(&it.Value)
	}
	p.mu.Lock()
	p.free = append(p.free, it)
	p.used--
	p.mu.Unlock()
}

// GetCapacity returns the pool's capacity.
func (p *Pool[T]) GetCapacity() int {
	return p.capacity
}

// GetUsed returns the number of items currently out of the pool.
func (p *Pool[T]) GetUsed() int {
	p.mu.Lock()
	used := p.used
	p.mu.Unlock()
	return used
}

// GetFree returns the number of items that may still be handed out.
func (p *Pool[T]) GetFree() int {
	return p.capacity - p.GetUsed()
}
