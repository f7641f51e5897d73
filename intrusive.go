// Package intrusive implements reference counting where the count lives
// inside the managed object itself. Objects embed RefCount (or implement the
// RefCounted protocol on their own) and are handled through Ptr, which keeps
// the count in step with the handles that share the object.
package intrusive

import (
	"sync/atomic"
)

// RefCounted is the two-operation counting protocol Ptr drives its element
// through. Embedding RefCount provides an implementation; a type that keeps
// its count elsewhere only has to expose the same three methods.
type RefCounted interface {
	// Retain adds one reference.
	Retain()
	// Release drops one reference and reports whether it dropped the last
	// one. The reporting decrement is the only one allowed to observe zero.
	Release() bool
	// GetRefCount returns the current count. Under concurrent use this is a
	// stale snapshot the moment it returns; it is informational only.
	GetRefCount() int
}

// Destroyer is implemented by counted objects that need cleanup once the last
// reference is gone. Release discovers it through the interface value, so the
// concrete type's hook runs even when only a narrower interface is visible at
// the release site.
type Destroyer interface {
	Destroy()
}

// RefCount supplies an intrusive atomic reference count. The zero value is
// ready for use and starts at zero; the first handle taken over the embedding
// object brings it to one.
//
// The count is identity state, not value state. A struct copy of an embedding
// object must not inherit the original's count: assign a fresh RefCount{} to
// the copied field before handing the copy out.
type RefCount struct {
	refCount int32
}

// Retain adds one reference. It never fails; counter overflow is not guarded.
func (c *RefCount) Retain() {
	atomic.AddInt32(&c.refCount, 1)
}

// Release drops one reference and reports whether this call dropped the last
// one. Releasing an object whose count is already zero is a bookkeeping bug
// on the caller's side and panics.
func (c *RefCount) Release() bool {
	refs := atomic.AddInt32(&c.refCount, -1)
	if refs < 0 {
		panic("Release of a reference count that is already zero")
	}
	return refs == 0
}

// GetRefCount returns the current count. See RefCounted.
func (c *RefCount) GetRefCount() int {
	return int(atomic.LoadInt32(&c.refCount))
}

// Retain adds a reference to o.
func Retain(o RefCounted) {
	o.Retain()
}

// Release drops a reference to o and, when it was the last one, destroys the
// object through its Destroy hook if it has one. Types that free themselves
// inside their own Release method compose the same way and simply have no
// hook to call.
func Release(o RefCounted) {
	if o.Release() {
		if d, ok := o.(Destroyer); ok {
			d.Destroy()
		}
	}
}
