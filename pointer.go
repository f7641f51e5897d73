package intrusive

// Ptr is a handle sharing ownership of one counted object. It holds a single
// element of type T, which must be a pointer type or an interface carrying a
// pointer; the zero value is an empty handle.
//
// Every retained handle stands for exactly one unit of the object's count.
// Handles created with Adopt or emptied with Detach are the documented
// exception: they move an already-counted reference without touching the
// counter.
//
// Conversions along subtype relationships use the raw accessors, so they are
// checked by ordinary assignability at the call site: NewRef[Base](p.Get())
// shares the reference under a broader element type, Adopt[Base](p.Detach())
// transfers it without a count change.
type Ptr[T RefCounted] struct {
	p T
}

// NewRef returns a handle over p, retaining it if non-nil.
func NewRef[T RefCounted](p T) Ptr[T] {
	if rawptr(p) != 0 {
		p.Retain()
	}
	return Ptr[T]{p: p}
}

// Adopt returns a handle over p without retaining it. The caller is handing
// over a reference that is already counted; the handle becomes responsible
// for the one matching release. Adopting an address the caller does not own
// a reference to ends in premature destruction.
func Adopt[T RefCounted](p T) Ptr[T] {
	return Ptr[T]{p: p}
}

// Get returns the held element without affecting ownership.
func (p Ptr[T]) Get() T {
	return p.p
}

// IsNil reports whether the handle is empty.
func (p Ptr[T]) IsNil() bool {
	return rawptr(p.p) == 0
}

// Clone returns a new handle sharing the object, retaining it.
func (p Ptr[T]) Clone() Ptr[T] {
	return NewRef(p.p)
}

// Move transfers the reference into the returned handle without touching the
// counter. p becomes empty.
func (p *Ptr[T]) Move() Ptr[T] {
	out := Ptr[T]{p: p.p}
	p.clear()
	return out
}

// Detach returns the held element and empties the handle without releasing.
// The caller takes over responsibility for the one outstanding release,
// typically by handing the element to Adopt or Attach.
func (p *Ptr[T]) Detach() T {
	out := p.p
	p.clear()
	return out
}

// Release drops the handle's reference if it holds one and empties the
// handle. The object is destroyed when this was its last reference. Calling
// Release on an empty handle is a no-op.
func (p *Ptr[T]) Release() {
	if rawptr(p.p) != 0 {
		Release(p.p)
	}
	p.clear()
}

// Set makes p share q's object, retaining it before the old reference is
// dropped. Setting a handle to itself, or to another handle over the same
// object, leaves the count unchanged.
func (p *Ptr[T]) Set(q *Ptr[T]) {
	if rawptr(p.p) == rawptr(q.p) {
		return
	}
	tmp := q.Clone()
	p.Swap(&tmp)
	tmp.Release()
}

// Take moves q's reference into p, dropping p's old one. q becomes empty and
// no counter changes besides the drop of p's previous object. Taking from a
// handle over the same object leaves both handles as they are.
func (p *Ptr[T]) Take(q *Ptr[T]) {
	if rawptr(p.p) == rawptr(q.p) {
		return
	}
	tmp := q.Move()
	p.Swap(&tmp)
	tmp.Release()
}

// ResetTo replaces the held reference with a newly retained one to x. The new
// reference is secured before the old one is dropped, so resetting to the
// address already held is safe.
func (p *Ptr[T]) ResetTo(x T) {
	tmp := NewRef(x)
	p.Swap(&tmp)
	tmp.Release()
}

// Attach replaces the held reference with x without retaining it, mirroring
// Adopt the way ResetTo mirrors NewRef. The previous reference is dropped.
func (p *Ptr[T]) Attach(x T) {
	tmp := Adopt(x)
	p.Swap(&tmp)
	tmp.Release()
}

// Swap exchanges the elements of two handles. No counters change.
func (p *Ptr[T]) Swap(q *Ptr[T]) {
	p.p, q.p = q.p, p.p
}

func (p *Ptr[T]) clear() {
	var zero T
	p.p = zero
}
