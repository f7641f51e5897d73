package intrusive

import (
	"unsafe"
)

// Handle comparisons are identity comparisons: two handles are equal iff they
// hold the same object address, no matter which element type carries it. The
// identity of an element is the data word of its interface value, which for
// the pointer elements Ptr manages is the pointee's address.

type iface struct {
	tab  unsafe.Pointer
	data unsafe.Pointer
}

// rawptr returns the address held in v, or 0 for a nil element. Converting v
// through any unwraps interface elements down to their dynamic pointer, so a
// *Derived and an interface holding the same *Derived yield the same address.
func rawptr[T RefCounted](v T) uintptr {
	a := any(v)
	return uintptr((*iface)(unsafe.Pointer(&a)).data)
}

// Equal reports whether a and b hold the same object, across same or
// differing element types. Two empty handles are equal.
func Equal[T, U RefCounted](a Ptr[T], b Ptr[U]) bool {
	return rawptr(a.p) == rawptr(b.p)
}

// EqualTo reports whether a holds exactly the raw element x.
func EqualTo[T, U RefCounted](a Ptr[T], x U) bool {
	return rawptr(a.p) == rawptr(x)
}

// Less imposes a strict address-based total order on handles, usable for
// sorted containers. The order carries no domain meaning.
func Less[T, U RefCounted](a Ptr[T], b Ptr[U]) bool {
	return rawptr(a.p) < rawptr(b.p)
}

// Equal reports whether p and q hold the same object.
func (p Ptr[T]) Equal(q Ptr[T]) bool {
	return rawptr(p.p) == rawptr(q.p)
}
