package intrusive_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	intrusive "github.com/alex-c-239/intrusive-ptr"
)

type thing struct {
	intrusive.RefCount
	value    int
	destroys int32
}

func (t *thing) Destroy() {
	atomic.AddInt32(&t.destroys, 1)
}

func (t *thing) Describe() string {
	return "thing"
}

// describer is a narrower view of thing, used by the conversion and
// comparison tests.
type describer interface {
	intrusive.RefCounted
	Describe() string
}

func Test_RetainRelease(t *testing.T) {
	obj := &thing{}
	require.Equal(t, 0, obj.GetRefCount())

	intrusive.Retain(obj)
	intrusive.Retain(obj)
	require.Equal(t, 2, obj.GetRefCount())

	intrusive.Release(obj)
	require.Equal(t, 1, obj.GetRefCount())
	require.Equal(t, int32(0), obj.destroys)

	intrusive.Release(obj)
	require.Equal(t, 0, obj.GetRefCount())
	require.Equal(t, int32(1), obj.destroys)
}

func Test_ReleaseUnderflow(t *testing.T) {
	obj := &thing{}
	require.Panics(t, func() {
		obj.Release()
	})
}

func Test_DestroyExactlyOnce(t *testing.T) {
	obj := &thing{}

	a := intrusive.NewRef(obj)
	require.Equal(t, 1, obj.GetRefCount())

	b := a.Clone()
	require.Equal(t, 2, obj.GetRefCount())

	a.Release()
	require.Equal(t, 1, obj.GetRefCount())
	require.Equal(t, int32(0), obj.destroys)

	b.Release()
	require.Equal(t, 0, obj.GetRefCount())
	require.Equal(t, int32(1), obj.destroys)
}

// The count is identity state. A struct copy of a counted object must start
// from a fresh counter instead of inheriting the original's.
func Test_CopyKeepsCountsApart(t *testing.T) {
	obj := &thing{value: 7}
	h := intrusive.NewRef(obj)

	cp := *obj
	cp.RefCount = intrusive.RefCount{}
	require.Equal(t, 7, cp.value)
	require.Equal(t, 0, cp.GetRefCount())

	hc := intrusive.NewRef(&cp)
	require.Equal(t, 1, cp.GetRefCount())
	require.Equal(t, 1, obj.GetRefCount())

	hc.Release()
	require.Equal(t, 0, cp.GetRefCount())
	require.Equal(t, 1, obj.GetRefCount())

	h.Release()
}

// foreign counts references without embedding RefCount and frees itself
// inside its own Release, the way the two-function protocol allows.
type foreign struct {
	refs  int32
	freed int32
}

func (f *foreign) Retain() {
	atomic.AddInt32(&f.refs, 1)
}

func (f *foreign) Release() bool {
	if atomic.AddInt32(&f.refs, -1) == 0 {
		atomic.AddInt32(&f.freed, 1)
		return true
	}
	return false
}

func (f *foreign) GetRefCount() int {
	return int(atomic.LoadInt32(&f.refs))
}

func Test_ForeignCountedType(t *testing.T) {
	f := &foreign{}

	h := intrusive.NewRef(f)
	require.Equal(t, 1, f.GetRefCount())

	c := h.Clone()
	require.Equal(t, 2, f.GetRefCount())

	c.Release()
	require.Equal(t, int32(0), f.freed)

	h.Release()
	require.Equal(t, int32(1), f.freed)
}

func Test_ConcurrentCounting(t *testing.T) {
	const workers = 16
	const iterations = 1000

	obj := &thing{}
	base := intrusive.NewRef(obj)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				h := base.Clone()
				h.Release()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, obj.GetRefCount())
	require.Equal(t, int32(0), obj.destroys)

	base.Release()
	require.Equal(t, int32(1), obj.destroys)
}
