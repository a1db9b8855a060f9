package cffi

import (
	"runtime"
	"slices"
	"sync"
	"unsafe"
)

// Text is the set of argument types accepted where the foreign side takes
// a NUL-terminated string.
type Text interface {
	~string | ~[]byte
}

// CString owns a NUL-terminated copy of a Go string. The pointer returned
// by Ptr stays valid until Release.
type CString struct {
	buf []byte
}

// NewCString copies s into a NUL-terminated buffer. It fails with
// ErrInteriorNUL when s contains a NUL byte.
func NewCString(s string) (*CString, error) {
	buf, err := byteSliceFromString(s)
	if err != nil {
		return nil, ErrInteriorNUL
	}
	return &CString{buf: buf}, nil
}

// MustCString is NewCString for wrappers that cannot report an error.
func MustCString(s string) *CString {
	c, err := NewCString(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Ptr returns a pointer to the first byte of the copy.
func (c *CString) Ptr() *byte {
	return unsafe.SliceData(c.buf)
}

// Release ends the holder's lifetime. Generated wrappers defer it right
// after conversion so the buffer outlives the foreign call.
func (c *CString) Release() {
	runtime.KeepAlive(c.buf)
	c.buf = nil
}

// Buffer owns a copy of a slice materialized for one foreign call.
type Buffer[T any] struct {
	data []T
}

// NewBuffer copies src.
func NewBuffer[T any](src []T) *Buffer[T] {
	return &Buffer[T]{data: slices.Clone(src)}
}

// Ptr returns a pointer to the first element, or nil for an empty buffer.
func (b *Buffer[T]) Ptr() *T {
	if len(b.data) == 0 {
		return nil
	}
	return unsafe.SliceData(b.data)
}

// Release ends the buffer's lifetime.
func (b *Buffer[T]) Release() {
	runtime.KeepAlive(b.data)
	b.data = nil
}

// SlicePtr returns a pointer to the first element of s, or nil when s is
// empty. The caller keeps s alive across the call.
func SlicePtr[T any](s []T) *T {
	if len(s) == 0 {
		return nil
	}
	return unsafe.SliceData(s)
}

var leaked struct {
	sync.Mutex
	bufs [][]byte
}

// LeakCString copies s into a NUL-terminated buffer that is never freed
// and returns a pointer to it. Ownership passes to the foreign side;
// nothing the callee writes is copied back.
func LeakCString(s string) (*byte, error) {
	buf, err := byteSliceFromString(s)
	if err != nil {
		return nil, ErrInteriorNUL
	}
	leaked.Lock()
	leaked.bufs = append(leaked.bufs, buf)
	leaked.Unlock()
	return unsafe.SliceData(buf), nil
}

// MustLeakCString is LeakCString for wrappers that cannot report an error.
func MustLeakCString(s string) *byte {
	p, err := LeakCString(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Leaked returns the number of strings handed over with LeakCString.
func Leaked() int {
	leaked.Lock()
	defer leaked.Unlock()
	return len(leaked.bufs)
}

// GoString copies the NUL-terminated string at p. A nil p yields "".
func GoString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return string(unsafe.Slice(p, n))
}
