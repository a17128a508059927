package mem

import (
	"errors"

	"github.com/awnumar/memguard"
)

// ErrAllocFailed is returned when the hardened allocator cannot provide
// guarded memory. This is an unrecoverable resource condition: it is not
// retried, since it typically indicates a misconfigured runtime or platform.
var ErrAllocFailed = errors.New("mem: secure allocation failed")

// Alloc returns n bytes of zeroed, guarded memory. The returned buffer must
// be released with its Destroy method, which wipes the region before it is
// returned to the system.
func Alloc(n int) (*memguard.LockedBuffer, error) {
	if n <= 0 {
		return nil, ErrAllocFailed
	}
	buf := memguard.NewBuffer(n)
	if buf == nil || !buf.IsAlive() {
		return nil, ErrAllocFailed
	}
	return buf, nil
}

// Buffer is a guarded fixed-capacity byte array for secret material. The
// zero Buffer is empty and ready for use. Buffers are moved, never copied:
// plain assignment of a non-empty Buffer aliases guarded memory and is a
// caller bug.
type Buffer struct {
	inner *memguard.LockedBuffer
}

// NewBuffer allocates a zeroed guarded buffer of the given size.
func NewBuffer(n int) (*Buffer, error) {
	inner, err := Alloc(n)
	if err != nil {
		return nil, err
	}
	return &Buffer{inner: inner}, nil
}

// NewBufferFrom allocates a guarded buffer holding a copy of b, then wipes b.
func NewBufferFrom(b []byte) (*Buffer, error) {
	buf, err := NewBuffer(len(b))
	if err != nil {
		return nil, err
	}
	copy(buf.inner.Bytes(), b)
	memguard.WipeBytes(b)
	return buf, nil
}

// Bytes exposes the guarded region. The slice is only valid until the next
// Reset/ResetSize/Load/Destroy call.
func (b *Buffer) Bytes() []byte {
	if b.inner == nil {
		return nil
	}
	return b.inner.Bytes()
}

// Len returns the buffer capacity, or 0 when empty.
func (b *Buffer) Len() int {
	if b.inner == nil {
		return 0
	}
	return b.inner.Size()
}

// Reset destroys the contents: the guarded region is wiped and released.
// Reset of an empty buffer is a no-op.
func (b *Buffer) Reset() {
	if b.inner != nil {
		b.inner.Destroy()
		b.inner = nil
	}
}

// ResetSize wipes and releases the current contents, then re-establishes a
// zeroed region of the given size.
func (b *Buffer) ResetSize(n int) error {
	b.Reset()
	inner, err := Alloc(n)
	if err != nil {
		return err
	}
	b.inner = inner
	return nil
}

// Load wipes and releases the current contents, then re-establishes the
// buffer as a guarded copy of data. The source slice is wiped afterwards.
func (b *Buffer) Load(data []byte) error {
	if err := b.ResetSize(len(data)); err != nil {
		return err
	}
	copy(b.inner.Bytes(), data)
	memguard.WipeBytes(data)
	return nil
}

// Wiper gives zero-on-release semantics to small stack-resident key
// material that does not warrant a full guarded allocation. The caller
// keeps using the wrapped slice directly; Release guarantees every byte is
// overwritten with zero.
type Wiper struct {
	buf []byte
}

// Wipe wraps b for deferred zeroing:
//
//	key := make([]byte, 32)
//	defer mem.Wipe(key).Release()
func Wipe(b []byte) *Wiper { return &Wiper{buf: b} }

// Release zeroes the wrapped slice. Safe to call more than once.
func (w *Wiper) Release() {
	memguard.WipeBytes(w.buf)
}
