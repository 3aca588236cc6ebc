package buffer

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/hupe1980/vex/resource"
)

// ErrAllocationFailed is returned when a buffer cannot obtain memory for growth.
var ErrAllocationFailed = errors.New("buffer: allocation failed")

// GrowthNumerator and GrowthDenominator define the capacity growth factor.
const (
	GrowthNumerator   = 3
	GrowthDenominator = 2
)

// Option configures a Buffer.
type Option func(*options)

type options struct {
	rc *resource.Controller
}

// WithController accounts the buffer's storage against rc.
// A nil controller disables accounting.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// Buffer is a contiguous, resizable sequence of T.
// len(data) is the capacity; data[size:] holds zero values.
type Buffer[T any] struct {
	data []T
	size int
	rc   *resource.Controller
}

// Bytes is the untyped byte buffer.
type Bytes = Buffer[byte]

// New creates a buffer with room for capacity elements.
func New[T any](capacity int, opts ...Option) (*Buffer[T], error) {
	b := &Buffer[T]{}
	if err := b.Init(capacity, opts...); err != nil {
		return nil, err
	}
	return b, nil
}

// NewBytes creates a byte buffer with room for capacity bytes.
func NewBytes(capacity int, opts ...Option) (*Bytes, error) {
	return New[byte](capacity, opts...)
}

// Init initializes a zero or released buffer in place.
// On failure b is left zero and must not be used before a successful Init.
func (b *Buffer[T]) Init(capacity int, opts ...Option) error {
	if capacity < 0 {
		panic(fmt.Sprintf("buffer: negative capacity %d", capacity))
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	*b = Buffer[T]{}
	if err := acquire(o.rc, bytesFor[T](capacity)); err != nil {
		return err
	}

	b.rc = o.rc
	if capacity > 0 {
		b.data = make([]T, capacity)
	}
	return nil
}

// Release returns the storage and its reservation.
// A released buffer has size and capacity zero and can be re-initialized.
func (b *Buffer[T]) Release() {
	b.rc.ReleaseMemory(bytesFor[T](len(b.data)))
	b.data = nil
	b.size = 0
}

// Clear sets the size to zero and keeps the capacity.
func (b *Buffer[T]) Clear() {
	clear(b.data[:b.size])
	b.size = 0
}

// Len returns the number of live elements.
func (b *Buffer[T]) Len() int { return b.size }

// Cap returns the number of elements the buffer holds without growing.
func (b *Buffer[T]) Cap() int { return len(b.data) }

// Reserved returns the number of bytes currently reserved for the storage.
func (b *Buffer[T]) Reserved() int64 { return bytesFor[T](len(b.data)) }

// Trim shrinks the capacity to exactly Len.
func (b *Buffer[T]) Trim() {
	if len(b.data) == b.size {
		return
	}
	// Shrinking only releases memory and cannot be refused.
	_ = b.setCapacity(b.size)
}

// ShrinkTo lowers the capacity to max(capacity, Len). It never grows the
// buffer, so it cannot fail. Callers use it to undo an EnsureCapacity.
func (b *Buffer[T]) ShrinkTo(capacity int) {
	capacity = max(capacity, b.size)
	if capacity >= len(b.data) {
		return
	}
	_ = b.setCapacity(capacity)
}

// EnsureCapacity grows the buffer so that it can hold n elements.
// The new capacity is max(n, Cap()*3/2).
func (b *Buffer[T]) EnsureCapacity(n int) error {
	if n <= len(b.data) {
		return nil
	}

	newCapacity := len(b.data) * GrowthNumerator / GrowthDenominator
	if newCapacity < n {
		newCapacity = n
	}
	return b.setCapacity(newCapacity)
}

func (b *Buffer[T]) setCapacity(newCapacity int) error {
	oldCapacity := len(b.data)
	if newCapacity > oldCapacity {
		if err := acquire(b.rc, bytesFor[T](newCapacity-oldCapacity)); err != nil {
			return err
		}
	}

	var data []T
	if newCapacity > 0 {
		data = make([]T, newCapacity)
		copy(data, b.data[:b.size])
	}
	b.data = data

	if newCapacity < oldCapacity {
		b.rc.ReleaseMemory(bytesFor[T](oldCapacity - newCapacity))
	}
	return nil
}

// Push appends n zero elements and returns them for the caller to fill.
func (b *Buffer[T]) Push(n int) ([]T, error) {
	if n < 0 {
		panic(fmt.Sprintf("buffer: negative push %d", n))
	}

	newSize := b.size + n
	if err := b.EnsureCapacity(newSize); err != nil {
		return nil, err
	}

	s := b.data[b.size:newSize:newSize]
	b.size = newSize
	return s, nil
}

// PushValues appends values.
func (b *Buffer[T]) PushValues(values ...T) error {
	s, err := b.Push(len(values))
	if err != nil {
		return err
	}
	copy(s, values)
	return nil
}

// Pop removes n elements from the end.
func (b *Buffer[T]) Pop(n int) {
	if n < 0 || n > b.size {
		panic(fmt.Sprintf("buffer: pop of %d exceeds size %d", n, b.size))
	}

	newSize := b.size - n
	clear(b.data[newSize:b.size])
	b.size = newSize
}

// Resize replaces the oldN elements at offset with newN elements, shifting
// the tail. It returns the newN elements at offset: the first min(oldN, newN)
// keep their previous values, any additional ones are zero.
func (b *Buffer[T]) Resize(offset, oldN, newN int) ([]T, error) {
	if offset < 0 || oldN < 0 || newN < 0 || offset > b.size || offset+oldN > b.size {
		panic(fmt.Sprintf("buffer: resize [%d:%d] to %d out of range for size %d", offset, offset+oldN, newN, b.size))
	}

	oldSize := b.size
	newSize := oldSize - oldN + newN
	if err := b.EnsureCapacity(newSize); err != nil {
		return nil, err
	}

	// copy handles overlapping ranges.
	copy(b.data[offset+newN:newSize], b.data[offset+oldN:oldSize])
	if newN > oldN {
		clear(b.data[offset+oldN : offset+newN])
	} else if newSize < oldSize {
		clear(b.data[newSize:oldSize])
	}
	b.size = newSize

	return b.data[offset : offset+newN : offset+newN], nil
}

// Insert opens n zero elements at offset.
func (b *Buffer[T]) Insert(offset, n int) ([]T, error) {
	return b.Resize(offset, 0, n)
}

// Remove deletes n elements at offset. It never allocates.
func (b *Buffer[T]) Remove(offset, n int) {
	// A shrinking resize cannot fail.
	_, _ = b.Resize(offset, n, 0)
}

// Get returns the live elements from offset to Len. Get(Len()) is empty.
func (b *Buffer[T]) Get(offset int) []T {
	if offset < 0 || offset > b.size {
		panic(fmt.Sprintf("buffer: offset %d out of range for size %d", offset, b.size))
	}
	return b.data[offset:b.size:b.size]
}

// At returns a pointer to the element at index i.
func (b *Buffer[T]) At(i int) *T {
	if i < 0 || i >= b.size {
		panic(fmt.Sprintf("buffer: index %d out of range for size %d", i, b.size))
	}
	return &b.data[i]
}

// Slice returns all live elements.
func (b *Buffer[T]) Slice() []T {
	return b.data[:b.size:b.size]
}

// Append copies the live elements of other onto the end of b.
func (b *Buffer[T]) Append(other *Buffer[T]) error {
	n := other.size
	dst, err := b.Push(n)
	if err != nil {
		return err
	}
	// other may be b; its first n elements survived the growth.
	copy(dst, other.data[:n])
	return nil
}

func acquire(rc *resource.Controller, n int64) error {
	if err := rc.AcquireMemory(n); err != nil {
		return fmt.Errorf("%w: %d bytes: %w", ErrAllocationFailed, n, err)
	}
	return nil
}

func bytesFor[T any](n int) int64 {
	var zero T
	return int64(unsafe.Sizeof(zero)) * int64(n)
}
