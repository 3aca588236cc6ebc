package sparse

import (
	"iter"
	"slices"

	"github.com/hupe1980/vex/buffer"
	"github.com/hupe1980/vex/resource"
)

// ErrAllocationFailed is returned when the array cannot grow.
var ErrAllocationFailed = buffer.ErrAllocationFailed

// Option configures an Array.
type Option = buffer.Option

// WithController accounts both buffers against rc.
func WithController(rc *resource.Controller) Option {
	return buffer.WithController(rc)
}

// Array is an ascending mapping from uint64 keys to values of type V.
// It is not safe for concurrent use.
type Array[V any] struct {
	keys   buffer.Buffer[uint64]
	values buffer.Buffer[V]
}

// New creates an array with room for keyCapacity keys and valueCapacity values.
func New[V any](keyCapacity, valueCapacity int, opts ...Option) (*Array[V], error) {
	a := &Array[V]{}
	if err := a.Init(keyCapacity, valueCapacity, opts...); err != nil {
		return nil, err
	}
	return a, nil
}

// Init initializes a zero or released array in place.
func (a *Array[V]) Init(keyCapacity, valueCapacity int, opts ...Option) error {
	if err := a.keys.Init(keyCapacity, opts...); err != nil {
		return err
	}
	if err := a.values.Init(valueCapacity, opts...); err != nil {
		a.keys.Release()
		return err
	}
	return nil
}

// Release frees both buffers. Values are dropped without inspection; owners
// of nested resources must release them first.
func (a *Array[V]) Release() {
	a.keys.Release()
	a.values.Release()
}

// Clear removes every entry and keeps the capacity.
func (a *Array[V]) Clear() {
	a.keys.Clear()
	a.values.Clear()
}

// Trim shrinks both buffers to their size.
func (a *Array[V]) Trim() {
	a.keys.Trim()
	a.values.Trim()
}

// Count returns the number of key/value pairs.
func (a *Array[V]) Count() int { return a.keys.Len() }

// Reserved returns the bytes reserved by both buffers.
func (a *Array[V]) Reserved() int64 { return a.keys.Reserved() + a.values.Reserved() }

// Search returns the smallest index i with Key(i) >= target, or Count()
// if there is none. It is both the position of target when present and
// its insertion point when absent.
func (a *Array[V]) Search(target uint64) int {
	i, _ := slices.BinarySearch(a.keys.Slice(), target)
	return i
}

func (a *Array[V]) find(key uint64) (int, bool) {
	return slices.BinarySearch(a.keys.Slice(), key)
}

// Key returns the key at index i.
func (a *Array[V]) Key(i int) uint64 { return *a.keys.At(i) }

// Value returns the value slot at index i.
func (a *Array[V]) Value(i int) *V { return a.values.At(i) }

// Put returns the slot for key, inserting a zero slot at its sorted
// position when key is absent. An existing slot is returned unmodified.
// On failure the array is unchanged, capacity and reservation included.
func (a *Array[V]) Put(key uint64) (*V, error) {
	i, found := a.find(key)
	if found {
		return a.values.At(i), nil
	}

	// Reserve in both buffers first so the inserts below cannot fail.
	n := a.keys.Len() + 1
	keyCapacity := a.keys.Cap()
	if err := a.keys.EnsureCapacity(n); err != nil {
		return nil, err
	}
	if err := a.values.EnsureCapacity(n); err != nil {
		a.keys.ShrinkTo(keyCapacity)
		return nil, err
	}

	ks, _ := a.keys.Insert(i, 1)
	ks[0] = key
	vs, _ := a.values.Insert(i, 1)
	return &vs[0], nil
}

// Remove deletes key and its slot. It reports false when key is absent.
func (a *Array[V]) Remove(key uint64) bool {
	i, found := a.find(key)
	if !found {
		return false
	}
	a.keys.Remove(i, 1)
	a.values.Remove(i, 1)
	return true
}

// Get returns the slot for key.
func (a *Array[V]) Get(key uint64) (*V, bool) {
	i, found := a.find(key)
	if !found {
		return nil, false
	}
	return a.values.At(i), true
}

// Keys yields the keys in ascending order.
func (a *Array[V]) Keys() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for _, k := range a.keys.Slice() {
			if !yield(k) {
				return
			}
		}
	}
}

// All yields key/slot pairs in ascending key order.
func (a *Array[V]) All() iter.Seq2[uint64, *V] {
	return func(yield func(uint64, *V) bool) {
		for i := 0; i < a.keys.Len(); i++ {
			if !yield(*a.keys.At(i), a.values.At(i)) {
				return
			}
		}
	}
}
