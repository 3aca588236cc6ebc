package vex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/hupe1980/vex/hashtable"
	"github.com/hupe1980/vex/resource"
	"github.com/hupe1980/vex/snapshot"
)

// Map is a hash map whose memory is charged against a resource budget.
//
// A Map is not safe for concurrent use.
type Map[K, V any] struct {
	table   *hashtable.Table[K, V]
	rc      *resource.Controller
	logger  *Logger
	metrics MetricsCollector
}

// New creates a Map for comparable keys.
//
// Keys are hashed with the runtime hasher unless WithHasher is given.
func New[K comparable, V any](opts ...Option) (*Map[K, V], error) {
	o := applyOptions(opts)

	var hasher hashtable.Hasher[K] = hashtable.NewComparable[K]()
	if o.hasher != nil {
		h, ok := o.hasher.(hashtable.Hasher[K])
		if !ok {
			return nil, fmt.Errorf("%w: got %T", ErrHasherMismatch, o.hasher)
		}
		hasher = h
	}

	return newMap[K, V](hasher, o)
}

// NewWithHasher creates a Map for any key type, including keys that do not
// support ==.
func NewWithHasher[K, V any](hasher hashtable.Hasher[K], opts ...Option) (*Map[K, V], error) {
	o := applyOptions(opts)
	if o.hasher != nil {
		return nil, fmt.Errorf("%w: WithHasher conflicts with an explicit hasher", ErrHasherMismatch)
	}
	return newMap[K, V](hasher, o)
}

func newMap[K, V any](hasher hashtable.Hasher[K], o options) (*Map[K, V], error) {
	table, err := hashtable.New[K, V](hasher,
		hashtable.WithCapacity(o.capacity),
		hashtable.WithChainCapacity(o.chainCapacity),
		hashtable.WithController(o.controller),
		hashtable.WithLogger(o.logger.Logger),
	)
	if err != nil {
		return nil, translateError(err, o.controller)
	}

	return &Map[K, V]{
		table:   table,
		rc:      o.controller,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

// Put sets the value for key, replacing any previous value.
// On error the map is unchanged.
func (m *Map[K, V]) Put(key K, value V) error {
	start := time.Now()
	err := m.translate("put", m.table.Put(key, value))
	m.metrics.RecordPut(time.Since(start), err)
	return err
}

// Get returns the value for key.
func (m *Map[K, V]) Get(key K) (V, bool) {
	start := time.Now()
	v, ok := m.table.Get(key)
	m.metrics.RecordGet(time.Since(start), ok)
	if !ok {
		var zero V
		return zero, false
	}
	return *v, true
}

// Lookup is like Get but reports absence as ErrNotFound.
func (m *Map[K, V]) Lookup(key K) (V, error) {
	v, ok := m.Get(key)
	if !ok {
		return v, fmt.Errorf("%w: %v", ErrNotFound, key)
	}
	return v, nil
}

// Ref returns a pointer to the stored value for in-place updates.
// The pointer is invalidated by the next mutation of the map.
func (m *Map[K, V]) Ref(key K) (*V, bool) {
	return m.table.Get(key)
}

// Contains reports whether key is present.
func (m *Map[K, V]) Contains(key K) bool {
	_, ok := m.table.Get(key)
	return ok
}

// Remove deletes key and reports whether it was present.
// Removing never allocates, so it cannot fail.
func (m *Map[K, V]) Remove(key K) bool {
	start := time.Now()
	_, found := m.table.Get(key)
	if found {
		m.table.Remove(key)
	}
	m.metrics.RecordRemove(time.Since(start), found)
	return found
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.table.Len() }

// BucketCount returns the number of distinct hashes.
func (m *Map[K, V]) BucketCount() int { return m.table.BucketCount() }

// All returns an iterator over all entries in ascending hash order.
// The map must not be modified during iteration.
func (m *Map[K, V]) All() iter.Seq2[K, V] { return m.table.All() }

// Keys returns an iterator over all keys in ascending hash order.
func (m *Map[K, V]) Keys() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k := range m.table.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Stats returns structural statistics of the underlying table.
func (m *Map[K, V]) Stats() hashtable.Stats { return m.table.Stats() }

// MemoryUsage returns the bytes reserved from the map's controller.
// With a shared controller this includes other maps.
func (m *Map[K, V]) MemoryUsage() int64 { return m.rc.MemoryUsage() }

// Controller returns the resource controller the map charges.
func (m *Map[K, V]) Controller() *resource.Controller { return m.rc }

// Clear removes all entries and releases their chains.
func (m *Map[K, V]) Clear() { m.table.Clear() }

// Trim shrinks every buffer to its length.
func (m *Map[K, V]) Trim() { m.table.Trim() }

// Release frees all memory. The map is empty but usable afterwards.
func (m *Map[K, V]) Release() {
	before := m.rc.MemoryUsage()
	entries := m.table.Len()
	m.table.Release()
	m.logger.LogRelease(context.Background(), entries, before-m.rc.MemoryUsage())
}

// WriteSnapshot writes every entry to w. See package snapshot for the format.
func (m *Map[K, V]) WriteSnapshot(ctx context.Context, w io.Writer, optFns ...func(*snapshot.Options)) (int, error) {
	n, err := snapshot.Write(ctx, w, m.table, optFns...)
	m.logger.LogSnapshot(ctx, n, err)
	return n, err
}

// ReadSnapshot puts every entry from r into the map, overwriting existing
// keys. If it fails, the entries read so far remain.
func (m *Map[K, V]) ReadSnapshot(ctx context.Context, r io.Reader, optFns ...func(*snapshot.Options)) (int, error) {
	n, err := snapshot.Read(ctx, r, m.table, optFns...)
	err = m.translate("restore", err)
	m.logger.LogRestore(ctx, n, err)
	return n, err
}

func (m *Map[K, V]) translate(op string, err error) error {
	if err == nil {
		return nil
	}
	err = translateError(err, m.rc)
	if errors.Is(err, ErrAllocationFailed) {
		m.metrics.RecordAllocationFailure()
		m.logger.LogAllocationFailure(context.Background(), op, m.rc.MemoryUsage(), m.rc.MemoryLimit(), err)
	}
	return err
}
