package hashtable

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/hupe1980/vex/buffer"
	"github.com/hupe1980/vex/resource"
	"github.com/hupe1980/vex/sparse"
)

var (
	// ErrAllocationFailed is returned when the table cannot grow.
	ErrAllocationFailed = buffer.ErrAllocationFailed

	// ErrNilHasher is returned by New when no Hasher is given.
	ErrNilHasher = errors.New("hashtable: nil hasher")

	// ErrInvalidCapacity is returned by New for a negative bucket capacity
	// or a chain capacity below one.
	ErrInvalidCapacity = errors.New("hashtable: invalid capacity")
)

// DefaultChainCapacity is the capacity of a newly created chain.
const DefaultChainCapacity = 1

// Entry is a key and its value, stored contiguously in a chain.
type Entry[K, V any] struct {
	Key   K
	Value V
}

type chain[K, V any] = buffer.Buffer[Entry[K, V]]

// Option configures a Table.
type Option func(*options)

type options struct {
	hashCapacity  int
	chainCapacity int
	rc            *resource.Controller
	logger        *slog.Logger
}

// WithCapacity pre-sizes the bucket index for hashCapacity distinct hashes.
// Chains still grow individually.
func WithCapacity(hashCapacity int) Option {
	return func(o *options) {
		o.hashCapacity = hashCapacity
	}
}

// WithChainCapacity sizes every new chain for n entries. Raise it when
// the hasher is known to collide often; each bucket then reserves n
// entries up front.
func WithChainCapacity(n int) Option {
	return func(o *options) {
		o.chainCapacity = n
	}
}

// WithController accounts all storage, chains included, against rc.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithLogger logs bucket lifecycle at debug level and refused growth at
// warn level. A nil logger disables logging.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Table maps keys of type K to values of type V.
type Table[K, V any] struct {
	buckets       sparse.Array[chain[K, V]]
	hasher        Hasher[K]
	chainCapacity int
	rc            *resource.Controller
	logger        *slog.Logger
	count         int
}

// New creates an empty table that hashes and compares keys with hasher.
func New[K, V any](hasher Hasher[K], opts ...Option) (*Table[K, V], error) {
	if hasher == nil {
		return nil, ErrNilHasher
	}

	o := options{chainCapacity: DefaultChainCapacity}
	for _, opt := range opts {
		opt(&o)
	}
	if o.hashCapacity < 0 {
		return nil, fmt.Errorf("%w: bucket capacity %d", ErrInvalidCapacity, o.hashCapacity)
	}
	if o.chainCapacity < 1 {
		return nil, fmt.Errorf("%w: chain capacity %d", ErrInvalidCapacity, o.chainCapacity)
	}

	t := &Table[K, V]{
		hasher:        hasher,
		chainCapacity: o.chainCapacity,
		rc:            o.rc,
		logger:        o.logger,
	}
	if err := t.buckets.Init(o.hashCapacity, o.hashCapacity, sparse.WithController(o.rc)); err != nil {
		return nil, err
	}
	return t, nil
}

// Release frees every chain, then the bucket index. The table is empty
// and holds no memory afterwards; later puts allocate afresh.
func (t *Table[K, V]) Release() {
	for _, entries := range t.buckets.All() {
		entries.Release()
	}
	t.buckets.Release()
	t.count = 0
}

// Clear removes every entry and keeps the bucket index capacity.
func (t *Table[K, V]) Clear() {
	for _, entries := range t.buckets.All() {
		entries.Release()
	}
	t.buckets.Clear()
	t.count = 0
}

// Trim shrinks every chain and the bucket index to their sizes.
func (t *Table[K, V]) Trim() {
	for _, entries := range t.buckets.All() {
		entries.Trim()
	}
	t.buckets.Trim()
}

// Hasher returns the hasher the table was created with.
func (t *Table[K, V]) Hasher() Hasher[K] { return t.hasher }

// Len returns the number of entries.
func (t *Table[K, V]) Len() int { return t.count }

// BucketCount returns the number of distinct hashes present.
func (t *Table[K, V]) BucketCount() int { return t.buckets.Count() }

// Put sets the value for key, overwriting it in place if key is present.
// On failure the table is unchanged.
func (t *Table[K, V]) Put(key K, value V) error {
	h := t.hasher.Hash(key)

	entries, ok := t.buckets.Get(h)
	if ok {
		s := entries.Slice()
		for i := range s {
			if t.hasher.Equal(key, s[i].Key) {
				s[i].Value = value
				return nil
			}
		}
		if err := entries.PushValues(Entry[K, V]{Key: key, Value: value}); err != nil {
			t.warn("chain growth refused", h, err)
			return err
		}
		t.count++
		return nil
	}

	entries, err := t.buckets.Put(h)
	if err != nil {
		t.warn("bucket insert refused", h, err)
		return err
	}
	if err := entries.Init(t.chainCapacity, buffer.WithController(t.rc)); err != nil {
		t.mustRemoveBucket(h)
		t.warn("chain allocation refused", h, err)
		return err
	}
	// A new chain has room for its first entry.
	_ = entries.PushValues(Entry[K, V]{Key: key, Value: value})
	t.count++

	if t.logger != nil {
		t.logger.Debug("bucket created", "hash", h, "buckets", t.buckets.Count())
	}
	return nil
}

// Remove deletes key. Removing an absent key is a no-op.
func (t *Table[K, V]) Remove(key K) {
	h := t.hasher.Hash(key)

	entries, ok := t.buckets.Get(h)
	if !ok {
		return
	}

	for i, e := range entries.Slice() {
		if !t.hasher.Equal(key, e.Key) {
			continue
		}

		entries.Remove(i, 1)
		t.count--
		if entries.Len() > 0 {
			return
		}

		entries.Release()
		t.mustRemoveBucket(h)
		if t.logger != nil {
			t.logger.Debug("bucket removed", "hash", h, "buckets", t.buckets.Count())
		}
		return
	}
}

// Get returns a pointer to the value for key. The pointer is valid until
// the table is next modified.
func (t *Table[K, V]) Get(key K) (*V, bool) {
	e, ok := t.GetEntry(key)
	if !ok {
		return nil, false
	}
	return &e.Value, true
}

// GetEntry returns a pointer to the stored entry for key. The key must not
// be modified through it.
func (t *Table[K, V]) GetEntry(key K) (*Entry[K, V], bool) {
	entries, ok := t.buckets.Get(t.hasher.Hash(key))
	if !ok {
		return nil, false
	}

	s := entries.Slice()
	for i := range s {
		if t.hasher.Equal(key, s[i].Key) {
			return &s[i], true
		}
	}
	return nil, false
}

// Iterate returns a cursor positioned before the first entry.
func (t *Table[K, V]) Iterate() *Iterator[K, V] {
	return &Iterator[K, V]{table: t}
}

// All yields every key and value in iteration order.
func (t *Table[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		it := t.Iterate()
		for it.Next() {
			e := it.Entry()
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

func (t *Table[K, V]) mustRemoveBucket(h uint64) {
	if !t.buckets.Remove(h) {
		panic(fmt.Sprintf("hashtable: bucket %#x vanished during removal", h))
	}
}

func (t *Table[K, V]) warn(msg string, h uint64, err error) {
	if t.logger != nil {
		t.logger.Warn(msg, "hash", h, "error", err)
	}
}
