package hashtable

import (
	"bytes"
	"hash/maphash"
	"unsafe"

	"github.com/spaolacci/murmur3"
	"golang.org/x/exp/constraints"
)

// Hasher is the capability a key type needs to be stored in a Table.
//
// Equal must be an equivalence relation and keys that are Equal must have
// the same Hash. The full 64-bit hash selects the bucket, so hash quality
// only affects chain length, never correctness.
type Hasher[K any] interface {
	Hash(key K) uint64
	Equal(a, b K) bool
}

// Funcs adapts a pair of functions to Hasher.
type Funcs[K any] struct {
	HashFunc  func(key K) uint64
	EqualFunc func(a, b K) bool
}

// Hash implements Hasher.
func (f Funcs[K]) Hash(key K) uint64 { return f.HashFunc(key) }

// Equal implements Hasher.
func (f Funcs[K]) Equal(a, b K) bool { return f.EqualFunc(a, b) }

// Comparable hashes any comparable key with the runtime's hash function.
// Use NewComparable; the zero value panics on first use.
type Comparable[K comparable] struct {
	seed maphash.Seed
}

// NewComparable returns a Comparable hasher with a random seed.
func NewComparable[K comparable]() Comparable[K] {
	return Comparable[K]{seed: maphash.MakeSeed()}
}

// Hash implements Hasher.
func (c Comparable[K]) Hash(key K) uint64 { return maphash.Comparable(c.seed, key) }

// Equal implements Hasher.
func (Comparable[K]) Equal(a, b K) bool { return a == b }

// String hashes string keys with 64-bit MurmurHash3.
type String[K ~string] struct {
	Seed uint32
}

// Hash implements Hasher.
func (s String[K]) Hash(key K) uint64 {
	str := string(key)
	b := unsafe.Slice(unsafe.StringData(str), len(str)) //nolint:gosec // read-only view, no copy
	return murmur3.Sum64WithSeed(b, s.Seed)
}

// Equal implements Hasher.
func (String[K]) Equal(a, b K) bool { return a == b }

// Bytes hashes byte-slice keys with 64-bit MurmurHash3.
// Stored keys alias the caller's slices; do not modify them afterwards.
type Bytes struct {
	Seed uint32
}

// Hash implements Hasher.
func (s Bytes) Hash(key []byte) uint64 { return murmur3.Sum64WithSeed(key, s.Seed) }

// Equal implements Hasher.
func (Bytes) Equal(a, b []byte) bool { return bytes.Equal(a, b) }

// Integer hashes integer keys with the MurmurHash3 64-bit finalizer.
// The mix is a bijection, so distinct keys never share a bucket.
type Integer[K constraints.Integer] struct{}

// Hash implements Hasher.
func (Integer[K]) Hash(key K) uint64 { return fmix64(uint64(key)) }

// Equal implements Hasher.
func (Integer[K]) Equal(a, b K) bool { return a == b }

func fmix64(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}
