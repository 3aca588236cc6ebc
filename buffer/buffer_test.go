package buffer

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/hupe1980/vex/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_InsertFrontRemoveMiddle(t *testing.T) {
	b, err := New[uint64](10)
	require.NoError(t, err)

	// Insert 100 values at the front so they end up in reverse order.
	for i := uint64(0); i < 100; i++ {
		s, err := b.Insert(0, 1)
		require.NoError(t, err)
		s[0] = i
	}
	require.Equal(t, 100, b.Len())

	// Remove 50 values from the middle.
	for i := 25; i < 75; i++ {
		b.Remove(25, 1)
	}
	require.Equal(t, 50, b.Len())

	for i := 0; i < 25; i++ {
		assert.Equal(t, uint64(99-i), *b.At(i))
	}
	for i := 25; i < 50; i++ {
		assert.Equal(t, uint64(49-i), *b.At(i))
	}
}

func TestBuffer_Growth(t *testing.T) {
	b, err := NewBytes(10)
	require.NoError(t, err)
	assert.Equal(t, 10, b.Cap())
	assert.Equal(t, 0, b.Len())

	_, err = b.Push(10)
	require.NoError(t, err)
	assert.Equal(t, 10, b.Cap(), "no growth while size fits")

	_, err = b.Push(1)
	require.NoError(t, err)
	assert.Equal(t, 15, b.Cap(), "grows by 1.5x")

	_, err = b.Push(100)
	require.NoError(t, err)
	assert.Equal(t, 111, b.Cap(), "grows to the requested size when larger")

	b.Trim()
	assert.Equal(t, 111, b.Cap())

	b.Pop(11)
	b.Trim()
	assert.Equal(t, 100, b.Cap())
	assert.Equal(t, 100, b.Len())
}

func TestBuffer_ZeroCapacity(t *testing.T) {
	b, err := NewBytes(0)
	require.NoError(t, err)
	assert.Equal(t, 0, b.Cap())

	require.NoError(t, b.PushValues('a'))
	assert.Equal(t, 1, b.Cap())
	require.NoError(t, b.PushValues('b'))
	assert.Equal(t, 2, b.Cap(), "1*3/2 rounds down, the request wins")
	assert.Equal(t, []byte("ab"), b.Slice())
}

func TestBuffer_PushIsZeroed(t *testing.T) {
	b, err := NewBytes(4)
	require.NoError(t, err)

	require.NoError(t, b.PushValues(1, 2, 3, 4))
	b.Pop(2)

	s, err := b.Push(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0}, s)
	assert.Equal(t, []byte{1, 2, 0, 0}, b.Slice())
}

func TestBuffer_ResizeInPlace(t *testing.T) {
	b, err := NewBytes(8)
	require.NoError(t, err)
	require.NoError(t, b.PushValues([]byte("abcdefgh")...))

	// Grow the "cd" region to four bytes.
	s, err := b.Resize(2, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{'c', 'd', 0, 0}, s)
	assert.Equal(t, []byte("abcd\x00\x00efgh"), b.Slice())

	// Shrink it back.
	s, err = b.Resize(2, 4, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte("c"), s)
	assert.Equal(t, []byte("acefgh"), b.Slice())
}

func TestBuffer_InsertPreservesSurroundings(t *testing.T) {
	b, err := NewBytes(4)
	require.NoError(t, err)
	require.NoError(t, b.PushValues([]byte("0123456789")...))

	s, err := b.Insert(3, 5)
	require.NoError(t, err)
	copy(s, "XXXXX")

	assert.Equal(t, "012XXXXX3456789", string(b.Slice()))
}

func TestBuffer_Append(t *testing.T) {
	a, err := NewBytes(2)
	require.NoError(t, err)
	require.NoError(t, a.PushValues([]byte("ab")...))

	other, err := NewBytes(3)
	require.NoError(t, err)
	require.NoError(t, other.PushValues([]byte("cde")...))

	require.NoError(t, a.Append(other))
	assert.Equal(t, "abcde", string(a.Slice()))

	// Appending a buffer to itself doubles it.
	require.NoError(t, a.Append(a))
	assert.Equal(t, "abcdeabcde", string(a.Slice()))

	empty, err := NewBytes(0)
	require.NoError(t, err)
	require.NoError(t, a.Append(empty))
	assert.Equal(t, 10, a.Len())
}

func TestBuffer_GetAndClear(t *testing.T) {
	b, err := NewBytes(4)
	require.NoError(t, err)
	require.NoError(t, b.PushValues([]byte("wxyz")...))

	assert.Equal(t, []byte("yz"), b.Get(2))
	assert.Empty(t, b.Get(4))

	*b.At(0) = 'W'
	assert.Equal(t, "Wxyz", string(b.Slice()))

	b.Clear()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 4, b.Cap())
}

func TestBuffer_ShrinkTo(t *testing.T) {
	rc := resource.NewController(resource.Config{})
	b, err := New[uint32](2, WithController(rc))
	require.NoError(t, err)
	require.NoError(t, b.PushValues(1, 2, 3))
	require.Equal(t, 3, b.Cap())

	require.NoError(t, b.EnsureCapacity(10))
	b.ShrinkTo(3)
	assert.Equal(t, 3, b.Cap())
	assert.Equal(t, int64(12), rc.MemoryUsage())
	assert.Equal(t, []uint32{1, 2, 3}, b.Slice())

	// Never below Len, never grows.
	b.ShrinkTo(1)
	assert.Equal(t, 3, b.Cap())
	b.ShrinkTo(8)
	assert.Equal(t, 3, b.Cap())
	assert.Equal(t, int64(12), rc.MemoryUsage())
}

func TestBuffer_ContractViolations(t *testing.T) {
	b, err := NewBytes(4)
	require.NoError(t, err)
	require.NoError(t, b.PushValues(1, 2))

	tests := []struct {
		name string
		fn   func()
	}{
		{"pop beyond size", func() { b.Pop(3) }},
		{"negative pop", func() { b.Pop(-1) }},
		{"insert past end", func() { _, _ = b.Insert(3, 1) }},
		{"remove past end", func() { b.Remove(1, 2) }},
		{"at size", func() { b.At(2) }},
		{"get past end", func() { b.Get(3) }},
		{"negative capacity", func() { _, _ = NewBytes(-1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
	assert.Equal(t, 2, b.Len())
}

func TestBuffer_AllocationFailure(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 64})

	_, err := New[uint64](9, WithController(rc))
	require.ErrorIs(t, err, ErrAllocationFailed)
	require.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(0), rc.MemoryUsage())

	b, err := New[uint64](4, WithController(rc))
	require.NoError(t, err)
	assert.Equal(t, int64(32), rc.MemoryUsage())
	require.NoError(t, b.PushValues(1, 2, 3, 4))

	// 4 -> 6 elements fits the budget exactly (48 bytes).
	require.NoError(t, b.PushValues(5))
	assert.Equal(t, 6, b.Cap())
	assert.Equal(t, int64(48), rc.MemoryUsage())

	require.NoError(t, b.PushValues(6))

	// 6 -> 9 elements needs 72 bytes and is refused.
	_, err = b.Push(1)
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, 6, b.Len())
	assert.Equal(t, 6, b.Cap())
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6}, b.Slice())

	_, err = b.Insert(0, 1)
	require.ErrorIs(t, err, ErrAllocationFailed)
	assert.Equal(t, []uint64{1, 2, 3, 4, 5, 6}, b.Slice())

	b.Pop(2)
	b.Trim()
	assert.Equal(t, int64(32), rc.MemoryUsage())

	b.Release()
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, 0, b.Cap())

	require.NoError(t, b.Init(2, WithController(rc)))
	assert.Equal(t, int64(16), rc.MemoryUsage())
}

type bufferOp struct {
	Kind   uint8
	Offset uint16
	N      uint8
	Fill   byte
}

func TestBuffer_RandomOperations(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		var ops []bufferOp
		fz := fuzz.NewWithSeed(seed).NilChance(0).NumElements(50, 200)
		fz.Fuzz(&ops)

		b, err := NewBytes(1)
		require.NoError(t, err)

		var (
			model    []byte
			inserted int
			removed  int
		)
		for _, op := range ops {
			n := int(op.N % 16)
			switch op.Kind % 4 {
			case 0:
				s, err := b.Push(n)
				require.NoError(t, err)
				for i := range s {
					s[i] = op.Fill
				}
				for i := 0; i < n; i++ {
					model = append(model, op.Fill)
				}
				inserted += n
			case 1:
				n = min(n, len(model))
				b.Pop(n)
				model = model[:len(model)-n]
				removed += n
			case 2:
				off := int(op.Offset) % (len(model) + 1)
				s, err := b.Insert(off, n)
				require.NoError(t, err)
				fill := make([]byte, n)
				for i := range s {
					s[i] = op.Fill
					fill[i] = op.Fill
				}
				model = append(model[:off], append(fill, model[off:]...)...)
				inserted += n
			case 3:
				off := int(op.Offset) % (len(model) + 1)
				n = min(n, len(model)-off)
				b.Remove(off, n)
				model = append(model[:off], model[off+n:]...)
				removed += n
			}

			require.Equal(t, inserted-removed, b.Len())
			require.GreaterOrEqual(t, b.Cap(), b.Len())
		}
		if len(model) == 0 {
			assert.Empty(t, b.Slice())
		} else {
			assert.Equal(t, model, b.Slice(), "seed %d", seed)
		}
	}
}

func BenchmarkBuffer_Push(b *testing.B) {
	buf, err := New[uint64](16)
	require.NoError(b, err)

	b.ReportAllocs()
	for i := 0; b.Loop(); i++ {
		if err := buf.PushValues(uint64(i)); err != nil {
			b.Fatal(err)
		}
	}
}
