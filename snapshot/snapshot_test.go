package snapshot

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"maps"
	"testing"

	"github.com/hupe1980/vex/codec"
	"github.com/hupe1980/vex/hashtable"
	"github.com/hupe1980/vex/resource"
	"github.com/hupe1980/vex/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string
	Score int
	Tags  []string
}

func newTable(t *testing.T, n int) (*hashtable.Table[string, record], []string) {
	t.Helper()

	tbl, err := hashtable.New[string, record](hashtable.String[string]{Seed: 7})
	require.NoError(t, err)
	t.Cleanup(tbl.Release)

	keys := testutil.NewRNG(4711).UniqueStrings(n, 10)
	for i, k := range keys {
		require.NoError(t, tbl.Put(k, record{Name: k, Score: i, Tags: []string{"t", k[:2]}}))
	}
	return tbl, keys
}

func write(t *testing.T, tbl *hashtable.Table[string, record], optFns ...func(*Options)) []byte {
	t.Helper()

	var buf bytes.Buffer
	n, err := Write(context.Background(), &buf, tbl, optFns...)
	require.NoError(t, err)
	require.Equal(t, tbl.Len(), n)
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	compressions := []Compression{CompressionNone, CompressionLZ4, CompressionZSTD}
	codecs := []codec.Codec{codec.JSON{}, codec.GoJSON{}}

	src, keys := newTable(t, 2500)

	for _, comp := range compressions {
		for _, c := range codecs {
			t.Run(fmt.Sprintf("%s/%s", comp, c.Name()), func(t *testing.T) {
				data := write(t, src, func(o *Options) {
					o.Codec = c
					o.Compression = comp
					o.BatchSize = 300
				})

				dst, err := hashtable.New[string, record](hashtable.String[string]{Seed: 99})
				require.NoError(t, err)
				defer dst.Release()

				n, err := Read(context.Background(), bytes.NewReader(data), dst)
				require.NoError(t, err)
				assert.Equal(t, len(keys), n)
				assert.Equal(t, src.Len(), dst.Len())

				for i, k := range keys {
					v, ok := dst.Get(k)
					require.True(t, ok, "missing %q", k)
					assert.Equal(t, i, v.Score)
					assert.Equal(t, k, v.Name)
				}
			})
		}
	}
}

func TestCompressionShrinksRepetitiveData(t *testing.T) {
	src, _ := newTable(t, 1000)

	plain := write(t, src)
	zstd := write(t, src, func(o *Options) { o.Compression = CompressionZSTD })

	assert.Less(t, len(zstd), len(plain))
}

func TestRoundTrip_EmptyTable(t *testing.T) {
	src, _ := newTable(t, 0)
	data := write(t, src)

	dst, err := hashtable.New[string, record](hashtable.String[string]{})
	require.NoError(t, err)

	n, err := Read(context.Background(), bytes.NewReader(data), dst)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Zero(t, dst.Len())
}

func TestRead_OverwritesExistingKeys(t *testing.T) {
	src, keys := newTable(t, 10)
	data := write(t, src)

	dst, err := hashtable.New[string, record](hashtable.String[string]{})
	require.NoError(t, err)
	require.NoError(t, dst.Put(keys[0], record{Score: -1}))
	require.NoError(t, dst.Put("local", record{Score: -2}))

	_, err = Read(context.Background(), bytes.NewReader(data), dst)
	require.NoError(t, err)
	assert.Equal(t, 11, dst.Len())

	v, ok := dst.Get(keys[0])
	require.True(t, ok)
	assert.Equal(t, 0, v.Score)
}

func TestRead_Corruption(t *testing.T) {
	src, _ := newTable(t, 50)
	data := write(t, src)
	headerLen := len(Magic) + 4 + len(codec.Default.Name())

	tests := []struct {
		name    string
		mutate  func([]byte) []byte
		wantErr error
	}{
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				b[0] = 'X'
				return b
			},
			wantErr: ErrInvalidFormat,
		},
		{
			name: "unknown compression",
			mutate: func(b []byte) []byte {
				b[6] = 9
				return b
			},
			wantErr: ErrInvalidFormat,
		},
		{
			name: "unknown codec",
			mutate: func(b []byte) []byte {
				b[len(Magic)+4] = 'x'
				return b
			},
			wantErr: ErrUnknownCodec,
		},
		{
			name: "flipped payload byte",
			mutate: func(b []byte) []byte {
				b[headerLen+blockHeaderSize] ^= 0xff
				return b
			},
			wantErr: ErrChecksumMismatch,
		},
		{
			name: "truncated header",
			mutate: func(b []byte) []byte {
				return b[:5]
			},
			wantErr: ErrInvalidFormat,
		},
		{
			name: "truncated block",
			mutate: func(b []byte) []byte {
				return b[:headerLen+blockHeaderSize+3]
			},
			wantErr: ErrInvalidFormat,
		},
		{
			name: "missing end marker",
			mutate: func(b []byte) []byte {
				return b[:len(b)-blockHeaderSize]
			},
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corrupt := tt.mutate(bytes.Clone(data))

			dst, err := hashtable.New[string, record](hashtable.String[string]{})
			require.NoError(t, err)

			_, err = Read(context.Background(), bytes.NewReader(corrupt), dst)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRead_UnsupportedVersion(t *testing.T) {
	src, _ := newTable(t, 3)
	data := bytes.Clone(write(t, src))
	binary.LittleEndian.PutUint16(data[len(Magic):], Version+1)

	dst, err := hashtable.New[string, record](hashtable.String[string]{})
	require.NoError(t, err)

	_, err = Read(context.Background(), bytes.NewReader(data), dst)

	var verr *ErrUnsupportedVersion
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, Version+1, verr.Version)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestWrite_CanceledContext(t *testing.T) {
	src, _ := newTable(t, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	n, err := Write(ctx, &buf, src)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, n)
}

func TestRead_CanceledContext(t *testing.T) {
	src, _ := newTable(t, 10)
	data := write(t, src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dst, err := hashtable.New[string, record](hashtable.String[string]{})
	require.NoError(t, err)

	_, err = Read(ctx, bytes.NewReader(data), dst)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, dst.Len())
}

type opaqueKey struct{ id int }

type pointKey struct{ X, Y int }

func TestWrite_KeysMustRoundTrip(t *testing.T) {
	t.Run("unexported fields", func(t *testing.T) {
		src, err := hashtable.New[opaqueKey, int](hashtable.NewComparable[opaqueKey]())
		require.NoError(t, err)
		for i := range 5 {
			require.NoError(t, src.Put(opaqueKey{id: i}, i))
		}

		for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
			var buf bytes.Buffer
			n, err := Write(context.Background(), &buf, src, func(o *Options) { o.Codec = c })
			require.ErrorIs(t, err, ErrLossyKey, c.Name())
			assert.Zero(t, n)
		}
	})

	t.Run("exported fields", func(t *testing.T) {
		src, err := hashtable.New[pointKey, int](hashtable.NewComparable[pointKey]())
		require.NoError(t, err)
		for i := range 5 {
			require.NoError(t, src.Put(pointKey{X: i, Y: -i}, i))
		}

		var buf bytes.Buffer
		_, err = Write(context.Background(), &buf, src)
		require.NoError(t, err)

		dst, err := hashtable.New[pointKey, int](hashtable.NewComparable[pointKey]())
		require.NoError(t, err)
		n, err := Read(context.Background(), &buf, dst)
		require.NoError(t, err)
		assert.Equal(t, 5, n)
		assert.Equal(t, src.Len(), dst.Len())
		assert.Equal(t, maps.Collect(src.All()), maps.Collect(dst.All()))
	})
}

func TestWrite_InvalidCompression(t *testing.T) {
	src, _ := newTable(t, 1)

	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, src, func(o *Options) { o.Compression = 42 })
	require.ErrorIs(t, err, ErrInvalidFormat)
	assert.Zero(t, buf.Len())
}

func TestRead_MemoryBudget(t *testing.T) {
	src, err := hashtable.New[uint64, uint64](hashtable.Integer[uint64]{})
	require.NoError(t, err)
	for i := range uint64(100) {
		require.NoError(t, src.Put(i, i*i))
	}

	var buf bytes.Buffer
	_, err = Write(context.Background(), &buf, src)
	require.NoError(t, err)

	rc := resource.NewController(resource.Config{MemoryLimitBytes: 512})
	dst, err := hashtable.New[uint64, uint64](hashtable.Integer[uint64]{}, hashtable.WithController(rc))
	require.NoError(t, err)

	n, err := Read(context.Background(), &buf, dst)
	require.ErrorIs(t, err, hashtable.ErrAllocationFailed)
	assert.Less(t, n, 100)
	assert.Equal(t, n, dst.Len(), "entries read before the failure stay")
	assert.LessOrEqual(t, rc.MemoryUsage(), int64(512))
}

func TestThrottledRoundTrip(t *testing.T) {
	src, keys := newTable(t, 200)
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 64 << 20})

	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, src, func(o *Options) { o.Controller = rc })
	require.NoError(t, err)

	dst, err := hashtable.New[string, record](hashtable.String[string]{})
	require.NoError(t, err)

	n, err := Read(context.Background(), &buf, dst, func(o *Options) { o.Controller = rc })
	require.NoError(t, err)
	assert.Equal(t, len(keys), n)
}

func BenchmarkWrite(b *testing.B) {
	for _, comp := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		b.Run(comp.String(), func(b *testing.B) {
			tbl, err := hashtable.New[uint64, uint64](hashtable.Integer[uint64]{})
			require.NoError(b, err)
			for i := range uint64(10_000) {
				require.NoError(b, tbl.Put(i, i))
			}

			var buf bytes.Buffer
			b.ReportAllocs()
			for b.Loop() {
				buf.Reset()
				if _, err := Write(context.Background(), &buf, tbl, func(o *Options) { o.Compression = comp }); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
