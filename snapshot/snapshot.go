package snapshot

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/vex/codec"
	"github.com/hupe1980/vex/hashtable"
	"github.com/hupe1980/vex/internal/hash"
	"github.com/hupe1980/vex/resource"
)

const (
	// Magic identifies a snapshot stream.
	Magic = "VEXS"
	// Version is the current format version.
	Version uint16 = 1

	// DefaultBatchSize is the number of entries per block.
	DefaultBatchSize = 1024

	blockHeaderSize = 12
	maxBlockSize    = 1 << 30
)

// Options configures Write and Read.
type Options struct {
	// Codec encodes entry batches. Write defaults to codec.Default; Read
	// always uses the codec named in the header.
	Codec codec.Codec

	// Compression applies to every block. Read ignores it.
	Compression Compression

	// BatchSize is the number of entries per block.
	BatchSize int

	// Controller throttles the stream with its IO limit.
	Controller *resource.Controller
}

func applyOptions(optFns []func(*Options)) Options {
	o := Options{
		Codec:     codec.Default,
		BatchSize: DefaultBatchSize,
	}
	for _, fn := range optFns {
		fn(&o)
	}
	if o.Codec == nil {
		o.Codec = codec.Default
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	return o
}

// Write streams every entry of t to w and returns the number written.
// t must not be modified while Write runs. Each batch is decoded once more
// before it is written; a key that does not decode to an equal key fails
// with ErrLossyKey.
func Write[K, V any](ctx context.Context, w io.Writer, t *hashtable.Table[K, V], optFns ...func(*Options)) (int, error) {
	o := applyOptions(optFns)
	if !o.Compression.valid() {
		return 0, fmt.Errorf("%w: compression %s", ErrInvalidFormat, o.Compression)
	}
	name := o.Codec.Name()
	if len(name) == 0 || len(name) > 255 {
		return 0, fmt.Errorf("%w: codec name %q", ErrUnknownCodec, name)
	}

	w = resource.NewRateLimitedWriter(ctx, w, o.Controller)

	header := make([]byte, 0, len(Magic)+4+len(name))
	header = append(header, Magic...)
	header = binary.LittleEndian.AppendUint16(header, Version)
	header = append(header, byte(o.Compression), byte(len(name)))
	header = append(header, name...)
	if _, err := w.Write(header); err != nil {
		return 0, err
	}

	written := 0
	batch := make([]hashtable.Entry[K, V], 0, o.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeBlock(w, o, t.Hasher(), batch); err != nil {
			return err
		}
		written += len(batch)
		clear(batch)
		batch = batch[:0]
		return nil
	}

	it := t.Iterate()
	for it.Next() {
		batch = append(batch, *it.Entry())
		if len(batch) == o.BatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}

	// End marker.
	if _, err := w.Write(make([]byte, blockHeaderSize)); err != nil {
		return written, err
	}
	return written, nil
}

func writeBlock[K, V any](w io.Writer, o Options, hasher hashtable.Hasher[K], batch []hashtable.Entry[K, V]) error {
	data, err := o.Codec.Marshal(batch)
	if err != nil {
		return fmt.Errorf("snapshot: encode batch: %w", err)
	}
	if err := verifyKeys(o.Codec, hasher, data, batch); err != nil {
		return err
	}
	if len(data) > maxBlockSize {
		return fmt.Errorf("snapshot: block of %d bytes exceeds %d; lower BatchSize", len(data), maxBlockSize)
	}

	compressed, err := compress(data, o.Compression)
	if err != nil {
		return fmt.Errorf("snapshot: compress batch: %w", err)
	}

	stored := data
	if compressed != nil {
		stored = compressed
	}

	var header [blockHeaderSize]byte
	binary.LittleEndian.PutUint32(header[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(header[4:], uint32(len(compressed)))
	binary.LittleEndian.PutUint32(header[8:], hash.CRC32C(stored))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// verifyKeys decodes data again and checks every key against the one it
// was encoded from. Distinct keys stay distinct only if each decodes to
// itself.
func verifyKeys[K, V any](c codec.Codec, hasher hashtable.Hasher[K], data []byte, batch []hashtable.Entry[K, V]) error {
	var decoded []hashtable.Entry[K, V]
	if err := c.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("%w: %w", ErrLossyKey, err)
	}
	if len(decoded) != len(batch) {
		return fmt.Errorf("%w: %d entries decoded from %d", ErrLossyKey, len(decoded), len(batch))
	}
	for i := range batch {
		want, got := batch[i].Key, decoded[i].Key
		if hasher.Hash(got) != hasher.Hash(want) || !hasher.Equal(got, want) {
			return fmt.Errorf("%w: %v decoded as %v with codec %s", ErrLossyKey, want, got, c.Name())
		}
	}
	return nil
}

// Read puts every entry from r into t and returns the number read.
// Entries overwrite existing keys. If Put fails, the entries read so far
// remain in t.
func Read[K, V any](ctx context.Context, r io.Reader, t *hashtable.Table[K, V], optFns ...func(*Options)) (int, error) {
	o := applyOptions(optFns)
	r = resource.NewRateLimitedReader(ctx, r, o.Controller)

	var fixed [len(Magic) + 4]byte
	if _, err := io.ReadFull(r, fixed[:]); err != nil {
		return 0, truncated(err)
	}
	if string(fixed[:len(Magic)]) != Magic {
		return 0, fmt.Errorf("%w: bad magic %q", ErrInvalidFormat, fixed[:len(Magic)])
	}
	if v := binary.LittleEndian.Uint16(fixed[4:]); v == 0 || v > Version {
		return 0, &ErrUnsupportedVersion{Version: v}
	}
	compression := Compression(fixed[6])
	if !compression.valid() {
		return 0, fmt.Errorf("%w: compression %s", ErrInvalidFormat, compression)
	}

	name := make([]byte, fixed[7])
	if _, err := io.ReadFull(r, name); err != nil {
		return 0, truncated(err)
	}
	c, ok := codec.ByName(string(name))
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCodec, name)
	}

	read := 0
	for {
		if err := ctx.Err(); err != nil {
			return read, err
		}

		batch, end, err := readBlock[K, V](r, c, compression)
		if err != nil {
			return read, err
		}
		if end {
			return read, nil
		}

		for _, e := range batch {
			if err := t.Put(e.Key, e.Value); err != nil {
				return read, fmt.Errorf("snapshot: restore entry %d: %w", read, err)
			}
			read++
		}
	}
}

func readBlock[K, V any](r io.Reader, c codec.Codec, compression Compression) ([]hashtable.Entry[K, V], bool, error) {
	var header [blockHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, false, truncated(err)
	}

	size := binary.LittleEndian.Uint32(header[0:])
	storedSize := binary.LittleEndian.Uint32(header[4:])
	checksum := binary.LittleEndian.Uint32(header[8:])
	if size == 0 {
		if storedSize != 0 || checksum != 0 {
			return nil, false, fmt.Errorf("%w: malformed end marker", ErrInvalidFormat)
		}
		return nil, true, nil
	}
	if size > maxBlockSize || storedSize > maxBlockSize {
		return nil, false, fmt.Errorf("%w: block of %d bytes", ErrInvalidFormat, max(size, storedSize))
	}

	n := storedSize
	if n == 0 {
		n = size
	}
	stored := make([]byte, n)
	if _, err := io.ReadFull(r, stored); err != nil {
		return nil, false, truncated(err)
	}
	if hash.CRC32C(stored) != checksum {
		return nil, false, ErrChecksumMismatch
	}

	data := stored
	if storedSize != 0 {
		var err error
		data, err = decompress(stored, int(size), compression)
		if err != nil {
			return nil, false, err
		}
	}

	var batch []hashtable.Entry[K, V]
	if err := c.Unmarshal(data, &batch); err != nil {
		return nil, false, fmt.Errorf("%w: decode batch: %w", ErrInvalidFormat, err)
	}
	return batch, false, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: truncated stream", ErrInvalidFormat)
	}
	return err
}
