// Package snapshot serializes hash tables to byte streams and back.
//
// It only uses the public table API: Write copies entries out through
// iteration and Read copies them back in with Put. Tables themselves have
// no notion of persistence.
//
// # Format
//
//	header: magic "VEXS" | version u16 | compression u8 | codec name len u8 | codec name
//	block:  uncompressed size u32 | stored size u32 | crc32c u32 | stored bytes
//	end:    a block header with all fields zero
//
// Each block holds one codec-encoded batch of entries. A stored size of
// zero means the batch is stored uncompressed, which happens when
// compression does not pay off. All integers are little endian.
//
// # Key Constraints
//
// Keys and values must survive the codec. For the JSON codecs that means
// exported fields only: a struct key with unexported fields encodes as {}
// and every such key would collapse into one on restore. Write detects this
// by decoding each batch and comparing keys with the table's hasher, and
// fails with ErrLossyKey instead of writing a snapshot that restores fewer
// entries.
//
// # Usage
//
//	var buf bytes.Buffer
//	n, err := snapshot.Write(ctx, &buf, table, func(o *snapshot.Options) {
//	    o.Compression = snapshot.CompressionZSTD
//	})
//
//	restored, _ := hashtable.New[string, int](hashtable.String[string]{})
//	n, err = snapshot.Read(ctx, &buf, restored)
package snapshot
