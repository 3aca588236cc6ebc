// Package hashtable implements a chained hash table on top of a sparse array.
//
// The full 64-bit hash of a key is used directly as a sparse-array key; there
// is no reduction modulo a bucket count. Each bucket owns a chain buffer of
// (key, value) entries that share the hash, searched linearly with the
// Hasher's Equal. With a good hash every chain holds a single entry, but
// chains of any length stay correct under poor or adversarial hashes.
//
//	t, err := hashtable.New[string, int](hashtable.String[string]{})
//	if err != nil {
//	    return err
//	}
//	defer t.Release()
//
//	_ = t.Put("answer", 42)
//	if v, ok := t.Get("answer"); ok {
//	    fmt.Println(*v)
//	}
//
// # Iteration
//
// Entries are visited by ascending hash, then in insertion order within a
// chain. This is neither key order nor global insertion order. Mutating the
// table invalidates live iterators and every pointer returned by Get.
//
// # Errors
//
// Put fails with ErrAllocationFailed when the table's resource.Controller
// refuses to grow a buffer; the table is then unchanged. Remove of an absent
// key is a no-op. Tables are not safe for concurrent use.
package hashtable
