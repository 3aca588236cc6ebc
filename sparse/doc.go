// Package sparse implements a sorted sparse array mapping uint64 keys to
// fixed-size value slots.
//
// The array keeps two buffers in lock-step: a strictly ascending key
// sequence and the paired value slots. Lookups binary-search the keys;
// inserts and removals shift the tails of both buffers. Locating is
// O(log n), inserting and removing O(n), in exchange for contiguous storage.
//
// # Reserve, Then Write
//
// Put returns a pointer to the slot for a key. For a new key the slot is
// zero; for an existing key the slot is returned unmodified. The caller
// writes the value through the pointer:
//
//	v, err := arr.Put(42)
//	if err != nil {
//	    return err
//	}
//	*v = value
//
// Skipping the write leaves whatever value the slot already held.
//
// Pointers returned by Put, Get and Value are invalidated by the next Put,
// Remove, Trim or Clear.
package sparse
