package hashtable

// Iterator is a cursor over a Table's entries. It is invalidated by any
// mutation of the table.
//
//	it := t.Iterate()
//	for it.Next() {
//	    fmt.Println(*it.Key(), *it.Value())
//	}
type Iterator[K, V any] struct {
	table   *Table[K, V]
	bucket  int
	offset  int
	entries *chain[K, V]
	done    bool
}

// Next advances to the next entry and reports whether there is one.
// Calling Next again after it returned false panics.
func (it *Iterator[K, V]) Next() bool {
	if it.done {
		panic("hashtable: iterator advanced past exhaustion")
	}

	buckets := &it.table.buckets
	if it.entries == nil {
		if buckets.Count() == 0 {
			it.done = true
			return false
		}
		it.entries = buckets.Value(0)
		return true
	}

	it.offset++
	if it.offset < it.entries.Len() {
		return true
	}

	it.bucket++
	if it.bucket >= buckets.Count() {
		it.entries = nil
		it.done = true
		return false
	}
	it.offset = 0
	it.entries = buckets.Value(it.bucket)
	return true
}

// Entry returns the current entry.
func (it *Iterator[K, V]) Entry() *Entry[K, V] {
	if it.entries == nil {
		panic("hashtable: iterator has no current entry")
	}
	return it.entries.At(it.offset)
}

// Key returns the current key.
func (it *Iterator[K, V]) Key() *K { return &it.Entry().Key }

// Value returns the current value.
func (it *Iterator[K, V]) Value() *V { return &it.Entry().Value }

// Hash returns the hash shared by the current chain.
func (it *Iterator[K, V]) Hash() uint64 {
	if it.entries == nil {
		panic("hashtable: iterator has no current entry")
	}
	return it.table.buckets.Key(it.bucket)
}
