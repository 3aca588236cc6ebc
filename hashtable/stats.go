package hashtable

import "github.com/RoaringBitmap/roaring/v2/roaring64"

// Stats describes the shape of a table.
type Stats struct {
	Buckets       int
	Entries       int
	LongestChain  int
	ReservedBytes int64

	// Collisions holds every hash shared by more than one key. A growing
	// set points at a weak Hasher.
	Collisions *roaring64.Bitmap
}

// CollisionRate returns the fraction of buckets holding more than one key.
func (s Stats) CollisionRate() float64 {
	if s.Buckets == 0 {
		return 0
	}
	return float64(s.Collisions.GetCardinality()) / float64(s.Buckets)
}

// Stats walks the table and summarizes it.
func (t *Table[K, V]) Stats() Stats {
	s := Stats{
		Buckets:       t.buckets.Count(),
		Entries:       t.count,
		ReservedBytes: t.buckets.Reserved(),
		Collisions:    roaring64.New(),
	}
	for h, entries := range t.buckets.All() {
		n := entries.Len()
		s.LongestChain = max(s.LongestChain, n)
		s.ReservedBytes += entries.Reserved()
		if n > 1 {
			s.Collisions.Add(h)
		}
	}
	return s
}
