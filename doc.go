// Package vex provides a memory-budgeted generic hash map for Go.
//
// Vex is a layered container stack. Each layer is usable on its own:
//
//   - buffer: a growable buffer with 1.5x amortized growth and
//     all-or-nothing allocation
//   - sparse: a sorted uint64-keyed array of fixed-size slots
//   - hashtable: a chained hash table keyed by the full 64-bit hash
//   - snapshot: compressed, checksummed serialization of a table
//
// Map wires these together with a memory budget, structured logging and
// metrics.
//
// # Quick Start
//
//	m, _ := vex.New[string, int](vex.WithMemoryLimit(64 << 20))
//	defer m.Release()
//
//	_ = m.Put("alpha", 1)
//	v, ok := m.Get("alpha")
//
//	for k, v := range m.All() {
//	    fmt.Println(k, v)
//	}
//
// # Keys Without ==
//
// Keys that are not comparable, or that need a specific hash, take an
// explicit hashtable.Hasher:
//
//	m, _ := vex.NewWithHasher[[]byte, string](hashtable.Bytes{})
//
// # Memory Budget
//
// Every allocation in every layer is charged against a resource.Controller.
// When the budget refuses, the operation fails with ErrAllocationFailed and
// the map is left exactly as it was:
//
//	err := m.Put(k, v)
//	if errors.Is(err, vex.ErrAllocationFailed) {
//	    var ml *vex.ErrMemoryLimit
//	    if errors.As(err, &ml) {
//	        fmt.Println("used", ml.Used, "of", ml.Limit)
//	    }
//	}
//
// # Snapshots
//
//	n, err := m.WriteSnapshot(ctx, w, func(o *snapshot.Options) {
//	    o.Compression = snapshot.CompressionZSTD
//	})
//	n, err = restored.ReadSnapshot(ctx, r)
//
// Maps are not safe for concurrent use. One resource.Controller may be
// shared by several maps that are each used from a single goroutine.
package vex
