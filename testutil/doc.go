// Package testutil provides deterministic workload generators for tests
// and benchmarks.
//
// This package is intended for use in tests and benchmarks only.
//
// # Random Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.UniqueStrings(1000, 12)  // distinct keys
//	ids := rng.UniqueUint64s(1000)
//
// # Skewed Access
//
//	idx := rng.ZipfIndices(10_000, len(keys), 1.2) // hot keys first
package testutil
