// Package buffer provides a contiguous growable buffer with capacity tracked
// separately from size.
//
// Capacity grows by a fixed factor of 1.5 (or to the requested size when
// that is larger), so repeated pushes are amortized O(1). Capacity never
// shrinks on its own; call Trim after a batch build to release the slack.
//
// # Allocation Failures
//
// Every growth reserves its additional bytes from an optional
// resource.Controller before the storage is replaced. A refused reservation
// returns ErrAllocationFailed and leaves the buffer exactly as it was: size,
// capacity and contents are unchanged.
//
// # Contract Violations
//
// Offsets outside the live data and pops larger than the size are
// programming errors and panic.
//
// # Views
//
// Get, At and the slices returned by Push, Insert and Resize alias the live
// storage. They must not be retained across a mutating call since growth
// moves the storage.
//
// Elements between Len and Cap are always the zero value of T; vacated
// positions are cleared so that the buffer does not keep garbage alive.
package buffer
