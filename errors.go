package vex

import (
	"errors"
	"fmt"

	"github.com/hupe1980/vex/hashtable"
	"github.com/hupe1980/vex/resource"
	"github.com/hupe1980/vex/snapshot"
)

var (
	// ErrNotFound is returned by Lookup when the key is absent.
	ErrNotFound = errors.New("vex: key not found")

	// ErrAllocationFailed is returned when the map cannot grow.
	// The map is unchanged when it is returned.
	ErrAllocationFailed = hashtable.ErrAllocationFailed

	// ErrHasherMismatch is returned by New when WithHasher was given a
	// hasher for a different key type.
	ErrHasherMismatch = errors.New("vex: hasher does not match key type")

	// ErrCorruptSnapshot is returned when a snapshot stream cannot be decoded.
	ErrCorruptSnapshot = errors.New("vex: corrupt snapshot")

	// ErrInvalidCapacity is returned by New for a negative capacity or a
	// chain capacity below one.
	ErrInvalidCapacity = hashtable.ErrInvalidCapacity
)

// ErrMemoryLimit indicates that the memory budget refused an allocation.
//
// It matches ErrAllocationFailed and resource.ErrMemoryLimitExceeded with
// errors.Is.
type ErrMemoryLimit struct {
	Limit int64
	Used  int64
	cause error
}

func (e *ErrMemoryLimit) Error() string {
	return fmt.Sprintf("vex: memory limit reached: %d of %d bytes in use", e.Used, e.Limit)
}

func (e *ErrMemoryLimit) Unwrap() error { return e.cause }

func translateError(err error, rc *resource.Controller) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return &ErrMemoryLimit{Limit: rc.MemoryLimit(), Used: rc.MemoryUsage(), cause: err}
	}

	if errors.Is(err, snapshot.ErrInvalidFormat) ||
		errors.Is(err, snapshot.ErrChecksumMismatch) ||
		errors.Is(err, snapshot.ErrUnknownCodec) {
		return fmt.Errorf("%w: %w", ErrCorruptSnapshot, err)
	}

	return err
}
