package snapshot

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidFormat is returned when the stream is not a snapshot or is truncated.
	ErrInvalidFormat = errors.New("snapshot: invalid format")

	// ErrChecksumMismatch is returned when a block fails its CRC32C check.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")

	// ErrUnknownCodec is returned when the header names a codec that is not available.
	ErrUnknownCodec = errors.New("snapshot: unknown codec")

	// ErrLossyKey is returned by Write when a key does not decode back to
	// an equal key, so a restored table would merge or lose entries.
	ErrLossyKey = errors.New("snapshot: key does not round-trip through codec")
)

// ErrUnsupportedVersion is returned for snapshots written by a newer format version.
type ErrUnsupportedVersion struct {
	Version uint16
}

func (e *ErrUnsupportedVersion) Error() string {
	return fmt.Sprintf("snapshot: unsupported version %d (max %d)", e.Version, Version)
}

// Unwrap makes the error match ErrInvalidFormat.
func (e *ErrUnsupportedVersion) Unwrap() error { return ErrInvalidFormat }
