// Package hash provides the checksum used to protect snapshot blocks.
//
// # CRC32-Castagnoli (CRC32C)
//
// Every snapshot block carries the CRC32C of its stored bytes. CRC32C is
// hardware accelerated on x86 (SSE4.2) and ARM (CRC extension) and detects
// all burst errors up to 32 bits.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
