//go:build amd64 || arm64

// Package persistence implements the binary snapshot format of a classifier.
//
// A snapshot is a 64-byte little-endian header, a JSON manifest describing
// the layers, and a payload of training labels, nonconformity scores and
// per-layer hash codes. The payload may be compressed with LZ4 or zstd.
// Manifest and payload are covered by a CRC32 checksum.
//
// PLATFORM REQUIREMENTS:
// - Architecture: amd64 or arm64 only
// - Endianness: Little-endian (native on x86_64 and ARM64)
// - Alignment: 4-byte for int32, 8-byte for uint64
//
// The unsafe slice views in this package are verified at runtime with
// alignment checks and platform validation. See safety.go.
package persistence
