package persistence

import "errors"

const (
	// MagicNumber identifies snapshot files (ASCII "DKNN" little-endian).
	MagicNumber = 0x4E4E4B44
	// Version is the current snapshot format version (v1.0.0).
	Version = 0x00010000

	// HeaderSize is the encoded size of FileHeader.
	HeaderSize = 64

	// MaxManifestSize bounds the manifest accepted by Read.
	MaxManifestSize = 16 << 20
	// MaxPayloadSize bounds the payload accepted by Read.
	MaxPayloadSize = 1 << 36

	// MaxDim bounds the embedding width of a layer.
	MaxDim = 1 << 20
	// MaxHashBits bounds the LSH code width.
	MaxHashBits = 1 << 16
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
	ErrCorrupt        = errors.New("corrupt snapshot")

	// ErrSnapshotMismatch is returned when a snapshot does not match the
	// configuration it is loaded into.
	ErrSnapshotMismatch = errors.New("snapshot does not match configuration")
)

// FileHeader is the 64-byte header at the start of every snapshot.
type FileHeader struct {
	Magic       uint32 // 0x4E4E4B44 ("DKNN")
	Version     uint32 // File format version
	Compression uint8  // Compression of the payload
	Padding1    [3]byte
	HashBits    uint32 // LSH code width
	K           uint32 // Neighbors per layer
	NumClasses  uint32 // Label space size
	ManifestLen uint32 // Bytes of JSON manifest following the header
	PayloadLen  uint64 // Stored (possibly compressed) payload bytes
	RawLen      uint64 // Uncompressed payload bytes
	Checksum    uint32 // CRC32 of manifest and stored payload
	Padding2    [4]byte
	Reserved    [12]byte // Future use
}
