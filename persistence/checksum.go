package persistence

import (
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// The checksum is CRC32 (IEEE) over the manifest and the stored payload.
// It detects accidental corruption only.

// CalculateChecksum returns the CRC32 of the concatenated parts.
func CalculateChecksum(parts ...[]byte) uint32 {
	var sum uint32
	for _, p := range parts {
		sum = crc32.Update(sum, crc32.IEEETable, p)
	}
	return sum
}

// ChecksumReader hashes everything read through it.
type ChecksumReader struct {
	io.Reader
	h hash.Hash32
}

func NewChecksumReader(r io.Reader) *ChecksumReader {
	h := crc32.NewIEEE()
	return &ChecksumReader{Reader: io.TeeReader(r, h), h: h}
}

// Sum returns the checksum of the bytes read so far.
func (cr *ChecksumReader) Sum() uint32 { return cr.h.Sum32() }

// Verify compares Sum with expected.
func (cr *ChecksumReader) Verify(expected uint32) error {
	if got := cr.Sum(); got != expected {
		return &ChecksumMismatchError{Expected: expected, Actual: got}
	}
	return nil
}

// ChecksumMismatchError reports a corrupt snapshot.
type ChecksumMismatchError struct {
	Expected uint32
	Actual   uint32
}

func (e *ChecksumMismatchError) Error() string {
	return fmt.Sprintf("checksum mismatch: expected 0x%08x, got 0x%08x", e.Expected, e.Actual)
}

// Is makes a mismatch match ErrCorrupt.
func (e *ChecksumMismatchError) Is(target error) bool { return target == ErrCorrupt }

// IsChecksumMismatch reports whether err wraps a ChecksumMismatchError.
func IsChecksumMismatch(err error) bool {
	var cm *ChecksumMismatchError
	return errors.As(err, &cm)
}
