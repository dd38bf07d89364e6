package persistence

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unsafe"
)

// ioBufferSize sizes the buffered file readers and writers.
const ioBufferSize = 256 << 10

// word is the set of fixed-width element types stored in a payload.
type word interface{ int32 | uint64 }

// asBytes views s as its little-endian bytes. The platform is checked to be
// little-endian at init.
func asBytes[T word](s []T) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*int(unsafe.Sizeof(s[0])))
}

// BinaryWriter writes the header and raw payload sections.
type BinaryWriter struct {
	w io.Writer
}

func NewBinaryWriter(w io.Writer) *BinaryWriter { return &BinaryWriter{w: w} }

// WriteHeader stamps magic and version onto header and writes it.
func (bw *BinaryWriter) WriteHeader(header *FileHeader) error {
	header.Magic = MagicNumber
	header.Version = Version
	return binary.Write(bw.w, binary.LittleEndian, header)
}

func (bw *BinaryWriter) WriteInt32Slice(s []int32) error   { return writeWords(bw.w, s) }
func (bw *BinaryWriter) WriteUint64Slice(s []uint64) error { return writeWords(bw.w, s) }

func writeWords[T word](w io.Writer, s []T) error {
	if len(s) == 0 {
		return nil
	}
	if err := validateAlignment(s, unsafe.Sizeof(s[0])); err != nil {
		return err
	}
	_, err := w.Write(asBytes(s))
	return err
}

// BinaryReader reads what BinaryWriter wrote.
type BinaryReader struct {
	r io.Reader
}

func NewBinaryReader(r io.Reader) *BinaryReader { return &BinaryReader{r: r} }

// ReadHeader reads the header and rejects foreign or newer files.
func (br *BinaryReader) ReadHeader() (*FileHeader, error) {
	var h FileHeader
	if err := binary.Read(br.r, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	switch {
	case h.Magic != MagicNumber:
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidMagic, h.Magic)
	case h.Version != Version:
		return nil, fmt.Errorf("%w: got 0x%08x", ErrInvalidVersion, h.Version)
	}
	return &h, nil
}

func (br *BinaryReader) ReadInt32Slice(n int) ([]int32, error)   { return readWords[int32](br.r, n) }
func (br *BinaryReader) ReadUint64Slice(n int) ([]uint64, error) { return readWords[uint64](br.r, n) }

func readWords[T word](r io.Reader, n int) ([]T, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]T, n)
	if _, err := io.ReadFull(r, asBytes(s)); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveToFile replaces filename atomically with what fill writes. The data
// goes to a temp file in the same directory which is synced and renamed.
func SaveToFile(filename string, fill func(io.Writer) error) error {
	dir := filepath.Dir(filename)
	tmp, err := os.CreateTemp(dir, filepath.Base(filename)+".tmp-*")
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	_ = tmp.Chmod(0o644)
	buf := bufio.NewWriterSize(tmp, ioBufferSize)
	if err := fill(buf); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), filename); err != nil {
		return err
	}
	committed = true

	// Persist the rename on POSIX. Failure here leaves a valid file.
	if d, derr := os.Open(dir); derr == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// LoadFromFile passes a buffered reader over filename to read.
func LoadFromFile(filename string, read func(io.Reader) error) error {
	f, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	return read(bufio.NewReaderSize(f, ioBufferSize))
}
