package persistence

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderSize(t *testing.T) {
	assert.Equal(t, HeaderSize, binary.Size(FileHeader{}))
}

func TestBinaryWriteRead(t *testing.T) {
	var buf bytes.Buffer
	w := NewBinaryWriter(&buf)

	require.NoError(t, w.WriteHeader(&FileHeader{HashBits: 256, K: 5}))
	require.NoError(t, w.WriteInt32Slice([]int32{1, -2, 3}))
	require.NoError(t, w.WriteUint64Slice([]uint64{0, 1 << 63, 42}))
	require.NoError(t, w.WriteInt32Slice(nil))

	r := NewBinaryReader(&buf)
	h, err := r.ReadHeader()
	require.NoError(t, err)
	assert.Equal(t, uint32(256), h.HashBits)
	assert.Equal(t, uint32(5), h.K)

	ints, err := r.ReadInt32Slice(3)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 3}, ints)

	words, err := r.ReadUint64Slice(3)
	require.NoError(t, err)
	assert.Equal(t, []uint64{0, 1 << 63, 42}, words)

	empty, err := r.ReadUint64Slice(0)
	require.NoError(t, err)
	assert.Nil(t, empty)

	_, err = r.ReadInt32Slice(1)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadHeaderRejectsForeignData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &FileHeader{Magic: 0x56454330, Version: Version}))
	_, err := NewBinaryReader(&buf).ReadHeader()
	assert.ErrorIs(t, err, ErrInvalidMagic)

	buf.Reset()
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, &FileHeader{Magic: MagicNumber, Version: 99}))
	_, err = NewBinaryReader(&buf).ReadHeader()
	assert.ErrorIs(t, err, ErrInvalidVersion)
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")

	require.NoError(t, SaveToFile(path, func(w io.Writer) error {
		_, err := w.Write([]byte("hello"))
		return err
	}))

	var got []byte
	require.NoError(t, LoadFromFile(path, func(r io.Reader) error {
		var err error
		got, err = io.ReadAll(r)
		return err
	}))
	assert.Equal(t, []byte("hello"), got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file must not be left behind")
}

func TestSaveToFileFailureKeepsOriginal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snap.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	err := SaveToFile(path, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return io.ErrUnexpectedEOF
	})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestChecksumReader(t *testing.T) {
	data := []byte("the quick brown fox")
	cr := NewChecksumReader(bytes.NewReader(data))
	_, err := io.ReadAll(cr)
	require.NoError(t, err)

	require.NoError(t, cr.Verify(CalculateChecksum(data[:4], data[4:])))

	err = cr.Verify(1)
	assert.True(t, IsChecksumMismatch(err))
	assert.ErrorIs(t, err, ErrCorrupt)
	assert.Equal(t, crc32.ChecksumIEEE(data), cr.Sum())
}

func TestCompressionRoundTrip(t *testing.T) {
	raw := bytes.Repeat([]byte("dknn-codes-"), 512)

	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			stored, applied, err := compress(raw, c)
			require.NoError(t, err)
			assert.Equal(t, c, applied)
			if c != CompressionNone {
				assert.Less(t, len(stored), len(raw))
			}

			out, err := decompress(stored, applied, len(raw))
			require.NoError(t, err)
			assert.Equal(t, raw, out)
		})
	}
}

func TestCompressionFallsBackOnIncompressible(t *testing.T) {
	raw := []byte{0x01}
	stored, applied, err := compress(raw, CompressionZSTD)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, applied)
	assert.Equal(t, raw, stored)
}

func TestParseCompression(t *testing.T) {
	tests := []struct {
		in      string
		want    Compression
		wantErr bool
	}{
		{"", CompressionNone, false},
		{"none", CompressionNone, false},
		{"LZ4", CompressionLZ4, false},
		{"zstd", CompressionZSTD, false},
		{"gzip", CompressionNone, true},
	}
	for _, tt := range tests {
		got, err := ParseCompression(tt.in)
		if tt.wantErr {
			assert.Error(t, err)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestCheckPlatform(t *testing.T) {
	assert.NoError(t, checkPlatform("amd64", true))
	assert.NoError(t, checkPlatform("arm64", true))
	assert.ErrorIs(t, checkPlatform("s390x", false), ErrUnsupportedPlatform)
	assert.ErrorIs(t, checkPlatform("386", true), ErrUnsupportedPlatform)
}
