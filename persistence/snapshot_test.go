package persistence

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/dknn/codec"
)

func fixtureSnapshot() *Snapshot {
	// 3 samples, 128 bits → 2 words per code
	return &Snapshot{
		HashBits:   128,
		K:          2,
		NumClasses: 3,
		Manifest: Manifest{
			Layers: []LayerManifest{
				{Name: "conv", Dim: 4, Seed: 7, Count: 3},
				{Name: "fc", Dim: 2, Seed: 7, Count: 3},
			},
			TrainSize:       3,
			CalibrationSize: 4,
		},
		Labels:        []int32{0, 2, 1},
		Nonconformity: []int32{0, 1, 1, 3},
		Codes: [][]uint64{
			{1, 2, 3, 4, 5, 6},
			{0, 0, 0, 0, 1 << 63, 1 << 63},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZSTD} {
		for _, cd := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
			t.Run(c.String()+"/"+cd.Name(), func(t *testing.T) {
				in := fixtureSnapshot()
				var buf bytes.Buffer
				require.NoError(t, Write(&buf, in, c, cd))

				out, err := Read(&buf, cd)
				require.NoError(t, err)
				assert.Equal(t, in, out)
			})
		}
	}
}

func TestSnapshotCompressesLargePayload(t *testing.T) {
	s := fixtureSnapshot()
	n := 4096
	s.Manifest.TrainSize = n
	s.Labels = make([]int32, n)
	for i := range s.Manifest.Layers {
		s.Manifest.Layers[i].Count = n
		s.Codes[i] = make([]uint64, n*2)
	}

	var plain, packed bytes.Buffer
	require.NoError(t, Write(&plain, s, CompressionNone, nil))
	require.NoError(t, Write(&packed, s, CompressionZSTD, nil))
	assert.Less(t, packed.Len(), plain.Len()/4)

	out, err := Read(&packed, nil)
	require.NoError(t, err)
	assert.Equal(t, s.Codes, out.Codes)
}

func TestSnapshotDetectsCorruption(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, fixtureSnapshot(), CompressionNone, nil))
	data := buf.Bytes()

	data[len(data)-1] ^= 0xFF
	_, err := Read(bytes.NewReader(data), nil)
	assert.True(t, IsChecksumMismatch(err))

	_, err = Read(bytes.NewReader(data[:HeaderSize+3]), nil)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestWriteRejectsInconsistentSnapshot(t *testing.T) {
	s := fixtureSnapshot()
	s.Codes[1] = s.Codes[1][:4]
	assert.ErrorIs(t, Write(&bytes.Buffer{}, s, CompressionNone, nil), ErrCorrupt)

	s = fixtureSnapshot()
	s.Labels = s.Labels[:2]
	assert.ErrorIs(t, Write(&bytes.Buffer{}, s, CompressionNone, nil), ErrCorrupt)

	s = fixtureSnapshot()
	s.Manifest.Layers[0].Dim = MaxDim + 1
	assert.ErrorIs(t, Write(&bytes.Buffer{}, s, CompressionNone, nil), ErrCorrupt)

	s = fixtureSnapshot()
	s.Manifest.Layers[1].Dim = 0
	assert.ErrorIs(t, Write(&bytes.Buffer{}, s, CompressionNone, nil), ErrCorrupt)

	s = fixtureSnapshot()
	s.HashBits = MaxHashBits + 1
	assert.ErrorIs(t, Write(&bytes.Buffer{}, s, CompressionNone, nil), ErrCorrupt)
}

func TestSnapshotCheck(t *testing.T) {
	s := fixtureSnapshot()

	assert.NoError(t, s.Check(Expect{}))
	assert.NoError(t, s.Check(Expect{HashBits: 128, K: 2, NumClasses: 3, Layers: []string{"conv", "fc"}}))

	for name, e := range map[string]Expect{
		"hash bits": {HashBits: 256},
		"k":         {K: 3},
		"classes":   {NumClasses: 10},
		"layers":    {Layers: []string{"fc", "conv"}},
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Check(e), ErrSnapshotMismatch)
		})
	}
}

func TestReadManifest(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, fixtureSnapshot(), CompressionLZ4, nil))

	h, m, err := ReadManifest(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(128), h.HashBits)
	assert.Equal(t, []string{"conv", "fc"}, m.LayerNames())
	assert.Equal(t, 4, m.CalibrationSize)
}
