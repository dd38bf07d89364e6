package persistence

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	"github.com/hupe1980/dknn/codec"
)

// LayerManifest describes one layer index in a snapshot.
type LayerManifest struct {
	Name  string `json:"name"`
	Dim   int    `json:"dim"`
	Seed  uint64 `json:"seed"`
	Count int    `json:"count"`
}

// Manifest is the JSON section following the header.
type Manifest struct {
	Layers          []LayerManifest `json:"layers"`
	TrainSize       int             `json:"train_size"`
	CalibrationSize int             `json:"calibration_size"`
}

// LayerNames returns the layer names in snapshot order.
func (m *Manifest) LayerNames() []string {
	names := make([]string, len(m.Layers))
	for i, l := range m.Layers {
		names[i] = l.Name
	}
	return names
}

// Snapshot is the decoded content of a snapshot file.
type Snapshot struct {
	HashBits   int
	K          int
	NumClasses int
	Manifest   Manifest

	// Labels holds the training label of every position.
	Labels []int32
	// Nonconformity holds the calibration scores.
	Nonconformity []int32
	// Codes holds the packed codes of every layer, in Manifest.Layers order.
	Codes [][]uint64
}

// Expect lists the configuration a snapshot must match on load.
// Zero fields are not checked.
type Expect struct {
	HashBits   int
	K          int
	NumClasses int
	Layers     []string
}

// Check reports ErrSnapshotMismatch if s disagrees with e.
func (s *Snapshot) Check(e Expect) error {
	if e.HashBits != 0 && e.HashBits != s.HashBits {
		return fmt.Errorf("%w: hash bits %d, expected %d", ErrSnapshotMismatch, s.HashBits, e.HashBits)
	}
	if e.K != 0 && e.K != s.K {
		return fmt.Errorf("%w: k %d, expected %d", ErrSnapshotMismatch, s.K, e.K)
	}
	if e.NumClasses != 0 && e.NumClasses != s.NumClasses {
		return fmt.Errorf("%w: %d classes, expected %d", ErrSnapshotMismatch, s.NumClasses, e.NumClasses)
	}
	if len(e.Layers) > 0 && !slices.Equal(e.Layers, s.Manifest.LayerNames()) {
		return fmt.Errorf("%w: layers %v, expected %v", ErrSnapshotMismatch, s.Manifest.LayerNames(), e.Layers)
	}
	return nil
}

func wordsFor(bits int) int {
	return (bits + 63) / 64
}

func (s *Snapshot) validate() error {
	if s.HashBits <= 0 || s.K <= 0 || s.NumClasses <= 0 {
		return fmt.Errorf("%w: non-positive hash bits, k or class count", ErrCorrupt)
	}
	if s.HashBits > MaxHashBits {
		return fmt.Errorf("%w: hash bits %d exceed %d", ErrCorrupt, s.HashBits, MaxHashBits)
	}
	if len(s.Codes) != len(s.Manifest.Layers) {
		return fmt.Errorf("%w: %d code arrays for %d layers", ErrCorrupt, len(s.Codes), len(s.Manifest.Layers))
	}
	if len(s.Labels) != s.Manifest.TrainSize {
		return fmt.Errorf("%w: %d labels, manifest says %d", ErrCorrupt, len(s.Labels), s.Manifest.TrainSize)
	}
	if len(s.Nonconformity) != s.Manifest.CalibrationSize {
		return fmt.Errorf("%w: %d scores, manifest says %d", ErrCorrupt, len(s.Nonconformity), s.Manifest.CalibrationSize)
	}
	words := wordsFor(s.HashBits)
	for i, l := range s.Manifest.Layers {
		if l.Dim <= 0 || l.Dim > MaxDim {
			return fmt.Errorf("%w: layer %q has dimension %d", ErrCorrupt, l.Name, l.Dim)
		}
		if l.Count != s.Manifest.TrainSize {
			return fmt.Errorf("%w: layer %q holds %d codes for %d samples", ErrCorrupt, l.Name, l.Count, s.Manifest.TrainSize)
		}
		if len(s.Codes[i]) != l.Count*words {
			return fmt.Errorf("%w: layer %q code array has %d words", ErrCorrupt, l.Name, len(s.Codes[i]))
		}
	}
	return nil
}

func (s *Snapshot) rawLen() int {
	n := 4*len(s.Labels) + 4*len(s.Nonconformity)
	for _, c := range s.Codes {
		n += 8 * len(c)
	}
	return n
}

// Write encodes s to w. The manifest is encoded with c (codec.Default if nil).
func Write(w io.Writer, s *Snapshot, compression Compression, c codec.Codec) error {
	if c == nil {
		c = codec.Default
	}
	if err := s.validate(); err != nil {
		return err
	}

	manifest, err := c.Marshal(&s.Manifest)
	if err != nil {
		return fmt.Errorf("persistence: encode manifest: %w", err)
	}

	raw := bytes.NewBuffer(make([]byte, 0, s.rawLen()))
	bw := NewBinaryWriter(raw)
	if err := bw.WriteInt32Slice(s.Labels); err != nil {
		return err
	}
	if err := bw.WriteInt32Slice(s.Nonconformity); err != nil {
		return err
	}
	for _, codes := range s.Codes {
		if err := bw.WriteUint64Slice(codes); err != nil {
			return err
		}
	}

	payload, applied, err := compress(raw.Bytes(), compression)
	if err != nil {
		return fmt.Errorf("persistence: compress payload: %w", err)
	}

	header := &FileHeader{
		Compression: uint8(applied),
		HashBits:    uint32(s.HashBits),
		K:           uint32(s.K),
		NumClasses:  uint32(s.NumClasses),
		ManifestLen: uint32(len(manifest)),
		PayloadLen:  uint64(len(payload)),
		RawLen:      uint64(raw.Len()),
		Checksum:    CalculateChecksum(manifest, payload),
	}

	out := NewBinaryWriter(w)
	if err := out.WriteHeader(header); err != nil {
		return err
	}
	if _, err := w.Write(manifest); err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

// Read decodes a snapshot from r. The manifest is decoded with c
// (codec.Default if nil).
func Read(r io.Reader, c codec.Codec) (*Snapshot, error) {
	if c == nil {
		c = codec.Default
	}

	header, err := NewBinaryReader(r).ReadHeader()
	if err != nil {
		return nil, err
	}
	if header.ManifestLen > MaxManifestSize || header.PayloadLen > MaxPayloadSize || header.RawLen > MaxPayloadSize {
		return nil, fmt.Errorf("%w: section sizes exceed limits", ErrCorrupt)
	}

	cr := NewChecksumReader(r)
	manifest := make([]byte, header.ManifestLen)
	if _, err := io.ReadFull(cr, manifest); err != nil {
		return nil, fmt.Errorf("%w: read manifest: %w", ErrCorrupt, err)
	}
	payload := make([]byte, header.PayloadLen)
	if _, err := io.ReadFull(cr, payload); err != nil {
		return nil, fmt.Errorf("%w: read payload: %w", ErrCorrupt, err)
	}
	if err := cr.Verify(header.Checksum); err != nil {
		return nil, err
	}

	s := &Snapshot{
		HashBits:   int(header.HashBits),
		K:          int(header.K),
		NumClasses: int(header.NumClasses),
	}
	if err := c.Unmarshal(manifest, &s.Manifest); err != nil {
		return nil, fmt.Errorf("%w: decode manifest: %w", ErrCorrupt, err)
	}
	if s.HashBits <= 0 || s.HashBits > MaxHashBits {
		return nil, fmt.Errorf("%w: hash bits %d", ErrCorrupt, s.HashBits)
	}

	raw, err := decompress(payload, Compression(header.Compression), int(header.RawLen))
	if err != nil {
		return nil, err
	}

	expected := 4*s.Manifest.TrainSize + 4*s.Manifest.CalibrationSize
	words := wordsFor(s.HashBits)
	for _, l := range s.Manifest.Layers {
		if l.Count < 0 || l.Count > MaxPayloadSize/8 {
			return nil, fmt.Errorf("%w: count %d on layer %q", ErrCorrupt, l.Count, l.Name)
		}
		expected += 8 * l.Count * words
	}
	if s.Manifest.TrainSize < 0 || s.Manifest.CalibrationSize < 0 || expected != len(raw) {
		return nil, fmt.Errorf("%w: payload is %d bytes, manifest implies %d", ErrCorrupt, len(raw), expected)
	}

	br := NewBinaryReader(bytes.NewReader(raw))
	if s.Labels, err = br.ReadInt32Slice(s.Manifest.TrainSize); err != nil {
		return nil, err
	}
	if s.Nonconformity, err = br.ReadInt32Slice(s.Manifest.CalibrationSize); err != nil {
		return nil, err
	}
	s.Codes = make([][]uint64, len(s.Manifest.Layers))
	for i, l := range s.Manifest.Layers {
		if s.Codes[i], err = br.ReadUint64Slice(l.Count * words); err != nil {
			return nil, err
		}
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// ReadManifest decodes only the header and manifest of a snapshot.
// The payload is neither read nor verified.
func ReadManifest(r io.Reader, c codec.Codec) (*FileHeader, *Manifest, error) {
	if c == nil {
		c = codec.Default
	}
	header, err := NewBinaryReader(r).ReadHeader()
	if err != nil {
		return nil, nil, err
	}
	if header.ManifestLen > MaxManifestSize {
		return nil, nil, fmt.Errorf("%w: manifest exceeds limit", ErrCorrupt)
	}
	buf := make([]byte, header.ManifestLen)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, nil, fmt.Errorf("%w: read manifest: %w", ErrCorrupt, err)
	}
	var m Manifest
	if err := c.Unmarshal(buf, &m); err != nil {
		return nil, nil, fmt.Errorf("%w: decode manifest: %w", ErrCorrupt, err)
	}
	return header, &m, nil
}
