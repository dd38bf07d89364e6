// Package dataset reads and writes precomputed per-layer embeddings as
// JSON Lines, one Record per line.
//
//	{"label":3,"layers":{"conv1":[0.1,0.2],"fc":[0.7,0.1,0.4]}}
package dataset

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/goccy/go-json"

	"github.com/hupe1980/dknn/model"
)

// MaxLineSize bounds a single JSONL record.
const MaxLineSize = 64 << 20

// NoLabel marks a record without a known class, e.g. a query.
const NoLabel = -1

// Record is one sample with its embeddings at every layer.
type Record struct {
	ID     string               `json:"id,omitempty"`
	Label  int                  `json:"label"`
	Layers map[string][]float32 `json:"layers"`
}

// Read decodes every record from r. Blank lines are skipped.
func Read(r io.Reader) ([]Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	var records []Record
	line := 0
	for sc.Scan() {
		line++
		b := sc.Bytes()
		if len(b) == 0 {
			continue
		}
		rec := Record{Label: NoLabel}
		if err := json.Unmarshal(b, &rec); err != nil {
			return nil, fmt.Errorf("dataset: line %d: %w", line, err)
		}
		if len(rec.Layers) == 0 {
			return nil, fmt.Errorf("dataset: line %d: no layers", line)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	return records, nil
}

// ReadFile reads all records of a JSONL file.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

// Writer encodes values as JSON Lines.
type Writer struct {
	w   *bufio.Writer
	enc *json.Encoder
}

// NewWriter creates a Writer. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{w: bw, enc: json.NewEncoder(bw)}
}

// Write encodes v on its own line.
func (w *Writer) Write(v any) error {
	return w.enc.Encode(v)
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}

// Labels returns the label of every record.
// Records with NoLabel are rejected.
func Labels(records []Record) ([]int, error) {
	labels := make([]int, len(records))
	for i, r := range records {
		if r.Label == NoLabel {
			return nil, fmt.Errorf("dataset: record %d has no label", i)
		}
		labels[i] = r.Label
	}
	return labels, nil
}

// ErrEmpty is returned when a batch holds no records.
var ErrEmpty = errors.New("dataset: no records")

// Embedder serves precomputed embeddings stored in the records themselves.
// It satisfies dknn.Embedder[Record].
type Embedder struct{}

// Embed gathers each record's vectors by layer. Every record must carry the
// same layer set.
func (Embedder) Embed(_ context.Context, records []Record) (model.Embeddings, error) {
	if len(records) == 0 {
		return model.Embeddings{}, nil
	}
	emb := make(model.Embeddings, len(records[0].Layers))
	for layer := range records[0].Layers {
		emb[layer] = make([][]float32, len(records))
	}
	for i, r := range records {
		if len(r.Layers) != len(emb) {
			return nil, fmt.Errorf("%w: record %d has %d layers, expected %d", model.ErrBatchSizeMismatch, i, len(r.Layers), len(emb))
		}
		for layer, v := range r.Layers {
			vecs, ok := emb[layer]
			if !ok {
				return nil, &model.UnknownLayerError{Layer: layer}
			}
			vecs[i] = v
		}
	}
	return emb, nil
}

// LayerNames returns the layer names of the first record in sorted order.
func LayerNames(records []Record) ([]string, error) {
	if len(records) == 0 {
		return nil, ErrEmpty
	}
	names := make([]string, 0, len(records[0].Layers))
	for name := range records[0].Layers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}
