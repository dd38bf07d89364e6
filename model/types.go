package model

import (
	"fmt"
)

// Neighbor is a single nearest-neighbor hit within one layer index.
type Neighbor struct {
	// Position is the index of the training sample the hit refers to.
	Position int
	// Distance is the Hamming distance between the query code and the
	// training code. Lower is closer.
	Distance int
}

// String returns a string representation of the Neighbor.
func (n Neighbor) String() string {
	return fmt.Sprintf("Nb(%d:%d)", n.Position, n.Distance)
}

// Embeddings maps a layer name to a batch of vectors, one per input.
// Every layer in a batch must hold the same number of vectors.
type Embeddings map[string][][]float32

// BatchSize returns the number of inputs in the batch.
//
// All layers must agree; otherwise ErrBatchSizeMismatch is returned.
// An empty Embeddings has batch size zero.
func (e Embeddings) BatchSize() (int, error) {
	size := -1
	for layer, vecs := range e {
		if size == -1 {
			size = len(vecs)
			continue
		}
		if len(vecs) != size {
			return 0, fmt.Errorf("%w: layer %q has %d vectors, expected %d", ErrBatchSizeMismatch, layer, len(vecs), size)
		}
	}
	if size == -1 {
		return 0, nil
	}
	return size, nil
}

// Select returns a view restricted to the given layers.
// A missing layer yields an UnknownLayerError.
func (e Embeddings) Select(layers []string) (Embeddings, error) {
	out := make(Embeddings, len(layers))
	for _, layer := range layers {
		vecs, ok := e[layer]
		if !ok {
			return nil, &UnknownLayerError{Layer: layer}
		}
		out[layer] = vecs
	}
	return out, nil
}
