package lsh

import (
	"slices"

	"github.com/hupe1980/dknn/distance"
	"github.com/hupe1980/dknn/model"
)

// Index is an immutable LSH index over one layer's training vectors.
// Position i refers to the i-th vector passed to Build.
type Index struct {
	hasher *Hasher
	size   int
	codes  []uint64 // size × hasher.Words(), row-major
}

// Build hashes vectors into a new Index.
//
// Vectors must already be unit-norm; the index does not renormalize.
// All vectors must share the dimension of the first one.
func Build(vectors [][]float32, optFns ...Option) (*Index, error) {
	if len(vectors) == 0 {
		return nil, ErrNoVectors
	}
	opts := applyOptions(optFns)

	dim := len(vectors[0])
	hasher, err := NewHasher(dim, opts.HashBits, opts.Seed)
	if err != nil {
		return nil, err
	}

	words := hasher.Words()
	codes := make([]uint64, len(vectors)*words)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, &model.DimensionMismatchError{Expected: dim, Actual: len(v)}
		}
		hasher.EncodeInto(codes[i*words:(i+1)*words], v)
	}

	return &Index{
		hasher: hasher,
		size:   len(vectors),
		codes:  codes,
	}, nil
}

// FromCodes restores an Index from previously exported codes.
// The hyperplanes are regenerated from (dim, hash bits, seed).
func FromCodes(dim, size int, codes []uint64, optFns ...Option) (*Index, error) {
	if size <= 0 {
		return nil, ErrNoVectors
	}
	opts := applyOptions(optFns)

	hasher, err := NewHasher(dim, opts.HashBits, opts.Seed)
	if err != nil {
		return nil, err
	}
	if len(codes) != size*hasher.Words() {
		return nil, ErrCorruptCodes
	}

	return &Index{
		hasher: hasher,
		size:   size,
		codes:  slices.Clone(codes),
	}, nil
}

// Search returns the k training positions whose codes are closest to the
// code of query, ascending by Hamming distance with ties broken by position.
func (x *Index) Search(query []float32, k int) ([]model.Neighbor, error) {
	if err := x.check(query, k); err != nil {
		return nil, err
	}
	return x.search(x.hasher.Encode(query), k), nil
}

// SearchBatch runs Search for every query, preserving input order.
func (x *Index) SearchBatch(queries [][]float32, k int) ([][]model.Neighbor, error) {
	out := make([][]model.Neighbor, len(queries))
	code := make([]uint64, x.hasher.Words())
	for i, q := range queries {
		if err := x.check(q, k); err != nil {
			return nil, err
		}
		x.hasher.EncodeInto(code, q)
		out[i] = x.search(code, k)
	}
	return out, nil
}

func (x *Index) check(query []float32, k int) error {
	if k <= 0 {
		return model.ErrInvalidK
	}
	if k > x.size {
		return &model.DegenerateIndexError{K: k, Size: x.size}
	}
	if len(query) != x.hasher.Dim() {
		return &model.DimensionMismatchError{Expected: x.hasher.Dim(), Actual: len(query)}
	}
	return nil
}

func (x *Index) search(code []uint64, k int) []model.Neighbor {
	words := x.hasher.Words()
	h := newTopK(k)
	for pos := 0; pos < x.size; pos++ {
		d := distance.Hamming(code, x.codes[pos*words:(pos+1)*words])
		h.push(model.Neighbor{Position: pos, Distance: d})
	}
	return h.sorted()
}

// Len returns the number of indexed vectors.
func (x *Index) Len() int { return x.size }

// Dim returns the input dimension.
func (x *Index) Dim() int { return x.hasher.Dim() }

// HashBits returns the code width in bits.
func (x *Index) HashBits() int { return x.hasher.Bits() }

// Seed returns the hyperplane seed.
func (x *Index) Seed() uint64 { return x.hasher.Seed() }

// Codes returns a copy of the packed code array (Len × words, row-major).
func (x *Index) Codes() []uint64 {
	return slices.Clone(x.codes)
}

// Code returns a copy of the code stored at position pos.
func (x *Index) Code(pos int) []uint64 {
	words := x.hasher.Words()
	return slices.Clone(x.codes[pos*words : (pos+1)*words])
}
