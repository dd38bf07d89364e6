package lsh

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
)

// Hasher projects vectors onto random hyperplanes and packs the signs
// into binary codes.
type Hasher struct {
	dim    int
	bits   int
	words  int
	seed   uint64
	planes blas32.General // bits × dim, each row is a unit hyperplane
}

// NewHasher creates a Hasher for dim-dimensional inputs emitting bits-wide codes.
// The same (dim, bits, seed) triple always yields the same hyperplanes.
func NewHasher(dim, bits int, seed uint64) (*Hasher, error) {
	if dim <= 0 {
		return nil, ErrInvalidDimension
	}
	if bits <= 0 {
		return nil, ErrInvalidHashBits
	}
	if dim > math.MaxInt/bits {
		return nil, fmt.Errorf("%w: %d hyperplanes of dimension %d overflow", ErrInvalidDimension, bits, dim)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	data := make([]float32, bits*dim)
	for i := 0; i < bits; i++ {
		row := data[i*dim : (i+1)*dim]
		// Sample from standard normal distribution then normalize.
		var norm float64
		for j := range row {
			v := rng.NormFloat64()
			row[j] = float32(v)
			norm += v * v
		}
		norm = math.Sqrt(norm)
		if norm > 0 {
			scale := float32(1 / norm)
			for j := range row {
				row[j] *= scale
			}
		}
	}

	return &Hasher{
		dim:   dim,
		bits:  bits,
		words: WordsFor(bits),
		seed:  seed,
		planes: blas32.General{
			Rows:   bits,
			Cols:   dim,
			Stride: dim,
			Data:   data,
		},
	}, nil
}

// Encode returns the packed code of v. len(v) must equal Dim.
func (h *Hasher) Encode(v []float32) []uint64 {
	code := make([]uint64, h.words)
	h.EncodeInto(code, v)
	return code
}

// EncodeInto writes the packed code of v into dst, which must hold Words() words.
func (h *Hasher) EncodeInto(dst []uint64, v []float32) {
	proj := make([]float32, h.bits)
	blas32.Gemv(blas.NoTrans, 1, h.planes,
		blas32.Vector{N: h.dim, Data: v, Inc: 1},
		0, blas32.Vector{N: h.bits, Data: proj, Inc: 1})
	PackSigns(dst, proj)
}

// Dim returns the expected input dimension.
func (h *Hasher) Dim() int { return h.dim }

// Bits returns the code width in bits.
func (h *Hasher) Bits() int { return h.bits }

// Words returns the number of uint64 words per code.
func (h *Hasher) Words() int { return h.words }

// Seed returns the hyperplane seed.
func (h *Hasher) Seed() uint64 { return h.seed }
