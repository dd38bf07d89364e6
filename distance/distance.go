package distance

import (
	"math/bits"
	"slices"

	"gonum.org/v1/gonum/blas/blas32"
)

func vec(v []float32) blas32.Vector {
	return blas32.Vector{N: len(v), Data: v, Inc: 1}
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	if len(a) == 0 {
		return 0
	}
	return blas32.Dot(vec(a), vec(b))
}

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return blas32.Nrm2(vec(v))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm; v is left untouched in that case.
func NormalizeL2InPlace(v []float32) bool {
	norm := Norm(v)
	if norm == 0 {
		return false
	}
	blas32.Scal(1/norm, vec(v))
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// NormalizeBatch returns unit-norm copies of every vector in src.
// Zero vectors are copied unchanged, so the result is aligned with src.
func NormalizeBatch(src [][]float32) [][]float32 {
	out := make([][]float32, len(src))
	for i, v := range src {
		cp := slices.Clone(v)
		NormalizeL2InPlace(cp)
		out[i] = cp
	}
	return out
}

// Hamming returns the number of differing bits between two packed codes.
// Assumes codes are the same length.
func Hamming(a, b []uint64) int {
	var dist int
	for i := range a {
		dist += bits.OnesCount64(a[i] ^ b[i])
	}
	return dist
}
