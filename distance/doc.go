// Package distance provides the vector primitives used by the layer indices.
//
// Float32 arithmetic goes through gonum's blas32 so that projection, dot
// products and norms share a single BLAS backend.
//
// # Usage
//
//	sim := distance.Dot(a, b)
//	distance.NormalizeL2InPlace(vec)
//	d := distance.Hamming(codeA, codeB)
package distance
