// Package lsh implements the per-layer approximate nearest-neighbor index.
//
// Vectors are projected onto a fixed number of random hyperplanes and the
// sign of each projection becomes one bit of a packed binary code
// (random-hyperplane LSH). For unit-norm inputs the Hamming distance between
// two codes is an estimator of the angle between the vectors, so ranking by
// Hamming distance approximates ranking by inner product.
//
// The code width (hash bits) is independent of the input dimension and is
// configured with WithHashBits (default 256). Hyperplanes are drawn from a
// seeded PCG generator, making Build deterministic for a fixed seed.
//
// An Index is immutable after Build. Search is a pure read and is safe for
// concurrent use without locking.
package lsh
