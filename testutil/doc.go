// Package testutil provides testing utilities for dknn.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random and clustered vectors,
// computing exact nearest neighbors by cosine similarity, and measuring
// the recall of the approximate layer indices.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.UnitVectors(100, 64)
//	vecs, labels := rng.LabeledClusters(300, 64, 3, 0.1)
//
// # Exact Search (Ground Truth)
//
//	exact := testutil.BruteForceSearch(vectors, query, k)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(exact, approx)
package testutil
