// Package model defines the core types shared by every dknn package.
//
// # Data Types
//
//   - Embeddings: per-layer batches of float32 vectors (layer name → vectors)
//   - Neighbor: one (distance, position) hit returned by a layer index
//   - Labels: the training label array, shared by every layer index
//   - VoteMatrix: per-sample, per-class neighbor vote counts
//
// # Errors
//
// The error taxonomy lives here so that the index, aggregation and
// calibration packages can report the same structural failures. The root
// dknn package re-exports every type.
package model
