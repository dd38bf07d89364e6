// Package resource bounds the shared resources a classifier consumes:
// code memory of the layer indices, concurrent layer searches, embedder
// throughput, and snapshot IO bandwidth.
//
// A nil *Controller is valid and imposes no limits.
package resource
