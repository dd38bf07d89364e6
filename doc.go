// Package dknn implements a Deep k-Nearest-Neighbor classifier with
// conformal credibility.
//
// An input is embedded at several depths of an external feature pipeline.
// At every depth the classifier looks up the k nearest training vectors in a
// random-hyperplane LSH index, pools their labels into per-class vote counts
// and reports the argmax class together with a credibility: the fraction of
// held-out calibration samples that looked at least as unusual as the input.
//
// # Quick Start
//
//	embed := dknn.EmbedFunc[Image](func(ctx context.Context, in []Image) (model.Embeddings, error) {
//	    return net.Activations(ctx, in, "conv1", "conv2", "fc")
//	})
//
//	clf, err := dknn.New[Image](embed).
//	    Layers("conv1", "conv2", "fc").
//	    K(75).
//	    NumClasses(10).
//	    Build(ctx, train, cal)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer clf.Close()
//
//	results, err := clf.Evaluate(ctx, batch)
//
// # Build Phases
//
// Build embeds the training set once and freezes one index per layer. It
// then embeds the calibration set, votes against the frozen indices and
// stores one nonconformity score per calibration sample:
//
//	α = k × layers − votes[true label]
//
// A query with vote row v has credibility |{i : α_i ≥ k × layers − max(v)}| / n.
//
// # Snapshots
//
// A classifier can be written with Save, SaveFile or Publish and restored
// with Load, LoadFile or LoadCurrent. Snapshots hold the packed LSH codes,
// the training labels and the calibration scores; the hyperplanes are
// regenerated from the stored seed. Publish targets any blobstore.BlobStore
// (local disk, S3, MinIO) and updates the CURRENT pointer last.
package dknn
