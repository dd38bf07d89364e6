package dknn

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/dknn/blobstore"
	"github.com/hupe1980/dknn/conformal"
	"github.com/hupe1980/dknn/lsh"
	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/persistence"
	"github.com/hupe1980/dknn/registry"
	"github.com/hupe1980/dknn/resource"
)

// snapshot captures the frozen state of c.
func (c *Classifier[T]) snapshot() (*persistence.Snapshot, error) {
	layers := c.reg.Layers()
	s := &persistence.Snapshot{
		HashBits:   c.HashBits(),
		K:          c.k,
		NumClasses: c.numClasses,
		Manifest: persistence.Manifest{
			Layers:          make([]persistence.LayerManifest, len(layers)),
			TrainSize:       c.reg.Size(),
			CalibrationSize: c.cal.Len(),
		},
		Codes: make([][]uint64, len(layers)),
	}
	for i, layer := range layers {
		idx, err := c.reg.Index(layer)
		if err != nil {
			return nil, err
		}
		s.Manifest.Layers[i] = persistence.LayerManifest{
			Name:  layer,
			Dim:   idx.Dim(),
			Seed:  idx.Seed(),
			Count: idx.Len(),
		}
		s.Codes[i] = idx.Codes()
	}

	s.Labels = toInt32(c.reg.Labels().Values())
	s.Nonconformity = toInt32(c.cal.Scores())
	return s, nil
}

func (c *Classifier[T]) save(ctx context.Context, w io.Writer, optFns []Option) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	opts := applyOptions(c.saveOptions, optFns)
	s, err := c.snapshot()
	if err != nil {
		return err
	}
	return persistence.Write(resource.LimitWriter(ctx, w, c.rc), s, opts.compression, opts.codec)
}

// Save writes a snapshot of the classifier to w.
func (c *Classifier[T]) Save(w io.Writer, optFns ...Option) error {
	return c.save(context.Background(), w, optFns)
}

// SaveFile atomically writes a snapshot to path.
func (c *Classifier[T]) SaveFile(path string, optFns ...Option) error {
	err := persistence.SaveToFile(path, func(w io.Writer) error {
		return c.save(context.Background(), w, optFns)
	})
	c.logger.LogSnapshot(context.Background(), "save", path, err)
	return err
}

type aborter interface {
	Abort() error
}

// Publish uploads a snapshot as blob name and then points CURRENT at it.
// Readers using LoadCurrent never observe a partially written snapshot.
func (c *Classifier[T]) Publish(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (err error) {
	defer func() {
		c.logger.LogSnapshot(ctx, "publish", name, err)
	}()

	if name == blobstore.CurrentName {
		return fmt.Errorf("%w: snapshot name %q is reserved", ErrInvalidConfig, name)
	}

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := c.save(ctx, w, optFns); err != nil {
		if a, ok := w.(aborter); ok {
			_ = a.Abort()
		} else {
			_ = w.Close()
			_ = store.Delete(ctx, name)
		}
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return store.Put(ctx, blobstore.CurrentName, []byte(name+"\n"))
}

// Load restores a classifier from a snapshot written by Save.
//
// Every configured value (hash bits, k, class count, layers) must match the
// snapshot; unset values are taken from it. A mismatch returns
// ErrSnapshotMismatch.
func (b Builder[T]) Load(ctx context.Context, r io.Reader, optFns ...Option) (*Classifier[T], error) {
	if b.embedder == nil {
		return nil, fmt.Errorf("%w: nil embedder", ErrInvalidConfig)
	}
	opts := applyOptions(options{codec: b.codec, compression: b.compression}, optFns)
	rc := b.controller()

	s, err := persistence.Read(resource.LimitReader(ctx, r, rc), opts.codec)
	if err != nil {
		return nil, err
	}
	if err := s.Check(persistence.Expect{
		HashBits:   b.hashBits,
		K:          b.k,
		NumClasses: b.numClasses,
		Layers:     b.layers,
	}); err != nil {
		return nil, err
	}

	labels, err := model.NewLabels(fromInt32(s.Labels), s.NumClasses)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}

	layers := s.Manifest.LayerNames()
	indices := make([]*lsh.Index, len(layers))
	for i, l := range s.Manifest.Layers {
		indices[i], err = lsh.FromCodes(l.Dim, l.Count, s.Codes[i], lsh.WithHashBits(s.HashBits), lsh.WithSeed(l.Seed))
		if err != nil {
			return nil, fmt.Errorf("%w: layer %q: %w", persistence.ErrCorrupt, l.Name, err)
		}
	}
	reg, err := registry.FromIndices(layers, indices, labels)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}
	cal, err := conformal.New(fromInt32(s.Nonconformity), s.K*len(layers))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", persistence.ErrCorrupt, err)
	}

	clf := b.classifier(reg, cal, rc, s.K, s.NumClasses)
	clf.saveOptions.codec = opts.codec
	return clf, nil
}

// LoadFile restores a classifier from a snapshot file.
func (b Builder[T]) LoadFile(ctx context.Context, path string, optFns ...Option) (clf *Classifier[T], err error) {
	err = persistence.LoadFromFile(path, func(r io.Reader) error {
		var err error
		clf, err = b.Load(ctx, r, optFns...)
		return err
	})
	logger, _ := b.ambient()
	logger.LogSnapshot(ctx, "load", path, err)
	if err != nil {
		return nil, err
	}
	return clf, nil
}

// LoadBlob restores a classifier from blob name in store.
func (b Builder[T]) LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (clf *Classifier[T], err error) {
	logger, _ := b.ambient()
	defer func() {
		logger.LogSnapshot(ctx, "load", name, err)
	}()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	r, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	return b.Load(ctx, r, optFns...)
}

// LoadCurrent restores the classifier CURRENT points at.
func (b Builder[T]) LoadCurrent(ctx context.Context, store blobstore.BlobStore, optFns ...Option) (*Classifier[T], error) {
	name, err := blobstore.ReadCurrent(ctx, store)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("no published snapshot: %w", err)
		}
		return nil, err
	}
	return b.LoadBlob(ctx, store, name, optFns...)
}

func toInt32(v []int) []int32 {
	out := make([]int32, len(v))
	for i, x := range v {
		out[i] = int32(x)
	}
	return out
}

func fromInt32(v []int32) []int {
	out := make([]int, len(v))
	for i, x := range v {
		out[i] = int(x)
	}
	return out
}
