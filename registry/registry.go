// Package registry holds the frozen per-layer indices of a classifier.
//
// A Registry owns the ordered layer names, one lsh.Index per layer, and the
// training labels shared by every index. It is built once and never
// mutated, so it may be read from any number of goroutines.
package registry

import (
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dknn/distance"
	"github.com/hupe1980/dknn/lsh"
	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/resource"
)

// ErrNoLayers is returned when a registry is built without layers.
var ErrNoLayers = errors.New("registry: no layers configured")

// ErrDuplicateLayer is returned when a layer name is configured twice.
var ErrDuplicateLayer = errors.New("registry: duplicate layer")

// ErrMemoryLimit is returned when index codes exceed the controller's memory limit.
var ErrMemoryLimit = errors.New("registry: index memory limit exceeded")

// Options configures Build.
type Options struct {
	// Index holds the options applied to every layer index.
	Index []lsh.Option
	// Parallelism bounds concurrent layer builds. Values <= 0 mean one per layer.
	Parallelism int
	// Resources, if set, accounts for code memory.
	Resources *resource.Controller
}

// Registry maps layer names to frozen indices over a shared label array.
type Registry struct {
	layers   []string
	position map[string]int
	indices  []*lsh.Index
	labels   *model.Labels
	reserved int64
}

// Build normalizes the training vectors of every layer and builds one index
// per layer. train must contain every layer with exactly labels.Len() vectors.
// The call is all-or-nothing: on error no registry is returned and any
// reserved memory is released.
func Build(ctx context.Context, layers []string, train model.Embeddings, labels *model.Labels, opts Options) (*Registry, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}

	position := make(map[string]int, len(layers))
	for i, layer := range layers {
		if _, dup := position[layer]; dup {
			return nil, ErrDuplicateLayer
		}
		position[layer] = i
		vecs, ok := train[layer]
		if !ok {
			return nil, &model.UnknownLayerError{Layer: layer}
		}
		if len(vecs) != labels.Len() {
			return nil, model.ErrBatchSizeMismatch
		}
	}

	reserved := int64(len(layers)) * lsh.CodeBytes(labels.Len(), opts.Index...)
	if !opts.Resources.TryAcquireMemory(reserved) {
		return nil, ErrMemoryLimit
	}

	indices := make([]*lsh.Index, len(layers))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}
	for i, layer := range layers {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			idx, err := lsh.Build(distance.NormalizeBatch(train[layer]), opts.Index...)
			if err != nil {
				return WithLayer(err, layer)
			}
			indices[i] = idx
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		opts.Resources.ReleaseMemory(reserved)
		return nil, err
	}

	return &Registry{
		layers:   slices.Clone(layers),
		position: position,
		indices:  indices,
		labels:   labels,
		reserved: reserved,
	}, nil
}

// FromIndices assembles a registry from already built indices,
// e.g. restored from a snapshot. indices[i] belongs to layers[i].
func FromIndices(layers []string, indices []*lsh.Index, labels *model.Labels) (*Registry, error) {
	if len(layers) == 0 {
		return nil, ErrNoLayers
	}
	if len(layers) != len(indices) {
		return nil, model.ErrBatchSizeMismatch
	}

	position := make(map[string]int, len(layers))
	for i, layer := range layers {
		if _, dup := position[layer]; dup {
			return nil, ErrDuplicateLayer
		}
		position[layer] = i
		if indices[i].Len() != labels.Len() {
			return nil, model.ErrBatchSizeMismatch
		}
	}

	return &Registry{
		layers:   slices.Clone(layers),
		position: position,
		indices:  slices.Clone(indices),
		labels:   labels,
	}, nil
}

// Release returns the reserved code memory to rc.
func (r *Registry) Release(rc *resource.Controller) {
	rc.ReleaseMemory(r.reserved)
	r.reserved = 0
}

// Layers returns the configured layer names in order.
func (r *Registry) Layers() []string {
	return slices.Clone(r.layers)
}

// NumLayers returns the number of layers.
func (r *Registry) NumLayers() int {
	return len(r.layers)
}

// Has reports whether layer is registered.
func (r *Registry) Has(layer string) bool {
	_, ok := r.position[layer]
	return ok
}

// Index returns the index of layer.
func (r *Registry) Index(layer string) (*lsh.Index, error) {
	i, ok := r.position[layer]
	if !ok {
		return nil, &model.UnknownLayerError{Layer: layer}
	}
	return r.indices[i], nil
}

// Labels returns the shared training labels.
func (r *Registry) Labels() *model.Labels {
	return r.labels
}

// Size returns the number of training samples.
func (r *Registry) Size() int {
	return r.labels.Len()
}

// Resolve validates a layer selection and returns it de-duplicated in
// registry order. An empty selection resolves to every layer.
func (r *Registry) Resolve(layers []string) ([]string, error) {
	if len(layers) == 0 {
		return r.Layers(), nil
	}
	selected := make([]bool, len(r.layers))
	for _, layer := range layers {
		i, ok := r.position[layer]
		if !ok {
			return nil, &model.UnknownLayerError{Layer: layer}
		}
		selected[i] = true
	}
	out := make([]string, 0, len(layers))
	for i, ok := range selected {
		if ok {
			out = append(out, r.layers[i])
		}
	}
	return out, nil
}

// WithLayer tags a DimensionMismatchError or DegenerateIndexError with the
// layer it occurred on. Other errors are returned unchanged.
func WithLayer(err error, layer string) error {
	var dm *model.DimensionMismatchError
	if errors.As(err, &dm) {
		dm.Layer = layer
		return dm
	}
	var de *model.DegenerateIndexError
	if errors.As(err, &de) {
		de.Layer = layer
		return de
	}
	return err
}
