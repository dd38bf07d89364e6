// Package aggregate turns per-layer neighbor lists into class vote counts.
package aggregate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/dknn/distance"
	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/registry"
	"github.com/hupe1980/dknn/resource"
)

// Aggregator queries the layers of a registry and merges their neighbor labels.
// It is safe for concurrent use.
type Aggregator struct {
	reg         *registry.Registry
	parallelism int
	rc          *resource.Controller
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithParallelism bounds the number of layers searched concurrently per call.
// Values <= 0 search every selected layer at once.
func WithParallelism(n int) Option {
	return func(a *Aggregator) {
		a.parallelism = n
	}
}

// WithResourceController makes every layer search hold a search slot of rc.
func WithResourceController(rc *resource.Controller) Option {
	return func(a *Aggregator) {
		a.rc = rc
	}
}

// New returns an Aggregator over reg.
func New(reg *registry.Registry, optFns ...Option) *Aggregator {
	a := &Aggregator{reg: reg}
	for _, fn := range optFns {
		fn(a)
	}
	return a
}

// LayerNeighbors holds the neighbor lists of every query for one layer.
type LayerNeighbors struct {
	Layer string
	// Results[i] are the k neighbors of query i.
	Results [][]model.Neighbor
}

// Neighbors searches each selected layer for the k nearest training positions
// of every query. Queries are normalized before searching. The result is in
// registry order and preserves query order within each layer.
func (a *Aggregator) Neighbors(ctx context.Context, queries model.Embeddings, k int, layers []string) ([]LayerNeighbors, error) {
	if k <= 0 {
		return nil, model.ErrInvalidK
	}
	selected, err := a.reg.Resolve(layers)
	if err != nil {
		return nil, err
	}

	var batch int
	for i, layer := range selected {
		vecs, ok := queries[layer]
		if !ok {
			return nil, &model.UnknownLayerError{Layer: layer}
		}
		if i == 0 {
			batch = len(vecs)
		} else if len(vecs) != batch {
			return nil, model.ErrBatchSizeMismatch
		}
	}

	out := make([]LayerNeighbors, len(selected))

	g, gctx := errgroup.WithContext(ctx)
	if a.parallelism > 0 {
		g.SetLimit(a.parallelism)
	}
	for i, layer := range selected {
		g.Go(func() error {
			if err := a.rc.AcquireSearch(gctx); err != nil {
				return err
			}
			defer a.rc.ReleaseSearch()

			idx, err := a.reg.Index(layer)
			if err != nil {
				return err
			}
			res, err := idx.SearchBatch(distance.NormalizeBatch(queries[layer]), k)
			if err != nil {
				return registry.WithLayer(err, layer)
			}
			out[i] = LayerNeighbors{Layer: layer, Results: res}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Votes returns one row per query and one column per class. Each cell counts
// the neighbors of that class over all selected layers, so every row sums to
// k × len(selected layers). numClasses must cover every training label.
func (a *Aggregator) Votes(ctx context.Context, queries model.Embeddings, k int, layers []string, numClasses int) (*model.VoteMatrix, error) {
	if numClasses <= 0 {
		return nil, model.ErrInvalidNumClasses
	}
	labels := a.reg.Labels()
	for c := numClasses; c < labels.NumClasses(); c++ {
		if members := labels.Members(c); !members.IsEmpty() {
			return nil, &model.LabelRangeError{
				Position:   int(members.Minimum()),
				Label:      c,
				NumClasses: numClasses,
			}
		}
	}

	neighbors, err := a.Neighbors(ctx, queries, k, layers)
	if err != nil {
		return nil, err
	}
	return Tally(neighbors, labels, numClasses), nil
}

// Tally counts neighbor labels into a vote matrix, visiting layers in the
// given order. All layers must hold the same number of queries.
func Tally(neighbors []LayerNeighbors, labels *model.Labels, numClasses int) *model.VoteMatrix {
	rows := 0
	if len(neighbors) > 0 {
		rows = len(neighbors[0].Results)
	}
	votes := model.NewVoteMatrix(rows, numClasses)
	for _, ln := range neighbors {
		for i, res := range ln.Results {
			for _, n := range res {
				votes.Add(i, labels.At(n.Position), 1)
			}
		}
	}
	return votes
}
