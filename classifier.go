package dknn

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hupe1980/dknn/aggregate"
	"github.com/hupe1980/dknn/conformal"
	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/registry"
	"github.com/hupe1980/dknn/resource"
)

// Classifier is a built Deep k-NN classifier.
//
// All query methods are safe for concurrent use. The indices and the
// calibration scores never change after Build or Load.
type Classifier[T any] struct {
	embed embedStage[T]
	reg   *registry.Registry
	agg   *aggregate.Aggregator
	cal   *conformal.Calibrator

	k          int
	numClasses int

	rc          *resource.Controller
	logger      *Logger
	metrics     MetricsCollector
	saveOptions options

	closed atomic.Bool
}

// Result is the full evaluation of one input.
type Result struct {
	// Label is the predicted class, the lowest class among ties.
	Label int
	// Credibility is the conformal p-value of Label in [0, 1].
	Credibility float64
	// Votes holds the per-class neighbor counts over all layers.
	Votes []int
}

func (c *Classifier[T]) checkOpen() error {
	if c.closed.Load() {
		return ErrClosed
	}
	return nil
}

// Classify returns the vote matrix of inputs over all layers.
// Row i belongs to inputs[i] and sums to K() × len(Layers()).
func (c *Classifier[T]) Classify(ctx context.Context, inputs []T) (*model.VoteMatrix, error) {
	return c.ClassifyLayers(ctx, inputs)
}

// ClassifyLayers is Classify restricted to a subset of layers, for
// ablation. No layers means all layers. Rows of a subset sum to
// K() × len(distinct layers) and cannot be passed to Credibility.
func (c *Classifier[T]) ClassifyLayers(ctx context.Context, inputs []T, layers ...string) (votes *model.VoteMatrix, err error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	selected, err := c.reg.Resolve(layers)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		c.metrics.RecordClassify(len(inputs), len(selected), time.Since(start), err)
		c.logger.LogClassify(ctx, len(inputs), len(selected), err)
	}()

	if len(inputs) == 0 {
		return model.NewVoteMatrix(0, c.numClasses), nil
	}
	emb, err := c.embed.run(ctx, inputs, selected)
	if err != nil {
		return nil, err
	}
	return c.agg.Votes(ctx, emb, c.k, selected, c.numClasses)
}

// Predict returns the argmax class of every input.
func (c *Classifier[T]) Predict(ctx context.Context, inputs []T) ([]int, error) {
	votes, err := c.Classify(ctx, inputs)
	if err != nil {
		return nil, err
	}
	labels := make([]int, votes.Rows())
	for i := range labels {
		labels[i] = votes.Argmax(i)
	}
	return labels, nil
}

// Credibility converts full-layer vote rows into credibility values.
// The matrix must have one column per class.
func (c *Classifier[T]) Credibility(votes *model.VoteMatrix) ([]float64, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if votes == nil {
		return nil, fmt.Errorf("%w: nil vote matrix", ErrBatchSizeMismatch)
	}
	if votes.Cols() != c.numClasses {
		return nil, fmt.Errorf("%w: vote matrix has %d columns, classifier has %d classes", ErrBatchSizeMismatch, votes.Cols(), c.numClasses)
	}
	creds, err := c.cal.ScoreMatrix(votes)
	if err != nil {
		return nil, err
	}
	for _, v := range creds {
		c.metrics.RecordCredibility(v)
	}
	return creds, nil
}

// PValues returns the conformal p-value of every class for a full-layer vote row.
func (c *Classifier[T]) PValues(row []int) ([]float64, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if len(row) != c.numClasses {
		return nil, fmt.Errorf("%w: row has %d classes, classifier has %d", ErrBatchSizeMismatch, len(row), c.numClasses)
	}
	return c.cal.PValues(row)
}

// Evaluate classifies inputs with a single embedder call and returns the
// prediction, credibility and votes of each one.
func (c *Classifier[T]) Evaluate(ctx context.Context, inputs []T) ([]Result, error) {
	votes, err := c.Classify(ctx, inputs)
	if err != nil {
		return nil, err
	}
	creds, err := c.Credibility(votes)
	if err != nil {
		return nil, err
	}
	results := make([]Result, votes.Rows())
	for i := range results {
		results[i] = Result{
			Label:       votes.Argmax(i),
			Credibility: creds[i],
			Votes:       votes.Row(i),
		}
	}
	return results, nil
}

// Neighbors returns the raw per-layer neighbor lists of inputs, in layer order.
func (c *Classifier[T]) Neighbors(ctx context.Context, inputs []T, layers ...string) ([]aggregate.LayerNeighbors, error) {
	return c.NeighborsK(ctx, inputs, c.k, layers...)
}

// NeighborsK is Neighbors with an explicit neighbor count. k may exceed the
// classifier's k but not the training set size.
func (c *Classifier[T]) NeighborsK(ctx context.Context, inputs []T, k int, layers ...string) ([]aggregate.LayerNeighbors, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	selected, err := c.reg.Resolve(layers)
	if err != nil {
		return nil, err
	}
	emb, err := c.embed.run(ctx, inputs, selected)
	if err != nil {
		return nil, err
	}
	return c.agg.Neighbors(ctx, emb, k, selected)
}

// Layers returns the layer names in vote order.
func (c *Classifier[T]) Layers() []string { return c.reg.Layers() }

// K returns the number of neighbors per layer.
func (c *Classifier[T]) K() int { return c.k }

// NumClasses returns the size of the label space.
func (c *Classifier[T]) NumClasses() int { return c.numClasses }

// HashBits returns the LSH code width.
func (c *Classifier[T]) HashBits() int {
	idx, _ := c.reg.Index(c.reg.Layers()[0])
	return idx.HashBits()
}

// TrainSize returns the number of indexed training samples.
func (c *Classifier[T]) TrainSize() int { return c.reg.Size() }

// CalibrationSize returns the number of calibration scores.
func (c *Classifier[T]) CalibrationSize() int { return c.cal.Len() }

// ClassSupport returns the number of training samples per class.
func (c *Classifier[T]) ClassSupport() []int { return c.reg.Labels().Support() }

// Nonconformity returns the sorted calibration scores.
func (c *Classifier[T]) Nonconformity() []int { return c.cal.Scores() }

// Close releases the index memory reservation. Further calls fail with ErrClosed.
func (c *Classifier[T]) Close() error {
	if c == nil || c.closed.Swap(true) {
		return nil
	}
	c.reg.Release(c.rc)
	return nil
}
