package dknn

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/resource"
)

// Embedder maps a batch of inputs to per-layer feature vectors.
//
// The returned Embeddings must contain every configured layer with exactly
// one vector per input, in input order. Extra layers are ignored.
type Embedder[T any] interface {
	Embed(ctx context.Context, inputs []T) (model.Embeddings, error)
}

// EmbedFunc adapts a function to the Embedder interface.
type EmbedFunc[T any] func(ctx context.Context, inputs []T) (model.Embeddings, error)

// Embed implements Embedder.
func (f EmbedFunc[T]) Embed(ctx context.Context, inputs []T) (model.Embeddings, error) {
	return f(ctx, inputs)
}

// Dataset is a labeled batch of inputs. Labels[i] is the class of Inputs[i].
type Dataset[T any] struct {
	Inputs []T
	Labels []int
}

// Len returns the number of samples.
func (d Dataset[T]) Len() int { return len(d.Inputs) }

func (d Dataset[T]) validate() error {
	if len(d.Inputs) != len(d.Labels) {
		return fmt.Errorf("%w: %d inputs, %d labels", ErrBatchSizeMismatch, len(d.Inputs), len(d.Labels))
	}
	return nil
}

// embedStage runs the embedder under the embed rate limit and checks its output.
type embedStage[T any] struct {
	embedder Embedder[T]
	rc       *resource.Controller
	metrics  MetricsCollector
}

func (s embedStage[T]) run(ctx context.Context, inputs []T, layers []string) (model.Embeddings, error) {
	if err := s.rc.WaitEmbed(ctx, len(inputs)); err != nil {
		return nil, err
	}

	start := time.Now()
	emb, err := s.embedder.Embed(ctx, inputs)
	if err == nil {
		err = checkEmbeddings(emb, layers, len(inputs))
	}
	s.metrics.RecordEmbed(len(inputs), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return emb.Select(layers)
}

func checkEmbeddings(emb model.Embeddings, layers []string, n int) error {
	for _, layer := range layers {
		vecs, ok := emb[layer]
		if !ok {
			return &UnknownLayerError{Layer: layer}
		}
		if len(vecs) != n {
			return fmt.Errorf("%w: layer %q returned %d vectors for %d inputs", ErrBatchSizeMismatch, layer, len(vecs), n)
		}
	}
	return nil
}
