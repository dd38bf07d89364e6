package dknn

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hupe1980/dknn/aggregate"
	"github.com/hupe1980/dknn/codec"
	"github.com/hupe1980/dknn/conformal"
	"github.com/hupe1980/dknn/lsh"
	"github.com/hupe1980/dknn/model"
	"github.com/hupe1980/dknn/persistence"
	"github.com/hupe1980/dknn/registry"
	"github.com/hupe1980/dknn/resource"
)

// New creates a classifier builder around embedder.
//
// The builder is immutable - each method returns a new builder with the
// updated configuration, so a configured builder can be shared and reused.
//
// Example:
//
//	clf, err := dknn.New[Image](embedder).
//	    Layers("conv1", "conv2", "fc").
//	    K(75).
//	    NumClasses(10).
//	    Build(ctx, train, cal)
func New[T any](embedder Embedder[T]) Builder[T] {
	return Builder[T]{
		embedder:    embedder,
		hashBits:    lsh.DefaultHashBits,
		seed:        lsh.DefaultSeed,
		compression: persistence.CompressionZSTD,
		codec:       codec.Default,
	}
}

// Builder is an immutable fluent builder for Classifier instances.
type Builder[T any] struct {
	embedder    Embedder[T]
	layers      []string
	k           int
	numClasses  int
	hashBits    int
	seed        uint64
	parallelism int
	embedRate   float64
	memoryLimit int64
	searches    int64
	ioLimit     int64
	logger      *Logger
	metrics     MetricsCollector
	compression persistence.Compression
	codec       codec.Codec
}

// Layers sets the ordered layer names. Votes are merged in this order.
func (b Builder[T]) Layers(layers ...string) Builder[T] {
	b.layers = slices.Clone(layers)
	return b
}

// K sets the number of neighbors retrieved per layer.
func (b Builder[T]) K(k int) Builder[T] {
	b.k = k
	return b
}

// NumClasses sets the size of the label space.
func (b Builder[T]) NumClasses(n int) Builder[T] {
	b.numClasses = n
	return b
}

// HashBits sets the LSH code width. Default: 256.
func (b Builder[T]) HashBits(bits int) Builder[T] {
	b.hashBits = bits
	return b
}

// Seed sets the hyperplane seed shared by all layers.
func (b Builder[T]) Seed(seed uint64) Builder[T] {
	b.seed = seed
	return b
}

// Parallelism bounds how many layers are built or searched at once.
// Default: one goroutine per layer.
func (b Builder[T]) Parallelism(n int) Builder[T] {
	b.parallelism = n
	return b
}

// MaxConcurrentSearches bounds layer searches across all concurrent calls.
// Default: unbounded.
func (b Builder[T]) MaxConcurrentSearches(n int64) Builder[T] {
	b.searches = n
	return b
}

// EmbedRateLimit caps the number of inputs per second handed to the embedder.
func (b Builder[T]) EmbedRateLimit(samplesPerSec float64) Builder[T] {
	b.embedRate = samplesPerSec
	return b
}

// MemoryLimit caps the bytes of index codes a build may hold.
func (b Builder[T]) MemoryLimit(bytes int64) Builder[T] {
	b.memoryLimit = bytes
	return b
}

// IOLimit caps snapshot read and write throughput in bytes per second.
func (b Builder[T]) IOLimit(bytesPerSec int64) Builder[T] {
	b.ioLimit = bytesPerSec
	return b
}

// Logger sets the structured logger.
func (b Builder[T]) Logger(l *Logger) Builder[T] {
	b.logger = l
	return b
}

// Metrics sets the metrics collector.
func (b Builder[T]) Metrics(mc MetricsCollector) Builder[T] {
	b.metrics = mc
	return b
}

// Compression sets the default snapshot payload compression.
func (b Builder[T]) Compression(c persistence.Compression) Builder[T] {
	b.compression = c
	return b
}

// Codec sets the default snapshot manifest codec.
func (b Builder[T]) Codec(c codec.Codec) Builder[T] {
	b.codec = c
	return b
}

func (b Builder[T]) validate() error {
	switch {
	case b.embedder == nil:
		return fmt.Errorf("%w: nil embedder", ErrInvalidConfig)
	case len(b.layers) == 0:
		return fmt.Errorf("%w: no layers", ErrInvalidConfig)
	case b.k <= 0:
		return ErrInvalidK
	case b.numClasses <= 0:
		return ErrInvalidNumClasses
	case b.hashBits <= 0:
		return fmt.Errorf("%w: hash bits must be positive", ErrInvalidConfig)
	}
	return nil
}

func (b Builder[T]) controller() *resource.Controller {
	searches := b.searches
	if searches <= 0 {
		searches = 1 << 20
	}
	return resource.NewController(resource.Config{
		MemoryLimitBytes:      b.memoryLimit,
		MaxConcurrentSearches: searches,
		EmbedSamplesPerSec:    b.embedRate,
		IOLimitBytesPerSec:    b.ioLimit,
	})
}

func (b Builder[T]) ambient() (*Logger, MetricsCollector) {
	logger, metrics := b.logger, b.metrics
	if logger == nil {
		logger = NoopLogger()
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return logger, metrics
}

func (b Builder[T]) classifier(reg *registry.Registry, cal *conformal.Calibrator, rc *resource.Controller, k, numClasses int) *Classifier[T] {
	logger, metrics := b.ambient()
	return &Classifier[T]{
		embed:       embedStage[T]{embedder: b.embedder, rc: rc, metrics: metrics},
		reg:         reg,
		agg:         aggregate.New(reg, aggregate.WithParallelism(b.parallelism), aggregate.WithResourceController(rc)),
		cal:         cal,
		k:           k,
		numClasses:  numClasses,
		rc:          rc,
		logger:      logger,
		metrics:     metrics,
		saveOptions: options{codec: b.codec, compression: b.compression},
	}
}

// Build runs both phases of construction.
//
// Phase one embeds the training set once and freezes one LSH index per
// layer. Phase two embeds the calibration set, votes against the frozen
// indices and records the nonconformity scores. Build is all-or-nothing:
// on any error it returns a nil classifier.
func (b Builder[T]) Build(ctx context.Context, train, cal Dataset[T]) (clf *Classifier[T], err error) {
	logger, metrics := b.ambient()
	start := time.Now()
	defer func() {
		metrics.RecordBuild(train.Len(), cal.Len(), time.Since(start), err)
		logger.LogBuild(ctx, len(b.layers), train.Len(), time.Since(start), err)
	}()

	if err := b.validate(); err != nil {
		return nil, err
	}
	if err := train.validate(); err != nil {
		return nil, fmt.Errorf("training set: %w", err)
	}
	if err := cal.validate(); err != nil {
		return nil, fmt.Errorf("calibration set: %w", err)
	}
	if cal.Len() == 0 {
		return nil, ErrEmptyCalibrationSet
	}

	trainLabels, err := model.NewLabels(train.Labels, b.numClasses)
	if err != nil {
		return nil, fmt.Errorf("training set: %w", err)
	}
	calLabels, err := model.NewLabels(cal.Labels, b.numClasses)
	if err != nil {
		return nil, fmt.Errorf("calibration set: %w", err)
	}

	rc := b.controller()
	embed := embedStage[T]{embedder: b.embedder, rc: rc, metrics: metrics}

	trainEmb, err := embed.run(ctx, train.Inputs, b.layers)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Build(ctx, b.layers, trainEmb, trainLabels, registry.Options{
		Index:       []lsh.Option{lsh.WithHashBits(b.hashBits), lsh.WithSeed(b.seed)},
		Parallelism: b.parallelism,
		Resources:   rc,
	})
	if err != nil {
		if errors.Is(err, registry.ErrNoLayers) || errors.Is(err, registry.ErrDuplicateLayer) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		return nil, err
	}

	calibrator, err := b.calibrate(ctx, embed, reg, rc, cal.Inputs, calLabels)
	if err != nil {
		reg.Release(rc)
		return nil, err
	}

	return b.classifier(reg, calibrator, rc, b.k, b.numClasses), nil
}

func (b Builder[T]) calibrate(ctx context.Context, embed embedStage[T], reg *registry.Registry, rc *resource.Controller, inputs []T, labels *model.Labels) (cal *conformal.Calibrator, err error) {
	logger, _ := b.ambient()
	start := time.Now()
	defer func() {
		logger.LogCalibrate(ctx, len(inputs), time.Since(start), err)
	}()

	emb, err := embed.run(ctx, inputs, b.layers)
	if err != nil {
		return nil, err
	}
	agg := aggregate.New(reg, aggregate.WithParallelism(b.parallelism), aggregate.WithResourceController(rc))
	votes, err := agg.Votes(ctx, emb, b.k, nil, b.numClasses)
	if err != nil {
		return nil, err
	}
	return conformal.Calibrate(votes, labels, b.k, reg.NumLayers())
}
