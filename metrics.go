package dknn

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement it to feed a monitoring system; see metrics/prom for Prometheus.
type MetricsCollector interface {
	// RecordBuild is called once per successful or failed Build.
	// train and cal are the sizes of the two datasets.
	RecordBuild(train, cal int, duration time.Duration, err error)

	// RecordEmbed is called after every embedder call.
	RecordEmbed(samples int, duration time.Duration, err error)

	// RecordClassify is called after each vote computation.
	// layers is the number of layers queried.
	RecordClassify(batch, layers int, duration time.Duration, err error)

	// RecordCredibility is called for every credibility value produced.
	RecordCredibility(credibility float64)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordBuild(int, int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordEmbed(int, time.Duration, error)         {}
func (NoopMetricsCollector) RecordClassify(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCredibility(float64)                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	BuildCount         atomic.Int64
	BuildErrors        atomic.Int64
	EmbedCount         atomic.Int64
	EmbedSamples       atomic.Int64
	EmbedErrors        atomic.Int64
	EmbedTotalNanos    atomic.Int64
	ClassifyCount      atomic.Int64
	ClassifySamples    atomic.Int64
	ClassifyErrors     atomic.Int64
	ClassifyTotalNanos atomic.Int64
	CredibilityCount   atomic.Int64
	LowCredibility     atomic.Int64
}

// LowCredibilityThreshold is the value below which BasicMetricsCollector
// counts a credibility as low.
const LowCredibilityThreshold = 0.1

// RecordBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBuild(train, cal int, duration time.Duration, err error) {
	b.BuildCount.Add(1)
	if err != nil {
		b.BuildErrors.Add(1)
	}
}

// RecordEmbed implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmbed(samples int, duration time.Duration, err error) {
	b.EmbedCount.Add(1)
	b.EmbedTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EmbedErrors.Add(1)
		return
	}
	b.EmbedSamples.Add(int64(samples))
}

// RecordClassify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordClassify(batch, layers int, duration time.Duration, err error) {
	b.ClassifyCount.Add(1)
	b.ClassifyTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ClassifyErrors.Add(1)
		return
	}
	b.ClassifySamples.Add(int64(batch))
}

// RecordCredibility implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCredibility(credibility float64) {
	b.CredibilityCount.Add(1)
	if credibility < LowCredibilityThreshold {
		b.LowCredibility.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		BuildCount:       b.BuildCount.Load(),
		BuildErrors:      b.BuildErrors.Load(),
		EmbedCount:       b.EmbedCount.Load(),
		EmbedSamples:     b.EmbedSamples.Load(),
		EmbedErrors:      b.EmbedErrors.Load(),
		EmbedAvgNanos:    avg(b.EmbedTotalNanos.Load(), b.EmbedCount.Load()),
		ClassifyCount:    b.ClassifyCount.Load(),
		ClassifySamples:  b.ClassifySamples.Load(),
		ClassifyErrors:   b.ClassifyErrors.Load(),
		ClassifyAvgNanos: avg(b.ClassifyTotalNanos.Load(), b.ClassifyCount.Load()),
		CredibilityCount: b.CredibilityCount.Load(),
		LowCredibility:   b.LowCredibility.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	BuildCount       int64
	BuildErrors      int64
	EmbedCount       int64
	EmbedSamples     int64
	EmbedErrors      int64
	EmbedAvgNanos    int64
	ClassifyCount    int64
	ClassifySamples  int64
	ClassifyErrors   int64
	ClassifyAvgNanos int64
	CredibilityCount int64
	LowCredibility   int64
}
