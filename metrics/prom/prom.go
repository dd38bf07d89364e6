// Package prom exports classifier metrics to Prometheus.
//
//	c := prom.NewCollector("dknn", prometheus.DefaultRegisterer)
//	clf, err := dknn.New[[]float32](embedder).Metrics(c).Build(ctx, train, cal)
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CredibilityBuckets spans the [0, 1] credibility range.
var CredibilityBuckets = []float64{0.01, 0.05, 0.1, 0.2, 0.3, 0.5, 0.7, 0.9, 1}

// Collector implements dknn.MetricsCollector with Prometheus vectors.
type Collector struct {
	builds       *prometheus.CounterVec
	buildSize    *prometheus.GaugeVec
	embedLatency *prometheus.HistogramVec
	embedSamples prometheus.Counter
	classify     *prometheus.HistogramVec
	classified   prometheus.Counter
	credibility  prometheus.Histogram
}

// NewCollector creates the metrics under namespace and registers them
// with reg. A nil reg skips registration.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	c := &Collector{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Classifier builds by result.",
		}, []string{"result"}),
		buildSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_samples",
			Help:      "Samples in the last successful build.",
		}, []string{"set"}),
		embedLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "embed_duration_seconds",
			Help:      "Embedder call latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		embedSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "embedded_samples_total",
			Help:      "Samples passed to the embedder.",
		}),
		classify: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "classify_duration_seconds",
			Help:      "Vote computation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		classified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "classified_samples_total",
			Help:      "Samples classified.",
		}),
		credibility: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "credibility",
			Help:      "Distribution of credibility values.",
			Buckets:   CredibilityBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(c.builds, c.buildSize, c.embedLatency, c.embedSamples, c.classify, c.classified, c.credibility)
	}
	return c
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordBuild implements dknn.MetricsCollector.
func (c *Collector) RecordBuild(train, cal int, _ time.Duration, err error) {
	c.builds.WithLabelValues(result(err)).Inc()
	if err == nil {
		c.buildSize.WithLabelValues("train").Set(float64(train))
		c.buildSize.WithLabelValues("calibration").Set(float64(cal))
	}
}

// RecordEmbed implements dknn.MetricsCollector.
func (c *Collector) RecordEmbed(samples int, d time.Duration, err error) {
	c.embedLatency.WithLabelValues(result(err)).Observe(d.Seconds())
	c.embedSamples.Add(float64(samples))
}

// RecordClassify implements dknn.MetricsCollector.
func (c *Collector) RecordClassify(batch, _ int, d time.Duration, err error) {
	c.classify.WithLabelValues(result(err)).Observe(d.Seconds())
	if err == nil {
		c.classified.Add(float64(batch))
	}
}

// RecordCredibility implements dknn.MetricsCollector.
func (c *Collector) RecordCredibility(credibility float64) {
	c.credibility.Observe(credibility)
}
