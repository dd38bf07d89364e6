package commands

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/dknn"
	"github.com/hupe1980/dknn/cmd/dknn/internal/config"
	"github.com/hupe1980/dknn/metrics/prom"
)

// metricsSink collects classifier metrics for one CLI run and writes them
// to a textfile when the run ends.
type metricsSink struct {
	reg  *prometheus.Registry
	path string
}

// newMetricsSink returns nil when no textfile is configured.
func newMetricsSink(cfg *config.Config) (*metricsSink, dknn.MetricsCollector) {
	path := cfg.Metrics.Textfile
	if metricsTextfile != "" {
		path = metricsTextfile
	}
	if path == "" {
		return nil, nil
	}
	reg := prometheus.NewRegistry()
	return &metricsSink{reg: reg, path: path}, prom.NewCollector(cfg.Metrics.Namespace, reg)
}

func (s *metricsSink) flush() error {
	if s == nil {
		return nil
	}
	return prometheus.WriteToTextfile(s.path, s.reg)
}
