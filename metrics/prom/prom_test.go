package prom

import (
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/dknn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ dknn.MetricsCollector = (*Collector)(nil)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector("dknn", reg)

	c.RecordBuild(100, 20, time.Second, nil)
	c.RecordBuild(0, 0, time.Millisecond, errors.New("boom"))
	c.RecordEmbed(120, 50*time.Millisecond, nil)
	c.RecordClassify(8, 3, time.Millisecond, nil)
	c.RecordClassify(8, 3, time.Millisecond, errors.New("boom"))
	c.RecordCredibility(0.8)
	c.RecordCredibility(0.05)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.builds.WithLabelValues("error")))
	assert.Equal(t, 100.0, testutil.ToFloat64(c.buildSize.WithLabelValues("train")))
	assert.Equal(t, 20.0, testutil.ToFloat64(c.buildSize.WithLabelValues("calibration")))
	assert.Equal(t, 120.0, testutil.ToFloat64(c.embedSamples))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.classified))

	families, err := reg.Gather()
	require.NoError(t, err)

	var cred *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "dknn_credibility" {
			cred = f
		}
	}
	require.NotNil(t, cred)
	h := cred.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.85, h.GetSampleSum(), 1e-9)
}

func TestCollectorWithoutRegistry(t *testing.T) {
	c := NewCollector("x", nil)
	c.RecordCredibility(1)
	assert.Equal(t, 1, testutil.CollectAndCount(c.credibility))
}
