package dknn

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})).WithLayer("fc").WithK(5)

	ctx := context.Background()
	l.LogBuild(ctx, 3, 100, time.Second, nil)
	l.LogSnapshot(ctx, "load", "snap.dknn", errors.New("boom"))

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var first map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &first))
	assert.Equal(t, "index build completed", first["msg"])
	assert.Equal(t, "fc", first["layer"])
	assert.EqualValues(t, 5, first["k"])
	assert.EqualValues(t, 100, first["samples"])

	var second map[string]any
	require.NoError(t, json.Unmarshal(lines[1], &second))
	assert.Equal(t, "ERROR", second["level"])
	assert.Equal(t, "snapshot load failed", second["msg"])
	assert.Equal(t, "boom", second["error"])
}

func TestNoopLogger(t *testing.T) {
	l := NoopLogger()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
}

func TestBasicMetricsCollector(t *testing.T) {
	var mc BasicMetricsCollector
	mc.RecordBuild(10, 5, time.Second, nil)
	mc.RecordBuild(10, 5, time.Second, errors.New("x"))
	mc.RecordEmbed(10, 2*time.Millisecond, nil)
	mc.RecordEmbed(5, 4*time.Millisecond, nil)
	mc.RecordClassify(3, 2, time.Millisecond, errors.New("x"))
	mc.RecordCredibility(0.05)
	mc.RecordCredibility(0.5)

	s := mc.GetStats()
	assert.Equal(t, int64(2), s.BuildCount)
	assert.Equal(t, int64(1), s.BuildErrors)
	assert.Equal(t, int64(15), s.EmbedSamples)
	assert.Equal(t, (3 * time.Millisecond).Nanoseconds(), s.EmbedAvgNanos)
	assert.Equal(t, int64(1), s.ClassifyErrors)
	assert.Equal(t, int64(0), s.ClassifySamples)
	assert.Equal(t, int64(1), s.LowCredibility)

	var _ MetricsCollector = NoopMetricsCollector{}
}
