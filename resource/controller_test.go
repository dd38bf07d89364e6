package resource

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestController_Memory(t *testing.T) {
	c := NewController(Config{MemoryLimitBytes: 100})

	assert.True(t, c.TryAcquireMemory(50))
	assert.True(t, c.TryAcquireMemory(40))
	assert.Equal(t, int64(90), c.MemoryUsage())

	// Exceeds the limit.
	assert.False(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(90), c.MemoryUsage())

	c.ReleaseMemory(50)
	assert.Equal(t, int64(40), c.MemoryUsage())
	assert.True(t, c.TryAcquireMemory(20))
	assert.Equal(t, int64(60), c.MemoryUsage())
}

func TestController_UnlimitedMemory(t *testing.T) {
	c := NewController(Config{})

	assert.True(t, c.TryAcquireMemory(1000))
	assert.Equal(t, int64(1000), c.MemoryUsage())

	c.ReleaseMemory(500)
	assert.Equal(t, int64(500), c.MemoryUsage())
}

func TestController_Search(t *testing.T) {
	c := NewController(Config{MaxConcurrentSearches: 2})
	ctx := context.Background()

	require.NoError(t, c.AcquireSearch(ctx))
	require.NoError(t, c.AcquireSearch(ctx))

	// Third acquire blocks until timeout.
	tctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, c.AcquireSearch(tctx), context.DeadlineExceeded)

	c.ReleaseSearch()
	require.NoError(t, c.AcquireSearch(ctx))
}

func TestController_Nil(t *testing.T) {
	var c *Controller
	ctx := context.Background()

	assert.True(t, c.TryAcquireMemory(1<<40))
	assert.Equal(t, int64(0), c.MemoryUsage())
	require.NoError(t, c.AcquireSearch(ctx))
	c.ReleaseSearch()
	require.NoError(t, c.WaitEmbed(ctx, 1000))
	require.NoError(t, c.AcquireIO(ctx, 1000))
}

func TestController_WaitEmbedLargerThanBurst(t *testing.T) {
	c := NewController(Config{EmbedSamplesPerSec: 1000})

	start := time.Now()
	require.NoError(t, c.WaitEmbed(context.Background(), 1500))
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestController_WaitEmbedCanceled(t *testing.T) {
	c := NewController(Config{EmbedSamplesPerSec: 1})
	require.NoError(t, c.WaitEmbed(context.Background(), 1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, c.WaitEmbed(ctx, 1))
}

func TestRateLimitedIO(t *testing.T) {
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})
	ctx := context.Background()

	var buf bytes.Buffer
	w := LimitWriter(ctx, &buf, c)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	r := LimitReader(ctx, &buf, c)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))
}

func TestLimitIOPassthrough(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(Config{})
	assert.Same(t, &buf, LimitWriter(context.Background(), &buf, c))
	assert.Same(t, &buf, LimitReader(context.Background(), &buf, nil))
}
