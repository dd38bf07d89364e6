package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_Lifecycle(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewLocalStore(tmpDir)
	ctx := context.Background()

	data := []byte("hello world, this is a snapshot blob")

	w, err := store.Create(ctx, "snapshots/001.dknn")
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)

	// Not visible before Close.
	_, err = os.Stat(filepath.Join(tmpDir, "snapshots", "001.dknn"))
	require.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, w.Close())
	_, err = w.Write([]byte("x"))
	require.ErrorIs(t, err, os.ErrClosed)

	blob, err := store.Open(ctx, "snapshots/001.dknn")
	require.NoError(t, err)
	defer blob.Close()

	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	require.Equal(t, 5, n)
	require.Equal(t, "world", string(buf))

	rc, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	require.Equal(t, "this", string(got))

	rc, err = blob.ReadRange(ctx, int64(len(data))-4, 100)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "blob", string(got))

	mapped, ok := blob.(Mappable)
	require.True(t, ok)
	b, err := mapped.Bytes()
	require.NoError(t, err)
	require.Equal(t, data, b)
}

func TestLocalStore_PutListDelete(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "b.dknn", []byte("b")))
	require.NoError(t, store.Put(ctx, "a.dknn", []byte("a")))
	require.NoError(t, store.Put(ctx, CurrentName, []byte("a.dknn\n")))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{CurrentName, "a.dknn", "b.dknn"}, names)

	names, err = store.List(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.dknn"}, names)

	current, err := ReadCurrent(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "a.dknn", current)

	require.NoError(t, store.Delete(ctx, "a.dknn"))
	require.NoError(t, store.Delete(ctx, "a.dknn"))

	_, err = store.Open(ctx, "a.dknn")
	assert.True(t, IsNotFound(err))
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(filepath.Join(t.TempDir(), "missing"))

	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestLocalStore_CanceledContext(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Open(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, store.Put(ctx, "x", nil), context.Canceled)
}
