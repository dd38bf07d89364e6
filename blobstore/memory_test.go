package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("0123456789")
	require.NoError(t, store.Put(ctx, "x", data))
	data[0] = 'X'

	got, err := ReadAll(ctx, store, "x")
	require.NoError(t, err)
	assert.Equal(t, "0123456789", string(got))

	blob, err := store.Open(ctx, "x")
	require.NoError(t, err)

	// Overwrite does not affect open handles.
	require.NoError(t, store.Put(ctx, "x", []byte("new")))

	buf := make([]byte, 4)
	n, err := blob.ReadAt(ctx, buf, 8)
	assert.Equal(t, 2, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "89", string(buf[:n]))

	_, err = blob.ReadAt(ctx, buf, 20)
	assert.ErrorIs(t, err, io.EOF)
	require.NoError(t, blob.Close())

	w, err := store.Create(ctx, "y")
	require.NoError(t, err)
	_, err = w.Write([]byte("streamed"))
	require.NoError(t, err)
	_, err = store.Open(ctx, "y")
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, w.Close())

	got, err = ReadAll(ctx, store, "y")
	require.NoError(t, err)
	assert.Equal(t, "streamed", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "y"}, names)

	require.NoError(t, store.Delete(ctx, "x"))
	_, err = ReadAll(ctx, store, "x")
	assert.True(t, IsNotFound(err))
}

func TestReadCurrent(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := ReadCurrent(ctx, store)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, CurrentName, []byte("  \n")))
	_, err = ReadCurrent(ctx, store)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, CurrentName, []byte("snap-2.dknn\n")))
	name, err := ReadCurrent(ctx, store)
	require.NoError(t, err)
	assert.Equal(t, "snap-2.dknn", name)
}
