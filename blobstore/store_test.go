package blobstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// both implementations satisfy BlobStore and CommitStore; exercise them
// through the same contract.
func testStore(t *testing.T, store interface {
	BlobStore
	CommitStore
}) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "checkpoint-001.snp", []byte("one")))
	require.NoError(t, store.Put(ctx, "checkpoint-002.snp", []byte("two")))
	require.NoError(t, store.Put(ctx, "other.bin", []byte("x")))

	data, err := store.Get(ctx, "checkpoint-002.snp")
	require.NoError(t, err)
	require.Equal(t, []byte("two"), data)

	names, err := store.List(ctx, "checkpoint-")
	require.NoError(t, err)
	require.Equal(t, []string{"checkpoint-001.snp", "checkpoint-002.snp"}, names)

	// Overwrite replaces content.
	require.NoError(t, store.Put(ctx, "checkpoint-001.snp", []byte("one-v2")))
	data, err = store.Get(ctx, "checkpoint-001.snp")
	require.NoError(t, err)
	require.Equal(t, []byte("one-v2"), data)

	require.NoError(t, store.Delete(ctx, "checkpoint-001.snp"))
	require.NoError(t, store.Delete(ctx, "checkpoint-001.snp")) // idempotent
	_, err = store.Get(ctx, "checkpoint-001.snp")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = store.Current(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Commit(ctx, "checkpoint-002.snp"))
	current, err := store.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, "checkpoint-002.snp", current)
}

func TestMemoryStoreContract(t *testing.T) {
	testStore(t, NewMemoryStore())
}

func TestLocalStoreContract(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)
	testStore(t, store)
}

func TestLocalStoreListSkipsInternalFiles(t *testing.T) {
	ctx := context.Background()
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "checkpoint-001.snp", []byte("one")))
	require.NoError(t, store.Commit(ctx, "checkpoint-001.snp"))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"checkpoint-001.snp"}, names)
}

func TestMemoryStoreGetCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "blob", []byte("abc")))

	data, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := store.Get(ctx, "blob")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
