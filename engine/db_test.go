package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzstoatzz/slate/blobstore"
	"github.com/zzstoatzz/slate/internal/fs"
	"github.com/zzstoatzz/slate/internal/wal"
)

func collect(t *testing.T, db KV, start []byte) []Pair {
	t.Helper()
	var out []Pair
	for p, err := range db.Scan(context.Background(), start) {
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

func TestDBPutGetDelete(t *testing.T) {
	ctx := context.Background()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(ctx, []byte("alpha"), []byte("1")))
	require.NoError(t, db.Put(ctx, []byte("beta"), []byte("2")))

	v, ok, err := db.Get(ctx, []byte("alpha"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)

	// Overwrite
	require.NoError(t, db.Put(ctx, []byte("alpha"), []byte("1b")))
	v, ok, err = db.Get(ctx, []byte("alpha"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1b"), v)

	require.NoError(t, db.Delete(ctx, []byte("alpha")))
	_, ok, err = db.Get(ctx, []byte("alpha"))
	require.NoError(t, err)
	require.False(t, ok)

	// Deleting an absent key is fine
	require.NoError(t, db.Delete(ctx, []byte("missing")))
	require.Equal(t, 1, db.Len())
}

func TestDBEmptyKey(t *testing.T) {
	ctx := context.Background()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	require.ErrorIs(t, db.Put(ctx, nil, []byte("v")), ErrEmptyKey)
	require.ErrorIs(t, db.Delete(ctx, []byte{}), ErrEmptyKey)
}

func TestDBScanOrder(t *testing.T) {
	ctx := context.Background()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	// Insert out of order; scans must come back sorted.
	for _, k := range []string{"svc:2", "app:1", "svc:1", "zzz", "app:2"} {
		require.NoError(t, db.Put(ctx, []byte(k), []byte(k)))
	}

	pairs := collect(t, db, nil)
	var keys []string
	for _, p := range pairs {
		keys = append(keys, string(p.Key))
	}
	require.Equal(t, []string{"app:1", "app:2", "svc:1", "svc:2", "zzz"}, keys)

	// Scan from a midpoint
	pairs = collect(t, db, []byte("svc:"))
	require.Len(t, pairs, 3)
	require.Equal(t, "svc:1", string(pairs[0].Key))
}

func TestDBScanEarlyStop(t *testing.T) {
	ctx := context.Background()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 10; i++ {
		require.NoError(t, db.Put(ctx, []byte(fmt.Sprintf("k%02d", i)), []byte("v")))
	}

	seen := 0
	for _, err := range db.Scan(ctx, nil) {
		require.NoError(t, err)
		seen++
		if seen == 3 {
			break
		}
	}
	require.Equal(t, 3, seen)
}

func TestDBRecoveryFromWAL(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Put(ctx, []byte("b"), []byte("2")))
	require.NoError(t, db.Delete(ctx, []byte("a")))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	_, ok, err := db.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err := db.Get(ctx, []byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
}

func TestDBRecoveryTornTail(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Put(ctx, []byte("b"), []byte("2")))
	require.NoError(t, db.Close())

	// Simulate a crash mid-append: garbage bytes after the last record.
	f, err := os.OpenFile(filepath.Join(dir, walFileName), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xde, 0xad, 0xbe})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	db, err = Open(dir)
	require.NoError(t, err)

	v, ok, err := db.Get(ctx, []byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
	require.Equal(t, 2, db.Len())

	// The torn tail triggered a checkpoint, so a third open replays nothing
	// from the log and still sees both keys.
	require.NoError(t, db.Close())
	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, 2, db.Len())
}

func TestDBRecoveryFromCheckpointPlusWAL(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Checkpoint(ctx))
	require.NoError(t, db.Put(ctx, []byte("b"), []byte("2")))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	require.Equal(t, 2, db.Len())
	v, ok, err := db.Get(ctx, []byte("b"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("2"), v)
}

func TestDBAutoCheckpoint(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir, WithCheckpointEvery(3))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Put(ctx, []byte(fmt.Sprintf("k%d", i)), []byte("v")))
	}

	_, err = os.Stat(filepath.Join(dir, checkpointFileName))
	require.NoError(t, err)

	// The WAL was reset; everything must come back from the checkpoint.
	require.NoError(t, db.Close())
	db, err = Open(dir, WithCheckpointEvery(3))
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, 3, db.Len())
}

func TestDBCorruptCheckpoint(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Checkpoint(ctx))
	require.NoError(t, db.Close())

	path := filepath.Join(dir, checkpointFileName)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)/2] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0644))

	_, err = Open(dir)
	require.ErrorIs(t, err, ErrCorruptCheckpoint)
}

func TestDBMirror(t *testing.T) {
	ctx := context.Background()
	ms := blobstore.NewMemoryStore()

	db, err := Open(t.TempDir(), WithMirror(ms, ms), WithCompression(CompressionZSTD))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Checkpoint(ctx))

	names, err := ms.List(ctx, "checkpoint-")
	require.NoError(t, err)
	require.Len(t, names, 1)

	current, err := ms.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, names[0], current)

	// The mirrored copy is a valid checkpoint.
	blob, err := ms.Get(ctx, current)
	require.NoError(t, err)
	mem, err := decodeSnapshot(blob)
	require.NoError(t, err)
	require.Equal(t, 1, mem.len())
}

func TestDBMirrorRetention(t *testing.T) {
	ctx := context.Background()
	ms := blobstore.NewMemoryStore()

	db, err := Open(t.TempDir(), WithMirror(ms, ms), WithMirrorKeep(2))
	require.NoError(t, err)
	defer db.Close()

	for i := 0; i < 4; i++ {
		require.NoError(t, db.Put(ctx, []byte(fmt.Sprintf("k%d", i)), []byte("v")))
		require.NoError(t, db.Checkpoint(ctx))
	}

	names, err := ms.List(ctx, "checkpoint-")
	require.NoError(t, err)
	require.Len(t, names, 2)

	// The newest checkpoint is the committed one.
	current, err := ms.Current(ctx)
	require.NoError(t, err)
	require.Equal(t, names[len(names)-1], current)
}

func TestDBCheckpointWriteFailure(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule(checkpointFileName+".tmp", fs.Fault{FailAfterBytes: 0})

	db, err := Open(dir, WithFS(faulty))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.ErrorIs(t, db.Checkpoint(ctx), fs.ErrInjected)

	// The failed checkpoint never replaced anything and the data is intact.
	_, err = os.Stat(filepath.Join(dir, checkpointFileName))
	require.ErrorIs(t, err, os.ErrNotExist)

	v, ok, err := db.Get(ctx, []byte("a"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("1"), v)
}

func TestDBClosed(t *testing.T) {
	ctx := context.Background()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, db.Close())

	require.ErrorIs(t, db.Put(ctx, []byte("a"), []byte("1")), ErrClosed)
	_, _, err = db.Get(ctx, []byte("a"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, db.Delete(ctx, []byte("a")), ErrClosed)
	require.ErrorIs(t, db.Checkpoint(ctx), ErrClosed)
	require.ErrorIs(t, db.Close(), ErrClosed)

	for _, err := range db.Scan(ctx, nil) {
		require.ErrorIs(t, err, ErrClosed)
	}
}

func TestDBAsyncDurability(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir, WithDurability(wal.DurabilityAsync))
	require.NoError(t, err)
	require.NoError(t, db.Put(ctx, []byte("a"), []byte("1")))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	require.Equal(t, 1, db.Len())
}
