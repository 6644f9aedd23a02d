package engine

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzstoatzz/slate/internal/fs"
)

func TestSnapshotRoundTrip(t *testing.T) {
	mem := newMemtable()
	for i := 0; i < 100; i++ {
		mem.put(fmt.Sprintf("key-%03d", i), []byte(fmt.Sprintf("value-%d", i)))
	}

	path := filepath.Join(t.TempDir(), "checkpoint.snp")
	data, err := writeSnapshot(fs.Default, path, mem, CompressionLZ4)
	require.NoError(t, err)

	// The returned bytes match the file on disk.
	onDisk, err := fs.Default.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, data, onDisk)

	restored, err := decodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, mem.len(), restored.len())
	require.Equal(t, mem.keys, restored.keys)
	for _, k := range mem.keys {
		require.Equal(t, mem.values[k], restored.values[k])
	}
}

func TestSnapshotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoint.snp")
	data, err := writeSnapshot(fs.Default, path, newMemtable(), CompressionZSTD)
	require.NoError(t, err)

	restored, err := decodeSnapshot(data)
	require.NoError(t, err)
	require.Equal(t, 0, restored.len())
}

func TestSnapshotCorruption(t *testing.T) {
	mem := newMemtable()
	mem.put("a", []byte("1"))

	path := filepath.Join(t.TempDir(), "checkpoint.snp")
	data, err := writeSnapshot(fs.Default, path, mem, CompressionNone)
	require.NoError(t, err)

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[0] = 'X'
		_, err := decodeSnapshot(bad)
		require.ErrorIs(t, err, ErrCorruptCheckpoint)
	})

	t.Run("flipped payload byte", func(t *testing.T) {
		bad := append([]byte(nil), data...)
		bad[snapshotHeaderSize+2] ^= 0xff
		_, err := decodeSnapshot(bad)
		require.ErrorIs(t, err, ErrCorruptCheckpoint)
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := decodeSnapshot(data[:10])
		require.ErrorIs(t, err, ErrCorruptCheckpoint)
	})
}
