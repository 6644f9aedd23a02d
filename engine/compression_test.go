package engine

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlockRoundTrip(t *testing.T) {
	// Repetitive data compresses under every algorithm.
	data := bytes.Repeat([]byte("slate event log entry "), 1000)

	for _, ct := range []CompressionType{CompressionNone, CompressionLZ4, CompressionZSTD} {
		var buf bytes.Buffer
		bw := newBlockWriter(&buf, ct, 4096)
		_, err := bw.Write(data)
		require.NoError(t, err)
		require.NoError(t, bw.Flush())

		out, err := decompressAll(buf.Bytes(), ct)
		require.NoError(t, err)
		require.Equal(t, data, out)

		if ct != CompressionNone {
			require.Less(t, buf.Len(), len(data))
		}
	}
}

func TestBlockIncompressibleFallback(t *testing.T) {
	// Random data is incompressible; blocks must fall back to raw storage
	// instead of growing.
	data := make([]byte, 64*1024)
	_, err := rand.Read(data)
	require.NoError(t, err)

	for _, ct := range []CompressionType{CompressionLZ4, CompressionZSTD} {
		var buf bytes.Buffer
		bw := newBlockWriter(&buf, ct, 16*1024)
		_, err := bw.Write(data)
		require.NoError(t, err)
		require.NoError(t, bw.Flush())

		out, err := decompressAll(buf.Bytes(), ct)
		require.NoError(t, err)
		require.Equal(t, data, out)
	}
}

func TestDecompressTruncated(t *testing.T) {
	data := bytes.Repeat([]byte("abc"), 1000)

	var buf bytes.Buffer
	bw := newBlockWriter(&buf, CompressionLZ4, 0)
	_, err := bw.Write(data)
	require.NoError(t, err)
	require.NoError(t, bw.Flush())

	_, err = decompressAll(buf.Bytes()[:buf.Len()-5], CompressionLZ4)
	require.Error(t, err)
}
