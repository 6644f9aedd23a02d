package wal

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zzstoatzz/slate/internal/fs"
)

func TestRecordEncodeDecode(t *testing.T) {
	var buf bytes.Buffer

	put := &Record{LSN: 7, Type: RecordTypePut, Key: []byte("svc:k"), Value: []byte(`{"a":1}`)}
	require.NoError(t, put.Encode(&buf))

	del := &Record{LSN: 8, Type: RecordTypeDelete, Key: []byte("svc:k")}
	require.NoError(t, del.Encode(&buf))

	got, n, err := Decode(&buf)
	require.NoError(t, err)
	require.Positive(t, n)
	require.Equal(t, put.LSN, got.LSN)
	require.Equal(t, put.Key, got.Key)
	require.Equal(t, put.Value, got.Value)

	got, _, err = Decode(&buf)
	require.NoError(t, err)
	require.Equal(t, RecordTypeDelete, got.Type)
	require.Equal(t, del.Key, got.Key)
	require.Nil(t, got.Value)

	_, _, err = Decode(&buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestRecordCorruptChecksum(t *testing.T) {
	var buf bytes.Buffer
	rec := &Record{LSN: 1, Type: RecordTypePut, Key: []byte("k"), Value: []byte("v")}
	require.NoError(t, rec.Encode(&buf))

	data := buf.Bytes()
	data[len(data)-1] ^= 0xff

	_, _, err := Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, ErrInvalidCRC)
}

func TestRecordTruncated(t *testing.T) {
	var buf bytes.Buffer
	rec := &Record{LSN: 1, Type: RecordTypePut, Key: []byte("key"), Value: []byte("value")}
	require.NoError(t, rec.Encode(&buf))

	data := buf.Bytes()[:buf.Len()-3]

	_, _, err := Decode(bytes.NewReader(data))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestAppendAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	w, err := Open(nil, path, DefaultOptions())
	require.NoError(t, err)

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, w.Append(&Record{LSN: i, Type: RecordTypePut, Key: []byte{byte('a' + i)}, Value: []byte("v")}))
	}
	require.NoError(t, w.Close())

	w, err = Open(nil, path, DefaultOptions())
	require.NoError(t, err)
	defer w.Close()

	r, err := w.Reader()
	require.NoError(t, err)
	defer r.Close()

	var lsns []uint64
	for {
		rec, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		lsns = append(lsns, rec.LSN)
	}
	require.Equal(t, []uint64{1, 2, 3}, lsns)
}

func TestReplayStopsAtTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	w, err := Open(nil, path, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, w.Append(&Record{LSN: 1, Type: RecordTypePut, Key: []byte("k"), Value: []byte("v")}))
	require.NoError(t, w.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0xde, 0xad})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	w, err = Open(nil, path, DefaultOptions())
	require.NoError(t, err)
	defer w.Close()

	r, err := w.Reader()
	require.NoError(t, err)
	defer r.Close()

	rec, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(1), rec.LSN)
	offsetAfterValid := r.Offset()

	_, err = r.Next()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
	require.Equal(t, offsetAfterValid, r.Offset())
}

func TestResetTruncatesToHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	w, err := Open(nil, path, DefaultOptions())
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Append(&Record{LSN: 1, Type: RecordTypePut, Key: []byte("k"), Value: []byte("v")}))
	require.Greater(t, w.Size(), int64(walHeaderSize))

	require.NoError(t, w.Reset())
	require.Equal(t, int64(walHeaderSize), w.Size())

	r, err := w.Reader()
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestOpenRejectsBadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")
	require.NoError(t, os.WriteFile(path, []byte("NOTAWAL!\x01\x00\x00\x00"), 0644))

	_, err := Open(nil, path, DefaultOptions())
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestSyncFaultSurfacesToAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	// Seed a valid WAL so the faulty reopen does not fail on the header sync.
	w, err := Open(nil, path, DefaultOptions())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	faulty := fs.NewFaultyFS(nil)
	faulty.AddRule("wal.log", fs.Fault{FailAfterBytes: -1, FailOnSync: true})

	w, err = Open(faulty, path, DefaultOptions())
	require.NoError(t, err)
	defer w.Close()

	err = w.Append(&Record{LSN: 1, Type: RecordTypePut, Key: []byte("k"), Value: []byte("v")})
	require.ErrorIs(t, err, fs.ErrInjected)
}

func TestAsyncAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wal.log")

	w, err := Open(nil, path, Options{Durability: DurabilityAsync})
	require.NoError(t, err)

	require.NoError(t, w.Append(&Record{LSN: 1, Type: RecordTypePut, Key: []byte("k"), Value: []byte("v")}))
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())
}
