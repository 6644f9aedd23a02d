package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"

	"github.com/zzstoatzz/slate/internal/fs"
)

// Checkpoint file layout:
//
//	[Magic: 8 bytes "SLATESNP"]
//	[Version: uint32]
//	[Compression: uint8]
//	[Count: uint64]
//	[Compressed blocks of the entry payload]
//	[CRC32: uint32 over everything above]
//
// The entry payload is Count repetitions of
// [KeyLen uint32][Key][ValueLen uint32][Value].
const (
	snapshotMagic      = "SLATESNP"
	snapshotVersion    = 1
	snapshotHeaderSize = 8 + 4 + 1 + 8
)

func encodeSnapshotHeader(ct CompressionType, count uint64) []byte {
	header := make([]byte, snapshotHeaderSize)
	copy(header[0:8], snapshotMagic)
	binary.LittleEndian.PutUint32(header[8:12], snapshotVersion)
	header[12] = byte(ct)
	binary.LittleEndian.PutUint64(header[13:21], count)
	return header
}

// writeSnapshot writes all entries of mem to path atomically (temp file,
// fsync, rename). It returns the encoded bytes so a caller can mirror the
// checkpoint without re-reading the file.
func writeSnapshot(fsys fs.FileSystem, path string, mem *memtable, ct CompressionType) ([]byte, error) {
	var buf bytes.Buffer
	crc := crc32.NewIEEE()
	w := io.MultiWriter(&buf, crc)

	if _, err := w.Write(encodeSnapshotHeader(ct, uint64(mem.len()))); err != nil {
		return nil, err
	}

	bw := newBlockWriter(w, ct, 0)
	var lenBuf [4]byte
	for _, key := range mem.keys {
		value := mem.values[key]
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(key)))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return nil, err
		}
		if _, err := io.WriteString(bw, key); err != nil {
			return nil, err
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(value)))
		if _, err := bw.Write(lenBuf[:]); err != nil {
			return nil, err
		}
		if _, err := bw.Write(value); err != nil {
			return nil, err
		}
	}
	if err := bw.Flush(); err != nil {
		return nil, err
	}

	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc.Sum32())
	buf.Write(crcBuf[:])

	tmp := path + ".tmp"
	f, err := fsys.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		fsys.Remove(tmp)
		return nil, err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		fsys.Remove(tmp)
		return nil, err
	}
	if err := f.Close(); err != nil {
		fsys.Remove(tmp)
		return nil, err
	}
	if err := fsys.Rename(tmp, path); err != nil {
		fsys.Remove(tmp)
		return nil, err
	}

	return buf.Bytes(), nil
}

// decodeSnapshot parses checkpoint bytes into a fresh memtable.
func decodeSnapshot(data []byte) (*memtable, error) {
	if len(data) < snapshotHeaderSize+4 {
		return nil, fmt.Errorf("%w: file too small (%d bytes)", ErrCorruptCheckpoint, len(data))
	}
	if string(data[0:8]) != snapshotMagic {
		return nil, fmt.Errorf("%w: invalid magic %q", ErrCorruptCheckpoint, data[0:8])
	}
	version := binary.LittleEndian.Uint32(data[8:12])
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptCheckpoint, version)
	}

	body := data[:len(data)-4]
	checksum := binary.LittleEndian.Uint32(data[len(data)-4:])
	if crc32.ChecksumIEEE(body) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", ErrCorruptCheckpoint)
	}

	ct := CompressionType(data[12])
	count := binary.LittleEndian.Uint64(data[13:21])

	payload, err := decompressAll(body[snapshotHeaderSize:], ct)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptCheckpoint, err)
	}

	mem := newMemtable()
	offset := 0
	for i := uint64(0); i < count; i++ {
		key, n, err := readLenPrefixed(payload[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d key: %v", ErrCorruptCheckpoint, i, err)
		}
		offset += n
		value, n, err := readLenPrefixed(payload[offset:])
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d value: %v", ErrCorruptCheckpoint, i, err)
		}
		offset += n
		mem.put(string(key), value)
	}
	if offset != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptCheckpoint, len(payload)-offset)
	}
	return mem, nil
}

func readLenPrefixed(b []byte) ([]byte, int, error) {
	if len(b) < 4 {
		return nil, 0, io.ErrUnexpectedEOF
	}
	n := binary.LittleEndian.Uint32(b)
	if len(b) < 4+int(n) {
		return nil, 0, io.ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, b[4:4+n])
	return out, 4 + int(n), nil
}
