package wal

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
	"io"
)

// RecordType identifies the type of WAL record.
type RecordType uint8

const (
	RecordTypePut    RecordType = 1
	RecordTypeDelete RecordType = 2
)

var (
	ErrInvalidCRC     = errors.New("invalid WAL record checksum")
	ErrInvalidType    = errors.New("invalid WAL record type")
	ErrShortRead      = errors.New("short read in WAL record")
	ErrRecordTooLarge = errors.New("WAL record too large")
)

// maxRecordSize bounds a single record payload. A key-value pair larger than
// this is rejected at append time rather than risking an unbounded replay
// allocation.
const maxRecordSize = 64 * 1024 * 1024

// Record represents a single operation in the WAL.
type Record struct {
	LSN   uint64
	Type  RecordType
	Key   []byte
	Value []byte // nil for deletes
}

// Encode writes the record to w.
//
// Format:
// [CRC32: 4 bytes] [Type: 1 byte] [LSN: 8 bytes] [Length: 4 bytes] [Payload: Length bytes]
// Payload for Put:    [KeyLen: 4 bytes] [Key] [ValueLen: 4 bytes] [Value]
// Payload for Delete: [KeyLen: 4 bytes] [Key]
func (r *Record) Encode(w io.Writer) error {
	payloadLen := 4 + len(r.Key)
	if r.Type == RecordTypePut {
		payloadLen += 4 + len(r.Value)
	}
	if payloadLen > maxRecordSize {
		return ErrRecordTooLarge
	}

	payload := make([]byte, 0, payloadLen)
	payload = binary.LittleEndian.AppendUint32(payload, uint32(len(r.Key)))
	payload = append(payload, r.Key...)
	if r.Type == RecordTypePut {
		payload = binary.LittleEndian.AppendUint32(payload, uint32(len(r.Value)))
		payload = append(payload, r.Value...)
	}

	// Header: Type (1) + LSN (8) + Length (4) = 13 bytes
	header := make([]byte, 13)
	header[0] = byte(r.Type)
	binary.LittleEndian.PutUint64(header[1:], r.LSN)
	binary.LittleEndian.PutUint32(header[9:], uint32(len(payload)))

	crc := crc32.NewIEEE()
	crc.Write(header)
	crc.Write(payload)

	var crcBuf [4]byte
	binary.LittleEndian.PutUint32(crcBuf[:], crc.Sum32())

	if _, err := w.Write(crcBuf[:]); err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	return nil
}

// Decode reads a record from r. The returned int64 is the number of bytes
// consumed, including partial reads before a failure, so callers can truncate
// a torn tail at the last valid offset.
func Decode(r io.Reader) (*Record, int64, error) {
	var crcBuf [4]byte
	if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
		return nil, 0, err
	}
	checksum := binary.LittleEndian.Uint32(crcBuf[:])

	header := make([]byte, 13)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, 4, err
	}

	recType := RecordType(header[0])
	lsn := binary.LittleEndian.Uint64(header[1:])
	length := binary.LittleEndian.Uint32(header[9:])

	if length > maxRecordSize {
		return nil, 4 + 13, ErrRecordTooLarge
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, 4 + 13, err
	}

	crc := crc32.NewIEEE()
	crc.Write(header)
	crc.Write(payload)
	if crc.Sum32() != checksum {
		return nil, 4 + 13 + int64(length), ErrInvalidCRC
	}

	rec := &Record{Type: recType, LSN: lsn}
	switch recType {
	case RecordTypePut:
		if err := parsePut(payload, rec); err != nil {
			return nil, 4 + 13 + int64(length), err
		}
	case RecordTypeDelete:
		if err := parseDelete(payload, rec); err != nil {
			return nil, 4 + 13 + int64(length), err
		}
	default:
		return nil, 4 + 13 + int64(length), ErrInvalidType
	}

	return rec, 4 + 13 + int64(length), nil
}

func parseKey(payload []byte) ([]byte, int, error) {
	if len(payload) < 4 {
		return nil, 0, ErrShortRead
	}
	keyLen := binary.LittleEndian.Uint32(payload)
	if len(payload) < 4+int(keyLen) {
		return nil, 0, ErrShortRead
	}
	key := make([]byte, keyLen)
	copy(key, payload[4:4+keyLen])
	return key, 4 + int(keyLen), nil
}

func parsePut(payload []byte, r *Record) error {
	key, offset, err := parseKey(payload)
	if err != nil {
		return err
	}
	r.Key = key

	if len(payload) < offset+4 {
		return ErrShortRead
	}
	valLen := binary.LittleEndian.Uint32(payload[offset:])
	offset += 4
	if len(payload) < offset+int(valLen) {
		return ErrShortRead
	}
	r.Value = make([]byte, valLen)
	copy(r.Value, payload[offset:offset+int(valLen)])
	return nil
}

func parseDelete(payload []byte, r *Record) error {
	key, _, err := parseKey(payload)
	if err != nil {
		return err
	}
	r.Key = key
	return nil
}
