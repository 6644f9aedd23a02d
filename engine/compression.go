package engine

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the block compression used by checkpoint files.
type CompressionType uint8

const (
	// CompressionNone stores blocks uncompressed.
	CompressionNone CompressionType = 0
	// CompressionLZ4 is fast with a modest ratio, good default for local disk.
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD trades speed for ratio, good for mirrored checkpoints.
	CompressionZSTD CompressionType = 2
)

// ZSTD encoders and decoders are expensive to construct, so they are pooled.
var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// Block format: [UncompressedSize uint32][CompressedSize uint32][Data].
// CompressedSize == 0 marks a block stored uncompressed.
const blockHeaderSize = 8

// compressBlock frames and compresses one block. Incompressible blocks
// (ratio above 0.9) are stored raw so pathological inputs never grow.
func compressBlock(data []byte, ct CompressionType) ([]byte, error) {
	var compressed []byte
	var err error

	switch ct {
	case CompressionLZ4:
		compressed, err = lz4CompressBlock(data)
	case CompressionZSTD:
		enc := getZstdEncoder()
		compressed = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	}
	if err != nil {
		return nil, err
	}

	if len(compressed) == 0 || float64(len(compressed)) > float64(len(data))*0.9 {
		result := make([]byte, blockHeaderSize+len(data))
		binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
		binary.LittleEndian.PutUint32(result[4:], 0)
		copy(result[blockHeaderSize:], data)
		return result, nil
	}

	result := make([]byte, blockHeaderSize+len(compressed))
	binary.LittleEndian.PutUint32(result[0:], uint32(len(data)))
	binary.LittleEndian.PutUint32(result[4:], uint32(len(compressed)))
	copy(result[blockHeaderSize:], compressed)
	return result, nil
}

func lz4CompressBlock(data []byte) ([]byte, error) {
	compressed := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, compressed, nil)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil // incompressible
	}
	return compressed[:n], nil
}

func decompressBlockBody(compressedData []byte, uncompressedSize uint32, ct CompressionType) ([]byte, error) {
	result := make([]byte, uncompressedSize)

	switch ct {
	case CompressionZSTD:
		dec := getZstdDecoder()
		decoded, err := dec.DecodeAll(compressedData, result[:0])
		zstdDecoderPool.Put(dec)
		if err != nil {
			return nil, err
		}
		if uint32(len(decoded)) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return decoded, nil

	default: // LZ4
		n, err := lz4.UncompressBlock(compressedData, result)
		if err != nil {
			return nil, err
		}
		if uint32(n) != uncompressedSize {
			return nil, errors.New("decompressed size mismatch")
		}
		return result, nil
	}
}

// blockWriter buffers writes into fixed-size blocks and emits each one
// through compressBlock.
type blockWriter struct {
	w         io.Writer
	ct        CompressionType
	blockSize int
	buffer    *bytes.Buffer
}

func newBlockWriter(w io.Writer, ct CompressionType, blockSize int) *blockWriter {
	if blockSize <= 0 {
		blockSize = 256 * 1024
	}
	return &blockWriter{
		w:         w,
		ct:        ct,
		blockSize: blockSize,
		buffer:    bytes.NewBuffer(make([]byte, 0, blockSize)),
	}
}

func (b *blockWriter) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		space := b.blockSize - b.buffer.Len()
		if space <= 0 {
			if err := b.flushBlock(); err != nil {
				return total, err
			}
			space = b.blockSize
		}

		toWrite := min(len(p), space)
		n, err := b.buffer.Write(p[:toWrite])
		if err != nil {
			return total, err
		}
		total += n
		p = p[n:]
	}
	return total, nil
}

func (b *blockWriter) flushBlock() error {
	if b.buffer.Len() == 0 {
		return nil
	}
	framed, err := compressBlock(b.buffer.Bytes(), b.ct)
	if err != nil {
		return err
	}
	if _, err := b.w.Write(framed); err != nil {
		return err
	}
	b.buffer.Reset()
	return nil
}

// Flush emits any partially filled final block.
func (b *blockWriter) Flush() error {
	return b.flushBlock()
}

// decompressAll walks the framed blocks in data and concatenates their
// decompressed contents.
func decompressAll(data []byte, ct CompressionType) ([]byte, error) {
	var result []byte
	offset := 0

	for offset < len(data) {
		if offset+blockHeaderSize > len(data) {
			return nil, errors.New("block too small for header")
		}
		uncompressedSize := binary.LittleEndian.Uint32(data[offset:])
		compressedSize := binary.LittleEndian.Uint32(data[offset+4:])
		offset += blockHeaderSize

		if compressedSize == 0 {
			if offset+int(uncompressedSize) > len(data) {
				return nil, errors.New("block extends beyond data")
			}
			result = append(result, data[offset:offset+int(uncompressedSize)]...)
			offset += int(uncompressedSize)
			continue
		}

		if offset+int(compressedSize) > len(data) {
			return nil, errors.New("compressed block extends beyond data")
		}
		block, err := decompressBlockBody(data[offset:offset+int(compressedSize)], uncompressedSize, ct)
		if err != nil {
			return nil, err
		}
		result = append(result, block...)
		offset += int(compressedSize)
	}
	return result, nil
}
