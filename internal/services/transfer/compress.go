package transfer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression is the per-chunk compression a transfer uses.
type Compression string

const (
	CompressionNone Compression = "none"
	CompressionZstd Compression = "zstd"
	CompressionLZ4  Compression = "lz4"
)

// ChunkSize is the plaintext size of every chunk but the last.
const ChunkSize = 64 << 10

// chunk tags; a chunk that does not shrink is sent raw whatever the
// negotiated compression.
const (
	tagRaw  byte = 0
	tagLZ4  byte = 1
	tagZstd byte = 2
)

const chunkHeader = 1 + 4

var (
	errIncompressible = errors.New("incompressible")
	errChunk          = errors.New("malformed chunk")
)

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic("transfer: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(ChunkSize*2))
	if err != nil {
		panic("transfer: zstd decoder initialization failed: " + err.Error())
	}
}

func validCompression(c Compression) bool {
	switch c {
	case CompressionNone, CompressionZstd, CompressionLZ4:
		return true
	}
	return false
}

// encodeChunk frames data as tag | uncompressed length | payload.
func encodeChunk(c Compression, data []byte) []byte {
	tag, payload := tagRaw, data
	var (
		out []byte
		err error
	)
	switch c {
	case CompressionZstd:
		out, err = compressZstd(data)
		if err == nil {
			tag, payload = tagZstd, out
		}
	case CompressionLZ4:
		out, err = compressLZ4(data)
		if err == nil {
			tag, payload = tagLZ4, out
		}
	}
	frame := make([]byte, chunkHeader, chunkHeader+len(payload))
	frame[0] = tag
	binary.BigEndian.PutUint32(frame[1:], uint32(len(data)))
	return append(frame, payload...)
}

func decodeChunk(frame []byte) ([]byte, error) {
	if len(frame) < chunkHeader {
		return nil, errChunk
	}
	size := int(binary.BigEndian.Uint32(frame[1:]))
	if size > ChunkSize {
		return nil, fmt.Errorf("%w: chunk of %d bytes exceeds %d", errChunk, size, ChunkSize)
	}
	payload := frame[chunkHeader:]
	switch frame[0] {
	case tagRaw:
		if len(payload) != size {
			return nil, fmt.Errorf("%w: raw chunk is %d bytes, header says %d", errChunk, len(payload), size)
		}
		return payload, nil
	case tagLZ4:
		return decompressLZ4(payload, size)
	case tagZstd:
		return decompressZstd(payload, size)
	default:
		return nil, fmt.Errorf("%w: unknown tag %d", errChunk, frame[0])
	}
}

func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	n, err := lz4.CompressBlock(data, dst, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 || n >= len(data) {
		return nil, errIncompressible
	}
	return dst[:n], nil
}

func decompressLZ4(compressed []byte, size int) ([]byte, error) {
	dst := make([]byte, size)
	n, err := lz4.UncompressBlock(compressed, dst)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, size)
	}
	return dst, nil
}

func compressZstd(data []byte) ([]byte, error) {
	out := zstdEncoder.EncodeAll(data, nil)
	if len(out) >= len(data) {
		return nil, errIncompressible
	}
	return out, nil
}

func decompressZstd(compressed []byte, size int) ([]byte, error) {
	out, err := zstdDecoder.DecodeAll(compressed, make([]byte, 0, size))
	if err != nil {
		return nil, fmt.Errorf("zstd decompress: %w", err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("zstd decompress: got %d bytes, expected %d", len(out), size)
	}
	return out, nil
}
