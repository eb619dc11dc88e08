//go:build !gozstd

package compress

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// zstdDecoder is shared by all compressors; DecodeAll is safe for concurrent use.
var zstdDecoder = newZstdDecoder()

func newZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(false),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create zstd decoder: %v", err))
	}

	return dec
}

type zstdState struct {
	encoder      *zstd.Encoder
	encoderLevel int
}

func (c *ZstdCompressor) encoder() *zstd.Encoder {
	if c.state.encoder != nil && c.state.encoderLevel == c.level {
		return c.state.encoder
	}

	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(zstdLevel(c.level))),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderCRC(false),
	)
	if err != nil {
		return nil
	}
	c.state.encoder = enc
	c.state.encoderLevel = c.level

	return enc
}

// CompressBuffer compresses src into dst.
func (c *ZstdCompressor) CompressBuffer(src, dst []byte) int {
	enc := c.encoder()
	if enc == nil {
		return 0
	}

	return placeInto(enc.EncodeAll(src, dst[:0]), dst)
}

// UncompressBuffer decompresses src into dst, requiring exactly len(dst) bytes.
func (c *ZstdCompressor) UncompressBuffer(src, dst []byte) int {
	out, err := zstdDecoder.DecodeAll(src, dst[:0])
	if err != nil || len(out) != len(dst) {
		return 0
	}

	return placeInto(out, dst)
}
