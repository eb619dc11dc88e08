package compress

import (
	"github.com/klauspost/compress/s2"

	"github.com/arloliu/vtkxml/format"
)

// S2Compressor compresses blocks in the S2 block format.
//
// Levels 1-3 use the default encoder, 4-7 the "better" encoder and 8-9 the
// "best" encoder.
type S2Compressor struct {
	levelSetting
}

var _ Compressor = (*S2Compressor)(nil)

// NewS2Compressor creates an S2 compressor with the given level.
func NewS2Compressor(level int) *S2Compressor {
	return &S2Compressor{levelSetting: newLevelSetting(level)}
}

// Type returns format.CompressionS2.
func (c *S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// MaximumCompressionSpace returns s2.MaxEncodedLen(size).
func (c *S2Compressor) MaximumCompressionSpace(size int) int {
	n := s2.MaxEncodedLen(size)
	if n < 0 {
		// too large for a single block; CompressBuffer will report failure
		return size + size/6 + 32
	}

	return n
}

// CompressBuffer compresses src into dst.
func (c *S2Compressor) CompressBuffer(src, dst []byte) int {
	if s2.MaxEncodedLen(len(src)) < 0 || len(dst) < s2.MaxEncodedLen(len(src)) {
		return 0
	}

	var out []byte
	switch {
	case c.level >= 8:
		out = s2.EncodeBest(dst, src)
	case c.level >= 4:
		out = s2.EncodeBetter(dst, src)
	default:
		out = s2.Encode(dst, src)
	}

	return placeInto(out, dst)
}

// UncompressBuffer decompresses src into dst, requiring exactly len(dst) bytes.
func (c *S2Compressor) UncompressBuffer(src, dst []byte) int {
	n, err := s2.DecodedLen(src)
	if err != nil || n != len(dst) {
		return 0
	}

	out, err := s2.Decode(dst, src)
	if err != nil || len(out) != len(dst) {
		return 0
	}

	return placeInto(out, dst)
}
