package compress

import "github.com/arloliu/vtkxml/format"

// ZstdCompressor compresses blocks as single Zstandard frames.
//
// This compressor favors compression ratio over speed, which suits archival
// documents that are written once and read rarely. The encoder implementation
// is selected at build time: the pure Go encoder by default, the cgo binding
// with the gozstd build tag.
type ZstdCompressor struct {
	levelSetting
	state zstdState
}

var _ Compressor = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard compressor with the given level.
//
// Example:
//
//	c := compress.NewZstdCompressor(6)
//	dst := make([]byte, c.MaximumCompressionSpace(len(block)))
//	n := c.CompressBuffer(block, dst)
//	if n == 0 {
//		return errs.ErrCompressionFailed
//	}
func NewZstdCompressor(level int) *ZstdCompressor {
	return &ZstdCompressor{levelSetting: newLevelSetting(level)}
}

// Type returns format.CompressionZstd.
func (c *ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}

// MaximumCompressionSpace returns ZSTD_COMPRESSBOUND(size) plus frame overhead.
func (c *ZstdCompressor) MaximumCompressionSpace(size int) int {
	const smallLimit = 128 << 10

	bound := size + (size >> 8) + 64
	if size < smallLimit {
		bound += (smallLimit - size) >> 11
	}

	return bound
}

// zstdLevel maps the uniform 1-9 scale onto zstd levels 1-19.
func zstdLevel(level int) int {
	return 2*level - 1
}

// placeInto moves an encoder result into dst, which it may already alias.
func placeInto(out, dst []byte) int {
	if len(out) == 0 || len(out) > len(dst) {
		return 0
	}
	if &out[0] != &dst[0] {
		copy(dst, out)
	}

	return len(out)
}
