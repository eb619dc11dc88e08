//go:build gozstd

package compress

import (
	"github.com/valyala/gozstd"
)

type zstdState struct{}

// CompressBuffer compresses src into dst.
func (c *ZstdCompressor) CompressBuffer(src, dst []byte) int {
	return placeInto(gozstd.CompressLevel(dst[:0], src, zstdLevel(c.level)), dst)
}

// UncompressBuffer decompresses src into dst, requiring exactly len(dst) bytes.
func (c *ZstdCompressor) UncompressBuffer(src, dst []byte) int {
	out, err := gozstd.Decompress(dst[:0], src)
	if err != nil || len(out) != len(dst) {
		return 0
	}

	return placeInto(out, dst)
}
