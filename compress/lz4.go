package compress

import (
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/vtkxml/format"
)

// lz4CompressorPool pools lz4.Compressor instances for reuse.
// The lz4.Compressor maintains an internal hash table that benefits from reuse.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

// hcLevels maps compression levels 4-9 onto the LZ4 high compression depths.
var hcLevels = map[int]lz4.CompressionLevel{
	4: lz4.Level4,
	5: lz4.Level5,
	6: lz4.Level6,
	7: lz4.Level7,
	8: lz4.Level8,
	9: lz4.Level9,
}

// LZ4Compressor compresses blocks in the raw LZ4 block format.
//
// Levels 1-3 use the fast compressor, levels 4-9 the high compression
// compressor with increasing search depth.
type LZ4Compressor struct {
	levelSetting
	hc lz4.CompressorHC
}

var _ Compressor = (*LZ4Compressor)(nil)

// NewLZ4Compressor creates an LZ4 compressor with the given level.
func NewLZ4Compressor(level int) *LZ4Compressor {
	return &LZ4Compressor{levelSetting: newLevelSetting(level)}
}

// Type returns format.CompressionLZ4.
func (c *LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// MaximumCompressionSpace returns the LZ4 block bound of size.
func (c *LZ4Compressor) MaximumCompressionSpace(size int) int {
	return lz4.CompressBlockBound(size)
}

// CompressBuffer compresses src into dst.
func (c *LZ4Compressor) CompressBuffer(src, dst []byte) int {
	var (
		n   int
		err error
	)

	if depth, ok := hcLevels[c.level]; ok {
		c.hc.Level = depth
		n, err = c.hc.CompressBlock(src, dst)
	} else {
		lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
		n, err = lc.CompressBlock(src, dst)
		lz4CompressorPool.Put(lc)
	}

	if err != nil {
		return 0
	}

	return n
}

// UncompressBuffer decompresses src into dst, requiring exactly len(dst) bytes.
func (c *LZ4Compressor) UncompressBuffer(src, dst []byte) int {
	n, err := lz4.UncompressBlock(src, dst)
	if err != nil || n != len(dst) {
		return 0
	}

	return n
}
