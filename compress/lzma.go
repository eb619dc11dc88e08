package compress

import (
	"bytes"

	"github.com/ulikunitz/xz/lzma"

	"github.com/arloliu/vtkxml/format"
)

// maxLZMADictCap bounds the dictionary; blocks are far smaller than this, and
// the reader allocates the dictionary named in the stream header per block.
const maxLZMADictCap = 1 << 20

// LZMACompressor compresses blocks as classic LZMA streams with an explicit
// size in the stream header.
//
// The level scales the dictionary capacity; levels 7-9 also switch to the
// binary tree match finder.
type LZMACompressor struct {
	levelSetting
}

var _ Compressor = (*LZMACompressor)(nil)

// NewLZMACompressor creates an LZMA compressor with the given level.
func NewLZMACompressor(level int) *LZMACompressor {
	return &LZMACompressor{levelSetting: newLevelSetting(level)}
}

// Type returns format.CompressionLZMA.
func (c *LZMACompressor) Type() format.CompressionType {
	return format.CompressionLZMA
}

// MaximumCompressionSpace returns a conservative bound: incompressible input
// expands by a few percent plus the 13 byte stream header.
func (c *LZMACompressor) MaximumCompressionSpace(size int) int {
	return size + size/3 + 128
}

func (c *LZMACompressor) config(size int) lzma.WriterConfig {
	dictCap := lzma.MinDictCap << c.level
	if dictCap > maxLZMADictCap {
		dictCap = maxLZMADictCap
	}

	cfg := lzma.WriterConfig{
		DictCap: dictCap,
		Size:    int64(size),
		Matcher: lzma.HashTable4,
	}
	if c.level >= 7 {
		cfg.Matcher = lzma.BinaryTree
	}

	return cfg
}

// CompressBuffer compresses src into dst.
func (c *LZMACompressor) CompressBuffer(src, dst []byte) int {
	out := &fixedWriter{buf: dst}

	w, err := c.config(len(src)).NewWriter(out)
	if err != nil {
		return 0
	}
	if _, err := w.Write(src); err != nil {
		return 0
	}
	if err := w.Close(); err != nil {
		return 0
	}

	return out.n
}

// UncompressBuffer decompresses src into dst, requiring exactly len(dst) bytes.
func (c *LZMACompressor) UncompressBuffer(src, dst []byte) int {
	r, err := lzma.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0
	}

	return readExactly(r, dst)
}
