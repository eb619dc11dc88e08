package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"

	"github.com/arloliu/vtkxml/format"
)

// ZLibCompressor compresses blocks as zlib (RFC 1950) streams.
//
// This is the codec most readers of the format understand, and the
// compression level maps directly onto the deflate level.
type ZLibCompressor struct {
	levelSetting
	writer      *zlib.Writer
	writerLevel int
}

var _ Compressor = (*ZLibCompressor)(nil)

// NewZLibCompressor creates a zlib compressor with the given level.
func NewZLibCompressor(level int) *ZLibCompressor {
	return &ZLibCompressor{levelSetting: newLevelSetting(level)}
}

// Type returns format.CompressionZLib.
func (c *ZLibCompressor) Type() format.CompressionType {
	return format.CompressionZLib
}

// MaximumCompressionSpace returns the zlib compressBound of size.
func (c *ZLibCompressor) MaximumCompressionSpace(size int) int {
	return size + (size >> 12) + (size >> 14) + (size >> 25) + 13
}

// CompressBuffer compresses src into dst.
//
// The zlib writer is reused across blocks and recreated only when the level changes.
func (c *ZLibCompressor) CompressBuffer(src, dst []byte) int {
	out := &fixedWriter{buf: dst}

	if c.writer == nil || c.writerLevel != c.level {
		w, err := zlib.NewWriterLevel(out, c.level)
		if err != nil {
			return 0
		}
		c.writer = w
		c.writerLevel = c.level
	} else {
		c.writer.Reset(out)
	}

	if _, err := c.writer.Write(src); err != nil {
		return 0
	}
	if err := c.writer.Close(); err != nil {
		return 0
	}

	return out.n
}

// UncompressBuffer decompresses src into dst, requiring exactly len(dst) bytes.
func (c *ZLibCompressor) UncompressBuffer(src, dst []byte) int {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return 0
	}
	defer r.Close()

	return readExactly(r, dst)
}

// readExactly fills dst from r and verifies the stream ends right there.
// Reading to EOF also makes checksumming readers validate their trailer.
func readExactly(r io.Reader, dst []byte) int {
	if _, err := io.ReadFull(r, dst); err != nil {
		return 0
	}

	var extra [1]byte
	n, err := r.Read(extra[:])
	for n == 0 && err == nil {
		n, err = r.Read(extra[:])
	}
	if n != 0 || err != io.EOF { //nolint:errorlint
		return 0
	}

	return len(dst)
}
