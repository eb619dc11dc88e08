package compress

import (
	"errors"
	"fmt"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

const (
	// MinLevel is the fastest compression level with the worst ratio.
	MinLevel = 1
	// MaxLevel is the slowest compression level with the best ratio.
	MaxLevel = 9
	// DefaultLevel is used when no level is configured.
	DefaultLevel = 5
)

// Compressor compresses and decompresses independent blocks of an array payload.
//
// The block writer sizes its scratch buffers with MaximumCompressionSpace and
// records every compressed block size in the block header, so the reader always
// knows both the compressed and the uncompressed size of a block up front.
//
// A zero return from CompressBuffer or UncompressBuffer is reserved for failure.
//
// Thread Safety: Compressor implementations cache encoder state and are not safe
// for concurrent use. A document owns its compressor exclusively.
type Compressor interface {
	// Type returns the compression type of the codec.
	Type() format.CompressionType

	// MaximumCompressionSpace returns an upper bound on the compressed size of
	// size raw bytes. It is deterministic and monotonic in size.
	MaximumCompressionSpace(size int) int

	// CompressBuffer compresses all of src into dst and returns the compressed length.
	//
	// dst should hold at least MaximumCompressionSpace(len(src)) bytes.
	// Returns 0 when the codec fails or the output does not fit dst.
	CompressBuffer(src, dst []byte) int

	// UncompressBuffer decompresses src into dst, whose length is the expected
	// uncompressed size taken from the block header.
	//
	// Returns len(dst) on success, 0 on codec failure or when the decompressed
	// size differs from len(dst).
	UncompressBuffer(src, dst []byte) int

	// CompressionLevel returns the configured level in [MinLevel, MaxLevel].
	CompressionLevel() int

	// SetCompressionLevel sets the level; values outside [MinLevel, MaxLevel] are clamped.
	SetCompressionLevel(level int)
}

// Factory creates a compressor configured with the given level.
type Factory func(level int) Compressor

var builtinFactories = map[format.CompressionType]Factory{
	format.CompressionZLib: func(level int) Compressor { return NewZLibCompressor(level) },
	format.CompressionLZ4:  func(level int) Compressor { return NewLZ4Compressor(level) },
	format.CompressionLZMA: func(level int) Compressor { return NewLZMACompressor(level) },
	format.CompressionZstd: func(level int) Compressor { return NewZstdCompressor(level) },
	format.CompressionS2:   func(level int) Compressor { return NewS2Compressor(level) },
}

// New creates a compressor for the specified compression type.
//
// Parameters:
//   - compressionType: one of the compressed types, or CompressionNone
//   - level: compression level, clamped to [MinLevel, MaxLevel]
//
// Returns:
//   - Compressor: new compressor, nil for CompressionNone
//   - error: errs.ErrUnknownCompressor for an undefined type
func New(compressionType format.CompressionType, level int) (Compressor, error) {
	if compressionType == format.CompressionNone {
		return nil, nil //nolint:nilnil
	}

	factory, ok := builtinFactories[compressionType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownCompressor, compressionType)
	}

	return factory(level), nil
}

// ByName creates a compressor from a compressor attribute value such as
// "vtkZLibDataCompressor" or "lz4". An empty name yields a nil compressor.
func ByName(name string, level int) (Compressor, error) {
	compressionType, ok := format.ParseCompressorName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrUnknownCompressor, name)
	}

	return New(compressionType, level)
}

// ClampLevel limits level to [MinLevel, MaxLevel].
func ClampLevel(level int) int {
	switch {
	case level < MinLevel:
		return MinLevel
	case level > MaxLevel:
		return MaxLevel
	default:
		return level
	}
}

// levelSetting implements the level accessors shared by all codecs.
type levelSetting struct {
	level int
}

func newLevelSetting(level int) levelSetting {
	return levelSetting{level: ClampLevel(level)}
}

func (l *levelSetting) CompressionLevel() int {
	return l.level
}

func (l *levelSetting) SetCompressionLevel(level int) {
	l.level = ClampLevel(level)
}

var errBufferFull = errors.New("compress: destination buffer full")

// fixedWriter is an io.Writer over a fixed-capacity slice. Stream-oriented
// codecs write through it so their output never exceeds the caller's buffer.
type fixedWriter struct {
	buf []byte
	n   int
}

func (w *fixedWriter) Write(p []byte) (int, error) {
	if len(p) > len(w.buf)-w.n {
		n := copy(w.buf[w.n:], p)
		w.n += n

		return n, errBufferFull
	}
	copy(w.buf[w.n:], p)
	w.n += len(p)

	return len(p), nil
}

// WriteByte lets byte-oriented encoders write without an extra bufio layer.
func (w *fixedWriter) WriteByte(c byte) error {
	if w.n >= len(w.buf) {
		return errBufferFull
	}
	w.buf[w.n] = c
	w.n++

	return nil
}
