package xmlfile

import (
	"fmt"

	"github.com/arloliu/vtkxml/block"
	"github.com/arloliu/vtkxml/compress"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/options"
)

type writerConfig struct {
	block     block.Config
	encoding  format.AppendedEncoding
	checksums bool
}

// Option configures a Writer.
type Option = options.Option[*writerConfig]

func defaultWriterConfig() writerConfig {
	return writerConfig{
		block:    block.DefaultConfig(),
		encoding: format.EncodingBase64,
	}
}

func withBlock(opt block.Option) Option {
	return options.New(func(c *writerConfig) error {
		return options.Apply(&c.block, opt)
	})
}

// WithByteOrder sets the byte order of payloads. The default is little-endian.
func WithByteOrder(engine endian.EndianEngine) Option {
	return withBlock(block.WithByteOrder(engine))
}

// WithHeaderType sets the payload header word width. The default is UInt32.
func WithHeaderType(headerType format.HeaderType) Option {
	return withBlock(block.WithHeaderType(headerType))
}

// WithBlockSize sets the uncompressed block size, a positive multiple of 8.
func WithBlockSize(size int) Option {
	return withBlock(block.WithBlockSize(size))
}

// WithIDBits sets the persisted width of id arrays, 32 or 64. The default is 64.
func WithIDBits(bits int) Option {
	return withBlock(block.WithIDBits(bits))
}

// WithIndexOverflowCheck reports ids that do not fit 32 bits instead of
// truncating them.
func WithIndexOverflowCheck(enabled bool) Option {
	return withBlock(block.WithIndexOverflowCheck(enabled))
}

// WithCompressor sets the compressor by name, e.g. "vtkZLibDataCompressor"
// or "zstd". An empty name disables compression.
//
// Returns errs.ErrUnknownCompressor from NewWriter for an unrecognized name.
func WithCompressor(name string, level int) Option {
	return options.New(func(c *writerConfig) error {
		compressor, err := compress.ByName(name, level)
		if err != nil {
			return err
		}
		c.block.Compressor = compressor

		return nil
	})
}

// WithCompression sets the compressor by type.
func WithCompression(compressionType format.CompressionType, level int) Option {
	return options.New(func(c *writerConfig) error {
		compressor, err := compress.New(compressionType, level)
		if err != nil {
			return err
		}
		c.block.Compressor = compressor

		return nil
	})
}

// WithAppendedEncoding sets the encoding of the appended section. The default is base64.
func WithAppendedEncoding(encoding format.AppendedEncoding) Option {
	return options.New(func(c *writerConfig) error {
		if encoding != format.EncodingBase64 && encoding != format.EncodingRaw {
			return fmt.Errorf("%w: %d", errs.ErrInvalidEncoding, encoding)
		}
		c.encoding = encoding

		return nil
	})
}

// WithChecksums adds an xxhash64 attribute with the digest of every binary
// and appended payload.
func WithChecksums(enabled bool) Option {
	return options.NoError(func(c *writerConfig) {
		c.checksums = enabled
	})
}

type readerConfig struct {
	verifyChecksums bool
}

// ReaderOption configures a Reader.
type ReaderOption = options.Option[*readerConfig]

// WithVerifyChecksums controls whether full reads check xxhash64 attributes.
// Verification is on by default.
func WithVerifyChecksums(enabled bool) ReaderOption {
	return options.NoError(func(c *readerConfig) {
		c.verifyChecksums = enabled
	})
}
