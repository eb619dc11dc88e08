package block

import (
	"fmt"

	"github.com/arloliu/vtkxml/compress"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/options"
)

// DefaultBlockSize is the uncompressed block size used when none is configured.
const DefaultBlockSize = 32768

// Config describes how payloads are framed. It is fixed for a document.
type Config struct {
	HeaderType         format.HeaderType
	ByteOrder          endian.EndianEngine
	Compressor         compress.Compressor
	BlockSize          int
	IDBits             int
	CheckIndexOverflow bool
}

// Option configures a Writer or Reader.
type Option = options.Option[*Config]

// DefaultConfig returns the default framing: little-endian, 32-bit header
// words, no compression, 32KiB blocks and 64-bit ids.
func DefaultConfig() Config {
	return Config{
		HeaderType: format.HeaderUInt32,
		ByteOrder:  endian.GetLittleEndianEngine(),
		BlockSize:  DefaultBlockSize,
		IDBits:     64,
	}
}

// NewConfig returns the default config with opts applied.
func NewConfig(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// WithHeaderType sets the header word width.
func WithHeaderType(headerType format.HeaderType) Option {
	return options.New(func(c *Config) error {
		if !headerType.IsValid() {
			return fmt.Errorf("%w: %d", errs.ErrInvalidHeaderType, headerType)
		}
		c.HeaderType = headerType

		return nil
	})
}

// WithByteOrder sets the byte order of header words and array values.
func WithByteOrder(engine endian.EndianEngine) Option {
	return options.New(func(c *Config) error {
		if engine == nil {
			return fmt.Errorf("%w: nil engine", errs.ErrInvalidByteOrder)
		}
		c.ByteOrder = engine

		return nil
	})
}

// WithCompressor sets the block compressor. A nil compressor disables compression.
func WithCompressor(compressor compress.Compressor) Option {
	return options.NoError(func(c *Config) {
		c.Compressor = compressor
	})
}

// WithBlockSize sets the uncompressed block size, a positive multiple of 8.
func WithBlockSize(size int) Option {
	return options.New(func(c *Config) error {
		if size <= 0 || size%8 != 0 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidBlockSize, size)
		}
		c.BlockSize = size

		return nil
	})
}

// WithIDBits sets the persisted width of id arrays, 32 or 64.
func WithIDBits(bits int) Option {
	return options.New(func(c *Config) error {
		if bits != 32 && bits != 64 {
			return fmt.Errorf("%w: %d", errs.ErrInvalidIDWidth, bits)
		}
		c.IDBits = bits

		return nil
	})
}

// WithIndexOverflowCheck makes narrowing ids to 32 bits fail with
// errs.ErrIndexOverflow instead of truncating out-of-range values.
func WithIndexOverflowCheck(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.CheckIndexOverflow = enabled
	})
}

// StreamSize returns the persisted element size of typ: the host size for
// fixed-width types, 4 for ids narrowed to 32 bits and 1 for strings.
func (c *Config) StreamSize(typ format.DataType) int {
	switch typ {
	case format.TypeIDType:
		return c.IDBits / 8
	case format.TypeString:
		return 1
	default:
		return typ.Size()
	}
}
