package block

import (
	"fmt"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/encoding"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/format"
)

// source produces the stream-order bytes of an array, one block at a time.
type source interface {
	// fill writes the next len(dst) stream bytes into dst and returns how
	// many were written, fewer only at the end of the array.
	fill(dst []byte) (int, error)
	// size returns the total number of stream bytes.
	size() int64
}

// wordSource copies host-order words and swaps them to stream order.
type wordSource struct {
	data     []byte
	pos      int
	wordSize int
	engine   endian.EndianEngine
}

func (s *wordSource) fill(dst []byte) (int, error) {
	n := copy(dst, s.data[s.pos:])
	s.pos += n
	endian.ToStreamOrder(dst[:n], s.wordSize, s.engine)

	return n, nil
}

func (s *wordSource) size() int64 { return int64(len(s.data)) }

// narrowIDSource writes 64-bit host ids as 32-bit stream words.
type narrowIDSource struct {
	ids    []int64
	pos    int
	engine endian.EndianEngine
	check  bool
}

func (s *narrowIDSource) fill(dst []byte) (int, error) {
	k := min(len(dst)/4, len(s.ids)-s.pos)
	if err := encoding.NarrowIDs(dst, s.ids[s.pos:s.pos+k], s.engine, s.check); err != nil {
		return 0, err
	}
	s.pos += k

	return 4 * k, nil
}

func (s *narrowIDSource) size() int64 { return 4 * int64(len(s.ids)) }

// stringSource packs NUL-terminated strings.
type stringSource struct {
	packer *encoding.CStringPacker
	total  int64
}

func (s *stringSource) fill(dst []byte) (int, error) {
	return s.packer.Fill(dst), nil
}

func (s *stringSource) size() int64 { return s.total }

func newSource(cfg *Config, a *array.Array) (source, error) {
	switch a.Type() {
	case format.TypeString:
		if err := encoding.CheckCStrings(a.Strings()); err != nil {
			return nil, fmt.Errorf("array %q: %w", a.Name(), err)
		}

		return &stringSource{packer: encoding.NewCStringPacker(a.Strings()), total: a.ByteSize()}, nil
	case format.TypeIDType:
		if cfg.IDBits == 32 {
			ids, err := array.Values[int64](a)
			if err != nil {
				return nil, err
			}

			return &narrowIDSource{ids: ids, engine: cfg.ByteOrder, check: cfg.CheckIndexOverflow}, nil
		}

		return &wordSource{data: a.Bytes(), wordSize: 8, engine: cfg.ByteOrder}, nil
	case format.TypeBit:
		return &wordSource{data: a.Bytes(), wordSize: 1, engine: cfg.ByteOrder}, nil
	default:
		return &wordSource{data: a.Bytes(), wordSize: a.Type().Size(), engine: cfg.ByteOrder}, nil
	}
}
