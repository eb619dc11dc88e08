package section

import (
	"fmt"

	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

// Header is a fixed-length sequence of 32-bit or 64-bit unsigned words.
//
// Words are kept in host representation; the byte order is applied only when
// the header is serialized with AppendTo or parsed with Parse.
type Header struct {
	headerType format.HeaderType
	words      []uint64
}

// NewHeader allocates a header of count words, all zero.
//
// Parameters:
//   - headerType: word width of the header
//   - count: number of words
//
// Returns:
//   - *Header: zero-filled header
func NewHeader(headerType format.HeaderType, count int) *Header {
	return &Header{
		headerType: headerType,
		words:      make([]uint64, count),
	}
}

// Type returns the word width of the header.
func (h *Header) Type() format.HeaderType {
	return h.headerType
}

// Len returns the number of words.
func (h *Header) Len() int {
	return len(h.words)
}

// Get returns word i widened to 64 bits.
func (h *Header) Get(i int) uint64 {
	return h.words[i]
}

// Set stores value into word i.
//
// Returns false, leaving the header unchanged, when value does not fit the
// header word width. Callers must treat false as errs.ErrHeaderOverflow.
func (h *Header) Set(i int, value uint64) bool {
	if value > h.headerType.MaxValue() {
		return false
	}
	h.words[i] = value

	return true
}

// ByteSize returns the serialized size: Len() times the word size.
func (h *Header) ByteSize() int {
	return len(h.words) * h.headerType.WordSize()
}

// AppendTo appends the serialized header in the given byte order to dst.
func (h *Header) AppendTo(dst []byte, engine endian.EndianEngine) []byte {
	if h.headerType == format.HeaderUInt64 {
		for _, w := range h.words {
			dst = engine.AppendUint64(dst, w)
		}

		return dst
	}

	for _, w := range h.words {
		dst = engine.AppendUint32(dst, uint32(w)) //nolint:gosec
	}

	return dst
}

// Bytes serializes the header into a new byte slice.
func (h *Header) Bytes(engine endian.EndianEngine) []byte {
	return h.AppendTo(make([]byte, 0, h.ByteSize()), engine)
}

// Parse fills the header words from data written in the given byte order.
//
// Returns:
//   - error: errs.ErrMalformedHeader if data is shorter than ByteSize()
func (h *Header) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < h.ByteSize() {
		return fmt.Errorf("%w: need %d header bytes, got %d", errs.ErrMalformedHeader, h.ByteSize(), len(data))
	}

	size := h.headerType.WordSize()
	for i := range h.words {
		if size == 8 {
			h.words[i] = engine.Uint64(data[i*8:])
		} else {
			h.words[i] = uint64(engine.Uint32(data[i*4:]))
		}
	}

	return nil
}

// ParseHeader parses a header of count words from data.
func ParseHeader(data []byte, headerType format.HeaderType, count int, engine endian.EndianEngine) (*Header, error) {
	h := NewHeader(headerType, count)
	if err := h.Parse(data, engine); err != nil {
		return nil, err
	}

	return h, nil
}
