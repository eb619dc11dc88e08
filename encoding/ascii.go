package encoding

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

// ValuesPerRow is the number of values ASCIIWriter places on one line.
const ValuesPerRow = 6

// ASCIIWriter renders array values as whitespace separated text, six values
// per row, each row prefixed with an indent.
//
// Floating point values use the shortest decimal form that parses back to the
// same bits, so ParseASCII restores the exact array.
type ASCIIWriter struct {
	w      io.Writer
	indent string
	col    int
	buf    []byte
}

// NewASCIIWriter creates a writer emitting rows to w.
func NewASCIIWriter(w io.Writer, indent string) *ASCIIWriter {
	return &ASCIIWriter{w: w, indent: indent, buf: make([]byte, 0, 256)}
}

func (a *ASCIIWriter) next() {
	if a.col == 0 {
		a.buf = append(a.buf, a.indent...)
	} else {
		a.buf = append(a.buf, ' ')
	}
}

func (a *ASCIIWriter) endValue() error {
	a.col++
	if a.col < ValuesPerRow {
		return nil
	}
	a.col = 0
	a.buf = append(a.buf, '\n')

	return a.flushBuf()
}

func (a *ASCIIWriter) flushBuf() error {
	if len(a.buf) == 0 {
		return nil
	}
	_, err := a.w.Write(a.buf)
	a.buf = a.buf[:0]
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
	}

	return nil
}

// WriteValues renders count values of type typ from host-order data.
func (a *ASCIIWriter) WriteValues(typ format.DataType, data []byte, count int) error {
	for i := 0; i < count; i++ {
		a.next()
		a.buf = AppendValue(a.buf, typ, data, i)
		if err := a.endValue(); err != nil {
			return err
		}
	}

	return nil
}

// WriteBits renders count bits packed most significant bit first as 0 or 1.
func (a *ASCIIWriter) WriteBits(packed []byte, count int) error {
	for i := 0; i < count; i++ {
		a.next()
		if packed[i/8]&(0x80>>(i%8)) != 0 {
			a.buf = append(a.buf, '1')
		} else {
			a.buf = append(a.buf, '0')
		}
		if err := a.endValue(); err != nil {
			return err
		}
	}

	return nil
}

// WriteStrings renders each string as its byte values followed by 0.
//
// Returns errs.ErrInvalidArray, before writing anything, if a string holds NUL.
func (a *ASCIIWriter) WriteStrings(strs []string) error {
	if err := CheckCStrings(strs); err != nil {
		return err
	}
	for _, s := range strs {
		for i := 0; i <= len(s); i++ {
			var b byte
			if i < len(s) {
				b = s[i]
			}
			a.next()
			a.buf = strconv.AppendUint(a.buf, uint64(b), 10)
			if err := a.endValue(); err != nil {
				return err
			}
		}
	}

	return nil
}

// Flush terminates a partial row and writes any buffered text.
func (a *ASCIIWriter) Flush() error {
	if a.col != 0 {
		a.col = 0
		a.buf = append(a.buf, '\n')
	}

	return a.flushBuf()
}

// AppendValue appends the text form of element i of host-order data.
func AppendValue(dst []byte, typ format.DataType, data []byte, i int) []byte {
	e := endian.NativeEngine()
	switch typ {
	case format.TypeInt8:
		return strconv.AppendInt(dst, int64(int8(data[i])), 10)
	case format.TypeUInt8, format.TypeBit:
		return strconv.AppendUint(dst, uint64(data[i]), 10)
	case format.TypeInt16:
		return strconv.AppendInt(dst, int64(int16(e.Uint16(data[i*2:]))), 10)
	case format.TypeUInt16:
		return strconv.AppendUint(dst, uint64(e.Uint16(data[i*2:])), 10)
	case format.TypeInt32:
		return strconv.AppendInt(dst, int64(int32(e.Uint32(data[i*4:]))), 10)
	case format.TypeUInt32:
		return strconv.AppendUint(dst, uint64(e.Uint32(data[i*4:])), 10)
	case format.TypeInt64, format.TypeIDType:
		return strconv.AppendInt(dst, int64(e.Uint64(data[i*8:])), 10) //nolint:gosec
	case format.TypeUInt64:
		return strconv.AppendUint(dst, e.Uint64(data[i*8:]), 10)
	case format.TypeFloat32:
		return strconv.AppendFloat(dst, float64(math.Float32frombits(e.Uint32(data[i*4:]))), 'g', -1, 32)
	case format.TypeFloat64:
		return strconv.AppendFloat(dst, math.Float64frombits(e.Uint64(data[i*8:])), 'g', -1, 64)
	default:
		return dst
	}
}

// ParseASCII parses count whitespace separated values of type typ into dst,
// stored in host order.
//
// Parameters:
//   - dst: destination with room for count elements (packed bytes for TypeBit)
//   - text: element text
//   - typ: fixed-width element type
//   - count: expected number of values
//
// Returns:
//   - error: errs.ErrMalformedASCII on a value count mismatch or unparsable value
func ParseASCII(dst []byte, text []byte, typ format.DataType, count int) error {
	fields := bytes.Fields(text)
	if len(fields) != count {
		return fmt.Errorf("%w: expected %d values, found %d", errs.ErrMalformedASCII, count, len(fields))
	}

	if typ == format.TypeBit {
		clear(dst[:(count+7)/8])
	}

	e := endian.NativeEngine()
	for i, f := range fields {
		var err error
		switch typ {
		case format.TypeInt8, format.TypeInt16, format.TypeInt32, format.TypeInt64, format.TypeIDType:
			var v int64
			v, err = strconv.ParseInt(string(f), 10, typ.Size()*8)
			putInt(dst, e, typ.Size(), i, uint64(v)) //nolint:gosec
		case format.TypeUInt8, format.TypeUInt16, format.TypeUInt32, format.TypeUInt64:
			var v uint64
			v, err = strconv.ParseUint(string(f), 10, typ.Size()*8)
			putInt(dst, e, typ.Size(), i, v)
		case format.TypeFloat32:
			var v float64
			v, err = strconv.ParseFloat(string(f), 32)
			e.PutUint32(dst[i*4:], math.Float32bits(float32(v)))
		case format.TypeFloat64:
			var v float64
			v, err = strconv.ParseFloat(string(f), 64)
			e.PutUint64(dst[i*8:], math.Float64bits(v))
		case format.TypeBit:
			switch string(f) {
			case "0":
			case "1":
				dst[i/8] |= 0x80 >> (i % 8)
			default:
				err = fmt.Errorf("bit value %q", f)
			}
		default:
			return fmt.Errorf("%w: %s has no fixed-width text form", errs.ErrTypeMismatch, typ)
		}
		if err != nil {
			return fmt.Errorf("%w: value %d: %w", errs.ErrMalformedASCII, i, err)
		}
	}

	return nil
}

func putInt(dst []byte, e endian.EndianEngine, size, i int, v uint64) {
	switch size {
	case 1:
		dst[i] = byte(v)
	case 2:
		e.PutUint16(dst[i*2:], uint16(v))
	case 4:
		e.PutUint32(dst[i*4:], uint32(v))
	default:
		e.PutUint64(dst[i*8:], v)
	}
}

// ParseASCIIStrings parses strings rendered by WriteStrings: byte values
// where 0 ends a string.
func ParseASCIIStrings(text []byte) ([]string, error) {
	fields := bytes.Fields(text)
	raw := make([]byte, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(string(f), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("%w: value %d: %w", errs.ErrMalformedASCII, i, err)
		}
		raw[i] = byte(v)
	}
	if len(raw) > 0 && raw[len(raw)-1] != 0 {
		return nil, fmt.Errorf("%w: unterminated string", errs.ErrMalformedASCII)
	}

	u := NewCStringUnpacker(0, -1)
	u.Feed(raw)

	return u.Strings(), nil
}
