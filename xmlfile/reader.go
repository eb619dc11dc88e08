package xmlfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/block"
	"github.com/arloliu/vtkxml/compress"
	"github.com/arloliu/vtkxml/encoding"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/hash"
	"github.com/arloliu/vtkxml/internal/options"
	"github.com/arloliu/vtkxml/stream"
	"github.com/hashicorp/go-multierror"
)

// maxValues bounds the value count of one array so its stream size fits an int.
const maxValues = math.MaxInt / 8

// Reader reads the arrays of one document.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	r     io.ReadSeeker
	cfg   readerConfig
	block block.Config

	doc    *Document
	arrays []*ArrayInfo

	encoding    format.AppendedEncoding
	hasAppended bool
	appended    *block.Reader
}

type frame struct {
	el   *Element
	text []byte
}

// Open parses the document read from r, starting at its current position.
//
// The root attributes are resolved first: an unknown compressor, header type
// or byte order fails with a configuration error before any payload is
// touched. r is owned by the caller and is never closed.
func Open(r io.ReadSeeker, opts ...ReaderOption) (*Reader, error) {
	cfg := readerConfig{verifyChecksums: true}
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	start, err := stream.Position(r)
	if err != nil {
		return nil, err
	}

	rd := &Reader{r: r, cfg: cfg, block: block.DefaultConfig()}
	if err := rd.parse(xml.NewDecoder(r), start); err != nil {
		return nil, err
	}

	for _, info := range rd.arrays {
		if info.Format == format.FormatAppended && !rd.hasAppended {
			return nil, fmt.Errorf("%w: array %q is appended", errs.ErrMissingAppendedData, info.Name)
		}
	}
	for _, info := range rd.arrays {
		if info.Tuples < 0 {
			if err := rd.resolveTuples(info); err != nil {
				return nil, fmt.Errorf("array %q: %w", info.Name, err)
			}
		}
	}

	return rd, nil
}

func malformed(msg string, args ...any) error {
	return fmt.Errorf("%w: "+msg, append([]any{errs.ErrMalformedDocument}, args...)...)
}

func (rd *Reader) parse(dec *xml.Decoder, start int64) error {
	var stack []*frame
	rootSeen := false

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %w", errs.ErrMalformedDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if !rootSeen {
				if t.Name.Local != "VTKFile" {
					return malformed("root element is <%s>, expected <VTKFile>", t.Name.Local)
				}
				if err := rd.parseRoot(t.Attr); err != nil {
					return err
				}
				rootSeen = true

				continue
			}

			if len(stack) == 0 && t.Name.Local == "AppendedData" {
				return rd.locateAppended(t.Attr, start+dec.InputOffset())
			}

			el := &Element{Name: t.Name.Local}
			for _, a := range t.Attr {
				el.Attrs = append(el.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) == 0 {
				if rd.doc.Root != nil {
					return malformed("second content element <%s>", el.Name)
				}
				rd.doc.Root = el
			} else {
				parent := stack[len(stack)-1].el
				parent.Children = append(parent.Children, el)
			}
			stack = append(stack, &frame{el: el})

		case xml.CharData:
			if len(stack) > 0 && stack[len(stack)-1].el.Name == "DataArray" {
				top := stack[len(stack)-1]
				top.text = append(top.text, t...)
			}

		case xml.EndElement:
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.el.Name == "DataArray" {
				info, err := parseArrayInfo(top.el, top.text)
				if err != nil {
					return err
				}
				top.el.Info = info
				rd.arrays = append(rd.arrays, info)
			}
		}
	}

	if !rootSeen {
		return malformed("no <VTKFile> element")
	}

	return nil
}

func attrValue(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}

	return "", false
}

func (rd *Reader) parseRoot(attrs []xml.Attr) error {
	doc := &Document{}
	doc.Type, _ = attrValue(attrs, "type")
	doc.Version, _ = attrValue(attrs, "version")
	rd.doc = doc

	if name, ok := attrValue(attrs, "byte_order"); ok {
		engine, err := endian.ParseByteOrder(name)
		if err != nil {
			return err
		}
		rd.block.ByteOrder = engine
	}

	// documents predating header_type use 32-bit header words
	rd.block.HeaderType = format.HeaderUInt32
	if name, ok := attrValue(attrs, "header_type"); ok {
		ht, ok := format.ParseHeaderType(name)
		if !ok {
			return fmt.Errorf("%w: %q", errs.ErrInvalidHeaderType, name)
		}
		rd.block.HeaderType = ht
	}

	if name, ok := attrValue(attrs, "compressor"); ok {
		compressor, err := compress.ByName(name, compress.DefaultLevel)
		if err != nil {
			return err
		}
		rd.block.Compressor = compressor
	}

	return nil
}

// locateAppended finds the "_" sigil following the AppendedData start tag at pos.
func (rd *Reader) locateAppended(attrs []xml.Attr, pos int64) error {
	rd.encoding = format.EncodingBase64
	if name, ok := attrValue(attrs, "encoding"); ok {
		enc, ok := format.ParseAppendedEncoding(name)
		if !ok {
			return fmt.Errorf("%w: %q", errs.ErrInvalidEncoding, name)
		}
		rd.encoding = enc
	}

	if err := stream.SeekTo(rd.r, pos); err != nil {
		return err
	}

	var buf [64]byte
	for {
		n, err := rd.r.Read(buf[:])
		for i := 0; i < n; i++ {
			switch buf[i] {
			case ' ', '\t', '\r', '\n':
				continue
			case '_':
				return rd.openAppended(pos + int64(i) + 1)
			default:
				return malformed("appended data starts with %q, expected '_'", buf[i])
			}
		}
		pos += int64(n)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return fmt.Errorf("%w: no '_' sigil", errs.ErrMissingAppendedData)
			}

			return fmt.Errorf("%w: %w", errs.ErrShortRead, err)
		}
	}
}

func (rd *Reader) openAppended(base int64) error {
	in, err := stream.NewInputStream(rd.encoding, rd.r, base)
	if err != nil {
		return err
	}
	rd.appended = block.NewReaderConfig(in, rd.block)
	rd.hasAppended = true

	return nil
}

func parseArrayInfo(el *Element, text []byte) (*ArrayInfo, error) {
	info := &ArrayInfo{Element: el, Components: 1, Tuples: -1, Format: format.FormatASCII}
	info.Name, _ = el.Attr("Name")

	typeName, ok := el.Attr("type")
	if !ok {
		return nil, malformed("DataArray %q has no type", info.Name)
	}
	stored, ok := format.ParseDataType(typeName)
	if !ok || stored == format.TypeIDType {
		return nil, malformed("DataArray %q has unknown type %q", info.Name, typeName)
	}
	info.StoredType = stored
	info.Type = stored
	if v, _ := el.Attr("IdType"); v == "1" {
		if stored != format.TypeInt32 && stored != format.TypeInt64 {
			return nil, malformed("id array %q stored as %s", info.Name, stored)
		}
		info.Type = format.TypeIDType
	}

	if v, ok := el.Attr("NumberOfComponents"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n <= 0 {
			return nil, malformed("DataArray %q has NumberOfComponents %q", info.Name, v)
		}
		info.Components = n
	}
	if v, ok := el.Attr("NumberOfTuples"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, malformed("DataArray %q has NumberOfTuples %q", info.Name, v)
		}
		if n > maxValues/info.Components {
			return nil, malformed("DataArray %q declares %d tuples of %d components", info.Name, n, info.Components)
		}
		info.Tuples = n
	}
	if v, ok := el.Attr("format"); ok {
		f, ok := format.ParseDataFormat(v)
		if !ok {
			return nil, fmt.Errorf("%w: DataArray %q: %w", errs.ErrMalformedDocument, info.Name, errs.ErrInvalidDataFormat)
		}
		info.Format = f
	}

	if info.Format == format.FormatAppended {
		v, ok := el.Attr(offsetAttr)
		if !ok {
			return nil, malformed("appended DataArray %q has no offset", info.Name)
		}
		off, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || off < 0 {
			return nil, malformed("DataArray %q has offset %q", info.Name, v)
		}
		info.Offset = off
	}

	if v, ok := el.Attr(digestAttr); ok {
		sum, ok := hash.Parse(strings.TrimSpace(v))
		if !ok {
			return nil, malformed("DataArray %q has %s %q", info.Name, digestAttr, v)
		}
		info.Digest, info.HasDigest = sum, true
	}

	lo, okLo := el.Attr("RangeMin")
	hi, okHi := el.Attr("RangeMax")
	if okLo && okHi {
		vlo, err1 := strconv.ParseFloat(lo, 64)
		vhi, err2 := strconv.ParseFloat(hi, 64)
		if err1 == nil && err2 == nil {
			info.RangeMin, info.RangeMax, info.HasRange = vlo, vhi, true
		}
	}

	switch info.Format {
	case format.FormatBinary:
		info.text = bytes.TrimSpace(text)
	case format.FormatASCII:
		info.text = text
	}

	return info, nil
}

// Document returns the parsed document.
func (rd *Reader) Document() *Document {
	return rd.doc
}

// Arrays returns every array of the document in document order.
func (rd *Reader) Arrays() []*ArrayInfo {
	return rd.arrays
}

// Array returns the first array named name.
func (rd *Reader) Array(name string) (*ArrayInfo, error) {
	for _, info := range rd.arrays {
		if info.Name == name {
			return info, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", errs.ErrArrayNotFound, name)
}

// Compression returns the document compression type.
func (rd *Reader) Compression() format.CompressionType {
	if rd.block.Compressor == nil {
		return format.CompressionNone
	}

	return rd.block.Compressor.Type()
}

// HeaderType returns the document header word width.
func (rd *Reader) HeaderType() format.HeaderType {
	return rd.block.HeaderType
}

// ByteOrder returns the document byte order.
func (rd *Reader) ByteOrder() endian.EndianEngine {
	return rd.block.ByteOrder
}

// AppendedEncoding returns the encoding of the appended section and whether
// the document has one.
func (rd *Reader) AppendedEncoding() (format.AppendedEncoding, bool) {
	return rd.encoding, rd.hasAppended
}

// Close releases the reader buffers. The input is not closed.
func (rd *Reader) Close() error {
	var result *multierror.Error
	if rd.appended != nil {
		if err := rd.appended.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		rd.appended = nil
	}

	return result.ErrorOrNil()
}

// withPayload parses the payload header of a binary or appended array and
// calls fn with a reader positioned on it.
func (rd *Reader) withPayload(info *ArrayInfo, fn func(br *block.Reader, p *block.Payload) error) error {
	switch info.Format {
	case format.FormatAppended:
		if rd.appended == nil {
			return errs.ErrMissingAppendedData
		}
		p, err := rd.appended.ReadLayout(info.Offset)
		if err != nil {
			return err
		}

		return fn(rd.appended, p)

	case format.FormatBinary:
		in := stream.NewBase64InputStream(bytes.NewReader(info.text), 0)
		br := block.NewReaderConfig(in, rd.block)
		p, err := br.ReadLayout(0)
		if err == nil {
			err = fn(br, p)
		}
		if closeErr := br.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr).ErrorOrNil()
		}

		return err

	default:
		return fmt.Errorf("%w: array %q is %s", errs.ErrInvalidDataFormat, info.Name, info.Format)
	}
}

func (rd *Reader) resolveTuples(info *ArrayInfo) error {
	if info.Type == format.TypeString {
		strs, err := rd.ReadStrings(info, 0, -1)
		if err != nil {
			return err
		}
		info.Tuples = len(strs)

		return nil
	}

	if info.Format == format.FormatASCII {
		info.Tuples = len(bytes.Fields(info.text)) / info.Components
		return nil
	}

	return rd.withPayload(info, func(_ *block.Reader, p *block.Payload) error {
		if p.Size() > maxValues {
			return fmt.Errorf("%w: payload size %d", errs.ErrMalformedHeader, p.Size())
		}
		if info.Type == format.TypeBit {
			info.Tuples = int(p.Size()*8) / info.Components
		} else {
			info.Tuples = int(p.Size()) / (info.streamSize() * info.Components)
		}

		return nil
	})
}

// ReadArray reads a whole array. For binary and appended arrays carrying an
// xxhash64 attribute the payload digest is verified.
//
// Returns:
//   - *array.Array: new array owning its storage
//   - error: errs.ErrChecksumMismatch, errs.ErrTypeMismatch, payload errors
func (rd *Reader) ReadArray(info *ArrayInfo) (*array.Array, error) {
	if info.Format == format.FormatASCII {
		return rd.readASCII(info)
	}

	var out *array.Array
	err := rd.withPayload(info, func(br *block.Reader, p *block.Payload) error {
		if want := info.payloadSize(); want >= 0 && p.Size() != want {
			return fmt.Errorf("%w: payload holds %d bytes, %d values need %d",
				errs.ErrTypeMismatch, p.Size(), info.NumValues(), want)
		}
		raw, err := br.ReadAll(p)
		if err != nil {
			return err
		}
		if rd.cfg.verifyChecksums && info.HasDigest {
			if sum := hash.Sum64(raw); sum != info.Digest {
				return fmt.Errorf("%w: array %q has digest %s, expected %s",
					errs.ErrChecksumMismatch, info.Name, hash.Format(sum), hash.Format(info.Digest))
			}
		}

		if info.Type == format.TypeString {
			strs, err := block.DecodeStrings(raw)
			if err != nil {
				return err
			}
			if len(strs) != info.Tuples {
				return fmt.Errorf("%w: %d strings, declared %d", errs.ErrTypeMismatch, len(strs), info.Tuples)
			}
			out = array.NewStrings(info.Name, strs)

			return nil
		}

		dst, err := array.New(info.Name, info.Type, info.Components, info.Tuples)
		if err != nil {
			return err
		}
		if err := block.Decode(dst, raw, info.streamSize(), rd.block.ByteOrder); err != nil {
			return err
		}
		out = dst

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", info.Name, err)
	}

	return out, nil
}

func (rd *Reader) readASCII(info *ArrayInfo) (*array.Array, error) {
	if info.Type == format.TypeString {
		strs, err := encoding.ParseASCIIStrings(info.text)
		if err != nil {
			return nil, fmt.Errorf("array %q: %w", info.Name, err)
		}

		return array.NewStrings(info.Name, strs), nil
	}

	if n := len(bytes.Fields(info.text)); n != info.NumValues() {
		return nil, fmt.Errorf("array %q: %w: %d values, declared %d", info.Name, errs.ErrMalformedASCII, n, info.NumValues())
	}
	dst, err := array.New(info.Name, info.Type, info.Components, info.Tuples)
	if err != nil {
		return nil, err
	}
	if err := encoding.ParseASCII(dst.Bytes(), info.text, info.Type, dst.NumValues()); err != nil {
		return nil, fmt.Errorf("array %q: %w", info.Name, err)
	}

	return dst, nil
}

// ReadTuples reads count tuples starting at tuple start.
func (rd *Reader) ReadTuples(info *ArrayInfo, start, count int) (*array.Array, error) {
	return rd.readRange(info, start*info.Components, count*info.Components, info.Components)
}

// ReadValues reads count values starting at value start, ignoring tuple
// boundaries. The result has a single component.
func (rd *Reader) ReadValues(info *ArrayInfo, start, count int) (*array.Array, error) {
	return rd.readRange(info, start, count, 1)
}

func (rd *Reader) readRange(info *ArrayInfo, first, n, comps int) (*array.Array, error) {
	if info.Type == format.TypeString {
		return nil, fmt.Errorf("%w: %q is a string array, use ReadStrings", errs.ErrTypeMismatch, info.Name)
	}
	if first < 0 || n < 0 || first+n > info.NumValues() {
		return nil, fmt.Errorf("%w: values [%d, %d) of %q with %d values",
			errs.ErrRangeOutOfBounds, first, first+n, info.Name, info.NumValues())
	}

	if info.Format == format.FormatASCII {
		full, err := rd.readASCII(info)
		if err != nil {
			return nil, err
		}
		dst, err := array.New(info.Name, info.Type, comps, n/comps)
		if err != nil {
			return nil, err
		}
		copyValues(dst, full, first, n)

		return dst, nil
	}

	var dst *array.Array
	err := rd.withPayload(info, func(br *block.Reader, p *block.Payload) error {
		if want := info.payloadSize(); p.Size() != want {
			return fmt.Errorf("%w: payload holds %d bytes, %d values need %d",
				errs.ErrTypeMismatch, p.Size(), info.NumValues(), want)
		}
		// the bytes are read before dst is sized, so a count the stream
		// cannot back fails without allocating it
		off, size := block.ValueBytes(info.Type, int64(first), int64(n), info.streamSize())
		raw, err := br.ReadRange(p, off, size)
		if err != nil {
			return err
		}
		if dst, err = array.New(info.Name, info.Type, comps, n/comps); err != nil {
			return err
		}

		return block.DecodeValues(dst, raw, int64(first), info.streamSize(), rd.block.ByteOrder)
	})
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", info.Name, err)
	}

	return dst, nil
}

func copyValues(dst, src *array.Array, first, n int) {
	if src.Type() == format.TypeBit {
		bits := array.UnpackBits(src.Bytes(), src.NumValues())
		copy(dst.Bytes(), array.PackBits(bits[first:first+n]))

		return
	}

	size := src.Type().Size()
	copy(dst.Bytes(), src.Bytes()[first*size:(first+n)*size])
}

// ReadStrings reads count strings starting at string start. A negative count
// reads every remaining string.
//
// Strings have no fixed size: reaching string start scans the payload from
// its beginning.
func (rd *Reader) ReadStrings(info *ArrayInfo, start, count int) ([]string, error) {
	if info.Type != format.TypeString {
		return nil, fmt.Errorf("%w: %q is %s", errs.ErrTypeMismatch, info.Name, info.Type)
	}
	if start < 0 {
		return nil, fmt.Errorf("%w: string %d", errs.ErrRangeOutOfBounds, start)
	}

	if info.Format == format.FormatASCII {
		strs, err := encoding.ParseASCIIStrings(info.text)
		if err != nil {
			return nil, err
		}
		end := len(strs)
		if count >= 0 {
			end = start + count
		}
		if start > len(strs) || end > len(strs) {
			return nil, fmt.Errorf("%w: strings [%d, %d) of %d", errs.ErrRangeOutOfBounds, start, end, len(strs))
		}

		return strs[start:end], nil
	}

	var strs []string
	err := rd.withPayload(info, func(br *block.Reader, p *block.Payload) error {
		var err error
		strs, err = br.ReadStrings(p, start, count)

		return err
	})
	if err != nil {
		return nil, fmt.Errorf("array %q: %w", info.Name, err)
	}

	return strs, nil
}
