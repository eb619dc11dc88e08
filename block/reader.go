package block

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/encoding"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/pool"
	"github.com/arloliu/vtkxml/section"
	"github.com/arloliu/vtkxml/stream"
)

const (
	// maxBlocks bounds the block count accepted from a header.
	maxBlocks = math.MaxInt32

	// readChunk caps each allocation made on the strength of a size read from
	// the stream, so a header can only claim memory the stream actually backs.
	readChunk = 1 << 20
)

// Payload is the parsed header of one array payload.
type Payload struct {
	offset     int64
	dataOffset int64
	size       int64
	layout     *section.Layout
}

// Offset returns the encoded offset of the payload header.
func (p *Payload) Offset() int64 { return p.offset }

// Size returns the uncompressed payload size in bytes.
func (p *Payload) Size() int64 { return p.size }

// Layout returns the block layout, or nil for an uncompressed payload.
func (p *Payload) Layout() *section.Layout { return p.layout }

type cachedBlock struct {
	payload int64
	index   int
	data    *pool.ByteBuffer
}

// Reader reads array payloads from a single input.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	cfg   Config
	in    stream.InputStream
	cbuf  *pool.ByteBuffer
	cache cachedBlock
}

// NewReader creates a reader over in. Only the header type, byte order and
// compressor options are relevant when reading.
func NewReader(in stream.InputStream, opts ...Option) (*Reader, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return NewReaderConfig(in, cfg), nil
}

// NewReaderConfig creates a reader from an already validated Config.
func NewReaderConfig(in stream.InputStream, cfg Config) *Reader {
	return &Reader{cfg: cfg, in: in, cache: cachedBlock{index: -1}}
}

// Config returns the reader configuration.
func (r *Reader) Config() Config {
	return r.cfg
}

// Close returns the scratch buffers to the pool. The input is not closed.
func (r *Reader) Close() error {
	r.invalidate()
	if r.cbuf != nil {
		pool.PutBlockBuffer(r.cbuf)
		r.cbuf = nil
	}
	if r.cache.data != nil {
		pool.PutBlockBuffer(r.cache.data)
		r.cache.data = nil
	}

	return r.in.EndReading()
}

func (r *Reader) invalidate() {
	r.cache.payload = -1
	r.cache.index = -1
}

// ReadLayout parses the header of the payload at encoded offset.
//
// Without a compressor the header is one word; with a compressor it is three
// words followed by one word per block.
//
// Returns:
//   - *Payload: parsed header
//   - error: errs.ErrShortRead, errs.ErrMalformedHeader
func (r *Reader) ReadLayout(offset int64) (*Payload, error) {
	word := r.cfg.HeaderType.WordSize()
	engine := r.cfg.ByteOrder

	if err := r.in.StartReading(offset); err != nil {
		return nil, err
	}

	if r.cfg.Compressor == nil {
		raw := make([]byte, word)
		if err := stream.ReadFull(r.in, raw); err != nil {
			return nil, fmt.Errorf("payload header at %d: %w", offset, err)
		}
		h, err := section.ParseHeader(raw, r.cfg.HeaderType, 1, engine)
		if err != nil {
			return nil, err
		}
		size := h.Get(0)
		if size > math.MaxInt64 {
			return nil, fmt.Errorf("%w: payload size %d", errs.ErrMalformedHeader, size)
		}

		return &Payload{
			offset:     offset,
			dataOffset: offset + r.in.EncodedLength(int64(word)),
			size:       int64(size),
		}, nil
	}

	prefix := make([]byte, section.PrefixWords*word)
	if err := stream.ReadFull(r.in, prefix); err != nil {
		return nil, fmt.Errorf("payload header at %d: %w", offset, err)
	}
	h, err := section.ParseHeader(prefix, r.cfg.HeaderType, section.PrefixWords, engine)
	if err != nil {
		return nil, err
	}
	numBlocks := h.Get(0)
	if numBlocks > maxBlocks {
		return nil, fmt.Errorf("%w: %d blocks", errs.ErrMalformedHeader, numBlocks)
	}

	// the size table follows the prefix in the same header unit
	count := section.PrefixWords + int(numBlocks)
	if err := r.in.Seek(0); err != nil {
		return nil, err
	}
	raw, err := readChunked(r.in, int64(count*word))
	if err != nil {
		return nil, fmt.Errorf("payload header at %d: %w", offset, err)
	}
	h, err = section.ParseHeader(raw, r.cfg.HeaderType, count, engine)
	if err != nil {
		return nil, err
	}

	bs := h.Get(1)
	if bs > section.MaxBlockSize {
		return nil, fmt.Errorf("%w: payload at %d: block size %d exceeds %d", errs.ErrMalformedHeader, offset, bs, section.MaxBlockSize)
	}
	bound := int64(r.cfg.Compressor.MaximumCompressionSpace(max(int(bs), 1)))
	layout, err := section.NewLayout(h, bound)
	if err != nil {
		return nil, fmt.Errorf("payload at %d: %w", offset, err)
	}

	return &Payload{
		offset:     offset,
		dataOffset: offset + r.in.EncodedLength(int64(len(raw))),
		size:       layout.UncompressedSize(),
		layout:     layout,
	}, nil
}

// ReadBytes fills dst with the uncompressed stream-order bytes of p starting
// at byte start.
//
// Returns:
//   - error: errs.ErrRangeOutOfBounds, I/O errors, errs.ErrDecompressionFailed
func (r *Reader) ReadBytes(p *Payload, start int64, dst []byte) error {
	if start < 0 || start+int64(len(dst)) > p.size {
		return fmt.Errorf("%w: bytes [%d, %d) of %d", errs.ErrRangeOutOfBounds, start, start+int64(len(dst)), p.size)
	}
	if len(dst) == 0 {
		return nil
	}

	if p.layout == nil {
		if err := r.in.StartReading(p.dataOffset); err != nil {
			return err
		}
		if err := r.in.Seek(start); err != nil {
			return err
		}

		return stream.ReadFull(r.in, dst)
	}

	blockSize := p.layout.BlockSize()
	end := start + int64(len(dst))
	for i := int(start / blockSize); int64(i)*blockSize < end; i++ {
		data, err := r.block(p, i)
		if err != nil {
			return err
		}
		blockStart := int64(i) * blockSize
		lo := max(start, blockStart) - blockStart
		hi := min(end, blockStart+int64(len(data))) - blockStart
		copy(dst[blockStart+lo-start:], data[lo:hi])
	}

	return nil
}

// ReadAll returns the whole uncompressed payload in stream order.
func (r *Reader) ReadAll(p *Payload) ([]byte, error) {
	return r.ReadRange(p, 0, p.size)
}

// ReadRange returns n uncompressed stream-order bytes of p starting at byte
// start.
//
// The result grows readChunk bytes at a time, so a payload whose header claims
// more bytes than the stream holds fails with a short read instead of
// allocating the claimed size up front.
func (r *Reader) ReadRange(p *Payload, start, n int64) ([]byte, error) {
	if start < 0 || n < 0 || start+n > p.size {
		return nil, fmt.Errorf("%w: bytes [%d, %d) of %d", errs.ErrRangeOutOfBounds, start, start+n, p.size)
	}

	buf := make([]byte, 0, min(n, readChunk))
	for int64(len(buf)) < n {
		k := int(min(n-int64(len(buf)), readChunk))
		buf = slices.Grow(buf, k)
		if err := r.ReadBytes(p, start+int64(len(buf)), buf[len(buf):len(buf)+k]); err != nil {
			return nil, err
		}
		buf = buf[:len(buf)+k]
	}

	return buf, nil
}

// readChunked reads n bytes from in without allocating more than readChunk
// bytes ahead of the data actually read.
func readChunked(in stream.InputStream, n int64) ([]byte, error) {
	buf := make([]byte, 0, min(n, readChunk))
	for int64(len(buf)) < n {
		k := int(min(n-int64(len(buf)), readChunk))
		buf = slices.Grow(buf, k)
		if err := stream.ReadFull(in, buf[len(buf):len(buf)+k]); err != nil {
			return nil, err
		}
		buf = buf[:len(buf)+k]
	}

	return buf, nil
}

// block returns the decompressed block i of p, decompressing it unless it is
// the cached block.
func (r *Reader) block(p *Payload, i int) ([]byte, error) {
	if r.cache.payload == p.offset && r.cache.index == i {
		return r.cache.data.B, nil
	}
	r.invalidate()

	if err := p.layout.CheckBlock(i); err != nil {
		return nil, err
	}

	csize := p.layout.BlockCompressedSize(i)
	usize := p.layout.BlockUncompressedSize(i)

	if r.cbuf == nil {
		r.cbuf = pool.GetBlockBuffer(int(csize))
	}
	compressed := r.cbuf.Resize(int(csize))

	if err := r.in.StartReading(p.dataOffset); err != nil {
		return nil, err
	}
	if err := r.in.Seek(p.layout.BlockOffset(i)); err != nil {
		return nil, err
	}
	if err := stream.ReadFull(r.in, compressed); err != nil {
		return nil, fmt.Errorf("block %d: %w", i, err)
	}

	if r.cache.data == nil {
		r.cache.data = pool.GetBlockBuffer(int(usize))
	}
	data := r.cache.data.Resize(int(usize))
	if n := r.cfg.Compressor.UncompressBuffer(compressed, data); int64(n) != usize {
		return nil, fmt.Errorf("%w: block %d: got %d of %d bytes", errs.ErrDecompressionFailed, i, n, usize)
	}

	r.cache.payload = p.offset
	r.cache.index = i

	return data, nil
}

// ReadStrings returns count strings of p after skipping the first skip. A
// negative count returns every remaining string.
//
// Strings have no fixed size, so the payload is scanned from its start.
func (r *Reader) ReadStrings(p *Payload, skip, count int) ([]string, error) {
	u := encoding.NewCStringUnpacker(skip, count)

	chunk := int64(r.cfg.BlockSize)
	if p.layout != nil {
		chunk = p.layout.BlockSize()
	}
	var buf []byte
	for pos := int64(0); pos < p.size && !u.Done(); pos += chunk {
		n := min(chunk, p.size-pos)
		if p.layout != nil {
			data, err := r.block(p, int(pos/chunk))
			if err != nil {
				return nil, err
			}
			u.Feed(data)

			continue
		}
		if int64(cap(buf)) < n {
			buf = make([]byte, n)
		}
		if err := r.ReadBytes(p, pos, buf[:n]); err != nil {
			return nil, err
		}
		u.Feed(buf[:n])
	}

	if err := checkStrings(u, skip, count); err != nil {
		return nil, err
	}

	return u.Strings(), nil
}

func checkStrings(u *encoding.CStringUnpacker, skip, count int) error {
	if u.Pending() > 0 {
		return fmt.Errorf("%w: unterminated string after %d strings", errs.ErrMalformedDocument, u.Seen())
	}
	if count >= 0 && !u.Done() {
		return fmt.Errorf("%w: strings [%d, %d) of %d", errs.ErrRangeOutOfBounds, skip, skip+count, u.Seen())
	}
	if count < 0 && skip > u.Seen() {
		return fmt.Errorf("%w: skip %d of %d strings", errs.ErrRangeOutOfBounds, skip, u.Seen())
	}

	return nil
}

// DecodeStrings splits a whole NUL-terminated payload into strings.
func DecodeStrings(raw []byte) ([]string, error) {
	u := encoding.NewCStringUnpacker(0, -1)
	u.Feed(raw)
	if err := checkStrings(u, 0, -1); err != nil {
		return nil, err
	}

	return u.Strings(), nil
}

// ReadInto fills dst with dst.NumValues() values of p starting at value
// start. dst must have been allocated with array.New.
//
// streamSize is the persisted element size, which differs from the host
// size for ids narrowed to 32 bits. Bit arrays address individual bits.
func (r *Reader) ReadInto(p *Payload, dst *array.Array, start int64, streamSize int) error {
	if streamSize <= 0 || start < 0 {
		return fmt.Errorf("%w: value %d in %d-byte words", errs.ErrRangeOutOfBounds, start, streamSize)
	}

	off, n := ValueBytes(dst.Type(), start, int64(dst.NumValues()), streamSize)
	raw, err := r.ReadRange(p, off, n)
	if err != nil {
		return err
	}

	return DecodeValues(dst, raw, start, streamSize, r.cfg.ByteOrder)
}

// ValueBytes returns the stream byte range holding count values of typ
// starting at value start.
func ValueBytes(typ format.DataType, start, count int64, streamSize int) (off, n int64) {
	if typ == format.TypeBit {
		off = start / 8
		return off, (start+count+7)/8 - off
	}
	es := int64(streamSize)

	return start * es, count * es
}

// DecodeValues converts the bytes of the range ValueBytes returns for start
// and dst's value count into dst.
func DecodeValues(dst *array.Array, raw []byte, start int64, streamSize int, engine endian.EndianEngine) error {
	if dst.Type() == format.TypeBit {
		if int64(len(raw)) < (start%8+int64(dst.NumValues())+7)/8 {
			return fmt.Errorf("%w: %d bytes for %d bits", errs.ErrTypeMismatch, len(raw), dst.NumValues())
		}
		extractBits(dst.Bytes(), raw, int(start%8), dst.NumValues())

		return nil
	}

	return Decode(dst, raw, streamSize, engine)
}

// Decode converts stream-order values in raw into the host storage of dst.
func Decode(dst *array.Array, raw []byte, streamSize int, engine endian.EndianEngine) error {
	if dst.Type() == format.TypeBit {
		copy(dst.Bytes(), raw)
		return nil
	}

	if int64(len(raw)) != int64(dst.NumValues())*int64(streamSize) {
		return fmt.Errorf("%w: %d bytes for %d values of %d bytes", errs.ErrTypeMismatch, len(raw), dst.NumValues(), streamSize)
	}

	if dst.Type() == format.TypeIDType && streamSize == 4 {
		ids, err := array.Values[int64](dst)
		if err != nil {
			return err
		}
		encoding.WidenIDs(ids, raw, engine)

		return nil
	}
	if streamSize != dst.Type().Size() {
		return fmt.Errorf("%w: %s stored in %d-byte words", errs.ErrTypeMismatch, dst.Type(), streamSize)
	}

	data := dst.Bytes()
	copy(data, raw)
	endian.FromStreamOrder(data, streamSize, engine)

	return nil
}

func extractBits(dst, src []byte, shift, count int) {
	clear(dst)
	for i := 0; i < count; i++ {
		j := i + shift
		if src[j/8]&(0x80>>(j%8)) != 0 {
			dst[i/8] |= 0x80 >> (i % 8)
		}
	}
}
