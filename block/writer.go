package block

import (
	"context"
	"fmt"
	"io"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/hash"
	"github.com/arloliu/vtkxml/internal/pool"
	"github.com/arloliu/vtkxml/section"
	"github.com/arloliu/vtkxml/stream"
)

// Result describes a payload written by an ArrayWrite.
type Result struct {
	// Offset is the encoded position of the payload header relative to the
	// first byte the Writer emitted.
	Offset int64
	// EncodedSize is the number of encoded bytes written, header included.
	EncodedSize int64
	// Size is the uncompressed payload size in bytes.
	Size int64
	// NumBlocks is the number of compressed blocks, 0 without compression.
	NumBlocks int
	// LastBlockSize is the uncompressed size of the last block.
	LastBlockSize int64
	// Digest is the xxHash64 of the uncompressed stream-order payload.
	Digest uint64
}

// Writer writes array payloads to a single output.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	cfg      Config
	out      stream.OutputStream
	seeker   io.WriteSeeker
	inFlight bool
}

// NewWriter creates a writer emitting payloads to w with the given encoding.
//
// The output is probed once for random access; forward-only outputs make the
// writer buffer each compressed array before emitting it.
//
// Parameters:
//   - w: destination, owned by the caller and never closed
//   - encoding: raw bytes or base64 text
//   - opts: framing options
//
// Returns:
//   - *Writer: writer positioned at offset 0
//   - error: configuration errors from opts
func NewWriter(w io.Writer, encoding format.AppendedEncoding, opts ...Option) (*Writer, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}

	return NewWriterConfig(w, encoding, cfg)
}

// NewWriterConfig creates a writer from an already validated Config.
func NewWriterConfig(w io.Writer, encoding format.AppendedEncoding, cfg Config) (*Writer, error) {
	out, err := stream.NewOutputStream(encoding, w)
	if err != nil {
		return nil, err
	}

	wr := &Writer{cfg: cfg, out: out}
	if seeker, ok := stream.Seekable(w); ok {
		wr.seeker = seeker
	}

	return wr, nil
}

// Config returns the writer configuration.
func (w *Writer) Config() Config {
	return w.cfg
}

// Offset returns the number of encoded bytes written so far.
func (w *Writer) Offset() int64 {
	return w.out.Offset()
}

// Seekable reports whether headers are patched in place.
func (w *Writer) Seekable() bool {
	return w.seeker != nil
}

// ArrayWrite is the state of one array being written.
//
// It owns the block header and scratch buffers until Finish or Abort returns.
type ArrayWrite struct {
	w      *Writer
	src    source
	header *section.Header
	offset int64
	done   bool
}

// Begin starts writing a.
//
// The payload size is checked against the header word width here, so an
// array too large for a 32-bit header fails before anything is written.
//
// Returns:
//   - *ArrayWrite: write context, finished with Finish or Abort
//   - error: errs.ErrArrayInFlight, errs.ErrInvalidArray or errs.ErrHeaderOverflow
func (w *Writer) Begin(a *array.Array) (*ArrayWrite, error) {
	if w.inFlight {
		return nil, errs.ErrArrayInFlight
	}
	if a == nil || !a.Type().IsValid() {
		return nil, fmt.Errorf("%w: unsupported array", errs.ErrInvalidArray)
	}

	src, err := newSource(&w.cfg, a)
	if err != nil {
		return nil, err
	}

	total := src.size()
	var header *section.Header
	if w.cfg.Compressor != nil {
		header, err = section.NewCompressionHeader(w.cfg.HeaderType, total, int64(w.cfg.BlockSize))
		if err != nil {
			return nil, fmt.Errorf("array %q: %w", a.Name(), err)
		}
	} else {
		header = section.NewHeader(w.cfg.HeaderType, 1)
		if !header.Set(0, uint64(total)) { //nolint:gosec
			return nil, fmt.Errorf("array %q: %w: %d bytes", a.Name(), errs.ErrHeaderOverflow, total)
		}
	}

	w.inFlight = true

	return &ArrayWrite{w: w, src: src, header: header, offset: w.out.Offset()}, nil
}

// WriteArray writes a as one payload.
func (w *Writer) WriteArray(ctx context.Context, a *array.Array) (Result, error) {
	aw, err := w.Begin(a)
	if err != nil {
		return Result{}, err
	}

	return aw.Finish(ctx)
}

// Offset returns the encoded position at which the payload starts.
func (aw *ArrayWrite) Offset() int64 {
	return aw.offset
}

// Abort releases the write context without writing.
func (aw *ArrayWrite) Abort() {
	if aw.done {
		return
	}
	aw.done = true
	aw.w.inFlight = false
}

// Finish writes the payload.
//
// ctx is checked before every block; cancellation fails with errs.ErrAborted.
// On failure the output position is undefined and the document should be
// discarded.
func (aw *ArrayWrite) Finish(ctx context.Context) (Result, error) {
	if aw.done {
		return Result{}, fmt.Errorf("%w: array write already finished", errs.ErrInvalidArray)
	}
	defer aw.Abort()

	var res Result
	var err error
	if aw.w.cfg.Compressor == nil {
		res, err = aw.writePlain(ctx)
	} else {
		res, err = aw.writeCompressed(ctx)
	}
	if err != nil {
		return Result{}, err
	}

	res.Offset = aw.offset
	res.EncodedSize = aw.w.out.Offset() - aw.offset
	res.Size = aw.src.size()

	return res, nil
}

func checkContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrAborted, err)
	}

	return nil
}

func (aw *ArrayWrite) writePlain(ctx context.Context) (Result, error) {
	cfg := &aw.w.cfg
	out := aw.w.out

	if err := stream.WriteUnit(out, aw.header.Bytes(cfg.ByteOrder)); err != nil {
		return Result{}, err
	}

	scratch := pool.GetBlockBuffer(cfg.BlockSize)
	defer pool.PutBlockBuffer(scratch)

	digest := hash.NewDigest()
	if err := out.StartWriting(); err != nil {
		return Result{}, err
	}
	for remaining := aw.src.size(); remaining > 0; {
		if err := checkContext(ctx); err != nil {
			return Result{}, err
		}
		n, err := aw.src.fill(scratch.B[:min(int64(cfg.BlockSize), remaining)])
		if err != nil {
			return Result{}, err
		}
		if n == 0 {
			return Result{}, fmt.Errorf("%w: payload ended %d bytes early", errs.ErrInvalidArray, remaining)
		}
		digest.Write(scratch.B[:n])
		if _, err := out.Write(scratch.B[:n]); err != nil {
			return Result{}, err
		}
		remaining -= int64(n)
	}
	if err := out.EndWriting(); err != nil {
		return Result{}, err
	}

	return Result{Digest: digest.Sum64()}, nil
}

func (aw *ArrayWrite) writeCompressed(ctx context.Context) (Result, error) {
	w := aw.w
	cfg := &w.cfg
	header := aw.header

	numBlocks := header.Len() - section.PrefixWords
	blockSize := int64(cfg.BlockSize)
	lastBlockSize := int64(header.Get(2)) //nolint:gosec

	scratch := pool.GetBlockBuffer(cfg.BlockSize)
	defer pool.PutBlockBuffer(scratch)
	cbuf := pool.GetBlockBuffer(cfg.Compressor.MaximumCompressionSpace(cfg.BlockSize))
	defer pool.PutBlockBuffer(cbuf)

	// forward-only outputs collect the compressed blocks before the header
	var payload io.Writer
	var buffered *pool.ByteBuffer
	var headerPos int64
	if w.seeker != nil {
		pos, err := stream.Position(w.seeker)
		if err != nil {
			return Result{}, err
		}
		headerPos = pos
		if err := stream.WriteUnit(w.out, header.Bytes(cfg.ByteOrder)); err != nil {
			return Result{}, err
		}
		if err := w.out.StartWriting(); err != nil {
			return Result{}, err
		}
		payload = w.out
	} else {
		buffered = pool.GetBlockBuffer(0)
		defer pool.PutBlockBuffer(buffered)
		payload = buffered
	}

	digest := hash.NewDigest()
	for i := 0; i < numBlocks; i++ {
		if err := checkContext(ctx); err != nil {
			return Result{}, err
		}

		size := blockSize
		if i == numBlocks-1 {
			size = lastBlockSize
		}
		raw := scratch.B[:size]
		n, err := aw.src.fill(raw)
		if err != nil {
			return Result{}, err
		}
		if int64(n) != size {
			return Result{}, fmt.Errorf("%w: block %d produced %d of %d bytes", errs.ErrInvalidArray, i, n, size)
		}
		digest.Write(raw)

		csize := cfg.Compressor.CompressBuffer(raw, cbuf.B)
		if csize == 0 {
			return Result{}, fmt.Errorf("%w: block %d of %d", errs.ErrCompressionFailed, i, numBlocks)
		}
		if !header.Set(section.PrefixWords+i, uint64(csize)) { //nolint:gosec
			return Result{}, fmt.Errorf("%w: compressed block %d is %d bytes", errs.ErrHeaderOverflow, i, csize)
		}
		if _, err := payload.Write(cbuf.B[:csize]); err != nil {
			return Result{}, err
		}
	}

	headerBytes := header.Bytes(cfg.ByteOrder)
	if w.seeker == nil {
		if err := stream.WriteUnit(w.out, headerBytes); err != nil {
			return Result{}, err
		}
		if err := stream.WriteUnit(w.out, buffered.Bytes()); err != nil {
			return Result{}, err
		}
	} else {
		if err := w.out.EndWriting(); err != nil {
			return Result{}, err
		}
		if err := w.patchHeader(headerPos, headerBytes); err != nil {
			return Result{}, err
		}
	}

	return Result{NumBlocks: numBlocks, LastBlockSize: lastBlockSize, Digest: digest.Sum64()}, nil
}

// patchHeader overwrites the placeholder header at pos and returns to the end
// of the payload. The encoded header length does not depend on its values.
func (w *Writer) patchHeader(pos int64, headerBytes []byte) error {
	end, err := stream.Position(w.seeker)
	if err != nil {
		return err
	}
	if err := stream.SeekTo(w.seeker, pos); err != nil {
		return err
	}

	patch, err := stream.NewOutputStream(w.out.Encoding(), w.seeker)
	if err != nil {
		return err
	}
	if err := stream.WriteUnit(patch, headerBytes); err != nil {
		return err
	}

	return stream.SeekTo(w.seeker, end)
}
