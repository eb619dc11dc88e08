package xmlfile

import (
	"bufio"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/block"
	"github.com/arloliu/vtkxml/encoding"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/collision"
	"github.com/arloliu/vtkxml/internal/hash"
	"github.com/arloliu/vtkxml/internal/options"
	"github.com/arloliu/vtkxml/internal/pool"
	"github.com/arloliu/vtkxml/stream"
	"github.com/hashicorp/go-multierror"
)

const (
	indentUnit = "  "

	offsetAttr = "offset"
	digestAttr = "xxhash64"

	// room for the quoted attribute and the widest int64
	offsetSlotWidth = len(offsetAttr) + len(`=""`) + 20
	digestSlotWidth = len(digestAttr) + len(`=""`) + 16
)

// appendedEntry tracks an array stored in the appended section.
type appendedEntry struct {
	data       *DataArray
	result     block.Result
	written    bool
	offsetSlot ReservedSlot
	digestSlot ReservedSlot
}

// Writer writes one document to an output.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	cfg    writerConfig
	dst    io.Writer
	seeker io.WriteSeeker
	buf    *bufio.Writer
	abort  func() bool

	started bool
	err     error
}

// NewWriter creates a document writer over w.
//
// Configuration errors, such as an unknown compressor, are reported here.
// w is owned by the caller and is never closed.
func NewWriter(w io.Writer, opts ...Option) (*Writer, error) {
	cfg := defaultWriterConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}

	wr := &Writer{cfg: cfg, dst: w, buf: bufio.NewWriter(w)}
	if seeker, ok := stream.Seekable(w); ok {
		wr.seeker = seeker
	}

	return wr, nil
}

// SetAbortCheck installs fn, consulted before every array. When it returns
// true the write stops with errs.ErrAborted.
func (w *Writer) SetAbortCheck(fn func() bool) {
	w.abort = fn
}

func (w *Writer) checkAbort(ctx context.Context) error {
	if w.abort != nil && w.abort() {
		return fmt.Errorf("%w: abort requested", errs.ErrAborted)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrAborted, err)
	}

	return nil
}

func (w *Writer) text(s string) error {
	if _, err := w.buf.WriteString(s); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
	}

	return nil
}

func (w *Writer) flush() error {
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
	}

	return nil
}

// Write writes doc. A Writer writes a single document.
//
// On failure the output holds a partial document; removing it is up to the
// caller.
func (w *Writer) Write(ctx context.Context, doc *Document) error {
	if w.started {
		return errs.ErrDocumentFinished
	}
	w.started = true

	if err := w.write(ctx, doc); err != nil {
		w.err = err
		return err
	}

	return w.flush()
}

// Close flushes buffered text. It reports the error of a failed Write
// together with any flush error.
func (w *Writer) Close() error {
	var result *multierror.Error
	if w.err != nil {
		result = multierror.Append(result, w.err)
	}
	if err := w.flush(); err != nil {
		result = multierror.Append(result, err)
	}

	return result.ErrorOrNil()
}

func (w *Writer) write(ctx context.Context, doc *Document) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("%w: document has no content element", errs.ErrMalformedDocument)
	}
	if err := checkNames(doc.Root); err != nil {
		return err
	}

	entries := map[*DataArray]*appendedEntry{}
	var ordered []*appendedEntry
	doc.Root.Walk(func(e *Element) {
		if e.Data != nil && e.Data.Format == format.FormatAppended {
			entry := &appendedEntry{data: e.Data}
			entries[e.Data] = entry
			ordered = append(ordered, entry)
		}
	})

	// forward-only outputs cannot revisit offsets, so payloads come first
	var preEncoded *pool.ByteBuffer
	if w.seeker == nil && len(ordered) > 0 {
		preEncoded = pool.NewByteBuffer(0)
		if err := w.writePayloads(ctx, preEncoded, ordered); err != nil {
			return err
		}
	}

	if err := w.text(`<?xml version="1.0"?>` + "\n"); err != nil {
		return err
	}
	if err := w.writeRoot(doc); err != nil {
		return err
	}
	if err := w.writeElement(ctx, doc.Root, indentUnit, entries); err != nil {
		return err
	}

	if len(ordered) > 0 {
		open := indentUnit + "<AppendedData" + attr("encoding", w.cfg.encoding.String()) + ">\n" + indentUnit + " _"
		if err := w.text(open); err != nil {
			return err
		}

		if preEncoded != nil {
			if _, err := w.buf.Write(preEncoded.Bytes()); err != nil {
				return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
			}
		} else {
			if err := w.flush(); err != nil {
				return err
			}
			if err := w.writePayloads(ctx, w.dst, ordered); err != nil {
				return err
			}
			if err := w.commitSlots(ordered); err != nil {
				return err
			}
		}

		if err := w.text("\n" + indentUnit + "</AppendedData>\n"); err != nil {
			return err
		}
	}

	return w.text("</VTKFile>\n")
}

// checkNames rejects elements holding two arrays with the same name, and
// string arrays the NUL terminator encoding cannot represent.
func checkNames(root *Element) error {
	tracker := collision.NewTracker()

	var err error
	root.Walk(func(e *Element) {
		if err != nil {
			return
		}
		tracker.Reset()
		for _, c := range e.Children {
			if c.Data == nil || c.Data.Array == nil {
				continue
			}
			a := c.Data.Array
			if err = tracker.Track(a.Name()); err != nil {
				err = fmt.Errorf("<%s>: %w", e.Name, err)
				return
			}
			if a.Type() == format.TypeString {
				if err = encoding.CheckCStrings(a.Strings()); err != nil {
					err = fmt.Errorf("array %q: %w", a.Name(), err)
					return
				}
			}
		}
	})

	return err
}

func (w *Writer) writePayloads(ctx context.Context, dst io.Writer, entries []*appendedEntry) error {
	bw, err := block.NewWriterConfig(dst, w.cfg.encoding, w.cfg.block)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := w.checkAbort(ctx); err != nil {
			return err
		}
		res, err := bw.WriteArray(ctx, entry.data.Array)
		if err != nil {
			return fmt.Errorf("array %q: %w", entry.data.Array.Name(), err)
		}
		entry.result = res
		entry.written = true
	}

	return nil
}

func (w *Writer) commitSlots(entries []*appendedEntry) error {
	for _, entry := range entries {
		if err := w.commit(entry.offsetSlot, offsetText(entry.result.Offset)); err != nil {
			return err
		}
		if w.cfg.checksums {
			if err := w.commit(entry.digestSlot, digestText(entry.result.Digest)); err != nil {
				return err
			}
		}
	}

	return nil
}

func offsetText(offset int64) string {
	return offsetAttr + `="` + strconv.FormatInt(offset, 10) + `"`
}

func digestText(sum uint64) string {
	return digestAttr + `="` + hash.Format(sum) + `"`
}

// attr renders ` name="value"` with the value escaped.
func attr(name, value string) string {
	var sb strings.Builder
	sb.WriteByte(' ')
	sb.WriteString(name)
	sb.WriteString(`="`)
	_ = xml.EscapeText(&sb, []byte(value))
	sb.WriteByte('"')

	return sb.String()
}

func (w *Writer) writeRoot(doc *Document) error {
	cfg := &w.cfg.block

	var sb strings.Builder
	sb.WriteString("<VTKFile")
	sb.WriteString(attr("type", doc.Type))
	sb.WriteString(attr("version", Version))
	sb.WriteString(attr("byte_order", endian.Name(cfg.ByteOrder)))
	sb.WriteString(attr("header_type", cfg.HeaderType.String()))
	if cfg.Compressor != nil {
		sb.WriteString(attr("compressor", cfg.Compressor.Type().CompressorName()))
	}
	sb.WriteString(">\n")

	return w.text(sb.String())
}

func (w *Writer) writeElement(ctx context.Context, e *Element, indent string, entries map[*DataArray]*appendedEntry) error {
	if e.Data != nil {
		return w.writeDataArray(ctx, e, indent, entries[e.Data])
	}

	var sb strings.Builder
	sb.WriteString(indent)
	sb.WriteByte('<')
	sb.WriteString(e.Name)
	for _, a := range e.Attrs {
		sb.WriteString(attr(a.Name, a.Value))
	}
	if len(e.Children) == 0 {
		sb.WriteString("/>\n")
		return w.text(sb.String())
	}
	sb.WriteString(">\n")
	if err := w.text(sb.String()); err != nil {
		return err
	}

	for _, c := range e.Children {
		if err := w.writeElement(ctx, c, indent+indentUnit, entries); err != nil {
			return err
		}
	}

	return w.text(indent + "</" + e.Name + ">\n")
}

func formatRange(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (w *Writer) arrayAttrs(e *Element, a *array.Array, f format.DataFormat) string {
	var sb strings.Builder
	sb.WriteString(attr("type", a.Type().PersistedName(w.cfg.block.IDBits)))
	if a.Type() == format.TypeIDType {
		sb.WriteString(attr("IdType", "1"))
	}
	sb.WriteString(attr("Name", a.Name()))
	sb.WriteString(attr("NumberOfComponents", strconv.Itoa(a.Components())))
	sb.WriteString(attr("NumberOfTuples", strconv.Itoa(a.Tuples())))
	sb.WriteString(attr("format", f.String()))
	if lo, hi, ok := a.Range(); ok {
		sb.WriteString(attr("RangeMin", formatRange(lo)))
		sb.WriteString(attr("RangeMax", formatRange(hi)))
	}
	for _, extra := range e.Attrs {
		sb.WriteString(attr(extra.Name, extra.Value))
	}

	return sb.String()
}

func (w *Writer) writeDataArray(ctx context.Context, e *Element, indent string, entry *appendedEntry) error {
	da := e.Data
	a := da.Array
	if a == nil {
		return fmt.Errorf("%w: DataArray without an array", errs.ErrInvalidArray)
	}
	if da.Format != format.FormatAppended {
		if err := w.checkAbort(ctx); err != nil {
			return err
		}
	}

	head := indent + "<" + e.Name + w.arrayAttrs(e, a, da.Format)

	switch da.Format {
	case format.FormatAppended:
		return w.writeAppendedArray(head, entry)
	case format.FormatBinary:
		return w.writeInlineArray(ctx, head, indent, e.Name, a)
	case format.FormatASCII:
		return w.writeASCIIArray(head, indent, e.Name, a)
	default:
		return fmt.Errorf("%w: array %q has format %d", errs.ErrInvalidDataFormat, a.Name(), da.Format)
	}
}

func (w *Writer) writeAppendedArray(head string, entry *appendedEntry) error {
	if err := w.text(head + " "); err != nil {
		return err
	}

	if entry.written {
		text := pad(offsetText(entry.result.Offset), offsetSlotWidth)
		if w.cfg.checksums {
			text += " " + pad(digestText(entry.result.Digest), digestSlotWidth)
		}
		if err := w.text(text); err != nil {
			return err
		}
	} else {
		slot, err := w.reserve(offsetSlotWidth)
		if err != nil {
			return err
		}
		entry.offsetSlot = slot
		if w.cfg.checksums {
			if err := w.text(" "); err != nil {
				return err
			}
			if entry.digestSlot, err = w.reserve(digestSlotWidth); err != nil {
				return err
			}
		}
	}

	return w.text("/>\n")
}

func (w *Writer) writeInlineArray(ctx context.Context, head, indent, name string, a *array.Array) error {
	buf := pool.GetBlockBuffer(0)
	defer pool.PutBlockBuffer(buf)

	bw, err := block.NewWriterConfig(buf, format.EncodingBase64, w.cfg.block)
	if err != nil {
		return err
	}
	res, err := bw.WriteArray(ctx, a)
	if err != nil {
		return fmt.Errorf("array %q: %w", a.Name(), err)
	}

	if w.cfg.checksums {
		head += attr(digestAttr, hash.Format(res.Digest))
	}
	if err := w.text(head + ">\n" + indent + indentUnit); err != nil {
		return err
	}
	if _, err := w.buf.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
	}

	return w.text("\n" + indent + "</" + name + ">\n")
}

func (w *Writer) writeASCIIArray(head, indent, name string, a *array.Array) error {
	if err := w.text(head + ">\n"); err != nil {
		return err
	}

	aw := encoding.NewASCIIWriter(w.buf, indent+indentUnit)
	var err error
	switch a.Type() {
	case format.TypeString:
		err = aw.WriteStrings(a.Strings())
	case format.TypeBit:
		err = aw.WriteBits(a.Bytes(), a.NumValues())
	default:
		err = aw.WriteValues(a.Type(), a.Bytes(), a.NumValues())
	}
	if err != nil {
		return err
	}
	if err := aw.Flush(); err != nil {
		return err
	}

	return w.text(indent + "</" + name + ">\n")
}
