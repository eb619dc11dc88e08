package stream

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

// OutputStream writes payload units to an underlying writer.
type OutputStream interface {
	io.Writer

	// StartWriting begins a new unit.
	StartWriting() error
	// EndWriting finishes the current unit, flushing pending encoder state.
	EndWriting() error
	// Offset returns the number of encoded bytes emitted so far.
	Offset() int64
	// EncodedLength returns the encoded size of a unit of n decoded bytes.
	EncodedLength(n int64) int64
	// Encoding returns the encoding this stream produces.
	Encoding() format.AppendedEncoding
}

// NewOutputStream returns the output stream for encoding over w.
func NewOutputStream(encoding format.AppendedEncoding, w io.Writer) (OutputStream, error) {
	switch encoding {
	case format.EncodingRaw:
		return NewRawOutputStream(w), nil
	case format.EncodingBase64:
		return NewBase64OutputStream(w), nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidEncoding, encoding)
	}
}

// countingWriter counts bytes successfully handed to w and turns short
// writes into errs.ErrShortWrite.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil {
		return n, writeError(err)
	}
	if n != len(p) {
		return n, fmt.Errorf("%w: wrote %d of %d bytes", errs.ErrShortWrite, n, len(p))
	}

	return n, nil
}

func writeError(err error) error {
	if errors.Is(err, errs.ErrIO) {
		return err
	}

	return fmt.Errorf("%w: %w", errs.ErrShortWrite, err)
}

// RawOutputStream passes bytes through unchanged.
type RawOutputStream struct {
	cw countingWriter
}

var _ OutputStream = (*RawOutputStream)(nil)

// NewRawOutputStream creates a raw output stream over w.
func NewRawOutputStream(w io.Writer) *RawOutputStream {
	return &RawOutputStream{cw: countingWriter{w: w}}
}

func (s *RawOutputStream) StartWriting() error { return nil }

func (s *RawOutputStream) Write(p []byte) (int, error) {
	return s.cw.Write(p)
}

func (s *RawOutputStream) EndWriting() error { return nil }

func (s *RawOutputStream) Offset() int64 { return s.cw.n }

func (s *RawOutputStream) EncodedLength(n int64) int64 { return n }

func (s *RawOutputStream) Encoding() format.AppendedEncoding { return format.EncodingRaw }

// Base64OutputStream encodes each unit as standard padded base64.
type Base64OutputStream struct {
	cw  countingWriter
	enc io.WriteCloser
}

var _ OutputStream = (*Base64OutputStream)(nil)

// NewBase64OutputStream creates a base64 output stream over w.
func NewBase64OutputStream(w io.Writer) *Base64OutputStream {
	return &Base64OutputStream{cw: countingWriter{w: w}}
}

// StartWriting begins a new unit. A unit left open is flushed first.
func (s *Base64OutputStream) StartWriting() error {
	if err := s.EndWriting(); err != nil {
		return err
	}
	s.enc = base64.NewEncoder(base64.StdEncoding, &s.cw)

	return nil
}

// Write encodes p. Up to two trailing bytes are held until the next Write
// or EndWriting.
func (s *Base64OutputStream) Write(p []byte) (int, error) {
	if s.enc == nil {
		if err := s.StartWriting(); err != nil {
			return 0, err
		}
	}

	return s.enc.Write(p)
}

// EndWriting flushes the pending partial group with padding.
func (s *Base64OutputStream) EndWriting() error {
	if s.enc == nil {
		return nil
	}
	err := s.enc.Close()
	s.enc = nil

	return err
}

func (s *Base64OutputStream) Offset() int64 { return s.cw.n }

func (s *Base64OutputStream) EncodedLength(n int64) int64 { return EncodedLength(n) }

func (s *Base64OutputStream) Encoding() format.AppendedEncoding { return format.EncodingBase64 }

// EncodedLength returns the padded base64 length of n bytes.
func EncodedLength(n int64) int64 {
	return (n + 2) / 3 * 4
}

// WriteUnit writes p as one complete unit.
func WriteUnit(s OutputStream, p []byte) error {
	if err := s.StartWriting(); err != nil {
		return err
	}
	if _, err := s.Write(p); err != nil {
		return err
	}

	return s.EndWriting()
}
