package stream

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

// InputStream reads payload units from an underlying reader.
type InputStream interface {
	io.Reader

	// StartReading positions the stream at the unit starting offset encoded
	// bytes after the start of the data region.
	StartReading(offset int64) error
	// Seek moves to decodedOffset bytes after the start of the current unit.
	Seek(decodedOffset int64) error
	// EndReading releases per-unit state.
	EndReading() error
	// EncodedLength returns the encoded size of a unit of n decoded bytes.
	EncodedLength(n int64) int64
}

// NewInputStream returns the input stream for encoding over r, where base is
// the absolute position of the data region within r.
func NewInputStream(encoding format.AppendedEncoding, r io.ReadSeeker, base int64) (InputStream, error) {
	switch encoding {
	case format.EncodingRaw:
		return NewRawInputStream(r, base), nil
	case format.EncodingBase64:
		return NewBase64InputStream(r, base), nil
	default:
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidEncoding, encoding)
	}
}

func seekTo(r io.Seeker, pos int64) error {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return fmt.Errorf("position %d: %w", pos, seekError(err))
	}

	return nil
}

func seekError(err error) error {
	if errors.Is(err, errs.ErrIO) {
		return err
	}

	return fmt.Errorf("%w: %w", errs.ErrSeekFailed, err)
}

// SeekTo moves s to the absolute position pos.
func SeekTo(s io.Seeker, pos int64) error {
	return seekTo(s, pos)
}

// ReadFull reads exactly len(p) bytes from s, reporting a truncated unit as
// errs.ErrShortRead.
func ReadFull(s InputStream, p []byte) error {
	n, err := io.ReadFull(s, p)
	if err == nil {
		return nil
	}
	if errors.Is(err, errs.ErrIO) || errors.Is(err, errs.ErrFormat) {
		return err
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: read %d of %d bytes", errs.ErrShortRead, n, len(p))
	}

	return fmt.Errorf("%w: %w", errs.ErrShortRead, err)
}

// RawInputStream reads bytes unchanged.
type RawInputStream struct {
	r         io.ReadSeeker
	base      int64
	unitStart int64
}

var _ InputStream = (*RawInputStream)(nil)

// NewRawInputStream creates a raw input stream over r.
func NewRawInputStream(r io.ReadSeeker, base int64) *RawInputStream {
	return &RawInputStream{r: r, base: base}
}

func (s *RawInputStream) StartReading(offset int64) error {
	s.unitStart = s.base + offset
	return seekTo(s.r, s.unitStart)
}

func (s *RawInputStream) Seek(decodedOffset int64) error {
	return seekTo(s.r, s.unitStart+decodedOffset)
}

func (s *RawInputStream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

func (s *RawInputStream) EndReading() error { return nil }

func (s *RawInputStream) EncodedLength(n int64) int64 { return n }

// Base64InputStream decodes standard padded base64 units.
//
// Seeking inside a unit repositions the underlying reader at the enclosing
// 4-character group and discards the leading decoded bytes of that group.
type Base64InputStream struct {
	r         io.ReadSeeker
	base      int64
	unitStart int64
	dec       io.Reader
}

var _ InputStream = (*Base64InputStream)(nil)

// NewBase64InputStream creates a base64 input stream over r.
func NewBase64InputStream(r io.ReadSeeker, base int64) *Base64InputStream {
	return &Base64InputStream{r: r, base: base}
}

func (s *Base64InputStream) StartReading(offset int64) error {
	s.unitStart = s.base + offset
	return s.Seek(0)
}

func (s *Base64InputStream) Seek(decodedOffset int64) error {
	group := decodedOffset / 3
	if err := seekTo(s.r, s.unitStart+group*4); err != nil {
		return err
	}
	s.dec = base64.NewDecoder(base64.StdEncoding, s.r)

	skip := decodedOffset - group*3
	if skip > 0 {
		var discard [2]byte
		if err := ReadFull(s, discard[:skip]); err != nil {
			return err
		}
	}

	return nil
}

func (s *Base64InputStream) Read(p []byte) (int, error) {
	if s.dec == nil {
		return 0, fmt.Errorf("%w: read before StartReading", errs.ErrShortRead)
	}
	n, err := s.dec.Read(p)
	var corrupt base64.CorruptInputError
	if errors.As(err, &corrupt) {
		return n, fmt.Errorf("%w: invalid base64 at byte %d", errs.ErrMalformedDocument, int64(corrupt))
	}

	return n, err
}

func (s *Base64InputStream) EndReading() error {
	s.dec = nil
	return nil
}

func (s *Base64InputStream) EncodedLength(n int64) int64 { return EncodedLength(n) }
