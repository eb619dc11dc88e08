// Package vtkxml reads and writes XML documents carrying typed numeric,
// bit and string arrays.
//
// Arrays are stored as text, as base64 block data inside their element, or in
// an appended section at the end of the document (raw bytes or base64).
// Binary payloads are split into fixed-size blocks that are compressed
// independently, so a reader can fetch any value range by decompressing only
// the blocks that cover it.
//
// # Core Features
//
//   - All fixed-width numeric types plus index (IdType), bit and string arrays
//   - Block compression with ZLib, LZ4, LZMA, Zstd or S2
//   - Little- or big-endian payloads, converted to host order on read
//   - 32-bit or 64-bit block headers
//   - Random access to tuple and value ranges
//   - Optional xxHash64 payload digests
//   - Seekable and forward-only outputs produce identical bytes
//
// # Basic Usage
//
// Writing a document:
//
//	doc := vtkxml.NewDocument("PolyData")
//	piece := doc.Root.AddChild("Piece")
//	points, _ := array.NewNumeric("Points", 3, coords)
//	piece.AddChild("Points").AddArray(points, format.FormatAppended)
//
//	err := vtkxml.WriteFile("mesh.vtp", doc)
//
// Reading it back:
//
//	f, _ := vtkxml.OpenFile("mesh.vtp")
//	defer f.Close()
//
//	coords, _ := vtkxml.ReadValues[float64](f.Reader, "Points")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the xmlfile
// package. For fine-grained control over the block layer use the block
// package directly.
package vtkxml

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/compress"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/xmlfile"
	"github.com/hashicorp/go-multierror"
)

var defaultWriterOptions = []xmlfile.Option{
	xmlfile.WithByteOrder(endian.GetLittleEndianEngine()),
	xmlfile.WithHeaderType(format.HeaderUInt64),
	xmlfile.WithCompression(format.CompressionZLib, compress.DefaultLevel),
	xmlfile.WithAppendedEncoding(format.EncodingRaw),
	xmlfile.WithChecksums(true),
}

// NewDocument creates a document whose content element is named after typ,
// e.g. "PolyData" or "UnstructuredGrid".
func NewDocument(typ string) *xmlfile.Document {
	return xmlfile.NewDocument(typ)
}

// NewWriter creates a document writer with custom options.
//
// Parameters:
//   - w: destination; when it supports seeking, offsets are patched in place,
//     otherwise appended payloads are encoded in memory first
//   - opts: Optional configuration functions (see xmlfile.Option)
//
// Returns:
//   - *xmlfile.Writer: The created writer.
//   - error: A configuration error, e.g. errs.ErrUnknownCompressor.
//
// Available options:
//   - xmlfile.WithByteOrder(engine)
//   - xmlfile.WithHeaderType(format.HeaderUInt32|HeaderUInt64)
//   - xmlfile.WithCompression(format.CompressionZLib|LZ4|LZMA|Zstd|S2, level)
//   - xmlfile.WithCompressor("vtkZLibDataCompressor", level)
//   - xmlfile.WithBlockSize(size)
//   - xmlfile.WithIDBits(32|64)
//   - xmlfile.WithIndexOverflowCheck(true|false)
//   - xmlfile.WithAppendedEncoding(format.EncodingBase64|EncodingRaw)
//   - xmlfile.WithChecksums(true|false)
func NewWriter(w io.Writer, opts ...xmlfile.Option) (*xmlfile.Writer, error) {
	return xmlfile.NewWriter(w, opts...)
}

// NewDefaultWriter creates a writer with recommended default settings:
//   - Little-endian byte order
//   - 64-bit block headers, so arrays of any size fit
//   - ZLib block compression at the default level
//   - Raw appended data
//   - xxHash64 payload digests
func NewDefaultWriter(w io.Writer) (*xmlfile.Writer, error) {
	return xmlfile.NewWriter(w, defaultWriterOptions...)
}

// Encode writes doc to w and flushes it.
func Encode(w io.Writer, doc *xmlfile.Document, opts ...xmlfile.Option) error {
	return EncodeContext(context.Background(), w, doc, opts...)
}

// EncodeContext is Encode with cancellation: the write stops with
// errs.ErrAborted between blocks once ctx is done.
func EncodeContext(ctx context.Context, w io.Writer, doc *xmlfile.Document, opts ...xmlfile.Option) error {
	wr, err := xmlfile.NewWriter(w, opts...)
	if err != nil {
		return err
	}
	// a failed Write is reported by Close along with any flush error
	_ = wr.Write(ctx, doc)

	return wr.Close()
}

// WriteFile writes doc to a new file at path, using the default writer
// settings when no options are given. A partially written file is removed.
func WriteFile(path string, doc *xmlfile.Document, opts ...xmlfile.Option) error {
	if len(opts) == 0 {
		opts = defaultWriterOptions
	}

	f, err := os.Create(path)
	if err != nil {
		return fileError(err)
	}

	var result *multierror.Error
	if err := Encode(f, doc, opts...); err != nil {
		result = multierror.Append(result, err)
	}
	if err := f.Close(); err != nil {
		result = multierror.Append(result, fileError(err))
	}
	if result.ErrorOrNil() != nil {
		if err := os.Remove(path); err != nil {
			result = multierror.Append(result, fileError(err))
		}
	}

	return result.ErrorOrNil()
}

// Open parses a document read from r.
//
// The root attributes are validated here: an unknown compressor fails before
// any array is read.
func Open(r io.ReadSeeker, opts ...xmlfile.ReaderOption) (*xmlfile.Reader, error) {
	return xmlfile.Open(r, opts...)
}

// File is a document opened from the file system.
type File struct {
	*xmlfile.Reader
	f *os.File
}

// OpenFile opens and parses the document at path.
func OpenFile(path string, opts ...xmlfile.ReaderOption) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileError(err)
	}

	r, err := xmlfile.Open(f, opts...)
	if err != nil {
		var result *multierror.Error
		result = multierror.Append(result, fmt.Errorf("%s: %w", path, err))
		if closeErr := f.Close(); closeErr != nil {
			result = multierror.Append(result, fileError(closeErr))
		}

		return nil, result.ErrorOrNil()
	}

	return &File{Reader: r, f: f}, nil
}

// Close releases the reader and closes the file.
func (f *File) Close() error {
	var result *multierror.Error
	if err := f.Reader.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := f.f.Close(); err != nil {
		result = multierror.Append(result, fileError(err))
	}

	return result.ErrorOrNil()
}

// fileError classifies a file system error as errs.ErrIO. The *PathError
// stays in the chain.
func fileError(err error) error {
	return fmt.Errorf("%w: %w", errs.ErrIO, err)
}

// ReadValues reads every value of the array named name as T.
//
// Returns errs.ErrTypeMismatch when the stored type does not match T. Index
// arrays are read as int64.
func ReadValues[T array.Numeric](r *xmlfile.Reader, name string) ([]T, error) {
	info, err := r.Array(name)
	if err != nil {
		return nil, err
	}
	a, err := r.ReadArray(info)
	if err != nil {
		return nil, err
	}

	return array.Values[T](a)
}

// ReadTuples reads count tuples of the array named name as T, starting at
// tuple start.
func ReadTuples[T array.Numeric](r *xmlfile.Reader, name string, start, count int) ([]T, error) {
	info, err := r.Array(name)
	if err != nil {
		return nil, err
	}
	a, err := r.ReadTuples(info, start, count)
	if err != nil {
		return nil, err
	}

	return array.Values[T](a)
}

// ReadStrings reads every string of the array named name.
func ReadStrings(r *xmlfile.Reader, name string) ([]string, error) {
	info, err := r.Array(name)
	if err != nil {
		return nil, err
	}

	return r.ReadStrings(info, 0, -1)
}
