// Package errs defines the errors returned by vtkxml.
//
// Every specific error wraps exactly one category error, so callers can decide
// how to react without matching individual errors:
//
//	if errors.Is(err, errs.ErrCodec) {
//	    // skip this array, keep the rest of the document
//	}
//
// The categories follow the failure taxonomy of the format:
//   - ErrConfiguration: detected when a document is opened (unknown compressor, bad header type)
//   - ErrCapacity: an array does not fit the declared header word size
//   - ErrCodec: a compressor or decompressor failed for one array
//   - ErrIO: the underlying transport failed (short write/read, seek failure)
//   - ErrFormat: the persisted data is malformed or does not match the request
package errs

import (
	"errors"
	"fmt"
)

// Categories.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrCapacity      = errors.New("capacity error")
	ErrCodec         = errors.New("codec error")
	ErrIO            = errors.New("i/o error")
	ErrFormat        = errors.New("format error")
)

// Configuration errors.
var (
	ErrUnknownCompressor = wrap(ErrConfiguration, "unknown compressor")
	ErrInvalidHeaderType = wrap(ErrConfiguration, "invalid header type")
	ErrInvalidByteOrder  = wrap(ErrConfiguration, "invalid byte order")
	ErrInvalidBlockSize  = wrap(ErrConfiguration, "block size must be a positive multiple of 8")
	ErrInvalidIDWidth    = wrap(ErrConfiguration, "id width must be 32 or 64 bits")
	ErrInvalidDataFormat = wrap(ErrConfiguration, "invalid data format")
	ErrInvalidEncoding   = wrap(ErrConfiguration, "invalid appended data encoding")
	ErrInvalidArray      = wrap(ErrConfiguration, "invalid array")
	ErrArrayInFlight     = wrap(ErrConfiguration, "another array write is in flight")
	ErrDocumentFinished  = wrap(ErrConfiguration, "document already written")
	ErrDuplicateArray    = wrap(ErrConfiguration, "duplicate array name within one element")
)

// Capacity errors.
var (
	ErrHeaderOverflow = wrap(ErrCapacity, "array too large for the declared header word size, use the UInt64 header type")
	ErrIndexOverflow  = wrap(ErrCapacity, "index value does not fit in the declared 32-bit id type")
)

// Codec errors.
var (
	ErrCompressionFailed   = wrap(ErrCodec, "block compression failed")
	ErrDecompressionFailed = wrap(ErrCodec, "block decompression failed")
	ErrChecksumMismatch    = wrap(ErrCodec, "payload checksum mismatch")
)

// I/O errors.
var (
	ErrShortWrite = wrap(ErrIO, "short write")
	ErrShortRead  = wrap(ErrIO, "short read")
	ErrSeekFailed = wrap(ErrIO, "seek failed")
	ErrAborted    = wrap(ErrIO, "aborted")
)

// Format errors.
var (
	ErrMalformedHeader     = wrap(ErrFormat, "malformed block header")
	ErrBlockOutOfRange     = wrap(ErrFormat, "block index out of range")
	ErrRangeOutOfBounds    = wrap(ErrFormat, "requested range out of bounds")
	ErrTypeMismatch        = wrap(ErrFormat, "array type mismatch")
	ErrMalformedDocument   = wrap(ErrFormat, "malformed document")
	ErrMissingAppendedData = wrap(ErrFormat, "appended data section not found")
	ErrMalformedASCII      = wrap(ErrFormat, "malformed ascii data")
	ErrArrayNotFound       = wrap(ErrFormat, "array not found")
)

func wrap(category error, msg string) error {
	return fmt.Errorf("%w: %s", category, msg)
}

// Category returns the category error that err belongs to, or nil when err
// is not one of ours.
func Category(err error) error {
	for _, c := range []error{ErrConfiguration, ErrCapacity, ErrCodec, ErrIO, ErrFormat} {
		if errors.Is(err, c) {
			return c
		}
	}

	return nil
}
