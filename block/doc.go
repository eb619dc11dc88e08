// Package block writes and reads the block-framed binary payload of one array.
//
// Every payload starts with a header (see package section). Without a
// compressor the header is a single word holding the payload size. With a
// compressor the payload is split into blocks of a fixed uncompressed size,
// each compressed independently, and the header lists the size of every
// compressed block so readers can decompress any block on its own.
//
// # Writing
//
// A Writer owns the output for the lifetime of a document. Each array is
// written through an ArrayWrite obtained from Writer.Begin and completed with
// ArrayWrite.Finish; only one ArrayWrite may be open at a time.
//
// The compressed sizes are only known after compression. On a seekable
// output the writer emits a placeholder header, streams the blocks, then seeks
// back and overwrites the header. On a forward-only output it compresses the
// whole array into memory first and emits header and blocks in one pass. Both
// strategies produce identical bytes.
//
// # Reading
//
// Reader.ReadLayout parses the header of a payload. ReadBytes then serves
// any byte range, decompressing only the overlapping blocks; the most
// recently decompressed block is cached so sequential range reads decompress
// each block once. String payloads have no fixed element size, so string
// access scans from the start of the payload.
package block
