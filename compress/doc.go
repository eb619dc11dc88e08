// Package compress provides the block compressors used by the block writer and reader.
//
// Array payloads are split into fixed-size blocks and every block is compressed
// independently, so a reader can decompress just the blocks that overlap a
// requested range. The compressors in this package therefore work on whole
// in-memory blocks whose sizes are known on both sides:
//
//   - the writer sizes its output buffer with MaximumCompressionSpace
//   - the block header records every compressed size and the uncompressed block size
//   - the reader decompresses into a buffer of exactly the uncompressed size
//
// # Interface
//
//	type Compressor interface {
//	    Type() format.CompressionType
//	    MaximumCompressionSpace(size int) int
//	    CompressBuffer(src, dst []byte) int   // 0 means failure
//	    UncompressBuffer(src, dst []byte) int // 0 means failure or size mismatch
//	    CompressionLevel() int
//	    SetCompressionLevel(level int)
//	}
//
// # Supported Algorithms
//
// **ZLib** (format.CompressionZLib, "vtkZLibDataCompressor")
//
// Deflate inside a zlib envelope, via github.com/klauspost/compress/zlib.
// The level maps directly onto the deflate level. The most widely readable choice.
//
// **LZ4** (format.CompressionLZ4, "vtkLZ4DataCompressor")
//
// Raw LZ4 blocks via github.com/pierrec/lz4/v4. Levels 1-3 use the fast
// compressor, 4-9 the high compression compressor. Fastest decompression.
//
// **LZMA** (format.CompressionLZMA, "vtkLZMADataCompressor")
//
// Classic LZMA streams via github.com/ulikunitz/xz/lzma. Best ratio, slowest.
//
// **Zstd** (format.CompressionZstd, "vtkZstdDataCompressor")
//
// Zstandard frames via github.com/klauspost/compress/zstd, or the cgo binding
// github.com/valyala/gozstd when built with the gozstd tag.
//
// **S2** (format.CompressionS2, "vtkS2DataCompressor")
//
// S2 blocks via github.com/klauspost/compress/s2.
//
// # Compression Level
//
// Every codec exposes the same 1-9 scale (1 = fastest, 9 = best ratio) and
// remaps it onto its native parameters.
//
// # Usage
//
//	c, err := compress.ByName("vtkZLibDataCompressor", 6)
//	if err != nil {
//	    return err // errs.ErrUnknownCompressor, a configuration error
//	}
//
//	dst := make([]byte, c.MaximumCompressionSpace(len(block)))
//	n := c.CompressBuffer(block, dst)
//	if n == 0 {
//	    return errs.ErrCompressionFailed
//	}
//
//	out := make([]byte, len(block))
//	if c.UncompressBuffer(dst[:n], out) == 0 {
//	    return errs.ErrDecompressionFailed
//	}
package compress
