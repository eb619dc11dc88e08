// Package section defines the binary header that frames every array payload.
//
// A payload is always preceded by a header of unsigned words. The word width
// (32 or 64 bits) comes from the document's header_type attribute and the word
// byte order from its byte_order attribute.
//
// # Uncompressed Payload
//
//	┌──────────────────────────────┐
//	│ totalBytes (1 word)          │
//	├──────────────────────────────┤
//	│ totalBytes bytes of data     │
//	└──────────────────────────────┘
//
// # Compressed Payload
//
//	┌─────────────────────────────────────────────┐
//	│ numBlocks                                   │
//	│ blockSize (uncompressed)                    │
//	│ lastBlockSize (uncompressed)                │
//	│ compressedSize[0] ... [numBlocks-1]         │
//	├─────────────────────────────────────────────┤
//	│ compressed block 0 | block 1 | ... | block n│
//	└─────────────────────────────────────────────┘
//
// Block i starts at the sum of the compressed sizes of blocks 0..i-1,
// measured from the first byte after the header. Every block except the last
// decompresses to blockSize bytes; the last decompresses to lastBlockSize
// bytes, which is always greater than zero.
//
// # Header Overflow
//
// Header.Set refuses values that do not fit the declared word width. A 32-bit
// header cannot describe arrays of 4GiB or more; callers must switch to the
// UInt64 header type.
package section
