package section

import (
	"fmt"
	"math"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

const (
	// PrefixWords is the number of fixed words before the compressed size table.
	PrefixWords = 3

	// MaxBlockSize is the largest uncompressed block size a header may declare.
	MaxBlockSize = math.MaxInt32

	wordNumBlocks     = 0
	wordBlockSize     = 1
	wordLastBlockSize = 2
)

// ComputeBlocks splits totalBytes into blocks of blockSize bytes.
//
// Returns:
//   - numBlocks: ceil(totalBytes / blockSize), 0 for an empty payload
//   - lastBlockSize: totalBytes - (numBlocks-1)*blockSize, in (0, blockSize] when numBlocks > 0
func ComputeBlocks(totalBytes, blockSize int64) (numBlocks, lastBlockSize int64) {
	if totalBytes <= 0 || blockSize <= 0 {
		return 0, 0
	}

	numBlocks = (totalBytes + blockSize - 1) / blockSize
	lastBlockSize = totalBytes - (numBlocks-1)*blockSize

	return numBlocks, lastBlockSize
}

// NewCompressionHeader allocates the header of a compressed payload and fills
// its three prefix words.
//
// Returns:
//   - *Header: header with zero compressed sizes
//   - error: errs.ErrHeaderOverflow if a prefix word exceeds the header word width
func NewCompressionHeader(headerType format.HeaderType, totalBytes, blockSize int64) (*Header, error) {
	// an empty payload still declares the block size it would have used
	numBlocks, lastBlockSize := ComputeBlocks(totalBytes, blockSize)

	h := NewHeader(headerType, PrefixWords+int(numBlocks))
	if !h.Set(wordNumBlocks, uint64(numBlocks)) ||
		!h.Set(wordBlockSize, uint64(blockSize)) ||
		!h.Set(wordLastBlockSize, uint64(lastBlockSize)) {
		return nil, fmt.Errorf("%w: %d bytes in blocks of %d", errs.ErrHeaderOverflow, totalBytes, blockSize)
	}

	return h, nil
}

// Layout is a validated view of a compressed payload header.
type Layout struct {
	header  *Header
	offsets []int64 // offsets[i] = start of block i after the header, offsets[n] = total
}

// NewLayout validates h as a compressed payload header.
//
// Parameters:
//   - h: parsed header with PrefixWords + numBlocks words
//   - maxCompressed: upper bound for every compressed block size, or 0 to skip that check
//
// Returns:
//   - *Layout: layout with block offsets computed
//   - error: errs.ErrMalformedHeader when the counts are inconsistent
func NewLayout(h *Header, maxCompressed int64) (*Layout, error) {
	if h.Len() < PrefixWords {
		return nil, fmt.Errorf("%w: %d words", errs.ErrMalformedHeader, h.Len())
	}

	numBlocks := h.Get(wordNumBlocks)
	blockSize := h.Get(wordBlockSize)
	lastBlockSize := h.Get(wordLastBlockSize)

	if uint64(h.Len()-PrefixWords) != numBlocks {
		return nil, fmt.Errorf("%w: %d blocks declared, %d sizes present", errs.ErrMalformedHeader, numBlocks, h.Len()-PrefixWords)
	}
	if numBlocks > 0 {
		if blockSize == 0 || lastBlockSize == 0 || lastBlockSize > blockSize {
			return nil, fmt.Errorf("%w: block size %d, last block size %d", errs.ErrMalformedHeader, blockSize, lastBlockSize)
		}
		if blockSize > MaxBlockSize {
			return nil, fmt.Errorf("%w: block size %d exceeds %d", errs.ErrMalformedHeader, blockSize, MaxBlockSize)
		}
	}

	offsets := make([]int64, numBlocks+1)
	for i := 0; i < int(numBlocks); i++ {
		size := h.Get(PrefixWords + i)
		if size == 0 {
			return nil, fmt.Errorf("%w: block %d has compressed size 0", errs.ErrMalformedHeader, i)
		}
		if maxCompressed > 0 && size > uint64(maxCompressed) {
			return nil, fmt.Errorf("%w: block %d compressed size %d exceeds bound %d", errs.ErrMalformedHeader, i, size, maxCompressed)
		}
		offsets[i+1] = offsets[i] + int64(size) //nolint:gosec
	}

	return &Layout{header: h, offsets: offsets}, nil
}

// Header returns the underlying header.
func (l *Layout) Header() *Header {
	return l.header
}

// NumBlocks returns the number of blocks.
func (l *Layout) NumBlocks() int {
	return len(l.offsets) - 1
}

// BlockSize returns the uncompressed size of every block but the last.
func (l *Layout) BlockSize() int64 {
	return int64(l.header.Get(wordBlockSize)) //nolint:gosec
}

// LastBlockSize returns the uncompressed size of the last block.
func (l *Layout) LastBlockSize() int64 {
	return int64(l.header.Get(wordLastBlockSize)) //nolint:gosec
}

// UncompressedSize returns the total uncompressed payload size.
func (l *Layout) UncompressedSize() int64 {
	n := int64(l.NumBlocks())
	if n == 0 {
		return 0
	}

	return (n-1)*l.BlockSize() + l.LastBlockSize()
}

// CompressedSize returns the total size of all compressed blocks.
func (l *Layout) CompressedSize() int64 {
	return l.offsets[len(l.offsets)-1]
}

// BlockUncompressedSize returns the uncompressed size of block i.
func (l *Layout) BlockUncompressedSize(i int) int64 {
	if i == l.NumBlocks()-1 {
		return l.LastBlockSize()
	}

	return l.BlockSize()
}

// BlockCompressedSize returns the compressed size of block i.
func (l *Layout) BlockCompressedSize(i int) int64 {
	return l.offsets[i+1] - l.offsets[i]
}

// BlockOffset returns the offset of block i from the end of the header.
func (l *Layout) BlockOffset(i int) int64 {
	return l.offsets[i]
}

// CheckBlock returns errs.ErrBlockOutOfRange unless 0 <= i < NumBlocks().
func (l *Layout) CheckBlock(i int) error {
	if i < 0 || i >= l.NumBlocks() {
		return fmt.Errorf("%w: block %d of %d", errs.ErrBlockOutOfRange, i, l.NumBlocks())
	}

	return nil
}
