package pool

import (
	"errors"
	"io"
	"sync"
)

const (
	// BlockBufferDefaultSize matches the default block size of the block writer.
	BlockBufferDefaultSize = 1024 * 32 // 32KiB
	// BlockBufferMaxThreshold is the largest buffer kept in the block pool.
	BlockBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

var errNegativePosition = errors.New("pool: negative position")

// ByteBuffer is a growable byte buffer with a write position.
//
// Writes happen at the current position and extend the buffer when they run
// past its end, so a ByteBuffer doubles as a seekable in-memory sink
// (io.WriteSeeker) for transports that need to patch data they already wrote.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B   []byte
	pos int
}

// NewByteBuffer creates a new ByteBuffer with the specified default capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer but keeps the allocated memory for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
	bb.pos = 0
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Resize sets the length of the buffer to n, growing it if necessary.
// Bytes past the previous length are not cleared.
func (bb *ByteBuffer) Resize(n int) []byte {
	if n > cap(bb.B) {
		bb.Grow(n - len(bb.B))
	}
	bb.B = bb.B[:n]
	if bb.pos > n {
		bb.pos = n
	}

	return bb.B
}

// Grow grows the buffer to ensure it can hold requiredBytes more bytes without reallocating.
//
// The growth strategy is as follows:
//   - For small buffers, grow by BlockBufferDefaultSize to minimize reallocations.
//   - For larger buffers, grow by 25% of current capacity to balance memory usage and reallocation cost.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := BlockBufferDefaultSize
	if cap(bb.B) > 4*BlockBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write writes data at the current position, extending the buffer as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	end := bb.pos + len(data)
	if end > len(bb.B) {
		bb.Grow(end - len(bb.B))
		bb.B = bb.B[:end]
	}
	copy(bb.B[bb.pos:end], data)
	bb.pos = end

	return len(data), nil
}

// Seek sets the position for the next Write.
//
// Seeking past the end is allowed; the gap is zero-filled by the next Write.
func (bb *ByteBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(bb.pos) + offset
	case io.SeekEnd:
		abs = int64(len(bb.B)) + offset
	default:
		return 0, errors.New("pool: invalid whence")
	}
	if abs < 0 {
		return 0, errNegativePosition
	}
	if int(abs) > len(bb.B) {
		start := len(bb.B)
		bb.Resize(int(abs))
		clear(bb.B[start:])
	}
	bb.pos = int(abs)

	return abs, nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// The pool can be configured with a maximum size threshold to avoid retaining
// overly large buffers that could lead to memory bloat.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a new ByteBufferPool with buffers of the specified default size.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var blockPool = NewByteBufferPool(BlockBufferDefaultSize, BlockBufferMaxThreshold)

// GetBlockBuffer retrieves a scratch buffer of exactly size bytes from the block pool.
//
// The content of the returned buffer is unspecified. The caller must return it
// with PutBlockBuffer, typically with defer.
func GetBlockBuffer(size int) *ByteBuffer {
	bb := blockPool.Get()
	bb.Resize(size)

	return bb
}

// PutBlockBuffer returns a scratch buffer to the block pool.
func PutBlockBuffer(bb *ByteBuffer) {
	blockPool.Put(bb)
}
