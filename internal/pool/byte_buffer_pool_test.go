package pool

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	require.Equal(t, 0, bb.Len())
	require.Equal(t, 1024, bb.Cap())
}

func TestByteBuffer_WriteAppends(t *testing.T) {
	bb := NewByteBuffer(4)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	require.Equal(t, 5, n)

	_, err = bb.Write([]byte(" world"))
	require.NoError(t, err)
	require.Equal(t, []byte("hello world"), bb.Bytes())
}

func TestByteBuffer_SeekAndOverwrite(t *testing.T) {
	bb := NewByteBuffer(16)
	_, _ = bb.Write([]byte("0000payload"))

	pos, err := bb.Seek(0, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(0), pos)

	_, _ = bb.Write([]byte("HDR!"))
	require.Equal(t, []byte("HDR!payload"), bb.Bytes())

	pos, err = bb.Seek(0, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(11), pos)

	_, _ = bb.Write([]byte("."))
	require.Equal(t, []byte("HDR!payload."), bb.Bytes())

	pos, err = bb.Seek(-1, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(11), pos)
}

func TestByteBuffer_SeekPastEndZeroFills(t *testing.T) {
	bb := NewByteBuffer(4)
	_, _ = bb.Write([]byte{0xff, 0xff})
	bb.Reset()
	_, _ = bb.Write([]byte{1})

	_, err := bb.Seek(4, io.SeekStart)
	require.NoError(t, err)
	_, _ = bb.Write([]byte{2})

	require.Equal(t, []byte{1, 0, 0, 0, 2}, bb.Bytes())
}

func TestByteBuffer_SeekErrors(t *testing.T) {
	bb := NewByteBuffer(4)

	_, err := bb.Seek(-1, io.SeekStart)
	require.Error(t, err)

	_, err = bb.Seek(0, 42)
	require.Error(t, err)
}

func TestByteBuffer_Grow(t *testing.T) {
	t.Run("small buffer grows by default size", func(t *testing.T) {
		bb := NewByteBuffer(10)
		bb.Grow(100)
		require.GreaterOrEqual(t, bb.Cap(), BlockBufferDefaultSize)
	})

	t.Run("large buffer grows by a quarter", func(t *testing.T) {
		bb := NewByteBuffer(8 * BlockBufferDefaultSize)
		bb.Resize(bb.Cap())
		bb.Grow(1)
		require.Equal(t, 10*BlockBufferDefaultSize, bb.Cap())
	})

	t.Run("no growth when capacity suffices", func(t *testing.T) {
		bb := NewByteBuffer(100)
		bb.Grow(50)
		require.Equal(t, 100, bb.Cap())
	})
}

func TestByteBuffer_ResizeKeepsContent(t *testing.T) {
	bb := NewByteBuffer(2)
	_, _ = bb.Write([]byte("ab"))

	b := bb.Resize(1000)
	require.Len(t, b, 1000)
	require.Equal(t, []byte("ab"), b[:2])

	b = bb.Resize(1)
	require.Equal(t, []byte("a"), b)
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(8)
	_, _ = bb.Write([]byte("data"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
	require.Equal(t, "data", out.String())
}

func TestByteBufferPool(t *testing.T) {
	p := NewByteBufferPool(64, 128)

	bb := p.Get()
	require.NotNil(t, bb)
	_, _ = bb.Write([]byte("junk"))
	p.Put(bb)

	again := p.Get()
	require.Equal(t, 0, again.Len())

	// oversized buffers are dropped rather than pooled
	big := NewByteBuffer(1024)
	p.Put(big)
	p.Put(nil)
}

func TestBlockBuffer(t *testing.T) {
	bb := GetBlockBuffer(12345)
	defer PutBlockBuffer(bb)

	require.Equal(t, 12345, bb.Len())
}
