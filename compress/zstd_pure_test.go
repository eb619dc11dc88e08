//go:build !gozstd

package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZstdSharedDecoder(t *testing.T) {
	require.NotNil(t, zstdDecoder)
	require.NotPanics(t, func() { newZstdDecoder().Close() })

	src := bytes.Repeat([]byte("abcdefgh"), 512)
	c := NewZstdCompressor(3)
	dst := make([]byte, c.MaximumCompressionSpace(len(src)))
	n := c.CompressBuffer(src, dst)
	require.Positive(t, n)

	out := make([]byte, len(src))
	require.Equal(t, len(src), c.UncompressBuffer(dst[:n], out))
	require.Equal(t, src, out)
}
