package encoding

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func packAll(strs []string, blockSize int) [][]byte {
	p := NewCStringPacker(strs)
	var blocks [][]byte
	for !p.Done() {
		block := make([]byte, blockSize)
		n := p.Fill(block)
		blocks = append(blocks, block[:n])
	}

	return blocks
}

func TestCStringPackerBlocks(t *testing.T) {
	strs := []string{"", "a", "ab", strings.Repeat("abc", 3000)}
	total := 1 + 2 + 3 + 9001

	for _, blockSize := range []int{1, 2, 3, 7, 8, 64, 32768} {
		blocks := packAll(strs, blockSize)

		var joined []byte
		for i, b := range blocks {
			if i < len(blocks)-1 {
				require.Len(t, b, blockSize, "only the last block may be short")
			}
			joined = append(joined, b...)
		}
		require.Len(t, joined, total)
		require.Equal(t, byte(0), joined[0])
		require.Equal(t, []byte("a\x00ab\x00"), joined[1:6])
		require.Equal(t, byte(0), joined[len(joined)-1])

		u := NewCStringUnpacker(0, -1)
		for _, b := range blocks {
			u.Feed(b)
		}
		require.Zero(t, u.Pending())
		require.Equal(t, strs, u.Strings())
	}
}

func TestCStringPackerPending(t *testing.T) {
	p := NewCStringPacker([]string{"hello"})
	block := make([]byte, 3)

	require.Equal(t, 3, p.Fill(block))
	require.Equal(t, 3, p.Pending())
	require.False(t, p.Done())

	require.Equal(t, 3, p.Fill(block))
	require.Equal(t, []byte("lo\x00"), block)
	require.True(t, p.Done())
	require.Zero(t, p.Fill(block))
}

func TestCStringUnpackerRange(t *testing.T) {
	strs := []string{"zero", "one", "", "three", "four"}
	run := []byte(strings.Join(strs, "\x00") + "\x00")

	tests := []struct {
		skip, count int
		want        []string
	}{
		{0, 5, strs},
		{1, 2, []string{"one", ""}},
		{3, 1, []string{"three"}},
		{4, -1, []string{"four"}},
		{2, 0, []string{}},
	}

	for _, tt := range tests {
		// feed one byte at a time to force carry-over on every string
		u := NewCStringUnpacker(tt.skip, tt.count)
		for i := 0; i < len(run) && !u.Done(); i++ {
			u.Feed(run[i : i+1])
		}
		require.Equal(t, tt.want, u.Strings(), "skip=%d count=%d", tt.skip, tt.count)
	}
}

func TestCStringUnpackerStopsEarly(t *testing.T) {
	u := NewCStringUnpacker(0, 2)
	done := u.Feed([]byte("a\x00b\x00c\x00"))
	require.True(t, done)
	require.Equal(t, 2, u.Seen())
	require.Equal(t, []string{"a", "b"}, u.Strings())
}
