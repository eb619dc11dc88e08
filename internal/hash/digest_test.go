package hash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum64(t *testing.T) {
	tests := []struct {
		name string
		data string
		sum  uint64
	}{
		{"empty", "", 0xef46db3751d8e999},
		{"short", "test", 0x4fdcca5ddb678139},
		{"longer", "this is a longer test string to hash", 0x69275f7f7ee59dbd},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.sum, Sum64([]byte(tt.data)))
		})
	}
}

func TestDigestIncremental(t *testing.T) {
	data := []byte("this is a longer test string to hash")

	d := NewDigest()
	d.Write(data[:7])
	d.Write(data[7:20])
	d.Write(data[20:])

	require.Equal(t, Sum64(data), d.Sum64())
}

func TestFormatParse(t *testing.T) {
	for _, sum := range []uint64{0, 1, 0xef46db3751d8e999, ^uint64(0)} {
		text := Format(sum)
		require.Len(t, text, 16)

		got, ok := Parse(text)
		require.True(t, ok)
		require.Equal(t, sum, got)
	}

	_, ok := Parse("not-hex")
	require.False(t, ok)
}

func TestID(t *testing.T) {
	require.Equal(t, Sum64([]byte("Points")), ID("Points"))
	require.NotEqual(t, ID("Points"), ID("points"))
	// xxHash64 of the empty input
	require.Equal(t, uint64(0xef46db3751d8e999), ID(""))
}
