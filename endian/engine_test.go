package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/arloliu/vtkxml/errs"
	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	require := require.New(t)

	result := CheckEndianness()

	var testValue uint16 = 0x0102
	testBytes := (*[2]byte)(unsafe.Pointer(&testValue))

	switch testBytes[0] {
	case 0x01:
		require.Equal(binary.BigEndian, result)
	case 0x02:
		require.Equal(binary.LittleEndian, result)
	default:
		require.Failf("Unexpected byte value", "got: %v", testBytes[0])
	}
}

func TestIsNativeEndiannessInverse(t *testing.T) {
	require.NotEqual(t, IsNativeLittleEndian(), IsNativeBigEndian())
	require.Equal(t, CheckEndianness(), NativeEngine())
}

func TestCompareNativeEndian(t *testing.T) {
	if IsNativeLittleEndian() {
		require.True(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.False(t, CompareNativeEndian(GetBigEndianEngine()))
	} else {
		require.False(t, CompareNativeEndian(GetLittleEndianEngine()))
		require.True(t, CompareNativeEndian(GetBigEndianEngine()))
	}
}

func TestByteOrderNames(t *testing.T) {
	require.Equal(t, "LittleEndian", Name(GetLittleEndianEngine()))
	require.Equal(t, "BigEndian", Name(GetBigEndianEngine()))

	engine, err := ParseByteOrder("BigEndian")
	require.NoError(t, err)
	require.Equal(t, binary.BigEndian, engine)

	engine, err = ParseByteOrder("LittleEndian")
	require.NoError(t, err)
	require.Equal(t, binary.LittleEndian, engine)

	_, err = ParseByteOrder("MiddleEndian")
	require.ErrorIs(t, err, errs.ErrInvalidByteOrder)
	require.ErrorIs(t, err, errs.ErrConfiguration)
}

func TestSwapInPlace(t *testing.T) {
	tests := []struct {
		name     string
		wordSize int
		in       []byte
		want     []byte
	}{
		{"word1", 1, []byte{1, 2, 3}, []byte{1, 2, 3}},
		{"word2", 2, []byte{1, 2, 3, 4}, []byte{2, 1, 4, 3}},
		{"word4", 4, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{4, 3, 2, 1, 8, 7, 6, 5}},
		{"word8", 8, []byte{1, 2, 3, 4, 5, 6, 7, 8}, []byte{8, 7, 6, 5, 4, 3, 2, 1}},
		{"trailing partial word untouched", 4, []byte{1, 2, 3, 4, 9, 9}, []byte{4, 3, 2, 1, 9, 9}},
		{"empty", 8, []byte{}, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := append([]byte(nil), tt.in...)
			SwapInPlace(buf, tt.wordSize)
			require.Equal(t, tt.want, buf)

			// swapping twice restores the input
			SwapInPlace(buf, tt.wordSize)
			require.Equal(t, tt.in, buf)
		})
	}
}

func TestSwapInPlaceInvalidWordSize(t *testing.T) {
	require.Panics(t, func() { SwapInPlace(make([]byte, 6), 3) })
	require.Panics(t, func() { ToStreamOrder(make([]byte, 6), 6, NativeEngine()) })
}

func TestToStreamOrder(t *testing.T) {
	var value uint32 = 0x01020304

	for _, engine := range []EndianEngine{GetLittleEndianEngine(), GetBigEndianEngine()} {
		t.Run(Name(engine), func(t *testing.T) {
			host := make([]byte, 4)
			NativeEngine().PutUint32(host, value)

			ToStreamOrder(host, 4, engine)
			require.Equal(t, value, engine.Uint32(host))

			FromStreamOrder(host, 4, engine)
			require.Equal(t, value, NativeEngine().Uint32(host))
		})
	}
}

func TestValidWordSize(t *testing.T) {
	for _, n := range []int{1, 2, 4, 8} {
		require.True(t, ValidWordSize(n))
	}
	for _, n := range []int{0, 3, 5, 16, -1} {
		require.False(t, ValidWordSize(n))
	}
}
