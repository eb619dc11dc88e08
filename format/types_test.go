package format

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataTypeSizes(t *testing.T) {
	tests := []struct {
		typ  DataType
		size int
	}{
		{TypeInt8, 1}, {TypeUInt8, 1}, {TypeBit, 1},
		{TypeInt16, 2}, {TypeUInt16, 2},
		{TypeInt32, 4}, {TypeUInt32, 4}, {TypeFloat32, 4},
		{TypeInt64, 8}, {TypeUInt64, 8}, {TypeFloat64, 8}, {TypeIDType, 8},
		{TypeString, 0},
	}

	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			require.Equal(t, tt.size, tt.typ.Size())
			require.True(t, tt.typ.IsValid())

			parsed, ok := ParseDataType(tt.typ.String())
			require.True(t, ok)
			require.Equal(t, tt.typ, parsed)
		})
	}

	require.False(t, DataType(0).IsValid())
	require.False(t, DataType(0x20).IsValid())
	require.Equal(t, "Unknown", DataType(0x20).String())
	_, ok := ParseDataType("Float16")
	require.False(t, ok)
}

func TestDataTypeClasses(t *testing.T) {
	require.True(t, TypeIDType.IsNumeric())
	require.False(t, TypeBit.IsNumeric())
	require.False(t, TypeString.IsNumeric())

	require.True(t, TypeFloat32.IsFloat())
	require.False(t, TypeInt64.IsFloat())

	require.True(t, TypeIDType.IsSigned())
	require.False(t, TypeUInt32.IsSigned())
	require.False(t, TypeFloat64.IsSigned())
}

func TestPersistedName(t *testing.T) {
	require.Equal(t, "Int32", TypeIDType.PersistedName(32))
	require.Equal(t, "Int64", TypeIDType.PersistedName(64))
	require.Equal(t, "Float32", TypeFloat32.PersistedName(32))
}

func TestHeaderType(t *testing.T) {
	require.Equal(t, 4, HeaderUInt32.WordSize())
	require.Equal(t, 8, HeaderUInt64.WordSize())
	require.Equal(t, uint64(0xFFFFFFFF), HeaderUInt32.MaxValue())
	require.Equal(t, ^uint64(0), HeaderUInt64.MaxValue())
	require.False(t, HeaderType(0).IsValid())

	for _, ht := range []HeaderType{HeaderUInt32, HeaderUInt64} {
		parsed, ok := ParseHeaderType(ht.String())
		require.True(t, ok)
		require.Equal(t, ht, parsed)
	}
	_, ok := ParseHeaderType("UInt16")
	require.False(t, ok)
}

func TestCompressorNames(t *testing.T) {
	tests := []struct {
		name string
		want CompressionType
		ok   bool
	}{
		{"", CompressionNone, true},
		{"none", CompressionNone, true},
		{"vtkZLibDataCompressor", CompressionZLib, true},
		{"svtkZLibDataCompressor", CompressionZLib, true},
		{"zlib", CompressionZLib, true},
		{"vtkLZ4DataCompressor", CompressionLZ4, true},
		{"vtkLZMADataCompressor", CompressionLZMA, true},
		{"ZSTD", CompressionZstd, true},
		{"vtkS2DataCompressor", CompressionS2, true},
		{"vtkBrotliDataCompressor", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCompressorName(tt.name)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}

	require.Empty(t, CompressionNone.CompressorName())
	for _, ct := range []CompressionType{CompressionZLib, CompressionLZ4, CompressionLZMA, CompressionZstd, CompressionS2} {
		parsed, ok := ParseCompressorName(ct.CompressorName())
		require.True(t, ok)
		require.Equal(t, ct, parsed)
	}
	require.Equal(t, "vtkZLibDataCompressor", CompressionZLib.CompressorName())
}

func TestFormatsAndEncodings(t *testing.T) {
	for _, f := range []DataFormat{FormatASCII, FormatBinary, FormatAppended} {
		parsed, ok := ParseDataFormat(f.String())
		require.True(t, ok)
		require.Equal(t, f, parsed)
	}
	_, ok := ParseDataFormat("hex")
	require.False(t, ok)

	for _, e := range []AppendedEncoding{EncodingBase64, EncodingRaw} {
		parsed, ok := ParseAppendedEncoding(e.String())
		require.True(t, ok)
		require.Equal(t, e, parsed)
	}
	_, ok = ParseAppendedEncoding("base32")
	require.False(t, ok)
}
