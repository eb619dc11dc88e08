package format

import "strings"

type (
	DataType         uint8
	HeaderType       uint8
	CompressionType  uint8
	DataFormat       uint8
	AppendedEncoding uint8
)

const (
	TypeInt8    DataType = 0x1 // TypeInt8 represents signed 8-bit integers.
	TypeUInt8   DataType = 0x2 // TypeUInt8 represents unsigned 8-bit integers.
	TypeInt16   DataType = 0x3 // TypeInt16 represents signed 16-bit integers.
	TypeUInt16  DataType = 0x4 // TypeUInt16 represents unsigned 16-bit integers.
	TypeInt32   DataType = 0x5 // TypeInt32 represents signed 32-bit integers.
	TypeUInt32  DataType = 0x6 // TypeUInt32 represents unsigned 32-bit integers.
	TypeInt64   DataType = 0x7 // TypeInt64 represents signed 64-bit integers.
	TypeUInt64  DataType = 0x8 // TypeUInt64 represents unsigned 64-bit integers.
	TypeFloat32 DataType = 0x9 // TypeFloat32 represents IEEE-754 single precision values.
	TypeFloat64 DataType = 0xA // TypeFloat64 represents IEEE-754 double precision values.
	TypeIDType  DataType = 0xB // TypeIDType represents host indices (int64), persisted as Int32 or Int64.
	TypeBit     DataType = 0xC // TypeBit represents packed bits, most significant bit first.
	TypeString  DataType = 0xD // TypeString represents NUL-terminated UTF-8 strings.

	HeaderUInt32 HeaderType = 0x1 // HeaderUInt32 uses 32-bit header words.
	HeaderUInt64 HeaderType = 0x2 // HeaderUInt64 uses 64-bit header words.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZLib CompressionType = 0x2 // CompressionZLib represents zlib (deflate) compression.
	CompressionLZ4  CompressionType = 0x3 // CompressionLZ4 represents LZ4 block compression.
	CompressionLZMA CompressionType = 0x4 // CompressionLZMA represents LZMA compression.
	CompressionZstd CompressionType = 0x5 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x6 // CompressionS2 represents S2 compression.

	FormatASCII    DataFormat = 0x1 // FormatASCII writes values as text inside the element.
	FormatBinary   DataFormat = 0x2 // FormatBinary writes base64 block data inside the element.
	FormatAppended DataFormat = 0x3 // FormatAppended writes block data into the appended section.

	EncodingBase64 AppendedEncoding = 0x1 // EncodingBase64 writes the appended section as base64 text.
	EncodingRaw    AppendedEncoding = 0x2 // EncodingRaw writes the appended section as raw bytes.
)

var dataTypeNames = map[DataType]string{
	TypeInt8:    "Int8",
	TypeUInt8:   "UInt8",
	TypeInt16:   "Int16",
	TypeUInt16:  "UInt16",
	TypeInt32:   "Int32",
	TypeUInt32:  "UInt32",
	TypeInt64:   "Int64",
	TypeUInt64:  "UInt64",
	TypeFloat32: "Float32",
	TypeFloat64: "Float64",
	TypeIDType:  "IdType",
	TypeBit:     "Bit",
	TypeString:  "String",
}

// Size returns the host size in bytes of one element.
//
// Bit arrays report 1 since they are handled as packed bytes; strings have no
// fixed size and report 0.
func (t DataType) Size() int {
	switch t {
	case TypeInt8, TypeUInt8, TypeBit:
		return 1
	case TypeInt16, TypeUInt16:
		return 2
	case TypeInt32, TypeUInt32, TypeFloat32:
		return 4
	case TypeInt64, TypeUInt64, TypeFloat64, TypeIDType:
		return 8
	default:
		return 0
	}
}

// IsValid reports whether t is one of the defined data types.
func (t DataType) IsValid() bool {
	return t >= TypeInt8 && t <= TypeString
}

// IsNumeric reports whether t is a fixed-width numeric type (including IdType).
func (t DataType) IsNumeric() bool {
	return t >= TypeInt8 && t <= TypeIDType
}

// IsFloat reports whether t is a floating point type.
func (t DataType) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// IsSigned reports whether t is a signed integer type.
func (t DataType) IsSigned() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeIDType:
		return true
	default:
		return false
	}
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}

	return "Unknown"
}

// PersistedName returns the type attribute written for t, resolving IdType
// into Int32 or Int64 according to the document id width.
func (t DataType) PersistedName(idBits int) string {
	if t == TypeIDType {
		if idBits == 32 {
			return "Int32"
		}

		return "Int64"
	}

	return t.String()
}

// ParseDataType parses a persisted type attribute. Only the sized names
// ("Int32", "Float64", ...) plus "Bit", "String" and "IdType" are recognized.
func ParseDataType(name string) (DataType, bool) {
	for t, n := range dataTypeNames {
		if n == name {
			return t, true
		}
	}

	return 0, false
}

// WordSize returns the header word size in bytes.
func (h HeaderType) WordSize() int {
	if h == HeaderUInt64 {
		return 8
	}

	return 4
}

// MaxValue returns the largest value a header word can hold.
func (h HeaderType) MaxValue() uint64 {
	if h == HeaderUInt64 {
		return ^uint64(0)
	}

	return uint64(^uint32(0))
}

// IsValid reports whether h is one of the defined header types.
func (h HeaderType) IsValid() bool {
	return h == HeaderUInt32 || h == HeaderUInt64
}

func (h HeaderType) String() string {
	switch h {
	case HeaderUInt32:
		return "UInt32"
	case HeaderUInt64:
		return "UInt64"
	default:
		return "Unknown"
	}
}

// ParseHeaderType parses the header_type root attribute.
func ParseHeaderType(name string) (HeaderType, bool) {
	switch name {
	case "UInt32":
		return HeaderUInt32, true
	case "UInt64":
		return HeaderUInt64, true
	default:
		return 0, false
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZLib:
		return "ZLib"
	case CompressionLZ4:
		return "LZ4"
	case CompressionLZMA:
		return "LZMA"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	default:
		return "Unknown"
	}
}

// CompressorName returns the compressor root attribute for c, or an empty
// string for CompressionNone.
func (c CompressionType) CompressorName() string {
	if c == CompressionNone || c.String() == "Unknown" {
		return ""
	}

	return "vtk" + c.String() + "DataCompressor"
}

// ParseCompressorName parses the compressor root attribute.
//
// Accepted spellings, case-insensitive: "vtkZLibDataCompressor",
// "svtkZLibDataCompressor" and the short name "zlib" (likewise for the other codecs).
// An empty name means no compression.
func ParseCompressorName(name string) (CompressionType, bool) {
	if name == "" {
		return CompressionNone, true
	}

	short := strings.ToLower(name)
	short = strings.TrimPrefix(short, "svtk")
	short = strings.TrimPrefix(short, "vtk")
	short = strings.TrimSuffix(short, "datacompressor")

	switch short {
	case "zlib":
		return CompressionZLib, true
	case "lz4":
		return CompressionLZ4, true
	case "lzma":
		return CompressionLZMA, true
	case "zstd":
		return CompressionZstd, true
	case "s2":
		return CompressionS2, true
	case "none":
		return CompressionNone, true
	default:
		return 0, false
	}
}

func (f DataFormat) String() string {
	switch f {
	case FormatASCII:
		return "ascii"
	case FormatBinary:
		return "binary"
	case FormatAppended:
		return "appended"
	default:
		return "unknown"
	}
}

// ParseDataFormat parses the per-array format attribute.
func ParseDataFormat(name string) (DataFormat, bool) {
	switch name {
	case "ascii":
		return FormatASCII, true
	case "binary":
		return FormatBinary, true
	case "appended":
		return FormatAppended, true
	default:
		return 0, false
	}
}

func (e AppendedEncoding) String() string {
	switch e {
	case EncodingBase64:
		return "base64"
	case EncodingRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// ParseAppendedEncoding parses the AppendedData encoding attribute.
func ParseAppendedEncoding(name string) (AppendedEncoding, bool) {
	switch name {
	case "base64":
		return EncodingBase64, true
	case "raw":
		return EncodingRaw, true
	default:
		return 0, false
	}
}
