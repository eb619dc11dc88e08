// Package endian provides byte order utilities for the block-framed binary data.
//
// Array payloads and block headers are written in the byte order declared by the
// document (the byte_order root attribute), which may differ from the host order.
// This package converts words between the two, in place, for the word sizes
// used by the format (1, 2, 4 and 8 bytes).
//
// # Basic Usage
//
//	engine := endian.GetLittleEndianEngine()
//	endian.ToStreamOrder(buf, 8, engine) // host -> stream, in place
//	endian.FromStreamOrder(buf, 8, engine) // stream -> host, in place
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use as long as callers
// do not share the buffers being converted.
package endian

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"unsafe"

	"github.com/arloliu/vtkxml/errs"
)

const (
	// LittleEndianName is the byte_order attribute value for little-endian streams.
	LittleEndianName = "LittleEndian"
	// BigEndianName is the byte_order attribute value for big-endian streams.
	BigEndianName = "BigEndian"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var nativeEngine = detectNative()

func detectNative() EndianEngine {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// CheckEndianness returns the host's byte order.
func CheckEndianness() binary.ByteOrder {
	return nativeEngine
}

// NativeEngine returns the host's byte order as an EndianEngine.
func NativeEngine() EndianEngine {
	return nativeEngine
}

func IsNativeLittleEndian() bool {
	return nativeEngine == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return nativeEngine == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == nativeEngine
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// Name returns the byte_order attribute value for engine.
func Name(engine EndianEngine) string {
	if engine == binary.BigEndian {
		return BigEndianName
	}

	return LittleEndianName
}

// ParseByteOrder parses a byte_order attribute value.
//
// Returns:
//   - EndianEngine: engine for the named order
//   - error: errs.ErrInvalidByteOrder for anything but "LittleEndian" or "BigEndian"
func ParseByteOrder(name string) (EndianEngine, error) {
	switch name {
	case LittleEndianName:
		return binary.LittleEndian, nil
	case BigEndianName:
		return binary.BigEndian, nil
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrInvalidByteOrder, name)
	}
}

// SwapInPlace reverses the bytes of every wordSize-byte word in buf.
//
// A trailing partial word is left untouched. Word sizes other than 1, 2, 4
// and 8 are a programming error and panic.
func SwapInPlace(buf []byte, wordSize int) {
	switch wordSize {
	case 1:
		return
	case 2:
		for i := 0; i+2 <= len(buf); i += 2 {
			buf[i], buf[i+1] = buf[i+1], buf[i]
		}
	case 4:
		for i := 0; i+4 <= len(buf); i += 4 {
			v := binary.LittleEndian.Uint32(buf[i:])
			binary.LittleEndian.PutUint32(buf[i:], bits.ReverseBytes32(v))
		}
	case 8:
		for i := 0; i+8 <= len(buf); i += 8 {
			v := binary.LittleEndian.Uint64(buf[i:])
			binary.LittleEndian.PutUint64(buf[i:], bits.ReverseBytes64(v))
		}
	default:
		panic(fmt.Sprintf("endian: unsupported word size %d", wordSize))
	}
}

// ToStreamOrder converts host-order words in buf to the stream order described
// by engine. It is a no-op when the orders match or wordSize is 1.
func ToStreamOrder(buf []byte, wordSize int, engine EndianEngine) {
	if !ValidWordSize(wordSize) {
		panic(fmt.Sprintf("endian: unsupported word size %d", wordSize))
	}
	if CompareNativeEndian(engine) {
		return
	}
	SwapInPlace(buf, wordSize)
}

// ValidWordSize reports whether n is a word size the format supports.
func ValidWordSize(n int) bool {
	return n == 1 || n == 2 || n == 4 || n == 8
}

// FromStreamOrder converts stream-order words in buf back to host order.
// Swapping is symmetric, so this mirrors ToStreamOrder.
func FromStreamOrder(buf []byte, wordSize int, engine EndianEngine) {
	ToStreamOrder(buf, wordSize, engine)
}
