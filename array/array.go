// Package array provides the typed array views exchanged with the writer
// and reader.
//
// An Array borrows its storage: constructors wrap the caller's slice without
// copying, and nothing in this module writes through the view. Numeric and id
// arrays expose their storage as host-order bytes; bit arrays are packed most
// significant bit first; string arrays keep the caller's []string.
package array

import (
	"fmt"
	"unsafe"

	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
)

// Numeric is the set of Go element types with a fixed-width DataType.
type Numeric interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 | ~float32 | ~float64
}

// Array is a named, typed view of tuples with a fixed number of components.
type Array struct {
	name   string
	typ    format.DataType
	comps  int
	tuples int
	data   []byte
	strs   []string
}

// TypeOf returns the DataType matching T.
func TypeOf[T Numeric]() format.DataType {
	var zero T
	switch any(zero).(type) {
	case int8:
		return format.TypeInt8
	case uint8:
		return format.TypeUInt8
	case int16:
		return format.TypeInt16
	case uint16:
		return format.TypeUInt16
	case int32:
		return format.TypeInt32
	case uint32:
		return format.TypeUInt32
	case int64:
		return format.TypeInt64
	case uint64:
		return format.TypeUInt64
	case float32:
		return format.TypeFloat32
	case float64:
		return format.TypeFloat64
	}

	// named types fall back to their size and kind
	return typeBySize(unsafe.Sizeof(zero), isFloat[T](), isSigned[T]())
}

func isFloat[T Numeric]() bool {
	var one T = 1
	return one/2 != 0
}

func isSigned[T Numeric]() bool {
	var zero T
	return zero-1 < 0
}

func typeBySize(size uintptr, float, signed bool) format.DataType {
	switch {
	case float && size == 4:
		return format.TypeFloat32
	case float:
		return format.TypeFloat64
	case size == 1 && signed:
		return format.TypeInt8
	case size == 1:
		return format.TypeUInt8
	case size == 2 && signed:
		return format.TypeInt16
	case size == 2:
		return format.TypeUInt16
	case size == 4 && signed:
		return format.TypeInt32
	case size == 4:
		return format.TypeUInt32
	case signed:
		return format.TypeInt64
	default:
		return format.TypeUInt64
	}
}

func asBytes[T Numeric](values []T) []byte {
	if len(values) == 0 {
		return nil
	}
	var zero T

	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(values))), len(values)*int(unsafe.Sizeof(zero)))
}

func asValues[T Numeric](data []byte) []T {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(data) < size {
		return []T{}
	}

	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(data))), len(data)/size)
}

func checkShape(name string, comps, count int) (int, error) {
	if comps <= 0 {
		return 0, fmt.Errorf("%w: %q has %d components", errs.ErrInvalidArray, name, comps)
	}
	if count%comps != 0 {
		return 0, fmt.Errorf("%w: %q has %d values, not a multiple of %d components", errs.ErrInvalidArray, name, count, comps)
	}

	return count / comps, nil
}

// NewNumeric wraps values as an array of comps components per tuple.
//
// Returns:
//   - *Array: view sharing storage with values
//   - error: errs.ErrInvalidArray if len(values) is not a multiple of comps
func NewNumeric[T Numeric](name string, comps int, values []T) (*Array, error) {
	tuples, err := checkShape(name, comps, len(values))
	if err != nil {
		return nil, err
	}

	return &Array{name: name, typ: TypeOf[T](), comps: comps, tuples: tuples, data: asBytes(values)}, nil
}

// NewIDs wraps host indices. They are persisted as Int32 or Int64 according
// to the document id width.
func NewIDs(name string, comps int, ids []int64) (*Array, error) {
	tuples, err := checkShape(name, comps, len(ids))
	if err != nil {
		return nil, err
	}

	return &Array{name: name, typ: format.TypeIDType, comps: comps, tuples: tuples, data: asBytes(ids)}, nil
}

// NewBits wraps count bits packed most significant bit first in packed.
func NewBits(name string, comps int, packed []byte, count int) (*Array, error) {
	tuples, err := checkShape(name, comps, count)
	if err != nil {
		return nil, err
	}
	if need := (count + 7) / 8; len(packed) < need {
		return nil, fmt.Errorf("%w: %q needs %d packed bytes, got %d", errs.ErrInvalidArray, name, need, len(packed))
	}

	return &Array{name: name, typ: format.TypeBit, comps: comps, tuples: tuples, data: packed[:(count+7)/8]}, nil
}

// NewStrings wraps a single-component string array.
func NewStrings(name string, values []string) *Array {
	return &Array{name: name, typ: format.TypeString, comps: 1, tuples: len(values), strs: values}
}

// New allocates zeroed storage for tuples tuples of a fixed-width type.
//
// The storage is allocated with the element's Go type so Values can view it
// without alignment concerns.
func New(name string, typ format.DataType, comps, tuples int) (*Array, error) {
	if comps <= 0 || tuples < 0 {
		return nil, fmt.Errorf("%w: %q has shape %dx%d", errs.ErrInvalidArray, name, tuples, comps)
	}

	n := comps * tuples
	var data []byte
	switch typ {
	case format.TypeInt8:
		data = asBytes(make([]int8, n))
	case format.TypeUInt8:
		data = make([]byte, n)
	case format.TypeInt16:
		data = asBytes(make([]int16, n))
	case format.TypeUInt16:
		data = asBytes(make([]uint16, n))
	case format.TypeInt32:
		data = asBytes(make([]int32, n))
	case format.TypeUInt32:
		data = asBytes(make([]uint32, n))
	case format.TypeInt64, format.TypeIDType:
		data = asBytes(make([]int64, n))
	case format.TypeUInt64:
		data = asBytes(make([]uint64, n))
	case format.TypeFloat32:
		data = asBytes(make([]float32, n))
	case format.TypeFloat64:
		data = asBytes(make([]float64, n))
	case format.TypeBit:
		data = make([]byte, (n+7)/8)
	default:
		return nil, fmt.Errorf("%w: cannot allocate %s storage", errs.ErrInvalidArray, typ)
	}

	return &Array{name: name, typ: typ, comps: comps, tuples: tuples, data: data}, nil
}

// Name returns the array name.
func (a *Array) Name() string { return a.name }

// Type returns the element type.
func (a *Array) Type() format.DataType { return a.typ }

// Components returns the number of components per tuple.
func (a *Array) Components() int { return a.comps }

// Tuples returns the number of tuples.
func (a *Array) Tuples() int { return a.tuples }

// NumValues returns Components() * Tuples().
func (a *Array) NumValues() int { return a.comps * a.tuples }

// Bytes returns the host-order storage of a numeric, id or bit array. The
// slice aliases the array storage; only arrays created by New may be written
// through it.
func (a *Array) Bytes() []byte { return a.data }

// Strings returns the values of a string array.
func (a *Array) Strings() []string { return a.strs }

// ByteSize returns the size of the payload before id narrowing: the storage
// size for fixed-width types and the NUL-terminated run length for strings.
func (a *Array) ByteSize() int64 {
	if a.typ == format.TypeString {
		var n int64
		for _, s := range a.strs {
			n += int64(len(s)) + 1
		}

		return n
	}

	return int64(len(a.data))
}

// Values returns the elements of a numeric array as []T.
//
// Returns:
//   - []T: view sharing storage with the array
//   - error: errs.ErrTypeMismatch if T does not match the array type
func Values[T Numeric](a *Array) ([]T, error) {
	want := TypeOf[T]()
	if a.typ != want && !(a.typ == format.TypeIDType && want == format.TypeInt64) {
		return nil, fmt.Errorf("%w: %q is %s, requested %s", errs.ErrTypeMismatch, a.name, a.typ, want)
	}

	return asValues[T](a.data), nil
}

// Bit returns bit i of a bit array.
func (a *Array) Bit(i int) bool {
	return a.data[i/8]&(0x80>>(i%8)) != 0
}

// PackBits packs values most significant bit first.
func PackBits(values []bool) []byte {
	packed := make([]byte, (len(values)+7)/8)
	for i, v := range values {
		if v {
			packed[i/8] |= 0x80 >> (i % 8)
		}
	}

	return packed
}

// UnpackBits returns the first count bits of packed.
func UnpackBits(packed []byte, count int) []bool {
	out := make([]bool, count)
	for i := range out {
		out[i] = packed[i/8]&(0x80>>(i%8)) != 0
	}

	return out
}
