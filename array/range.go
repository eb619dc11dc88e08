package array

import (
	"math"

	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/format"
)

// Float64At returns value i of a numeric array widened to float64.
func (a *Array) Float64At(i int) float64 {
	return ValueAt(a.typ, a.data, i)
}

// ValueAt decodes element i of host-order data of type typ as float64.
func ValueAt(typ format.DataType, data []byte, i int) float64 {
	e := endian.NativeEngine()
	switch typ {
	case format.TypeInt8:
		return float64(int8(data[i]))
	case format.TypeUInt8, format.TypeBit:
		return float64(data[i])
	case format.TypeInt16:
		return float64(int16(e.Uint16(data[i*2:])))
	case format.TypeUInt16:
		return float64(e.Uint16(data[i*2:]))
	case format.TypeInt32:
		return float64(int32(e.Uint32(data[i*4:])))
	case format.TypeUInt32:
		return float64(e.Uint32(data[i*4:]))
	case format.TypeInt64, format.TypeIDType:
		return float64(int64(e.Uint64(data[i*8:])))
	case format.TypeUInt64:
		return float64(e.Uint64(data[i*8:]))
	case format.TypeFloat32:
		return float64(math.Float32frombits(e.Uint32(data[i*4:])))
	case format.TypeFloat64:
		return math.Float64frombits(e.Uint64(data[i*8:]))
	default:
		return 0
	}
}

// Range returns the smallest and largest value of a single-component numeric
// array, or the smallest and largest tuple L2 norm when there are several
// components. NaN values are skipped. ok is false for empty or non-numeric
// arrays.
func (a *Array) Range() (lo, hi float64, ok bool) {
	if !a.typ.IsNumeric() || a.tuples == 0 {
		return 0, 0, false
	}

	lo, hi = math.Inf(1), math.Inf(-1)
	for t := 0; t < a.tuples; t++ {
		var v float64
		if a.comps == 1 {
			v = a.Float64At(t)
		} else {
			for c := 0; c < a.comps; c++ {
				x := a.Float64At(t*a.comps + c)
				v += x * x
			}
			v = math.Sqrt(v)
		}
		if math.IsNaN(v) {
			continue
		}
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo > hi {
		return 0, 0, false
	}

	return lo, hi, true
}
