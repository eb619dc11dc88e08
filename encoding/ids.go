package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
)

// NarrowIDs writes src as 32-bit integers in the given byte order into dst.
//
// Values outside the int32 range are truncated to their low 32 bits, which
// keeps files compatible with existing readers. When check is true such a
// value is reported instead and dst is left partially written.
//
// Parameters:
//   - dst: destination with room for 4*len(src) bytes
//   - src: host indices
//   - engine: stream byte order
//   - check: report out-of-range values as errs.ErrIndexOverflow
//
// Returns:
//   - error: errs.ErrIndexOverflow when check is set and a value does not fit
func NarrowIDs(dst []byte, src []int64, engine endian.EndianEngine, check bool) error {
	_ = dst[:4*len(src)]

	for i, v := range src {
		if check && (v < math.MinInt32 || v > math.MaxInt32) {
			return fmt.Errorf("%w: index %d has value %d", errs.ErrIndexOverflow, i, v)
		}
		engine.PutUint32(dst[i*4:], uint32(int32(v))) //nolint:gosec
	}

	return nil
}

// WidenIDs sign-extends the 32-bit integers in src, stored in the given byte
// order, into dst.
func WidenIDs(dst []int64, src []byte, engine endian.EndianEngine) {
	_ = src[:4*len(dst)]

	for i := range dst {
		dst[i] = int64(int32(engine.Uint32(src[i*4:]))) //nolint:gosec
	}
}

// ReadIDs decodes 64-bit integers in src, stored in the given byte order, into dst.
func ReadIDs(dst []int64, src []byte, engine endian.EndianEngine) {
	_ = src[:8*len(dst)]

	for i := range dst {
		dst[i] = int64(engine.Uint64(src[i*8:])) //nolint:gosec
	}
}
