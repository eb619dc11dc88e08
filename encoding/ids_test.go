package encoding

import (
	"math"
	"testing"

	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/stretchr/testify/require"
)

func TestNarrowWidenIDs(t *testing.T) {
	ids := []int64{0, 1, -1, math.MaxInt32, math.MinInt32, 123456}

	for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		t.Run(endian.Name(engine), func(t *testing.T) {
			buf := make([]byte, 4*len(ids))
			require.NoError(t, NarrowIDs(buf, ids, engine, true))
			require.Equal(t, uint32(123456), engine.Uint32(buf[20:]))

			got := make([]int64, len(ids))
			WidenIDs(got, buf, engine)
			require.Equal(t, ids, got)
		})
	}
}

func TestNarrowIDsTruncates(t *testing.T) {
	engine := endian.GetLittleEndianEngine()
	ids := []int64{1 << 32, 1<<32 + 5, math.MaxInt32 + 1}

	buf := make([]byte, 4*len(ids))
	require.NoError(t, NarrowIDs(buf, ids, engine, false))

	got := make([]int64, len(ids))
	WidenIDs(got, buf, engine)
	require.Equal(t, []int64{0, 5, math.MinInt32}, got)
}

func TestNarrowIDsOverflowCheck(t *testing.T) {
	buf := make([]byte, 8)
	err := NarrowIDs(buf, []int64{7, 1 << 40}, endian.GetBigEndianEngine(), true)
	require.ErrorIs(t, err, errs.ErrIndexOverflow)
	require.ErrorIs(t, err, errs.ErrCapacity)

	err = NarrowIDs(buf, []int64{math.MinInt32 - 1}, endian.GetBigEndianEngine(), true)
	require.ErrorIs(t, err, errs.ErrIndexOverflow)
}

func TestReadIDs(t *testing.T) {
	engine := endian.GetBigEndianEngine()
	buf := engine.AppendUint64(nil, uint64(1<<40))
	buf = engine.AppendUint64(buf, math.MaxUint64)

	got := make([]int64, 2)
	ReadIDs(got, buf, engine)
	require.Equal(t, []int64{1 << 40, -1}, got)
}
