package block

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/arloliu/vtkxml/array"
	"github.com/arloliu/vtkxml/compress"
	"github.com/arloliu/vtkxml/endian"
	"github.com/arloliu/vtkxml/errs"
	"github.com/arloliu/vtkxml/format"
	"github.com/arloliu/vtkxml/internal/hash"
	"github.com/arloliu/vtkxml/internal/pool"
	"github.com/arloliu/vtkxml/stream"
	"github.com/stretchr/testify/require"
)

var fixedTypes = []format.DataType{
	format.TypeInt8, format.TypeUInt8, format.TypeInt16, format.TypeUInt16,
	format.TypeInt32, format.TypeUInt32, format.TypeInt64, format.TypeUInt64,
	format.TypeFloat32, format.TypeFloat64, format.TypeIDType, format.TypeBit,
}

// randomArray fills a new array with reproducible random content. Ids stay in
// the int32 range and bit padding is cleared so both survive a round trip.
func randomArray(t testing.TB, rng *rand.Rand, typ format.DataType, comps, tuples int) *array.Array {
	t.Helper()

	a, err := array.New(typ.String(), typ, comps, tuples)
	require.NoError(t, err)

	switch typ {
	case format.TypeIDType:
		ids, err := array.Values[int64](a)
		require.NoError(t, err)
		for i := range ids {
			ids[i] = int64(rng.Int32()) - math.MaxInt32/2
		}
	default:
		data := a.Bytes()
		for i := range data {
			data[i] = byte(rng.Uint32())
		}
		if typ == format.TypeBit && a.NumValues()%8 != 0 {
			data[len(data)-1] &= byte(0xFF << (8 - a.NumValues()%8))
		}
	}

	return a
}

type written struct {
	data    []byte
	results []Result
}

func writeArrays(t testing.TB, w io.Writer, enc format.AppendedEncoding, cfg Config, arrays ...*array.Array) []Result {
	t.Helper()

	wr, err := NewWriterConfig(w, enc, cfg)
	require.NoError(t, err)

	results := make([]Result, 0, len(arrays))
	for _, a := range arrays {
		res, err := wr.WriteArray(context.Background(), a)
		require.NoError(t, err)
		results = append(results, res)
	}

	return results
}

func writeSeekable(t testing.TB, enc format.AppendedEncoding, cfg Config, arrays ...*array.Array) written {
	t.Helper()

	buf := pool.NewByteBuffer(0)
	results := writeArrays(t, buf, enc, cfg, arrays...)

	return written{data: buf.Bytes(), results: results}
}

func newTestReader(t testing.TB, data []byte, enc format.AppendedEncoding, cfg Config) *Reader {
	t.Helper()

	in, err := stream.NewInputStream(enc, bytes.NewReader(data), 0)
	require.NoError(t, err)
	r := NewReaderConfig(in, cfg)
	t.Cleanup(func() { _ = r.Close() })

	return r
}

func readArray(t testing.TB, r *Reader, res Result, typ format.DataType, comps, tuples int) *array.Array {
	t.Helper()

	p, err := r.ReadLayout(res.Offset)
	require.NoError(t, err)
	require.Equal(t, res.Size, p.Size())

	dst, err := array.New(typ.String(), typ, comps, tuples)
	require.NoError(t, err)
	cfg := r.Config()
	require.NoError(t, r.ReadInto(p, dst, 0, cfg.StreamSize(typ)))

	raw, err := r.ReadAll(p)
	require.NoError(t, err)
	require.Equal(t, res.Digest, hash.Sum64(raw))

	return dst
}

func TestRoundTripGrid(t *testing.T) {
	const blockSize = 512

	rng := rand.New(rand.NewPCG(1, 2))
	for _, typ := range fixedTypes {
		elem := typ.Size()
		counts := []int{0, 1, blockSize/elem - 1, blockSize / elem, blockSize/elem + 1, 10_000}
		if testing.Short() {
			counts = counts[:5]
		}

		for _, compressed := range []bool{false, true} {
			for _, engine := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
				for _, ht := range []format.HeaderType{format.HeaderUInt32, format.HeaderUInt64} {
					cfg := DefaultConfig()
					cfg.BlockSize = blockSize
					cfg.ByteOrder = engine
					cfg.HeaderType = ht
					cfg.IDBits = 64
					if ht == format.HeaderUInt32 {
						cfg.IDBits = 32
					}
					if compressed {
						cfg.Compressor = compress.NewLZ4Compressor(1)
					}

					name := fmt.Sprintf("%s/compressed=%t/%s/%s", typ, compressed, endian.Name(engine), ht)
					t.Run(name, func(t *testing.T) {
						var arrays []*array.Array
						for _, comps := range []int{1, 2, 3, 4, 9} {
							for _, n := range counts {
								arrays = append(arrays, randomArray(t, rng, typ, comps, n))
							}
						}

						for _, enc := range []format.AppendedEncoding{format.EncodingRaw, format.EncodingBase64} {
							out := writeSeekable(t, enc, cfg, arrays...)
							r := newTestReader(t, out.data, enc, cfg)
							for i, a := range arrays {
								got := readArray(t, r, out.results[i], typ, a.Components(), a.Tuples())
								require.Equal(t, a.Bytes(), got.Bytes(), "comps=%d tuples=%d %s", a.Components(), a.Tuples(), enc)
							}
						}
					})
				}
			}
		}
	}
}

func TestAllCodecsRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	values := make([]float64, 20_000)
	for i := range values {
		values[i] = float64(i%500)/4 + float64(rng.IntN(4))
	}
	a, err := array.NewNumeric("wave", 2, values)
	require.NoError(t, err)

	for _, ct := range []format.CompressionType{
		format.CompressionZLib, format.CompressionLZ4, format.CompressionLZMA, format.CompressionZstd, format.CompressionS2,
	} {
		for _, level := range []int{1, 5, 9} {
			t.Run(fmt.Sprintf("%s/%d", ct, level), func(t *testing.T) {
				c, err := compress.New(ct, level)
				require.NoError(t, err)
				cfg, err := NewConfig(WithCompressor(c), WithByteOrder(endian.GetBigEndianEngine()))
				require.NoError(t, err)

				out := writeSeekable(t, format.EncodingBase64, cfg, a)
				require.Equal(t, 5, out.results[0].NumBlocks)
				require.Less(t, out.results[0].EncodedSize, int64(len(values)*8))

				r := newTestReader(t, out.data, format.EncodingBase64, cfg)
				got := readArray(t, r, out.results[0], format.TypeFloat64, 2, len(values)/2)
				gotValues, err := array.Values[float64](got)
				require.NoError(t, err)
				require.Equal(t, values, gotValues)
			})
		}
	}
}

func TestFloat32ZLibScenario(t *testing.T) {
	values := make([]float32, 100_000)
	for i := range values {
		values[i] = float32(i) * 0.25
	}
	a, err := array.NewNumeric("scalars", 1, values)
	require.NoError(t, err)

	zlib, err := compress.ByName("vtkZLibDataCompressor", 6)
	require.NoError(t, err)
	cfg, err := NewConfig(
		WithCompressor(zlib),
		WithBlockSize(32768),
		WithByteOrder(endian.GetLittleEndianEngine()),
		WithHeaderType(format.HeaderUInt32),
	)
	require.NoError(t, err)

	for _, enc := range []format.AppendedEncoding{format.EncodingRaw, format.EncodingBase64} {
		t.Run(enc.String(), func(t *testing.T) {
			out := writeSeekable(t, enc, cfg, a)
			res := out.results[0]
			require.Equal(t, 13, res.NumBlocks)
			require.Equal(t, int64(400000-12*32768), res.LastBlockSize)
			require.Equal(t, int64(7264), res.LastBlockSize)

			r := newTestReader(t, out.data, enc, cfg)
			p, err := r.ReadLayout(res.Offset)
			require.NoError(t, err)
			require.Equal(t, 13, p.Layout().NumBlocks())
			require.Equal(t, int64(7264), p.Layout().LastBlockSize())

			dst, err := array.New("scalars", format.TypeFloat32, 1, 10)
			require.NoError(t, err)
			require.NoError(t, r.ReadInto(p, dst, 50000, 4))
			got, err := array.Values[float32](dst)
			require.NoError(t, err)
			require.Equal(t, values[50000:50010], got)
		})
	}
}

func TestStringScenario(t *testing.T) {
	strs := []string{"", "a", "ab", strings.Repeat("abc", 3000)}
	a := array.NewStrings("labels", strs)

	for _, compressed := range []bool{false, true} {
		for _, enc := range []format.AppendedEncoding{format.EncodingRaw, format.EncodingBase64} {
			t.Run(fmt.Sprintf("compressed=%t/%s", compressed, enc), func(t *testing.T) {
				cfg := DefaultConfig()
				cfg.BlockSize = 4096 // the last string straddles two block boundaries
				if compressed {
					cfg.Compressor = compress.NewZLibCompressor(6)
				}

				out := writeSeekable(t, enc, cfg, a)
				require.Equal(t, int64(1+2+3+9001), out.results[0].Size)

				r := newTestReader(t, out.data, enc, cfg)
				p, err := r.ReadLayout(out.results[0].Offset)
				require.NoError(t, err)

				got, err := r.ReadStrings(p, 0, -1)
				require.NoError(t, err)
				require.Equal(t, strs, got)

				got, err = r.ReadStrings(p, 2, 2)
				require.NoError(t, err)
				require.Equal(t, strs[2:], got)

				raw, err := r.ReadAll(p)
				require.NoError(t, err)
				got, err = DecodeStrings(raw)
				require.NoError(t, err)
				require.Equal(t, strs, got)

				_, err = r.ReadStrings(p, 3, 2)
				require.ErrorIs(t, err, errs.ErrRangeOutOfBounds)
			})
		}
	}
}

func TestRandomAccess(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 6))
	a := randomArray(t, rng, format.TypeInt32, 3, 20_000)

	cfg := DefaultConfig()
	cfg.BlockSize = 1000
	cfg.Compressor = compress.NewS2Compressor(5)

	for _, enc := range []format.AppendedEncoding{format.EncodingRaw, format.EncodingBase64} {
		t.Run(enc.String(), func(t *testing.T) {
			out := writeSeekable(t, enc, cfg, a)
			r := newTestReader(t, out.data, enc, cfg)
			p, err := r.ReadLayout(out.results[0].Offset)
			require.NoError(t, err)

			full, err := r.ReadAll(p)
			require.NoError(t, err)

			for range 200 {
				i := rng.Int64N(p.Size())
				k := rng.Int64N(min(p.Size()-i, 5000) + 1)
				got := make([]byte, k)
				require.NoError(t, r.ReadBytes(p, i, got))
				require.Equal(t, full[i:i+k], got, "range [%d, %d)", i, i+k)
			}

			// tuple access agrees with the host values
			values, err := array.Values[int32](a)
			require.NoError(t, err)
			dst, err := array.New("x", format.TypeInt32, 3, 7)
			require.NoError(t, err)
			require.NoError(t, r.ReadInto(p, dst, 3*1234, 4))
			got, err := array.Values[int32](dst)
			require.NoError(t, err)
			require.Equal(t, values[3*1234:3*1241], got)
		})
	}
}

func TestReadBitsUnaligned(t *testing.T) {
	bits := make([]bool, 100)
	for i := range bits {
		bits[i] = i%3 == 0 || i%7 == 0
	}
	a, err := array.NewBits("mask", 1, array.PackBits(bits), len(bits))
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.BlockSize = 8
	cfg.Compressor = compress.NewZLibCompressor(1)
	out := writeSeekable(t, format.EncodingRaw, cfg, a)

	r := newTestReader(t, out.data, format.EncodingRaw, cfg)
	p, err := r.ReadLayout(0)
	require.NoError(t, err)

	dst, err := array.New("mask", format.TypeBit, 1, 30)
	require.NoError(t, err)
	require.NoError(t, r.ReadInto(p, dst, 13, 1))
	require.Equal(t, bits[13:43], array.UnpackBits(dst.Bytes(), 30))
}

type forwardOnly struct {
	bytes.Buffer
}

func TestForwardOnlyMatchesSeekable(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 8))
	arrays := []*array.Array{
		randomArray(t, rng, format.TypeFloat64, 3, 5000),
		array.NewStrings("s", []string{"x", strings.Repeat("y", 70000)}),
		randomArray(t, rng, format.TypeUInt8, 1, 0),
		randomArray(t, rng, format.TypeIDType, 2, 999),
	}

	for _, compressed := range []bool{false, true} {
		for _, enc := range []format.AppendedEncoding{format.EncodingRaw, format.EncodingBase64} {
			t.Run(fmt.Sprintf("compressed=%t/%s", compressed, enc), func(t *testing.T) {
				cfg := DefaultConfig()
				if compressed {
					cfg.Compressor = compress.NewZstdCompressor(3)
				}

				seekable := writeSeekable(t, enc, cfg, arrays...)

				var fw forwardOnly
				wr, err := NewWriterConfig(&fw, enc, cfg)
				require.NoError(t, err)
				require.False(t, wr.Seekable())
				for i, a := range arrays {
					res, err := wr.WriteArray(context.Background(), a)
					require.NoError(t, err)
					require.Equal(t, seekable.results[i], res)
				}

				require.Equal(t, seekable.data, fw.Bytes())
			})
		}
	}
}

func TestArrayInFlight(t *testing.T) {
	wr, err := NewWriter(pool.NewByteBuffer(0), format.EncodingRaw)
	require.NoError(t, err)
	require.True(t, wr.Seekable())

	a, err := array.NewNumeric("a", 1, []int16{1, 2, 3})
	require.NoError(t, err)

	aw, err := wr.Begin(a)
	require.NoError(t, err)

	_, err = wr.Begin(a)
	require.ErrorIs(t, err, errs.ErrArrayInFlight)
	_, err = wr.WriteArray(context.Background(), a)
	require.ErrorIs(t, err, errs.ErrArrayInFlight)

	res, err := aw.Finish(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(6), res.Size)
	require.Equal(t, int64(4+6), res.EncodedSize)

	_, err = aw.Finish(context.Background())
	require.ErrorIs(t, err, errs.ErrInvalidArray)

	aw, err = wr.Begin(a)
	require.NoError(t, err)
	require.Equal(t, int64(10), aw.Offset())
	aw.Abort()
	aw.Abort()

	_, err = wr.WriteArray(context.Background(), a)
	require.NoError(t, err)
	require.Equal(t, int64(20), wr.Offset())
}

func TestFinishCanceled(t *testing.T) {
	rng := rand.New(rand.NewPCG(9, 10))
	a := randomArray(t, rng, format.TypeFloat32, 1, 100_000)

	for _, compressed := range []bool{false, true} {
		cfg := DefaultConfig()
		if compressed {
			cfg.Compressor = compress.NewLZ4Compressor(1)
		}
		wr, err := NewWriterConfig(pool.NewByteBuffer(0), format.EncodingRaw, cfg)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = wr.WriteArray(ctx, a)
		require.ErrorIs(t, err, errs.ErrAborted)
		require.ErrorIs(t, err, context.Canceled)

		// the failed write released the writer
		_, err = wr.WriteArray(context.Background(), a)
		require.NoError(t, err)
	}
}

func TestHeaderOverflow(t *testing.T) {
	a, err := array.NewNumeric("a", 1, []float64{1, 2})
	require.NoError(t, err)

	cfg, err := NewConfig(
		WithCompressor(compress.NewZLibCompressor(1)),
		WithHeaderType(format.HeaderUInt32),
		WithBlockSize(1<<33),
	)
	require.NoError(t, err)

	wr, err := NewWriterConfig(pool.NewByteBuffer(0), format.EncodingRaw, cfg)
	require.NoError(t, err)
	_, err = wr.Begin(a)
	require.ErrorIs(t, err, errs.ErrHeaderOverflow)
	require.ErrorIs(t, err, errs.ErrCapacity)
	require.Zero(t, wr.Offset())

	// the failed Begin left nothing in flight
	cfg.HeaderType = format.HeaderUInt64
	cfg.BlockSize = DefaultBlockSize
	wr, err = NewWriterConfig(pool.NewByteBuffer(0), format.EncodingRaw, cfg)
	require.NoError(t, err)
	_, err = wr.WriteArray(context.Background(), a)
	require.NoError(t, err)
}

func TestIndexOverflow(t *testing.T) {
	ids, err := array.NewIDs("conn", 1, []int64{1, 1 << 33, 3})
	require.NoError(t, err)

	cfg, err := NewConfig(WithIDBits(32), WithIndexOverflowCheck(true))
	require.NoError(t, err)
	wr, err := NewWriterConfig(pool.NewByteBuffer(0), format.EncodingRaw, cfg)
	require.NoError(t, err)
	_, err = wr.WriteArray(context.Background(), ids)
	require.ErrorIs(t, err, errs.ErrIndexOverflow)

	// legacy behavior truncates
	cfg.CheckIndexOverflow = false
	out := writeSeekable(t, format.EncodingRaw, cfg, ids)
	require.Equal(t, int64(12), out.results[0].Size)

	r := newTestReader(t, out.data, format.EncodingRaw, cfg)
	got := readArray(t, r, out.results[0], format.TypeIDType, 1, 3)
	values, err := array.Values[int64](got)
	require.NoError(t, err)
	require.Equal(t, []int64{1, 0, 3}, values)
}

func TestOptionsValidation(t *testing.T) {
	_, err := NewConfig(WithBlockSize(100))
	require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
	_, err = NewConfig(WithBlockSize(0))
	require.ErrorIs(t, err, errs.ErrConfiguration)
	_, err = NewConfig(WithIDBits(16))
	require.ErrorIs(t, err, errs.ErrInvalidIDWidth)
	_, err = NewConfig(WithHeaderType(format.HeaderType(7)))
	require.ErrorIs(t, err, errs.ErrInvalidHeaderType)
	_, err = NewConfig(WithByteOrder(nil))
	require.ErrorIs(t, err, errs.ErrInvalidByteOrder)
	_, err = NewWriter(pool.NewByteBuffer(0), format.AppendedEncoding(0))
	require.ErrorIs(t, err, errs.ErrInvalidEncoding)

	cfg, err := NewConfig()
	require.NoError(t, err)
	require.Equal(t, DefaultBlockSize, cfg.BlockSize)
	require.Equal(t, format.HeaderUInt32, cfg.HeaderType)
	require.Equal(t, 4, (&Config{IDBits: 32}).StreamSize(format.TypeIDType))
}

type failingCompressor struct {
	compress.Compressor
}

func (failingCompressor) CompressBuffer(_, _ []byte) int { return 0 }

func TestCompressionFailure(t *testing.T) {
	a, err := array.NewNumeric("a", 1, []uint16{1, 2, 3})
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Compressor = failingCompressor{compress.NewZLibCompressor(1)}
	wr, err := NewWriterConfig(pool.NewByteBuffer(0), format.EncodingRaw, cfg)
	require.NoError(t, err)

	_, err = wr.WriteArray(context.Background(), a)
	require.ErrorIs(t, err, errs.ErrCompressionFailed)
	require.ErrorIs(t, err, errs.ErrCodec)
}

func TestCorruptPayload(t *testing.T) {
	rng := rand.New(rand.NewPCG(11, 12))
	a := randomArray(t, rng, format.TypeFloat64, 1, 10_000)

	cfg := DefaultConfig()
	cfg.BlockSize = 8192
	cfg.Compressor = compress.NewZLibCompressor(5)
	out := writeSeekable(t, format.EncodingRaw, cfg, a)

	t.Run("corrupt block", func(t *testing.T) {
		data := bytes.Clone(out.data)
		headerSize := 4 * (3 + out.results[0].NumBlocks)
		for i := headerSize + 10; i < headerSize+40; i++ {
			data[i] ^= 0x5A
		}

		r := newTestReader(t, data, format.EncodingRaw, cfg)
		p, err := r.ReadLayout(0)
		require.NoError(t, err)
		_, err = r.ReadAll(p)
		require.ErrorIs(t, err, errs.ErrDecompressionFailed)
		require.ErrorIs(t, err, errs.ErrCodec)
	})

	t.Run("truncated", func(t *testing.T) {
		r := newTestReader(t, out.data[:len(out.data)-100], format.EncodingRaw, cfg)
		p, err := r.ReadLayout(0)
		require.NoError(t, err)
		_, err = r.ReadAll(p)
		require.ErrorIs(t, err, errs.ErrShortRead)
	})

	t.Run("truncated header", func(t *testing.T) {
		r := newTestReader(t, out.data[:10], format.EncodingRaw, cfg)
		_, err := r.ReadLayout(0)
		require.ErrorIs(t, err, errs.ErrShortRead)
	})

	t.Run("malformed counts", func(t *testing.T) {
		data := bytes.Clone(out.data)
		endian.GetLittleEndianEngine().PutUint32(data[8:], uint32(cfg.BlockSize+1))

		r := newTestReader(t, data, format.EncodingRaw, cfg)
		_, err := r.ReadLayout(0)
		require.ErrorIs(t, err, errs.ErrMalformedHeader)
	})

	t.Run("out of range", func(t *testing.T) {
		r := newTestReader(t, out.data, format.EncodingRaw, cfg)
		p, err := r.ReadLayout(0)
		require.NoError(t, err)
		require.ErrorIs(t, r.ReadBytes(p, p.Size()-4, make([]byte, 8)), errs.ErrRangeOutOfBounds)
		require.ErrorIs(t, r.ReadBytes(p, -1, make([]byte, 1)), errs.ErrRangeOutOfBounds)

		dst, err := array.New("x", format.TypeFloat64, 1, 2)
		require.NoError(t, err)
		require.ErrorIs(t, r.ReadInto(p, dst, 9_999, 8), errs.ErrRangeOutOfBounds)
	})
}

// headerWords renders words as little-endian header words of typ followed
// by tail.
func headerWords(typ format.HeaderType, tail []byte, words ...uint64) []byte {
	var out []byte
	for _, w := range words {
		if typ == format.HeaderUInt64 {
			out = binary.LittleEndian.AppendUint64(out, w)
		} else {
			out = binary.LittleEndian.AppendUint32(out, uint32(w))
		}
	}

	return append(out, tail...)
}

func TestOversizedHeaderWords(t *testing.T) {
	tail := bytes.Repeat([]byte{0xAB}, 64)

	t.Run("uncompressed size", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HeaderType = format.HeaderUInt64
		r := newTestReader(t, headerWords(format.HeaderUInt64, tail, 1<<62), format.EncodingRaw, cfg)

		p, err := r.ReadLayout(0)
		require.NoError(t, err)
		require.Equal(t, int64(1<<62), p.Size())

		require.NotPanics(t, func() {
			_, err = r.ReadAll(p)
		})
		require.ErrorIs(t, err, errs.ErrShortRead)

		require.NotPanics(t, func() {
			_, err = r.ReadRange(p, 1<<61, 1<<40)
		})
		require.ErrorIs(t, err, errs.ErrShortRead)

		dst, err := array.New("x", format.TypeFloat64, 1, 4)
		require.NoError(t, err)
		require.ErrorIs(t, r.ReadInto(p, dst, 1<<50, 8), errs.ErrShortRead)
	})

	t.Run("compressed block size", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HeaderType = format.HeaderUInt64
		cfg.Compressor = compress.NewZLibCompressor(5)
		data := headerWords(format.HeaderUInt64, tail, 1, 1<<62, 1<<62, 10)

		var err error
		require.NotPanics(t, func() {
			_, err = newTestReader(t, data, format.EncodingRaw, cfg).ReadLayout(0)
		})
		require.ErrorIs(t, err, errs.ErrMalformedHeader)
	})

	t.Run("compressed size over bound", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Compressor = compress.NewZLibCompressor(5)
		data := headerWords(format.HeaderUInt32, tail, 1, 16, 16, math.MaxUint32)

		_, err := newTestReader(t, data, format.EncodingRaw, cfg).ReadLayout(0)
		require.ErrorIs(t, err, errs.ErrMalformedHeader)
	})

	t.Run("block count", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Compressor = compress.NewZLibCompressor(5)
		data := headerWords(format.HeaderUInt32, tail, 1<<30, 16, 16)

		var err error
		require.NotPanics(t, func() {
			_, err = newTestReader(t, data, format.EncodingRaw, cfg).ReadLayout(0)
		})
		require.ErrorIs(t, err, errs.ErrShortRead)
	})

	t.Run("block count over limit", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HeaderType = format.HeaderUInt64
		cfg.Compressor = compress.NewZLibCompressor(5)
		data := headerWords(format.HeaderUInt64, tail, 1<<40, 16, 16)

		_, err := newTestReader(t, data, format.EncodingRaw, cfg).ReadLayout(0)
		require.ErrorIs(t, err, errs.ErrMalformedHeader)
	})
}

func TestWriteNULString(t *testing.T) {
	for _, compressed := range []bool{false, true} {
		t.Run(fmt.Sprintf("compressed=%t", compressed), func(t *testing.T) {
			cfg := DefaultConfig()
			if compressed {
				cfg.Compressor = compress.NewZLibCompressor(5)
			}
			wr, err := NewWriterConfig(pool.NewByteBuffer(0), format.EncodingRaw, cfg)
			require.NoError(t, err)

			_, err = wr.WriteArray(context.Background(), array.NewStrings("labels", []string{"a", "b\x00c"}))
			require.ErrorIs(t, err, errs.ErrInvalidArray)
		})
	}
}

func BenchmarkWriteArray(b *testing.B) {
	rng := rand.New(rand.NewPCG(13, 14))
	values := make([]float64, 1<<17)
	for i := range values {
		values[i] = float64(rng.IntN(1000)) / 8
	}
	a, err := array.NewNumeric("v", 1, values)
	require.NoError(b, err)

	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZLib, format.CompressionLZ4, format.CompressionZstd} {
		b.Run(ct.String(), func(b *testing.B) {
			c, err := compress.New(ct, compress.DefaultLevel)
			require.NoError(b, err)
			cfg := DefaultConfig()
			cfg.Compressor = c
			buf := pool.NewByteBuffer(len(values) * 8)

			b.SetBytes(int64(len(values) * 8))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				buf.Reset()
				wr, err := NewWriterConfig(buf, format.EncodingRaw, cfg)
				if err != nil {
					b.Fatal(err)
				}
				if _, err := wr.WriteArray(context.Background(), a); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
