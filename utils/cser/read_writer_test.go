package cser

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-shardchain/utils/bits"
	"github.com/rony4d/go-shardchain/utils/fast"
)

func readerFor(w *Writer) *Reader {
	return &Reader{
		BitsR:  bits.NewReader(w.BitsW.Array),
		BytesR: fast.NewReader(w.BytesW.Bytes()),
	}
}

func TestIntegersRoundTrip(t *testing.T) {
	u32s := []uint32{0, 1, 0xff, 0x100, math.MaxUint32}
	u64s := []uint64{0, 1, 0xffff, 1 << 40, math.MaxUint64}
	u56s := []uint64{0, 1, 1<<56 - 1}

	w := NewWriter()
	for _, v := range u32s {
		w.U32(v)
	}
	for _, v := range u64s {
		w.U64(v)
	}
	for _, v := range u56s {
		w.U56(v)
	}

	r := readerFor(w)
	for _, v := range u32s {
		require.Equal(t, v, r.U32())
	}
	for _, v := range u64s {
		require.Equal(t, v, r.U64())
	}
	for _, v := range u56s {
		require.Equal(t, v, r.U56())
	}
	require.True(t, r.BytesR.Empty())
}

func TestMinimalWidth(t *testing.T) {
	w := NewWriter()
	w.U64(0)
	require.Len(t, w.BytesW.Bytes(), 1)

	w = NewWriter()
	w.U56(0)
	require.Len(t, w.BytesW.Bytes(), 0)

	w = NewWriter()
	w.U64(0x1234)
	require.Equal(t, []byte{0x34, 0x12}, w.BytesW.Bytes())
}

func TestPaddedIntegerRejected(t *testing.T) {
	w := NewWriter()
	// width 2 with a zero top byte
	w.BitsW.Write(3, 1)
	w.BytesW.Write([]byte{0x05, 0x00})

	r := readerFor(w)
	require.PanicsWithValue(t, ErrNonCanonicalEncoding, func() { r.U64() })
}

func TestBoolsAndBytes(t *testing.T) {
	w := NewWriter()
	w.Bool(true)
	w.Bool(false)
	w.SliceBytes([]byte("hello"))
	w.SliceBytes(nil)
	var fixed [4]byte
	w.FixedBytes([]byte{9, 8, 7, 6})

	r := readerFor(w)
	require.True(t, r.Bool())
	require.False(t, r.Bool())
	require.Equal(t, []byte("hello"), r.SliceBytes(16))
	require.Empty(t, r.SliceBytes(16))
	r.FixedBytes(fixed[:])
	require.Equal(t, [4]byte{9, 8, 7, 6}, fixed)
}
