package cser

import (
	"errors"

	"github.com/rony4d/go-shardchain/utils/bits"
	"github.com/rony4d/go-shardchain/utils/fast"
)

var (
	ErrNonCanonicalEncoding = errors.New("non canonical encoding")
	ErrMalformedEncoding    = errors.New("malformed encoding")
	ErrTooLargeAlloc        = errors.New("too large allocation")
)

// Writer splits output into a bit stream (flags, integer widths) and a byte
// stream (payload).
type Writer struct {
	BitsW  *bits.Writer
	BytesW *fast.Writer
}

type Reader struct {
	BitsR  *bits.Reader
	BytesR *fast.Reader
}

func NewWriter() *Writer {
	return &Writer{
		BitsW:  bits.NewWriter(&bits.Array{Bytes: make([]byte, 0, 32)}),
		BytesW: fast.NewWriter(make([]byte, 0, 256)),
	}
}

// writeLE writes v little-endian using as few bytes as possible, but no
// fewer than min. It returns the number of bytes written.
func writeLE(w *fast.Writer, v uint64, min int) (n int) {
	for n < min || v != 0 {
		w.WriteByte(byte(v))
		v >>= 8
		n++
	}
	return n
}

func readLE(r *fast.Reader, n int) uint64 {
	var v uint64
	for i, b := range r.Read(n) {
		v |= uint64(b) << (8 * uint(i))
	}
	return v
}

// writeSized stores the byte width of v (minus min) in widthBits of the bit
// stream and the value itself in the byte stream.
func (w *Writer) writeSized(min, widthBits int, v uint64) {
	n := writeLE(w.BytesW, v, min)
	w.BitsW.Write(widthBits, uint(n-min))
}

func (r *Reader) readSized(min, widthBits int) uint64 {
	n := int(r.BitsR.Read(widthBits)) + min
	v := readLE(r.BytesR, n)
	// the top byte may only be zero when it is required by min
	if n > min && v>>(8*uint(n-1)) == 0 {
		panic(ErrNonCanonicalEncoding)
	}
	return v
}

func (w *Writer) U32(v uint32) {
	w.writeSized(1, 2, uint64(v))
}

func (r *Reader) U32() uint32 {
	return uint32(r.readSized(1, 2))
}

func (w *Writer) U64(v uint64) {
	w.writeSized(1, 3, v)
}

func (r *Reader) U64() uint64 {
	return r.readSized(1, 3)
}

// U56 encodes lengths. Zero occupies no payload bytes.
func (w *Writer) U56(v uint64) {
	if v >= 1<<56 {
		panic(ErrTooLargeAlloc)
	}
	w.writeSized(0, 3, v)
}

func (r *Reader) U56() uint64 {
	return r.readSized(0, 3)
}

func (w *Writer) Bool(v bool) {
	var b uint
	if v {
		b = 1
	}
	w.BitsW.Write(1, b)
}

func (r *Reader) Bool() bool {
	return r.BitsR.Read(1) != 0
}

func (w *Writer) FixedBytes(v []byte) {
	w.BytesW.Write(v)
}

// FixedBytes fills v from the byte stream.
func (r *Reader) FixedBytes(v []byte) {
	copy(v, r.BytesR.Read(len(v)))
}

func (w *Writer) SliceBytes(v []byte) {
	w.U56(uint64(len(v)))
	w.FixedBytes(v)
}

// SliceBytes reads a length-prefixed slice no longer than maxLen.
func (r *Reader) SliceBytes(maxLen int) []byte {
	n := r.U56()
	if n > uint64(maxLen) {
		panic(ErrTooLargeAlloc)
	}
	buf := make([]byte, n)
	r.FixedBytes(buf)
	return buf
}
