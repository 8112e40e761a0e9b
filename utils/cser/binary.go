// Package cser is the canonical wire codec for blocks and transactions.
//
// An encoded value is laid out as
//
//	[payload bytes][bit stream][len(bit stream) as reversed varint]
//
// Decoding rejects any input that is not the unique minimal encoding.
package cser

import (
	"github.com/rony4d/go-shardchain/utils/bits"
	"github.com/rony4d/go-shardchain/utils/fast"
)

// MarshalBinaryAdapter runs marshalCser against a fresh Writer and joins the
// two streams.
func MarshalBinaryAdapter(marshalCser func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	if err := marshalCser(w); err != nil {
		return nil, err
	}
	return join(w.BitsW.Array, w.BytesW.Bytes()), nil
}

// UnmarshalBinaryAdapter splits raw and runs unmarshalCser over it. Decoder
// panics become errors; every byte and bit of raw must be consumed.
func UnmarshalBinaryAdapter(raw []byte, unmarshalCser func(*Reader) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			switch e := rec.(type) {
			case error:
				if e == ErrNonCanonicalEncoding || e == ErrTooLargeAlloc {
					err = e
					return
				}
			}
			err = ErrMalformedEncoding
		}
	}()

	bitArr, payload, err := split(raw)
	if err != nil {
		return err
	}
	r := &Reader{
		BitsR:  bits.NewReader(bitArr),
		BytesR: fast.NewReader(payload),
	}
	if err := unmarshalCser(r); err != nil {
		return err
	}

	left := r.BitsR.NonReadBits()
	if left >= 8 {
		return ErrNonCanonicalEncoding
	}
	if r.BitsR.Read(left) != 0 {
		return ErrNonCanonicalEncoding
	}
	if !r.BytesR.Empty() {
		return ErrNonCanonicalEncoding
	}
	return nil
}

func join(bitArr *bits.Array, payload []byte) []byte {
	out := fast.NewWriter(payload)
	out.Write(bitArr.Bytes)

	size := fast.NewWriter(make([]byte, 0, 4))
	writeVarint(size, uint64(len(bitArr.Bytes)))
	out.Write(reversed(size.Bytes()))
	return out.Bytes()
}

func split(raw []byte) (*bits.Array, []byte, error) {
	suffix := fast.NewReader(reversed(tail(raw, 9)))
	bitsLen := readVarint(suffix)
	raw = raw[:len(raw)-suffix.Position()]
	if uint64(len(raw)) < bitsLen {
		return nil, nil, ErrMalformedEncoding
	}
	cut := uint64(len(raw)) - bitsLen
	return &bits.Array{Bytes: raw[cut:]}, raw[:cut], nil
}

// writeVarint emits 7 bits per byte, least significant first. The high bit
// marks the final byte.
func writeVarint(w *fast.Writer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v == 0 {
			w.WriteByte(b | 0x80)
			return
		}
		w.WriteByte(b)
	}
}

func readVarint(r *fast.Reader) uint64 {
	var v uint64
	for i := 0; ; i++ {
		b := r.ReadByte()
		word := uint64(b & 0x7f)
		v |= word << (7 * uint(i))
		if b&0x80 != 0 {
			if i > 0 && word == 0 {
				panic(ErrNonCanonicalEncoding)
			}
			return v
		}
	}
}

func tail(b []byte, n int) []byte {
	if len(b) > n {
		return b[len(b)-n:]
	}
	return b
}

func reversed(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
