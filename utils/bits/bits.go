// Package bits packs values narrower than a byte into a little-endian bit
// stream. The CSER codec keeps flags and length prefixes here, apart from the
// byte payload.
package bits

type (
	// Array holds the packed bit stream.
	Array struct {
		Bytes []byte
	}

	// Writer appends bits to an Array.
	Writer struct {
		*Array
		bitOffset int // next free bit in the last byte, 0 when a new byte is needed
	}

	// Reader consumes bits from an Array in write order.
	Reader struct {
		*Array
		byteOffset int
		bitOffset  int
	}
)

func NewWriter(arr *Array) *Writer {
	return &Writer{Array: arr}
}

func NewReader(arr *Array) *Reader {
	return &Reader{Array: arr}
}

// Write stores the lowest n bits of v.
func (w *Writer) Write(n int, v uint) {
	for n > 0 {
		if w.bitOffset == 0 {
			w.Bytes = append(w.Bytes, 0)
		}
		chunk := 8 - w.bitOffset
		if chunk > n {
			chunk = n
		}
		w.Bytes[len(w.Bytes)-1] |= byte((v & (1<<chunk - 1)) << w.bitOffset)
		w.bitOffset = (w.bitOffset + chunk) % 8
		v >>= chunk
		n -= chunk
	}
}

// Read returns the next n bits. It panics when the stream is exhausted.
func (r *Reader) Read(n int) (v uint) {
	shift := 0
	for n > 0 {
		chunk := 8 - r.bitOffset
		if chunk > n {
			chunk = n
		}
		part := uint(r.Bytes[r.byteOffset]) >> r.bitOffset & (1<<chunk - 1)
		v |= part << shift
		shift += chunk
		n -= chunk
		r.bitOffset += chunk
		if r.bitOffset == 8 {
			r.bitOffset = 0
			r.byteOffset++
		}
	}
	return v
}

// NonReadBytes counts bytes not yet fully consumed, including a partially read one.
func (r *Reader) NonReadBytes() int {
	return len(r.Bytes) - r.byteOffset
}

// NonReadBits counts the remaining unread bits.
func (r *Reader) NonReadBits() int {
	return r.NonReadBytes()*8 - r.bitOffset
}
