// Package fast implements unchecked append-only byte writers and cursor
// readers used by the CSER codec. Readers panic on overrun; callers recover.
package fast

// Reader walks a byte slice front to back.
type Reader struct {
	buf    []byte
	offset int
}

// Writer appends to a byte slice.
type Writer struct {
	buf []byte
}

// NewReader returns a Reader positioned at the start of bb.
func NewReader(bb []byte) *Reader {
	return &Reader{buf: bb}
}

// NewWriter returns a Writer appending to bb.
func NewWriter(bb []byte) *Writer {
	return &Writer{buf: bb}
}

func (w *Writer) WriteByte(v byte) {
	w.buf = append(w.buf, v)
}

func (w *Writer) Write(v []byte) {
	w.buf = append(w.buf, v...)
}

func (w *Writer) Bytes() []byte {
	return w.buf
}

// Read returns the next n bytes. The result aliases the underlying buffer.
func (r *Reader) Read(n int) []byte {
	end := r.offset + n
	res := r.buf[r.offset:end]
	r.offset = end
	return res
}

func (r *Reader) ReadByte() byte {
	b := r.buf[r.offset]
	r.offset++
	return b
}

// Position is the number of bytes consumed so far.
func (r *Reader) Position() int {
	return r.offset
}

func (r *Reader) Empty() bool {
	return r.offset == len(r.buf)
}
