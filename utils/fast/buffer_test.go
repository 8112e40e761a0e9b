package fast

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferRoundTrip(t *testing.T) {
	w := NewWriter(make([]byte, 0, 4))
	w.WriteByte(0x01)
	w.Write([]byte{0x02, 0x03, 0x04})
	w.WriteByte(0x05)
	require.Equal(t, []byte{1, 2, 3, 4, 5}, w.Bytes())

	r := NewReader(w.Bytes())
	require.Equal(t, byte(1), r.ReadByte())
	require.Equal(t, []byte{2, 3}, r.Read(2))
	require.Equal(t, 3, r.Position())
	require.False(t, r.Empty())
	require.Equal(t, []byte{4, 5}, r.Read(2))
	require.True(t, r.Empty())
}

func TestBufferOverrun(t *testing.T) {
	r := NewReader([]byte{1})
	require.Panics(t, func() { r.Read(2) })
	r = NewReader(nil)
	require.Panics(t, func() { r.ReadByte() })
}
