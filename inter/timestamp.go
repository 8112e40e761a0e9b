package inter

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
)

// Timestamp is a Unix time in nanoseconds. Durations in network rules use
// the same unit.
type Timestamp uint64

// Now returns the current wall-clock time.
func Now() Timestamp {
	return FromTime(time.Now())
}

func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

func (t Timestamp) Duration() time.Duration {
	return time.Duration(t)
}

// Bytes is the 8-byte big-endian form used in hash preimages.
func (t Timestamp) Bytes() []byte {
	return bigendian.Uint64ToBytes(uint64(t))
}
