package pow

import (
	"math"
	"time"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/shardnet"
)

const (
	MinAdjustRatio = 0.5
	MaxAdjustRatio = 2.0

	// minElapsed replaces smaller block spacings to bound the ratio.
	minElapsed = inter.Timestamp(time.Millisecond)
)

// AdjustDifficulty returns the difficulty for the block following blocks.
//
// With fewer than two blocks the last difficulty is kept. Otherwise the
// last difficulty is scaled by TargetBlockTime over the spacing of the two
// most recent blocks, the factor clamped to [MinAdjustRatio, MaxAdjustRatio],
// and the result floored at MinDifficulty.
func AdjustDifficulty(blocks []*inter.Block, rules shardnet.MiningRules) uint64 {
	n := len(blocks)
	if n == 0 {
		return rules.GenesisDifficulty
	}
	prev := blocks[n-1].Difficulty
	if n < 2 {
		return floor(prev, rules.MinDifficulty)
	}

	var elapsed inter.Timestamp
	if last, before := blocks[n-1].Timestamp, blocks[n-2].Timestamp; last > before {
		elapsed = last - before
	}
	if elapsed < minElapsed {
		elapsed = minElapsed
	}

	ratio := float64(rules.TargetBlockTime) / float64(elapsed)
	if ratio < MinAdjustRatio {
		ratio = MinAdjustRatio
	}
	if ratio > MaxAdjustRatio {
		ratio = MaxAdjustRatio
	}
	return floor(scale(prev, ratio), rules.MinDifficulty)
}

// scale multiplies d by ratio, rounding while staying inside [d/2, 2d].
func scale(d uint64, ratio float64) uint64 {
	lo := d/2 + d%2
	hi := uint64(math.MaxUint64)
	if d <= math.MaxUint64/2 {
		hi = d * 2
	}

	f := math.Round(float64(d) * ratio)
	if f >= float64(hi) {
		return hi
	}
	next := uint64(f)
	if next < lo {
		next = lo
	}
	return next
}

func floor(d, min uint64) uint64 {
	if d < min {
		return min
	}
	return d
}
