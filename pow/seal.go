// Package pow implements the proof-of-work seal, difficulty adjustment and
// the per-shard mining worker.
//
// The seal of a block is Keccak-256 over
//
//	PrevHash ‖ Timestamp (8 bytes BE) ‖ Nonce (8 bytes BE) ‖ PoH
//
// and it is valid when, read as a big-endian integer, it does not exceed
// (2^256-1) / Difficulty. Keccak-256 is the only hash used for sealing.
package pow

import (
	"bytes"
	"errors"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-shardchain/inter"
)

var (
	ErrZeroDifficulty = errors.New("zero difficulty")
	ErrHashMismatch   = errors.New("block hash does not match its seal")
	ErrTargetNotMet   = errors.New("block hash above difficulty target")
)

var maxTarget = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// Target returns the largest acceptable seal for difficulty as 32 bytes.
func Target(difficulty uint64) common.Hash {
	var out common.Hash
	if difficulty == 0 {
		return out
	}
	t := new(big.Int).Div(maxTarget, new(big.Int).SetUint64(difficulty))
	t.FillBytes(out[:])
	return out
}

// SealHash computes the proof-of-work hash.
func SealHash(prevHash common.Hash, ts inter.Timestamp, nonce uint64, poh common.Hash) common.Hash {
	return crypto.Keccak256Hash(prevHash[:], ts.Bytes(), bigendian.Uint64ToBytes(nonce), poh[:])
}

// BlockSealHash recomputes the seal from the fields stored in b.
func BlockSealHash(b *inter.Block) common.Hash {
	return SealHash(b.PrevHash, b.Timestamp, b.Nonce, b.PoH)
}

// MeetsTarget reports whether h satisfies target.
func MeetsTarget(h, target common.Hash) bool {
	return bytes.Compare(h[:], target[:]) <= 0
}

// VerifySeal checks that b.Hash is its seal and satisfies b.Difficulty.
func VerifySeal(b *inter.Block) error {
	if b.Difficulty == 0 {
		return ErrZeroDifficulty
	}
	if BlockSealHash(b) != b.Hash {
		return ErrHashMismatch
	}
	if !MeetsTarget(b.Hash, Target(b.Difficulty)) {
		return ErrTargetNotMet
	}
	return nil
}
