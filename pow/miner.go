package pow

import (
	"context"
	"encoding/binary"
	"errors"
	"math"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/merkle"
)

// ErrNonceSpaceExhausted is returned when every nonce failed the target.
var ErrNonceSpaceExhausted = errors.New("nonce space exhausted")

// checkEvery is how many nonces are tried between cancellation checks.
const checkEvery = 1 << 12

// Template is everything a search needs. It is a copy of chain state, so
// the search itself never touches the ledger.
type Template struct {
	ShardID      uint32
	Height       idx.Block
	PrevHash     common.Hash
	Transactions []*inter.Transaction
	Timestamp    inter.Timestamp
	Difficulty   uint64
	PoH          common.Hash
}

// Mine searches nonces from zero until the seal meets the template's
// difficulty. It returns ctx.Err() once ctx is done.
func Mine(ctx context.Context, tmpl Template) (*inter.Block, error) {
	if tmpl.Difficulty == 0 {
		return nil, ErrZeroDifficulty
	}
	target := Target(tmpl.Difficulty)
	root := merkle.Root(tmpl.Transactions)

	// PrevHash(32) | Timestamp(8) | Nonce(8) | PoH(32)
	var preimage [32 + 8 + 8 + 32]byte
	copy(preimage[:32], tmpl.PrevHash[:])
	copy(preimage[32:40], tmpl.Timestamp.Bytes())
	copy(preimage[48:], tmpl.PoH[:])

	var tried uint64
	defer func() { hashesTried.Add(float64(tried)) }()

	for nonce := uint64(0); ; nonce++ {
		if nonce%checkEvery == 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}

		binary.BigEndian.PutUint64(preimage[40:48], nonce)
		h := crypto.Keccak256Hash(preimage[:])
		tried++
		if MeetsTarget(h, target) {
			return &inter.Block{
				ShardID:      tmpl.ShardID,
				Height:       tmpl.Height,
				PrevHash:     tmpl.PrevHash,
				Transactions: tmpl.Transactions,
				Timestamp:    tmpl.Timestamp,
				Nonce:        nonce,
				Hash:         h,
				MerkleRoot:   root,
				Difficulty:   tmpl.Difficulty,
				PoH:          tmpl.PoH,
			}, nil
		}
		if nonce == math.MaxUint64 {
			return nil, ErrNonceSpaceExhausted
		}
	}
}
