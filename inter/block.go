// Package inter defines the ledger's core data structures: transactions,
// blocks and their canonical encodings.
//
// A block belongs to exactly one shard. Its Hash is the proof-of-work seal
// over (PrevHash, Timestamp, Nonce, PoH); MerkleRoot commits to the
// transactions separately and is checked independently by verifiers.
package inter

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
)

// Block is one entry of a shard's append-only sequence. Blocks are treated
// as immutable after they are sealed.
type Block struct {
	// ShardID is the shard whose sequence this block extends.
	ShardID uint32

	// Height is the block's index in its shard, genesis being 0.
	Height idx.Block

	// PrevHash links to the shard's previous block.
	PrevHash common.Hash

	// Transactions are applied in order when the block is appended.
	Transactions []*Transaction

	// Timestamp is the time the block template was built.
	Timestamp Timestamp

	// Nonce is the proof-of-work solution.
	Nonce uint64

	// Hash is the sealed proof-of-work hash. Read as a big-endian integer
	// it must not exceed the target implied by Difficulty.
	Hash common.Hash

	// MerkleRoot summarizes Transactions.
	MerkleRoot common.Hash

	// Difficulty the block was mined against.
	Difficulty uint64

	// PoH is the proof-of-history value observed when the search started.
	// It is part of the seal preimage, so verifiers need the exact value.
	PoH common.Hash
}

// EstimateSize approximates the encoded size of the block in bytes.
func (b *Block) EstimateSize() int {
	size := 4 + 8 + 8 + 8 + 8 + 4*32
	for _, tx := range b.Transactions {
		size += 2*20 + 8 + 8 + len(tx.Contract) + len(tx.Signature)
	}
	return size
}

// TxHashes lists the hashes of the block's transactions in order.
func (b *Block) TxHashes() []common.Hash {
	hh := make([]common.Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		hh[i] = tx.Hash()
	}
	return hh
}
