// Package genesis derives the fixed starting point of every shard.
//
// Genesis blocks are not mined. Their hashes are derived from the network
// id and shard id so that all nodes of a network agree on them without
// exchanging any data.
package genesis

import (
	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/merkle"
	"github.com/rony4d/go-shardchain/shardnet"
)

var (
	blockTag = []byte("shardchain/genesis")
	pohTag   = []byte("shardchain/poh")
)

// Genesis is the initial state of a network.
type Genesis struct {
	Rules shardnet.Rules
}

func New(rules shardnet.Rules) Genesis {
	return Genesis{Rules: rules}
}

// Block returns the genesis block of shard id.
func (g Genesis) Block(id uint32) *inter.Block {
	return &inter.Block{
		ShardID:    id,
		Height:     0,
		MerkleRoot: merkle.EmptyRoot,
		Difficulty: g.Rules.Mining.GenesisDifficulty,
		Hash: crypto.Keccak256Hash(
			blockTag,
			bigendian.Uint64ToBytes(g.Rules.NetworkID),
			bigendian.Uint32ToBytes(id),
		),
	}
}

// Blocks returns the genesis block of every shard, ordered by shard id.
func (g Genesis) Blocks() []*inter.Block {
	out := make([]*inter.Block, g.Rules.Shards.Count)
	for i := range out {
		out[i] = g.Block(uint32(i))
	}
	return out
}

// PoHSeed is the proof-of-history value before the first append.
func (g Genesis) PoHSeed() common.Hash {
	return crypto.Keccak256Hash(pohTag, bigendian.Uint64ToBytes(g.Rules.NetworkID))
}

// IsGenesis reports whether b equals the genesis block of its shard.
func (g Genesis) IsGenesis(b *inter.Block) bool {
	want := g.Block(b.ShardID)
	return b.Height == 0 &&
		len(b.Transactions) == 0 &&
		b.Hash == want.Hash &&
		b.PrevHash == want.PrevHash &&
		b.Timestamp == want.Timestamp &&
		b.Nonce == want.Nonce &&
		b.MerkleRoot == want.MerkleRoot &&
		b.Difficulty == want.Difficulty &&
		b.PoH == want.PoH
}
