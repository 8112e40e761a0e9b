// Package merkle reduces a transaction list to a single root hash.
//
// Leaves are transaction digests. Each level hashes adjacent pairs; when a
// level has an odd length its last hash is promoted to the next level as is.
// Because of that promotion a root does not identify a transaction list on
// its own, so callers that need list equality must compare the lists.
package merkle

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-shardchain/inter"
)

// EmptyRoot is the root of an empty transaction list.
var EmptyRoot = common.Hash{}

// Digest is the leaf hash of a transaction.
func Digest(tx *inter.Transaction) common.Hash {
	return tx.Hash()
}

// Root computes the merkle root of txs.
func Root(txs []*inter.Transaction) common.Hash {
	if len(txs) == 0 {
		return EmptyRoot
	}
	level := make([]common.Hash, len(txs))
	for i, tx := range txs {
		level[i] = Digest(tx)
	}
	return Reduce(level)
}

// Reduce folds a non-empty list of leaf hashes into a root.
func Reduce(level []common.Hash) common.Hash {
	if len(level) == 0 {
		return EmptyRoot
	}
	for len(level) > 1 {
		next := make([]common.Hash, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, crypto.Keccak256Hash(level[i][:], level[i+1][:]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}
