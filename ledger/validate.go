package ledger

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/merkle"
	"github.com/rony4d/go-shardchain/pow"
	"github.com/rony4d/go-shardchain/shardnet/genesis"
)

// checkBlock runs the checks that need no chain state.
func (l *Ledger) checkBlock(b *inter.Block) error {
	if n := len(b.Transactions); n > int(l.rules.Shards.MaxBlockTxs) {
		return fmt.Errorf("%w: %d > %d", ErrTooManyTxs, n, l.rules.Shards.MaxBlockTxs)
	}
	if err := pow.VerifySeal(b); err != nil {
		return err
	}
	if err := l.checkTransactions(b); err != nil {
		return err
	}
	if root := merkle.Root(b.Transactions); root != b.MerkleRoot {
		return fmt.Errorf("%w: have %s, want %s", ErrMerkleMismatch, b.MerkleRoot.Hex(), root.Hex())
	}
	if limit := l.now() + l.rules.Mining.MaxFutureDrift; b.Timestamp > limit {
		return fmt.Errorf("%w: %d > %d", ErrFutureBlock, b.Timestamp, limit)
	}
	return nil
}

// checkTransactions applies the admission rules of Submit to every
// transaction of b, so a peer cannot include what the pool would refuse.
func (l *Ledger) checkTransactions(b *inter.Block) error {
	for i, tx := range b.Transactions {
		if !tx.Signed() && !l.rules.Economy.AllowUnsigned {
			return fmt.Errorf("%w: tx %d", ErrMissingSignature, i)
		}
		from, to := l.rules.ShardOf(tx.Sender), l.rules.ShardOf(tx.Receiver)
		if from != b.ShardID || to != b.ShardID {
			return fmt.Errorf("%w: tx %d moves from shard %d to %d in a block of shard %d",
				ErrCrossShard, i, from, to, b.ShardID)
		}
		if len(tx.Contract) > inter.MaxContractSize {
			return fmt.Errorf("%w: tx %d has %d bytes", ErrContractTooLarge, i, len(tx.Contract))
		}
	}
	return nil
}

// checkLinkage validates b against the tip of s. s.mu must be held.
func (l *Ledger) checkLinkage(s *shard, b *inter.Block) error {
	tip := s.tip()
	if b.PrevHash != tip.Hash {
		if b.Height <= tip.Height && s.blocks[b.Height].Hash == b.Hash {
			return ErrKnownBlock
		}
		return fmt.Errorf("%w: prev %s, tip %s at %d", ErrLinkage, b.PrevHash.Hex(), tip.Hash.Hex(), tip.Height)
	}
	if b.Height != tip.Height+1 {
		return fmt.Errorf("%w: have %d, want %d", ErrBadHeight, b.Height, tip.Height+1)
	}
	if b.Timestamp <= tip.Timestamp {
		return fmt.Errorf("%w: %d <= %d", ErrBadTimestamp, b.Timestamp, tip.Timestamp)
	}
	if want := l.nextDifficulty(s); b.Difficulty != want {
		return fmt.Errorf("%w: have %d, want %d", ErrBadDifficulty, b.Difficulty, want)
	}
	return nil
}

var dropReasons = []struct {
	err    error
	reason string
}{
	{ErrKnownBlock, "known"},
	{ErrLinkage, "linkage"},
	{ErrUnknownShard, "shard"},
	{ErrWrongShard, "shard"},
	{ErrBadHeight, "height"},
	{ErrBadTimestamp, "timestamp"},
	{ErrFutureBlock, "timestamp"},
	{ErrBadDifficulty, "difficulty"},
	{pow.ErrZeroDifficulty, "difficulty"},
	{pow.ErrHashMismatch, "seal"},
	{pow.ErrTargetNotMet, "seal"},
	{ErrMerkleMismatch, "merkle"},
	{ErrTooManyTxs, "size"},
	{ErrMissingSignature, "tx"},
	{ErrCrossShard, "tx"},
	{ErrContractTooLarge, "tx"},
}

func dropReason(err error) string {
	for _, r := range dropReasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return "other"
}

// VerifyChain checks a shard's whole sequence: the deterministic genesis,
// hash linkage, increasing timestamps, the difficulty each block had to
// meet, the seal of every later block and its merkle root.
func (l *Ledger) VerifyChain(shardID uint32) error {
	blocks, err := l.Blocks(shardID)
	if err != nil {
		return err
	}
	return verifyChain(l.genesis, shardID, blocks)
}

func verifyChain(g genesis.Genesis, shardID uint32, blocks []*inter.Block) error {
	if len(blocks) == 0 {
		return ErrEmptyChain
	}
	if blocks[0].ShardID != shardID || !g.IsGenesis(blocks[0]) {
		return fmt.Errorf("%w: shard %d", ErrGenesisMismatch, shardID)
	}
	for i := 1; i < len(blocks); i++ {
		prev, b := blocks[i-1], blocks[i]
		if b.ShardID != shardID {
			return fmt.Errorf("%w: block %d", ErrWrongShard, i)
		}
		if b.Height != prev.Height+1 {
			return fmt.Errorf("%w: block %d has height %d", ErrBadHeight, i, b.Height)
		}
		if b.PrevHash != prev.Hash {
			return fmt.Errorf("%w: block %d", ErrLinkage, i)
		}
		if b.Timestamp <= prev.Timestamp {
			return fmt.Errorf("%w: block %d", ErrBadTimestamp, i)
		}
		recent := blocks[:i]
		if len(recent) > 2 {
			recent = recent[len(recent)-2:]
		}
		if want := pow.AdjustDifficulty(recent, g.Rules.Mining); b.Difficulty != want {
			return fmt.Errorf("%w: block %d has %d, want %d", ErrBadDifficulty, i, b.Difficulty, want)
		}
		if err := pow.VerifySeal(b); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
		if merkle.Root(b.Transactions) != b.MerkleRoot {
			return fmt.Errorf("%w: block %d", ErrMerkleMismatch, i)
		}
	}
	return nil
}
