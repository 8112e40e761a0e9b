package ledger

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/execcore"
	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/poh"
	"github.com/rony4d/go-shardchain/shardnet"
)

// Snapshot is a consistent copy of every shard and the accumulator. Pending
// transactions are not part of it.
type Snapshot struct {
	NetworkID  uint64
	ShardCount uint32
	Shards     []ShardSnapshot
	PoH        PoHSnapshot
}

// ShardSnapshot is one shard's blocks and state.
type ShardSnapshot struct {
	ID       uint32
	Blocks   []*inter.Block
	Accounts []execcore.Account
	Storage  []execcore.StorageEntry
}

// PoHSnapshot is the accumulator value and the log that produced it.
type PoHSnapshot struct {
	Value   common.Hash
	Records []poh.Record
}

// Snapshot copies the ledger. It blocks appends for its duration and waits
// for in-flight transaction application to finish, so every shard's state
// matches its blocks.
func (l *Ledger) Snapshot() *Snapshot {
	l.appendMu.Lock()
	defer l.appendMu.Unlock()
	for _, s := range l.shards {
		s.mu.RLock()
	}
	defer func() {
		for i := len(l.shards) - 1; i >= 0; i-- {
			l.shards[i].mu.RUnlock()
		}
	}()

	snap := &Snapshot{
		NetworkID:  l.rules.NetworkID,
		ShardCount: uint32(len(l.shards)),
		Shards:     make([]ShardSnapshot, len(l.shards)),
		PoH: PoHSnapshot{
			Value:   l.poh.Current(),
			Records: l.poh.Records(),
		},
	}
	for i, s := range l.shards {
		snap.Shards[i] = ShardSnapshot{
			ID:       s.id,
			Blocks:   append([]*inter.Block(nil), s.blocks...),
			Accounts: s.state.Accounts(),
			Storage:  s.state.StorageEntries(),
		}
	}
	return snap
}

// Restore rebuilds a ledger from snap. Every chain and the accumulator log
// are verified and the blocks are replayed; the replayed state must equal
// the stored one.
func Restore(rules shardnet.Rules, cfg Config, snap *Snapshot, log logrus.FieldLogger) (*Ledger, error) {
	l, err := newLedger(rules, cfg, log)
	if err != nil {
		return nil, err
	}
	if snap.NetworkID != rules.NetworkID || snap.ShardCount != rules.Shards.Count || len(snap.Shards) != int(snap.ShardCount) {
		return nil, fmt.Errorf("%w: network %d with %d shards, have network %d with %d shards",
			ErrSnapshotMismatch, snap.NetworkID, snap.ShardCount, rules.NetworkID, rules.Shards.Count)
	}

	for i, ss := range snap.Shards {
		id := uint32(i)
		if ss.ID != id {
			return nil, fmt.Errorf("%w: shard %d stored as %d", ErrSnapshotMismatch, i, ss.ID)
		}
		if err := verifyChain(l.genesis, id, ss.Blocks); err != nil {
			return nil, fmt.Errorf("shard %d: %w", id, err)
		}

		s := l.newShard(id)
		s.blocks = append([]*inter.Block(nil), ss.Blocks...)
		for _, b := range s.blocks[1:] {
			for _, r := range l.processor.Process(s.state, b) {
				l.receipts.Add(r.TxHash, r)
			}
		}
		stored := execcore.NewShardStateFrom(ss.Accounts, ss.Storage)
		if !sameState(s.state, stored) {
			return nil, fmt.Errorf("%w: shard %d", ErrStateMismatch, id)
		}
		for _, b := range s.blocks[len(s.blocks)-min(len(s.blocks), cfg.BlockCacheSize):] {
			l.byHash.Add(b.Hash, b)
		}
		l.shards = append(l.shards, s)
	}

	if err := l.checkPoHOrder(snap.PoH.Records); err != nil {
		return nil, err
	}
	acc, err := poh.Restore(l.genesis.PoHSeed(), snap.PoH.Records)
	if err != nil {
		return nil, err
	}
	if acc.Current() != snap.PoH.Value {
		return nil, fmt.Errorf("%w: stored value %s, replayed %s", ErrPoHMismatch, snap.PoH.Value.Hex(), acc.Current().Hex())
	}
	l.poh = acc
	pohSeq.Set(float64(acc.Seq()))

	log.WithFields(logrus.Fields{
		"shards": len(l.shards),
		"poh":    acc.Seq(),
	}).Info("Ledger restored")
	return l, nil
}

// checkPoHOrder checks that the records list every appended block exactly
// once, in height order within each shard.
func (l *Ledger) checkPoHOrder(records []poh.Record) error {
	next := make([]int, len(l.shards))
	for i := range next {
		next[i] = 1
	}
	for _, rec := range records {
		if rec.ShardID >= uint32(len(l.shards)) {
			return fmt.Errorf("%w: seq %d names shard %d", ErrPoHMismatch, rec.Seq, rec.ShardID)
		}
		s := l.shards[rec.ShardID]
		i := next[rec.ShardID]
		if i >= len(s.blocks) || s.blocks[i].Hash != rec.BlockHash {
			return fmt.Errorf("%w: seq %d", ErrPoHMismatch, rec.Seq)
		}
		next[rec.ShardID]++
	}
	for id, s := range l.shards {
		if next[id] != len(s.blocks) {
			return fmt.Errorf("%w: shard %d has %d unrecorded blocks", ErrPoHMismatch, id, len(s.blocks)-next[id])
		}
	}
	return nil
}

func sameState(a, b *execcore.ShardState) bool {
	aa, ba := a.Accounts(), b.Accounts()
	if len(aa) != len(ba) {
		return false
	}
	for i := range aa {
		if aa[i] != ba[i] {
			return false
		}
	}
	as, bs := a.StorageEntries(), b.StorageEntries()
	if len(as) != len(bs) {
		return false
	}
	for i := range as {
		if as[i].Key != bs[i].Key || string(as[i].Value) != string(bs[i].Value) {
			return false
		}
	}
	return true
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
