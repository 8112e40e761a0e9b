package ledger

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-shardchain/execcore"
	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/poh"
	"github.com/rony4d/go-shardchain/pow"
	"github.com/rony4d/go-shardchain/shardnet"
	"github.com/rony4d/go-shardchain/vm"
)

func populatedLedger(t *testing.T) (*Ledger, common.Hash) {
	t.Helper()
	l, _ := newTestLedger(t)
	hash := submit(t, l, &inter.Transaction{Sender: alice, Receiver: bob, Amount: 100, GasLimit: 100})
	submit(t, l, &inter.Transaction{Sender: carol, Receiver: carol, Amount: 1, GasLimit: 20,
		Contract: []byte{byte(vm.PUSH), byte(vm.STORE)}})
	appendNext(t, l, 0)
	appendNext(t, l, 1)
	appendNext(t, l, 0)
	return l, hash
}

func restore(t *testing.T, snap *Snapshot) (*Ledger, error) {
	t.Helper()
	log, _ := test.NewNullLogger()
	return Restore(shardnet.FakeNetRules(), LiteConfig(), snap, log)
}

func TestSnapshotRestore(t *testing.T) {
	l, hash := populatedLedger(t)
	snap := l.Snapshot()
	require.Equal(t, shardnet.FakeNetworkID, snap.NetworkID)
	require.Len(t, snap.Shards, 2)
	require.Len(t, snap.PoH.Records, 3)

	r, err := restore(t, snap)
	require.NoError(t, err)

	for id := uint32(0); id < 2; id++ {
		want, _ := l.Blocks(id)
		got, _ := r.Blocks(id)
		require.Equal(t, want, got)
		require.NoError(t, r.VerifyChain(id))
	}
	wantPoH, wantSeq := l.PoH()
	gotPoH, gotSeq := r.PoH()
	require.Equal(t, wantPoH, gotPoH)
	require.Equal(t, wantSeq, gotSeq)

	bal, _ := r.Balance(bob)
	require.Equal(t, uint64(100), bal)
	receipt, ok := r.Receipt(hash)
	require.True(t, ok)
	require.Equal(t, execcore.Success, receipt.Outcome)

	require.Equal(t, snap, r.Snapshot())

	// the restored ledger keeps extending the same chains
	appendNext(t, r, 1)
	require.NoError(t, r.VerifyChain(1))
}

func TestRestoreRejectsCorruptSnapshots(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Snapshot)
		want   error
	}{
		{"network", func(s *Snapshot) { s.NetworkID = shardnet.MainNetworkID }, ErrSnapshotMismatch},
		{"shard count", func(s *Snapshot) { s.ShardCount = 3 }, ErrSnapshotMismatch},
		{"missing shard", func(s *Snapshot) { s.Shards = s.Shards[:1] }, ErrSnapshotMismatch},
		{"shard order", func(s *Snapshot) { s.Shards[0], s.Shards[1] = s.Shards[1], s.Shards[0] }, ErrSnapshotMismatch},
		{"genesis", func(s *Snapshot) { s.Shards[0].Blocks[0] = s.Shards[1].Blocks[0] }, ErrGenesisMismatch},
		{"empty chain", func(s *Snapshot) { s.Shards[1].Blocks = nil }, ErrEmptyChain},
		{"nonce", func(s *Snapshot) { s.Shards[0].Blocks[2].Nonce++ }, pow.ErrHashMismatch},
		{"dropped block", func(s *Snapshot) {
			s.Shards[0].Blocks = append(s.Shards[0].Blocks[:1:1], s.Shards[0].Blocks[2])
		}, ErrBadHeight},
		{"difficulty", func(s *Snapshot) { s.Shards[0].Blocks[2].Difficulty++ }, ErrBadDifficulty},
		{"timestamp", func(s *Snapshot) { s.Shards[0].Blocks[2].Timestamp = s.Shards[0].Blocks[1].Timestamp }, ErrBadTimestamp},
		{"balance", func(s *Snapshot) { s.Shards[0].Accounts[0].Balance++ }, ErrStateMismatch},
		{"storage", func(s *Snapshot) { s.Shards[1].Storage = nil }, ErrStateMismatch},
		{"poh value", func(s *Snapshot) { s.PoH.Value[0] ^= 1 }, ErrPoHMismatch},
		{"poh record", func(s *Snapshot) { s.PoH.Records[1].Value[0] ^= 1 }, poh.ErrRecordValue},
		{"poh missing", func(s *Snapshot) { s.PoH.Records = s.PoH.Records[:2] }, ErrPoHMismatch},
		{"poh shard", func(s *Snapshot) { s.PoH.Records[0].ShardID = 1 }, ErrPoHMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := populatedLedger(t)
			snap := l.Snapshot()
			tt.mutate(snap)
			_, err := restore(t, snap)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConcurrentMiningAndQueries(t *testing.T) {
	l, _ := newTestLedger(t)
	log, _ := test.NewNullLogger()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var workers []*pow.Worker
	for id := uint32(0); id < l.ShardCount(); id++ {
		w := pow.NewWorker(id, l, nil, pow.DefaultWorkerConfig(), log)
		w.Start(ctx)
		workers = append(workers, w)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= 50; i++ {
			_, _ = l.Submit(&inter.Transaction{Sender: alice, Receiver: bob, Amount: i})
			_, _ = l.Submit(&inter.Transaction{Sender: carol, Receiver: carol, Amount: i})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			snap := l.Snapshot()
			var blocks int
			for _, s := range snap.Shards {
				blocks += len(s.Blocks) - 1
			}
			assert.Equal(t, blocks, len(snap.PoH.Records))
		}
	}()
	wg.Wait()

	require.Eventually(t, func() bool {
		_, seq := l.PoH()
		return seq >= 10
	}, 10*time.Second, time.Millisecond)
	for _, w := range workers {
		w.Stop()
	}

	for id := uint32(0); id < l.ShardCount(); id++ {
		require.NoError(t, l.VerifyChain(id))
	}
	_, err := restore(t, l.Snapshot())
	require.NoError(t, err)
}
