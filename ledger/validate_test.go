package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/pow"
	"github.com/rony4d/go-shardchain/shardnet"
)

func mineFrom(t *testing.T, tmpl pow.Template) *inter.Block {
	t.Helper()
	b, err := pow.Mine(context.Background(), tmpl)
	require.NoError(t, err)
	return b
}

func TestOnBlockReceivedAppends(t *testing.T) {
	src, _ := newTestLedger(t)
	dst, _ := newTestLedger(t)

	hash := submit(t, src, &inter.Transaction{Sender: alice, Receiver: bob, Amount: 10})
	b1 := appendNext(t, src, 0)
	b2 := appendNext(t, src, 0)

	require.NoError(t, dst.OnBlockReceived(0, b1))
	require.NoError(t, dst.OnBlockReceived(0, b2))

	bb, err := dst.Blocks(0)
	require.NoError(t, err)
	require.Equal(t, []*inter.Block{src.genesis.Block(0), b1, b2}, bb)
	require.NoError(t, dst.VerifyChain(0))

	bal, _ := dst.Balance(bob)
	require.Equal(t, uint64(10), bal)
	_, ok := dst.Receipt(hash)
	require.True(t, ok)

	srcPoH, _ := src.PoH()
	dstPoH, _ := dst.PoH()
	require.Equal(t, srcPoH, dstPoH)
}

func TestOnBlockReceivedDropsUnlinkedBlock(t *testing.T) {
	src, _ := newTestLedger(t)
	dst, hook := newTestLedger(t)

	appendNext(t, src, 0)
	b2 := appendNext(t, src, 0)

	before, err := dst.Blocks(0)
	require.NoError(t, err)
	beforePoH, _ := dst.PoH()

	require.ErrorIs(t, dst.OnBlockReceived(0, b2), ErrLinkage)

	after, err := dst.Blocks(0)
	require.NoError(t, err)
	require.Equal(t, before, after)
	afterPoH, _ := dst.PoH()
	require.Equal(t, beforePoH, afterPoH)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, logrus.WarnLevel, entry.Level)
	require.Equal(t, "linkage", entry.Data["reason"])
}

func TestOnBlockReceivedIgnoresKnownBlock(t *testing.T) {
	src, _ := newTestLedger(t)
	dst, hook := newTestLedger(t)
	b1 := appendNext(t, src, 0)

	require.NoError(t, dst.OnBlockReceived(0, b1))
	require.ErrorIs(t, dst.OnBlockReceived(0, b1), ErrKnownBlock)
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)

	bb, _ := dst.Blocks(0)
	require.Len(t, bb, 2)
}

func TestOnBlockReceivedIntegrity(t *testing.T) {
	tests := []struct {
		name   string
		shard  uint32
		rules  func(r *shardnet.Rules)
		build  func(t *testing.T, src *Ledger) *inter.Block
		want   error
		reason string
	}{
		{
			name:  "wrong shard",
			shard: 1,
			build: func(t *testing.T, src *Ledger) *inter.Block { return mineNext(t, src, 0) },
			want:  ErrWrongShard,
		},
		{
			name: "tampered nonce",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				b := mineNext(t, src, 0)
				b.Nonce++
				return b
			},
			want: pow.ErrHashMismatch,
		},
		{
			name: "tampered transactions",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				submit(t, src, &inter.Transaction{Sender: alice, Receiver: bob, Amount: 10})
				b := mineNext(t, src, 0)
				b.Transactions = nil
				return b
			},
			want: ErrMerkleMismatch,
		},
		{
			name: "wrong difficulty",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Difficulty++
				return mineFrom(t, tmpl)
			},
			want: ErrBadDifficulty,
		},
		{
			name: "wrong height",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Height = 5
				return mineFrom(t, tmpl)
			},
			want: ErrBadHeight,
		},
		{
			name: "timestamp not after parent",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Timestamp = 0
				return mineFrom(t, tmpl)
			},
			want: ErrBadTimestamp,
		},
		{
			name: "timestamp in the future",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Timestamp += inter.Timestamp(time.Hour)
				return mineFrom(t, tmpl)
			},
			want: ErrFutureBlock,
		},
		{
			name: "too many transactions",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				for i := 0; i <= int(src.rules.Shards.MaxBlockTxs); i++ {
					tmpl.Transactions = append(tmpl.Transactions, &inter.Transaction{Sender: alice, Receiver: bob, Amount: uint64(i)})
				}
				return mineFrom(t, tmpl)
			},
			want: ErrTooManyTxs,
		},
		{
			name:  "unknown shard",
			shard: 9,
			build: func(t *testing.T, src *Ledger) *inter.Block {
				b := mineNext(t, src, 0)
				b.ShardID = 9
				return b
			},
			want: ErrUnknownShard,
		},
		{
			name:  "unsigned transfer",
			rules: func(r *shardnet.Rules) { r.Economy.AllowUnsigned = false },
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Transactions = []*inter.Transaction{{Sender: alice, Receiver: bob, Amount: 9999}}
				return mineFrom(t, tmpl)
			},
			want:   ErrMissingSignature,
			reason: "tx",
		},
		{
			name: "receiver on another shard",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Transactions = []*inter.Transaction{{Sender: alice, Receiver: carol, Amount: 5}}
				return mineFrom(t, tmpl)
			},
			want:   ErrCrossShard,
			reason: "tx",
		},
		{
			name: "sender on another shard",
			build: func(t *testing.T, src *Ledger) *inter.Block {
				tmpl, _, err := src.Template(0)
				require.NoError(t, err)
				tmpl.Transactions = []*inter.Transaction{{Sender: carol, Receiver: bob, Amount: 5}}
				return mineFrom(t, tmpl)
			},
			want:   ErrCrossShard,
			reason: "tx",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := shardnet.FakeNetRules()
			if tt.rules != nil {
				tt.rules(&rules)
			}
			src, _ := newTestLedger(t)
			dst, hook := newTestLedgerWithRules(t, rules)
			b := tt.build(t, src)

			require.ErrorIs(t, dst.OnBlockReceived(tt.shard, b), tt.want)
			for id := uint32(0); id < dst.ShardCount(); id++ {
				bb, err := dst.Blocks(id)
				require.NoError(t, err)
				require.Len(t, bb, 1)
			}
			_, seq := dst.PoH()
			require.Zero(t, seq)
			_, stored := dst.Balance(bob)
			require.False(t, stored)
			require.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			if tt.reason != "" {
				require.Equal(t, tt.reason, hook.LastEntry().Data["reason"])
			}
		})
	}
}

func TestVerifyChainChecksDifficultyAndTime(t *testing.T) {
	l, _ := newTestLedger(t)
	appendNext(t, l, 0)
	appendNext(t, l, 0)
	blocks, err := l.Blocks(0)
	require.NoError(t, err)
	require.NoError(t, verifyChain(l.genesis, 0, blocks))

	// copies, so the ledger's own blocks stay intact
	altered := append([]*inter.Block(nil), blocks...)
	b := *altered[2]
	b.Difficulty++
	altered[2] = &b
	require.ErrorIs(t, verifyChain(l.genesis, 0, altered), ErrBadDifficulty)

	rewound := append([]*inter.Block(nil), blocks...)
	c := *rewound[2]
	c.Timestamp = rewound[1].Timestamp
	rewound[2] = &c
	require.ErrorIs(t, verifyChain(l.genesis, 0, rewound), ErrBadTimestamp)
}

func TestStaleLocalBlockIsQuiet(t *testing.T) {
	l, hook := newTestLedger(t)
	clock := inter.Timestamp(time.Hour)
	l.now = func() inter.Timestamp {
		clock += inter.Timestamp(time.Millisecond)
		return clock
	}
	stale := mineNext(t, l, 0)
	appendNext(t, l, 0)

	require.ErrorIs(t, l.AppendMined(stale), ErrLinkage)
	require.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
