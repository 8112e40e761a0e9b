// Package ledger owns the shards of a node: their block sequences, their
// state and their pending transactions, together with the proof-of-history
// accumulator shared by all of them.
//
// Appending a block and advancing the accumulator happen as one step under
// a single ledger-wide lock, so the accumulator order is the append order.
// That lock is always taken before a shard's own lock and is released
// before the block's transactions are applied; the shard lock is held until
// they are.
package ledger

import (
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/execcore"
	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/poh"
	"github.com/rony4d/go-shardchain/pow"
	"github.com/rony4d/go-shardchain/shardnet"
	"github.com/rony4d/go-shardchain/shardnet/genesis"
)

type shard struct {
	id uint32

	mu     sync.RWMutex
	blocks []*inter.Block
	state  *execcore.ShardState
	pool   *txPool
	// tipChanged is closed and replaced whenever a block is appended.
	tipChanged chan struct{}
}

func (s *shard) tip() *inter.Block {
	return s.blocks[len(s.blocks)-1]
}

// Ledger is safe for concurrent use.
type Ledger struct {
	rules     shardnet.Rules
	genesis   genesis.Genesis
	processor *execcore.StateProcessor
	log       logrus.FieldLogger

	appendMu sync.Mutex
	shards   []*shard
	poh      *poh.Accumulator

	receipts *lru.Cache // common.Hash -> *execcore.Receipt
	byHash   *lru.Cache // common.Hash -> *inter.Block

	now func() inter.Timestamp
}

// New creates a ledger holding only the genesis blocks of rules.
func New(rules shardnet.Rules, cfg Config, log logrus.FieldLogger) (*Ledger, error) {
	l, err := newLedger(rules, cfg, log)
	if err != nil {
		return nil, err
	}
	for _, b := range l.genesis.Blocks() {
		s := l.newShard(b.ShardID)
		s.blocks = []*inter.Block{b}
		l.shards = append(l.shards, s)
		l.byHash.Add(b.Hash, b)
	}
	l.poh = poh.New(l.genesis.PoHSeed())
	return l, nil
}

func newLedger(rules shardnet.Rules, cfg Config, log logrus.FieldLogger) (*Ledger, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	receipts, err := lru.New(cfg.ReceiptCacheSize)
	if err != nil {
		return nil, fmt.Errorf("receipt cache: %w", err)
	}
	byHash, err := lru.New(cfg.BlockCacheSize)
	if err != nil {
		return nil, fmt.Errorf("block cache: %w", err)
	}
	return &Ledger{
		rules:     rules,
		genesis:   genesis.New(rules),
		processor: execcore.NewStateProcessor(rules),
		log:       log,
		receipts:  receipts,
		byHash:    byHash,
		now:       inter.Now,
	}, nil
}

func (l *Ledger) newShard(id uint32) *shard {
	return &shard{
		id:         id,
		state:      execcore.NewShardState(),
		pool:       newTxPool(int(l.rules.Shards.MaxPendingTxs)),
		tipChanged: make(chan struct{}),
	}
}

func (l *Ledger) shard(id uint32) (*shard, error) {
	if id >= uint32(len(l.shards)) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownShard, id)
	}
	return l.shards[id], nil
}

// Rules returns the network rules.
func (l *Ledger) Rules() shardnet.Rules {
	return l.rules
}

// ShardCount returns the number of shards.
func (l *Ledger) ShardCount() uint32 {
	return uint32(len(l.shards))
}

// Submit validates tx against its shard and queues it for mining. It
// returns the transaction hash.
func (l *Ledger) Submit(tx *inter.Transaction) (common.Hash, error) {
	hash, err := l.submit(tx)
	if err != nil {
		txSubmitted.WithLabelValues("rejected").Inc()
		return hash, err
	}
	txSubmitted.WithLabelValues("accepted").Inc()
	return hash, nil
}

func (l *Ledger) submit(tx *inter.Transaction) (common.Hash, error) {
	hash := tx.Hash()
	sid := l.rules.ShardOf(tx.Sender)
	if l.rules.ShardOf(tx.Receiver) != sid {
		return hash, fmt.Errorf("%w: sender on shard %d, receiver on shard %d",
			ErrCrossShard, sid, l.rules.ShardOf(tx.Receiver))
	}
	if !tx.Signed() && !l.rules.Economy.AllowUnsigned {
		return hash, ErrMissingSignature
	}
	if len(tx.Contract) > inter.MaxContractSize {
		return hash, fmt.Errorf("%w: %d bytes", ErrContractTooLarge, len(tx.Contract))
	}
	if l.receipts.Contains(hash) {
		return hash, ErrKnownTransaction
	}

	s, err := l.shard(sid)
	if err != nil {
		return hash, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pool.has(hash) {
		return hash, ErrKnownTransaction
	}
	if err := l.processor.Check(s.state, tx); err != nil {
		return hash, err
	}
	return hash, s.pool.add(hash, tx.Copy())
}

// Pending returns the number of queued transactions of a shard.
func (l *Ledger) Pending(shardID uint32) (int, error) {
	s, err := l.shard(shardID)
	if err != nil {
		return 0, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pool.len(), nil
}

// Blocks returns the block sequence of a shard, genesis first. The blocks
// must not be modified.
func (l *Ledger) Blocks(shardID uint32) ([]*inter.Block, error) {
	s, err := l.shard(shardID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*inter.Block(nil), s.blocks...), nil
}

// Tip returns the last block of a shard.
func (l *Ledger) Tip(shardID uint32) (*inter.Block, error) {
	s, err := l.shard(shardID)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tip(), nil
}

// BlockByHash looks a block up on any shard.
func (l *Ledger) BlockByHash(hash common.Hash) (*inter.Block, bool) {
	if v, ok := l.byHash.Get(hash); ok {
		return v.(*inter.Block), true
	}
	for _, s := range l.shards {
		s.mu.RLock()
		for i := len(s.blocks) - 1; i >= 0; i-- {
			if b := s.blocks[i]; b.Hash == hash {
				s.mu.RUnlock()
				l.byHash.Add(hash, b)
				return b, true
			}
		}
		s.mu.RUnlock()
	}
	return nil, false
}

// Balance returns the stored balance of addr on its home shard and whether
// the account has been stored yet.
func (l *Ledger) Balance(addr common.Address) (uint64, bool) {
	s := l.shards[l.rules.ShardOf(addr)]
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Balance(addr)
}

// Storage reads a contract storage slot of a shard.
func (l *Ledger) Storage(shardID uint32, key string) ([]byte, bool, error) {
	s, err := l.shard(shardID)
	if err != nil {
		return nil, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.state.GetStorage(key)
	return common.CopyBytes(v), ok, nil
}

// Receipt returns the receipt of a recently applied transaction.
func (l *Ledger) Receipt(hash common.Hash) (*execcore.Receipt, bool) {
	v, ok := l.receipts.Get(hash)
	if !ok {
		return nil, false
	}
	return v.(*execcore.Receipt), true
}

// PoH returns the current accumulator value and the number of advances.
func (l *Ledger) PoH() (common.Hash, uint64) {
	l.appendMu.Lock()
	defer l.appendMu.Unlock()
	return l.poh.Current(), l.poh.Seq()
}

// PoHRecords returns the accumulator's record log.
func (l *Ledger) PoHRecords() []poh.Record {
	return l.poh.Records()
}

// Template snapshots a shard tip for mining. The returned channel is closed
// once a block is appended to the shard.
func (l *Ledger) Template(shardID uint32) (pow.Template, <-chan struct{}, error) {
	s, err := l.shard(shardID)
	if err != nil {
		return pow.Template{}, nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	tip := s.tip()
	ts := l.now()
	if ts <= tip.Timestamp {
		ts = tip.Timestamp + 1
	}
	return pow.Template{
		ShardID:      shardID,
		Height:       tip.Height + 1,
		PrevHash:     tip.Hash,
		Transactions: s.pool.peek(int(l.rules.Shards.MaxBlockTxs)),
		Timestamp:    ts,
		Difficulty:   l.nextDifficulty(s),
		PoH:          l.poh.Current(),
	}, s.tipChanged, nil
}

// nextDifficulty expects s.mu held.
func (l *Ledger) nextDifficulty(s *shard) uint64 {
	recent := s.blocks
	if n := len(recent); n > 2 {
		recent = recent[n-2:]
	}
	return pow.AdjustDifficulty(recent, l.rules.Mining)
}

// AppendMined links a block found by a local worker.
func (l *Ledger) AppendMined(b *inter.Block) error {
	return l.append(b, "local")
}

// OnBlockReceived handles a block announced by a peer. A block that does
// not extend the current tip, or fails any integrity check, is dropped and
// the shard is left unchanged.
func (l *Ledger) OnBlockReceived(shardID uint32, b *inter.Block) error {
	if b.ShardID != shardID {
		return l.drop(b, "remote", fmt.Errorf("%w: announced for %d, block says %d", ErrWrongShard, shardID, b.ShardID))
	}
	return l.append(b, "remote")
}

func (l *Ledger) append(b *inter.Block, origin string) error {
	s, err := l.shard(b.ShardID)
	if err != nil {
		return l.drop(b, origin, err)
	}
	if err := l.checkBlock(b); err != nil {
		return l.drop(b, origin, err)
	}

	start := time.Now()
	l.appendMu.Lock()
	s.mu.Lock()
	if err := l.checkLinkage(s, b); err != nil {
		s.mu.Unlock()
		l.appendMu.Unlock()
		return l.drop(b, origin, err)
	}
	s.blocks = append(s.blocks, b)
	rec := l.poh.Advance(b.ShardID, b.Hash)
	close(s.tipChanged)
	s.tipChanged = make(chan struct{})
	l.appendMu.Unlock()

	receipts := l.processor.Process(s.state, b)
	s.pool.remove(b.TxHashes())
	s.mu.Unlock()

	for _, r := range receipts {
		l.receipts.Add(r.TxHash, r)
		txApplied.WithLabelValues(r.Outcome.String()).Inc()
	}
	l.byHash.Add(b.Hash, b)
	blocksAppended.WithLabelValues(origin).Inc()
	pohSeq.Set(float64(rec.Seq))

	l.log.WithFields(logrus.Fields{
		"shard":   b.ShardID,
		"height":  b.Height,
		"hash":    b.Hash.Hex(),
		"txs":     len(b.Transactions),
		"diff":    b.Difficulty,
		"poh":     rec.Seq,
		"origin":  origin,
		"elapsed": time.Since(start),
	}).Info("New block")
	return nil
}

func (l *Ledger) drop(b *inter.Block, origin string, err error) error {
	reason := dropReason(err)
	blocksDropped.WithLabelValues(reason).Inc()
	entry := l.log.WithFields(logrus.Fields{
		"shard":  b.ShardID,
		"height": b.Height,
		"hash":   b.Hash.Hex(),
		"reason": reason,
	}).WithError(err)
	switch {
	case reason == "known":
		entry.Debug("Ignored known block")
	case reason == "linkage" && origin == "local":
		entry.Debug("Mined block went stale")
	default:
		entry.Warn("Dropped block")
	}
	return err
}
