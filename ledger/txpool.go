package ledger

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-shardchain/inter"
)

// txPool keeps a shard's pending transactions in arrival order. The owning
// shard's lock guards it.
type txPool struct {
	max     int
	pending []*inter.Transaction
	known   map[common.Hash]struct{}
}

func newTxPool(max int) *txPool {
	return &txPool{
		max:   max,
		known: make(map[common.Hash]struct{}),
	}
}

func (p *txPool) add(hash common.Hash, tx *inter.Transaction) error {
	if _, ok := p.known[hash]; ok {
		return ErrKnownTransaction
	}
	if len(p.pending) >= p.max {
		return ErrPoolFull
	}
	p.known[hash] = struct{}{}
	p.pending = append(p.pending, tx)
	return nil
}

func (p *txPool) has(hash common.Hash) bool {
	_, ok := p.known[hash]
	return ok
}

// peek returns up to n oldest transactions without removing them.
func (p *txPool) peek(n int) []*inter.Transaction {
	if n > len(p.pending) {
		n = len(p.pending)
	}
	return append([]*inter.Transaction(nil), p.pending[:n]...)
}

// remove drops the given transactions wherever they are in the queue.
func (p *txPool) remove(hashes []common.Hash) {
	drop := make(map[common.Hash]struct{}, len(hashes))
	for _, h := range hashes {
		if _, ok := p.known[h]; ok {
			drop[h] = struct{}{}
			delete(p.known, h)
		}
	}
	if len(drop) == 0 {
		return
	}
	kept := p.pending[:0]
	for _, tx := range p.pending {
		if _, ok := drop[tx.Hash()]; !ok {
			kept = append(kept, tx)
		}
	}
	for i := len(kept); i < len(p.pending); i++ {
		p.pending[i] = nil
	}
	p.pending = kept
}

func (p *txPool) len() int {
	return len(p.pending)
}
