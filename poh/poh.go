// Package poh maintains the proof-of-history accumulator.
//
// The accumulator is a hash chain shared by all shards: every appended block
// folds its hash into the running value,
//
//	poh' = keccak256(poh ‖ blockHash)
//
// so the sequence of values orders appends across the whole network. Miners
// embed the current value in their seal preimage.
package poh

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrRecordSequence = errors.New("poh record out of sequence")
	ErrRecordValue    = errors.New("poh record value mismatch")
)

// Record is one advance of the accumulator.
type Record struct {
	Seq       uint64
	ShardID   uint32
	BlockHash common.Hash
	Value     common.Hash
}

// Next folds blockHash into prev.
func Next(prev, blockHash common.Hash) common.Hash {
	return crypto.Keccak256Hash(prev[:], blockHash[:])
}

// Accumulator is safe for concurrent use. Advances are expected to be
// serialized by the caller together with the block append they record.
type Accumulator struct {
	mu      sync.RWMutex
	seed    common.Hash
	value   common.Hash
	records []Record
}

// New starts an accumulator at seed.
func New(seed common.Hash) *Accumulator {
	return &Accumulator{seed: seed, value: seed}
}

// Restore rebuilds an accumulator from its record log after checking it.
func Restore(seed common.Hash, records []Record) (*Accumulator, error) {
	if err := VerifyRecords(seed, records); err != nil {
		return nil, err
	}
	a := New(seed)
	if n := len(records); n > 0 {
		a.records = append(make([]Record, 0, n), records...)
		a.value = records[n-1].Value
	}
	return a, nil
}

// Seed is the value before the first advance.
func (a *Accumulator) Seed() common.Hash {
	return a.seed
}

// Current returns the latest value.
func (a *Accumulator) Current() common.Hash {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// Seq returns the number of advances so far.
func (a *Accumulator) Seq() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return uint64(len(a.records))
}

// Advance folds the hash of a block appended to shardID.
func (a *Accumulator) Advance(shardID uint32, blockHash common.Hash) Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.value = Next(a.value, blockHash)
	rec := Record{
		Seq:       uint64(len(a.records)) + 1,
		ShardID:   shardID,
		BlockHash: blockHash,
		Value:     a.value,
	}
	a.records = append(a.records, rec)
	return rec
}

// Records returns a copy of the record log, oldest first.
func (a *Accumulator) Records() []Record {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return append([]Record(nil), a.records...)
}

// VerifyRecords recomputes every record starting from seed.
func VerifyRecords(seed common.Hash, records []Record) error {
	value := seed
	for i, rec := range records {
		if rec.Seq != uint64(i)+1 {
			return fmt.Errorf("%w: record %d has seq %d", ErrRecordSequence, i, rec.Seq)
		}
		value = Next(value, rec.BlockHash)
		if rec.Value != value {
			return fmt.Errorf("%w: seq %d", ErrRecordValue, rec.Seq)
		}
	}
	return nil
}
