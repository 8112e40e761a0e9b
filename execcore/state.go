package execcore

import (
	"bytes"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-shardchain/vm"
)

// StateDB is the mutable account and contract state of one shard.
type StateDB interface {
	// Balance returns the stored balance and whether the account exists.
	Balance(addr common.Address) (uint64, bool)
	SetBalance(addr common.Address, v uint64)

	vm.Storage
}

// Account is a balance entry in canonical order.
type Account struct {
	Address common.Address
	Balance uint64
}

// StorageEntry is a contract storage slot in canonical order.
type StorageEntry struct {
	Key   string
	Value []byte
}

// ShardState is the in-memory StateDB. It is not safe for concurrent use;
// the owning shard serializes access.
type ShardState struct {
	balances map[common.Address]uint64
	storage  map[string][]byte
}

func NewShardState() *ShardState {
	return &ShardState{
		balances: make(map[common.Address]uint64),
		storage:  make(map[string][]byte),
	}
}

// NewShardStateFrom rebuilds a state from its canonical entries.
func NewShardStateFrom(accounts []Account, storage []StorageEntry) *ShardState {
	s := NewShardState()
	for _, a := range accounts {
		s.balances[a.Address] = a.Balance
	}
	for _, e := range storage {
		s.storage[e.Key] = common.CopyBytes(e.Value)
	}
	return s
}

func (s *ShardState) Balance(addr common.Address) (uint64, bool) {
	v, ok := s.balances[addr]
	return v, ok
}

func (s *ShardState) SetBalance(addr common.Address, v uint64) {
	s.balances[addr] = v
}

func (s *ShardState) GetStorage(key string) ([]byte, bool) {
	v, ok := s.storage[key]
	return v, ok
}

func (s *ShardState) SetStorage(key string, value []byte) {
	s.storage[key] = common.CopyBytes(value)
}

// Accounts lists balances sorted by address.
func (s *ShardState) Accounts() []Account {
	var out []Account
	for addr, bal := range s.balances {
		out = append(out, Account{Address: addr, Balance: bal})
	}
	sort.Slice(out, func(i, j int) bool {
		return bytes.Compare(out[i].Address[:], out[j].Address[:]) < 0
	})
	return out
}

// StorageEntries lists storage sorted by key.
func (s *ShardState) StorageEntries() []StorageEntry {
	var out []StorageEntry
	for k, v := range s.storage {
		out = append(out, StorageEntry{Key: k, Value: common.CopyBytes(v)})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key < out[j].Key
	})
	return out
}

func (s *ShardState) Copy() *ShardState {
	return NewShardStateFrom(s.Accounts(), s.StorageEntries())
}
