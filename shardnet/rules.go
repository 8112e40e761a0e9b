// Package shardnet defines the consensus parameters of a sharded network.
//
// Rules are fixed for the lifetime of a network: every node of a network
// must run with identical Rules or it will reject its peers' blocks.
package shardnet

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-shardchain/inter"
)

const (
	MainNetworkID uint64 = 0x5d0
	TestNetworkID uint64 = 0x5d1
	FakeNetworkID uint64 = 0x5d2

	// DefaultInitialBalance is granted to an account the first time it sends.
	DefaultInitialBalance uint64 = 10000
)

var ErrInvalidRules = errors.New("invalid network rules")

// Rules describes a network.
type Rules struct {
	Name      string
	NetworkID uint64

	Shards  ShardsRules
	Economy EconomyRules
	Mining  MiningRules
	VM      VMRules
}

// ShardsRules sizes the shard set and the per-shard block contents.
type ShardsRules struct {
	// Count is the fixed number of shards.
	Count uint32

	// MaxBlockTxs caps transactions taken into one block template.
	MaxBlockTxs uint32

	// MaxPendingTxs caps each shard's transaction pool.
	MaxPendingTxs uint32
}

// EconomyRules govern balances and gas.
type EconomyRules struct {
	// InitialBalance is the faucet grant applied on an account's first send.
	InitialBalance uint64

	// MaxGasLimit is the largest gas limit a transaction may request.
	MaxGasLimit uint64

	// AllowUnsigned admits transactions without a signature through Submit.
	AllowUnsigned bool
}

// MiningRules drive proof-of-work difficulty.
type MiningRules struct {
	// TargetBlockTime is the desired spacing of blocks within one shard.
	TargetBlockTime inter.Timestamp

	// MinDifficulty floors difficulty adjustment.
	MinDifficulty uint64

	// GenesisDifficulty is the difficulty of the first mined block.
	GenesisDifficulty uint64

	// MaxFutureDrift bounds how far ahead of local time an inbound block
	// timestamp may be.
	MaxFutureDrift inter.Timestamp
}

// VMRules price contract opcodes.
type VMRules struct {
	PushGas    uint64
	AddGas     uint64
	StoreGas   uint64
	LoadGas    uint64
	UnknownGas uint64

	MaxStackDepth uint32
}

// MainNetRules returns the production network configuration.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Shards: ShardsRules{
			Count:         16,
			MaxBlockTxs:   512,
			MaxPendingTxs: 8192,
		},
		Economy: EconomyRules{
			InitialBalance: DefaultInitialBalance,
			MaxGasLimit:    1000000,
		},
		Mining: MiningRules{
			TargetBlockTime:   inter.Timestamp(10 * time.Second),
			MinDifficulty:     1 << 16,
			GenesisDifficulty: 1 << 20,
			MaxFutureDrift:    inter.Timestamp(15 * time.Second),
		},
		VM: DefaultVMRules(),
	}
}

// TestNetRules returns a smaller public network with cheaper mining.
func TestNetRules() Rules {
	r := MainNetRules()
	r.Name = "test"
	r.NetworkID = TestNetworkID
	r.Shards.Count = 4
	r.Mining.TargetBlockTime = inter.Timestamp(5 * time.Second)
	r.Mining.MinDifficulty = 1 << 8
	r.Mining.GenesisDifficulty = 1 << 12
	return r
}

// FakeNetRules returns rules for local development and tests: trivial
// difficulty, unsigned transactions allowed.
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Shards: ShardsRules{
			Count:         2,
			MaxBlockTxs:   64,
			MaxPendingTxs: 1024,
		},
		Economy: EconomyRules{
			InitialBalance: DefaultInitialBalance,
			MaxGasLimit:    10000,
			AllowUnsigned:  true,
		},
		Mining: MiningRules{
			TargetBlockTime:   inter.Timestamp(time.Second),
			MinDifficulty:     1,
			GenesisDifficulty: 1,
			MaxFutureDrift:    inter.Timestamp(5 * time.Second),
		},
		VM: DefaultVMRules(),
	}
}

// DefaultVMRules returns the opcode price list.
func DefaultVMRules() VMRules {
	return VMRules{
		PushGas:       1,
		AddGas:        3,
		StoreGas:      5,
		LoadGas:       3,
		UnknownGas:    1,
		MaxStackDepth: 1024,
	}
}

// RulesByName resolves a network name as accepted on the command line.
func RulesByName(name string) (Rules, error) {
	switch name {
	case "main", "mainnet":
		return MainNetRules(), nil
	case "test", "testnet":
		return TestNetRules(), nil
	case "fake", "fakenet":
		return FakeNetRules(), nil
	default:
		return Rules{}, fmt.Errorf("unknown network %q (valid: main, test, fake)", name)
	}
}

// ShardOf routes an account to its home shard.
func (r Rules) ShardOf(addr common.Address) uint32 {
	return uint32(addr[common.AddressLength-1]) % r.Shards.Count
}

// Validate reports parameter combinations that cannot run.
func (r Rules) Validate() error {
	switch {
	case r.Shards.Count == 0:
		return fmt.Errorf("%w: zero shards", ErrInvalidRules)
	case r.Shards.MaxBlockTxs == 0:
		return fmt.Errorf("%w: zero block capacity", ErrInvalidRules)
	case r.Mining.MinDifficulty == 0:
		return fmt.Errorf("%w: zero minimum difficulty", ErrInvalidRules)
	case r.Mining.GenesisDifficulty < r.Mining.MinDifficulty:
		return fmt.Errorf("%w: genesis difficulty below minimum", ErrInvalidRules)
	case r.Mining.TargetBlockTime == 0:
		return fmt.Errorf("%w: zero target block time", ErrInvalidRules)
	}
	return nil
}

// String returns the rules as JSON.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
