package shardnet

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-shardchain/inter"
)

func TestNetworkConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant uint64
		want     uint64
	}{
		{"MainNetworkID", MainNetworkID, 0x5d0},
		{"TestNetworkID", TestNetworkID, 0x5d1},
		{"FakeNetworkID", FakeNetworkID, 0x5d2},
		{"DefaultInitialBalance", DefaultInitialBalance, 10000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.want {
				t.Errorf("%s = %d, want %d", tt.name, tt.constant, tt.want)
			}
		})
	}
}

func TestPresetRules(t *testing.T) {
	tests := []struct {
		rules     Rules
		name      string
		id        uint64
		unsigned  bool
		minDiff   uint64
		blockTime time.Duration
	}{
		{MainNetRules(), "main", MainNetworkID, false, 1 << 16, 10 * time.Second},
		{TestNetRules(), "test", TestNetworkID, false, 1 << 8, 5 * time.Second},
		{FakeNetRules(), "fake", FakeNetworkID, true, 1, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := tt.rules
			if r.Name != tt.name || r.NetworkID != tt.id {
				t.Errorf("identity = %s/%d, want %s/%d", r.Name, r.NetworkID, tt.name, tt.id)
			}
			if r.Economy.AllowUnsigned != tt.unsigned {
				t.Errorf("AllowUnsigned = %v, want %v", r.Economy.AllowUnsigned, tt.unsigned)
			}
			if r.Mining.MinDifficulty != tt.minDiff {
				t.Errorf("MinDifficulty = %d, want %d", r.Mining.MinDifficulty, tt.minDiff)
			}
			if r.Mining.TargetBlockTime != inter.Timestamp(tt.blockTime) {
				t.Errorf("TargetBlockTime = %d, want %d", r.Mining.TargetBlockTime, tt.blockTime)
			}
			if r.Economy.InitialBalance != DefaultInitialBalance {
				t.Errorf("InitialBalance = %d", r.Economy.InitialBalance)
			}
			if err := r.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
		})
	}
}

func TestDefaultVMRules(t *testing.T) {
	vm := DefaultVMRules()
	if vm.PushGas != 1 || vm.AddGas != 3 || vm.StoreGas != 5 || vm.LoadGas != 3 || vm.UnknownGas != 1 {
		t.Errorf("unexpected opcode prices %+v", vm)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *Rules)
	}{
		{"no shards", func(r *Rules) { r.Shards.Count = 0 }},
		{"no block capacity", func(r *Rules) { r.Shards.MaxBlockTxs = 0 }},
		{"zero min difficulty", func(r *Rules) { r.Mining.MinDifficulty = 0 }},
		{"genesis below min", func(r *Rules) { r.Mining.GenesisDifficulty = r.Mining.MinDifficulty - 1 }},
		{"zero block time", func(r *Rules) { r.Mining.TargetBlockTime = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := MainNetRules()
			tt.mutate(&r)
			if err := r.Validate(); !errors.Is(err, ErrInvalidRules) {
				t.Errorf("Validate() = %v, want ErrInvalidRules", err)
			}
		})
	}
}

func TestShardOf(t *testing.T) {
	r := FakeNetRules()
	r.Shards.Count = 4

	for last := 0; last < 256; last++ {
		addr := common.Address{}
		addr[common.AddressLength-1] = byte(last)
		if got := r.ShardOf(addr); got != uint32(last%4) {
			t.Fatalf("ShardOf(..%02x) = %d, want %d", last, got, last%4)
		}
	}
}

func TestRulesByName(t *testing.T) {
	for _, name := range []string{"main", "mainnet", "test", "testnet", "fake", "fakenet"} {
		if _, err := RulesByName(name); err != nil {
			t.Errorf("RulesByName(%q) = %v", name, err)
		}
	}
	if _, err := RulesByName("nope"); err == nil {
		t.Error("RulesByName(nope) succeeded")
	}
}

func TestRulesString(t *testing.T) {
	r := FakeNetRules()
	var decoded Rules
	if err := json.Unmarshal([]byte(r.String()), &decoded); err != nil {
		t.Fatalf("String() is not JSON: %v", err)
	}
	if decoded != r {
		t.Errorf("decoded = %+v, want %+v", decoded, r)
	}
}
