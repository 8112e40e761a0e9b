package execcore

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/common"
)

// Outcome classifies what applying a transaction did.
type Outcome uint8

const (
	// Rejected means the transaction failed validation and nothing changed.
	Rejected Outcome = iota
	// ContractFailed means the transfer happened but the contract halted
	// with an error. Effects before the failing instruction are kept.
	ContractFailed
	// Success means the transfer happened and any contract completed.
	Success
)

func (o Outcome) String() string {
	switch o {
	case Rejected:
		return "rejected"
	case ContractFailed:
		return "contract-failed"
	case Success:
		return "success"
	default:
		return "unknown"
	}
}

// Receipt records the result of applying one transaction.
type Receipt struct {
	TxHash  common.Hash
	ShardID uint32
	Block   idx.Block
	Outcome Outcome
	GasUsed uint64
	Err     error
}

// Applied reports whether the value transfer took effect.
func (r *Receipt) Applied() bool {
	return r.Outcome != Rejected
}
