// Package execcore applies transactions to shard state.
//
// A transaction is first validated: a present signature must come from the
// sender, the sender must hold the amount, the gas limit must be within the
// network maximum and the receiver credit must not overflow. A failing
// validation changes nothing. Otherwise the amount moves from sender to
// receiver and the attached contract, if any, runs. A contract failure does
// not undo the transfer (fail-forward). Gas is metered but not charged to
// the sender's balance.
//
// An account that has never been stored starts with the network's initial
// balance when it sends; the grant is materialized with the first accepted
// transaction.
package execcore

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/shardnet"
	"github.com/rony4d/go-shardchain/vm"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance for transfer")
	ErrGasLimitExceeded    = errors.New("gas limit exceeds network maximum")
	ErrBalanceOverflow     = errors.New("receiver balance overflow")
)

// StateProcessor applies transactions under one set of network rules.
type StateProcessor struct {
	rules       shardnet.Rules
	interpreter *vm.Interpreter
}

func NewStateProcessor(rules shardnet.Rules) *StateProcessor {
	return &StateProcessor{
		rules:       rules,
		interpreter: vm.NewInterpreter(rules.VM),
	}
}

// getOrInit returns the sender's spendable balance, applying the faucet
// grant to accounts not stored yet.
func (p *StateProcessor) getOrInit(statedb StateDB, addr common.Address) uint64 {
	if bal, ok := statedb.Balance(addr); ok {
		return bal
	}
	return p.rules.Economy.InitialBalance
}

// Check validates tx against statedb without modifying it.
func (p *StateProcessor) Check(statedb StateDB, tx *inter.Transaction) error {
	if tx.Signed() {
		if err := tx.VerifySignature(); err != nil {
			return err
		}
	}
	if tx.GasLimit > p.rules.Economy.MaxGasLimit {
		return fmt.Errorf("%w: %d > %d", ErrGasLimitExceeded, tx.GasLimit, p.rules.Economy.MaxGasLimit)
	}
	bal := p.getOrInit(statedb, tx.Sender)
	if bal < tx.Amount {
		return fmt.Errorf("%w: have %d, want %d", ErrInsufficientBalance, bal, tx.Amount)
	}
	if tx.Receiver != tx.Sender {
		recv, _ := statedb.Balance(tx.Receiver)
		if recv+tx.Amount < recv {
			return ErrBalanceOverflow
		}
	}
	return nil
}

// Apply validates and executes tx.
func (p *StateProcessor) Apply(statedb StateDB, tx *inter.Transaction) *Receipt {
	receipt := &Receipt{TxHash: tx.Hash()}
	if err := p.Check(statedb, tx); err != nil {
		receipt.Outcome = Rejected
		receipt.Err = err
		return receipt
	}

	statedb.SetBalance(tx.Sender, p.getOrInit(statedb, tx.Sender)-tx.Amount)
	recv, _ := statedb.Balance(tx.Receiver)
	statedb.SetBalance(tx.Receiver, recv+tx.Amount)

	receipt.Outcome = Success
	if tx.HasContract() {
		res := p.interpreter.Run(tx.Contract, tx.Amount, tx.GasLimit, statedb)
		receipt.GasUsed = res.GasUsed
		if res.Failed() {
			receipt.Outcome = ContractFailed
			receipt.Err = res.Err
		}
	}
	return receipt
}

// Process applies the transactions of b in order.
func (p *StateProcessor) Process(statedb StateDB, b *inter.Block) []*Receipt {
	receipts := make([]*Receipt, len(b.Transactions))
	for i, tx := range b.Transactions {
		r := p.Apply(statedb, tx)
		r.ShardID = b.ShardID
		r.Block = b.Height
		receipts[i] = r
	}
	return receipts
}
