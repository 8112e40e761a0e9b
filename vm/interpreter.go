// Package vm executes contract bytecode against shard storage.
//
// The machine has a program counter, a stack of uint64 operands and a gas
// meter. Every instruction is charged before it executes; a program halts
// with an error when the meter passes the gas limit or when an instruction
// finds too few operands. Execution never panics the caller.
package vm

import (
	"encoding/hex"
	"errors"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-shardchain/shardnet"
)

var (
	ErrOutOfGas       = errors.New("out of gas")
	ErrStackUnderflow = errors.New("stack underflow")
	ErrStackOverflow  = errors.New("stack overflow")
)

// Storage is the contract key/value space of a shard.
type Storage interface {
	GetStorage(key string) ([]byte, bool)
	SetStorage(key string, value []byte)
}

// Result reports how a run ended.
type Result struct {
	GasUsed uint64
	Err     error
}

func (r Result) Failed() bool {
	return r.Err != nil
}

// Interpreter runs programs under one price list.
type Interpreter struct {
	rules shardnet.VMRules
}

func NewInterpreter(rules shardnet.VMRules) *Interpreter {
	return &Interpreter{rules: rules}
}

// ProgramKey is the storage slot owned by a program.
func ProgramKey(program []byte) string {
	return "contract:" + hex.EncodeToString(crypto.Keccak256(program))
}

func (in *Interpreter) cost(op OpCode) uint64 {
	switch op {
	case PUSH:
		return in.rules.PushGas
	case ADD:
		return in.rules.AddGas
	case STORE:
		return in.rules.StoreGas
	case LOAD:
		return in.rules.LoadGas
	default:
		return in.rules.UnknownGas
	}
}

// Run executes program with value as the PUSH operand. Storage writes made
// before a failing instruction are kept.
func (in *Interpreter) Run(program []byte, value, gasLimit uint64, st Storage) Result {
	var (
		key   = ProgramKey(program)
		stack = newStack(int(in.rules.MaxStackDepth))
		gas   uint64
	)
	for pc := 0; pc < len(program); pc++ {
		op := OpCode(program[pc])

		cost := in.cost(op)
		if cost > gasLimit-gas {
			return Result{GasUsed: gasLimit, Err: ErrOutOfGas}
		}
		gas += cost

		var err error
		switch op {
		case PUSH:
			err = stack.push(value)
		case ADD:
			var a, b uint64
			if a, b, err = stack.pop2(); err == nil {
				err = stack.push(a + b)
			}
		case STORE:
			var v uint64
			if v, err = stack.pop(); err == nil {
				st.SetStorage(key, bigendian.Uint64ToBytes(v))
			}
		case LOAD:
			err = stack.push(load(st, key))
		}
		if err != nil {
			return Result{GasUsed: gas, Err: err}
		}
	}
	return Result{GasUsed: gas}
}

func load(st Storage, key string) uint64 {
	raw, ok := st.GetStorage(key)
	if !ok {
		return 0
	}
	var v uint64
	for _, b := range raw {
		v = v<<8 | uint64(b)
	}
	return v
}
