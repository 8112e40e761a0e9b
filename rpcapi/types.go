package rpcapi

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/rony4d/go-shardchain/execcore"
	"github.com/rony4d/go-shardchain/inter"
)

// RPCTransaction is the JSON form of a transaction.
type RPCTransaction struct {
	Hash      common.Hash    `json:"hash"`
	Sender    common.Address `json:"sender"`
	Receiver  common.Address `json:"receiver"`
	Amount    hexutil.Uint64 `json:"amount"`
	GasLimit  hexutil.Uint64 `json:"gasLimit"`
	Contract  hexutil.Bytes  `json:"contract,omitempty"`
	Signature hexutil.Bytes  `json:"signature,omitempty"`
}

// RPCBlock is the JSON form of a block.
type RPCBlock struct {
	ShardID      uint32           `json:"shard"`
	Height       hexutil.Uint64   `json:"height"`
	Hash         common.Hash      `json:"hash"`
	PrevHash     common.Hash      `json:"prevHash"`
	MerkleRoot   common.Hash      `json:"merkleRoot"`
	PoH          common.Hash      `json:"poh"`
	Timestamp    hexutil.Uint64   `json:"timestamp"`
	Nonce        hexutil.Uint64   `json:"nonce"`
	Difficulty   hexutil.Uint64   `json:"difficulty"`
	Transactions []RPCTransaction `json:"transactions"`
}

// RPCReceipt is the JSON form of a receipt.
type RPCReceipt struct {
	TxHash  common.Hash    `json:"txHash"`
	ShardID uint32         `json:"shard"`
	Block   hexutil.Uint64 `json:"block"`
	Outcome string         `json:"outcome"`
	GasUsed hexutil.Uint64 `json:"gasUsed"`
	Error   string         `json:"error,omitempty"`
}

func newRPCTransaction(tx *inter.Transaction) RPCTransaction {
	return RPCTransaction{
		Hash:      tx.Hash(),
		Sender:    tx.Sender,
		Receiver:  tx.Receiver,
		Amount:    hexutil.Uint64(tx.Amount),
		GasLimit:  hexutil.Uint64(tx.GasLimit),
		Contract:  tx.Contract,
		Signature: tx.Signature,
	}
}

func newRPCBlock(b *inter.Block) RPCBlock {
	txs := make([]RPCTransaction, len(b.Transactions))
	for i, tx := range b.Transactions {
		txs[i] = newRPCTransaction(tx)
	}
	return RPCBlock{
		ShardID:      b.ShardID,
		Height:       hexutil.Uint64(b.Height),
		Hash:         b.Hash,
		PrevHash:     b.PrevHash,
		MerkleRoot:   b.MerkleRoot,
		PoH:          b.PoH,
		Timestamp:    hexutil.Uint64(b.Timestamp),
		Nonce:        hexutil.Uint64(b.Nonce),
		Difficulty:   hexutil.Uint64(b.Difficulty),
		Transactions: txs,
	}
}

func newRPCReceipt(r *execcore.Receipt) RPCReceipt {
	out := RPCReceipt{
		TxHash:  r.TxHash,
		ShardID: r.ShardID,
		Block:   hexutil.Uint64(r.Block),
		Outcome: r.Outcome.String(),
		GasUsed: hexutil.Uint64(r.GasUsed),
	}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return out
}
