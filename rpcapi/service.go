// Package rpcapi exposes the ledger to wallets over JSON-RPC 2.0.
//
// Methods live under the "ledger" service: ledger.Submit,
// ledger.GetBlocks, ledger.GetBalance, ledger.GetReceipt and ledger.GetPoH.
package rpcapi

import (
	"errors"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/gorilla/rpc/v2"
	"github.com/gorilla/rpc/v2/json2"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-shardchain/execcore"
	"github.com/rony4d/go-shardchain/inter"
	"github.com/rony4d/go-shardchain/shardnet"
)

// ServiceName is the JSON-RPC namespace of Service.
const ServiceName = "ledger"

// MaxBlocksPerCall caps GetBlocks replies.
const MaxBlocksPerCall = 256

var ErrReceiptNotFound = errors.New("receipt not found")

// Backend is the ledger as seen by the API.
type Backend interface {
	Rules() shardnet.Rules
	Submit(tx *inter.Transaction) (common.Hash, error)
	Blocks(shardID uint32) ([]*inter.Block, error)
	Balance(addr common.Address) (uint64, bool)
	Receipt(hash common.Hash) (*execcore.Receipt, bool)
	PoH() (common.Hash, uint64)
}

// NewHandler serves Service over HTTP.
func NewHandler(backend Backend, log logrus.FieldLogger) (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json2.NewCodec(), "application/json")
	server.RegisterCodec(json2.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&Service{backend: backend, log: log}, ServiceName); err != nil {
		return nil, err
	}
	return server, nil
}

// Service implements the API methods.
type Service struct {
	backend Backend
	log     logrus.FieldLogger
}

// SubmitArgs are the arguments to Submit.
type SubmitArgs struct {
	Sender    common.Address `json:"sender"`
	Receiver  common.Address `json:"receiver"`
	Amount    hexutil.Uint64 `json:"amount"`
	GasLimit  hexutil.Uint64 `json:"gasLimit"`
	Contract  hexutil.Bytes  `json:"contract"`
	Signature hexutil.Bytes  `json:"signature"`
}

// SubmitReply is the reply from Submit.
type SubmitReply struct {
	Hash    common.Hash `json:"hash"`
	ShardID uint32      `json:"shard"`
}

// Submit queues a transaction on its home shard.
func (s *Service) Submit(_ *http.Request, args *SubmitArgs, reply *SubmitReply) error {
	tx := &inter.Transaction{
		Sender:    args.Sender,
		Receiver:  args.Receiver,
		Amount:    uint64(args.Amount),
		GasLimit:  uint64(args.GasLimit),
		Contract:  args.Contract,
		Signature: args.Signature,
	}
	if len(tx.Contract) == 0 {
		tx.Contract = nil
	}
	if len(tx.Signature) == 0 {
		tx.Signature = nil
	}
	hash, err := s.backend.Submit(tx)
	if err != nil {
		s.log.WithField("hash", hash.Hex()).WithError(err).Debug("Rejected submitted transaction")
		return err
	}
	reply.Hash = hash
	reply.ShardID = s.backend.Rules().ShardOf(tx.Sender)
	return nil
}

// GetBlocksArgs are the arguments to GetBlocks.
type GetBlocksArgs struct {
	ShardID uint32         `json:"shard"`
	From    hexutil.Uint64 `json:"from"`
	Limit   hexutil.Uint64 `json:"limit"`
}

// GetBlocksReply is the reply from GetBlocks.
type GetBlocksReply struct {
	Blocks []RPCBlock `json:"blocks"`
}

// GetBlocks lists a shard's blocks from height From on, at most Limit of
// them (MaxBlocksPerCall when zero or larger).
func (s *Service) GetBlocks(_ *http.Request, args *GetBlocksArgs, reply *GetBlocksReply) error {
	blocks, err := s.backend.Blocks(args.ShardID)
	if err != nil {
		return err
	}
	limit := int(args.Limit)
	if limit == 0 || limit > MaxBlocksPerCall {
		limit = MaxBlocksPerCall
	}
	reply.Blocks = []RPCBlock{}
	for _, b := range blocks {
		if uint64(b.Height) < uint64(args.From) {
			continue
		}
		if len(reply.Blocks) == limit {
			break
		}
		reply.Blocks = append(reply.Blocks, newRPCBlock(b))
	}
	return nil
}

// GetBalanceArgs are the arguments to GetBalance.
type GetBalanceArgs struct {
	Address common.Address `json:"address"`
}

// GetBalanceReply is the reply from GetBalance. Spendable includes the
// initial grant of accounts that have not been stored yet.
type GetBalanceReply struct {
	ShardID   uint32         `json:"shard"`
	Balance   hexutil.Uint64 `json:"balance"`
	Spendable hexutil.Uint64 `json:"spendable"`
	Exists    bool           `json:"exists"`
}

// GetBalance reads an account on its home shard.
func (s *Service) GetBalance(_ *http.Request, args *GetBalanceArgs, reply *GetBalanceReply) error {
	rules := s.backend.Rules()
	bal, ok := s.backend.Balance(args.Address)
	reply.ShardID = rules.ShardOf(args.Address)
	reply.Balance = hexutil.Uint64(bal)
	reply.Exists = ok
	reply.Spendable = reply.Balance
	if !ok {
		reply.Spendable = hexutil.Uint64(rules.Economy.InitialBalance)
	}
	return nil
}

// GetReceiptArgs are the arguments to GetReceipt.
type GetReceiptArgs struct {
	Hash common.Hash `json:"hash"`
}

// GetReceipt returns the receipt of a recently applied transaction.
func (s *Service) GetReceipt(_ *http.Request, args *GetReceiptArgs, reply *RPCReceipt) error {
	r, ok := s.backend.Receipt(args.Hash)
	if !ok {
		return ErrReceiptNotFound
	}
	*reply = newRPCReceipt(r)
	return nil
}

// GetPoHArgs are the arguments to GetPoH.
type GetPoHArgs struct{}

// GetPoHReply is the reply from GetPoH.
type GetPoHReply struct {
	Value common.Hash    `json:"value"`
	Seq   hexutil.Uint64 `json:"seq"`
}

// GetPoH returns the proof-of-history accumulator.
func (s *Service) GetPoH(_ *http.Request, _ *GetPoHArgs, reply *GetPoHReply) error {
	value, seq := s.backend.PoH()
	reply.Value = value
	reply.Seq = hexutil.Uint64(seq)
	return nil
}
