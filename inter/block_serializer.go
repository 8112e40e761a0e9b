package inter

import (
	"github.com/Fantom-foundation/lachesis-base/inter/idx"

	"github.com/rony4d/go-shardchain/utils/cser"
)

// ProtocolMaxMsgSize is the largest encoded block accepted from the wire.
const ProtocolMaxMsgSize = 10 * 1024 * 1024

// minTxSize is a lower bound on an encoded transaction.
const minTxSize = 2*20 + 2

func (b *Block) MarshalCSER(w *cser.Writer) error {
	w.U32(b.ShardID)
	w.U64(uint64(b.Height))
	w.FixedBytes(b.PrevHash.Bytes())
	w.U64(uint64(b.Timestamp))
	w.U64(b.Nonce)
	w.U64(b.Difficulty)
	w.FixedBytes(b.PoH.Bytes())
	w.FixedBytes(b.Hash.Bytes())
	w.FixedBytes(b.MerkleRoot.Bytes())

	w.U56(uint64(len(b.Transactions)))
	for _, tx := range b.Transactions {
		if err := TransactionMarshalCSER(w, tx); err != nil {
			return err
		}
	}
	return nil
}

func (b *Block) UnmarshalCSER(r *cser.Reader) error {
	b.ShardID = r.U32()
	b.Height = idx.Block(r.U64())
	r.FixedBytes(b.PrevHash[:])
	b.Timestamp = Timestamp(r.U64())
	b.Nonce = r.U64()
	b.Difficulty = r.U64()
	r.FixedBytes(b.PoH[:])
	r.FixedBytes(b.Hash[:])
	r.FixedBytes(b.MerkleRoot[:])

	count := r.U56()
	if count > ProtocolMaxMsgSize/minTxSize {
		return cser.ErrTooLargeAlloc
	}
	b.Transactions = nil
	if count > 0 {
		b.Transactions = make([]*Transaction, count)
	}
	for i := range b.Transactions {
		tx, err := TransactionUnmarshalCSER(r)
		if err != nil {
			return err
		}
		b.Transactions[i] = tx
	}
	return nil
}

func (b *Block) MarshalBinary() ([]byte, error) {
	return cser.MarshalBinaryAdapter(b.MarshalCSER)
}

func (b *Block) UnmarshalBinary(raw []byte) error {
	return cser.UnmarshalBinaryAdapter(raw, b.UnmarshalCSER)
}

// MarshalBlock serializes a block for transport.
func MarshalBlock(b *Block) ([]byte, error) {
	return b.MarshalBinary()
}

// UnmarshalBlock parses a block produced by MarshalBlock.
func UnmarshalBlock(raw []byte) (*Block, error) {
	if len(raw) > ProtocolMaxMsgSize {
		return nil, cser.ErrTooLargeAlloc
	}
	b := &Block{}
	if err := b.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return b, nil
}
