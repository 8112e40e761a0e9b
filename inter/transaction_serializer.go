package inter

import (
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/rony4d/go-shardchain/utils/cser"
)

// MaxContractSize bounds the bytecode a transaction may carry.
const MaxContractSize = 24 * 1024

// TransactionMarshalCSER writes tx. Optional fields are announced by a
// presence bit so that an absent field and an empty one encode identically.
func TransactionMarshalCSER(w *cser.Writer, tx *Transaction) error {
	w.FixedBytes(tx.Sender.Bytes())
	w.FixedBytes(tx.Receiver.Bytes())
	w.U64(tx.Amount)
	w.U64(tx.GasLimit)

	w.Bool(tx.HasContract())
	if tx.HasContract() {
		w.SliceBytes(tx.Contract)
	}
	w.Bool(tx.Signed())
	if tx.Signed() {
		w.SliceBytes(tx.Signature)
	}
	return nil
}

func TransactionUnmarshalCSER(r *cser.Reader) (*Transaction, error) {
	tx := &Transaction{}
	r.FixedBytes(tx.Sender[:])
	r.FixedBytes(tx.Receiver[:])
	tx.Amount = r.U64()
	tx.GasLimit = r.U64()

	if r.Bool() {
		tx.Contract = r.SliceBytes(MaxContractSize)
		if len(tx.Contract) == 0 {
			return nil, cser.ErrNonCanonicalEncoding
		}
	}
	if r.Bool() {
		tx.Signature = r.SliceBytes(crypto.SignatureLength)
		if len(tx.Signature) == 0 {
			return nil, cser.ErrNonCanonicalEncoding
		}
	}
	return tx, nil
}
