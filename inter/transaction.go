package inter

import (
	"crypto/ecdsa"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-shardchain/inter/accountpk"
)

var (
	ErrInvalidSig     = errors.New("invalid transaction signature")
	ErrSenderMismatch = errors.New("signer does not own sender address")
)

// Transaction moves Amount from Sender to Receiver on the sender's shard and
// optionally runs Contract. Values are immutable once signed: SignTx returns
// a new transaction instead of mutating its argument.
type Transaction struct {
	Sender    common.Address
	Receiver  common.Address
	Amount    uint64
	Contract  []byte
	GasLimit  uint64
	Signature []byte
}

// unsignedTx is every field except the signature, in wire order.
type unsignedTx struct {
	Sender   common.Address
	Receiver common.Address
	Amount   uint64
	Contract []byte
	GasLimit uint64
}

func rlpHash(x interface{}) common.Hash {
	enc, err := rlp.EncodeToBytes(x)
	if err != nil {
		// only fixed-size and byte-slice fields are encoded
		panic(err)
	}
	return crypto.Keccak256Hash(enc)
}

// SigningHash is the digest a wallet signs.
func (tx *Transaction) SigningHash() common.Hash {
	return rlpHash(unsignedTx{
		Sender:   tx.Sender,
		Receiver: tx.Receiver,
		Amount:   tx.Amount,
		Contract: tx.Contract,
		GasLimit: tx.GasLimit,
	})
}

// Hash identifies the transaction including its signature.
func (tx *Transaction) Hash() common.Hash {
	return rlpHash(tx)
}

func (tx *Transaction) Signed() bool {
	return len(tx.Signature) != 0
}

func (tx *Transaction) HasContract() bool {
	return len(tx.Contract) != 0
}

func (tx *Transaction) Copy() *Transaction {
	cp := *tx
	cp.Contract = common.CopyBytes(tx.Contract)
	cp.Signature = common.CopyBytes(tx.Signature)
	return &cp
}

// SignTx returns a signed copy of tx. The key must own tx.Sender.
func SignTx(tx *Transaction, key *ecdsa.PrivateKey) (*Transaction, error) {
	if accountpk.FromECDSA(&key.PublicKey).Address() != tx.Sender {
		return nil, ErrSenderMismatch
	}
	h := tx.SigningHash()
	sig, err := crypto.Sign(h[:], key)
	if err != nil {
		return nil, err
	}
	cp := tx.Copy()
	cp.Signature = sig
	return cp, nil
}

// SignerPubKey recovers the public key that produced the signature.
func (tx *Transaction) SignerPubKey() (accountpk.PubKey, error) {
	if len(tx.Signature) != crypto.SignatureLength {
		return accountpk.PubKey{}, ErrInvalidSig
	}
	h := tx.SigningHash()
	pub, err := crypto.SigToPub(h[:], tx.Signature)
	if err != nil {
		return accountpk.PubKey{}, ErrInvalidSig
	}
	return accountpk.FromECDSA(pub), nil
}

// VerifySignature checks that the signature was produced by the owner of
// Sender over the current field values.
func (tx *Transaction) VerifySignature() error {
	pk, err := tx.SignerPubKey()
	if err != nil {
		return err
	}
	if pk.Address() != tx.Sender {
		return ErrSenderMismatch
	}
	return nil
}

// AddressOf returns the account address owned by key.
func AddressOf(key *ecdsa.PrivateKey) common.Address {
	return accountpk.FromECDSA(&key.PublicKey).Address()
}
