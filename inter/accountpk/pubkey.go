// Package accountpk holds account public keys and the address derivation
// the ledger uses to bind a signature to a sender.
//
// The canonical encoding of a key is its type byte followed by the raw key,
// and an account address is the last 20 bytes of the Keccak-256 hash of that
// encoding, so each public key maps to exactly one address.
package accountpk

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrEmptyPubKey     = errors.New("empty pubkey")
	ErrUnsupportedType = errors.New("unsupported pubkey type")
)

// PubKey is an account public key tagged with its signature scheme.
type PubKey struct {
	Type uint8
	Raw  []byte
}

// Types lists the supported key schemes.
var Types = struct {
	Secp256k1 uint8
}{
	Secp256k1: 0xc0,
}

// FromECDSA wraps an uncompressed secp256k1 key.
func FromECDSA(pub *ecdsa.PublicKey) PubKey {
	return PubKey{
		Type: Types.Secp256k1,
		Raw:  crypto.FromECDSAPub(pub),
	}
}

func (pk PubKey) Empty() bool {
	return len(pk.Raw) == 0 && pk.Type == 0
}

// Bytes returns [Type] ++ Raw.
func (pk PubKey) Bytes() []byte {
	return append([]byte{pk.Type}, pk.Raw...)
}

func (pk PubKey) String() string {
	return "0x" + common.Bytes2Hex(pk.Bytes())
}

// Address derives the account address owned by the key.
func (pk PubKey) Address() common.Address {
	return common.BytesToAddress(crypto.Keccak256(pk.Bytes())[12:])
}

// ECDSA decodes a secp256k1 key.
func (pk PubKey) ECDSA() (*ecdsa.PublicKey, error) {
	if pk.Type != Types.Secp256k1 {
		return nil, fmt.Errorf("%w: 0x%x", ErrUnsupportedType, pk.Type)
	}
	return crypto.UnmarshalPubkey(pk.Raw)
}

func (pk PubKey) Copy() PubKey {
	return PubKey{
		Type: pk.Type,
		Raw:  common.CopyBytes(pk.Raw),
	}
}

func FromString(str string) (PubKey, error) {
	return FromBytes(common.FromHex(str))
}

func FromBytes(b []byte) (PubKey, error) {
	if len(b) == 0 {
		return PubKey{}, ErrEmptyPubKey
	}
	return PubKey{Type: b[0], Raw: common.CopyBytes(b[1:])}, nil
}

func (pk *PubKey) MarshalText() ([]byte, error) {
	return []byte(pk.String()), nil
}

func (pk *PubKey) UnmarshalText(input []byte) error {
	res, err := FromString(string(input))
	if err != nil {
		return err
	}
	*pk = res
	return nil
}
