package persist

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"

	"github.com/rony4d/go-shardchain/ledger"
)

// SchemaVersion is the first byte of every stored snapshot.
const SchemaVersion byte = 1

// Encode serializes snap as SchemaVersion followed by snappy-compressed RLP.
func Encode(snap *ledger.Snapshot) ([]byte, error) {
	raw, err := rlp.EncodeToBytes(snap)
	if err != nil {
		return nil, err
	}
	blob := make([]byte, 1, 1+snappy.MaxEncodedLen(len(raw)))
	blob[0] = SchemaVersion
	return append(blob, snappy.Encode(nil, raw)...), nil
}

// Decode parses a blob produced by Encode.
func Decode(blob []byte) (*ledger.Snapshot, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty blob", ErrCorruptSnapshot)
	}
	if blob[0] != SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, blob[0])
	}
	raw, err := snappy.Decode(nil, blob[1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	snap := new(ledger.Snapshot)
	if err := rlp.DecodeBytes(raw, snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	normalize(snap)
	return snap, nil
}

// normalize turns decoded empty lists back into nil ones, as the ledger
// produces them.
func normalize(snap *ledger.Snapshot) {
	if len(snap.Shards) == 0 {
		snap.Shards = nil
	}
	if len(snap.PoH.Records) == 0 {
		snap.PoH.Records = nil
	}
	for i := range snap.Shards {
		s := &snap.Shards[i]
		if len(s.Accounts) == 0 {
			s.Accounts = nil
		}
		if len(s.Storage) == 0 {
			s.Storage = nil
		}
		for _, b := range s.Blocks {
			if len(b.Transactions) == 0 {
				b.Transactions = nil
			}
			for _, tx := range b.Transactions {
				if len(tx.Contract) == 0 {
					tx.Contract = nil
				}
				if len(tx.Signature) == 0 {
					tx.Signature = nil
				}
			}
		}
	}
}
