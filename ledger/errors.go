package ledger

import "errors"

var (
	ErrUnknownShard     = errors.New("unknown shard")
	ErrCrossShard       = errors.New("cross-shard transactions are not supported")
	ErrMissingSignature = errors.New("transaction is not signed")
	ErrContractTooLarge = errors.New("contract code too large")
	ErrKnownTransaction = errors.New("transaction already known")
	ErrPoolFull         = errors.New("transaction pool is full")
)

// Block integrity errors. A block failing any of them is dropped.
var (
	ErrLinkage          = errors.New("block does not extend the shard tip")
	ErrKnownBlock       = errors.New("block already known")
	ErrWrongShard       = errors.New("block belongs to another shard")
	ErrBadHeight        = errors.New("unexpected block height")
	ErrBadTimestamp     = errors.New("block timestamp not after its parent")
	ErrFutureBlock      = errors.New("block timestamp too far in the future")
	ErrBadDifficulty    = errors.New("unexpected block difficulty")
	ErrMerkleMismatch   = errors.New("merkle root mismatch")
	ErrTooManyTxs       = errors.New("too many transactions in block")
	ErrGenesisMismatch  = errors.New("genesis block mismatch")
	ErrEmptyChain       = errors.New("shard has no blocks")
	ErrSnapshotMismatch = errors.New("snapshot does not match network")
	ErrPoHMismatch      = errors.New("poh records do not match blocks")
	ErrStateMismatch    = errors.New("stored state differs from replayed blocks")
)
