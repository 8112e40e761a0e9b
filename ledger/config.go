package ledger

// Config sizes the ledger's in-memory indexes.
type Config struct {
	// ReceiptCacheSize is the number of recent receipts kept for queries.
	ReceiptCacheSize int
	// BlockCacheSize is the number of blocks indexed by hash.
	BlockCacheSize int
}

// DefaultConfig returns the ledger defaults.
func DefaultConfig() Config {
	return Config{
		ReceiptCacheSize: 16384,
		BlockCacheSize:   4096,
	}
}

// LiteConfig returns small indexes for tests and development.
func LiteConfig() Config {
	return Config{
		ReceiptCacheSize: 256,
		BlockCacheSize:   128,
	}
}
