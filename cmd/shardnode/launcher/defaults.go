package launcher

import "time"

// Defaults bundles the baseline configuration values the launcher uses
// before presets, config files and flags override them.

type Defaults struct {
	Node    NodeDefaults
	Network NetworkDefaults
	Storage StorageDefaults
	RPC     RPCDefaults
	Metrics MetricsDefaults
	Mining  MiningDefaults
	Logging LoggingDefaults
}

// NodeDefaults captures top-level node settings.

type NodeDefaults struct {
	DataDir string //	Filesystem root of the node. The snapshot database lives in <datadir>/chaindata.
	Name    string //	Node identity used on the gossip hub and in log lines.
}

// NetworkDefaults selects the network rules.
type NetworkDefaults struct {
	Name string //	One of main, test or fake. Every node of a network must agree on it.
}

// StorageDefaults configures the snapshot store.
type StorageDefaults struct {
	Preset           string        //	Resource preset applied before the config file (dev, default, full).
	InMemory         bool          //	Keep the store in memory; nothing survives a restart.
	CacheMB          int           //	LevelDB cache size.
	Handles          int           //	LevelDB open file limit.
	SnapshotInterval time.Duration //	Period of background snapshots. A final snapshot is always written on shutdown.
	ReceiptCache     int           //	Transaction receipts kept in memory for queries.
}

// RPCDefaults captures the JSON-RPC server options.
type RPCDefaults struct {
	EnableHTTP bool   //	Toggle for the JSON-RPC HTTP server.
	HTTPAddr   string //	Interface the server binds to.
	HTTPPort   int    //	TCP port, 18545 by default.
}

type MetricsDefaults struct {
	Enable   bool   //	Serve Prometheus metrics on /metrics.
	HTTPAddr string //	Interface the metrics server binds to.
	HTTPPort int    //	TCP port, 6060 by default.
}

// MiningDefaults control the proof-of-work workers.
type MiningDefaults struct {
	Enabled bool          //	Run one worker per mined shard.
	Shards  []uint32      //	Shards to mine; empty means all of them.
	Timeout time.Duration //	Budget of one nonce search before the template is rebuilt.
}

// LoggingDefaults controls log verbosity/format.
type LoggingDefaults struct {
	Verbosity int    //	Log level numeric (0=fatal, 1=error, 2=warn, 3=info, 4=debug, 5=trace).
	Format    string //	Log output format (text vs json).
	Color     bool   //	Whether to use ANSI color codes in logs.
	SentryDSN string //	When set, warnings and errors are also reported to Sentry.
}

// DefaultConfig returns a fully populated Defaults instance.

func DefaultConfig() Defaults {
	return Defaults{
		Node: NodeDefaults{
			DataDir: "~/.shardchain",
			Name:    "shardnode",
		},
		Network: NetworkDefaults{
			Name: "main",
		},
		Storage: StorageDefaults{
			Preset:           "default",
			CacheMB:          256,
			Handles:          256,
			SnapshotInterval: time.Minute,
			ReceiptCache:     16384,
		},
		RPC: RPCDefaults{
			EnableHTTP: false,
			HTTPAddr:   "127.0.0.1",
			HTTPPort:   18545,
		},
		Metrics: MetricsDefaults{
			Enable:   false,
			HTTPAddr: "127.0.0.1",
			HTTPPort: 6060,
		},
		Mining: MiningDefaults{
			Enabled: false,
			Timeout: time.Minute,
		},
		Logging: LoggingDefaults{
			Verbosity: 3,
			Format:    "text",
			Color:     true,
		},
	}
}
