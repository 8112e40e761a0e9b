// This file maps the CLI context and an optional config file onto Config.

package launcher

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-shardchain/integration"
	"github.com/rony4d/go-shardchain/ledger"
	"github.com/rony4d/go-shardchain/shardnet"
)

// Config aggregates every subsystem's configuration the launcher needs.
type Config struct {
	Node    NodeConfig
	Network NetworkConfig
	Storage StorageConfig
	Mining  MiningConfig
}

type NodeConfig struct {
	DataDir string
	Name    string
	RPC     RPCConfig
	Metrics MetricsConfig
	Logging LoggingConfig
}

type RPCConfig struct {
	HTTPEnabled bool
	HTTPAddr    string
	HTTPPort    int
}

type MetricsConfig struct {
	Enabled  bool
	HTTPAddr string
	HTTPPort int
}

type LoggingConfig struct {
	Verbosity int
	Format    string
	Color     bool
	SentryDSN string
}

type NetworkConfig struct {
	Name string
}

type StorageConfig struct {
	Preset           string
	InMemory         bool
	CacheMB          int
	Handles          int
	SnapshotInterval time.Duration
	ReceiptCache     int
}

type MiningConfig struct {
	Enabled bool
	Shards  []uint32
	Timeout time.Duration
}

// -----------------------------------------------------------------------------
// Default config + builders
// -----------------------------------------------------------------------------

func defaultConfig() Config {
	d := DefaultConfig()
	return Config{
		Node: NodeConfig{
			DataDir: resolvePath(d.Node.DataDir),
			Name:    d.Node.Name,
			RPC: RPCConfig{
				HTTPEnabled: d.RPC.EnableHTTP,
				HTTPAddr:    d.RPC.HTTPAddr,
				HTTPPort:    d.RPC.HTTPPort,
			},
			Metrics: MetricsConfig{
				Enabled:  d.Metrics.Enable,
				HTTPAddr: d.Metrics.HTTPAddr,
				HTTPPort: d.Metrics.HTTPPort,
			},
			Logging: LoggingConfig{
				Verbosity: d.Logging.Verbosity,
				Format:    d.Logging.Format,
				Color:     d.Logging.Color,
				SentryDSN: d.Logging.SentryDSN,
			},
		},
		Network: NetworkConfig{Name: d.Network.Name},
		Storage: StorageConfig{
			Preset:           d.Storage.Preset,
			InMemory:         d.Storage.InMemory,
			CacheMB:          d.Storage.CacheMB,
			Handles:          d.Storage.Handles,
			SnapshotInterval: d.Storage.SnapshotInterval,
			ReceiptCache:     d.Storage.ReceiptCache,
		},
		Mining: MiningConfig{
			Enabled: d.Mining.Enabled,
			Shards:  d.Mining.Shards,
			Timeout: d.Mining.Timeout,
		},
	}
}

// MakeAllConfigs merges, in order: defaults, the preset named by --preset
// (dev when --fakenet is given), the --config file and CLI overrides.
func MakeAllConfigs(ctx *cli.Context) (Config, error) {
	cfg := defaultConfig()

	preset := ""
	if ctx.Bool("fakenet") {
		cfg.Network.Name = "fake"
		preset = "dev"
	}
	if ctx.IsSet("preset") {
		preset = ctx.String("preset")
	}
	if preset != "" {
		if err := applyPreset(&cfg, preset); err != nil {
			return Config{}, err
		}
	}

	if file := ctx.String("config"); file != "" {
		if err := loadConfigFile(file, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", file, err)
		}
	}

	if err := applyCLIOverrides(ctx, &cfg); err != nil {
		return Config{}, err
	}

	if !cfg.Storage.InMemory {
		if err := ensureDir(cfg.Node.DataDir); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}

// -----------------------------------------------------------------------------
// Preset / config-file / CLI wiring
// -----------------------------------------------------------------------------

func applyPreset(cfg *Config, name string) error {
	p, err := integration.GetPresetByName(name)
	if err != nil {
		return err
	}
	target := integration.PresetConfig{
		Name:             cfg.Storage.Preset,
		CacheMB:          cfg.Storage.CacheMB,
		Handles:          cfg.Storage.Handles,
		InMemory:         cfg.Storage.InMemory,
		SnapshotInterval: cfg.Storage.SnapshotInterval,
		MineTimeout:      cfg.Mining.Timeout,
		ReceiptCache:     cfg.Storage.ReceiptCache,
		EnableMetrics:    cfg.Node.Metrics.Enabled,
	}
	integration.ApplyPreset(&target, p)

	cfg.Storage.Preset = target.Name
	cfg.Storage.CacheMB = target.CacheMB
	cfg.Storage.Handles = target.Handles
	cfg.Storage.InMemory = target.InMemory
	cfg.Storage.SnapshotInterval = target.SnapshotInterval
	cfg.Storage.ReceiptCache = target.ReceiptCache
	cfg.Mining.Timeout = target.MineTimeout
	cfg.Node.Metrics.Enabled = target.EnableMetrics
	return nil
}

// loadConfigFile decodes a TOML, YAML or JSON file over cfg. Keys absent
// from the file keep their current values.
func loadConfigFile(path string, cfg *Config) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return err
	}
	cfg.Node.DataDir = resolvePath(cfg.Node.DataDir)
	return nil
}

func applyCLIOverrides(ctx *cli.Context, cfg *Config) error {
	if ctx.IsSet("datadir") {
		cfg.Node.DataDir = resolvePath(ctx.String("datadir"))
	}
	if ctx.IsSet("identity") {
		cfg.Node.Name = ctx.String("identity")
	}
	if ctx.IsSet("network") {
		cfg.Network.Name = ctx.String("network")
	}

	if ctx.Bool("http") {
		cfg.Node.RPC.HTTPEnabled = true
	}
	if ctx.IsSet("http.addr") {
		cfg.Node.RPC.HTTPAddr = ctx.String("http.addr")
	}
	if ctx.IsSet("http.port") {
		cfg.Node.RPC.HTTPPort = ctx.Int("http.port")
	}
	if ctx.Bool("metrics") {
		cfg.Node.Metrics.Enabled = true
	}
	if ctx.IsSet("metrics.addr") {
		cfg.Node.Metrics.HTTPAddr = ctx.String("metrics.addr")
	}
	if ctx.IsSet("metrics.port") {
		cfg.Node.Metrics.HTTPPort = ctx.Int("metrics.port")
	}

	if ctx.IsSet("log.format") {
		cfg.Node.Logging.Format = ctx.String("log.format")
	}
	if ctx.IsSet("log.verbosity") {
		cfg.Node.Logging.Verbosity = ctx.Int("log.verbosity")
	}
	if ctx.IsSet("log.color") {
		cfg.Node.Logging.Color = ctx.Bool("log.color")
	}
	if ctx.IsSet("sentry.dsn") {
		cfg.Node.Logging.SentryDSN = ctx.String("sentry.dsn")
	}

	if ctx.IsSet("cache") {
		cfg.Storage.CacheMB = ctx.Int("cache")
	}
	if ctx.IsSet("handles") {
		cfg.Storage.Handles = ctx.Int("handles")
	}
	if ctx.Bool("inmemory") {
		cfg.Storage.InMemory = true
	}
	if ctx.IsSet("snapshot.interval") {
		cfg.Storage.SnapshotInterval = ctx.Duration("snapshot.interval")
	}
	if ctx.IsSet("receipts.cache") {
		cfg.Storage.ReceiptCache = ctx.Int("receipts.cache")
	}

	if ctx.Bool("mine") {
		cfg.Mining.Enabled = true
	}
	if ctx.IsSet("mine.shards") {
		shards, err := parseShards(ctx.String("mine.shards"))
		if err != nil {
			return err
		}
		cfg.Mining.Shards = shards
	}
	if ctx.IsSet("mine.timeout") {
		cfg.Mining.Timeout = ctx.Duration("mine.timeout")
	}
	return nil
}

// NodeConfig resolves the network rules and translates cfg for the node.
func (cfg Config) NodeConfig() (integration.Config, error) {
	rules, err := shardnet.RulesByName(cfg.Network.Name)
	if err != nil {
		return integration.Config{}, err
	}
	for _, id := range cfg.Mining.Shards {
		if id >= rules.Shards.Count {
			return integration.Config{}, fmt.Errorf("cannot mine shard %d: network %s has %d shards", id, rules.Name, rules.Shards.Count)
		}
	}

	lc := ledger.DefaultConfig()
	if cfg.Storage.ReceiptCache > 0 {
		lc.ReceiptCacheSize = cfg.Storage.ReceiptCache
	}
	out := integration.Config{
		Name:             cfg.Node.Name,
		Rules:            rules,
		DataDir:          filepath.Join(cfg.Node.DataDir, "chaindata"),
		InMemory:         cfg.Storage.InMemory,
		CacheMB:          cfg.Storage.CacheMB,
		Handles:          cfg.Storage.Handles,
		Ledger:           lc,
		SnapshotInterval: cfg.Storage.SnapshotInterval,
		Mine:             cfg.Mining.Enabled,
		MineShards:       cfg.Mining.Shards,
		MineTimeout:      cfg.Mining.Timeout,
	}
	if cfg.Node.RPC.HTTPEnabled {
		out.RPCAddr = net.JoinHostPort(cfg.Node.RPC.HTTPAddr, strconv.Itoa(cfg.Node.RPC.HTTPPort))
	}
	if cfg.Node.Metrics.Enabled {
		out.MetricsAddr = net.JoinHostPort(cfg.Node.Metrics.HTTPAddr, strconv.Itoa(cfg.Node.Metrics.HTTPPort))
	}
	return out, nil
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create datadir %s: %w", dir, err)
	}
	return nil
}

func resolvePath(p string) string {
	if strings.HasPrefix(p, "~") {
		return filepath.Join(GuessHomeDir(), strings.TrimPrefix(p, "~"))
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(GuessWorkDir(), p)
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func parseShards(raw string) ([]uint32, error) {
	var out []uint32
	for _, s := range splitCSV(raw) {
		if s == "" {
			continue
		}
		id, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid shard id %q: %w", s, err)
		}
		out = append(out, uint32(id))
	}
	return out, nil
}

func GuessWorkDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func GuessHomeDir() string {
	if dir, err := os.UserHomeDir(); err == nil {
		return dir
	}
	return "."
}
