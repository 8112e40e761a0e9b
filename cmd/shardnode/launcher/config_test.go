package launcher

import (
	"io/ioutil"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/urfave/cli.v1"

	"github.com/rony4d/go-shardchain/flags"
	"github.com/rony4d/go-shardchain/integration"
)

// runConfigFromArgs runs MakeAllConfigs against a synthetic CLI context.
func runConfigFromArgs(t *testing.T, args []string) (Config, error) {
	t.Helper()

	app := cli.NewApp()
	app.HideHelp = true
	app.HideVersion = true
	app.Flags = flags.AllFlags()

	var (
		got    Config
		cfgErr error
	)
	app.Action = func(c *cli.Context) error {
		got, cfgErr = MakeAllConfigs(c)
		return nil
	}
	require.NoError(t, app.Run(append([]string{"shardnode"}, args...)))
	return got, cfgErr
}

func TestMakeAllConfigsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := runConfigFromArgs(t, []string{"--datadir", dir})
	require.NoError(t, err)

	require.Equal(t, dir, cfg.Node.DataDir)
	require.Equal(t, "shardnode", cfg.Node.Name)
	require.Equal(t, "main", cfg.Network.Name)
	require.Equal(t, "default", cfg.Storage.Preset)
	require.False(t, cfg.Node.RPC.HTTPEnabled)
	require.False(t, cfg.Mining.Enabled)
	require.Equal(t, 3, cfg.Node.Logging.Verbosity)
}

func TestMakeAllConfigsFlagOverrides(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want func(t *testing.T, cfg Config)
	}{
		{
			name: "identity and network",
			args: []string{"--identity", "node-7", "--network", "test"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "node-7", cfg.Node.Name)
				require.Equal(t, "test", cfg.Network.Name)
			},
		},
		{
			name: "rpc and metrics",
			args: []string{"--http", "--http.addr", "0.0.0.0", "--http.port", "9000", "--metrics", "--metrics.port", "9100"},
			want: func(t *testing.T, cfg Config) {
				require.True(t, cfg.Node.RPC.HTTPEnabled)
				require.Equal(t, "0.0.0.0", cfg.Node.RPC.HTTPAddr)
				require.Equal(t, 9000, cfg.Node.RPC.HTTPPort)
				require.True(t, cfg.Node.Metrics.Enabled)
				require.Equal(t, 9100, cfg.Node.Metrics.HTTPPort)
			},
		},
		{
			name: "logging",
			args: []string{"--log.format", "json", "--log.verbosity", "5", "--sentry.dsn", "https://key@sentry.example.com/1"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "json", cfg.Node.Logging.Format)
				require.Equal(t, 5, cfg.Node.Logging.Verbosity)
				require.Equal(t, "https://key@sentry.example.com/1", cfg.Node.Logging.SentryDSN)
			},
		},
		{
			name: "storage",
			args: []string{"--cache", "64", "--handles", "32", "--snapshot.interval", "15s", "--receipts.cache", "100"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, 64, cfg.Storage.CacheMB)
				require.Equal(t, 32, cfg.Storage.Handles)
				require.Equal(t, 15*time.Second, cfg.Storage.SnapshotInterval)
				require.Equal(t, 100, cfg.Storage.ReceiptCache)
			},
		},
		{
			name: "mining",
			args: []string{"--mine", "--mine.shards", "0, 3", "--mine.timeout", "5s"},
			want: func(t *testing.T, cfg Config) {
				require.True(t, cfg.Mining.Enabled)
				require.Equal(t, []uint32{0, 3}, cfg.Mining.Shards)
				require.Equal(t, 5*time.Second, cfg.Mining.Timeout)
			},
		},
		{
			name: "fakenet implies dev preset",
			args: []string{"--fakenet"},
			want: func(t *testing.T, cfg Config) {
				dev := integration.DevPreset()
				require.Equal(t, "fake", cfg.Network.Name)
				require.Equal(t, "dev", cfg.Storage.Preset)
				require.True(t, cfg.Storage.InMemory)
				require.Equal(t, dev.CacheMB, cfg.Storage.CacheMB)
				require.Equal(t, dev.SnapshotInterval, cfg.Storage.SnapshotInterval)
				require.True(t, cfg.Node.Metrics.Enabled)
			},
		},
		{
			name: "flags win over preset",
			args: []string{"--preset", "full", "--cache", "8"},
			want: func(t *testing.T, cfg Config) {
				require.Equal(t, "full", cfg.Storage.Preset)
				require.Equal(t, 8, cfg.Storage.CacheMB)
				require.Equal(t, integration.FullPreset().Handles, cfg.Storage.Handles)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := runConfigFromArgs(t, append([]string{"--datadir", t.TempDir()}, tt.args...))
			require.NoError(t, err)
			tt.want(t, cfg)
		})
	}
}

func TestMakeAllConfigsErrors(t *testing.T) {
	tests := map[string][]string{
		"unknown preset": {"--preset", "archive"},
		"bad shard list": {"--mine.shards", "0,x"},
		"missing file":   {"--config", "/nonexistent/shardnode.toml"},
	}
	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := runConfigFromArgs(t, append([]string{"--datadir", t.TempDir()}, args...))
			require.Error(t, err)
		})
	}
}

func TestMakeAllConfigsConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "shardnode.toml")
	require.NoError(t, ioutil.WriteFile(file, []byte(`
[Node]
Name = "from-file"

[Node.RPC]
HTTPEnabled = true
HTTPPort = 7000

[Network]
Name = "fake"

[Storage]
SnapshotInterval = "30s"

[Mining]
Enabled = true
Shards = [1]
`), 0o644))

	cfg, err := runConfigFromArgs(t, []string{"--datadir", dir, "--config", file, "--http.port", "7001"})
	require.NoError(t, err)

	require.Equal(t, "from-file", cfg.Node.Name)
	require.True(t, cfg.Node.RPC.HTTPEnabled)
	require.Equal(t, 7001, cfg.Node.RPC.HTTPPort, "flags override the file")
	require.Equal(t, "127.0.0.1", cfg.Node.RPC.HTTPAddr, "absent keys keep defaults")
	require.Equal(t, "fake", cfg.Network.Name)
	require.Equal(t, 30*time.Second, cfg.Storage.SnapshotInterval)
	require.True(t, cfg.Mining.Enabled)
	require.Equal(t, []uint32{1}, cfg.Mining.Shards)
}

func TestNodeConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := runConfigFromArgs(t, []string{"--datadir", dir, "--fakenet", "--http", "--http.port", "9000", "--mine", "--mine.shards", "1"})
	require.NoError(t, err)

	nc, err := cfg.NodeConfig()
	require.NoError(t, err)
	require.Equal(t, "fake", nc.Rules.Name)
	require.Equal(t, filepath.Join(dir, "chaindata"), nc.DataDir)
	require.True(t, nc.InMemory)
	require.Equal(t, "127.0.0.1:9000", nc.RPCAddr)
	require.Equal(t, "127.0.0.1:6060", nc.MetricsAddr)
	require.True(t, nc.Mine)
	require.Equal(t, []uint32{1}, nc.MineShards)

	cfg.Mining.Shards = []uint32{2}
	_, err = cfg.NodeConfig()
	require.Error(t, err, "fake network has two shards")

	cfg.Network.Name = "nowhere"
	_, err = cfg.NodeConfig()
	require.Error(t, err)
}
