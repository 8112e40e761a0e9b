package launcher

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-shardchain/integration"
	"github.com/rony4d/go-shardchain/shardnet"
)

func TestVerbosityLevel(t *testing.T) {
	require.Equal(t, logrus.FatalLevel, verbosityLevel(-1))
	require.Equal(t, logrus.FatalLevel, verbosityLevel(0))
	require.Equal(t, logrus.ErrorLevel, verbosityLevel(1))
	require.Equal(t, logrus.InfoLevel, verbosityLevel(3))
	require.Equal(t, logrus.TraceLevel, verbosityLevel(5))
	require.Equal(t, logrus.TraceLevel, verbosityLevel(9))
}

func TestNewLogger(t *testing.T) {
	log, err := newLogger(LoggingConfig{Verbosity: 4, Format: "json"})
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, log.Formatter)
	require.Empty(t, log.Hooks[logrus.ErrorLevel])

	log, err = newLogger(LoggingConfig{Verbosity: 3, SentryDSN: "https://public@sentry.example.com/1"})
	require.NoError(t, err)
	require.IsType(t, &logrus.TextFormatter{}, log.Formatter)
	require.Len(t, log.Hooks[logrus.ErrorLevel], 1)
	require.Empty(t, log.Hooks[logrus.InfoLevel])

	_, err = newLogger(LoggingConfig{Format: "xml"})
	require.Error(t, err)
}

func TestVerifyCommand(t *testing.T) {
	dir := t.TempDir()
	log, _ := test.NewNullLogger()

	cfg := integration.NodeConfigFromPreset("v", shardnet.FakeNetRules(), integration.DefaultPreset())
	cfg.DataDir = filepath.Join(dir, "chaindata")
	n, err := integration.NewNode(cfg, nil, log)
	require.NoError(t, err)
	require.NoError(t, n.Stop())

	var out bytes.Buffer
	app.Writer = &out
	err = Launch([]string{"shardnode", "verify", "--datadir", dir, "--network", "fake", "--log.verbosity", "0"})
	require.NoError(t, err)
	require.Contains(t, out.String(), "shard 0: height 0")
	require.Contains(t, out.String(), "shard 1: height 0")
	require.Contains(t, out.String(), "poh: seq 0")
}

func TestVerifyCommandWithoutSnapshot(t *testing.T) {
	err := Launch([]string{"shardnode", "verify", "--datadir", t.TempDir(), "--network", "fake", "--log.verbosity", "0"})
	require.Error(t, err)
}
