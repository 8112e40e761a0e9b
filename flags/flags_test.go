package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllFlagsHaveUniqueNames(t *testing.T) {
	seen := make(map[string]bool)
	for _, f := range AllFlags() {
		for _, name := range strings.Split(f.GetName(), ",") {
			name = strings.TrimSpace(name)
			require.False(t, seen[name], "flag %q declared twice", name)
			seen[name] = true
		}
	}
	require.True(t, seen["datadir"])
	require.True(t, seen["sentry.dsn"])
	require.True(t, seen["mine.shards"])
}

func TestNewApp(t *testing.T) {
	app := NewApp()
	require.Equal(t, "shardnode", app.Name)
	require.Empty(t, app.Flags)
}
