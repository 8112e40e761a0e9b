package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultPreset(t *testing.T) {
	cfg := DefaultPreset()
	require.Equal(t, "default", cfg.Name)
	require.False(t, cfg.InMemory)
	require.Equal(t, time.Minute, cfg.SnapshotInterval)
	require.Positive(t, cfg.CacheMB)
	require.Positive(t, cfg.ReceiptCache)
}

func TestDevPresetOverridesDefaults(t *testing.T) {
	def, dev := DefaultPreset(), DevPreset()
	require.Equal(t, "dev", dev.Name)
	require.True(t, dev.InMemory)
	require.True(t, dev.EnableMetrics)
	require.Less(t, dev.CacheMB, def.CacheMB)
	require.Less(t, dev.SnapshotInterval, def.SnapshotInterval)
}

func TestFullPresetOverridesDefaults(t *testing.T) {
	def, full := DefaultPreset(), FullPreset()
	require.Equal(t, "full", full.Name)
	require.False(t, full.InMemory)
	require.Greater(t, full.CacheMB, def.CacheMB)
	require.Greater(t, full.ReceiptCache, def.ReceiptCache)
}

func TestGetPresetByName(t *testing.T) {
	for _, name := range []string{"dev", "default", "full"} {
		t.Run(name, func(t *testing.T) {
			p, err := GetPresetByName(name)
			require.NoError(t, err)
			require.Equal(t, name, p.Name)
		})
	}

	_, err := GetPresetByName("archive")
	require.Error(t, err)
	require.Contains(t, err.Error(), "archive")
}

func TestApplyPreset(t *testing.T) {
	target := DefaultPreset()
	ApplyPreset(&target, FullPreset())
	require.Equal(t, FullPreset(), target)

	// zero numeric fields keep the target's values
	target = DefaultPreset()
	ApplyPreset(&target, PresetConfig{Name: "custom", CacheMB: 77, InMemory: true})
	require.Equal(t, "custom", target.Name)
	require.Equal(t, 77, target.CacheMB)
	require.True(t, target.InMemory)
	require.Equal(t, DefaultPreset().Handles, target.Handles)
	require.Equal(t, DefaultPreset().SnapshotInterval, target.SnapshotInterval)
}

func TestPresetsAreIdempotent(t *testing.T) {
	require.Equal(t, DevPreset(), DevPreset())
	require.Equal(t, FullPreset(), FullPreset())
}
