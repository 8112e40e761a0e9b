// Package integration assembles a runnable node from its parts and provides
// named configuration presets for it.
//
// Presets bundle the resource and durability knobs that usually change
// together (cache sizes, storage backend, snapshot cadence, mining budget):
//
//	cfg := integration.DevPreset()     // in-memory, frequent snapshots
//	cfg := integration.DefaultPreset() // on-disk, balanced
//	cfg := integration.FullPreset()    // large caches, metrics on
package integration

import (
	"fmt"
	"time"
)

// PresetConfig captures the parameters that vary across preset profiles.
// Network rules are deliberately absent: they are chosen by network name.
type PresetConfig struct {
	Name             string        // identifier, e.g. "dev", "full"
	CacheMB          int           // leveldb cache
	Handles          int           // leveldb open file limit
	InMemory         bool          // keep the store in memory, nothing survives a restart
	SnapshotInterval time.Duration // period of background snapshots, zero disables them
	MineTimeout      time.Duration // budget of one nonce search before the template is rebuilt
	ReceiptCache     int           // receipts kept for queries
	EnableMetrics    bool          // serve Prometheus metrics
}

func DefaultPreset() PresetConfig {
	return PresetConfig{
		Name:             "default",
		CacheMB:          256,
		Handles:          256,
		InMemory:         false,
		SnapshotInterval: time.Minute,
		MineTimeout:      time.Minute,
		ReceiptCache:     16384,
		EnableMetrics:    false,
	}
}

// DevPreset favours quick restarts over durability: the store lives in
// memory and snapshots are taken often so their cost shows up early.
func DevPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "dev"
	cfg.CacheMB = 16
	cfg.Handles = 64
	cfg.InMemory = true
	cfg.SnapshotInterval = 10 * time.Second
	cfg.MineTimeout = 10 * time.Second
	cfg.ReceiptCache = 1024
	cfg.EnableMetrics = true
	return cfg
}

// FullPreset is meant for long running public nodes.
func FullPreset() PresetConfig {
	cfg := DefaultPreset()
	cfg.Name = "full"
	cfg.CacheMB = 1024
	cfg.Handles = 1024
	cfg.SnapshotInterval = 5 * time.Minute
	cfg.MineTimeout = 2 * time.Minute
	cfg.ReceiptCache = 1 << 17
	cfg.EnableMetrics = true
	return cfg
}

// GetPresetByName resolves the --preset flag.
func GetPresetByName(name string) (PresetConfig, error) {
	switch name {
	case "dev":
		return DevPreset(), nil
	case "full":
		return FullPreset(), nil
	case "default":
		return DefaultPreset(), nil
	default:
		return PresetConfig{}, fmt.Errorf("unknown preset: %q (valid: dev, default, full)", name)
	}
}

// ApplyPreset merges preset into target. Zero numeric fields of preset
// leave target unchanged; booleans always apply.
func ApplyPreset(target *PresetConfig, preset PresetConfig) {
	if preset.CacheMB > 0 {
		target.CacheMB = preset.CacheMB
	}
	if preset.Handles > 0 {
		target.Handles = preset.Handles
	}
	if preset.SnapshotInterval > 0 {
		target.SnapshotInterval = preset.SnapshotInterval
	}
	if preset.MineTimeout > 0 {
		target.MineTimeout = preset.MineTimeout
	}
	if preset.ReceiptCache > 0 {
		target.ReceiptCache = preset.ReceiptCache
	}
	target.InMemory = preset.InMemory
	target.EnableMetrics = preset.EnableMetrics
	if preset.Name != "" {
		target.Name = preset.Name
	}
}
