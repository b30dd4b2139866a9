// Package config collects every tunable named across the streaming
// core's components into one struct, with range limits checked in one
// place by Validate. It is a
// single value a host constructs once and passes down, rather than a
// package-level singleton, so more than one zone's worth of tuning can
// run side by side.
package config

import (
	"fmt"

	"github.com/dantero/voxelcore/internal/loader"
	"github.com/dantero/voxelcore/internal/streaming"
)

// Config holds the view/unload distances, per-stage queue limits and
// worker counts, per-frame budgets, cache sizes, and the on-disk
// compression toggle. Zero values for queue limits and budgets mean
// "unlimited", the convention used throughout the loader and streamer.
type Config struct {
	ViewDistanceChunks   int
	UnloadDistanceChunks int

	GenQueueLimit  int
	MeshQueueLimit int
	LoadQueueLimit int

	UpdateBudgetPerFrame    int
	ApplyBudgetPerFrame     int
	LoadApplyBudgetPerFrame int
	RegionDrainBudget       int

	WorkerThreads int

	MaxResidentChunks  int
	MaxCachedRegions   int
	MaxInFlightRegions int

	PrefetchRadius int

	EnableLz4 bool
}

// Default returns a Config sized for ordinary interactive play: a view
// distance comfortable within a desktop frame budget, generous queue
// limits, and worker counts split evenly across generation and meshing.
func Default() Config {
	return Config{
		ViewDistanceChunks:      8,
		UnloadDistanceChunks:    10,
		GenQueueLimit:           0,
		MeshQueueLimit:          0,
		LoadQueueLimit:          256,
		UpdateBudgetPerFrame:    64,
		ApplyBudgetPerFrame:     32,
		LoadApplyBudgetPerFrame: 32,
		RegionDrainBudget:       16,
		WorkerThreads:           4,
		MaxResidentChunks:       0,
		MaxCachedRegions:        64,
		MaxInFlightRegions:      0,
		PrefetchRadius:          0,
		EnableLz4:               true,
	}
}

// Validate reports the first configuration error found: a negative value
// anywhere a sentinel of exactly 0 is the only valid "unlimited" marker,
// an unload distance narrower than the view distance (which would evict
// chunks the streamer still wants resident), or zero worker threads.
func (c Config) Validate() error {
	nonNegative := map[string]int{
		"ViewDistanceChunks":      c.ViewDistanceChunks,
		"UnloadDistanceChunks":    c.UnloadDistanceChunks,
		"GenQueueLimit":           c.GenQueueLimit,
		"MeshQueueLimit":          c.MeshQueueLimit,
		"LoadQueueLimit":          c.LoadQueueLimit,
		"UpdateBudgetPerFrame":    c.UpdateBudgetPerFrame,
		"ApplyBudgetPerFrame":     c.ApplyBudgetPerFrame,
		"LoadApplyBudgetPerFrame": c.LoadApplyBudgetPerFrame,
		"RegionDrainBudget":       c.RegionDrainBudget,
		"WorkerThreads":           c.WorkerThreads,
		"MaxResidentChunks":       c.MaxResidentChunks,
		"MaxCachedRegions":        c.MaxCachedRegions,
		"MaxInFlightRegions":      c.MaxInFlightRegions,
		"PrefetchRadius":          c.PrefetchRadius,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("config: %s must be >= 0, got %d", name, v)
		}
	}
	if c.ViewDistanceChunks == 0 {
		return fmt.Errorf("config: ViewDistanceChunks must be >= 1")
	}
	if c.UnloadDistanceChunks < c.ViewDistanceChunks {
		return fmt.Errorf("config: UnloadDistanceChunks (%d) must be >= ViewDistanceChunks (%d)", c.UnloadDistanceChunks, c.ViewDistanceChunks)
	}
	if c.WorkerThreads == 0 {
		return fmt.Errorf("config: WorkerThreads must be >= 1")
	}
	return nil
}

// Streaming returns the streaming.Options derived from c: WorkerThreads
// splits evenly across the generation and mesh pools.
func (c Config) Streaming() streaming.Options {
	workers := c.WorkerThreads / 2
	if workers < 1 {
		workers = 1
	}
	return streaming.Options{
		ViewDistanceChunks:      c.ViewDistanceChunks,
		UnloadDistanceChunks:    c.UnloadDistanceChunks,
		GenQueueLimit:           c.GenQueueLimit,
		MeshQueueLimit:          c.MeshQueueLimit,
		UpdateBudgetPerFrame:    c.UpdateBudgetPerFrame,
		ApplyBudgetPerFrame:     c.ApplyBudgetPerFrame,
		LoadApplyBudgetPerFrame: c.LoadApplyBudgetPerFrame,
		RegionDrainBudget:       c.RegionDrainBudget,
		MaxResidentChunks:       c.MaxResidentChunks,
		GenWorkers:              workers,
		MeshWorkers:             workers,
	}
}

// Loader returns the loader.Options derived from c for the given zone.
// WorkerThreads splits evenly across the region-I/O and payload pools.
func (c Config) Loader(zoneID string) loader.Options {
	workers := c.WorkerThreads / 2
	if workers < 1 {
		workers = 1
	}
	return loader.Options{
		ZoneID:             zoneID,
		IOWorkers:          workers,
		PayloadWorkers:     workers,
		LoadQueueLimit:     c.LoadQueueLimit,
		PrefetchRadius:     c.PrefetchRadius,
		MaxCachedRegions:   c.MaxCachedRegions,
		MaxInFlightRegions: c.MaxInFlightRegions,
	}
}
