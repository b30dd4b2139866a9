// Package worldgen supplies the WorldGenerator the streaming core consumes:
// a pure function from chunk coordinate (plus a configured seed) to a
// block array. Implementations must be deterministic given coord and seed,
// and must observe the cancellation flag at coarse granularity.
package worldgen

import (
	"context"
	"sync/atomic"

	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

// Generator is the contract the streaming core's generation jobs call.
// Version reports the config version stamped onto generated chunks so a
// reconfiguration can be detected and stale chunks regenerated.
type Generator interface {
	// Generate fills out (length SIZE^3, XYZ-linear order matching
	// voxel.LocalIndex) with the procedural content for coord. out is a
	// private copy owned by the calling worker; Generate must not retain it.
	Generate(ctx context.Context, coord voxel.ChunkCoord, out []voxel.BlockState, cancel *atomic.Bool) error
	Version() uint32
}

// checkCancel reports whether cancel has been set; generators call this
// between rows or planes, never per-block, to keep the check cheap.
func checkCancel(cancel *atomic.Bool) bool {
	return cancel != nil && cancel.Load()
}

// resolveID looks up a block identifier once at generator construction
// time; an unresolved identifier falls back to air (id 0) since the
// generator has no way to surface a registry error mid-fill — callers
// construct generators after the registry is fully populated.
func resolveID(reg registry.BlockRegistry, identifier string) registry.BlockID {
	id, ok := reg.FindByIdentifier(identifier)
	if !ok {
		return 0
	}
	return id
}
