package worldgen

import (
	"context"
	"sync/atomic"

	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

// FlatGenerator fills every chunk with a single horizontal plane at a
// fixed world height: grass at the surface, air above and below. It's the
// deterministic, zero-noise generator used by the scenario tests in
// spec section 8 ("generator produces a flat plane at y=0").
type FlatGenerator struct {
	height  int32
	version uint32
	grass   registry.BlockID
}

// NewFlatGenerator returns a generator whose surface sits at world Y == height.
func NewFlatGenerator(height int32, version uint32, reg registry.BlockRegistry) *FlatGenerator {
	return &FlatGenerator{height: height, version: version, grass: resolveID(reg, "grass")}
}

// Version implements Generator.
func (g *FlatGenerator) Version() uint32 { return g.version }

// Generate implements Generator.
func (g *FlatGenerator) Generate(ctx context.Context, coord voxel.ChunkCoord, out []voxel.BlockState, cancel *atomic.Bool) error {
	baseY := coord.Y * voxel.SIZE
	localY := g.height - baseY
	if localY < 0 || localY >= voxel.SIZE {
		return nil
	}
	for lz := 0; lz < voxel.SIZE; lz++ {
		if checkCancel(cancel) {
			return ctx.Err()
		}
		for lx := 0; lx < voxel.SIZE; lx++ {
			out[voxel.LocalIndex(lx, int(localY), lz)] = voxel.BlockState{TypeID: g.grass}
		}
	}
	return nil
}

var _ Generator = (*FlatGenerator)(nil)
