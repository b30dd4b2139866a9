package worldgen

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

// NoiseGenerator fills chunks from a deterministic value-noise heightmap:
// bedrock at world Y 0, dirt up to the surface, grass on top, air above.
// Height is a pure function of (worldX, worldZ, seed); Generate itself
// never touches randomness directly, splitting height lookup (HeightAt)
// from chunk population.
type NoiseGenerator struct {
	field      heightField
	scale      float64
	baseHeight float64
	amp        float64
	version    uint32

	bedrock, dirt, grass registry.BlockID
}

// NewNoiseGenerator returns a generator seeded deterministically; version
// is stamped onto every chunk it produces, for worldGenVersion staleness
// checks after a reconfiguration.
func NewNoiseGenerator(seed int64, version uint32, reg registry.BlockRegistry) *NoiseGenerator {
	return &NoiseGenerator{
		field:      newHeightField(seed, 4, 0.5, 2.0),
		scale:      1.0 / 64.0,
		baseHeight: 64,
		amp:        32,
		version:    version,
		bedrock:    resolveID(reg, "bedrock"),
		dirt:       resolveID(reg, "dirt"),
		grass:      resolveID(reg, "grass"),
	}
}

// Version implements Generator.
func (g *NoiseGenerator) Version() uint32 { return g.version }

// HeightAt computes the deterministic world surface height at (worldX, worldZ).
func (g *NoiseGenerator) HeightAt(worldX, worldZ int32) int32 {
	x := float64(worldX) * g.scale
	z := float64(worldZ) * g.scale
	n := g.field.sample(x, z)
	height := g.baseHeight + n*g.amp
	if height < 0 {
		height = 0
	}
	return int32(math.Floor(height))
}

// Generate implements Generator.
func (g *NoiseGenerator) Generate(ctx context.Context, coord voxel.ChunkCoord, out []voxel.BlockState, cancel *atomic.Bool) error {
	baseY := coord.Y * voxel.SIZE
	for lz := 0; lz < voxel.SIZE; lz++ {
		if checkCancel(cancel) {
			return ctx.Err()
		}
		worldZ := coord.Z*voxel.SIZE + int32(lz)
		for lx := 0; lx < voxel.SIZE; lx++ {
			worldX := coord.X*voxel.SIZE + int32(lx)
			surface := g.HeightAt(worldX, worldZ)
			topLocal := int(surface - baseY)
			if topLocal < 0 {
				continue
			}
			if topLocal >= voxel.SIZE {
				topLocal = voxel.SIZE - 1
			}
			for ly := 0; ly < topLocal; ly++ {
				id := g.dirt
				if baseY+int32(ly) == 0 {
					id = g.bedrock
				}
				out[voxel.LocalIndex(lx, ly, lz)] = voxel.BlockState{TypeID: id}
			}
			topID := g.grass
			if baseY+int32(topLocal) == 0 {
				topID = g.bedrock
			}
			out[voxel.LocalIndex(lx, topLocal, lz)] = voxel.BlockState{TypeID: topID}
		}
	}
	return nil
}

var _ Generator = (*NoiseGenerator)(nil)
