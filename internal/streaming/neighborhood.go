package streaming

import (
	"github.com/dantero/voxelcore/internal/meshing"
	"github.com/dantero/voxelcore/internal/voxel"
)

// buildPaddedNeighborhood copies chunk's own blocks into a Padded^3
// buffer and overlays the single boundary plane from each resident
// face-adjacent neighbor. Absent neighbors leave their plane as air,
// which is correct for the edge chunks of the visible region (the
// ReadyData -> QueuedMesh transition only fires once every neighbor is
// either resident or outside the desired set).
func buildPaddedNeighborhood(store *voxel.ChunkStore, coord voxel.ChunkCoord) []voxel.BlockState {
	padded := make([]voxel.BlockState, meshing.Padded*meshing.Padded*meshing.Padded)

	own := store.Get(coord)
	if own != nil {
		for y := 0; y < voxel.SIZE; y++ {
			for z := 0; z < voxel.SIZE; z++ {
				for x := 0; x < voxel.SIZE; x++ {
					padded[meshing.PaddedIndex(x, y, z)] = own.GetLocal(x, y, z)
				}
			}
		}
	}

	if n := store.Get(coord.Add(voxel.ChunkCoord{X: 1})); n != nil {
		for y := 0; y < voxel.SIZE; y++ {
			for z := 0; z < voxel.SIZE; z++ {
				padded[meshing.PaddedIndex(voxel.SIZE, y, z)] = n.GetLocal(0, y, z)
			}
		}
	}
	if n := store.Get(coord.Add(voxel.ChunkCoord{X: -1})); n != nil {
		for y := 0; y < voxel.SIZE; y++ {
			for z := 0; z < voxel.SIZE; z++ {
				padded[meshing.PaddedIndex(-1, y, z)] = n.GetLocal(voxel.SIZE-1, y, z)
			}
		}
	}
	if n := store.Get(coord.Add(voxel.ChunkCoord{Y: 1})); n != nil {
		for x := 0; x < voxel.SIZE; x++ {
			for z := 0; z < voxel.SIZE; z++ {
				padded[meshing.PaddedIndex(x, voxel.SIZE, z)] = n.GetLocal(x, 0, z)
			}
		}
	}
	if n := store.Get(coord.Add(voxel.ChunkCoord{Y: -1})); n != nil {
		for x := 0; x < voxel.SIZE; x++ {
			for z := 0; z < voxel.SIZE; z++ {
				padded[meshing.PaddedIndex(x, -1, z)] = n.GetLocal(x, voxel.SIZE-1, z)
			}
		}
	}
	if n := store.Get(coord.Add(voxel.ChunkCoord{Z: 1})); n != nil {
		for x := 0; x < voxel.SIZE; x++ {
			for y := 0; y < voxel.SIZE; y++ {
				padded[meshing.PaddedIndex(x, y, voxel.SIZE)] = n.GetLocal(x, y, 0)
			}
		}
	}
	if n := store.Get(coord.Add(voxel.ChunkCoord{Z: -1})); n != nil {
		for x := 0; x < voxel.SIZE; x++ {
			for y := 0; y < voxel.SIZE; y++ {
				padded[meshing.PaddedIndex(x, y, -1)] = n.GetLocal(x, y, voxel.SIZE-1)
			}
		}
	}

	return padded
}

// neighborOffsets are the six face-adjacent chunk directions, mirroring
// voxel.ChunkStore's own (unexported) table.
var neighborOffsets = [6]voxel.ChunkCoord{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}
