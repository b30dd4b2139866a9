package streaming

import (
	"sync/atomic"

	"github.com/dantero/voxelcore/internal/voxel"
)

type genJob struct {
	Coord  voxel.ChunkCoord
	Cancel *atomic.Bool
}

type genResult struct {
	Coord     voxel.ChunkCoord
	Blocks    []voxel.BlockState
	Version   uint32
	Cancelled bool
	Err       error
}

type meshJob struct {
	Coord    voxel.ChunkCoord
	Revision uint64
	Chunk    *voxel.Chunk
	Padded   []voxel.BlockState
}

type meshResult struct {
	Coord    voxel.ChunkCoord
	Revision uint64
	Mesh     voxel.Mesh
	Err      error
}
