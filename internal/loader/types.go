package loader

import (
	"time"

	"github.com/dantero/voxelcore/internal/persistence"
	"github.com/dantero/voxelcore/internal/voxel"
)

// RegionPresence records whether a region is known to exist on disk, and
// until when a negative result should be trusted without re-probing.
type RegionPresence struct {
	Exists    bool
	NextCheck time.Time
}

// regionLoadJob asks the I/O pool to probe and, if present, read one region.
type regionLoadJob struct {
	Key persistence.RegionKey
}

// regionLoadResult is the I/O pool's answer: either the region doesn't
// exist, it was read successfully, or reading it failed.
type regionLoadResult struct {
	Key      persistence.RegionKey
	Exists   bool
	Snapshot persistence.ChunkRegionSnapshot
	Err      error
}

// payloadJob asks the worker pool to assemble one chunk's block array
// from a cached region entry (and, if needed, the world generator).
type payloadJob struct {
	Coord voxel.ChunkCoord
	Entry *LoaderCacheEntry
}

// payloadResult is the worker pool's answer for one payload build.
type payloadResult struct {
	Coord           voxel.ChunkCoord
	Blocks          []voxel.BlockState
	WorldGenVersion uint32
	LoadedFromDisk  bool
	Err             error
}
