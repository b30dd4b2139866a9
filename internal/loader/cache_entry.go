package loader

import (
	"github.com/dantero/voxelcore/internal/persistence"
	"github.com/dantero/voxelcore/internal/voxel"
)

// LoaderCacheEntry is the LRU cache's unit of residency: a decoded
// region snapshot plus a coord-indexed view over its chunk entries so
// payload assembly doesn't rescan the whole snapshot per chunk.
type LoaderCacheEntry struct {
	Key      persistence.RegionKey
	Snapshot persistence.ChunkRegionSnapshot
	byCoord  map[voxel.ChunkCoord][]persistence.ChunkSnapshot
}

// newCacheEntry indexes snapshot by chunk coordinate.
func newCacheEntry(snapshot persistence.ChunkRegionSnapshot) *LoaderCacheEntry {
	byCoord := make(map[voxel.ChunkCoord][]persistence.ChunkSnapshot)
	for _, cs := range snapshot.Chunks {
		byCoord[cs.Coord] = append(byCoord[cs.Coord], cs)
	}
	return &LoaderCacheEntry{Key: snapshot.Key, Snapshot: snapshot, byCoord: byCoord}
}

// ChunksFor returns every persisted span entry covering coord, which
// may be empty (the chunk belongs to this region but was never saved),
// a single full-chunk entry (the default format), or several partial
// spans (a finer-grained format).
func (e *LoaderCacheEntry) ChunksFor(coord voxel.ChunkCoord) []persistence.ChunkSnapshot {
	return e.byCoord[coord]
}

// Contains reports whether this region's persisted snapshot carries at
// least one entry for coord. A region being cached only means its file
// was read; most of its RegionSpan^3 chunk slots are typically never
// written, so a cache hit still needs this check before a payload-build
// job is worth dispatching.
func (e *LoaderCacheEntry) Contains(coord voxel.ChunkCoord) bool {
	return len(e.byCoord[coord]) > 0
}
