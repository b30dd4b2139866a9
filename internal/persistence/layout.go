package persistence

import "github.com/dantero/voxelcore/internal/voxel"

// RegionLayout maps a chunk coordinate to its containing region and
// enumerates the storage keys (and, for formats whose on-disk grain
// differs from the runtime chunk size, the chunk spans) covered by a
// region. DefaultLayout below is a fixed cubic tiling where the on-disk
// grain equals the runtime chunk: regionCoord = floor(chunkCoord / RegionSpan).
type RegionLayout interface {
	RegionForChunk(zoneID string, coord voxel.ChunkCoord) RegionKey
	StorageKeysForChunk(coord voxel.ChunkCoord) []int
	SpanForStorageKey(key RegionKey, storageKey int) []voxel.ChunkSpan
	ChunksForRegion(key RegionKey) []voxel.ChunkCoord
}

// DefaultLayout is the fixed cubic region tiling described by the default
// binary format: a region covers RegionSpan^3 chunks, and each chunk is
// stored whole under a column keyed by (localX*RegionSpan + localZ).
type DefaultLayout struct{}

// NewDefaultLayout returns the default cubic layout.
func NewDefaultLayout() DefaultLayout { return DefaultLayout{} }

// RegionForChunk implements RegionLayout.
func (DefaultLayout) RegionForChunk(zoneID string, coord voxel.ChunkCoord) RegionKey {
	return RegionKey{
		ZoneID: zoneID,
		X:      floorDiv(coord.X, RegionSpan),
		Y:      floorDiv(coord.Y, RegionSpan),
		Z:      floorDiv(coord.Z, RegionSpan),
	}
}

// localColumn returns the (localX*RegionSpan + localZ) column index for coord.
func localColumn(coord voxel.ChunkCoord) int {
	lx := int(floorMod(coord.X, RegionSpan))
	lz := int(floorMod(coord.Z, RegionSpan))
	return lx*RegionSpan + lz
}

// StorageKeysForChunk implements RegionLayout: the default layout stores a
// whole chunk under exactly one column.
func (DefaultLayout) StorageKeysForChunk(coord voxel.ChunkCoord) []int {
	return []int{localColumn(coord)}
}

// SpanForStorageKey implements RegionLayout: for the default layout this
// is every chunk in the region sharing that column's (localX, localZ),
// one full-chunk span per Y level.
func (DefaultLayout) SpanForStorageKey(key RegionKey, storageKey int) []voxel.ChunkSpan {
	lx := storageKey / RegionSpan
	lz := storageKey % RegionSpan
	spans := make([]voxel.ChunkSpan, 0, RegionSpan)
	for ly := 0; ly < RegionSpan; ly++ {
		coord := voxel.ChunkCoord{
			X: key.X*RegionSpan + int32(lx),
			Y: key.Y*RegionSpan + int32(ly),
			Z: key.Z*RegionSpan + int32(lz),
		}
		spans = append(spans, voxel.FullChunkSpan(coord))
	}
	return spans
}

// ChunksForRegion implements RegionLayout: enumerates every chunk
// coordinate the region at key covers.
func (DefaultLayout) ChunksForRegion(key RegionKey) []voxel.ChunkCoord {
	coords := make([]voxel.ChunkCoord, 0, RegionSpan*RegionSpan*RegionSpan)
	for ly := int32(0); ly < RegionSpan; ly++ {
		for lx := int32(0); lx < RegionSpan; lx++ {
			for lz := int32(0); lz < RegionSpan; lz++ {
				coords = append(coords, voxel.ChunkCoord{
					X: key.X*RegionSpan + lx,
					Y: key.Y*RegionSpan + ly,
					Z: key.Z*RegionSpan + lz,
				})
			}
		}
	}
	return coords
}

var _ RegionLayout = DefaultLayout{}
