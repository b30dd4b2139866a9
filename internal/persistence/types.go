package persistence

import (
	"fmt"

	"github.com/dantero/voxelcore/internal/voxel"
)

// RegionSpan is the edge length of a region, in chunks.
const RegionSpan = 16

// RegionKey identifies a region: a zone plus a cubic position in
// region-space.
type RegionKey struct {
	ZoneID  string
	X, Y, Z int32
}

func (k RegionKey) String() string {
	return fmt.Sprintf("%s/region_%d_%d_%d", k.ZoneID, k.X, k.Y, k.Z)
}

// ChunkData is the span descriptor plus its linearized block vector, in
// the order voxel.ChunkSpan.LocalIndices visits.
type ChunkData struct {
	Span   voxel.ChunkSpan
	Blocks []voxel.BlockState
}

// ChunkSnapshot is one persisted chunk entry within a region: the storage
// key (column index) it lives under, the chunk it describes, and its data.
type ChunkSnapshot struct {
	StorageKey int
	Coord      voxel.ChunkCoord
	Data       ChunkData
}

// ChunkRegionSnapshot is the full decoded (or to-be-encoded) content of one
// region file.
type ChunkRegionSnapshot struct {
	Key    RegionKey
	Chunks []ChunkSnapshot
}

// IsEmpty reports whether the snapshot carries no chunks, the condition
// under which RegionContainer.SaveRegion removes the file instead of
// writing it.
func (s ChunkRegionSnapshot) IsEmpty() bool {
	return len(s.Chunks) == 0
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int32) int32 {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
