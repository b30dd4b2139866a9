// Package voxel owns the resident-chunk and resident-mesh state: the two
// leaf components everything else in this module is built on top of.
package voxel

import "fmt"

// SIZE is the edge length of a chunk, in blocks.
const SIZE = 32

// ChunkCoord identifies a chunk by its integer position in chunk-space.
// World voxel (x, y, z) belongs to chunk (floor(x/SIZE), floor(y/SIZE), floor(z/SIZE)).
type ChunkCoord struct {
	X, Y, Z int32
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.X, c.Y, c.Z)
}

// Add returns the componentwise sum of two coordinates.
func (c ChunkCoord) Add(o ChunkCoord) ChunkCoord {
	return ChunkCoord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

// DistSq returns the squared Euclidean distance between two chunk coords,
// the ordering key for the desired set and the comparison used by eviction.
func (c ChunkCoord) DistSq(o ChunkCoord) int64 {
	dx := int64(c.X - o.X)
	dy := int64(c.Y - o.Y)
	dz := int64(c.Z - o.Z)
	return dx*dx + dy*dy + dz*dz
}

// WorldToChunkCoord maps a world block coordinate to its containing chunk.
func WorldToChunkCoord(x, y, z int32) ChunkCoord {
	return ChunkCoord{floorDiv(x, SIZE), floorDiv(y, SIZE), floorDiv(z, SIZE)}
}

// WorldToLocal returns the block's offset within its containing chunk, in [0, SIZE).
func WorldToLocal(x, y, z int32) (lx, ly, lz int) {
	return int(floorMod(x, SIZE)), int(floorMod(y, SIZE)), int(floorMod(z, SIZE))
}

// floorDiv is integer division that rounds toward negative infinity,
// unlike Go's native truncating division.
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
