package voxel

// Chunk owns a dense SIZE^3 array of blocks in XYZ-linear order, plus the
// bookkeeping the streamer and loader need to decide what to do with it.
type Chunk struct {
	Coord ChunkCoord
	Blocks [SIZE * SIZE * SIZE]BlockState

	// WorldGenVersion is the generator config version that produced this
	// chunk's base content. A chunk whose version no longer matches the
	// active generator is stale and must be evicted and regenerated.
	WorldGenVersion uint32

	// PersistDirty is true if the chunk has unsaved edits since the last
	// region save; it implies the chunk must appear in the next saveAll
	// for its containing region.
	PersistDirty bool

	// MeshDirty is true if the mesh is stale w.r.t. the chunk's own blocks
	// or an adjacent chunk's boundary blocks.
	MeshDirty bool

	// MeshRevision increments whenever mesh-relevant state changes. A mesh
	// result carrying a revision below the chunk's current one is stale
	// and is discarded on apply.
	MeshRevision uint64

	// LoadedFromDisk is true once the chunk's blocks originated from
	// persistence (directly, via the loader) rather than only from the
	// generator. Mesh scheduling does not read it: any chunk meshes once
	// each neighbor is resident or outside the desired set.
	LoadedFromDisk bool
}

// NewChunk returns an all-air chunk at coord with revision 0.
func NewChunk(coord ChunkCoord) *Chunk {
	return &Chunk{Coord: coord}
}

// LocalIndex maps a local (x, y, z) in [0, SIZE) to an offset into Blocks.
func LocalIndex(x, y, z int) int {
	return (y*SIZE+z)*SIZE + x
}

// IndexToLocal is the inverse of LocalIndex.
func IndexToLocal(i int) (x, y, z int) {
	x = i % SIZE
	i /= SIZE
	z = i % SIZE
	y = i / SIZE
	return
}

// GetLocal returns the block at local coordinates; out-of-range coordinates
// return air.
func (c *Chunk) GetLocal(x, y, z int) BlockState {
	if x < 0 || x >= SIZE || y < 0 || y >= SIZE || z < 0 || z >= SIZE {
		return Air
	}
	return c.Blocks[LocalIndex(x, y, z)]
}

// SetLocal writes the block at local coordinates. Callers are responsible
// for dirty/revision bookkeeping; see ChunkStore.SetBlock for the
// synchronous, neighbor-propagating entry point used by the rest of the
// system.
func (c *Chunk) SetLocal(x, y, z int, state BlockState) {
	if x < 0 || x >= SIZE || y < 0 || y >= SIZE || z < 0 || z >= SIZE {
		return
	}
	c.Blocks[LocalIndex(x, y, z)] = state
}

// IsEmpty reports whether every block in the chunk is air. Empty chunks
// skip mesh upload entirely.
func (c *Chunk) IsEmpty() bool {
	for _, b := range c.Blocks {
		if !b.IsAir() {
			return false
		}
	}
	return true
}

// touch bumps the mesh revision and marks the mesh dirty; called whenever
// mesh-relevant state on this chunk changes.
func (c *Chunk) touch() {
	c.MeshDirty = true
	c.MeshRevision++
}
