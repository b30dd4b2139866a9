package voxel

// ChunkSpan identifies a rectangular subvolume of a chunk. Persistence
// formats whose on-disk granularity differs from the runtime chunk size
// (e.g. 16^3 subchunks under a 32^3 runtime chunk) address storage in
// spans rather than whole chunks. A full chunk is the span with zero
// offset and Size == SIZE on every axis.
type ChunkSpan struct {
	Chunk ChunkCoord

	OffsetX, OffsetY, OffsetZ int
	SizeX, SizeY, SizeZ       int
}

// FullChunkSpan returns the span covering the entire chunk at coord.
func FullChunkSpan(coord ChunkCoord) ChunkSpan {
	return ChunkSpan{
		Chunk: coord,
		SizeX: SIZE, SizeY: SIZE, SizeZ: SIZE,
	}
}

// IsFullChunk reports whether the span covers an entire chunk.
func (s ChunkSpan) IsFullChunk() bool {
	return s.OffsetX == 0 && s.OffsetY == 0 && s.OffsetZ == 0 &&
		s.SizeX == SIZE && s.SizeY == SIZE && s.SizeZ == SIZE
}

// BlockCount returns the number of blocks the span covers.
func (s ChunkSpan) BlockCount() int {
	return s.SizeX * s.SizeY * s.SizeZ
}

// LocalIndices calls fn once per (x, y, z) local chunk coordinate the span
// covers, in span-linear order (x fastest, then z, then y), matching the
// ordering of the linearized block vector a ChunkData carries on disk.
func (s ChunkSpan) LocalIndices(fn func(x, y, z int)) {
	for y := s.OffsetY; y < s.OffsetY+s.SizeY; y++ {
		for z := s.OffsetZ; z < s.OffsetZ+s.SizeZ; z++ {
			for x := s.OffsetX; x < s.OffsetX+s.SizeX; x++ {
				fn(x, y, z)
			}
		}
	}
}
