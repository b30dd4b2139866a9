package voxel

import "sync"

// ChunkStore owns every resident chunk, keyed by coordinate. Semantically
// it is touched from the main thread only (workers receive copies), but
// it carries a mutex so debug tooling and SaveAll's background readers
// can observe it safely without a separate synchronization story.
type ChunkStore struct {
	mu       sync.RWMutex
	chunks   map[ChunkCoord]*Chunk
	modCount uint64
}

// NewChunkStore returns an empty store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{chunks: make(map[ChunkCoord]*Chunk)}
}

// GetOrCreate returns the chunk at coord, creating an empty one if absent.
func (s *ChunkStore) GetOrCreate(coord ChunkCoord) *Chunk {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[coord]; ok {
		return c
	}
	c := NewChunk(coord)
	s.chunks[coord] = c
	s.modCount++
	return c
}

// Get returns the chunk at coord, or nil if absent.
func (s *ChunkStore) Get(coord ChunkCoord) *Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chunks[coord]
}

// Has reports whether a chunk is resident at coord.
func (s *ChunkStore) Has(coord ChunkCoord) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.chunks[coord]
	return ok
}

// Put installs c at its own coordinate, replacing any existing chunk there.
// Used by the loader and the generator-completion path to install results.
func (s *ChunkStore) Put(c *Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks[c.Coord] = c
	s.modCount++
}

// Remove drops the chunk at coord. Returns false if it was already absent.
func (s *ChunkStore) Remove(coord ChunkCoord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chunks[coord]; !ok {
		return false
	}
	delete(s.chunks, coord)
	s.modCount++
	return true
}

// ForEach iterates every resident chunk. fn must not mutate the store.
func (s *ChunkStore) ForEach(fn func(*Chunk)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.chunks {
		fn(c)
	}
}

// Len returns the number of resident chunks.
func (s *ChunkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// ModCount returns the number of structural changes (create/remove) made
// to the store so far; callers may use it to detect concurrent eviction.
func (s *ChunkStore) ModCount() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.modCount
}

// neighborOffsets are the six face-adjacent chunk directions.
var neighborOffsets = [6]ChunkCoord{
	{X: 1}, {X: -1},
	{Y: 1}, {Y: -1},
	{Z: 1}, {Z: -1},
}

// SetBlock writes the block at world coordinates, creating the containing
// chunk if necessary, and marks it (and any of the six neighbors sharing
// the edited face) mesh-dirty synchronously. No mesh built for any
// affected neighbor after this call may observe the pre-edit value.
func (s *ChunkStore) SetBlock(wx, wy, wz int32, state BlockState) {
	coord := WorldToChunkCoord(wx, wy, wz)
	lx, ly, lz := WorldToLocal(wx, wy, wz)

	c := s.GetOrCreate(coord)
	s.mu.Lock()
	c.SetLocal(lx, ly, lz, state)
	c.PersistDirty = true
	c.touch()
	s.mu.Unlock()

	onBoundary := func(v int) (lo, hi bool) { return v == 0, v == SIZE-1 }
	xLo, xHi := onBoundary(lx)
	yLo, yHi := onBoundary(ly)
	zLo, zHi := onBoundary(lz)

	touch := func(delta ChunkCoord) {
		s.mu.RLock()
		n, ok := s.chunks[coord.Add(delta)]
		s.mu.RUnlock()
		if ok {
			s.mu.Lock()
			n.touch()
			s.mu.Unlock()
		}
	}
	if xLo {
		touch(neighborOffsets[1])
	}
	if xHi {
		touch(neighborOffsets[0])
	}
	if yLo {
		touch(neighborOffsets[3])
	}
	if yHi {
		touch(neighborOffsets[2])
	}
	if zLo {
		touch(neighborOffsets[5])
	}
	if zHi {
		touch(neighborOffsets[4])
	}
}

// MarkMeshDirty marks the chunk at coord dirty and bumps its revision, if
// it is resident. No-op otherwise.
func (s *ChunkStore) MarkMeshDirty(coord ChunkCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[coord]; ok {
		c.touch()
	}
}

// MarkNeighborsMeshDirty marks each of the six face-adjacent chunks of
// coord dirty, if resident. Called after a chunk's content changes
// wholesale (generation or load apply) since its neighbors' boundary
// faces may now cull differently.
func (s *ChunkStore) MarkNeighborsMeshDirty(coord ChunkCoord) {
	for _, off := range neighborOffsets {
		s.MarkMeshDirty(coord.Add(off))
	}
}

// ApplyGeneratedPayload installs a freshly generated block array for
// coord, stamping worldGenVersion, clearing PersistDirty and
// LoadedFromDisk and marking the chunk itself mesh-dirty, then marks its
// six neighbors mesh-dirty. Returns the installed chunk.
func (s *ChunkStore) ApplyGeneratedPayload(coord ChunkCoord, blocks []BlockState, worldGenVersion uint32) *Chunk {
	s.mu.Lock()
	c, ok := s.chunks[coord]
	if !ok {
		c = NewChunk(coord)
		s.chunks[coord] = c
		s.modCount++
	}
	copy(c.Blocks[:], blocks)
	c.WorldGenVersion = worldGenVersion
	c.PersistDirty = false
	c.LoadedFromDisk = false
	c.touch()
	s.mu.Unlock()
	s.MarkNeighborsMeshDirty(coord)
	return c
}

// ApplyLoadedPayload installs a loader-assembled block array for coord.
// If the chunk is already resident with a local edit pending
// (PersistDirty), the payload is dropped and false is returned: the
// local edit wins over a racing disk read. Otherwise the array is
// installed, worldGenVersion/loadedFromDisk are stamped, dirty flags
// are cleared, and the six neighbors are marked mesh-dirty.
func (s *ChunkStore) ApplyLoadedPayload(coord ChunkCoord, blocks []BlockState, worldGenVersion uint32, loadedFromDisk bool) bool {
	s.mu.Lock()
	c, ok := s.chunks[coord]
	if ok && c.PersistDirty {
		s.mu.Unlock()
		return false
	}
	if !ok {
		c = NewChunk(coord)
		s.chunks[coord] = c
		s.modCount++
	}
	copy(c.Blocks[:], blocks)
	c.WorldGenVersion = worldGenVersion
	c.PersistDirty = false
	c.MeshDirty = false
	c.LoadedFromDisk = loadedFromDisk
	c.MeshRevision++
	s.mu.Unlock()
	s.MarkNeighborsMeshDirty(coord)
	return true
}

// ClearMeshDirty clears the mesh-dirty flag for coord without touching
// its revision; called after a mesh matching the current revision has
// been installed. No-op if the chunk is absent.
func (s *ChunkStore) ClearMeshDirty(coord ChunkCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.chunks[coord]; ok {
		c.MeshDirty = false
	}
}

// GetBlock returns the block at world coordinates, or air if the
// containing chunk is absent. Never allocates.
func (s *ChunkStore) GetBlock(wx, wy, wz int32) BlockState {
	coord := WorldToChunkCoord(wx, wy, wz)
	s.mu.RLock()
	c, ok := s.chunks[coord]
	s.mu.RUnlock()
	if !ok {
		return Air
	}
	lx, ly, lz := WorldToLocal(wx, wy, wz)
	return c.GetLocal(lx, ly, lz)
}
