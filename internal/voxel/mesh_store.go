package voxel

import (
	"sync"

	"github.com/google/uuid"
)

// meshEntry pairs a mesh with the per-coord revision counter bumped on
// every Set, independent of the mesh's own Revision field (which records
// the chunk revision it was built from).
type meshEntry struct {
	mesh    Mesh
	counter uint64
}

// MeshStore is a concurrent multi-reader, exclusive-writer map from chunk
// coordinate to its current mesh. Every Set bumps both the entry's own
// counter and the store-global version. Set is legal from the main thread
// only; readers hold the shared lock across a whole snapshot so an entry
// disappearing between lookup and use is tolerated by construction.
type MeshStore struct {
	mu      sync.RWMutex
	entries map[ChunkCoord]meshEntry
	version uint64
	storeID uuid.UUID
}

// NewMeshStore returns an empty store with a fresh identity.
func NewMeshStore() *MeshStore {
	return &MeshStore{
		entries: make(map[ChunkCoord]meshEntry),
		storeID: uuid.New(),
	}
}

// StoreID returns this store's unique identity, stable for its lifetime.
// Higher layers use it to tag rendering state with a mesh identity so a
// swapped-out MeshStore (e.g. on world reload) invalidates cached handles.
func (s *MeshStore) StoreID() uuid.UUID {
	return s.storeID
}

// Set installs a mesh for coord, replacing any previous entry.
func (s *MeshStore) Set(coord ChunkCoord, mesh Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.entries[coord]
	s.entries[coord] = meshEntry{mesh: mesh, counter: prev.counter + 1}
	s.version++
}

// Remove drops the mesh for coord, if any.
func (s *MeshStore) Remove(coord ChunkCoord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[coord]; ok {
		delete(s.entries, coord)
		s.version++
	}
}

// Clear drops every mesh.
func (s *MeshStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[ChunkCoord]meshEntry)
	s.version++
}

// Contains reports whether coord currently has a mesh.
func (s *MeshStore) Contains(coord ChunkCoord) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[coord]
	return ok
}

// Get returns the mesh for coord and whether it was present.
func (s *MeshStore) Get(coord ChunkCoord) (Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[coord]
	return e.mesh, ok
}

// ForEach calls fn for every resident mesh under the store's shared read
// lock; fn must not call back into the store.
func (s *MeshStore) ForEach(fn func(ChunkCoord, Mesh)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for c, e := range s.entries {
		fn(c, e.mesh)
	}
}

// Len returns the number of resident meshes.
func (s *MeshStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Version returns the store-global counter, bumped on every Set/Remove/Clear.
func (s *MeshStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
