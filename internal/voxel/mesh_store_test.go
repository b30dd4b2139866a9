package voxel

import "testing"

func TestMeshStoreSetBumpsVersion(t *testing.T) {
	m := NewMeshStore()
	v0 := m.Version()
	m.Set(ChunkCoord{}, Mesh{Indices: []uint32{0, 1, 2}})
	if m.Version() <= v0 {
		t.Errorf("expected version to increase after Set")
	}
	if !m.Contains(ChunkCoord{}) {
		t.Errorf("expected Contains true after Set")
	}
}

func TestMeshStoreRemoveClearsEntry(t *testing.T) {
	m := NewMeshStore()
	m.Set(ChunkCoord{}, Mesh{})
	m.Remove(ChunkCoord{})
	if m.Contains(ChunkCoord{}) {
		t.Errorf("expected Contains false after Remove")
	}
}

func TestMeshStoreStoreIDStable(t *testing.T) {
	m := NewMeshStore()
	id := m.StoreID()
	m.Set(ChunkCoord{}, Mesh{})
	if m.StoreID() != id {
		t.Errorf("StoreID must not change across mutations")
	}
}
