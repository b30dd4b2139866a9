package voxel

import "testing"

func TestGetBlockOnAbsentChunkReturnsAir(t *testing.T) {
	s := NewChunkStore()
	if b := s.GetBlock(5, 5, 5); b != Air {
		t.Errorf("expected air, got %+v", b)
	}
	if s.Len() != 0 {
		t.Errorf("GetBlock must not allocate a chunk, Len() = %d", s.Len())
	}
}

func TestSetBlockThenGetBlockRoundTrips(t *testing.T) {
	s := NewChunkStore()
	want := BlockState{TypeID: 7, Meta: 2, Light: 0xAB}
	s.SetBlock(33, -1, 100, want)
	if got := s.GetBlock(33, -1, 100); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSetBlockMarksBoundaryNeighborsDirty(t *testing.T) {
	s := NewChunkStore()
	center := ChunkCoord{}
	neighbors := []ChunkCoord{
		{X: 1}, {X: -1}, {Y: 1}, {Y: -1}, {Z: 1}, {Z: -1},
	}
	for _, n := range neighbors {
		s.GetOrCreate(n)
	}
	s.GetOrCreate(center)

	// corner of the chunk at local (0,0,0) touches the -X, -Y, -Z neighbors.
	s.SetBlock(0, 0, 0, BlockState{TypeID: 1})

	for _, n := range []ChunkCoord{{X: -1}, {Y: -1}, {Z: -1}} {
		c := s.Get(n)
		if c == nil || !c.MeshDirty {
			t.Errorf("expected neighbor %v to be mesh dirty", n)
		}
	}
	for _, n := range []ChunkCoord{{X: 1}, {Y: 1}, {Z: 1}} {
		c := s.Get(n)
		if c != nil && c.MeshDirty {
			t.Errorf("neighbor %v should not be dirtied by a far corner edit", n)
		}
	}
}

func TestSetBlockBumpsMeshRevisionMonotonically(t *testing.T) {
	s := NewChunkStore()
	s.SetBlock(0, 0, 0, BlockState{TypeID: 1})
	c := s.Get(ChunkCoord{})
	first := c.MeshRevision
	s.SetBlock(1, 0, 0, BlockState{TypeID: 2})
	if c.MeshRevision <= first {
		t.Errorf("expected revision to increase, got %d then %d", first, c.MeshRevision)
	}
}

func TestRemoveReportsAbsence(t *testing.T) {
	s := NewChunkStore()
	if s.Remove(ChunkCoord{}) {
		t.Errorf("Remove on empty store should return false")
	}
	s.GetOrCreate(ChunkCoord{})
	if !s.Remove(ChunkCoord{}) {
		t.Errorf("Remove of a resident chunk should return true")
	}
	if s.Has(ChunkCoord{}) {
		t.Errorf("chunk should be gone after Remove")
	}
}

func TestWorldToChunkCoordFloorsTowardNegativeInfinity(t *testing.T) {
	cases := []struct {
		x, y, z int32
		want    ChunkCoord
	}{
		{0, 0, 0, ChunkCoord{0, 0, 0}},
		{31, 0, 0, ChunkCoord{0, 0, 0}},
		{32, 0, 0, ChunkCoord{1, 0, 0}},
		{-1, 0, 0, ChunkCoord{-1, 0, 0}},
		{-32, 0, 0, ChunkCoord{-1, 0, 0}},
		{-33, 0, 0, ChunkCoord{-2, 0, 0}},
	}
	for _, tc := range cases {
		if got := WorldToChunkCoord(tc.x, tc.y, tc.z); got != tc.want {
			t.Errorf("WorldToChunkCoord(%d,%d,%d) = %v, want %v", tc.x, tc.y, tc.z, got, tc.want)
		}
	}
}
