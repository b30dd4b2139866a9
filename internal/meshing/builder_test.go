package meshing

import (
	"testing"

	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

func allAirPadded() []voxel.BlockState {
	return make([]voxel.BlockState, Padded*Padded*Padded)
}

func TestBuildEmptyChunkProducesEmptyMesh(t *testing.T) {
	b := NewCullingBuilder()
	c := voxel.NewChunk(voxel.ChunkCoord{})
	mesh, err := b.Build(c, registry.NewDefault(), allAirPadded())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !mesh.IsEmpty() {
		t.Errorf("expected empty mesh for an all-air chunk")
	}
}

func TestBuildSingleSurroundedBlockProducesSixFaces(t *testing.T) {
	b := NewCullingBuilder()
	reg := registry.NewDefault()
	stoneID, _ := reg.FindByIdentifier("stone")

	c := voxel.NewChunk(voxel.ChunkCoord{})
	c.SetLocal(5, 5, 5, voxel.BlockState{TypeID: stoneID})

	padded := allAirPadded()
	mesh, err := b.Build(c, reg, padded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const facesExpected = 6
	const trisPerFace = 2
	const idxPerTri = 3
	if len(mesh.Indices) != facesExpected*trisPerFace*idxPerTri {
		t.Errorf("expected %d indices for a fully exposed block, got %d",
			facesExpected*trisPerFace*idxPerTri, len(mesh.Indices))
	}
}

func TestBuildHidesFaceAgainstOpaqueNeighbor(t *testing.T) {
	b := NewCullingBuilder()
	reg := registry.NewDefault()
	stoneID, _ := reg.FindByIdentifier("stone")

	c := voxel.NewChunk(voxel.ChunkCoord{})
	c.SetLocal(0, 0, 0, voxel.BlockState{TypeID: stoneID})

	padded := allAirPadded()
	// Neighbor to the west, across the chunk boundary, is opaque: the
	// -X face of the block at local (0,0,0) must not be emitted.
	padded[PaddedIndex(-1, 0, 0)] = voxel.BlockState{TypeID: stoneID}

	mesh, err := b.Build(c, reg, padded)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	const idxPerFace = 6
	if len(mesh.Indices) != 5*idxPerFace {
		t.Errorf("expected 5 visible faces with one neighbor occluding, got %d indices (%d faces)",
			len(mesh.Indices), len(mesh.Indices)/idxPerFace)
	}
}

func TestBuildRecordsChunkRevision(t *testing.T) {
	b := NewCullingBuilder()
	reg := registry.NewDefault()
	c := voxel.NewChunk(voxel.ChunkCoord{})
	c.MeshRevision = 42
	mesh, _ := b.Build(c, reg, allAirPadded())
	if mesh.Revision != 42 {
		t.Errorf("expected mesh to carry chunk revision 42, got %d", mesh.Revision)
	}
}
