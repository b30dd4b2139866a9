package meshing

import (
	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

// faceDir is one of the six axis-aligned face normals: East, West, Top,
// Bottom, North, South. faceCorners below shares this ordering
// index-for-index.
type faceDir struct {
	dx, dy, dz int
	normal     byte
}

var faceDirs = [6]faceDir{
	{+1, 0, 0, 2}, // East
	{-1, 0, 0, 3}, // West
	{0, +1, 0, 4}, // Top
	{0, -1, 0, 5}, // Bottom
	{0, 0, +1, 0}, // North
	{0, 0, -1, 1}, // South
}

// faceCorners gives the four corner offsets (relative to the block's min
// corner) for each face direction in faceDirs, wound so the two triangles
// face outward.
var faceCorners = [6][4][3]int{
	{{1, 0, 0}, {1, 1, 0}, {1, 1, 1}, {1, 0, 1}}, // East
	{{0, 0, 1}, {0, 1, 1}, {0, 1, 0}, {0, 0, 0}}, // West
	{{0, 1, 0}, {0, 1, 1}, {1, 1, 1}, {1, 1, 0}}, // Top
	{{0, 0, 1}, {0, 0, 0}, {1, 0, 0}, {1, 0, 1}}, // Bottom
	{{1, 0, 1}, {1, 1, 1}, {0, 1, 1}, {0, 0, 1}}, // North
	{{0, 0, 0}, {0, 1, 0}, {1, 1, 0}, {1, 0, 0}}, // South
}

// CullingBuilder emits one quad per visible face: a face is visible when
// the neighboring block (read from the padded neighborhood, so chunk-edge
// faces see across the boundary) is not opaque. It does not merge
// coplanar faces into larger quads; greedy run-merging is a mesh
// emission detail left to the renderer-facing layer above this core.
type CullingBuilder struct{}

// NewCullingBuilder returns a ready-to-use builder; it carries no state.
func NewCullingBuilder() *CullingBuilder {
	return &CullingBuilder{}
}

// packVertex encodes a local-space vertex position, face normal and
// brightness into a single uint32: X(6) Y(6) Z(6) N(3) B(8). Positions
// run 0..SIZE inclusive, so each axis needs six bits.
func packVertex(x, y, z int, normal, brightness byte) uint32 {
	return uint32(x) | uint32(y)<<6 | uint32(z)<<12 | uint32(normal)<<18 | uint32(brightness)<<21
}

// Build implements MeshBuilder.
func (b *CullingBuilder) Build(chunk *voxel.Chunk, reg registry.BlockRegistry, padded []voxel.BlockState) (voxel.Mesh, error) {
	if chunk.IsEmpty() {
		return voxel.Mesh{Revision: chunk.MeshRevision}, nil
	}

	vertices := make([]uint32, 0, 1024)
	indices := make([]uint32, 0, 1536)

	opaqueAt := func(x, y, z int) bool {
		s := padded[PaddedIndex(x, y, z)]
		if s.IsAir() {
			return false
		}
		t, ok := reg.GetType(s.TypeID)
		return ok && t.IsOpaque
	}

	for y := 0; y < voxel.SIZE; y++ {
		for z := 0; z < voxel.SIZE; z++ {
			for x := 0; x < voxel.SIZE; x++ {
				block := chunk.GetLocal(x, y, z)
				if block.IsAir() {
					continue
				}
				materialID := uint32(block.TypeID)
				brightness := block.SkyLight()
				if block.BlockLight() > brightness {
					brightness = block.BlockLight()
				}

				for i, f := range faceDirs {
					if opaqueAt(x+f.dx, y+f.dy, z+f.dz) {
						continue
					}
					base := uint32(len(vertices) / VertexStride)
					for _, c := range faceCorners[i] {
						vertices = append(vertices,
							packVertex(x+c[0], y+c[1], z+c[2], f.normal, brightness),
							materialID,
						)
					}
					indices = append(indices,
						base+0, base+1, base+2,
						base+2, base+3, base+0,
					)
				}
			}
		}
	}

	return voxel.Mesh{Vertices: vertices, Indices: indices, Revision: chunk.MeshRevision}, nil
}

var _ MeshBuilder = (*CullingBuilder)(nil)
