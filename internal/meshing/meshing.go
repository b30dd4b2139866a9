// Package meshing supplies the MeshBuilder the streaming core consumes: a
// pure function from a chunk's blocks plus its padded neighborhood to a
// vertex/index buffer. Texture atlasing, tinting and anything else
// renderer-specific is out of scope; the packed vertex layout below
// carries a material ID in its second word, two uint32 per vertex being
// cheap to upload and easy to decode in a shader, without this module
// needing to know what a shader is.
package meshing

import (
	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

// Padded is the edge length of the padded block neighborhood a mesh build
// receives: one block of context on every side of the chunk.
const Padded = voxel.SIZE + 2

// VertexStride is the number of uint32 words per packed vertex.
const VertexStride = 2

// MeshBuilder is the contract the streamer's mesh jobs call.
type MeshBuilder interface {
	// Build produces a Mesh from chunk's own metadata and a padded block
	// neighborhood (length Padded^3, see PaddedIndex for the indexing
	// convention). Implementations must be pure: no access to any store.
	Build(chunk *voxel.Chunk, reg registry.BlockRegistry, padded []voxel.BlockState) (voxel.Mesh, error)
}

// PaddedIndex maps a local coordinate in [-1, SIZE] on every axis (-1 and
// SIZE being one block into the neighbor chunk) to an offset into a
// Padded^3 padded block slice.
func PaddedIndex(x, y, z int) int {
	return ((y+1)*Padded+(z+1))*Padded + (x + 1)
}
