package voxel

// Mesh is the opaque, renderer-facing result of building geometry for one
// chunk. Vertices are packed two uint32 words per vertex in the layout the
// mesh builder produces (position/normal/brightness, then material ID);
// how they are uploaded or drawn is outside this module.
type Mesh struct {
	Vertices []uint32
	Indices  []uint32
	// Revision is the chunk MeshRevision this mesh was built from.
	Revision uint64
}

// IsEmpty reports whether the mesh carries no geometry.
func (m Mesh) IsEmpty() bool {
	return len(m.Indices) == 0
}
