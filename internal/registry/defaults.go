package registry

// NewDefault returns a Registry pre-populated with a small fixed block
// set covering the common terrain and structural types.
func NewDefault() *Registry {
	r := New()
	r.Register("grass", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("dirt", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("stone", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("bedrock", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("stonebrick", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("planks_oak", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("planks_birch", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("planks_spruce", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("planks_jungle", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("planks_acacia", BlockType{IsOpaque: true, IsSolid: true})
	r.Register("glass", BlockType{IsOpaque: false, IsSolid: true})
	return r
}
