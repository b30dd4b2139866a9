// Package registry supplies the BlockRegistry the streaming core consumes:
// a process-wide identifier<->numeric-ID mapping with per-type opacity and
// solidity metadata. Asset loading, texture atlasing and anything else
// rendering-specific is out of scope here.
package registry

import "fmt"

// BlockID is the numeric type identifier stored in a voxel.BlockState.
type BlockID = uint16

// BlockType carries the metadata the streaming core needs about a block:
// whether it occludes neighboring faces and whether it is solid for
// purposes outside this module's concern (collision, etc. are external).
type BlockType struct {
	Name     string
	IsOpaque bool
	IsSolid  bool
}

// BlockRegistry maps identifiers to numeric IDs and numeric IDs to type
// metadata. Implementations are expected to be built once at startup and
// treated as read-only afterward; Registry below is the concrete,
// in-memory implementation this module ships.
type BlockRegistry interface {
	FindByIdentifier(identifier string) (BlockID, bool)
	GetType(id BlockID) (BlockType, bool)
}

// Registry is an in-memory BlockRegistry, built by repeated calls to
// Register and then used read-only.
type Registry struct {
	byName map[string]BlockID
	byID   map[BlockID]BlockType
	nextID BlockID
}

// New returns an empty registry with block ID 0 reserved for air.
func New() *Registry {
	r := &Registry{
		byName: make(map[string]BlockID),
		byID:   make(map[BlockID]BlockType),
		nextID: 1,
	}
	r.byID[0] = BlockType{Name: "air", IsOpaque: false, IsSolid: false}
	r.byName["air"] = 0
	return r
}

// Register assigns the next free numeric ID to identifier and records its
// type metadata. Panics on a duplicate identifier since the registry is a
// startup-time, programmer-controlled construct, not a runtime data path.
func (r *Registry) Register(identifier string, t BlockType) BlockID {
	if _, exists := r.byName[identifier]; exists {
		panic(fmt.Sprintf("registry: duplicate block identifier %q", identifier))
	}
	id := r.nextID
	r.nextID++
	t.Name = identifier
	r.byName[identifier] = id
	r.byID[id] = t
	return id
}

// FindByIdentifier implements BlockRegistry.
func (r *Registry) FindByIdentifier(identifier string) (BlockID, bool) {
	id, ok := r.byName[identifier]
	return id, ok
}

// GetType implements BlockRegistry.
func (r *Registry) GetType(id BlockID) (BlockType, bool) {
	t, ok := r.byID[id]
	return t, ok
}

var _ BlockRegistry = (*Registry)(nil)
