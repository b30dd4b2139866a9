package registry

import "testing"

func TestAirIsIDZero(t *testing.T) {
	r := New()
	id, ok := r.FindByIdentifier("air")
	if !ok || id != 0 {
		t.Errorf("expected air at ID 0, got %d, %v", id, ok)
	}
	typ, ok := r.GetType(0)
	if !ok || typ.IsOpaque || typ.IsSolid {
		t.Errorf("expected air to be transparent and non-solid, got %+v", typ)
	}
}

func TestRegisterAssignsDistinctIDs(t *testing.T) {
	r := New()
	a := r.Register("stone", BlockType{IsOpaque: true, IsSolid: true})
	b := r.Register("dirt", BlockType{IsOpaque: true, IsSolid: true})
	if a == b {
		t.Errorf("expected distinct IDs, got %d and %d", a, b)
	}
}

func TestFindByIdentifierUnknown(t *testing.T) {
	r := New()
	if _, ok := r.FindByIdentifier("nonexistent"); ok {
		t.Errorf("expected unknown identifier to miss")
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on duplicate identifier")
		}
	}()
	r := New()
	r.Register("stone", BlockType{})
	r.Register("stone", BlockType{})
}

func TestNewDefaultIncludesCoreBlocks(t *testing.T) {
	r := NewDefault()
	for _, name := range []string{"grass", "dirt", "stone", "bedrock"} {
		if _, ok := r.FindByIdentifier(name); !ok {
			t.Errorf("expected default registry to contain %q", name)
		}
	}
}
