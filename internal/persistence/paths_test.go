package persistence

import "testing"

func TestPathsWorldInfo(t *testing.T) {
	p := NewPaths("")
	if got, want := p.WorldInfoPath(), "worldInfo.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathsNormalizesZoneIDColon(t *testing.T) {
	p := NewPaths("")
	if got, want := p.ZoneInfoPath("core:overworld"), "zones/core/overworld/zoneInfo.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathsRegionPath(t *testing.T) {
	p := NewPaths("")
	key := RegionKey{ZoneID: "core:overworld", X: -1, Y: 0, Z: 2}
	got := p.RegionPath(key)
	want := "zones/core/overworld/regions/region_-1_0_2.bin"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathsEntityRegionPath(t *testing.T) {
	p := NewPaths("")
	key := RegionKey{ZoneID: "core:overworld", X: 0, Y: 0, Z: 0}
	got := p.EntityRegionPath(key)
	want := "zones/core/overworld/entities/entityRegion_0_0_0.bin"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPathsRespectsRoot(t *testing.T) {
	p := NewPaths("saves/world1")
	if got, want := p.WorldInfoPath(), "saves/world1/worldInfo.json"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
