package worldgen

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
)

func TestFlatGeneratorImplementsInterface(t *testing.T) {
	var _ Generator = NewFlatGenerator(0, 1, registry.NewDefault())
}

func TestNoiseGeneratorImplementsInterface(t *testing.T) {
	var _ Generator = NewNoiseGenerator(1, 1, registry.NewDefault())
}

func TestFlatGeneratorPlacesSurfaceAtConfiguredHeight(t *testing.T) {
	reg := registry.NewDefault()
	g := NewFlatGenerator(0, 1, reg)
	out := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)

	if err := g.Generate(context.Background(), voxel.ChunkCoord{}, out, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	grassID, _ := reg.FindByIdentifier("grass")
	for i, b := range out {
		x, y, z := voxel.IndexToLocal(i)
		if y == 0 {
			if b.TypeID != grassID {
				t.Fatalf("expected grass at y=0 local (%d,%d,%d), got %v", x, y, z, b)
			}
		} else if !b.IsAir() {
			t.Fatalf("expected air away from the surface plane, got %v at y=%d", b, y)
		}
	}
}

func TestFlatGeneratorOtherChunksAreAllAir(t *testing.T) {
	reg := registry.NewDefault()
	g := NewFlatGenerator(0, 1, reg)
	out := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)

	if err := g.Generate(context.Background(), voxel.ChunkCoord{Y: 1}, out, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, b := range out {
		if !b.IsAir() {
			t.Fatalf("expected all air in a chunk above the surface plane, got %v", b)
		}
	}
}

func TestNoiseGeneratorDeterministic(t *testing.T) {
	reg := registry.NewDefault()
	coord := voxel.ChunkCoord{X: 3, Z: -2}

	run := func() []voxel.BlockState {
		g := NewNoiseGenerator(12345, 1, reg)
		out := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)
		if err := g.Generate(context.Background(), coord, out, nil); err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return out
	}

	a := run()
	b := run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("generation not deterministic at index %d: %v != %v", i, a[i], b[i])
		}
	}
}

func TestNoiseGeneratorHighAltitudeChunkIsAllAir(t *testing.T) {
	reg := registry.NewDefault()
	g := NewNoiseGenerator(1337, 1, reg)
	out := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)

	if err := g.Generate(context.Background(), voxel.ChunkCoord{Y: 10}, out, nil); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, b := range out {
		if !b.IsAir() {
			t.Fatalf("expected all air far above the terrain surface, got %v", b)
		}
	}
}

func TestNoiseGeneratorCancellationStopsEarly(t *testing.T) {
	reg := registry.NewDefault()
	g := NewNoiseGenerator(1, 1, reg)
	out := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var flag atomic.Bool
	flag.Store(true)
	err := g.Generate(ctx, voxel.ChunkCoord{}, out, &flag)
	if err == nil {
		t.Fatalf("expected cancellation to produce an error")
	}
}
