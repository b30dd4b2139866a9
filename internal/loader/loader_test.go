package loader

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dantero/voxelcore/internal/persistence"
	"github.com/dantero/voxelcore/internal/persistence/storage"
	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
	"github.com/dantero/voxelcore/internal/worldgen"
)

const testZone = "overworld"

func newTestLoader(t *testing.T) (*AsyncChunkLoader, *persistence.RegionContainer) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	codec := persistence.NewRegionCodec(false)
	container := persistence.NewRegionContainer(backend, codec, persistence.NewPaths(""))
	layout := persistence.NewDefaultLayout()
	reg := registry.NewDefault()
	generator := worldgen.NewFlatGenerator(0, 1, reg)
	store := voxel.NewChunkStore()

	l := New(container, layout, generator, store, zap.NewNop(), Options{ZoneID: testZone})
	t.Cleanup(l.Shutdown)
	return l, container
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("condition not met within %s", timeout)
}

func TestRequestMissingRegionEventuallyClearsPending(t *testing.T) {
	l, _ := newTestLoader(t)
	store := l.store
	coord := voxel.ChunkCoord{X: 5, Y: 0, Z: 5}

	if !l.Request(coord) {
		t.Fatal("expected Request to accept a coord with no known presence")
	}

	waitUntil(t, time.Second, func() bool {
		l.DrainCompletions(0, 0)
		return !l.IsPending(coord)
	})

	if store.Has(coord) {
		t.Error("a missing region must not populate the chunk store on its own")
	}
}

func TestRequestLoadsPersistedChunk(t *testing.T) {
	l, container := newTestLoader(t)
	store := l.store
	coord := voxel.ChunkCoord{X: 0, Y: 0, Z: 0}

	blocks := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)
	for i := range blocks {
		blocks[i] = voxel.BlockState{TypeID: 42}
	}
	key := persistence.NewDefaultLayout().RegionForChunk(testZone, coord)
	snapshot := persistence.ChunkRegionSnapshot{
		Key: key,
		Chunks: []persistence.ChunkSnapshot{{
			StorageKey: 0,
			Coord:      coord,
			Data:       persistence.ChunkData{Span: voxel.FullChunkSpan(coord), Blocks: blocks},
		}},
	}
	if err := container.SaveRegion(context.Background(), snapshot); err != nil {
		t.Fatalf("SaveRegion: %v", err)
	}

	if !l.Request(coord) {
		t.Fatal("expected Request to accept the coord")
	}

	waitUntil(t, time.Second, func() bool {
		l.DrainCompletions(0, 0)
		return store.Has(coord)
	})

	got := store.Get(coord)
	if !got.LoadedFromDisk {
		t.Error("expected LoadedFromDisk to be true for a persisted chunk")
	}
	if got.GetLocal(0, 0, 0).TypeID != 42 {
		t.Errorf("expected block type 42, got %d", got.GetLocal(0, 0, 0).TypeID)
	}
}

func TestRequestSameCoordTwiceReturnsTrueWithoutDuplicateWork(t *testing.T) {
	l, _ := newTestLoader(t)
	coord := voxel.ChunkCoord{X: 1, Y: 0, Z: 1}

	if !l.Request(coord) {
		t.Fatal("first request should be accepted")
	}
	if !l.Request(coord) {
		t.Fatal("second request for the same pending coord should also return true")
	}
	if l.PendingCount() != 1 {
		t.Errorf("expected exactly one pending coord, got %d", l.PendingCount())
	}
}

func TestCancelRemovesPendingCoord(t *testing.T) {
	l, _ := newTestLoader(t)
	coord := voxel.ChunkCoord{X: 9, Y: 0, Z: 9}

	l.Request(coord)
	l.Cancel(coord)

	if l.IsPending(coord) {
		t.Error("expected coord to no longer be pending after Cancel")
	}
}

func TestRequestRespectsLoadQueueLimit(t *testing.T) {
	backend := storage.NewMemoryBackend()
	codec := persistence.NewRegionCodec(false)
	container := persistence.NewRegionContainer(backend, codec, persistence.NewPaths(""))
	layout := persistence.NewDefaultLayout()
	reg := registry.NewDefault()
	generator := worldgen.NewFlatGenerator(0, 1, reg)
	store := voxel.NewChunkStore()

	l := New(container, layout, generator, store, zap.NewNop(), Options{ZoneID: testZone, LoadQueueLimit: 1})
	defer l.Shutdown()

	a := voxel.ChunkCoord{X: 100, Y: 0, Z: 0}
	b := voxel.ChunkCoord{X: 200, Y: 0, Z: 0}

	if !l.Request(a) {
		t.Fatal("expected first request under the limit to succeed")
	}
	if l.Request(b) {
		t.Fatal("expected second request to be refused once the limit is reached")
	}
}

func TestDrainRegionResultsRespectsRegionDrainBudget(t *testing.T) {
	l, _ := newTestLoader(t)
	coords := []voxel.ChunkCoord{
		{X: 0, Y: 0, Z: 0},
		{X: persistence.RegionSpan, Y: 0, Z: 0},
		{X: 2 * persistence.RegionSpan, Y: 0, Z: 0},
	}
	for _, c := range coords {
		if !l.Request(c) {
			t.Fatalf("expected Request(%v) to be accepted", c)
		}
	}

	waitUntil(t, time.Second, func() bool {
		return len(l.ioPool.Results()) == len(coords)
	})

	l.DrainCompletions(0, 1)
	if got, want := l.PendingCount(), len(coords)-1; got != want {
		t.Fatalf("after draining one region: PendingCount = %d, want %d", got, want)
	}

	l.DrainCompletions(0, 0)
	if got := l.PendingCount(); got != 0 {
		t.Fatalf("after unlimited drain: PendingCount = %d, want 0", got)
	}
}

func TestRequestRespectsMaxInFlightRegions(t *testing.T) {
	backend := storage.NewMemoryBackend()
	codec := persistence.NewRegionCodec(false)
	container := persistence.NewRegionContainer(backend, codec, persistence.NewPaths(""))
	layout := persistence.NewDefaultLayout()
	reg := registry.NewDefault()
	generator := worldgen.NewFlatGenerator(0, 1, reg)
	store := voxel.NewChunkStore()

	l := New(container, layout, generator, store, zap.NewNop(), Options{ZoneID: testZone, MaxInFlightRegions: 1})
	defer l.Shutdown()

	a := voxel.ChunkCoord{X: 0, Y: 0, Z: 0}
	b := voxel.ChunkCoord{X: persistence.RegionSpan, Y: 0, Z: 0}

	if !l.Request(a) {
		t.Fatal("expected the first region's request to be accepted")
	}
	if l.Request(b) {
		t.Fatal("expected a second, distinct region's request to be refused at the in-flight cap")
	}
	if l.InFlightRegionCount() != 1 {
		t.Fatalf("InFlightRegionCount = %d, want 1", l.InFlightRegionCount())
	}
}

func TestRequestSameRegionNeverBlockedByInFlightCap(t *testing.T) {
	backend := storage.NewMemoryBackend()
	codec := persistence.NewRegionCodec(false)
	container := persistence.NewRegionContainer(backend, codec, persistence.NewPaths(""))
	layout := persistence.NewDefaultLayout()
	reg := registry.NewDefault()
	generator := worldgen.NewFlatGenerator(0, 1, reg)
	store := voxel.NewChunkStore()

	l := New(container, layout, generator, store, zap.NewNop(), Options{ZoneID: testZone, MaxInFlightRegions: 1})
	defer l.Shutdown()

	a := voxel.ChunkCoord{X: 0, Y: 0, Z: 0}
	b := voxel.ChunkCoord{X: 0, Y: 0, Z: 1}

	if !l.Request(a) {
		t.Fatal("expected first coord's request to be accepted")
	}
	if !l.Request(b) {
		t.Fatal("expected second coord sharing the same region to be accepted despite the cap of 1")
	}
}

func TestPresenceBackoffRefusesSecondRequestForMissingRegion(t *testing.T) {
	l, _ := newTestLoader(t)
	fakeNow := time.Now()
	l.now = func() time.Time { return fakeNow }

	coord := voxel.ChunkCoord{X: 50, Y: 0, Z: 50}
	l.Request(coord)
	waitUntil(t, time.Second, func() bool {
		l.DrainCompletions(0, 0)
		return !l.IsPending(coord)
	})

	// Still within the backoff window: the same region should be refused.
	if l.Request(coord) {
		t.Error("expected a second request within the presence backoff window to be refused")
	}

	// Advance the fake clock past the backoff window: the region should
	// be probed again.
	fakeNow = fakeNow.Add(3 * time.Second)
	if !l.Request(coord) {
		t.Error("expected a request past the backoff window to be accepted")
	}
}
