// Package worldfacade exposes WorldFacade, the single entry point a host
// application drives: block read/write, the per-frame streaming tick, and
// whole-world save/load. It owns no state of its own beyond the
// components it wires together (ChunkStore, MeshStore, ChunkStreamer,
// RegionContainer) and is a thin coordinator over them rather than a
// second copy of chunk state.
package worldfacade

import (
	"context"
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dantero/voxelcore/internal/persistence"
	"github.com/dantero/voxelcore/internal/streaming"
	"github.com/dantero/voxelcore/internal/voxel"
)

// WorldFacade is the top-level coordinator: every host interaction with
// a zone's voxel content goes through it.
type WorldFacade struct {
	zoneID    string
	store     *voxel.ChunkStore
	meshes    *voxel.MeshStore
	streamer  *streaming.ChunkStreamer
	container *persistence.RegionContainer
	layout    persistence.RegionLayout
	logger    *zap.Logger

	saveConcurrency  int
	generatorVersion uint32
}

// Options configures a WorldFacade beyond the components handed to New.
type Options struct {
	// SaveConcurrency caps how many regions SaveAll encodes and writes
	// concurrently. Defaults to 4 when zero.
	SaveConcurrency int
}

// New wires a facade around already-constructed components. container
// may be nil for a facade with no persistence backend (e.g. a pure
// in-memory demo); SaveAll and LoadAll become no-ops in that case.
// generatorVersion is the config version the world generator currently
// produces chunks under (generator.Version()); LoadAll compares it
// against the version recorded in zoneInfo.json to detect a zone saved
// under an older world-gen configuration.
func New(zoneID string, store *voxel.ChunkStore, meshes *voxel.MeshStore, streamer *streaming.ChunkStreamer, container *persistence.RegionContainer, layout persistence.RegionLayout, logger *zap.Logger, generatorVersion uint32, opts Options) *WorldFacade {
	if opts.SaveConcurrency <= 0 {
		opts.SaveConcurrency = 4
	}
	return &WorldFacade{
		zoneID:           zoneID,
		store:            store,
		meshes:           meshes,
		streamer:         streamer,
		container:        container,
		layout:           layout,
		logger:           logger,
		saveConcurrency:  opts.SaveConcurrency,
		generatorVersion: generatorVersion,
	}
}

// GetBlock reads the block at world coordinates, air if unloaded.
func (f *WorldFacade) GetBlock(x, y, z int32) voxel.BlockState {
	return f.store.GetBlock(x, y, z)
}

// SetBlock writes a block, marking the owning chunk (and any neighbor
// sharing the edited face) mesh-dirty for the next streaming tick.
func (f *WorldFacade) SetBlock(x, y, z int32, state voxel.BlockState) {
	f.store.SetBlock(x, y, z, state)
}

// UpdateStreaming runs one frame of the streaming scheduler centered on
// observerPos, then applies whatever generation/mesh/load work already
// completed. Host applications call this once per tick.
func (f *WorldFacade) UpdateStreaming(ctx context.Context, observerPos mgl32.Vec3) {
	f.streamer.Update(observerPos)
	f.streamer.ProcessCompletions(ctx)
}

// QueuePressure reports the streamer's current back-pressure, for a host
// that wants to throttle its own tick rate under load.
func (f *WorldFacade) QueuePressure() streaming.QueuePressure {
	return f.streamer.QueuePressure()
}

// ChunkStateList is the debug surface listing every tracked coordinate's
// streaming state.
func (f *WorldFacade) ChunkStateList() []streaming.ChunkStateEntry {
	return f.streamer.ChunkStateList()
}

// Mesh returns the current mesh for coord, if one has been built.
func (f *WorldFacade) Mesh(coord voxel.ChunkCoord) (voxel.Mesh, bool) {
	return f.meshes.Get(coord)
}

// Clear drops every resident chunk and mesh without persisting anything,
// returning the facade to an empty zone in memory.
func (f *WorldFacade) Clear() {
	var coords []voxel.ChunkCoord
	f.store.ForEach(func(c *voxel.Chunk) { coords = append(coords, c.Coord) })
	for _, c := range coords {
		f.meshes.Remove(c)
		f.store.Remove(c)
	}
}

// ReleaseRenderResources drops every built mesh without touching chunk
// data, for a host tearing down its renderer but keeping the world
// resident (e.g. switching render backends).
func (f *WorldFacade) ReleaseRenderResources() {
	f.meshes.Clear()
}

// SaveAll persists every dirty chunk, grouped by region: each region's
// existing snapshot is loaded, dirty chunks are merged in (an all-air
// span drops that chunk entry entirely so empty regions clean up), and
// the result is written back atomically. Regions are processed
// concurrently up to SaveConcurrency via an errgroup, fanning batched
// I/O out across a bounded worker group rather than looping
// synchronously.
func (f *WorldFacade) SaveAll(ctx context.Context) error {
	if f.container == nil {
		return nil
	}

	dirtyByRegion := make(map[persistence.RegionKey][]*voxel.Chunk)
	f.store.ForEach(func(c *voxel.Chunk) {
		if !c.PersistDirty {
			return
		}
		key := f.layout.RegionForChunk(f.zoneID, c.Coord)
		dirtyByRegion[key] = append(dirtyByRegion[key], c)
	})
	if len(dirtyByRegion) == 0 {
		return nil
	}

	keys := make([]persistence.RegionKey, 0, len(dirtyByRegion))
	for k := range dirtyByRegion {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.saveConcurrency)

	for _, key := range keys {
		key := key
		chunks := dirtyByRegion[key]
		g.Go(func() error {
			return f.saveRegion(gctx, key, chunks)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, chunks := range dirtyByRegion {
		for _, c := range chunks {
			c.PersistDirty = false
		}
	}

	zi := persistence.ZoneInfo{ZoneID: f.zoneID, WorldGenVersion: f.generatorVersion}
	if err := f.container.SaveZoneInfo(ctx, zi); err != nil {
		return fmt.Errorf("save zone info for %s: %w", f.zoneID, err)
	}
	return nil
}

// saveRegion merges chunks' current blocks into the region's existing
// snapshot and writes the result back.
func (f *WorldFacade) saveRegion(ctx context.Context, key persistence.RegionKey, chunks []*voxel.Chunk) error {
	snapshot, err := f.container.LoadRegion(ctx, key)
	if err != nil {
		return fmt.Errorf("load region %s before save: %w", key, err)
	}

	byStorageKey := make(map[int]persistence.ChunkSnapshot, len(snapshot.Chunks))
	for _, cs := range snapshot.Chunks {
		byStorageKey[cs.StorageKey] = cs
	}

	for _, chunk := range chunks {
		if isAllAir(chunk) {
			for _, sk := range f.layout.StorageKeysForChunk(chunk.Coord) {
				delete(byStorageKey, sk)
			}
			continue
		}
		storageKeys := f.layout.StorageKeysForChunk(chunk.Coord)
		if len(storageKeys) == 0 {
			continue
		}
		storageKey := storageKeys[0]
		span := voxel.FullChunkSpan(chunk.Coord)
		blocks := make([]voxel.BlockState, 0, span.BlockCount())
		span.LocalIndices(func(x, y, z int) {
			blocks = append(blocks, chunk.GetLocal(x, y, z))
		})
		byStorageKey[storageKey] = persistence.ChunkSnapshot{
			StorageKey: storageKey,
			Coord:      chunk.Coord,
			Data:       persistence.ChunkData{Span: span, Blocks: blocks},
		}
	}

	merged := persistence.ChunkRegionSnapshot{Key: key, Chunks: make([]persistence.ChunkSnapshot, 0, len(byStorageKey))}
	for _, cs := range byStorageKey {
		merged.Chunks = append(merged.Chunks, cs)
	}

	if err := f.container.SaveRegion(ctx, merged); err != nil {
		return fmt.Errorf("save region %s: %w", key, err)
	}
	return nil
}

func isAllAir(chunk *voxel.Chunk) bool {
	for y := 0; y < voxel.SIZE; y++ {
		for z := 0; z < voxel.SIZE; z++ {
			for x := 0; x < voxel.SIZE; x++ {
				if !chunk.GetLocal(x, y, z).IsAir() {
					return false
				}
			}
		}
	}
	return true
}

// LoadAll eagerly loads every region the given zone has on disk and
// installs their chunks into the store, bypassing the streamer's
// view-distance gating. Intended for small worlds or offline tooling;
// interactive play should rely on the streamer's own loader-backed
// requests instead.
func (f *WorldFacade) LoadAll(ctx context.Context) error {
	if f.container == nil {
		return nil
	}

	var loadedVersion uint32
	zi, ok, err := f.container.LoadZoneInfo(ctx, f.zoneID)
	if err != nil {
		return fmt.Errorf("load zone info for %s: %w", f.zoneID, err)
	}
	if ok {
		loadedVersion = zi.WorldGenVersion
		if loadedVersion != f.generatorVersion && f.logger != nil {
			f.logger.Warn("zone was last saved under a different world-gen version",
				zap.String("zone", f.zoneID),
				zap.Uint32("savedVersion", loadedVersion),
				zap.Uint32("currentVersion", f.generatorVersion),
			)
		}
	}

	keys, err := f.container.ListRegions(ctx, f.zoneID)
	if err != nil {
		return fmt.Errorf("list regions for zone %s: %w", f.zoneID, err)
	}
	for _, key := range keys {
		snapshot, err := f.container.LoadRegion(ctx, key)
		if err != nil {
			return fmt.Errorf("load region %s: %w", key, err)
		}
		for _, cs := range snapshot.Chunks {
			blocks := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)
			i := 0
			cs.Data.Span.LocalIndices(func(x, y, z int) {
				blocks[voxel.LocalIndex(x, y, z)] = cs.Data.Blocks[i]
				i++
			})
			f.store.ApplyLoadedPayload(cs.Coord, blocks, loadedVersion, true)
		}
	}
	return nil
}
