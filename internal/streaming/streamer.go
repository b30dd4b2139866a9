// Package streaming implements ChunkStreamer, the central scheduler
// driving a chunk coordinate through Missing -> QueuedGen -> ReadyData
// -> QueuedMesh -> ReadyMesh (or directly from a loader-applied payload
// into ReadyData), partitioning worker budgets into a synchronous walk
// pass and an asynchronous completion-draining pass every frame.
package streaming

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/dantero/voxelcore/internal/loader"
	"github.com/dantero/voxelcore/internal/meshing"
	"github.com/dantero/voxelcore/internal/registry"
	"github.com/dantero/voxelcore/internal/voxel"
	"github.com/dantero/voxelcore/internal/worldgen"
	"github.com/dantero/voxelcore/internal/workerpool"
)

// ChunkStreamer is the central scheduler. It owns no chunks or meshes
// itself (those live in the ChunkStore/MeshStore it's handed) but owns
// every in-flight generation and mesh job plus the per-coord state
// machine describing what stage each desired chunk is in.
type ChunkStreamer struct {
	store     *voxel.ChunkStore
	meshes    *voxel.MeshStore
	registry  registry.BlockRegistry
	generator worldgen.Generator
	builder   meshing.MeshBuilder
	ldr       *loader.AsyncChunkLoader // nil disables loader-backed loads entirely
	logger    *zap.Logger
	opts      Options

	genPool  *workerpool.Pool[genJob, genResult]
	meshPool *workerpool.Pool[meshJob, meshResult]

	mu          sync.Mutex
	state       map[voxel.ChunkCoord]State
	cancelFlags map[voxel.ChunkCoord]*atomic.Bool
	desired     []voxel.ChunkCoord
	desiredSet  map[voxel.ChunkCoord]bool
	center      voxel.ChunkCoord
	haveCenter  bool

	genInFlight        int
	meshInFlightMiss   int
	meshInFlightDirty  int
}

// New constructs a streamer. builder and generator must be non-nil;
// ldr may be nil, in which case every missing chunk is generated.
func New(store *voxel.ChunkStore, meshes *voxel.MeshStore, reg registry.BlockRegistry, generator worldgen.Generator, builder meshing.MeshBuilder, ldr *loader.AsyncChunkLoader, logger *zap.Logger, opts Options) *ChunkStreamer {
	opts = opts.withDefaults()
	s := &ChunkStreamer{
		store:       store,
		meshes:      meshes,
		registry:    reg,
		generator:   generator,
		builder:     builder,
		ldr:         ldr,
		logger:      logger,
		opts:        opts,
		state:       make(map[voxel.ChunkCoord]State),
		cancelFlags: make(map[voxel.ChunkCoord]*atomic.Bool),
		desiredSet:  make(map[voxel.ChunkCoord]bool),
	}
	s.genPool = workerpool.New(opts.GenWorkers, opts.GenQueueSize, s.runGenJob)
	s.meshPool = workerpool.New(opts.MeshWorkers, opts.MeshQueueSize, s.runMeshJob)
	return s
}

// Shutdown stops both worker pools.
func (s *ChunkStreamer) Shutdown() {
	s.genPool.Shutdown()
	s.meshPool.Shutdown()
	if s.ldr != nil {
		s.ldr.Shutdown()
	}
}

// ChunkStateList returns every tracked coord and its current state, the
// debug surface spec.md names. Coords resident in ReadyMesh with no
// tracked entry (shouldn't happen in steady state) are not included;
// callers needing ground truth should also consult the ChunkStore.
func (s *ChunkStreamer) ChunkStateList() []ChunkStateEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ChunkStateEntry, 0, len(s.state))
	for c, st := range s.state {
		out = append(out, ChunkStateEntry{Coord: c, State: st})
	}
	return out
}

// QueuePressure reports current back-pressure across every stage.
func (s *ChunkStreamer) QueuePressure() QueuePressure {
	s.mu.Lock()
	genPending, meshPending := 0, 0
	for _, st := range s.state {
		switch st {
		case StateQueuedGen:
			genPending++
		case StateQueuedMesh:
			meshPending++
		}
	}
	s.mu.Unlock()

	loadPending := 0
	if s.ldr != nil {
		loadPending = s.ldr.PendingCount()
	}

	qp := QueuePressure{
		GenQueued:   s.genPool.QueueLen(),
		MeshQueued:  s.meshPool.QueueLen(),
		LoadPending: loadPending,
		GenPending:  genPending,
		MeshPending: meshPending,
	}
	qp.Overloaded = (s.opts.GenQueueLimit > 0 && genPending >= s.opts.GenQueueLimit) ||
		(s.opts.MeshQueueLimit > 0 && meshPending >= s.opts.MeshQueueLimit)
	return qp
}

// chunkCoordFromPos maps an observer position to its containing chunk.
func chunkCoordFromPos(pos mgl32.Vec3) voxel.ChunkCoord {
	return voxel.WorldToChunkCoord(
		int32(math.Floor(float64(pos.X()))),
		int32(math.Floor(float64(pos.Y()))),
		int32(math.Floor(float64(pos.Z()))),
	)
}

// Update runs one frame of the desired-set pass: rebuild-on-move,
// budgeted residency/generation walk, full mesh-scheduling pass, then
// eviction. See ProcessCompletions for the separate apply pass.
func (s *ChunkStreamer) Update(observerPos mgl32.Vec3) {
	center := chunkCoordFromPos(observerPos)

	s.mu.Lock()
	moved := !s.haveCenter || center != s.center
	if moved {
		s.center = center
		s.haveCenter = true
	}
	s.mu.Unlock()

	if moved {
		s.rebuildDesiredSet(center)
	}

	s.walkBudgetedResidency()
	s.demoteDirtyReadyMesh()
	s.walkMeshScheduling()
	s.evict(center)
}

// rebuildDesiredSet recomputes the full view cube (component-wise bound
// by ViewDistanceChunks, sorted by ascending squared distance — a cube
// of (2*view+1)^3 coords, not a sphere; see DESIGN.md) and cancels any
// in-flight generation job whose coord just left it.
func (s *ChunkStreamer) rebuildDesiredSet(center voxel.ChunkCoord) {
	view := int32(s.opts.ViewDistanceChunks)
	desired := make([]voxel.ChunkCoord, 0, (2*view+1)*(2*view+1)*(2*view+1))
	for dx := -view; dx <= view; dx++ {
		for dy := -view; dy <= view; dy++ {
			for dz := -view; dz <= view; dz++ {
				desired = append(desired, voxel.ChunkCoord{X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz})
			}
		}
	}
	sort.Slice(desired, func(i, j int) bool {
		return desired[i].DistSq(center) < desired[j].DistSq(center)
	})

	newSet := make(map[voxel.ChunkCoord]bool, len(desired))
	for _, c := range desired {
		newSet[c] = true
	}

	s.mu.Lock()
	oldSet := s.desiredSet
	s.desired = desired
	s.desiredSet = newSet
	for c, st := range s.state {
		if newSet[c] || !oldSet[c] {
			continue
		}
		if st == StateQueuedGen {
			if flag := s.cancelFlags[c]; flag != nil {
				flag.Store(true)
			}
		}
		// QueuedMesh jobs are left to complete; their result is simply
		// discarded on apply once the chunk is gone (see evict).
	}
	s.mu.Unlock()
}

// walkBudgetedResidency processes up to UpdateBudgetPerFrame desired
// coords in ascending-distance order: evicting and regenerating stale
// generations, and requesting or generating missing ones.
func (s *ChunkStreamer) walkBudgetedResidency() {
	s.mu.Lock()
	desired := s.desired
	s.mu.Unlock()

	budget := s.opts.UpdateBudgetPerFrame
	limit := len(desired)
	if budget > 0 && budget < limit {
		limit = budget
	}

	for i := 0; i < limit; i++ {
		coord := desired[i]
		if chunk := s.store.Get(coord); chunk != nil {
			if chunk.WorldGenVersion != s.generator.Version() {
				s.evictCoord(coord)
			} else {
				continue
			}
		}

		s.mu.Lock()
		st := s.state[coord]
		s.mu.Unlock()
		if st == StateQueuedGen {
			continue
		}

		if s.ldr != nil && s.ldr.Request(coord) {
			continue
		}

		s.enqueueGeneration(coord)
	}
}

func (s *ChunkStreamer) enqueueGeneration(coord voxel.ChunkCoord) {
	s.mu.Lock()
	genPending := 0
	for _, st := range s.state {
		if st == StateQueuedGen {
			genPending++
		}
	}
	if s.opts.GenQueueLimit > 0 && genPending >= s.opts.GenQueueLimit {
		s.mu.Unlock()
		return
	}
	var cancel atomic.Bool
	s.cancelFlags[coord] = &cancel
	s.state[coord] = StateQueuedGen
	s.mu.Unlock()

	if !s.genPool.Submit(genJob{Coord: coord, Cancel: &cancel}) {
		s.mu.Lock()
		delete(s.state, coord)
		delete(s.cancelFlags, coord)
		s.mu.Unlock()
	}
}

// demoteDirtyReadyMesh moves any ReadyMesh coord whose chunk has gone
// mesh-dirty back to ReadyData, so walkMeshScheduling picks it up.
func (s *ChunkStreamer) demoteDirtyReadyMesh() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c, st := range s.state {
		if st != StateReadyMesh {
			continue
		}
		chunk := s.store.Get(c)
		if chunk != nil && chunk.MeshDirty {
			s.state[c] = StateReadyData
		}
	}
}

// walkMeshScheduling is the full second pass over the desired list:
// every resident, non-dirty-waiting ReadyData chunk whose six neighbors
// are ready gets a mesh job queued, partitioned between first-time and
// dirty-remesh quotas.
func (s *ChunkStreamer) walkMeshScheduling() {
	s.mu.Lock()
	desired := s.desired
	desiredSet := s.desiredSet
	s.mu.Unlock()

	for _, coord := range desired {
		chunk := s.store.Get(coord)
		if chunk == nil {
			continue
		}
		s.mu.Lock()
		st := s.state[coord]
		s.mu.Unlock()
		if st == StateQueuedMesh || st == StateReadyMesh {
			continue
		}
		if !s.neighborsReady(coord, desiredSet) {
			continue
		}
		s.enqueueMesh(coord, chunk)
	}
}

func (s *ChunkStreamer) neighborsReady(coord voxel.ChunkCoord, desiredSet map[voxel.ChunkCoord]bool) bool {
	for _, off := range neighborOffsets {
		n := coord.Add(off)
		if s.store.Has(n) {
			continue
		}
		if !desiredSet[n] {
			continue
		}
		return false
	}
	return true
}

func (s *ChunkStreamer) enqueueMesh(coord voxel.ChunkCoord, chunk *voxel.Chunk) {
	missing := !s.meshes.Contains(coord)

	s.mu.Lock()
	if missing {
		quota := s.missingMeshQuota()
		if quota > 0 && s.meshInFlightMiss >= quota {
			s.mu.Unlock()
			return
		}
		s.meshInFlightMiss++
	} else {
		quota := s.dirtyMeshQuota()
		if quota > 0 && s.meshInFlightDirty >= quota {
			s.mu.Unlock()
			return
		}
		s.meshInFlightDirty++
	}
	s.state[coord] = StateQueuedMesh
	revision := chunk.MeshRevision
	s.mu.Unlock()

	padded := buildPaddedNeighborhood(s.store, coord)
	job := meshJob{Coord: coord, Revision: revision, Chunk: chunk, Padded: padded}
	if !s.meshPool.Submit(job) {
		s.mu.Lock()
		s.state[coord] = StateReadyData
		if missing {
			s.meshInFlightMiss--
		} else {
			s.meshInFlightDirty--
		}
		s.mu.Unlock()
	}
}

// missingMeshQuota and dirtyMeshQuota split MeshQueueLimit per
// MeshMissingShare; a zero MeshQueueLimit means unlimited (quota 0,
// meaning "no cap" in enqueueMesh's check).
func (s *ChunkStreamer) missingMeshQuota() int {
	if s.opts.MeshQueueLimit <= 0 {
		return 0
	}
	q := int(float64(s.opts.MeshQueueLimit) * s.opts.MeshMissingShare)
	if q < 1 {
		q = 1
	}
	return q
}

func (s *ChunkStreamer) dirtyMeshQuota() int {
	if s.opts.MeshQueueLimit <= 0 {
		return 0
	}
	q := s.opts.MeshQueueLimit - s.missingMeshQuota()
	if q < 1 {
		q = 1
	}
	return q
}

// evict drops every resident chunk outside the desired set whose squared
// distance to center exceeds unloadDistance^2 (a sphere, unlike the cubic
// desired set — see DESIGN.md; desired coords are never evicted, even
// where the cube's corners reach past the sphere), then runs a cache-size
// pass dropping non-desired chunks until residency is within
// MaxResidentChunks.
func (s *ChunkStreamer) evict(center voxel.ChunkCoord) {
	unloadSq := int64(s.opts.UnloadDistanceChunks) * int64(s.opts.UnloadDistanceChunks)

	s.mu.Lock()
	desiredSet := s.desiredSet
	s.mu.Unlock()

	var farOut []voxel.ChunkCoord
	s.store.ForEach(func(c *voxel.Chunk) {
		if c.Coord.DistSq(center) > unloadSq && !desiredSet[c.Coord] {
			farOut = append(farOut, c.Coord)
		}
	})
	for _, coord := range farOut {
		s.evictCoord(coord)
	}

	if s.opts.MaxResidentChunks <= 0 || s.store.Len() <= s.opts.MaxResidentChunks {
		return
	}

	var candidates []voxel.ChunkCoord
	s.store.ForEach(func(c *voxel.Chunk) {
		if !desiredSet[c.Coord] {
			candidates = append(candidates, c.Coord)
		}
	})
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DistSq(center) > candidates[j].DistSq(center)
	})
	for _, coord := range candidates {
		if s.store.Len() <= s.opts.MaxResidentChunks {
			return
		}
		s.evictCoord(coord)
	}
}

// evictCoord removes coord's mesh and chunk, cancels any pending
// generation and loader request, and clears its tracked state.
func (s *ChunkStreamer) evictCoord(coord voxel.ChunkCoord) {
	s.meshes.Remove(coord)
	s.store.Remove(coord)
	if s.ldr != nil {
		s.ldr.Cancel(coord)
	}
	s.mu.Lock()
	delete(s.state, coord)
	delete(s.cancelFlags, coord)
	s.mu.Unlock()
}

// ProcessCompletions is called once per frame after Update: drains the
// loader's completions first (capped at RegionDrainBudget region reads
// and LoadApplyBudgetPerFrame payload applies), then applies up to
// ApplyBudgetPerFrame generation results and the same budget of mesh
// results.
func (s *ChunkStreamer) ProcessCompletions(ctx context.Context) {
	if s.ldr != nil {
		s.ldr.DrainCompletions(s.opts.LoadApplyBudgetPerFrame, s.opts.RegionDrainBudget)
	}
	s.drainGenResults()
	s.drainMeshResults()
}

func (s *ChunkStreamer) drainGenResults() {
	budget := s.opts.ApplyBudgetPerFrame
	unlimited := budget <= 0
	for applied := 0; unlimited || applied < budget; {
		select {
		case res := <-s.genPool.Results():
			s.applyGenResult(res)
			applied++
		default:
			return
		}
	}
}

func (s *ChunkStreamer) applyGenResult(res genResult) {
	s.mu.Lock()
	delete(s.cancelFlags, res.Coord)
	if s.state[res.Coord] != StateQueuedGen {
		// Evicted or otherwise moved on while the job ran.
		s.mu.Unlock()
		return
	}
	if res.Cancelled {
		delete(s.state, res.Coord)
		s.mu.Unlock()
		return
	}
	if res.Err != nil {
		delete(s.state, res.Coord)
		s.mu.Unlock()
		if s.logger != nil {
			s.logger.Warn("generation failed", zap.Stringer("coord", res.Coord), zap.Error(res.Err))
		}
		return
	}
	s.state[res.Coord] = StateReadyData
	s.mu.Unlock()

	s.store.ApplyGeneratedPayload(res.Coord, res.Blocks, res.Version)
}

func (s *ChunkStreamer) drainMeshResults() {
	budget := s.opts.ApplyBudgetPerFrame
	unlimited := budget <= 0
	for applied := 0; unlimited || applied < budget; {
		select {
		case res := <-s.meshPool.Results():
			s.applyMeshResult(res)
			applied++
		default:
			return
		}
	}
}

func (s *ChunkStreamer) applyMeshResult(res meshResult) {
	s.mu.Lock()
	wasMissing := s.meshInFlightMiss > 0 && !s.meshes.Contains(res.Coord)
	if wasMissing {
		s.meshInFlightMiss--
	} else if s.meshInFlightDirty > 0 {
		s.meshInFlightDirty--
	}
	if s.state[res.Coord] != StateQueuedMesh {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	chunk := s.store.Get(res.Coord)
	if chunk == nil {
		s.mu.Lock()
		delete(s.state, res.Coord)
		s.mu.Unlock()
		return
	}

	if res.Err != nil || res.Revision != chunk.MeshRevision {
		s.mu.Lock()
		s.state[res.Coord] = StateReadyData
		s.mu.Unlock()
		return
	}

	s.meshes.Set(res.Coord, res.Mesh)
	s.store.ClearMeshDirty(res.Coord)
	s.mu.Lock()
	s.state[res.Coord] = StateReadyMesh
	s.mu.Unlock()
}

// runGenJob executes on the generation worker pool.
func (s *ChunkStreamer) runGenJob(job genJob) genResult {
	blocks := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)
	err := s.generator.Generate(context.Background(), job.Coord, blocks, job.Cancel)
	if job.Cancel.Load() {
		return genResult{Coord: job.Coord, Cancelled: true}
	}
	if err != nil {
		return genResult{Coord: job.Coord, Err: err}
	}
	return genResult{Coord: job.Coord, Blocks: blocks, Version: s.generator.Version()}
}

// runMeshJob executes on the mesh worker pool. Mesh jobs are never
// cancelled; their output is always computed and only discarded on
// apply if the chunk's revision has since advanced.
func (s *ChunkStreamer) runMeshJob(job meshJob) meshResult {
	mesh, err := s.builder.Build(job.Chunk, s.registry, job.Padded)
	if err != nil {
		return meshResult{Coord: job.Coord, Revision: job.Revision, Err: err}
	}
	return meshResult{Coord: job.Coord, Revision: job.Revision, Mesh: mesh}
}
