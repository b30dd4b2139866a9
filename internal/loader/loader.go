// Package loader implements AsyncChunkLoader: the bridge between the
// persistence backend and ChunkStore. It owns an LRU region cache, a
// region presence cache with backoff, and two worker pools — one for
// region I/O, one for assembling a chunk's payload from cached region
// data (and the world generator, for any uncovered voxels).
package loader

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/dantero/voxelcore/internal/persistence"
	"github.com/dantero/voxelcore/internal/voxel"
	"github.com/dantero/voxelcore/internal/worldgen"
	"github.com/dantero/voxelcore/internal/workerpool"
)

// presenceBackoff is how long a negative presence probe is trusted
// before the loader will ask the backend about a region again.
const presenceBackoff = 2 * time.Second

// Options configures an AsyncChunkLoader.
type Options struct {
	ZoneID           string
	IOWorkers        int
	PayloadWorkers   int
	IOQueueSize      int
	PayloadQueueSize int
	LoadQueueLimit   int // 0 = unlimited
	PrefetchRadius   int // 0 = disabled
	MaxCachedRegions int // 0 = default of 64

	// MaxInFlightRegions caps how many distinct regions may have an I/O
	// job outstanding at once (0 = unlimited). A request for a region
	// already in flight is never refused by this cap, since it attaches
	// to the existing read rather than starting a new one.
	MaxInFlightRegions int
}

// AsyncChunkLoader is the main-thread-facing handle described by
// request/isPending/cancel/drainCompletions; all state it touches
// directly is guarded by mu, and the two worker pools only ever
// communicate back through their result channels.
type AsyncChunkLoader struct {
	container *persistence.RegionContainer
	layout    persistence.RegionLayout
	generator worldgen.Generator
	store     *voxel.ChunkStore
	logger    *zap.Logger
	opts      Options

	cache *lru.Cache[persistence.RegionKey, *LoaderCacheEntry]

	mu            sync.Mutex
	presence      map[persistence.RegionKey]RegionPresence
	inFlight      map[persistence.RegionKey]bool
	pendingChunks map[voxel.ChunkCoord]bool
	regionPending map[persistence.RegionKey][]voxel.ChunkCoord

	ioPool      *workerpool.Pool[regionLoadJob, regionLoadResult]
	payloadPool *workerpool.Pool[payloadJob, payloadResult]

	now func() time.Time
}

// New constructs a loader bound to store: payload applies land directly
// in it. generator must be non-nil since payload builds base-fill any
// uncovered voxel through it.
func New(container *persistence.RegionContainer, layout persistence.RegionLayout, generator worldgen.Generator, store *voxel.ChunkStore, logger *zap.Logger, opts Options) *AsyncChunkLoader {
	if opts.IOWorkers <= 0 {
		opts.IOWorkers = 2
	}
	if opts.PayloadWorkers <= 0 {
		opts.PayloadWorkers = 2
	}
	if opts.IOQueueSize <= 0 {
		opts.IOQueueSize = 64
	}
	if opts.PayloadQueueSize <= 0 {
		opts.PayloadQueueSize = 64
	}
	if opts.MaxCachedRegions <= 0 {
		opts.MaxCachedRegions = 64
	}

	l := &AsyncChunkLoader{
		container:     container,
		layout:        layout,
		generator:     generator,
		store:         store,
		logger:        logger,
		opts:          opts,
		presence:      make(map[persistence.RegionKey]RegionPresence),
		inFlight:      make(map[persistence.RegionKey]bool),
		pendingChunks: make(map[voxel.ChunkCoord]bool),
		regionPending: make(map[persistence.RegionKey][]voxel.ChunkCoord),
		now:           time.Now,
	}

	cache, _ := lru.New[persistence.RegionKey, *LoaderCacheEntry](opts.MaxCachedRegions)
	l.cache = cache
	l.ioPool = workerpool.New(opts.IOWorkers, opts.IOQueueSize, l.loadRegion)
	l.payloadPool = workerpool.New(opts.PayloadWorkers, opts.PayloadQueueSize, l.buildPayload)
	return l
}

// Shutdown stops both worker pools, waiting for in-flight jobs to drain.
func (l *AsyncChunkLoader) Shutdown() {
	l.ioPool.Shutdown()
	l.payloadPool.Shutdown()
}

// Request asks the loader to load coord. It decides in five steps:
// pending short-circuit, back-pressure, cache hit, cache miss with
// presence unknown-or-positive, and cache miss with a cached negative
// presence.
func (l *AsyncChunkLoader) Request(coord voxel.ChunkCoord) bool {
	regionKey := l.layout.RegionForChunk(l.opts.ZoneID, coord)

	l.mu.Lock()
	if l.pendingChunks[coord] {
		l.mu.Unlock()
		return true
	}
	if l.opts.LoadQueueLimit > 0 && len(l.pendingChunks) >= l.opts.LoadQueueLimit {
		l.mu.Unlock()
		return false
	}

	if entry, ok := l.cache.Get(regionKey); ok {
		if !entry.Contains(coord) {
			l.mu.Unlock()
			return false
		}
		l.pendingChunks[coord] = true
		l.mu.Unlock()
		if !l.payloadPool.Submit(payloadJob{Coord: coord, Entry: entry}) {
			l.mu.Lock()
			delete(l.pendingChunks, coord)
			l.mu.Unlock()
			return false
		}
		return true
	}

	if pres, known := l.presence[regionKey]; known && !pres.Exists && l.now().Before(pres.NextCheck) {
		l.mu.Unlock()
		return false
	}

	alreadyInFlight := l.inFlight[regionKey]
	if l.opts.MaxInFlightRegions > 0 && !alreadyInFlight && len(l.inFlight) >= l.opts.MaxInFlightRegions {
		l.mu.Unlock()
		return false
	}

	l.pendingChunks[coord] = true
	l.regionPending[regionKey] = append(l.regionPending[regionKey], coord)
	l.inFlight[regionKey] = true
	l.mu.Unlock()

	if !alreadyInFlight {
		l.ioPool.Submit(regionLoadJob{Key: regionKey})
	}
	if l.opts.PrefetchRadius > 0 {
		l.prefetchAround(regionKey)
	}
	return true
}

// prefetchAround warms the cache for regions within PrefetchRadius of
// center, without attaching them to any particular pending chunk.
func (l *AsyncChunkLoader) prefetchAround(center persistence.RegionKey) {
	r := int32(l.opts.PrefetchRadius)
	for dx := -r; dx <= r; dx++ {
		for dy := -r; dy <= r; dy++ {
			for dz := -r; dz <= r; dz++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				key := persistence.RegionKey{ZoneID: center.ZoneID, X: center.X + dx, Y: center.Y + dy, Z: center.Z + dz}
				l.mu.Lock()
				if _, cached := l.cache.Get(key); cached {
					l.mu.Unlock()
					continue
				}
				if pres, known := l.presence[key]; known && !pres.Exists && l.now().Before(pres.NextCheck) {
					l.mu.Unlock()
					continue
				}
				if l.inFlight[key] {
					l.mu.Unlock()
					continue
				}
				if l.opts.MaxInFlightRegions > 0 && len(l.inFlight) >= l.opts.MaxInFlightRegions {
					l.mu.Unlock()
					continue
				}
				l.inFlight[key] = true
				l.mu.Unlock()
				l.ioPool.Submit(regionLoadJob{Key: key})
			}
		}
	}
}

// IsPending reports whether coord has an outstanding request.
func (l *AsyncChunkLoader) IsPending(coord voxel.ChunkCoord) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pendingChunks[coord]
}

// Cancel removes coord from pendingChunks and any regionPending bucket.
// An in-flight region read for its region is not cancelled; the read
// still completes, it just no longer has a coord waiting on it.
func (l *AsyncChunkLoader) Cancel(coord voxel.ChunkCoord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.pendingChunks, coord)
	for key, coords := range l.regionPending {
		for i, c := range coords {
			if c == coord {
				l.regionPending[key] = append(coords[:i], coords[i+1:]...)
				break
			}
		}
	}
}

// PendingCount reports the number of chunks currently pending, for
// QueuePressure reporting.
func (l *AsyncChunkLoader) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pendingChunks)
}

// InFlightRegionCount reports the number of region reads outstanding,
// for QueuePressure reporting.
func (l *AsyncChunkLoader) InFlightRegionCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.inFlight)
}

// DrainCompletions is called once per frame. It first drains at most
// regionBudget available region-read results (0 = unlimited), then
// applies at most payloadBudget payload-build results directly to the
// ChunkStore. It returns the number of payloads applied.
func (l *AsyncChunkLoader) DrainCompletions(payloadBudget, regionBudget int) int {
	l.drainRegionResults(regionBudget)
	return l.drainPayloadResults(payloadBudget)
}

func (l *AsyncChunkLoader) drainRegionResults(budget int) {
	unlimited := budget <= 0
	for drained := 0; unlimited || drained < budget; drained++ {
		select {
		case res := <-l.ioPool.Results():
			l.handleRegionResult(res)
		default:
			return
		}
	}
}

func (l *AsyncChunkLoader) handleRegionResult(res regionLoadResult) {
	l.mu.Lock()
	delete(l.inFlight, res.Key)
	coords := l.regionPending[res.Key]
	delete(l.regionPending, res.Key)

	if res.Err != nil {
		l.presence[res.Key] = RegionPresence{Exists: false, NextCheck: l.now().Add(presenceBackoff)}
		for _, c := range coords {
			delete(l.pendingChunks, c)
		}
		l.mu.Unlock()
		if l.logger != nil {
			l.logger.Warn("region read failed", zap.Stringer("region", res.Key), zap.Error(res.Err))
		}
		return
	}

	if !res.Exists {
		l.presence[res.Key] = RegionPresence{Exists: false, NextCheck: l.now().Add(presenceBackoff)}
		for _, c := range coords {
			delete(l.pendingChunks, c)
		}
		l.mu.Unlock()
		return
	}

	l.presence[res.Key] = RegionPresence{Exists: true}
	entry := newCacheEntry(res.Snapshot)
	l.cache.Add(res.Key, entry)
	l.mu.Unlock()

	for _, c := range coords {
		l.mu.Lock()
		survived := l.pendingChunks[c]
		l.mu.Unlock()
		if !survived {
			continue
		}
		if !l.payloadPool.Submit(payloadJob{Coord: c, Entry: entry}) {
			l.mu.Lock()
			delete(l.pendingChunks, c)
			l.mu.Unlock()
		}
	}
}

func (l *AsyncChunkLoader) drainPayloadResults(budget int) int {
	applied := 0
	unlimited := budget <= 0
	for unlimited || applied < budget {
		select {
		case res := <-l.payloadPool.Results():
			l.mu.Lock()
			survived := l.pendingChunks[res.Coord]
			delete(l.pendingChunks, res.Coord)
			l.mu.Unlock()
			if !survived {
				continue
			}
			if res.Err != nil {
				if l.logger != nil {
					l.logger.Warn("payload build failed", zap.Stringer("coord", res.Coord), zap.Error(res.Err))
				}
				continue
			}
			l.store.ApplyLoadedPayload(res.Coord, res.Blocks, res.WorldGenVersion, res.LoadedFromDisk)
			applied++
		default:
			return applied
		}
	}
	return applied
}

// loadRegion runs on the I/O pool: probe existence first (cheap),
// then read and decode only if present.
func (l *AsyncChunkLoader) loadRegion(job regionLoadJob) regionLoadResult {
	ctx := context.Background()
	exists, err := l.container.RegionExists(ctx, job.Key)
	if err != nil {
		return regionLoadResult{Key: job.Key, Err: err}
	}
	if !exists {
		return regionLoadResult{Key: job.Key, Exists: false}
	}
	snapshot, err := l.container.LoadRegion(ctx, job.Key)
	if err != nil {
		return regionLoadResult{Key: job.Key, Err: err}
	}
	return regionLoadResult{Key: job.Key, Exists: true, Snapshot: snapshot}
}

// buildPayload runs on the payload-assembly pool: base-fill through the
// generator when the cached entry doesn't cover the whole chunk, then
// overlay every persisted span for this coord.
func (l *AsyncChunkLoader) buildPayload(job payloadJob) payloadResult {
	blocks := make([]voxel.BlockState, voxel.SIZE*voxel.SIZE*voxel.SIZE)
	spans := job.Entry.ChunksFor(job.Coord)

	covered := 0
	for _, cs := range spans {
		covered += cs.Data.Span.BlockCount()
	}
	if covered < voxel.SIZE*voxel.SIZE*voxel.SIZE {
		var cancel atomic.Bool
		if err := l.generator.Generate(context.Background(), job.Coord, blocks, &cancel); err != nil {
			return payloadResult{Coord: job.Coord, Err: err}
		}
	}

	for _, cs := range spans {
		i := 0
		cs.Data.Span.LocalIndices(func(x, y, z int) {
			if i < len(cs.Data.Blocks) {
				blocks[voxel.LocalIndex(x, y, z)] = cs.Data.Blocks[i]
			}
			i++
		})
	}

	return payloadResult{
		Coord:           job.Coord,
		Blocks:          blocks,
		WorldGenVersion: l.generator.Version(),
		LoadedFromDisk:  len(spans) > 0,
	}
}
