package streaming

import "github.com/dantero/voxelcore/internal/voxel"

// State is a chunk coordinate's position in the streaming state machine.
type State int

const (
	// StateMissing means no chunk is resident and nothing is scheduled.
	StateMissing State = iota
	// StateQueuedGen means a generation job is outstanding.
	StateQueuedGen
	// StateReadyData means the chunk's blocks are resident but it has no
	// current mesh (or its mesh is stale).
	StateReadyData
	// StateQueuedMesh means a mesh job is outstanding for the chunk's
	// current revision.
	StateQueuedMesh
	// StateReadyMesh means a mesh matching the chunk's current revision
	// is installed in the MeshStore.
	StateReadyMesh
)

func (s State) String() string {
	switch s {
	case StateMissing:
		return "Missing"
	case StateQueuedGen:
		return "QueuedGen"
	case StateReadyData:
		return "ReadyData"
	case StateQueuedMesh:
		return "QueuedMesh"
	case StateReadyMesh:
		return "ReadyMesh"
	default:
		return "Unknown"
	}
}

// ChunkStateEntry is one row of chunkStateList(), the debug surface
// spec.md names.
type ChunkStateEntry struct {
	Coord voxel.ChunkCoord
	State State
}

// QueuePressure is the back-pressure snapshot higher-level systems poll
// to throttle their own update rates.
type QueuePressure struct {
	GenQueued   int
	MeshQueued  int
	LoadPending int
	GenPending  int // coords currently in StateQueuedGen
	MeshPending int // coords currently in StateQueuedMesh
	Overloaded  bool
}

// Options configures a ChunkStreamer. Zero values for the budget/limit
// fields mean unlimited, matching spec.md's configuration conventions.
type Options struct {
	ViewDistanceChunks      int
	UnloadDistanceChunks    int
	GenQueueLimit           int
	MeshQueueLimit          int
	UpdateBudgetPerFrame    int
	ApplyBudgetPerFrame     int
	LoadApplyBudgetPerFrame int
	RegionDrainBudget       int
	MaxResidentChunks       int
	GenWorkers              int
	MeshWorkers             int
	GenQueueSize            int
	MeshQueueSize           int
	// MeshMissingShare is the fraction of MeshQueueLimit reserved for
	// first-time (missing-mesh) jobs; the remainder is reserved for
	// dirty-mesh remeshes. Defaults to 0.75 (the typical 75/25 split
	// spec.md names) when zero.
	MeshMissingShare float64
}

func (o Options) withDefaults() Options {
	if o.GenWorkers <= 0 {
		o.GenWorkers = 2
	}
	if o.MeshWorkers <= 0 {
		o.MeshWorkers = 2
	}
	if o.GenQueueSize <= 0 {
		o.GenQueueSize = 256
	}
	if o.MeshQueueSize <= 0 {
		o.MeshQueueSize = 256
	}
	if o.MeshMissingShare <= 0 {
		o.MeshMissingShare = 0.75
	}
	if o.UnloadDistanceChunks < o.ViewDistanceChunks {
		o.UnloadDistanceChunks = o.ViewDistanceChunks
	}
	return o
}
