package sim

import (
	"fmt"
	"sort"

	"github.com/cloth-sim/cloth-sim/sim/arena"
	"github.com/cloth-sim/cloth-sim/sim/trace"
	"github.com/sirupsen/logrus"
)

// TeamHandle refers to a live team. Handles of destroyed teams stay invalid even
// after their id is reused.
type TeamHandle struct {
	id  TeamID
	gen uint32
}

// ID returns the team id the handle was issued for.
func (h TeamHandle) ID() TeamID { return h.id }

// IsZero reports whether h is the zero handle.
func (h TeamHandle) IsZero() bool { return h == TeamHandle{} }

func (h TeamHandle) String() string { return fmt.Sprintf("team#%d.%d", h.id, h.gen) }

// teamEntry is the per-team bookkeeping that cannot live in the arenas.
type teamEntry struct {
	handle        TeamHandle
	name          string
	syncRequest   TeamID // 0 = none
	syncWarned    bool
	waiting       bool
	pendingParams *ClothParameters
}

// frameState holds what the sequential phase prepares for the parallel passes.
type frameState struct {
	active         bool
	input          FrameInput
	frame          int64
	windZones      []WindZone
	eligible       []TeamID
	unsynced       []TeamID
	syncLevels     [][]TeamID
	maxUpdateCount int
}

func (f *frameState) begin(in FrameInput) {
	f.active = true
	f.input = in
	f.eligible = f.eligible[:0]
	f.unsynced = f.unsynced[:0]
	for i := range f.syncLevels {
		f.syncLevels[i] = f.syncLevels[i][:0]
	}
	f.maxUpdateCount = 0
}

// World owns every team and runs the per-frame scheduling passes. It is not safe
// for concurrent use; the parallelism is internal to the frame passes.
type World struct {
	config WorldConfig

	teams     *arena.Arena[TeamData]
	centers   *arena.Arena[CenterData]
	winds     *arena.Arena[TeamWindData]
	params    *arena.Arena[ClothParameters]
	particles *arena.Arena[Particle]

	entries map[TeamID]*teamEntry
	enabled map[TeamID]struct{}
	nextGen uint32

	collab Collaborators
	frame  frameState

	Metrics *Metrics
	Trace   *trace.SimulationTrace // nil unless tracing is enabled
}

// NewWorld creates a world holding only the reserved global team.
func NewWorld(cfg WorldConfig, collab Collaborators) (*World, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("world config: %w", err)
	}
	cfg = cfg.withDefaults()
	w := &World{
		config:    cfg,
		teams:     arena.New[TeamData](cfg.InitialCapacity),
		centers:   arena.New[CenterData](cfg.InitialCapacity),
		winds:     arena.New[TeamWindData](cfg.InitialCapacity),
		params:    arena.New[ClothParameters](cfg.InitialCapacity),
		particles: arena.New[Particle](cfg.InitialCapacity * 16),
		entries:   make(map[TeamID]*teamEntry),
		enabled:   make(map[TeamID]struct{}),
		collab:    collab,
		Metrics:   NewMetrics(),
	}
	if cfg.TraceLevel != trace.TraceLevelNone {
		w.Trace = trace.NewSimulationTrace(trace.TraceConfig{Level: cfg.TraceLevel})
	}
	if c := w.allocateTeamRecords(); c.Start != int(GlobalTeamID) {
		panic(fmt.Sprintf("sim: global team allocated at %d", c.Start))
	}
	logrus.Debugf("world created: max teams %d, max sub-steps %d, workers %d",
		cfg.MaxTeamCount, cfg.MaxSubstepsPerFrame, cfg.Workers)
	return w, nil
}

// Config returns the effective configuration.
func (w *World) Config() WorldConfig { return w.config }

// allocateTeamRecords allocates one record in every per-team arena. The arenas are
// only ever allocated and released together, so they always agree on the index.
func (w *World) allocateTeamRecords() arena.Chunk {
	c := w.teams.Allocate(1)
	for _, other := range []arena.Chunk{w.centers.Allocate(1), w.winds.Allocate(1), w.params.Allocate(1)} {
		if other != c {
			panic(fmt.Sprintf("sim: team arenas out of lockstep (%v vs %v)", c, other))
		}
	}
	return c
}

func (w *World) releaseTeamRecords(c arena.Chunk) {
	w.teams.Release(c)
	w.centers.Release(c)
	w.winds.Release(c)
	w.params.Release(c)
}

// lookup resolves a handle to a live team id.
func (w *World) lookup(h TeamHandle) (TeamID, error) {
	if h.id == GlobalTeamID {
		return 0, ErrReservedTeam
	}
	e, ok := w.entries[h.id]
	if !ok || e.handle != h {
		return 0, fmt.Errorf("%w: %v", ErrInvalidHandle, h)
	}
	return h.id, nil
}

// liveTeamIDs returns the ids of all live teams in ascending order.
func (w *World) liveTeamIDs() []TeamID {
	ids := make([]TeamID, 0, len(w.entries))
	for id := range w.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) isEnabled(id TeamID) bool {
	_, ok := w.enabled[id]
	return ok
}

func (w *World) isWaiting(id TeamID) bool {
	e, ok := w.entries[id]
	return ok && e.waiting
}

func (w *World) teamName(id TeamID) string {
	if e, ok := w.entries[id]; ok && e.name != "" {
		return e.name
	}
	return fmt.Sprintf("team-%d", id)
}
