package sim

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// TeamSnapshot is a read-only copy of a team's scheduling state.
type TeamSnapshot struct {
	ID                 TeamID
	Name               string
	Flags              TeamFlags
	UpdateMode         UpdateMode
	Time               float64
	NowUpdateTime      float64
	TimeScale          float64
	UpdateCount        int
	SkipCount          int
	FrameInterpolation float64
	SyncTeamID         TeamID
	SyncParents        []TeamID
	SyncDepth          int
	Waiting            bool

	Center          mgl64.Vec3
	InertiaVector   mgl64.Vec3
	InertiaRotation mgl64.Quat
	MovingSpeed     float64
	VelocityWeight  float64
	BlendWeight     float64
	GravityDot      float64
	GravityRatio    float64
	ScaleRatio      float64
	Winds           []TeamWindInfo
	Particles       int
}

func (s TeamSnapshot) Enabled() bool { return s.Flags.Has(FlagEnable) }

func (s TeamSnapshot) Suspended() bool { return s.Flags.Has(FlagSuspend) }

func (s TeamSnapshot) Synchronized() bool { return s.Flags.Has(FlagSynchronization) }

// Snapshot copies the state of a live team.
func (w *World) Snapshot(h TeamHandle) (TeamSnapshot, error) {
	id, err := w.lookup(h)
	if err != nil {
		return TeamSnapshot{}, err
	}
	return w.snapshot(id), nil
}

func (w *World) snapshot(id TeamID) TeamSnapshot {
	td := w.teams.At(int(id))
	cd := w.centers.At(int(id))
	return TeamSnapshot{
		ID:                 id,
		Name:               w.teamName(id),
		Flags:              td.Flags,
		UpdateMode:         td.UpdateMode,
		Time:               td.Time,
		NowUpdateTime:      td.NowUpdateTime,
		TimeScale:          td.TimeScale,
		UpdateCount:        td.UpdateCount,
		SkipCount:          td.SkipCount,
		FrameInterpolation: td.FrameInterpolation,
		SyncTeamID:         td.SyncTeamID,
		SyncParents:        td.SyncParents.Slice(),
		SyncDepth:          td.SyncDepth,
		Waiting:            w.isWaiting(id),
		Center:             cd.NowWorldPosition,
		InertiaVector:      cd.InertiaVector,
		InertiaRotation:    cd.InertiaRotation,
		MovingSpeed:        cd.MovingSpeed,
		VelocityWeight:     td.VelocityWeight,
		BlendWeight:        td.BlendWeight,
		GravityDot:         td.GravityDot,
		GravityRatio:       td.GravityRatio,
		ScaleRatio:         td.ScaleRatio,
		Winds:              w.winds.At(int(id)).Active(),
		Particles:          td.ParticleChunk.Length,
	}
}

// ActiveWinds returns the winds selected for the team in the last sub-step.
func (w *World) ActiveWinds(h TeamHandle) ([]TeamWindInfo, error) {
	id, err := w.lookup(h)
	if err != nil {
		return nil, err
	}
	return w.winds.At(int(id)).Active(), nil
}

// Team returns a copy of the team record. The id is not checked against liveness.
func (w *World) Team(id TeamID) TeamData { return *w.teams.At(int(id)) }

// Center returns a copy of the team's center record.
func (w *World) Center(id TeamID) CenterData { return *w.centers.At(int(id)) }

// Parameters returns the parameters currently in effect for the team.
func (w *World) Parameters(id TeamID) ClothParameters { return *w.params.At(int(id)) }

// Particles returns a copy of the team's particle payload.
func (w *World) Particles(h TeamHandle) ([]Particle, error) {
	id, err := w.lookup(h)
	if err != nil {
		return nil, err
	}
	return append([]Particle(nil), w.particles.Slice(w.teams.At(int(id)).ParticleChunk)...), nil
}

// EnabledTeams returns the enabled team ids in ascending order.
func (w *World) EnabledTeams() []TeamID {
	ids := make([]TeamID, 0, len(w.enabled))
	for id := range w.enabled {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TeamCount returns the number of live teams, excluding the reserved team.
func (w *World) TeamCount() int { return len(w.entries) }

// MaxUpdateCount returns the sub-step count of the frame in progress.
func (w *World) MaxUpdateCount() int { return w.frame.maxUpdateCount }

// ArenaStats reports arena occupancy.
type ArenaStats struct {
	TeamUsed, TeamCapacity, TeamFree             int
	ParticleUsed, ParticleCapacity, ParticleFree int
}

// ArenaStats returns the current arena occupancy.
func (w *World) ArenaStats() ArenaStats {
	return ArenaStats{
		TeamUsed:         w.teams.Used(),
		TeamCapacity:     w.teams.Cap(),
		TeamFree:         w.teams.FreeLength(),
		ParticleUsed:     w.particles.Used(),
		ParticleCapacity: w.particles.Cap(),
		ParticleFree:     w.particles.FreeLength(),
	}
}
