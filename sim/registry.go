package sim

import (
	"fmt"

	"github.com/cloth-sim/cloth-sim/sim/arena"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
)

// AddTeam registers a team. The team starts disabled with a pending pose and time
// reset; enable it with SetEnable.
func (w *World) AddTeam(cfg TeamConfig) (TeamHandle, error) {
	if w.frame.active {
		return TeamHandle{}, ErrFrameInProgress
	}
	if err := cfg.Validate(); err != nil {
		return TeamHandle{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	c := w.allocateTeamRecords()
	id := TeamID(c.Start)
	if int(id) >= w.config.MaxTeamCount {
		w.releaseTeamRecords(c)
		return TeamHandle{}, fmt.Errorf("%w: team id %d, maximum %d", ErrTeamLimit, id, w.config.MaxTeamCount)
	}

	ref := cfg.Reference
	ref.Rotation = normalizeQuat(ref.Rotation)
	center := centroid(cfg.FixedPoints, ref.Position)

	var particles arena.Chunk
	if cfg.ParticleCount > 0 {
		particles = w.particles.Allocate(cfg.ParticleCount)
		w.particles.Fill(particles, Particle{Position: center, OldPosition: center})
	}

	*w.teams.At(int(id)) = TeamData{
		Flags:          FlagValid | FlagReset | FlagTimeReset,
		UpdateMode:     cfg.UpdateMode,
		TimeScale:      1,
		GravityRatio:   1,
		ScaleRatio:     1,
		VelocityWeight: 1,
		InitScale:      ref.Scale,
		ParticleChunk:  particles,
	}

	cd := w.centers.At(int(id))
	*cd = CenterData{
		InitLocalCenter:   ref.InverseTransformPoint(center),
		InitWorldRotation: ref.Rotation,
	}
	cd.setFrame(ref)
	cd.resetPose()
	cd.updateGravityReference(cfg.Parameters.Gravity.Direction)

	*w.params.At(int(id)) = cfg.Parameters

	w.nextGen++
	h := TeamHandle{id: id, gen: w.nextGen}
	w.entries[id] = &teamEntry{handle: h, name: cfg.Name}
	logrus.Infof("team %d (%s) created: %d particles, mode %v", id, w.teamName(id), cfg.ParticleCount, cfg.UpdateMode)
	return h, nil
}

// CreateTeam is AddTeam.
func (w *World) CreateTeam(cfg TeamConfig) (TeamHandle, error) { return w.AddTeam(cfg) }

// centroid averages points; no points yields fallback.
func centroid(points []mgl64.Vec3, fallback mgl64.Vec3) mgl64.Vec3 {
	if len(points) == 0 {
		return fallback
	}
	var sum mgl64.Vec3
	for _, p := range points {
		sum = sum.Add(p)
	}
	return sum.Mul(1 / float64(len(points)))
}

// RemoveTeam destroys a team, unlinking it from the synchronization graph and
// releasing every arena chunk it owns. The id becomes reusable.
func (w *World) RemoveTeam(h TeamHandle) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	if w.frame.active {
		return ErrFrameInProgress
	}
	td := w.teams.At(int(id))

	if td.SyncTeamID != 0 {
		w.teams.At(int(td.SyncTeamID)).SyncParents.Remove(id)
	}
	for _, p := range td.SyncParents.Slice() {
		pd := w.teams.At(int(p))
		pd.SyncTeamID = 0
		pd.SyncDepth = 0
		pd.Flags.Set(FlagSynchronization, false)
	}
	for other, e := range w.entries {
		if e.syncRequest == id {
			e.syncRequest = 0
			logrus.Infof("team %d lost its sync target %d", other, id)
		}
	}

	wasEnabled := w.isEnabled(id)
	w.particles.Release(td.ParticleChunk)
	w.releaseTeamRecords(arena.Chunk{Start: int(id), Length: 1})
	delete(w.entries, id)
	delete(w.enabled, id)
	if wasEnabled {
		w.notifyEnabled(id, false)
	}
	logrus.Infof("team %d removed", id)
	return nil
}

// DestroyTeam is RemoveTeam.
func (w *World) DestroyTeam(h TeamHandle) error { return w.RemoveTeam(h) }

// SetEnable turns a team on or off. Enabling requests a pose reset.
func (w *World) SetEnable(h TeamHandle, on bool) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	td := w.teams.At(int(id))
	changed := td.Flags.Has(FlagEnable) != on
	td.Flags.Set(FlagEnable, on)
	td.Flags.Set(FlagReset, on)
	if on {
		w.enabled[id] = struct{}{}
	} else {
		delete(w.enabled, id)
	}
	if changed {
		logrus.Debugf("team %d enabled=%v", id, on)
		w.notifyEnabled(id, on)
	}
	return nil
}

// SetEnabled is SetEnable.
func (w *World) SetEnabled(h TeamHandle, on bool) error { return w.SetEnable(h, on) }

func (w *World) notifyEnabled(id TeamID, on bool) {
	if w.collab.Colliders != nil {
		w.collab.Colliders.SetTeamEnabled(id, on)
	}
	for _, l := range w.collab.Listeners {
		l.OnTeamEnabled(id, on)
	}
}

// SetTimeScale sets the team's own time scale, clamped to [0,1].
func (w *World) SetTimeScale(h TeamHandle, scale float64) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	if !isFinite(scale) {
		return fmt.Errorf("%w: time scale %v", ErrInvalidConfig, scale)
	}
	w.teams.At(int(id)).TimeScale = saturate(scale)
	return nil
}

// SetUpdateMode changes which frame delta drives the team.
func (w *World) SetUpdateMode(h TeamHandle, mode UpdateMode) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	switch mode {
	case UpdateModeNormal, UpdateModePhysics, UpdateModeUnscaled:
	default:
		return fmt.Errorf("%w: update mode %d", ErrInvalidConfig, int(mode))
	}
	w.teams.At(int(id)).UpdateMode = mode
	return nil
}

// SetParameters stores new parameters; they are applied at the next time advance.
func (w *World) SetParameters(h TeamHandle, p ClothParameters) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	if err := p.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	w.entries[id].pendingParams = &p
	return w.MarkParametersDirty(h)
}

// ResizeParticles grows the team's particle chunk. The chunk may move; shrinking
// keeps the current chunk.
func (w *World) ResizeParticles(h TeamHandle, n int) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	if w.frame.active {
		return ErrFrameInProgress
	}
	if n < 0 {
		return fmt.Errorf("%w: particle count %d", ErrInvalidConfig, n)
	}
	td := w.teams.At(int(id))
	old := td.ParticleChunk
	next := w.particles.Expand(old, n)
	if next.Length > old.Length {
		fill := w.centers.At(int(id)).NowWorldPosition
		w.particles.Fill(next.Sub(old.Length, next.Length-old.Length), Particle{Position: fill, OldPosition: fill})
	}
	td.ParticleChunk = next
	if next != old {
		logrus.Debugf("team %d particles moved %v -> %v", id, old, next)
	}
	return nil
}

// ResetPose requests a pose reset at the next time advance.
func (w *World) ResetPose(h TeamHandle) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	w.teams.At(int(id)).Flags.Set(FlagReset, true)
	return nil
}

// ResetTime requests that the team clock restart from zero at the next time advance.
func (w *World) ResetTime(h TeamHandle) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	w.teams.At(int(id)).Flags.Set(FlagTimeReset, true)
	return nil
}

// SetWaitingForPartner marks a team as waiting on an external synchronization
// partner. Waiting teams, and teams synchronized to them, are suspended.
func (w *World) SetWaitingForPartner(h TeamHandle, waiting bool) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	w.entries[id].waiting = waiting
	return nil
}
