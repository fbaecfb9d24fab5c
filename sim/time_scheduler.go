package sim

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"
)

// AdvanceTimeAndCounts starts a frame: it advances every eligible team's clock and
// returns the largest number of sub-steps any team needs this frame. The caller
// then runs RunSubstep for 0..n-1 and finishes with FinalizeFrame.
func (w *World) AdvanceTimeAndCounts(in FrameInput) (int, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if w.frame.active {
		return 0, ErrFrameInProgress
	}
	w.frame.begin(in)

	w.frame.windZones = w.frame.windZones[:0]
	if w.collab.Winds != nil {
		w.frame.windZones = append(w.frame.windZones, w.collab.Winds.WindZones()...)
	}

	ids := w.liveTeamIDs()
	for _, id := range ids {
		w.applyDirtyParameters(id)
	}
	for _, id := range ids {
		w.resolveSync(id)
	}
	w.updateSyncDepths(ids)

	// Targets before followers so suspension propagates down sync chains.
	sort.SliceStable(ids, func(i, j int) bool {
		return w.teams.At(int(ids[i])).SyncDepth < w.teams.At(int(ids[j])).SyncDepth
	})
	for _, id := range ids {
		w.prepareTeam(id)
	}
	sort.Slice(w.frame.eligible, func(i, j int) bool { return w.frame.eligible[i] < w.frame.eligible[j] })

	w.parallelFor(len(w.frame.unsynced), func(i int) {
		w.advanceTeamTime(w.frame.unsynced[i])
	})
	for _, level := range w.frame.syncLevels {
		w.parallelFor(len(level), func(i int) {
			w.copySyncState(level[i])
		})
	}

	maxCount := 0
	for _, id := range w.frame.eligible {
		maxCount = max(maxCount, w.teams.At(int(id)).UpdateCount)
	}
	w.frame.maxUpdateCount = maxCount
	logrus.Debugf("frame %d: %d eligible teams, %d sub-steps", w.frame.frame, len(w.frame.eligible), maxCount)
	return maxCount, nil
}

// prepareTeam runs the sequential per-team part of the time advance: suspension,
// reference pose and eligibility.
func (w *World) prepareTeam(id TeamID) {
	td := w.teams.At(int(id))
	td.UpdateCount = 0
	td.SkipCount = 0
	td.Flags.Set(FlagRunning|FlagStepRunning, false)

	if !td.Flags.Has(FlagValid | FlagEnable) {
		td.Flags.Set(FlagSuspend, false)
		return
	}
	suspend := w.isSuspended(id, td)
	if suspend != td.Flags.Has(FlagSuspend) {
		logrus.Debugf("team %d suspended=%v", id, suspend)
	}
	td.Flags.Set(FlagSuspend, suspend)
	if suspend {
		return
	}

	if w.collab.Transforms != nil {
		if ref, ok := w.collab.Transforms.ReferenceTransform(id); ok {
			w.centers.At(int(id)).setFrame(ref)
		}
	}

	w.frame.eligible = append(w.frame.eligible, id)
	if td.SyncTeamID == 0 {
		w.frame.unsynced = append(w.frame.unsynced, id)
		return
	}
	for len(w.frame.syncLevels) < td.SyncDepth {
		w.frame.syncLevels = append(w.frame.syncLevels, nil)
	}
	level := td.SyncDepth - 1
	w.frame.syncLevels[level] = append(w.frame.syncLevels[level], id)
}

// advanceTeamTime accumulates the frame delta into an unsynchronized team's clock and
// derives its sub-step count. Runs in a parallel pass and touches only the records
// at index id.
func (w *World) advanceTeamTime(id TeamID) {
	in := w.frame.input
	td := w.teams.At(int(id))
	p := w.params.At(int(id))

	if td.Flags.Has(FlagTimeReset) {
		td.Time = 0
		td.OldTime = 0
		td.NowUpdateTime = 0
		td.OldUpdateTime = 0
		td.FrameUpdateTime = 0
		td.FrameOldTime = 0
	}
	td.OldTime = td.Time
	w.applyResets(id, td, p)

	addTime := in.deltaFor(td.UpdateMode) * td.TimeScale * in.GlobalTimeScale
	td.Time += addTime

	substep := in.SubstepDuration
	count := int(math.Floor((td.Time - td.NowUpdateTime) / substep))
	if count < 0 {
		count = 0
	}
	if count > 0 && addTime == 0 {
		// Time stood still but sub-steps are owed: drop them and snap the step clock.
		td.NowUpdateTime = td.Time - substep + DriftEpsilon
		count = 0
	}
	if limit := w.config.MaxSubstepsPerFrame; limit > 0 && count > limit {
		td.SkipCount = count - limit
		td.NowUpdateTime += float64(td.SkipCount) * substep
		count = limit
	}

	td.UpdateCount = count
	td.OldUpdateTime = td.NowUpdateTime
	if count > 0 {
		td.FrameUpdateTime = td.Time
		td.Flags.Set(FlagRunning, true)
	}
}

// applyResets handles pending pose resets and restarts the velocity blend-in.
func (w *World) applyResets(id TeamID, td *TeamData, p *ClothParameters) {
	if td.Flags.Has(FlagReset) || td.Flags.Has(FlagTimeReset) {
		if p.StabilizationTime > stabilizationEpsilon {
			td.VelocityWeight = 0
		} else {
			td.VelocityWeight = 1
		}
		td.BlendWeight = td.VelocityWeight * p.BlendWeight
	}
	if td.Flags.Has(FlagReset) {
		w.centers.At(int(id)).resetPose()
		*w.winds.At(int(id)) = TeamWindData{}
	}
}

// copySyncState mirrors the target's clock onto a synchronized team. Teams are
// processed level by level so the target is always final when this runs.
func (w *World) copySyncState(id TeamID) {
	td := w.teams.At(int(id))
	src := w.teams.At(int(td.SyncTeamID))
	w.applyResets(id, td, w.params.At(int(id)))

	td.UpdateMode = src.UpdateMode
	td.Time = src.Time
	td.OldTime = src.OldTime
	td.NowUpdateTime = src.NowUpdateTime
	td.OldUpdateTime = src.OldUpdateTime
	td.FrameUpdateTime = src.FrameUpdateTime
	td.FrameOldTime = src.FrameOldTime
	td.UpdateCount = src.UpdateCount
	td.SkipCount = src.SkipCount
	td.VelocityWeight = src.VelocityWeight
	td.Flags.Set(FlagRunning, src.Flags.Has(FlagRunning))
}
