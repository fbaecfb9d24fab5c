package sim

import (
	"github.com/cloth-sim/cloth-sim/sim/trace"
	"github.com/sirupsen/logrus"
)

// FrameResult summarizes one frame run by RunFrame.
type FrameResult struct {
	Frame       int64
	MaxSubsteps int
	Eligible    int // teams that took part in the frame
	Suspended   int // enabled teams held back by suspension
}

// RunFrame advances time, runs every sub-step and finalizes the frame, recording
// metrics and, when enabled, a trace record.
func (w *World) RunFrame(in FrameInput) (FrameResult, error) {
	n, err := w.AdvanceTimeAndCounts(in)
	if err != nil {
		return FrameResult{}, err
	}
	res := FrameResult{Frame: w.frame.frame, MaxSubsteps: n, Eligible: len(w.frame.eligible)}

	var rec *trace.FrameRecord
	if w.Trace != nil {
		rec = &trace.FrameRecord{Frame: res.Frame, MaxSubsteps: n}
	}
	for s := 0; s < n; s++ {
		if err := w.RunSubstep(s); err != nil {
			return res, err
		}
		if w.Trace.WantsSubsteps() {
			rec.Substeps = append(rec.Substeps, w.substepRecord(s))
		}
	}

	teamSubsteps, skipped := 0, 0
	for _, id := range w.frame.eligible {
		td := w.teams.At(int(id))
		teamSubsteps += td.UpdateCount
		skipped += td.SkipCount
	}
	if skipped > 0 {
		logrus.Debugf("frame %d: %d sub-steps skipped by the per-frame cap", res.Frame, skipped)
	}

	if err := w.FinalizeFrame(); err != nil {
		return res, err
	}

	for id := range w.enabled {
		if w.teams.At(int(id)).Flags.Has(FlagSuspend) {
			res.Suspended++
		}
	}
	w.Metrics.recordFrame(res, teamSubsteps, skipped)
	if rec != nil {
		rec.Teams = w.teamRecords()
		w.Trace.RecordFrame(*rec)
	}
	return res, nil
}

func (w *World) teamRecords() []trace.TeamRecord {
	ids := w.liveTeamIDs()
	records := make([]trace.TeamRecord, 0, len(ids))
	for _, id := range ids {
		td := w.teams.At(int(id))
		records = append(records, trace.TeamRecord{
			TeamID:       int(id),
			Name:         w.teamName(id),
			UpdateCount:  td.UpdateCount,
			SkipCount:    td.SkipCount,
			Time:         td.Time,
			Enabled:      td.Flags.Has(FlagEnable),
			Suspended:    td.Flags.Has(FlagSuspend),
			SyncTeamID:   int(td.SyncTeamID),
			BlendWeight:  td.BlendWeight,
			GravityRatio: td.GravityRatio,
			Winds:        len(w.winds.At(int(id)).Active()),
		})
	}
	return records
}

func (w *World) substepRecord(index int) trace.SubstepRecord {
	rec := trace.SubstepRecord{Index: index}
	for _, id := range w.frame.eligible {
		td := w.teams.At(int(id))
		if !td.Flags.Has(FlagStepRunning) {
			continue
		}
		cd := w.centers.At(int(id))
		step := trace.StepRecord{
			TeamID:             int(id),
			FrameInterpolation: td.FrameInterpolation,
			Center:             cd.NowWorldPosition,
			InertiaVector:      cd.InertiaVector,
			MovingSpeed:        cd.MovingSpeed,
		}
		for _, wi := range w.winds.At(int(id)).Active() {
			step.WindIDs = append(step.WindIDs, wi.WindID)
		}
		rec.Teams = append(rec.Teams, step)
	}
	return rec
}
