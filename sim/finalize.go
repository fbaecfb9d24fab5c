package sim

import "github.com/sirupsen/logrus"

// FinalizeFrame closes the frame opened by AdvanceTimeAndCounts.
func (w *World) FinalizeFrame() error {
	if !w.frame.active {
		return ErrNoFrame
	}
	w.parallelFor(len(w.frame.eligible), func(i int) {
		w.finalizeTeam(w.frame.eligible[i])
	})
	w.frame.active = false
	w.frame.frame++
	w.frame.eligible = w.frame.eligible[:0]
	return nil
}

func (w *World) finalizeTeam(id TeamID) {
	td := w.teams.At(int(id))
	if td.Flags.Has(FlagRunning) {
		cd := w.centers.At(int(id))
		cd.OldFrameWorldPosition = cd.FrameWorldPosition
		cd.OldFrameWorldRotation = cd.FrameWorldRotation
		cd.OldFrameWorldScale = cd.FrameWorldScale
		td.FrameOldTime = td.FrameUpdateTime
	}
	td.Flags &^= transientFlags

	if td.Time > ClockRebaseThreshold {
		td.Time -= ClockRebaseOffset
		td.OldTime -= ClockRebaseOffset
		td.NowUpdateTime -= ClockRebaseOffset
		td.OldUpdateTime -= ClockRebaseOffset
		td.FrameUpdateTime -= ClockRebaseOffset
		td.FrameOldTime -= ClockRebaseOffset
		logrus.Debugf("team %d clock rebased to %.3f", id, td.Time)
	}
}
