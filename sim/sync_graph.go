package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// SetSyncTarget requests that h follow target's clock. A nil target clears the
// request. Requests that would close a cycle are refused. The link itself is made
// at the next time advance.
func (w *World) SetSyncTarget(h TeamHandle, target *TeamHandle) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	e := w.entries[id]
	if target == nil {
		e.syncRequest = 0
		e.syncWarned = false
		return nil
	}
	tid, err := w.lookup(*target)
	if err != nil {
		return err
	}
	if tid == id || w.requestReaches(tid, id) {
		logrus.Warnf("team %d: sync target %d would create a cycle, request ignored", id, tid)
		return fmt.Errorf("%w: team %d -> team %d", ErrSyncCycle, id, tid)
	}
	e.syncRequest = tid
	e.syncWarned = false
	return nil
}

// requestReaches reports whether following sync requests from `from` arrives at `to`.
// The walk is bounded by the team count so a corrupted graph cannot loop forever.
func (w *World) requestReaches(from, to TeamID) bool {
	cur := from
	for i := 0; i <= len(w.entries); i++ {
		if cur == to {
			return true
		}
		e, ok := w.entries[cur]
		if !ok || e.syncRequest == 0 {
			return false
		}
		cur = e.syncRequest
	}
	return true
}

// resolveSync brings the team's link in line with its request.
func (w *World) resolveSync(id TeamID) {
	td := w.teams.At(int(id))
	e := w.entries[id]

	want := e.syncRequest
	if want != 0 {
		if _, ok := w.entries[want]; !ok {
			want = 0
		} else if w.requestReaches(want, id) {
			w.warnSyncOnce(e, "team %d: sync chain through %d is cyclic, link dropped", id, want)
			want = 0
		}
	}

	if want != td.SyncTeamID {
		if td.SyncTeamID != 0 {
			w.teams.At(int(td.SyncTeamID)).SyncParents.Remove(id)
			logrus.Debugf("team %d unsynchronized from %d", id, td.SyncTeamID)
			td.SyncTeamID = 0
		}
		if want != 0 {
			if w.teams.At(int(want)).SyncParents.Add(id) {
				td.SyncTeamID = want
				td.Flags.Set(FlagTimeReset, false)
				logrus.Debugf("team %d synchronized to %d", id, want)
			} else {
				w.warnSyncOnce(e, "team %d: sync parents of team %d are full (%d), link refused", id, want, MaxSyncParents)
			}
		}
	}
	td.Flags.Set(FlagSynchronization, td.SyncTeamID != 0)
}

func (w *World) warnSyncOnce(e *teamEntry, format string, args ...any) {
	if e.syncWarned {
		return
	}
	e.syncWarned = true
	logrus.Warnf(format, args...)
}

// updateSyncDepths stores each team's distance from the root of its sync chain.
func (w *World) updateSyncDepths(ids []TeamID) {
	for _, id := range ids {
		depth := 0
		cur := w.teams.At(int(id)).SyncTeamID
		for cur != 0 && depth <= len(ids) {
			depth++
			cur = w.teams.At(int(cur)).SyncTeamID
		}
		w.teams.At(int(id)).SyncDepth = depth
	}
}

// MarkParametersDirty flags h and every team transitively synchronized to it so
// that their parameters are re-applied at the next time advance.
func (w *World) MarkParametersDirty(h TeamHandle) error {
	id, err := w.lookup(h)
	if err != nil {
		return err
	}
	visited := map[TeamID]bool{id: true}
	queue := []TeamID{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		td := w.teams.At(int(cur))
		td.Flags.Set(FlagParameterDirty, true)
		for _, p := range td.SyncParents.IDs[:td.SyncParents.Count] {
			if !visited[p] {
				visited[p] = true
				queue = append(queue, p)
			}
		}
	}
	return nil
}

// applyDirtyParameters installs pending parameters and refreshes derived state.
func (w *World) applyDirtyParameters(id TeamID) {
	td := w.teams.At(int(id))
	if !td.Flags.Has(FlagParameterDirty) {
		return
	}
	e := w.entries[id]
	if e.pendingParams != nil {
		*w.params.At(int(id)) = *e.pendingParams
		e.pendingParams = nil
	}
	w.centers.At(int(id)).updateGravityReference(w.params.At(int(id)).Gravity.Direction)
	td.Flags.Set(FlagParameterDirty, false)
	logrus.Debugf("team %d parameters applied", id)
}

// isSuspended applies the suspend rule. Targets are evaluated before their
// followers, so a suspended target also suspends the teams following it.
func (w *World) isSuspended(id TeamID, td *TeamData) bool {
	if w.isWaiting(id) {
		return true
	}
	if td.SyncTeamID == 0 {
		return false
	}
	target := td.SyncTeamID
	return !w.isEnabled(target) || w.isWaiting(target) || w.teams.At(int(target)).Flags.Has(FlagSuspend)
}
