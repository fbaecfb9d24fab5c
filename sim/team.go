package sim

import (
	"github.com/cloth-sim/cloth-sim/sim/arena"
	"github.com/go-gl/mathgl/mgl64"
)

// TeamData is the scheduling record of one team, stored in the team arena at index
// TeamID.
type TeamData struct {
	Flags      TeamFlags
	UpdateMode UpdateMode

	// Team clock, in seconds.
	Time            float64
	OldTime         float64
	NowUpdateTime   float64 // end time of the last sub-step
	OldUpdateTime   float64 // NowUpdateTime at the start of the frame
	FrameUpdateTime float64 // Time at the last frame that ran sub-steps
	FrameOldTime    float64 // FrameUpdateTime of the previous running frame

	TimeScale          float64
	UpdateCount        int
	SkipCount          int
	FrameInterpolation float64

	VelocityWeight float64
	BlendWeight    float64
	GravityDot     float64
	GravityRatio   float64
	ScaleRatio     float64
	InitScale      mgl64.Vec3

	SyncTeamID  TeamID
	SyncParents ParentList
	SyncDepth   int

	ParticleChunk arena.Chunk
}

// ParentList is the fixed-capacity list of teams synchronized to a team.
type ParentList struct {
	IDs   [MaxSyncParents]TeamID
	Count int
}

// Contains reports whether id is in the list.
func (l ParentList) Contains(id TeamID) bool {
	for _, p := range l.IDs[:l.Count] {
		if p == id {
			return true
		}
	}
	return false
}

// Add appends id. It returns false when the list is full; adding a present id is a no-op.
func (l *ParentList) Add(id TeamID) bool {
	if l.Contains(id) {
		return true
	}
	if l.Count == MaxSyncParents {
		return false
	}
	l.IDs[l.Count] = id
	l.Count++
	return true
}

// Remove deletes id keeping the order of the remaining entries.
func (l *ParentList) Remove(id TeamID) bool {
	for i, p := range l.IDs[:l.Count] {
		if p == id {
			copy(l.IDs[i:l.Count], l.IDs[i+1:l.Count])
			l.Count--
			l.IDs[l.Count] = 0
			return true
		}
	}
	return false
}

// Slice returns a copy of the ids.
func (l ParentList) Slice() []TeamID {
	return append([]TeamID(nil), l.IDs[:l.Count]...)
}

// Particle is the opaque per-particle payload owned by a team's particle chunk.
type Particle struct {
	Position    mgl64.Vec3
	OldPosition mgl64.Vec3
}
