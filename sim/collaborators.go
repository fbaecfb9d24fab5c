package sim

// TransformProvider supplies the reference transform of each team. It is called
// once per enabled team per frame from the sequential phase. A false result keeps
// the previous frame snapshot.
type TransformProvider interface {
	ReferenceTransform(id TeamID) (Transform, bool)
}

// WindProvider lists the wind zones in the scene. The order of the returned zones
// must be stable across frames: area-zone ties are broken by it.
type WindProvider interface {
	WindZones() []WindZone
}

// ColliderProvider is told when a team's colliders should follow its enable state.
type ColliderProvider interface {
	SetTeamEnabled(id TeamID, enabled bool)
}

// TeamListener observes enable changes, e.g. subsystems with per-team state.
type TeamListener interface {
	OnTeamEnabled(id TeamID, enabled bool)
}

// Collaborators groups the optional world collaborators.
type Collaborators struct {
	Transforms TransformProvider
	Winds      WindProvider
	Colliders  ColliderProvider
	Listeners  []TeamListener
}
