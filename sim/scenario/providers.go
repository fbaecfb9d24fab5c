package scenario

import (
	"sort"

	"github.com/cloth-sim/cloth-sim/sim"
	"github.com/go-gl/mathgl/mgl64"
)

// ScriptedTransforms moves each team's reference transform at a constant linear
// and angular velocity. It implements sim.TransformProvider.
type ScriptedTransforms struct {
	motions map[sim.TeamID]*scriptedMotion
}

type scriptedMotion struct {
	pose     sim.Transform
	velocity mgl64.Vec3
	angular  mgl64.Vec3 // deg/s, XYZ Euler rates
}

// NewScriptedTransforms returns an empty provider.
func NewScriptedTransforms() *ScriptedTransforms {
	return &ScriptedTransforms{motions: make(map[sim.TeamID]*scriptedMotion)}
}

// Set installs the starting pose and motion of a team.
func (s *ScriptedTransforms) Set(id sim.TeamID, start sim.Transform, motion MotionSpec) {
	s.motions[id] = &scriptedMotion{
		pose:     start,
		velocity: motion.Velocity,
		angular:  motion.AngularVelocity,
	}
}

// Remove forgets a team; its id may be reused by a later team.
func (s *ScriptedTransforms) Remove(id sim.TeamID) {
	delete(s.motions, id)
}

// Teleport moves a team's reference position without affecting its motion.
func (s *ScriptedTransforms) Teleport(id sim.TeamID, pos mgl64.Vec3) bool {
	m, ok := s.motions[id]
	if ok {
		m.pose.Position = pos
	}
	return ok
}

// Advance integrates every motion over dt seconds.
func (s *ScriptedTransforms) Advance(dt float64) {
	for _, m := range s.motions {
		m.pose.Position = m.pose.Position.Add(m.velocity.Mul(dt))
		if m.angular != (mgl64.Vec3{}) {
			m.pose.Rotation = eulerToQuat(m.angular.Mul(dt)).Mul(m.pose.Rotation).Normalize()
		}
	}
}

// ReferenceTransform implements sim.TransformProvider.
func (s *ScriptedTransforms) ReferenceTransform(id sim.TeamID) (sim.Transform, bool) {
	m, ok := s.motions[id]
	if !ok {
		return sim.Transform{}, false
	}
	return m.pose, true
}

// StaticWinds serves the scenario's wind zones in file order. It implements
// sim.WindProvider.
type StaticWinds struct {
	zones []sim.WindZone
	names []string
}

// NewStaticWinds converts zone specs. Zone ids are 1-based file positions.
func NewStaticWinds(specs []WindZoneSpec) (*StaticWinds, error) {
	w := &StaticWinds{
		zones: make([]sim.WindZone, 0, len(specs)),
		names: make([]string, 0, len(specs)),
	}
	for i, zs := range specs {
		curve, err := sim.NewCurve(zs.Attenuation...)
		if err != nil {
			return nil, err
		}
		w.zones = append(w.zones, sim.WindZone{
			ID:          i + 1,
			Enabled:     zs.Enabled == nil || *zs.Enabled,
			Mode:        zs.Mode,
			Additive:    zs.Additive,
			Position:    zs.Position,
			Rotation:    eulerToQuat(zs.RotationEuler),
			Size:        zs.Size,
			Radius:      zs.Radius,
			Direction:   zs.Direction,
			Strength:    zs.Strength,
			Attenuation: curve,
		})
		w.names = append(w.names, zs.Name)
	}
	return w, nil
}

// WindZones implements sim.WindProvider.
func (w *StaticWinds) WindZones() []sim.WindZone {
	return w.zones
}

// Name returns the configured name of a zone id, or "" when unknown or unnamed.
func (w *StaticWinds) Name(id int) string {
	if id < 1 || id > len(w.names) {
		return ""
	}
	return w.names[id-1]
}

// ColliderSet tracks which teams have their colliders enabled. It implements
// sim.ColliderProvider.
type ColliderSet struct {
	enabled map[sim.TeamID]bool
	toggles int
}

// NewColliderSet returns an empty set.
func NewColliderSet() *ColliderSet {
	return &ColliderSet{enabled: make(map[sim.TeamID]bool)}
}

// SetTeamEnabled implements sim.ColliderProvider.
func (c *ColliderSet) SetTeamEnabled(id sim.TeamID, enabled bool) {
	c.toggles++
	if enabled {
		c.enabled[id] = true
	} else {
		delete(c.enabled, id)
	}
}

// Enabled returns the teams whose colliders are on, sorted.
func (c *ColliderSet) Enabled() []sim.TeamID {
	ids := make([]sim.TeamID, 0, len(c.enabled))
	for id := range c.enabled {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Toggles counts enable notifications received.
func (c *ColliderSet) Toggles() int {
	return c.toggles
}
