// Package scenario drives a sim.World from a YAML scenario file: it loads and
// validates the file, scripts reference motion and wind zones, applies timed
// events and runs the frames.
package scenario

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/cloth-sim/cloth-sim/sim"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// DefaultSubstep is the sub-step duration used when frames.substep is omitted (90 Hz).
const DefaultSubstep = 1.0 / 90.0

// Spec is the top-level scenario configuration.
// Loaded from YAML via LoadSpec(path).
type Spec struct {
	World     sim.WorldConfig `yaml:"world"`
	Frames    FrameSpec       `yaml:"frames"`
	Teams     []TeamSpec      `yaml:"teams"`
	WindZones []WindZoneSpec  `yaml:"wind_zones"`
	Events    []EventSpec     `yaml:"events"`
}

// FrameSpec describes the host frame loop. Omitted fixed and unscaled deltas
// follow delta.
type FrameSpec struct {
	Count           int      `yaml:"count"`
	Delta           float64  `yaml:"delta"`
	FixedDelta      *float64 `yaml:"fixed_delta,omitempty"`
	UnscaledDelta   *float64 `yaml:"unscaled_delta,omitempty"`
	Jitter          float64  `yaml:"jitter"` // relative, each delta is scaled by 1 +/- jitter
	Seed            int64    `yaml:"seed"`
	GlobalTimeScale *float64 `yaml:"global_time_scale,omitempty"` // default 1
	Substep         float64  `yaml:"substep"`                     // 0 = DefaultSubstep
	MaxDelta        float64  `yaml:"max_delta"`
}

// TeamSpec is one team of the scenario.
type TeamSpec struct {
	Name        string               `yaml:"name"`
	UpdateMode  sim.UpdateMode       `yaml:"update_mode"`
	TimeScale   *float64             `yaml:"time_scale,omitempty"`
	Enabled     *bool                `yaml:"enabled,omitempty"` // default true
	SyncTo      string               `yaml:"sync_to"`
	Waiting     bool                 `yaml:"waiting"`
	Particles   int                  `yaml:"particles"`
	FixedPoints []mgl64.Vec3         `yaml:"fixed_points"` // local to the start pose
	Start       PoseSpec             `yaml:"start"`
	Motion      MotionSpec           `yaml:"motion"`
	Parameters  *sim.ClothParameters `yaml:"parameters,omitempty"`
}

// PoseSpec is a reference pose. Rotation is given as XYZ Euler angles in degrees.
type PoseSpec struct {
	Position      mgl64.Vec3  `yaml:"position"`
	RotationEuler mgl64.Vec3  `yaml:"rotation_euler"`
	Scale         *mgl64.Vec3 `yaml:"scale,omitempty"` // default (1,1,1)
}

// Transform converts the pose.
func (p PoseSpec) Transform() sim.Transform {
	tr := sim.IdentityTransform()
	tr.Position = p.Position
	tr.Rotation = eulerToQuat(p.RotationEuler)
	if p.Scale != nil {
		tr.Scale = *p.Scale
	}
	return tr
}

// MotionSpec moves the reference transform at constant linear velocity (m/s) and
// angular velocity (XYZ Euler rates in deg/s).
type MotionSpec struct {
	Velocity        mgl64.Vec3 `yaml:"velocity"`
	AngularVelocity mgl64.Vec3 `yaml:"angular_velocity"`
}

// WindZoneSpec is one wind zone. Zones are handed to the world in file order.
type WindZoneSpec struct {
	Name          string         `yaml:"name"`
	Mode          sim.WindMode   `yaml:"mode"`
	Enabled       *bool          `yaml:"enabled,omitempty"` // default true
	Additive      bool           `yaml:"additive"`
	Position      mgl64.Vec3     `yaml:"position"`
	RotationEuler mgl64.Vec3     `yaml:"rotation_euler"`
	Size          mgl64.Vec3     `yaml:"size"`
	Radius        float64        `yaml:"radius"`
	Direction     mgl64.Vec3     `yaml:"direction"`
	Strength      float64        `yaml:"strength"`
	Attenuation   []sim.CurveKey `yaml:"attenuation"`
}

// EventSpec changes a team before the given frame (0-based) runs.
type EventSpec struct {
	Frame    int         `yaml:"frame"`
	Team     string      `yaml:"team"`
	Action   string      `yaml:"action"`
	Value    float64     `yaml:"value"`
	Target   string      `yaml:"target"`
	Position *mgl64.Vec3 `yaml:"position,omitempty"`
}

// Event actions.
const (
	ActionEnable    = "enable"
	ActionDisable   = "disable"
	ActionSync      = "sync"
	ActionUnsync    = "unsync"
	ActionTimeScale = "time_scale"
	ActionResetPose = "reset_pose"
	ActionResetTime = "reset_time"
	ActionDestroy   = "destroy"
	ActionWait      = "wait"
	ActionResume    = "resume"
	ActionTeleport  = "teleport"
)

var validActions = map[string]bool{
	ActionEnable: true, ActionDisable: true, ActionSync: true, ActionUnsync: true,
	ActionTimeScale: true, ActionResetPose: true, ActionResetTime: true, ActionDestroy: true,
	ActionWait: true, ActionResume: true, ActionTeleport: true,
}

// LoadSpec reads and parses a YAML scenario file.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	return ParseSpec(data)
}

// ParseSpec parses scenario YAML.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &spec, nil
}

// Validate checks that all fields in the spec are valid.
func (s *Spec) Validate() error {
	if err := s.World.Validate(); err != nil {
		return fmt.Errorf("world: %w", err)
	}
	if err := s.Frames.validate(); err != nil {
		return fmt.Errorf("frames: %w", err)
	}
	if len(s.Teams) == 0 {
		return fmt.Errorf("at least one team required")
	}

	names := make(map[string]int, len(s.Teams))
	for i, t := range s.Teams {
		if t.Name == "" {
			return fmt.Errorf("team[%d]: name required", i)
		}
		if _, dup := names[t.Name]; dup {
			return fmt.Errorf("team[%d]: duplicate name %q", i, t.Name)
		}
		names[t.Name] = i
	}
	for i := range s.Teams {
		if err := validateTeam(&s.Teams[i], i, names); err != nil {
			return err
		}
	}
	if err := checkSyncCycles(s.Teams, names); err != nil {
		return err
	}
	for i := range s.WindZones {
		if err := validateWindZone(&s.WindZones[i], i); err != nil {
			return err
		}
	}
	for i := range s.Events {
		if err := validateEvent(&s.Events[i], i, names); err != nil {
			return err
		}
	}
	return nil
}

func (f *FrameSpec) validate() error {
	if f.Count < 0 {
		return fmt.Errorf("count must be non-negative, got %d", f.Count)
	}
	for _, v := range []struct {
		name string
		val  *float64
	}{
		{"delta", &f.Delta},
		{"fixed_delta", f.FixedDelta},
		{"unscaled_delta", f.UnscaledDelta},
		{"max_delta", &f.MaxDelta},
	} {
		if v.val == nil {
			continue
		}
		if err := validateFiniteNonNegative(v.name, *v.val); err != nil {
			return err
		}
	}
	if f.Jitter < 0 || f.Jitter >= 1 || math.IsNaN(f.Jitter) {
		return fmt.Errorf("jitter must be in [0, 1), got %f", f.Jitter)
	}
	if f.GlobalTimeScale != nil {
		g := *f.GlobalTimeScale
		if math.IsNaN(g) || g < 0 || g > 1 {
			return fmt.Errorf("global_time_scale must be in [0, 1], got %f", g)
		}
	}
	if f.Substep != 0 {
		if err := validateFinitePositive("substep", f.Substep); err != nil {
			return err
		}
	}
	return nil
}

func validateTeam(t *TeamSpec, idx int, names map[string]int) error {
	prefix := fmt.Sprintf("team[%d] %q", idx, t.Name)
	if t.TimeScale != nil {
		ts := *t.TimeScale
		if math.IsNaN(ts) || ts < 0 || ts > 1 {
			return fmt.Errorf("%s: time_scale must be in [0, 1], got %f", prefix, ts)
		}
	}
	if t.SyncTo != "" {
		if t.SyncTo == t.Name {
			return fmt.Errorf("%s: cannot sync to itself", prefix)
		}
		if _, ok := names[t.SyncTo]; !ok {
			return fmt.Errorf("%s: sync_to references unknown team %q", prefix, t.SyncTo)
		}
	}
	if t.Particles < 0 {
		return fmt.Errorf("%s: particles must be non-negative, got %d", prefix, t.Particles)
	}
	if t.Start.Scale != nil {
		for i, s := range t.Start.Scale {
			if err := validateFinitePositive(fmt.Sprintf("%s: start.scale[%d]", prefix, i), s); err != nil {
				return err
			}
		}
	}
	if t.Parameters != nil {
		if err := t.Parameters.Validate(); err != nil {
			return fmt.Errorf("%s: parameters: %w", prefix, err)
		}
	}
	return nil
}

// checkSyncCycles rejects sync_to chains that loop back.
func checkSyncCycles(teams []TeamSpec, names map[string]int) error {
	for i, t := range teams {
		seen := map[int]bool{i: true}
		next := t.SyncTo
		for next != "" {
			j := names[next]
			if seen[j] {
				return fmt.Errorf("team[%d] %q: sync_to chain forms a cycle", i, t.Name)
			}
			seen[j] = true
			next = teams[j].SyncTo
		}
	}
	return nil
}

func validateWindZone(z *WindZoneSpec, idx int) error {
	prefix := fmt.Sprintf("wind_zones[%d]", idx)
	if z.Strength < 0 || math.IsNaN(z.Strength) || math.IsInf(z.Strength, 0) {
		return fmt.Errorf("%s: strength must be a finite value >= 0, got %f", prefix, z.Strength)
	}
	switch z.Mode {
	case sim.WindModeBoxDirection:
		for i, s := range z.Size {
			if err := validateFinitePositive(fmt.Sprintf("%s: size[%d]", prefix, i), s); err != nil {
				return err
			}
		}
	case sim.WindModeSphereDirection, sim.WindModeSphereRadial:
		if err := validateFinitePositive(prefix+": radius", z.Radius); err != nil {
			return err
		}
	}
	if z.Mode != sim.WindModeSphereRadial && z.Direction.Len() == 0 {
		return fmt.Errorf("%s: direction required for %v zones", prefix, z.Mode)
	}
	if _, err := sim.NewCurve(z.Attenuation...); err != nil {
		return fmt.Errorf("%s: attenuation: %w", prefix, err)
	}
	return nil
}

func validateEvent(e *EventSpec, idx int, names map[string]int) error {
	prefix := fmt.Sprintf("events[%d]", idx)
	if e.Frame < 0 {
		return fmt.Errorf("%s: frame must be non-negative, got %d", prefix, e.Frame)
	}
	if !validActions[e.Action] {
		return fmt.Errorf("%s: unknown action %q; valid: enable, disable, sync, unsync, time_scale, reset_pose, reset_time, destroy, wait, resume, teleport", prefix, e.Action)
	}
	if _, ok := names[e.Team]; !ok {
		return fmt.Errorf("%s: unknown team %q", prefix, e.Team)
	}
	switch e.Action {
	case ActionSync:
		if _, ok := names[e.Target]; !ok {
			return fmt.Errorf("%s: sync target %q is not a team", prefix, e.Target)
		}
	case ActionTimeScale:
		if math.IsNaN(e.Value) || e.Value < 0 || e.Value > 1 {
			return fmt.Errorf("%s: time_scale value must be in [0, 1], got %f", prefix, e.Value)
		}
	case ActionTeleport:
		if e.Position == nil {
			return fmt.Errorf("%s: teleport requires position", prefix)
		}
	}
	return nil
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}

func validateFiniteNonNegative(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val < 0 {
		return fmt.Errorf("%s must be non-negative, got %f", name, val)
	}
	return nil
}

func eulerToQuat(deg mgl64.Vec3) mgl64.Quat {
	return mgl64.AnglesToQuat(mgl64.DegToRad(deg[0]), mgl64.DegToRad(deg[1]), mgl64.DegToRad(deg[2]), mgl64.XYZ)
}
