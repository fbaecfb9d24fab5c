package sim

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	// MaxAdditiveWinds caps additive wind zones per team.
	MaxAdditiveWinds = 3
	// MaxTeamWinds is the additive cap plus the single area zone.
	MaxTeamWinds = MaxAdditiveWinds + 1

	// WindEpsilon is the minimum strength of a usable wind entry.
	WindEpsilon = 0.01

	// WindFrequencyPerStrength converts strength into phase frequency, capped at WindMaxFrequency.
	WindFrequencyPerStrength = 0.1
	WindMaxFrequency         = 2.0

	// WindTimeWrap bounds the wind phase; beyond it the phase jumps back by 2*WindTimeWrap.
	WindTimeWrap = 10000.0

	// MovingWindID identifies the wind generated by a team's own motion.
	MovingWindID = -1
)

// TeamWindInfo is one wind influence on a team.
type TeamWindInfo struct {
	WindID    int
	Time      float64 // phase accumulator
	Strength  float64
	Direction mgl64.Vec3
}

// IsValid reports whether the entry is strong enough to be used.
func (w TeamWindInfo) IsValid() bool {
	return w.Strength > WindEpsilon
}

// TeamWindData is the set of winds acting on a team for the current sub-step:
// up to MaxAdditiveWinds additive entries followed by at most one area entry, plus
// the moving wind.
type TeamWindData struct {
	Zones      [MaxTeamWinds]TeamWindInfo
	ZoneCount  int
	MovingWind TeamWindInfo
}

// IndexOf returns the zone entry index for windID, or -1.
func (d *TeamWindData) IndexOf(windID int) int {
	for i := 0; i < d.ZoneCount; i++ {
		if d.Zones[i].WindID == windID {
			return i
		}
	}
	return -1
}

// Active returns the zone entries followed by the moving wind when it is valid.
func (d *TeamWindData) Active() []TeamWindInfo {
	out := make([]TeamWindInfo, 0, d.ZoneCount+1)
	out = append(out, d.Zones[:d.ZoneCount]...)
	if d.MovingWind.IsValid() {
		out = append(out, d.MovingWind)
	}
	return out
}

// WindMode is the shape of a wind zone.
type WindMode int

const (
	WindModeGlobal WindMode = iota
	WindModeBoxDirection
	WindModeSphereDirection
	WindModeSphereRadial
)

var windModeNames = map[WindMode]string{
	WindModeGlobal:          "global",
	WindModeBoxDirection:    "box",
	WindModeSphereDirection: "sphere",
	WindModeSphereRadial:    "radial",
}

func (m WindMode) String() string {
	if s, ok := windModeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("WindMode(%d)", int(m))
}

// UnmarshalYAML accepts "global", "box", "sphere" or "radial".
func (m *WindMode) UnmarshalYAML(value *yaml.Node) error {
	for mode, name := range windModeNames {
		if name == value.Value {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("line %d: unknown wind mode %q (valid: global, box, sphere, radial)", value.Line, value.Value)
}

// WindZone is a wind volume supplied by the WindProvider.
type WindZone struct {
	ID       int
	Enabled  bool
	Mode     WindMode
	Additive bool

	Position mgl64.Vec3
	Rotation mgl64.Quat
	Size     mgl64.Vec3 // full box extents
	Radius   float64

	Direction   mgl64.Vec3 // zone-local; unused by radial zones
	Strength    float64
	Attenuation Curve // radial falloff over normalized distance from the center
}

// IsValid reports whether the zone has a usable shape and strength.
func (z WindZone) IsValid() bool {
	if !isFinite(z.Strength) || z.Strength <= WindEpsilon {
		return false
	}
	switch z.Mode {
	case WindModeGlobal:
		return safeNormalize(z.Direction) != mgl64.Vec3{}
	case WindModeBoxDirection:
		return z.Size[0] > 0 && z.Size[1] > 0 && z.Size[2] > 0 && safeNormalize(z.Direction) != mgl64.Vec3{}
	case WindModeSphereDirection:
		return z.Radius > 0 && safeNormalize(z.Direction) != mgl64.Vec3{}
	case WindModeSphereRadial:
		return z.Radius > 0
	}
	return false
}

// Volume orders area zones; smaller volumes take priority.
func (z WindZone) Volume() float64 {
	switch z.Mode {
	case WindModeBoxDirection:
		return z.Size[0] * z.Size[1] * z.Size[2]
	case WindModeSphereDirection, WindModeSphereRadial:
		return 4.0 / 3.0 * math.Pi * z.Radius * z.Radius * z.Radius
	}
	return math.MaxFloat64
}

// influence evaluates the zone at a world position. The second result is false
// when the position is outside the zone or the resulting strength is too weak.
func (z WindZone) influence(pos mgl64.Vec3) (TeamWindInfo, bool) {
	rot := normalizeQuat(z.Rotation)
	local := rot.Inverse().Rotate(pos.Sub(z.Position))
	dir := safeNormalize(rot.Rotate(z.Direction))
	strength := z.Strength

	switch z.Mode {
	case WindModeGlobal:
	case WindModeBoxDirection:
		for i := 0; i < 3; i++ {
			if math.Abs(local[i]) > z.Size[i]*0.5 {
				return TeamWindInfo{}, false
			}
		}
	case WindModeSphereDirection:
		if local.Len() > z.Radius {
			return TeamWindInfo{}, false
		}
	case WindModeSphereRadial:
		dist := local.Len()
		if dist > z.Radius {
			return TeamWindInfo{}, false
		}
		if radial := safeNormalize(pos.Sub(z.Position)); radial != (mgl64.Vec3{}) {
			dir = radial
		}
		strength *= z.Attenuation.Evaluate(dist / z.Radius)
	default:
		return TeamWindInfo{}, false
	}

	info := TeamWindInfo{WindID: z.ID, Strength: strength, Direction: dir}
	if !info.IsValid() || dir == (mgl64.Vec3{}) {
		return TeamWindInfo{}, false
	}
	return info, true
}
