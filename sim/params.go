package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ClothParameters is the per-team tuning consumed by the scheduler. It is stored by
// value in the parameter arena, so every field is a plain value.
type ClothParameters struct {
	StabilizationTime float64       `yaml:"stabilization_time"` // seconds to blend velocity back in after a reset
	BlendWeight       float64       `yaml:"blend_weight"`       // [0,1]
	Inertia           InertiaParams `yaml:"inertia"`
	Gravity           GravityParams `yaml:"gravity"`
	Wind              WindParams    `yaml:"wind"`
}

// InertiaParams controls how much reference motion is shifted into inertia.
type InertiaParams struct {
	WorldInertia       float64      `yaml:"world_inertia"`        // 1 keeps full world inertia, 0 shifts all motion
	MovingSpeedLimit   float64      `yaml:"moving_speed_limit"`   // m/s, negative disables
	RotationSpeedLimit float64      `yaml:"rotation_speed_limit"` // deg/s, negative disables
	TeleportMode       TeleportMode `yaml:"teleport_mode"`
	TeleportDistance   float64      `yaml:"teleport_distance"` // metres per sub-step
	TeleportRotation   float64      `yaml:"teleport_rotation"` // degrees per sub-step
}

// GravityParams controls gravity falloff relative to the rest orientation.
type GravityParams struct {
	Direction mgl64.Vec3 `yaml:"direction"`
	Falloff   float64    `yaml:"falloff"` // [0,1]
}

// WindParams controls how a team reacts to wind.
type WindParams struct {
	Influence  float64 `yaml:"influence"` // 0 disables wind for the team
	Frequency  float64 `yaml:"frequency"`
	MovingWind float64 `yaml:"moving_wind"` // wind generated by the team's own motion
}

// IsEnabled reports whether the team participates in wind selection at all.
func (p WindParams) IsEnabled() bool {
	return p.Influence > 0
}

// DefaultParameters returns the parameters used when a scenario omits them.
func DefaultParameters() ClothParameters {
	return ClothParameters{
		StabilizationTime: 0.1,
		BlendWeight:       1,
		Inertia: InertiaParams{
			WorldInertia:       1,
			MovingSpeedLimit:   5,
			RotationSpeedLimit: 720,
			TeleportMode:       TeleportNone,
			TeleportDistance:   0.5,
			TeleportRotation:   90,
		},
		Gravity: GravityParams{
			Direction: mgl64.Vec3{0, -1, 0},
		},
		Wind: WindParams{
			Influence: 1,
			Frequency: 1,
		},
	}
}

// UnmarshalYAML fills omitted fields from DefaultParameters.
func (p *ClothParameters) UnmarshalYAML(value *yaml.Node) error {
	type plain ClothParameters
	out := plain(DefaultParameters())
	if err := value.Decode(&out); err != nil {
		return err
	}
	*p = ClothParameters(out)
	return nil
}

// Validate checks ranges and finiteness.
func (p ClothParameters) Validate() error {
	if !isFinite(p.StabilizationTime) || p.StabilizationTime < 0 {
		return fmt.Errorf("stabilization_time must be a finite value >= 0, got %v", p.StabilizationTime)
	}
	if err := checkUnit("blend_weight", p.BlendWeight); err != nil {
		return err
	}
	if err := checkUnit("inertia.world_inertia", p.Inertia.WorldInertia); err != nil {
		return err
	}
	if !isFinite(p.Inertia.MovingSpeedLimit) || !isFinite(p.Inertia.RotationSpeedLimit) {
		return fmt.Errorf("inertia speed limits must be finite")
	}
	switch p.Inertia.TeleportMode {
	case TeleportNone, TeleportReset, TeleportKeep:
	default:
		return fmt.Errorf("unknown inertia.teleport_mode %d", int(p.Inertia.TeleportMode))
	}
	if !isFinite(p.Inertia.TeleportDistance) || p.Inertia.TeleportDistance < 0 {
		return fmt.Errorf("inertia.teleport_distance must be >= 0, got %v", p.Inertia.TeleportDistance)
	}
	if !isFinite(p.Inertia.TeleportRotation) || p.Inertia.TeleportRotation < 0 {
		return fmt.Errorf("inertia.teleport_rotation must be >= 0, got %v", p.Inertia.TeleportRotation)
	}
	if !isFiniteVec(p.Gravity.Direction) {
		return fmt.Errorf("gravity.direction must be finite, got %v", p.Gravity.Direction)
	}
	if err := checkUnit("gravity.falloff", p.Gravity.Falloff); err != nil {
		return err
	}
	if !isFinite(p.Wind.Influence) || p.Wind.Influence < 0 {
		return fmt.Errorf("wind.influence must be >= 0, got %v", p.Wind.Influence)
	}
	if !isFinite(p.Wind.Frequency) || p.Wind.Frequency < 0 {
		return fmt.Errorf("wind.frequency must be >= 0, got %v", p.Wind.Frequency)
	}
	if !isFinite(p.Wind.MovingWind) || p.Wind.MovingWind < 0 {
		return fmt.Errorf("wind.moving_wind must be >= 0, got %v", p.Wind.MovingWind)
	}
	return nil
}

func checkUnit(name string, v float64) error {
	if !isFinite(v) || v < 0 || v > 1 {
		return fmt.Errorf("%s must be in [0, 1], got %v", name, v)
	}
	return nil
}
