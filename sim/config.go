package sim

import (
	"fmt"

	"github.com/cloth-sim/cloth-sim/sim/trace"
	"github.com/go-gl/mathgl/mgl64"
)

// WorldConfig groups world-wide limits.
type WorldConfig struct {
	MaxTeamCount        int              `yaml:"max_team_count"`         // team ids must stay below this (0 = DefaultMaxTeamCount)
	MaxSubstepsPerFrame int              `yaml:"max_substeps_per_frame"` // per-team cap; excess sub-steps are skipped (0 = default, < 0 = uncapped)
	Workers             int              `yaml:"workers"`                // parallel pass width; <= 1 runs inline
	InitialCapacity     int              `yaml:"initial_capacity"`       // initial team arena capacity
	TraceLevel          trace.TraceLevel `yaml:"trace_level"`
}

// DefaultWorldConfig returns the configuration used by the CLI.
func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		MaxTeamCount:        DefaultMaxTeamCount,
		MaxSubstepsPerFrame: DefaultMaxSubstepsPerFrame,
		Workers:             1,
		InitialCapacity:     16,
		TraceLevel:          trace.TraceLevelNone,
	}
}

// Validate checks the configuration. Zero values are accepted and replaced by defaults;
// a negative MaxSubstepsPerFrame disables the per-frame cap.
func (c WorldConfig) Validate() error {
	if c.MaxTeamCount < 0 {
		return fmt.Errorf("max_team_count must be >= 0, got %d", c.MaxTeamCount)
	}
	if c.MaxTeamCount == 1 {
		return fmt.Errorf("max_team_count must leave room beyond the reserved team 0")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.InitialCapacity < 0 {
		return fmt.Errorf("initial_capacity must be >= 0, got %d", c.InitialCapacity)
	}
	if !trace.IsValidTraceLevel(string(c.TraceLevel)) {
		return fmt.Errorf("unknown trace_level %q", c.TraceLevel)
	}
	return nil
}

func (c WorldConfig) withDefaults() WorldConfig {
	if c.MaxTeamCount == 0 {
		c.MaxTeamCount = DefaultMaxTeamCount
	}
	if c.MaxSubstepsPerFrame == 0 {
		c.MaxSubstepsPerFrame = DefaultMaxSubstepsPerFrame
	} else if c.MaxSubstepsPerFrame < 0 {
		c.MaxSubstepsPerFrame = UncappedSubsteps
	}
	if c.Workers == 0 {
		c.Workers = 1
	}
	if c.TraceLevel == "" {
		c.TraceLevel = trace.TraceLevelNone
	}
	return c
}

// TeamConfig describes a team at creation.
type TeamConfig struct {
	Name          string
	UpdateMode    UpdateMode
	Reference     Transform
	FixedPoints   []mgl64.Vec3 // world-space fixed particle positions; their centroid is the team center
	ParticleCount int
	Parameters    ClothParameters
}

// Validate checks the configuration.
func (c TeamConfig) Validate() error {
	switch c.UpdateMode {
	case UpdateModeNormal, UpdateModePhysics, UpdateModeUnscaled:
	default:
		return fmt.Errorf("unknown update mode %d", int(c.UpdateMode))
	}
	if c.ParticleCount < 0 {
		return fmt.Errorf("particle count must be >= 0, got %d", c.ParticleCount)
	}
	if !isFiniteVec(c.Reference.Position) || !isFiniteVec(c.Reference.Scale) {
		return fmt.Errorf("reference transform must be finite")
	}
	for i, p := range c.FixedPoints {
		if !isFiniteVec(p) {
			return fmt.Errorf("fixed point %d is not finite", i)
		}
	}
	if err := c.Parameters.Validate(); err != nil {
		return fmt.Errorf("parameters: %w", err)
	}
	return nil
}

// FrameInput carries the per-frame deltas supplied by the host loop.
type FrameInput struct {
	DeltaTime         float64 // scaled variable delta
	FixedDeltaTime    float64 // physics delta
	UnscaledDeltaTime float64
	GlobalTimeScale   float64 // [0,1], multiplied with each team's TimeScale
	SubstepDuration   float64 // simulation step length, > 0
	MaxDeltaTime      float64 // per-frame delta clamp; <= 0 disables
}

// Validate rejects non-finite or negative deltas and a non-positive sub-step.
func (in FrameInput) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"delta time", in.DeltaTime},
		{"fixed delta time", in.FixedDeltaTime},
		{"unscaled delta time", in.UnscaledDeltaTime},
		{"global time scale", in.GlobalTimeScale},
	} {
		if !isFinite(f.v) || f.v < 0 {
			return fmt.Errorf("%w: %s must be finite and >= 0, got %v", ErrInvalidFrameInput, f.name, f.v)
		}
	}
	if in.GlobalTimeScale > 1 {
		return fmt.Errorf("%w: global time scale must be <= 1, got %v", ErrInvalidFrameInput, in.GlobalTimeScale)
	}
	if !isFinite(in.SubstepDuration) || in.SubstepDuration <= 0 {
		return fmt.Errorf("%w: sub-step duration must be > 0, got %v", ErrInvalidFrameInput, in.SubstepDuration)
	}
	if !isFinite(in.MaxDeltaTime) {
		return fmt.Errorf("%w: max delta time must be finite", ErrInvalidFrameInput)
	}
	return nil
}

// deltaFor returns the clamped delta that drives a team in the given mode.
func (in FrameInput) deltaFor(mode UpdateMode) float64 {
	var dt float64
	switch mode {
	case UpdateModePhysics:
		dt = in.FixedDeltaTime
	case UpdateModeUnscaled:
		dt = in.UnscaledDeltaTime
	default:
		dt = in.DeltaTime
	}
	if in.MaxDeltaTime > 0 && dt > in.MaxDeltaTime {
		dt = in.MaxDeltaTime
	}
	return dt
}
