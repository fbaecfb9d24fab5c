package sim

import (
	"math"
	"testing"

	"github.com/cloth-sim/cloth-sim/sim/trace"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWorldConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     WorldConfig
		wantErr bool
	}{
		{"zero value", WorldConfig{}, false},
		{"defaults", DefaultWorldConfig(), false},
		{"negative team count", WorldConfig{MaxTeamCount: -1}, true},
		{"only reserved team", WorldConfig{MaxTeamCount: 1}, true},
		{"uncapped substeps", WorldConfig{MaxSubstepsPerFrame: UncappedSubsteps}, false},
		{"negative workers", WorldConfig{Workers: -2}, true},
		{"negative capacity", WorldConfig{InitialCapacity: -1}, true},
		{"bad trace level", WorldConfig{TraceLevel: "verbose"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWorldConfig_ZeroValuesTakeDefaults(t *testing.T) {
	w, err := NewWorld(WorldConfig{}, Collaborators{})
	require.NoError(t, err)
	cfg := w.Config()
	assert.Equal(t, DefaultMaxTeamCount, cfg.MaxTeamCount)
	assert.Equal(t, DefaultMaxSubstepsPerFrame, cfg.MaxSubstepsPerFrame)
	assert.Equal(t, 1, cfg.Workers)
	assert.Equal(t, trace.TraceLevelNone, cfg.TraceLevel)

	w, err = NewWorld(WorldConfig{MaxSubstepsPerFrame: -5}, Collaborators{})
	require.NoError(t, err)
	assert.Equal(t, UncappedSubsteps, w.Config().MaxSubstepsPerFrame)
}

func TestWorldConfig_YAML(t *testing.T) {
	var cfg WorldConfig
	require.NoError(t, yaml.Unmarshal([]byte("max_team_count: 8\nworkers: 4\ntrace_level: substeps\n"), &cfg))
	assert.Equal(t, WorldConfig{MaxTeamCount: 8, Workers: 4, TraceLevel: trace.TraceLevelSubsteps}, cfg)
}

func TestNewWorld_RejectsInvalidConfig(t *testing.T) {
	_, err := NewWorld(WorldConfig{Workers: -1}, Collaborators{})
	assert.Error(t, err)
}

func TestTeamConfig_Validate(t *testing.T) {
	ok := testTeamConfig("a")
	assert.NoError(t, ok.Validate())

	bad := testTeamConfig("a")
	bad.UpdateMode = 5
	assert.Error(t, bad.Validate())

	bad = testTeamConfig("a")
	bad.ParticleCount = -1
	assert.Error(t, bad.Validate())

	bad = testTeamConfig("a")
	bad.FixedPoints = []mgl64.Vec3{{math.NaN(), 0, 0}}
	assert.Error(t, bad.Validate())

	bad = testTeamConfig("a")
	bad.Parameters.BlendWeight = -1
	assert.ErrorContains(t, bad.Validate(), "parameters: blend_weight")
}

func TestFrameInput_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FrameInput)
	}{
		{"negative delta", func(in *FrameInput) { in.DeltaTime = -0.01 }},
		{"nan fixed delta", func(in *FrameInput) { in.FixedDeltaTime = math.NaN() }},
		{"infinite unscaled delta", func(in *FrameInput) { in.UnscaledDeltaTime = math.Inf(1) }},
		{"global scale above one", func(in *FrameInput) { in.GlobalTimeScale = 1.5 }},
		{"negative global scale", func(in *FrameInput) { in.GlobalTimeScale = -1 }},
		{"zero sub-step", func(in *FrameInput) { in.SubstepDuration = 0 }},
		{"infinite clamp", func(in *FrameInput) { in.MaxDeltaTime = math.Inf(1) }},
	}
	assert.NoError(t, uniformInput(0.1).Validate())
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := uniformInput(0.1)
			tc.mutate(&in)
			assert.ErrorIs(t, in.Validate(), ErrInvalidFrameInput)
		})
	}
}

func TestFrameInput_DeltaFor(t *testing.T) {
	in := FrameInput{DeltaTime: 0.5, FixedDeltaTime: 0.02, UnscaledDeltaTime: 0.25, MaxDeltaTime: 0.3}
	assert.Equal(t, 0.3, in.deltaFor(UpdateModeNormal), "clamped")
	assert.Equal(t, 0.02, in.deltaFor(UpdateModePhysics))
	assert.Equal(t, 0.25, in.deltaFor(UpdateModeUnscaled))

	in.MaxDeltaTime = 0
	assert.Equal(t, 0.5, in.deltaFor(UpdateModeNormal))
}
