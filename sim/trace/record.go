// Package trace provides scheduling-trace recording for frame-level analysis.
// This package has no dependencies on sim/ and stores pure data types.
package trace

// FrameRecord captures the outcome of one scheduled frame.
type FrameRecord struct {
	Frame       int64           `yaml:"frame"`
	MaxSubsteps int             `yaml:"max_substeps"`
	Teams       []TeamRecord    `yaml:"teams"`
	Substeps    []SubstepRecord `yaml:"substeps,omitempty"`
}

// TeamRecord captures one team's clock state at the end of a frame.
type TeamRecord struct {
	TeamID       int     `yaml:"team"`
	Name         string  `yaml:"name"`
	UpdateCount  int     `yaml:"update_count"`
	SkipCount    int     `yaml:"skip_count,omitempty"`
	Time         float64 `yaml:"time"`
	Enabled      bool    `yaml:"enabled"`
	Suspended    bool    `yaml:"suspended,omitempty"`
	SyncTeamID   int     `yaml:"sync_team,omitempty"` // 0 when unsynchronized
	BlendWeight  float64 `yaml:"blend_weight"`
	GravityRatio float64 `yaml:"gravity_ratio"`
	Winds        int     `yaml:"winds"` // active wind entries including moving wind
}

// SubstepRecord captures the teams that ran in one sub-step.
type SubstepRecord struct {
	Index int          `yaml:"index"`
	Teams []StepRecord `yaml:"teams"`
}

// StepRecord captures one team's inertia and wind output for a sub-step.
type StepRecord struct {
	TeamID             int        `yaml:"team"`
	FrameInterpolation float64    `yaml:"interpolation"`
	Center             [3]float64 `yaml:"center,flow"`
	InertiaVector      [3]float64 `yaml:"inertia,flow"`
	MovingSpeed        float64    `yaml:"moving_speed"`
	WindIDs            []int      `yaml:"wind_ids,flow"`
}
