package trace

// TraceLevel controls the verbosity of scheduling traces.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelFrames captures one record per frame with every live team's clock state.
	TraceLevelFrames TraceLevel = "frames"
	// TraceLevelSubsteps additionally captures per-sub-step inertia and wind output.
	TraceLevelSubsteps TraceLevel = "substeps"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:     true,
	TraceLevelFrames:   true,
	TraceLevelSubsteps: true,
	"":                 true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// TraceConfig controls trace collection behavior.
type TraceConfig struct {
	Level TraceLevel `yaml:"level"`
}

// SimulationTrace collects frame records during a run.
type SimulationTrace struct {
	Config TraceConfig   `yaml:"config"`
	Frames []FrameRecord `yaml:"frames"`
}

// NewSimulationTrace creates a SimulationTrace ready for recording.
func NewSimulationTrace(config TraceConfig) *SimulationTrace {
	return &SimulationTrace{
		Config: config,
		Frames: make([]FrameRecord, 0),
	}
}

// RecordFrame appends a frame record.
func (st *SimulationTrace) RecordFrame(record FrameRecord) {
	st.Frames = append(st.Frames, record)
}

// WantsSubsteps reports whether per-sub-step records should be collected.
func (st *SimulationTrace) WantsSubsteps() bool {
	return st != nil && st.Config.Level == TraceLevelSubsteps
}
