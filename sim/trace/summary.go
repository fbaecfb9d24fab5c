package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalFrames     int         `yaml:"total_frames"`
	TotalSubsteps   int         `yaml:"total_substeps"`
	MaxSubsteps     int         `yaml:"max_substeps"`
	TeamUpdates     map[int]int `yaml:"team_updates"`     // team ID → sub-steps run
	SuspendedFrames map[int]int `yaml:"suspended_frames"` // team ID → frames spent suspended
	SkippedSubsteps int         `yaml:"skipped_substeps"`
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TeamUpdates:     make(map[int]int),
		SuspendedFrames: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalFrames = len(st.Frames)
	for _, f := range st.Frames {
		summary.TotalSubsteps += f.MaxSubsteps
		if f.MaxSubsteps > summary.MaxSubsteps {
			summary.MaxSubsteps = f.MaxSubsteps
		}
		for _, t := range f.Teams {
			summary.TeamUpdates[t.TeamID] += t.UpdateCount
			summary.SkippedSubsteps += t.SkipCount
			if t.Suspended {
				summary.SuspendedFrames[t.TeamID]++
			}
		}
	}

	return summary
}
