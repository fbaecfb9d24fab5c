// Tracks scheduling statistics across frames such as sub-step counts, skipped
// sub-steps and suspension.

package sim

import (
	"fmt"
	"io"
	"sort"
)

// Metrics aggregates statistics about the scheduler
// for final reporting.
type Metrics struct {
	Frames          int64 // Number of finalized frames
	Substeps        int64 // Sum of per-frame sub-step passes (max over teams)
	TeamSubsteps    int64 // Sum of sub-steps over all teams
	SkippedSubsteps int64 // Sub-steps dropped by the per-frame cap
	SuspendedFrames int64 // Team-frames spent suspended
	PeakEligible    int   // Max number of teams processed in one frame

	SubstepsPerFrame []int // per-frame sub-step passes, in frame order
}

// NewMetrics returns empty metrics.
func NewMetrics() *Metrics {
	return &Metrics{SubstepsPerFrame: make([]int, 0)}
}

func (m *Metrics) recordFrame(res FrameResult, teamSubsteps, skipped int) {
	m.Frames++
	m.Substeps += int64(res.MaxSubsteps)
	m.TeamSubsteps += int64(teamSubsteps)
	m.SkippedSubsteps += int64(skipped)
	m.SuspendedFrames += int64(res.Suspended)
	m.PeakEligible = max(m.PeakEligible, res.Eligible)
	m.SubstepsPerFrame = append(m.SubstepsPerFrame, res.MaxSubsteps)
}

// Print writes aggregated metrics.
func (m *Metrics) Print(w io.Writer) {
	fmt.Fprintln(w, "=== Scheduler Metrics ===")
	fmt.Fprintf(w, "Frames               : %d\n", m.Frames)
	fmt.Fprintf(w, "Sub-step passes      : %d\n", m.Substeps)
	fmt.Fprintf(w, "Team sub-steps       : %d\n", m.TeamSubsteps)
	fmt.Fprintf(w, "Skipped sub-steps    : %d\n", m.SkippedSubsteps)
	fmt.Fprintf(w, "Suspended team-frames: %d\n", m.SuspendedFrames)
	fmt.Fprintf(w, "Peak eligible teams  : %d\n", m.PeakEligible)
	if len(m.SubstepsPerFrame) > 0 {
		sorted := append([]int(nil), m.SubstepsPerFrame...)
		sort.Ints(sorted)
		fmt.Fprintf(w, "Sub-steps per frame  : mean %.2f, p50 %.2f, p99 %.2f, max %d\n",
			CalculateMean(sorted), CalculatePercentile(sorted, 50), CalculatePercentile(sorted, 99), sorted[len(sorted)-1])
	}
}
