// Package sim provides the per-tick team scheduler for spring/cloth simulation.
//
// # Reading Guide
//
// Start with these files to understand the scheduling kernel:
//   - registry.go: team lifecycle (create, enable, destroy) over lockstep arenas
//   - time_scheduler.go: per-frame time accumulation and sub-step counting
//   - inertia.go and wind.go: per-sub-step center motion and wind selection
//   - finalize.go: end-of-frame rebasing and flag clearing
//
// A frame is driven with three calls in order:
//
//	n, err := w.AdvanceTimeAndCounts(in)
//	for s := 0; s < n; s++ {
//		w.RunSubstep(s)
//	}
//	w.FinalizeFrame()
//
// RunFrame does the same and also records metrics and trace output.
//
// # Architecture
//
// Per-team state lives in parallel arenas (sim/arena) indexed by team id: TeamData,
// CenterData, TeamWindData and ClothParameters. Bookkeeping that needs maps or
// strings (names, sync requests, pending parameters) stays outside the arenas and
// is only touched by the sequential phases. The parallel passes write exclusively to
// the record of the team index they are processing.
//
// # Collaborators
//
// The world reads reference transforms through TransformProvider and wind volumes
// through WindProvider, and reports enable changes to ColliderProvider and any
// registered TeamListener. All of them are optional.
package sim
