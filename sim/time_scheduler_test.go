package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceTimeAndCounts_SixtyHertz(t *testing.T) {
	// GIVEN a team stepping at 1/60 s driven by three 1/60 s frames
	w := newTestWorld(t, Collaborators{})
	h := addEnabledTeam(t, w, "a")
	in := uniformInput(1.0 / 60)
	in.SubstepDuration = 1.0 / 60

	// WHEN the frames run
	var counts []int
	for i := 0; i < 3; i++ {
		counts = append(counts, teamUpdates(t, w, in, h))
	}

	// THEN each frame runs exactly one sub-step and the clock reads 0.05 s
	assert.Equal(t, []int{1, 1, 1}, counts)
	assert.InDelta(t, 0.05, w.Team(h.ID()).Time, 1e-12)
}

func TestAdvanceTimeAndCounts_ReturnsMaxOverTeams(t *testing.T) {
	w := newTestWorld(t, Collaborators{})
	fast := addEnabledTeam(t, w, "fast")
	slow := addEnabledTeam(t, w, "slow")
	require.NoError(t, w.SetTimeScale(slow, 0.5))

	n, err := w.AdvanceTimeAndCounts(uniformInput(0.5))
	require.NoError(t, err)

	assert.Equal(t, 4, n)
	assert.Equal(t, 4, w.Team(fast.ID()).UpdateCount)
	assert.Equal(t, 2, w.Team(slow.ID()).UpdateCount)
	require.NoError(t, w.FinalizeFrame())
}

func TestAdvanceTimeAndCounts_UpdateModeSelectsDelta(t *testing.T) {
	w := newTestWorld(t, Collaborators{})
	normal := addEnabledTeam(t, w, "normal")
	physics := addEnabledTeam(t, w, "physics")
	unscaled := addEnabledTeam(t, w, "unscaled")
	require.NoError(t, w.SetUpdateMode(physics, UpdateModePhysics))
	require.NoError(t, w.SetUpdateMode(unscaled, UpdateModeUnscaled))

	in := FrameInput{
		DeltaTime:         0.125,
		FixedDeltaTime:    0.25,
		UnscaledDeltaTime: 0.375,
		GlobalTimeScale:   1,
		SubstepDuration:   testSubstep,
	}
	_, err := w.RunFrame(in)
	require.NoError(t, err)

	assert.Equal(t, 1, w.Team(normal.ID()).UpdateCount)
	assert.Equal(t, 2, w.Team(physics.ID()).UpdateCount)
	assert.Equal(t, 3, w.Team(unscaled.ID()).UpdateCount)
}

func TestAdvanceTimeAndCounts_TimeScale(t *testing.T) {
	tests := []struct {
		name        string
		teamScale   float64
		globalScale float64
		want        []int
	}{
		{"full speed", 1, 1, []int{1, 1, 1, 1}},
		{"half team scale", 0.5, 1, []int{0, 1, 0, 1}},
		{"half global scale", 1, 0.5, []int{0, 1, 0, 1}},
		{"paused", 0, 1, []int{0, 0, 0, 0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, Collaborators{})
			h := addEnabledTeam(t, w, "a")
			require.NoError(t, w.SetTimeScale(h, tc.teamScale))
			in := uniformInput(testSubstep)
			in.GlobalTimeScale = tc.globalScale

			var got []int
			for i := 0; i < len(tc.want); i++ {
				got = append(got, teamUpdates(t, w, in, h))
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAdvanceTimeAndCounts_DisabledTeamIsSkipped(t *testing.T) {
	w := newTestWorld(t, Collaborators{})
	on := addEnabledTeam(t, w, "on")
	off := addTeam(t, w, "off")

	runFrames(t, w, uniformInput(0.25), 3)

	assert.Equal(t, 0, w.Team(off.ID()).UpdateCount)
	assert.Equal(t, 0.0, w.Team(off.ID()).Time)
	assert.Equal(t, 0.75, w.Team(on.ID()).Time)
	assert.False(t, w.Team(off.ID()).Flags.Has(FlagRunning))
}

func TestAdvanceTimeAndCounts_PerFrameCapSkipsExcess(t *testing.T) {
	w, err := NewWorld(WorldConfig{MaxSubstepsPerFrame: 3}, Collaborators{})
	require.NoError(t, err)
	h := addEnabledTeam(t, w, "a")

	n, err := w.AdvanceTimeAndCounts(uniformInput(1.0))
	require.NoError(t, err)

	td := w.Team(h.ID())
	assert.Equal(t, 3, n)
	assert.Equal(t, 3, td.UpdateCount)
	assert.Equal(t, 5, td.SkipCount)
	assert.Equal(t, 0.625, td.NowUpdateTime, "skipped sub-steps advance the step clock")

	for s := 0; s < n; s++ {
		require.NoError(t, w.RunSubstep(s))
	}
	require.NoError(t, w.FinalizeFrame())
	assert.Equal(t, 1.0, w.Team(h.ID()).NowUpdateTime)
}

func TestAdvanceTimeAndCounts_UncappedRunsEverySubstep(t *testing.T) {
	w, err := NewWorld(WorldConfig{MaxSubstepsPerFrame: UncappedSubsteps}, Collaborators{})
	require.NoError(t, err)
	h := addEnabledTeam(t, w, "a")

	counts := runFrames(t, w, uniformInput(1.0), 2)
	assert.Equal(t, []int{8, 8}, counts)

	td := w.Team(h.ID())
	assert.Equal(t, 0, td.SkipCount)
	assert.Equal(t, 2.0, td.NowUpdateTime)
}

func TestAdvanceTimeAndCounts_DriftCorrection(t *testing.T) {
	// GIVEN a team owing sub-steps while no time is added
	w := newTestWorld(t, Collaborators{})
	h := addEnabledTeam(t, w, "a")
	runFrames(t, w, uniformInput(testSubstep), 1)
	td := w.teams.At(int(h.ID()))
	td.Time = 1.0
	td.NowUpdateTime = 0.125

	// WHEN a frame arrives with a zero global time scale
	in := uniformInput(testSubstep)
	in.GlobalTimeScale = 0
	n, err := w.AdvanceTimeAndCounts(in)
	require.NoError(t, err)

	// THEN the owed sub-steps are dropped and the step clock snaps behind the team clock
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, td.UpdateCount)
	assert.InDelta(t, 1.0-testSubstep+DriftEpsilon, td.NowUpdateTime, 1e-15)
	require.NoError(t, w.FinalizeFrame())

	// AND the next real frame resumes with a single sub-step
	assert.Equal(t, 1, teamUpdates(t, w, uniformInput(testSubstep), h))
}

func TestAdvanceTimeAndCounts_TimeReset(t *testing.T) {
	w := newTestWorld(t, Collaborators{})
	h := addEnabledTeam(t, w, "a")
	runFrames(t, w, uniformInput(0.25), 2)
	require.Equal(t, 0.5, w.Team(h.ID()).Time)

	require.NoError(t, w.ResetTime(h))
	runFrames(t, w, uniformInput(testSubstep), 1)

	td := w.Team(h.ID())
	assert.Equal(t, testSubstep, td.Time)
	assert.Equal(t, 1, td.UpdateCount)
	assert.False(t, td.Flags.Has(FlagTimeReset))
}

func TestAdvanceTimeAndCounts_MaxDeltaClamp(t *testing.T) {
	w := newTestWorld(t, Collaborators{})
	h := addEnabledTeam(t, w, "a")
	in := uniformInput(2.0)
	in.MaxDeltaTime = 0.25

	assert.Equal(t, 2, teamUpdates(t, w, in, h))
	assert.Equal(t, 0.25, w.Team(h.ID()).Time)
}

func TestAdvanceTimeAndCounts_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*FrameInput)
	}{
		{"negative delta", func(in *FrameInput) { in.DeltaTime = -1 }},
		{"nan fixed delta", func(in *FrameInput) { in.FixedDeltaTime = math.NaN() }},
		{"infinite unscaled delta", func(in *FrameInput) { in.UnscaledDeltaTime = math.Inf(1) }},
		{"zero sub-step", func(in *FrameInput) { in.SubstepDuration = 0 }},
		{"global scale above one", func(in *FrameInput) { in.GlobalTimeScale = 2 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := newTestWorld(t, Collaborators{})
			in := uniformInput(testSubstep)
			tc.mutate(&in)
			_, err := w.AdvanceTimeAndCounts(in)
			assert.ErrorIs(t, err, ErrInvalidFrameInput)
			assert.False(t, w.frame.active, "a rejected frame must not open")
		})
	}
}

func TestFrameCallOrder(t *testing.T) {
	w := newTestWorld(t, Collaborators{})
	addEnabledTeam(t, w, "a")

	assert.ErrorIs(t, w.RunSubstep(0), ErrNoFrame)
	assert.ErrorIs(t, w.FinalizeFrame(), ErrNoFrame)

	n, err := w.AdvanceTimeAndCounts(uniformInput(0.25))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	_, err = w.AdvanceTimeAndCounts(uniformInput(0.25))
	assert.ErrorIs(t, err, ErrFrameInProgress)
	assert.ErrorIs(t, w.RunSubstep(-1), ErrSubstepRange)
	assert.ErrorIs(t, w.RunSubstep(2), ErrSubstepRange)
	assert.NoError(t, w.RunSubstep(1))
	assert.NoError(t, w.FinalizeFrame())
}

func TestAdvanceTimeAndCounts_ClockInvariantUnderJitter(t *testing.T) {
	// GIVEN random frame deltas that never exceed the per-frame cap
	w := newTestWorld(t, Collaborators{})
	h := addEnabledTeam(t, w, "a")
	rng := rand.New(rand.NewSource(11))
	substep := 1.0 / 90

	stepped := 0
	for i := 0; i < 500; i++ {
		in := uniformInput(rng.Float64() * 0.05)
		in.SubstepDuration = substep
		stepped += teamUpdates(t, w, in, h)

		// THEN the step clock trails the team clock by less than one sub-step
		td := w.Team(h.ID())
		lag := td.Time - td.NowUpdateTime
		require.GreaterOrEqual(t, lag, -1e-9, "frame %d", i)
		require.Less(t, lag, substep+1e-9, "frame %d", i)
		require.Equal(t, 0, td.SkipCount)
	}

	// AND the total sub-step time accounts for the whole clock
	td := w.Team(h.ID())
	assert.InDelta(t, td.NowUpdateTime, float64(stepped)*substep, 1e-9)
}

func TestAdvanceTimeAndCounts_Deterministic(t *testing.T) {
	run := func() []TeamSnapshot {
		w := newTestWorld(t, Collaborators{Transforms: stubTransforms{1: translated(1, 0, 0), 2: translated(0, 0, 2)}})
		a := addEnabledTeam(t, w, "a")
		b := addEnabledTeam(t, w, "b")
		require.NoError(t, w.SetTimeScale(b, 0.7))
		rng := rand.New(rand.NewSource(3))
		for i := 0; i < 50; i++ {
			_, err := w.RunFrame(uniformInput(rng.Float64() * 0.3))
			require.NoError(t, err)
		}
		sa, err := w.Snapshot(a)
		require.NoError(t, err)
		sb, err := w.Snapshot(b)
		require.NoError(t, err)
		return []TeamSnapshot{sa, sb}
	}

	assert.Equal(t, run(), run())
}
