package sim

import (
	"bytes"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// testSubstep is exactly representable so clock arithmetic in tests is exact.
const testSubstep = 0.125

// uniformInput drives every update mode with the same delta.
func uniformInput(delta float64) FrameInput {
	return FrameInput{
		DeltaTime:         delta,
		FixedDeltaTime:    delta,
		UnscaledDeltaTime: delta,
		GlobalTimeScale:   1,
		SubstepDuration:   testSubstep,
	}
}

func newTestWorld(t *testing.T, collab Collaborators) *World {
	t.Helper()
	w, err := NewWorld(WorldConfig{MaxTeamCount: 64, MaxSubstepsPerFrame: 8}, collab)
	require.NoError(t, err)
	return w
}

func testTeamConfig(name string) TeamConfig {
	return TeamConfig{
		Name:          name,
		Reference:     IdentityTransform(),
		FixedPoints:   []mgl64.Vec3{{0, 1, 0}},
		ParticleCount: 4,
		Parameters:    DefaultParameters(),
	}
}

func addTeam(t *testing.T, w *World, name string) TeamHandle {
	t.Helper()
	h, err := w.AddTeam(testTeamConfig(name))
	require.NoError(t, err)
	return h
}

func addEnabledTeam(t *testing.T, w *World, name string) TeamHandle {
	t.Helper()
	h := addTeam(t, w, name)
	require.NoError(t, w.SetEnable(h, true))
	return h
}

// runFrames runs n frames of the given input and returns each frame's sub-step count.
func runFrames(t *testing.T, w *World, in FrameInput, n int) []int {
	t.Helper()
	counts := make([]int, 0, n)
	for i := 0; i < n; i++ {
		res, err := w.RunFrame(in)
		require.NoError(t, err)
		counts = append(counts, res.MaxSubsteps)
	}
	return counts
}

// teamUpdates runs one frame and returns the team's update count for it.
func teamUpdates(t *testing.T, w *World, in FrameInput, h TeamHandle) int {
	t.Helper()
	_, err := w.RunFrame(in)
	require.NoError(t, err)
	snap, err := w.Snapshot(h)
	require.NoError(t, err)
	return snap.UpdateCount
}

// stubTransforms serves reference transforms from a map.
type stubTransforms map[TeamID]Transform

func (s stubTransforms) ReferenceTransform(id TeamID) (Transform, bool) {
	tr, ok := s[id]
	return tr, ok
}

// stubWinds serves a fixed zone list.
type stubWinds []WindZone

func (s stubWinds) WindZones() []WindZone { return s }

type enableCall struct {
	id TeamID
	on bool
}

// recordingColliders records every enable notification.
type recordingColliders struct {
	calls []enableCall
}

func (r *recordingColliders) SetTeamEnabled(id TeamID, on bool) {
	r.calls = append(r.calls, enableCall{id, on})
}

// recordingListener records every listener notification.
type recordingListener struct {
	calls []enableCall
}

func (r *recordingListener) OnTeamEnabled(id TeamID, on bool) {
	r.calls = append(r.calls, enableCall{id, on})
}

// captureLogOutput redirects logrus output to a buffer for the duration of fn.
func captureLogOutput(fn func()) string {
	var buf bytes.Buffer
	origOutput := logrus.StandardLogger().Out
	origLevel := logrus.GetLevel()
	logrus.SetOutput(&buf)
	if origLevel < logrus.WarnLevel {
		logrus.SetLevel(logrus.WarnLevel)
	}
	defer func() {
		logrus.SetOutput(origOutput)
		logrus.SetLevel(origLevel)
	}()
	fn()
	return buf.String()
}

func translated(x, y, z float64) Transform {
	tr := IdentityTransform()
	tr.Position = mgl64.Vec3{x, y, z}
	return tr
}
