package sim

import (
	"math"
	"testing"

	"github.com/cloth-sim/cloth-sim/sim/internal/testutil"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func globalZone(id int, strength float64, additive bool) WindZone {
	return WindZone{
		ID:        id,
		Enabled:   true,
		Mode:      WindModeGlobal,
		Additive:  additive,
		Rotation:  mgl64.QuatIdent(),
		Direction: mgl64.Vec3{1, 0, 0},
		Strength:  strength,
	}
}

func boxZone(id int, size float64) WindZone {
	z := globalZone(id, 5, false)
	z.Mode = WindModeBoxDirection
	z.Size = mgl64.Vec3{size, size, size}
	return z
}

func sphereZone(id int, radius float64) WindZone {
	z := globalZone(id, 5, false)
	z.Mode = WindModeSphereDirection
	z.Radius = radius
	return z
}

func zoneIDs(d TeamWindData) []int {
	ids := make([]int, 0, d.ZoneCount)
	for _, z := range d.Zones[:d.ZoneCount] {
		ids = append(ids, z.WindID)
	}
	return ids
}

func TestSelectWinds_AdditiveCap(t *testing.T) {
	zones := []WindZone{
		globalZone(1, 5, true), globalZone(2, 5, true), globalZone(3, 5, true),
		globalZone(4, 5, true), globalZone(5, 5, true),
	}

	got := selectWinds(zones, mgl64.Vec3{}, &TeamWindData{})

	assert.Equal(t, []int{1, 2, 3}, zoneIDs(got))
}

func TestSelectWinds_SmallestAreaWins(t *testing.T) {
	zones := []WindZone{
		globalZone(1, 5, false),
		boxZone(2, 2),    // volume 8
		sphereZone(3, 1), // volume 4.19
		globalZone(4, 5, true),
		boxZone(5, 4), // volume 64
	}

	got := selectWinds(zones, mgl64.Vec3{}, &TeamWindData{})

	assert.Equal(t, []int{4, 3}, zoneIDs(got), "additive entries first, then the single area entry")
}

func TestSelectWinds_VolumeTieKeepsFirst(t *testing.T) {
	zones := []WindZone{boxZone(7, 2), boxZone(3, 2), globalZone(9, 5, false), globalZone(8, 5, false)}

	assert.Equal(t, []int{7}, zoneIDs(selectWinds(zones, mgl64.Vec3{}, &TeamWindData{})))

	globals := []WindZone{globalZone(9, 5, false), globalZone(8, 5, false)}
	assert.Equal(t, []int{9}, zoneIDs(selectWinds(globals, mgl64.Vec3{}, &TeamWindData{})))
}

func TestSelectWinds_RejectsUnusableZones(t *testing.T) {
	disabled := globalZone(1, 5, true)
	disabled.Enabled = false
	weak := globalZone(2, WindEpsilon, true)
	noDirection := globalZone(3, 5, true)
	noDirection.Direction = mgl64.Vec3{}
	far := sphereZone(4, 1)
	far.Position = mgl64.Vec3{10, 0, 0}
	outsideBox := boxZone(5, 2)
	outsideBox.Position = mgl64.Vec3{0, 1.5, 0}

	got := selectWinds([]WindZone{disabled, weak, noDirection, far, outsideBox}, mgl64.Vec3{}, &TeamWindData{})

	assert.Equal(t, 0, got.ZoneCount)
}

func TestSelectWinds_BoxTestUsesZoneRotation(t *testing.T) {
	// A 4x1x1 box turned 90 degrees about Y extends along Z.
	z := boxZone(1, 1)
	z.Size = mgl64.Vec3{4, 1, 1}
	z.Rotation = mgl64.QuatRotate(mgl64.DegToRad(90), mgl64.Vec3{0, 1, 0})

	inside := selectWinds([]WindZone{z}, mgl64.Vec3{0, 0, 1.8}, &TeamWindData{})
	outside := selectWinds([]WindZone{z}, mgl64.Vec3{1.8, 0, 0}, &TeamWindData{})

	assert.Equal(t, 1, inside.ZoneCount)
	assert.Equal(t, 0, outside.ZoneCount)
	testutil.AssertVec3Near(t, "rotated direction", mgl64.Vec3{0, 0, -1}, inside.Zones[0].Direction, 1e-12)
}

func TestSelectWinds_RadialZone(t *testing.T) {
	attenuation, err := NewCurve(CurveKey{Time: 0, Value: 1}, CurveKey{Time: 1, Value: 0})
	require.NoError(t, err)
	z := WindZone{
		ID:          1,
		Enabled:     true,
		Mode:        WindModeSphereRadial,
		Position:    mgl64.Vec3{1, 0, 0},
		Rotation:    mgl64.QuatIdent(),
		Radius:      4,
		Strength:    10,
		Attenuation: attenuation,
	}

	got := selectWinds([]WindZone{z}, mgl64.Vec3{1, 0, 1}, &TeamWindData{})

	require.Equal(t, 1, got.ZoneCount)
	testutil.AssertVec3Near(t, "radial direction", mgl64.Vec3{0, 0, 1}, got.Zones[0].Direction, 1e-12)
	assert.InDelta(t, 7.5, got.Zones[0].Strength, 1e-12)

	atEdge := selectWinds([]WindZone{z}, mgl64.Vec3{5, 0, 0}, &TeamWindData{})
	assert.Equal(t, 0, atEdge.ZoneCount, "attenuated to zero at the radius")
}

func TestSelectWinds_CarriesPhaseById(t *testing.T) {
	prev := TeamWindData{ZoneCount: 2}
	prev.Zones[0] = TeamWindInfo{WindID: 2, Time: 3.5, Strength: 5}
	prev.Zones[1] = TeamWindInfo{WindID: 9, Time: 7, Strength: 5}

	got := selectWinds([]WindZone{globalZone(1, 5, true), globalZone(2, 5, true)}, mgl64.Vec3{}, &prev)

	require.Equal(t, []int{1, 2}, zoneIDs(got))
	assert.Equal(t, 0.0, got.Zones[0].Time)
	assert.Equal(t, 3.5, got.Zones[1].Time)
}

func TestWindZone_Volume(t *testing.T) {
	tests := []struct {
		name string
		zone WindZone
		want float64
	}{
		{"global", globalZone(1, 5, false), math.MaxFloat64},
		{"box", WindZone{Mode: WindModeBoxDirection, Size: mgl64.Vec3{1, 2, 3}}, 6},
		{"sphere", sphereZone(1, 3), 36 * math.Pi},
		{"radial", WindZone{Mode: WindModeSphereRadial, Radius: 3}, 36 * math.Pi},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			testutil.AssertFloat64Equal(t, tc.name, tc.want, tc.zone.Volume(), 1e-12)
		})
	}
}

func TestAdvanceWindTime(t *testing.T) {
	info := TeamWindInfo{Strength: 5}
	advanceWindTime(&info, 2, 0.5)
	assert.InDelta(t, 0.5, info.Time, 1e-12, "0.5 s * frequency 2 * min(5*0.1, 2)")

	strong := TeamWindInfo{Strength: 100}
	advanceWindTime(&strong, 1, 1)
	assert.InDelta(t, WindMaxFrequency, strong.Time, 1e-12, "frequency is capped")

	wrapping := TeamWindInfo{Strength: 100, Time: WindTimeWrap - 1}
	advanceWindTime(&wrapping, 1, 1)
	assert.InDelta(t, WindTimeWrap+1-2*WindTimeWrap, wrapping.Time, 1e-9)
}

func TestStepWind_SelectsZonesAndMovingWind(t *testing.T) {
	p := DefaultParameters()
	p.Wind.MovingWind = 0.5
	w, h, _ := movingTeamWithWind(t, p, stubWinds{globalZone(1, 5, true), boxZone(2, 100)})

	runFrames(t, w, uniformInput(0.25), 1)

	winds, err := w.ActiveWinds(h)
	require.NoError(t, err)
	require.Len(t, winds, 3)
	assert.Equal(t, 1, winds[0].WindID)
	assert.Equal(t, 2, winds[1].WindID)
	assert.Equal(t, MovingWindID, winds[2].WindID)
	assert.InDelta(t, 8*0.5, winds[2].Strength, 1e-9, "moving speed 8 m/s times the coefficient")
	testutil.AssertVec3Near(t, "moving wind blows against the motion", mgl64.Vec3{-1, 0, 0}, winds[2].Direction, 1e-12)
	assert.Greater(t, winds[0].Time, 0.0, "phase advances")
}

func TestStepWind_DisabledInfluenceClearsWinds(t *testing.T) {
	p := DefaultParameters()
	p.Wind.Influence = 0
	w, h, _ := movingTeamWithWind(t, p, stubWinds{globalZone(1, 5, true)})

	runFrames(t, w, uniformInput(0.25), 1)

	winds, err := w.ActiveWinds(h)
	require.NoError(t, err)
	assert.Empty(t, winds)
}

func movingTeamWithWind(t *testing.T, p ClothParameters, winds stubWinds) (*World, TeamHandle, stubTransforms) {
	t.Helper()
	p.Inertia.WorldInertia = 1
	p.Inertia.MovingSpeedLimit = -1
	transforms := stubTransforms{}
	w := newTestWorld(t, Collaborators{Transforms: transforms, Winds: winds})
	cfg := testTeamConfig("windy")
	cfg.Parameters = p
	h, err := w.AddTeam(cfg)
	require.NoError(t, err)
	require.NoError(t, w.SetEnable(h, true))
	transforms[h.ID()] = IdentityTransform()
	runFrames(t, w, uniformInput(0.25), 1)
	transforms[h.ID()] = translated(2, 0, 0)
	return w, h, transforms
}
