package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// stepWind selects the winds acting on the team center for this sub-step and
// advances their phases.
func (w *World) stepWind(id TeamID, dt float64) {
	p := w.params.At(int(id))
	cd := w.centers.At(int(id))
	wd := w.winds.At(int(id))

	if !p.Wind.IsEnabled() {
		*wd = TeamWindData{}
		return
	}

	next := selectWinds(w.frame.windZones, cd.NowWorldPosition, wd)
	next.MovingWind = TeamWindInfo{WindID: MovingWindID, Time: wd.MovingWind.Time}
	if p.Wind.MovingWind > 0 {
		next.MovingWind.Strength = cd.MovingSpeed * p.Wind.MovingWind
		next.MovingWind.Direction = cd.MovingDirection.Mul(-1)
	}

	for i := 0; i < next.ZoneCount; i++ {
		advanceWindTime(&next.Zones[i], p.Wind.Frequency, dt)
	}
	if next.MovingWind.IsValid() {
		advanceWindTime(&next.MovingWind, p.Wind.Frequency, dt)
	} else {
		next.MovingWind = TeamWindInfo{WindID: MovingWindID}
	}
	*wd = next
}

// selectWinds picks up to MaxAdditiveWinds additive zones in provider order and the
// single area zone with the smallest volume containing pos. The first zone seen
// wins a volume tie. Phases carry over from prev by wind id.
func selectWinds(zones []WindZone, pos mgl64.Vec3, prev *TeamWindData) TeamWindData {
	var out TeamWindData
	var area TeamWindInfo
	hasArea := false
	minVolume := math.Inf(1)

	for i := range zones {
		z := &zones[i]
		if !z.Enabled || !z.IsValid() {
			continue
		}
		if z.Additive {
			if out.ZoneCount >= MaxAdditiveWinds {
				continue
			}
		} else if z.Volume() >= minVolume {
			continue
		}

		info, ok := z.influence(pos)
		if !ok {
			continue
		}
		if j := prev.IndexOf(z.ID); j >= 0 {
			info.Time = prev.Zones[j].Time
		}
		if z.Additive {
			out.Zones[out.ZoneCount] = info
			out.ZoneCount++
		} else {
			area = info
			hasArea = true
			minVolume = z.Volume()
		}
	}
	if hasArea {
		out.Zones[out.ZoneCount] = area
		out.ZoneCount++
	}
	return out
}

func advanceWindTime(info *TeamWindInfo, frequency, dt float64) {
	f := min(info.Strength*WindFrequencyPerStrength, WindMaxFrequency)
	info.Time += dt * frequency * f
	if info.Time > WindTimeWrap {
		info.Time -= 2 * WindTimeWrap
	}
}
