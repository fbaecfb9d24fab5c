package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// RunSubstep advances every eligible team that owes at least index+1 sub-steps this
// frame. Sub-step s completes for all teams before RunSubstep returns.
func (w *World) RunSubstep(index int) error {
	if !w.frame.active {
		return ErrNoFrame
	}
	if index < 0 || index >= w.frame.maxUpdateCount {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrSubstepRange, index, w.frame.maxUpdateCount)
	}
	dt := w.frame.input.SubstepDuration
	w.parallelFor(len(w.frame.eligible), func(i int) {
		id := w.frame.eligible[i]
		td := w.teams.At(int(id))
		if index >= td.UpdateCount {
			td.Flags.Set(FlagStepRunning, false)
			return
		}
		td.Flags.Set(FlagStepRunning, true)
		w.stepInertia(id, dt)
		w.stepWind(id, dt)
	})
	return nil
}

// stepInertia interpolates the team center for the sub-step and splits its motion
// into the part the cloth feels and the part shifted into inertia.
func (w *World) stepInertia(id TeamID, dt float64) {
	td := w.teams.At(int(id))
	cd := w.centers.At(int(id))
	p := w.params.At(int(id))

	td.OldUpdateTime = td.NowUpdateTime
	td.NowUpdateTime += dt

	td.FrameInterpolation = 1
	if denom := td.Time - td.FrameOldTime; denom > 0 {
		td.FrameInterpolation = saturate((td.NowUpdateTime - td.FrameOldTime) / denom)
	}
	t := td.FrameInterpolation

	cd.OldWorldPosition = cd.NowWorldPosition
	cd.OldWorldRotation = cd.NowWorldRotation
	cd.NowWorldPosition = lerpVec(cd.OldFrameWorldPosition, cd.FrameWorldPosition, t)
	cd.NowWorldRotation = slerpShortest(cd.OldFrameWorldRotation, cd.FrameWorldRotation, t)
	cd.NowWorldScale = lerpVec(cd.OldFrameWorldScale, cd.FrameWorldScale, t)

	step := cd.NowWorldPosition.Sub(cd.OldWorldPosition)
	stepRot := normalizeQuat(cd.NowWorldRotation.Mul(normalizeQuat(cd.OldWorldRotation).Inverse()))
	angle, _ := toAxisAngle(stepRot)
	cd.StepVector = step
	cd.StepRotation = stepRot
	cd.StepMoveSpeed = step.Len() / dt
	rotSpeed := mgl64.RadToDeg(angle) / dt

	moveShift, rotShift := shiftRatios(p.Inertia, cd.StepMoveSpeed, rotSpeed)
	if teleported(p.Inertia, step.Len(), mgl64.RadToDeg(angle)) {
		td.Flags.Set(FlagTeleported, true)
		moveShift, rotShift = 1, 1
		if p.Inertia.TeleportMode == TeleportReset {
			// Snap to the frame pose; nothing of the jump reaches the cloth and the
			// blend-in restarts.
			td.Flags.Set(FlagReset, true)
			cd.OldFrameWorldPosition = cd.FrameWorldPosition
			cd.OldFrameWorldRotation = cd.FrameWorldRotation
			cd.OldFrameWorldScale = cd.FrameWorldScale
			cd.NowWorldPosition = cd.FrameWorldPosition
			cd.NowWorldRotation = cd.FrameWorldRotation
			cd.NowWorldScale = cd.FrameWorldScale
			step = cd.NowWorldPosition.Sub(cd.OldWorldPosition)
			stepRot = normalizeQuat(cd.NowWorldRotation.Mul(normalizeQuat(cd.OldWorldRotation).Inverse()))
			cd.StepVector = step
			cd.StepRotation = stepRot
			cd.StepMoveSpeed = step.Len() / dt
			if p.StabilizationTime > stabilizationEpsilon {
				td.VelocityWeight = 0
			}
		}
	}

	cd.InertiaVector = step.Mul(moveShift)
	cd.InertiaRotation = slerpShortest(mgl64.QuatIdent(), stepRot, rotShift)

	residual := step.Sub(cd.InertiaVector)
	cd.MovingDirection = safeNormalize(residual)
	cd.MovingSpeed = residual.Len() / dt
	residualRot := normalizeQuat(stepRot.Mul(cd.InertiaRotation.Inverse()))
	residualAngle, axis := toAxisAngle(residualRot)
	cd.RotationAxis = axis
	cd.AngularVelocity = residualAngle / dt

	td.ScaleRatio = 1
	if initLen := td.InitScale.Len(); initLen > 1e-9 {
		td.ScaleRatio = cd.NowWorldScale.Len() / initLen
	}

	if g := safeNormalize(p.Gravity.Direction); g != (mgl64.Vec3{}) {
		td.GravityDot = cd.NowWorldRotation.Rotate(cd.InitLocalGravityDirection).Dot(g)
		td.GravityRatio = 1 - p.Gravity.Falloff*saturate(td.GravityDot)
	} else {
		td.GravityDot = 0
		td.GravityRatio = 1
	}

	if p.StabilizationTime > stabilizationEpsilon {
		td.VelocityWeight = saturate(td.VelocityWeight + dt/p.StabilizationTime)
	} else {
		td.VelocityWeight = 1
	}
	td.BlendWeight = td.VelocityWeight * p.BlendWeight
}

// shiftRatios returns the fraction of linear and angular motion moved into inertia.
// World inertia shifts a flat share; speed above the limits is shifted on top.
func shiftRatios(ip InertiaParams, moveSpeed, rotSpeedDeg float64) (float64, float64) {
	flat := 1 - saturate(ip.WorldInertia)
	moveShift := 1 - (1-overLimit(moveSpeed, ip.MovingSpeedLimit))*(1-flat)
	rotShift := 1 - (1-overLimit(rotSpeedDeg, ip.RotationSpeedLimit))*(1-flat)
	return moveShift, rotShift
}

// overLimit is the share of speed above limit. Negative limits disable the cap.
func overLimit(speed, limit float64) float64 {
	if limit < 0 || speed <= limit || speed <= 0 {
		return 0
	}
	return (speed - limit) / speed
}

func teleported(ip InertiaParams, distance, angleDeg float64) bool {
	if ip.TeleportMode == TeleportNone {
		return false
	}
	return distance > ip.TeleportDistance || angleDeg > ip.TeleportRotation
}
