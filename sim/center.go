package sim

import "github.com/go-gl/mathgl/mgl64"

// CenterData tracks the motion of a team's reference center, stored in the center
// arena at index TeamID.
type CenterData struct {
	// Reference pose read at the start of the frame.
	FrameWorldPosition mgl64.Vec3
	FrameWorldRotation mgl64.Quat
	FrameWorldScale    mgl64.Vec3

	// Reference pose at the end of the previous running frame.
	OldFrameWorldPosition mgl64.Vec3
	OldFrameWorldRotation mgl64.Quat
	OldFrameWorldScale    mgl64.Vec3

	// Pose interpolated for the current and previous sub-step.
	NowWorldPosition mgl64.Vec3
	NowWorldRotation mgl64.Quat
	NowWorldScale    mgl64.Vec3
	OldWorldPosition mgl64.Vec3
	OldWorldRotation mgl64.Quat

	StepVector      mgl64.Vec3
	StepRotation    mgl64.Quat
	InertiaVector   mgl64.Vec3
	InertiaRotation mgl64.Quat
	MovingDirection mgl64.Vec3
	MovingSpeed     float64
	StepMoveSpeed   float64
	RotationAxis    mgl64.Vec3
	AngularVelocity float64 // rad/s

	InitLocalCenter           mgl64.Vec3
	InitWorldRotation         mgl64.Quat
	InitLocalGravityDirection mgl64.Vec3
}

// resetPose collapses the frame history onto the current frame snapshot.
func (c *CenterData) resetPose() {
	c.OldFrameWorldPosition = c.FrameWorldPosition
	c.OldFrameWorldRotation = c.FrameWorldRotation
	c.OldFrameWorldScale = c.FrameWorldScale
	c.NowWorldPosition = c.FrameWorldPosition
	c.NowWorldRotation = c.FrameWorldRotation
	c.NowWorldScale = c.FrameWorldScale
	c.OldWorldPosition = c.FrameWorldPosition
	c.OldWorldRotation = c.FrameWorldRotation

	c.StepVector = mgl64.Vec3{}
	c.StepRotation = mgl64.QuatIdent()
	c.InertiaVector = mgl64.Vec3{}
	c.InertiaRotation = mgl64.QuatIdent()
	c.MovingDirection = mgl64.Vec3{}
	c.MovingSpeed = 0
	c.StepMoveSpeed = 0
	c.RotationAxis = mgl64.Vec3{}
	c.AngularVelocity = 0
}

// setFrame writes the frame snapshot from a reference transform.
func (c *CenterData) setFrame(ref Transform) {
	c.FrameWorldPosition = ref.TransformPoint(c.InitLocalCenter)
	c.FrameWorldRotation = normalizeQuat(ref.Rotation)
	c.FrameWorldScale = ref.Scale
}

// updateGravityReference stores the gravity direction in the team's rest orientation.
func (c *CenterData) updateGravityReference(direction mgl64.Vec3) {
	c.InitLocalGravityDirection = normalizeQuat(c.InitWorldRotation).Inverse().Rotate(safeNormalize(direction))
}
