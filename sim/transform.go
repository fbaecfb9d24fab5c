package sim

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a world-space pose with non-uniform scale.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// IdentityTransform returns the origin pose with unit scale.
func IdentityTransform() Transform {
	return Transform{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// TransformPoint maps a point from local to world space.
func (t Transform) TransformPoint(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(normalizeQuat(t.Rotation).Rotate(mulElem(t.Scale, local)))
}

// InverseTransformPoint maps a world-space point into local space. Zero scale
// components map to zero.
func (t Transform) InverseTransformPoint(world mgl64.Vec3) mgl64.Vec3 {
	v := normalizeQuat(t.Rotation).Inverse().Rotate(world.Sub(t.Position))
	return divElem(v, t.Scale)
}

func mulElem(a, b mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

func divElem(a, b mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for i := range out {
		if b[i] != 0 {
			out[i] = a[i] / b[i]
		}
	}
	return out
}

func lerpVec(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

// safeNormalize returns the unit vector of v, or the zero vector when v is degenerate.
func safeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < 1e-12 || math.IsNaN(l) || math.IsInf(l, 0) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// normalizeQuat treats the zero quaternion as identity.
func normalizeQuat(q mgl64.Quat) mgl64.Quat {
	if q.W == 0 && q.V == (mgl64.Vec3{}) {
		return mgl64.QuatIdent()
	}
	return q.Normalize()
}

// slerpShortest interpolates along the shorter arc between a and b.
func slerpShortest(a, b mgl64.Quat, t float64) mgl64.Quat {
	a, b = normalizeQuat(a), normalizeQuat(b)
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, t).Normalize()
}

// toAxisAngle returns the rotation angle in radians within [0, pi] and its unit
// axis. The identity rotation yields a zero axis.
func toAxisAngle(q mgl64.Quat) (float64, mgl64.Vec3) {
	q = normalizeQuat(q)
	if q.W < 0 {
		q = q.Scale(-1)
	}
	w := mgl64.Clamp(q.W, -1, 1)
	s := math.Sqrt(1 - w*w)
	if s < 1e-9 {
		return 0, mgl64.Vec3{}
	}
	return 2 * math.Acos(w), q.V.Mul(1 / s)
}

func saturate(v float64) float64 {
	return mgl64.Clamp(v, 0, 1)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func isFiniteVec(v mgl64.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}
