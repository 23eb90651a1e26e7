package math

import "math"

// Quaternion represents a rotation as (X, Y, Z, W)
type Quaternion struct {
	X, Y, Z, W float64
}

// QuaternionIdentity returns the identity rotation
func QuaternionIdentity() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromAxisAngle builds a quaternion rotating angle radians around axis
func QuaternionFromAxisAngle(axis Vec3, angle float64) Quaternion {
	a := axis.Normalize()
	s := math.Sin(angle * 0.5)
	return Quaternion{
		X: a.X * s,
		Y: a.Y * s,
		Z: a.Z * s,
		W: math.Cos(angle * 0.5),
	}
}

// Normalize returns a unit quaternion in the same orientation
func (q Quaternion) Normalize() Quaternion {
	l := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if l == 0 {
		return QuaternionIdentity()
	}
	return Quaternion{X: q.X / l, Y: q.Y / l, Z: q.Z / l, W: q.W / l}
}

// Conjugate returns the conjugate (inverse rotation for unit quaternions)
func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

// Rotate applies the rotation to a vector
func (q Quaternion) Rotate(v Vec3) Vec3 {
	// v' = v + 2*cross(q.xyz, cross(q.xyz, v) + w*v)
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	t := u.Cross(v).Add(v.Multiply(q.W))
	return v.Add(u.Cross(t).Multiply(2))
}

// Axis returns the rotation axis of the quaternion, or +Y for the identity
func (q Quaternion) Axis() Vec3 {
	u := Vec3{X: q.X, Y: q.Y, Z: q.Z}
	if u.LengthSquared() < 1e-18 {
		return Vec3{Y: 1}
	}
	return u.Normalize()
}
