package math

import "math"

// Mat4 is a 4×4 matrix stored row-major
type Mat4 [16]float64

// Mat4Identity returns the identity matrix
func Mat4Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m × b
func (m Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r*4+c] = m[r*4+0]*b[0*4+c] + m[r*4+1]*b[1*4+c] +
				m[r*4+2]*b[2*4+c] + m[r*4+3]*b[3*4+c]
		}
	}
	return out
}

// MulPoint transforms a 3D point (w=1) by the matrix, ignoring the projective divide
func (m Mat4) MulPoint(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3],
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7],
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11],
	}
}

// MulDirection transforms a direction (w=0) by the matrix
func (m Mat4) MulDirection(v Vec3) Vec3 {
	return Vec3{
		X: m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		Y: m[4]*v.X + m[5]*v.Y + m[6]*v.Z,
		Z: m[8]*v.X + m[9]*v.Y + m[10]*v.Z,
	}
}

// Project transforms a point and performs the perspective divide.
// Returns normalized device coordinates and false if the point projects
// behind the viewer (w near or below zero).
func (m Mat4) Project(v Vec3) (Vec3, bool) {
	x := m[0]*v.X + m[1]*v.Y + m[2]*v.Z + m[3]
	y := m[4]*v.X + m[5]*v.Y + m[6]*v.Z + m[7]
	z := m[8]*v.X + m[9]*v.Y + m[10]*v.Z + m[11]
	w := m[12]*v.X + m[13]*v.Y + m[14]*v.Z + m[15]
	if w < 1e-9 {
		return Vec3{}, false
	}
	inv := 1.0 / w
	return Vec3{X: x * inv, Y: y * inv, Z: z * inv}, true
}

// Transpose returns the transposed matrix
func (m Mat4) Transpose() Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[c*4+r] = m[r*4+c]
		}
	}
	return out
}

// Inverse returns the inverse of the matrix and false if it is singular
func (m Mat4) Inverse() (Mat4, bool) {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if math.Abs(det) < 1e-14 {
		return Mat4{}, false
	}
	invDet := 1.0 / det

	return Mat4{
		(a11*b11 - a12*b10 + a13*b09) * invDet,
		(a02*b10 - a01*b11 - a03*b09) * invDet,
		(a31*b05 - a32*b04 + a33*b03) * invDet,
		(a22*b04 - a21*b05 - a23*b03) * invDet,
		(a12*b08 - a10*b11 - a13*b07) * invDet,
		(a00*b11 - a02*b08 + a03*b07) * invDet,
		(a32*b02 - a30*b05 - a33*b01) * invDet,
		(a20*b05 - a22*b02 + a23*b01) * invDet,
		(a10*b10 - a11*b08 + a13*b06) * invDet,
		(a01*b08 - a00*b10 - a03*b06) * invDet,
		(a30*b04 - a31*b02 + a33*b00) * invDet,
		(a21*b02 - a20*b04 - a23*b00) * invDet,
		(a11*b07 - a10*b09 - a12*b06) * invDet,
		(a00*b09 - a01*b07 + a02*b06) * invDet,
		(a31*b01 - a30*b03 - a32*b00) * invDet,
		(a20*b03 - a21*b01 + a22*b00) * invDet,
	}, true
}

// Perspective builds a right-handed perspective projection matrix.
// fovY is the vertical field of view in radians; depth maps to [0,1].
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovY*0.5)
	nf := 1.0 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, far * nf, far * near * nf,
		0, 0, -1, 0,
	}
}

// LookAt builds a right-handed view matrix for a camera at eye looking at target
func LookAt(eye, target, up Vec3) Mat4 {
	f := target.Subtract(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)
	return Mat4{
		s.X, s.Y, s.Z, -s.Dot(eye),
		u.X, u.Y, u.Z, -u.Dot(eye),
		-f.X, -f.Y, -f.Z, f.Dot(eye),
		0, 0, 0, 1,
	}
}
