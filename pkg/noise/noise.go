// Package noise provides the procedural hash and value-noise primitives used
// by the fog turbulence field and by demo field synthesis.
package noise

import (
	stdmath "math"

	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// Hash11 maps a scalar to a pseudo-random value in [0,1)
func Hash11(n float64) float64 {
	x := stdmath.Sin(n) * 43758.5453
	return x - stdmath.Floor(x)
}

// Hash21 maps a 2D point to a pseudo-random value in [0,1)
func Hash21(x, y float64) float64 {
	return Hash11(x*127.1 + y*311.7)
}

// CellHash maps an integer grid cell plus a seed to a value in [0,1).
// Used for per-cell random draws (lightning start times, flicker phases).
func CellHash(ix, iy, iz, iw int64, seed uint32) float64 {
	h := uint64(seed) * 0x9e3779b97f4a7c15
	for _, v := range [4]int64{ix, iy, iz, iw} {
		h ^= uint64(v) + 0x9e3779b97f4a7c15 + (h << 6) + (h >> 2)
	}
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return float64(h>>11) / float64(1<<53)
}

// Value3 is 3D value noise over a lattice of Hash11 gradients, returning [0,1)
func Value3(x mathpkg.Vec3) float64 {
	p := mathpkg.NewVec3(stdmath.Floor(x.X), stdmath.Floor(x.Y), stdmath.Floor(x.Z))
	f := x.Subtract(p)
	// Smooth Hermite fade per axis
	fx := f.X * f.X * (3 - 2*f.X)
	fy := f.Y * f.Y * (3 - 2*f.Y)
	fz := f.Z * f.Z * (3 - 2*f.Z)
	n := p.Dot(mathpkg.NewVec3(1, 57, 113))

	return lerp(
		lerp(
			lerp(Hash11(n+0), Hash11(n+1), fx),
			lerp(Hash11(n+57), Hash11(n+58), fx), fy),
		lerp(
			lerp(Hash11(n+113), Hash11(n+114), fx),
			lerp(Hash11(n+170), Hash11(n+171), fx), fy), fz)
}

var fbmRotate = [3]mathpkg.Vec3{
	{X: 0.00, Y: 0.80, Z: 0.60},
	{X: -0.80, Y: 0.36, Z: -0.48},
	{X: -0.60, Y: -0.48, Z: 0.64},
}

func rotate(v mathpkg.Vec3) mathpkg.Vec3 {
	return mathpkg.NewVec3(fbmRotate[0].Dot(v), fbmRotate[1].Dot(v), fbmRotate[2].Dot(v))
}

// FBM3 is fractal brownian motion with a continuous octave count: the integer
// part selects full octaves and the fractional part fades in one more, so
// detail level can vary with distance without popping. Result is in [0,1).
func FBM3(x mathpkg.Vec3, octaves float64) float64 {
	if octaves <= 0 {
		return 0.5
	}
	p := rotate(x)
	sum := 0.0
	norm := 0.0
	amp := 0.5
	remaining := octaves
	for remaining > 0 {
		w := amp
		if remaining < 1 {
			w *= remaining
		}
		sum += w * Value3(p)
		norm += w
		p = p.Multiply(2.37)
		amp *= 0.5
		remaining--
	}
	if norm == 0 {
		return 0.5
	}
	return sum / norm
}

// RotShearWarp applies iterations of a rotate-and-shear domain warp to a
// horizontal coordinate, drifting with time. Sampling a noise field at the
// warped coordinate produces flowing rather than static banks.
func RotShearWarp(p mathpkg.Vec2, t float64, iterations int) mathpkg.Vec2 {
	for i := 0; i < iterations; i++ {
		angle := 0.61 + 0.173*float64(i) + t*0.021
		c, s := stdmath.Cos(angle), stdmath.Sin(angle)
		p = mathpkg.NewVec2(c*p.X-s*p.Y, s*p.X+c*p.Y)
		p.X += 0.35 * p.Y // shear
		p.Y += t * 0.013
		p = p.Multiply(1.09)
	}
	return p
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
