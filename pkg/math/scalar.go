package math

import "math"

// Clamp restricts x to the range [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Clamp01 restricts x to the range [0, 1]
func Clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}

// Lerp returns the linear interpolation between a and b at parameter t
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Smoothstep returns the smooth Hermite interpolation of x between edge0 and edge1.
// Result is 0 below edge0, 1 above edge1, with zero derivative at both edges.
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// Remap maps x from the range [inLo, inHi] to [outLo, outHi], clamping to the output range
func Remap(x, inLo, inHi, outLo, outHi float64) float64 {
	if inHi == inLo {
		return outLo
	}
	t := Clamp01((x - inLo) / (inHi - inLo))
	return outLo + (outHi-outLo)*t
}

// Fract returns the fractional part of x
func Fract(x float64) float64 {
	return x - math.Floor(x)
}
