package volume

import (
	stdmath "math"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/noise"
)

// Polar column emission ramp, low altitude to high
var (
	polarLow  = mathpkg.NewVec3(0.15, 1.0, 0.45)
	polarHigh = mathpkg.NewVec3(0.55, 0.25, 1.0)
)

// samplePolar evaluates a polar light column: a cylindrical volume aligned to
// the planet rotation axis with intensity peaking in a fixed altitude band.
// The medium is optically thin; its contribution is mostly emission.
func (f *Field) samplePolar(p mathpkg.Vec3, prim *core.Primitive) core.DensitySample {
	h := f.altitude(p)
	lo, hi := f.Cfg.AltitudeBand(core.KindPolar)
	if h < lo || h > hi {
		return core.DensitySample{}
	}

	rel := p.Subtract(f.PlanetCenter)
	axial := rel.Dot(f.PlanetAxis)

	// Columns belong to one hemisphere; reject samples on the wrong side
	primAxial := prim.Center.Subtract(f.PlanetCenter).Dot(f.PlanetAxis)
	if axial*primAxial < 0 {
		return core.DensitySample{}
	}

	radial := rel.Subtract(f.PlanetAxis.Multiply(axial))
	axisDist := radial.Length()
	colRadius := max(prim.Extents.X, 1)
	if axisDist >= colRadius {
		return core.DensitySample{}
	}

	band := 1 - stdmath.Abs(h-f.Cfg.PolarAltCenter)/f.Cfg.PolarAltWidth
	band = mathpkg.Smoothstep(0, 0.6, band)
	if band <= 0 {
		return core.DensitySample{}
	}

	radFall := 1 - (axisDist/colRadius)*(axisDist/colRadius)

	// Slow curtains: shimmer drifts across the column over time
	shimmer := 0.6 + 0.4*noise.Hash21(
		stdmath.Floor(radial.X/900+f.Time*0.2)+float64(prim.Seed%513),
		stdmath.Floor(radial.Z/900),
	)

	strength := band * radFall * shimmer
	density := mathpkg.Clamp01(0.05 * strength * prim.Density)

	tAlt := mathpkg.Clamp01((h - lo) / (hi - lo))
	emission := polarLow.Lerp(polarHigh, tAlt).Multiply(strength * prim.Brightness)

	return core.DensitySample{
		Density:  density,
		Color:    polarLow.Lerp(polarHigh, tAlt).Clamp(0, 1),
		Emission: emission,
	}
}
