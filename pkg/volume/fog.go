package volume

import (
	stdmath "math"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/noise"
)

// fogColor is the scattering albedo of the ground fog
var fogColor = mathpkg.NewVec3(0.78, 0.81, 0.85)

// lightningTint is the emission color of in-fog lightning flashes
var lightningTint = mathpkg.NewVec3(0.72, 0.82, 1.0)

// sampleFog evaluates the ground fog: an exponential altitude falloff shaped
// by a rotate-and-shear domain-warped turbulence field, plus a procedural
// lightning emission term keyed on space-time hashed cells.
func (f *Field) sampleFog(p mathpkg.Vec3, camDist float64, prim *core.Primitive) core.DensitySample {
	h := f.altitude(p)
	if h < 0 || h > f.Cfg.FogAltMax {
		return core.DensitySample{}
	}

	box := f.boxFalloff(p, prim)
	if box <= 0 {
		return core.DensitySample{}
	}

	falloff := stdmath.Exp(-h / f.Cfg.FogScaleHeight)
	ceiling := 1 - mathpkg.Smoothstep(0.75, 1, h/f.Cfg.FogAltMax)
	potential := falloff * ceiling * prim.Density * box
	if potential <= 0.004 {
		return core.DensitySample{}
	}

	// Flowing banks: warp the horizontal coordinate before sampling the
	// turbulence, fewer octaves far from the camera
	_, east, north := f.localFrame(prim)
	d := p.Subtract(prim.Center)
	uv := mathpkg.NewVec2(d.Dot(east), d.Dot(north)).Multiply(1.0 / 2200)
	warped := noise.RotShearWarp(uv, f.Time, 3)
	octaves := 1 + 2*mathpkg.Clamp01(1-camDist/f.Cfg.DetailFadeDist)
	turb := noise.FBM3(mathpkg.NewVec3(warped.X, h/280, warped.Y), octaves)
	shape := mathpkg.Remap(turb, 0.35, 0.85, 0, 1)
	if shape <= 0 {
		return core.DensitySample{}
	}

	density := mathpkg.Clamp01(potential * shape)

	sample := core.DensitySample{
		Density: density,
		Color:   fogColor,
	}
	if flash := f.lightningIntensity(p, prim); flash > 0 {
		sample.Emission = lightningTint.Multiply(flash * prim.Brightness * mathpkg.Clamp01(density*6))
	}
	return sample
}

// lightningIntensity returns the current flash brightness at a world point.
// Space is hashed into cells; each cell draws a random start time and
// duration every period, and active flashes flicker over their lifetime.
func (f *Field) lightningIntensity(p mathpkg.Vec3, prim *core.Primitive) float64 {
	cs := f.Cfg.LightningCellSize
	ix := int64(stdmath.Floor(p.X / cs))
	iy := int64(stdmath.Floor(p.Y / cs))
	iz := int64(stdmath.Floor(p.Z / cs))
	epoch := int64(stdmath.Floor(f.Time / f.Cfg.LightningPeriod))

	strike := noise.CellHash(ix, iy, iz, epoch, prim.Seed)
	if strike > 0.12 { // most cells stay dark in any given epoch
		return 0
	}

	start := noise.CellHash(ix, iy, iz, epoch, prim.Seed^0xA5A5) * (f.Cfg.LightningPeriod * 0.7)
	duration := 0.15 + 0.35*noise.CellHash(ix, iy, iz, epoch, prim.Seed^0x5A5A)
	local := f.Time - float64(epoch)*f.Cfg.LightningPeriod - start
	if local < 0 || local > duration {
		return 0
	}

	envelope := 1 - local/duration
	flicker := 0.55 + 0.45*noise.Hash11(stdmath.Floor(f.Time*24)+float64(prim.Seed%97))
	return envelope * envelope * flicker
}
