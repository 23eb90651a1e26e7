package volume

import (
	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// cloudLayer is one altitude band of the layered cloud model. Constants per
// layer are presentation tuning; the band structure is the algorithm.
type cloudLayer struct {
	altMin, altMax float64
	coverageOffset mathpkg.Vec2 // decorrelates the weather mask between layers
	scale          float64      // horizontal noise frequency multiplier
	stretch        float64      // horizontal anisotropy along the yawed east axis
	densityMul     float64
	detailWeight   float64
}

var cloudLayers = [3]cloudLayer{
	{altMin: 1500, altMax: 3800, coverageOffset: mathpkg.Vec2{X: 0, Y: 0}, scale: 1.0, stretch: 1.0, densityMul: 1.0, detailWeight: 0.55},
	{altMin: 3600, altMax: 6200, coverageOffset: mathpkg.Vec2{X: 0.37, Y: 0.11}, scale: 1.45, stretch: 1.6, densityMul: 0.65, detailWeight: 0.4},
	{altMin: 6000, altMax: 9000, coverageOffset: mathpkg.Vec2{X: 0.71, Y: 0.53}, scale: 2.1, stretch: 2.8, densityMul: 0.35, detailWeight: 0.25},
}

// formTuning adjusts layer output per primitive form
func formTuning(form core.PrimitiveForm) (coverageBias, detailMul, densityMul float64) {
	switch form {
	case core.FormStratus:
		return 0.15, 0.5, 0.8
	case core.FormAnvil:
		return 0.05, 0.8, 1.3
	case core.FormWisp:
		return -0.15, 1.4, 0.45
	default: // cumulus
		return 0, 1, 1
	}
}

// sampleCloud evaluates the layered cloud model at a world point.
// The evaluation order is the performance contract: cheap bounds first,
// coverage before base shape, base shape before detail erosion, each gate
// returning zero without touching the more expensive samplers.
func (f *Field) sampleCloud(p mathpkg.Vec3, camDist float64, prim *core.Primitive) core.DensitySample {
	h := f.altitude(p)
	if h < f.Cfg.CloudAltMin || h > f.Cfg.CloudAltMax {
		return core.DensitySample{}
	}

	box := f.boxFalloff(p, prim)
	if box <= 0 {
		return core.DensitySample{}
	}

	layer := (*cloudLayer)(nil)
	for i := range cloudLayers {
		if h >= cloudLayers[i].altMin && h <= cloudLayers[i].altMax {
			layer = &cloudLayers[i]
			break
		}
	}
	if layer == nil {
		return core.DensitySample{}
	}

	// Vertical profile inside the layer: full in the middle, feathered at
	// the band edges.
	hNorm := (h - layer.altMin) / (layer.altMax - layer.altMin)
	profile := mathpkg.Smoothstep(0, 0.18, hNorm) * (1 - mathpkg.Smoothstep(0.72, 1, hNorm))
	if profile <= 0 {
		return core.DensitySample{}
	}

	_, east, north := f.localFrame(prim)
	d := p.Subtract(prim.Center)
	seedJitter := float64(prim.Seed%1024) / 1024

	// Weather coverage mask, decorrelated per layer and per primitive
	coverageBias, detailMul, densityMul := formTuning(prim.Form)
	wu := d.Dot(east)*f.Cfg.WeatherScale + layer.coverageOffset.X + seedJitter
	wv := d.Dot(north)*f.Cfg.WeatherScale + layer.coverageOffset.Y + seedJitter*1.7
	coverage := mathpkg.Clamp01(f.Weather.Sample(wu, wv) + coverageBias)
	coverage *= prim.Density
	if coverage <= 0.01 {
		return core.DensitySample{}
	}

	// Base shape: low-frequency noise remapped by the coverage mask.
	// Horizontal stretch squashes the sampling coordinate along east.
	bu := d.Dot(east) * f.Cfg.BaseScale * layer.scale / layer.stretch
	bv := h * f.Cfg.BaseScale * layer.scale * 2
	bw := d.Dot(north) * f.Cfg.BaseScale * layer.scale
	base := f.Base.Sample(bu, bv, bw)
	signal := mathpkg.Remap(base, 1-coverage, 1, 0, 1) * profile
	if signal <= 0 {
		return core.DensitySample{}
	}

	// Detail erosion: strongest at the vertical edges of the cloud, weakest
	// at its center, which turns a blobby silhouette billowy. Octave count
	// decays continuously with camera distance.
	edge := 1 - 4*hNorm*(1-hNorm)
	erosionWeight := mathpkg.Lerp(0.35, 1, edge) * layer.detailWeight * prim.Detail * detailMul
	octaves := f.Cfg.DetailMaxOctaves * mathpkg.Clamp01(1-camDist/f.Cfg.DetailFadeDist)
	if erosionWeight > 0 && octaves > 0 {
		dp := mathpkg.NewVec3(
			d.Dot(east)*f.Cfg.DetailScale,
			h*f.Cfg.DetailScale,
			d.Dot(north)*f.Cfg.DetailScale,
		)
		detail := sampleFBM(f.Detail, dp, octaves)
		signal = mathpkg.Remap(signal, detail*erosionWeight, 1, 0, 1)
		if signal <= 0 {
			return core.DensitySample{}
		}
	}

	density := mathpkg.Clamp01(signal * layer.densityMul * densityMul * box)

	// Slightly darker base gives clouds their weight
	tint := mathpkg.Lerp(0.82, 1.0, mathpkg.Clamp01(hNorm+0.3)) * mathpkg.Lerp(0.85, 1.05, prim.Brightness)
	return core.DensitySample{
		Density: density,
		Color:   mathpkg.NewVec3(tint, tint, tint).Clamp(0, 1),
	}
}
