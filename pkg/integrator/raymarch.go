package integrator

import (
	stdmath "math"

	"github.com/cloudmarch/sky/pkg/atmosphere"
	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/noise"
	"github.com/cloudmarch/sky/pkg/volume"
)

// Config tunes the raymarch loop
type Config struct {
	BaseStep     float64 // minimum step inside active density, meters
	EmptyStep    float64 // step across density-free stretches of an interval
	MaxSteps     int     // hard safety bound per ray
	Sigma        float64 // extinction coefficient per unit density, 1/m
	LightSteps   int     // fixed light-march sample count toward the sun
	LightStepLen float64 // light-march step length, meters
	LightCone    float64 // cone jitter radius per light step, meters
	EarlyOutT    float64 // terminate once transmittance falls below this
	DistRef      float64 // distance at which the quadratic step scale doubles
	CloudPhaseG  float64 // Henyey-Greenstein asymmetry for cloud scattering
	HazeSigma    float64 // extinction of the dim haze across skipped spans
}

// DefaultConfig returns the tuning used by the frame pipeline
func DefaultConfig() Config {
	return Config{
		BaseStep:     60,
		EmptyStep:    260,
		MaxSteps:     160,
		Sigma:        0.02,
		LightSteps:   5,
		LightStepLen: 240,
		LightCone:    90,
		EarlyOutT:    0.01,
		DistRef:      12000,
		CloudPhaseG:  0.3,
		HazeSigma:    8e-6,
	}
}

// MarchResult is the per-ray output of the integrator
type MarchResult struct {
	Color mathpkg.Vec3 // clamped [0,1], includes the sky composite
	Alpha float64      // volumetric coverage, 1 - final transmittance
	Depth float64      // density-weighted depth normalized to [0,1] by tMax
	Stats MarchStats
}

// MarchStats counts the work one ray performed
type MarchStats struct {
	Steps      int
	LightSteps int
	Skips      int
	EarlyOut   bool
}

// Integrator marches view rays for one frame. It is cheap to construct and
// each worker owns one; all referenced state is frame-immutable.
type Integrator struct {
	cfg   Config
	view  *core.ViewState
	field *volume.Field
	atmos *atmosphere.Model
	prims []core.Primitive

	sunColor mathpkg.Vec3
	ambient  mathpkg.Vec3
}

// New creates an integrator for one frame, precomputing the sun and ambient
// terms at the camera position
func New(view *core.ViewState, field *volume.Field, atmos *atmosphere.Model, prims []core.Primitive, cfg Config) *Integrator {
	rel := view.CameraPos.Subtract(view.PlanetCenter)
	return &Integrator{
		cfg:      cfg,
		view:     view,
		field:    field,
		atmos:    atmos,
		prims:    prims,
		sunColor: atmos.SunColor(rel, view.SunDir),
		ambient:  atmos.Ambient(rel, view.SunDir),
	}
}

// March integrates one view ray out to tMax. dither in [0,1) phases the
// first step so banding degrades into noise instead of rings.
func (in *Integrator) March(ray mathpkg.Ray, tMax, dither float64) MarchResult {
	if ray.Direction.LengthSquared() < 1e-18 || tMax <= 0 {
		return MarchResult{Depth: 1}
	}
	ray.Direction = ray.Direction.Normalize()

	// Clamp the march at the planet surface; the ground is the known solid
	// depth the adaptive step must not overshoot.
	sceneDepth := stdmath.Inf(1)
	if g0, _, hit := raySphere(ray, in.view.PlanetCenter, in.view.PlanetRadius); hit && g0 > 0 {
		sceneDepth = g0
		if g0 < tMax {
			tMax = g0
		}
	}

	sched := NewScheduler(ray, tMax, in.prims, in.field)

	up := in.view.Up(ray.Origin)
	vertical := stdmath.Abs(ray.Direction.Dot(up))
	vertFactor := mathpkg.Lerp(1.0, 0.55, vertical)

	var (
		color       mathpkg.Vec3
		trans       = 1.0
		depthAccum  float64
		depthWeight float64
		stats       MarchStats
	)

	t := dither * in.cfg.BaseStep
	for t < tMax && stats.Steps < in.cfg.MaxSteps {
		stats.Steps++
		sched.Advance(t)
		active := sched.Active()

		if len(active) == 0 {
			next := sched.NextEvent(t)
			if haze := sched.HazeOverlap(t, next); haze > 0 {
				hazeT := stdmath.Exp(-haze * in.cfg.HazeSigma)
				color = color.Add(in.ambient.Multiply(trans * (1 - hazeT)))
				trans *= hazeT
			}
			stats.Skips++
			t = next + 1e-3
			continue
		}

		distScale := 1 + (t/in.cfg.DistRef)*(t/in.cfg.DistRef)
		step := in.cfg.BaseStep * distScale * vertFactor
		if remaining := sceneDepth - t; remaining < 4*step {
			step = max(in.cfg.BaseStep*0.5, remaining*0.25)
		}

		p := ray.At(t)
		var albedo, emission mathpkg.Vec3
		density := 0.0
		for _, iv := range active {
			if t < iv.Enter || t > iv.Exit {
				continue
			}
			s := in.field.Sample(p, t, &in.prims[iv.Prim])
			if s.Density <= 0 {
				continue
			}
			// Overlapping kinds blend by relative density
			density += s.Density
			albedo = albedo.Add(s.Color.Multiply(s.Density))
			emission = emission.Add(s.Emission.Multiply(s.Density))
		}

		if density > 1e-4 {
			inv := 1.0 / density
			albedo = albedo.Multiply(inv)
			emission = emission.Multiply(inv)
			density = min(density, 1)

			shadow := in.lightMarch(p, t, active, &stats)
			phase := atmosphere.PhaseHG(ray.Direction.Dot(in.view.SunDir), in.cfg.CloudPhaseG)
			direct := in.sunColor.Multiply(shadow * phase * 4 * stdmath.Pi)
			amb := in.ambient.Multiply(0.35 + 0.65*shadow)
			sampleColor := albedo.MultiplyVec(direct.Add(amb)).Add(emission)

			stepT := stdmath.Exp(-density * in.cfg.Sigma * step)
			color = color.Add(sampleColor.Multiply(trans * (1 - stepT)))
			depthAccum += t * density * trans
			depthWeight += density * trans
			trans *= stepT

			if trans < in.cfg.EarlyOutT {
				stats.EarlyOut = true
				break
			}
			t += step
		} else {
			t += in.cfg.EmptyStep * distScale * vertFactor
		}
	}

	rel := ray.Origin.Subtract(in.view.PlanetCenter)
	sky := in.atmos.Sky(rel, ray.Direction, in.view.SunDir)
	color = color.Add(sky.Multiply(trans))

	depth := tMax
	if depthWeight > 1e-9 {
		depth = depthAccum / depthWeight
	}

	// Tonemapping before reconstruction keeps the history blend in display
	// space, where neighborhood clipping behaves perceptually.
	return MarchResult{
		Color: atmosphere.Tonemap(color),
		Alpha: mathpkg.Clamp01(1 - trans),
		Depth: mathpkg.Clamp01(depth / tMax),
		Stats: stats,
	}
}

// lightMarch estimates self-shadowing by accumulating optical depth toward
// the sun over a fixed handful of steps. Samples use a far camera distance
// so the density field skips detail octaves, and each step jitters across a
// small cone to soften the shadow edge.
func (in *Integrator) lightMarch(p mathpkg.Vec3, t float64, active []Interval, stats *MarchStats) float64 {
	sun := in.view.SunDir
	side := sun.Cross(mathpkg.NewVec3(0.34, 0.81, 0.47)).Normalize()
	if side.LengthSquared() < 1e-12 {
		side = sun.Cross(mathpkg.NewVec3(1, 0, 0)).Normalize()
	}
	fwd := sun.Cross(side)

	var optical float64
	for ls := 0; ls < in.cfg.LightSteps; ls++ {
		stats.LightSteps++
		dist := (float64(ls) + 0.5) * in.cfg.LightStepLen
		j1 := noise.Hash21(p.X*0.013+float64(ls)*17.1, p.Z*0.017) - 0.5
		j2 := noise.Hash21(p.Z*0.011+float64(ls)*9.7, p.Y*0.019) - 0.5
		cone := in.cfg.LightCone * float64(ls+1) / float64(in.cfg.LightSteps)
		lp := p.Add(sun.Multiply(dist)).
			Add(side.Multiply(j1 * cone)).
			Add(fwd.Multiply(j2 * cone))

		for _, iv := range active {
			s := in.field.Sample(lp, t+in.field.Cfg.DetailFadeDist, &in.prims[iv.Prim])
			optical += s.Density * in.cfg.LightStepLen
		}
	}
	return stdmath.Exp(-optical * in.cfg.Sigma)
}
