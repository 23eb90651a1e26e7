// Package atmosphere computes sky radiance and sun transmittance through a
// spherical-shell planetary atmosphere with Rayleigh, Mie and ozone terms.
package atmosphere

import (
	stdmath "math"

	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// Model holds the physical parameters of the atmosphere. Positions passed to
// its methods are relative to the planet center.
type Model struct {
	PlanetRadius     float64
	AtmosphereHeight float64

	RayleighScale float64      // Rayleigh density scale height, meters
	MieScale      float64      // Mie density scale height, meters
	BetaRayleigh  mathpkg.Vec3 // per-channel extinction at sea level
	BetaMie       float64      // grey Mie extinction at sea level
	BetaOzone     mathpkg.Vec3 // ozone absorption at peak density
	OzoneCenter   float64      // altitude of peak ozone density, meters
	OzoneWidth    float64      // half-width of the ozone band, meters
	MieG          float64      // Henyey-Greenstein asymmetry

	SunIntensity float64
	ViewSamples  int
	SunSamples   int
}

// NewModel returns an earth-like atmosphere around a planet of the given radius
func NewModel(planetRadius float64) *Model {
	return &Model{
		PlanetRadius:     planetRadius,
		AtmosphereHeight: 100000,
		RayleighScale:    8500,
		MieScale:         1200,
		BetaRayleigh:     mathpkg.NewVec3(5.8e-6, 13.5e-6, 33.1e-6),
		BetaMie:          2.1e-5,
		BetaOzone:        mathpkg.NewVec3(0.65e-6, 1.881e-6, 0.085e-6),
		OzoneCenter:      25000,
		OzoneWidth:       15000,
		MieG:             0.76,
		SunIntensity:     22,
		ViewSamples:      24,
		SunSamples:       8,
	}
}

// PhaseRayleigh is the Rayleigh phase function for scattering angle cosine
func PhaseRayleigh(cosTheta float64) float64 {
	return 3.0 / (16.0 * stdmath.Pi) * (1 + cosTheta*cosTheta)
}

// PhaseHG is the Henyey-Greenstein phase function with asymmetry g
func PhaseHG(cosTheta, g float64) float64 {
	g2 := g * g
	denom := 1 + g2 - 2*g*cosTheta
	if denom < 1e-9 {
		denom = 1e-9
	}
	return (1 - g2) / (4 * stdmath.Pi * denom * stdmath.Sqrt(denom))
}

// shellIntersect solves the ray/sphere quadratic for a sphere of the given
// radius centered at the origin. Returns false when the ray misses.
func shellIntersect(origin, dir mathpkg.Vec3, radius float64) (float64, float64, bool) {
	b := origin.Dot(dir)
	c := origin.Dot(origin) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	sq := stdmath.Sqrt(disc)
	return -b - sq, -b + sq, true
}

// densities returns the relative Rayleigh, Mie and ozone densities at altitude h
func (m *Model) densities(h float64) (float64, float64, float64) {
	if h < 0 {
		h = 0
	}
	dR := stdmath.Exp(-h / m.RayleighScale)
	dM := stdmath.Exp(-h / m.MieScale)
	dO := stdmath.Max(0, 1-stdmath.Abs(h-m.OzoneCenter)/m.OzoneWidth) * dR
	return dR, dM, dO
}

// opticalDepthToSun integrates densities from p toward the sun until shell exit
func (m *Model) opticalDepthToSun(p, sun mathpkg.Vec3) (float64, float64, float64) {
	_, t1, ok := shellIntersect(p, sun, m.PlanetRadius+m.AtmosphereHeight)
	if !ok || t1 <= 0 {
		return 0, 0, 0
	}
	dt := t1 / float64(m.SunSamples)
	var tauR, tauM, tauO float64
	for i := 0; i < m.SunSamples; i++ {
		sp := p.Add(sun.Multiply((float64(i) + 0.5) * dt))
		h := sp.Length() - m.PlanetRadius
		dR, dM, dO := m.densities(h)
		tauR += dR * dt
		tauM += dM * dt
		tauO += dO * dt
	}
	return tauR, tauM, tauO
}

func (m *Model) extinction(tauR, tauM, tauO float64) mathpkg.Vec3 {
	return mathpkg.NewVec3(
		stdmath.Exp(-(m.BetaRayleigh.X*tauR + m.BetaMie*tauM + m.BetaOzone.X*tauO)),
		stdmath.Exp(-(m.BetaRayleigh.Y*tauR + m.BetaMie*tauM + m.BetaOzone.Y*tauO)),
		stdmath.Exp(-(m.BetaRayleigh.Z*tauR + m.BetaMie*tauM + m.BetaOzone.Z*tauO)),
	)
}

// sunVisibility is the smoothed planet-body occlusion factor for the sun as
// seen from p. A hard test bands badly at the terminator, so the horizon edge
// is widened into a smoothstep.
func (m *Model) sunVisibility(p, sun mathpkg.Vec3) float64 {
	r := p.Length()
	if r <= m.PlanetRadius {
		r = m.PlanetRadius + 1
	}
	up := p.Multiply(1 / r)
	ratio := m.PlanetRadius / r
	cosHorizon := -stdmath.Sqrt(stdmath.Max(0, 1-ratio*ratio))
	return mathpkg.Smoothstep(cosHorizon-0.02, cosHorizon+0.06, up.Dot(sun))
}

// Sky returns linear sky radiance for a view ray from pos (relative to
// the planet center) in direction dir, with the sun in direction sun.
// Rays that miss the atmosphere shell return zero radiance.
func (m *Model) Sky(pos, dir, sun mathpkg.Vec3) mathpkg.Vec3 {
	dir = dir.Normalize()
	shellR := m.PlanetRadius + m.AtmosphereHeight
	t0, t1, ok := shellIntersect(pos, dir, shellR)
	if !ok || t1 <= 0 {
		return mathpkg.Vec3{}
	}
	if t0 < 0 {
		t0 = 0
	}
	// Stop at the ground when the ray hits the planet body
	if g0, _, hit := shellIntersect(pos, dir, m.PlanetRadius); hit && g0 > t0 {
		t1 = g0
	}
	if t1 <= t0 {
		return mathpkg.Vec3{}
	}

	cosTheta := dir.Dot(sun)
	phR := PhaseRayleigh(cosTheta)
	phM := PhaseHG(cosTheta, m.MieG)

	n := m.ViewSamples
	span := t1 - t0
	var inscatter mathpkg.Vec3
	var viewR, viewM, viewO float64
	prevEdge := t0
	for i := 0; i < n; i++ {
		// Quadratic sample distribution: denser near the viewer, where the
		// medium contributes most to the final transmittance.
		u := (float64(i) + 1) / float64(n)
		edge := t0 + span*u*u
		dt := edge - prevEdge
		tMid := (edge + prevEdge) * 0.5
		prevEdge = edge

		sp := pos.Add(dir.Multiply(tMid))
		h := sp.Length() - m.PlanetRadius
		dR, dM, dO := m.densities(h)

		viewR += dR * dt
		viewM += dM * dt
		viewO += dO * dt
		viewT := m.extinction(viewR, viewM, viewO)

		sunR, sunM, sunO := m.opticalDepthToSun(sp, sun)
		sunT := m.extinction(sunR, sunM, sunO)
		vis := m.sunVisibility(sp, sun)

		scatter := m.BetaRayleigh.Multiply(dR * phR).
			Add(mathpkg.NewVec3(m.BetaMie, m.BetaMie, m.BetaMie).Multiply(dM * phM))
		inscatter = inscatter.Add(scatter.MultiplyVec(viewT).MultiplyVec(sunT).Multiply(vis * dt))
	}

	return inscatter.Multiply(m.SunIntensity)
}

// SunColor returns the linear post-atmosphere sun disc color seen from pos
func (m *Model) SunColor(pos, sun mathpkg.Vec3) mathpkg.Vec3 {
	tauR, tauM, tauO := m.opticalDepthToSun(pos, sun)
	vis := m.sunVisibility(pos, sun)
	return m.extinction(tauR, tauM, tauO).Multiply(vis * m.SunIntensity * 0.25)
}

// Ambient approximates the hemispherical sky irradiance used as the in-cloud
// ambient term, by averaging a small fan of upward sky directions.
func (m *Model) Ambient(pos, sun mathpkg.Vec3) mathpkg.Vec3 {
	up := pos.Normalize()
	side := up.Cross(mathpkg.NewVec3(0.31, 0.52, 0.8)).Normalize()
	if side.LengthSquared() < 1e-12 {
		side = up.Cross(mathpkg.NewVec3(1, 0, 0)).Normalize()
	}
	fwd := up.Cross(side)

	dirs := [4]mathpkg.Vec3{
		up,
		up.Multiply(0.6).Add(side.Multiply(0.8)).Normalize(),
		up.Multiply(0.6).Add(side.Multiply(-0.8)).Normalize(),
		up.Multiply(0.6).Add(fwd.Multiply(0.8)).Normalize(),
	}
	var sum mathpkg.Vec3
	for _, d := range dirs {
		sum = sum.Add(m.Sky(pos, d, sun))
	}
	return sum.Multiply(0.25)
}

// Tonemap applies extended Reinhard tonemapping and display gamma
func Tonemap(c mathpkg.Vec3) mathpkg.Vec3 {
	const white = 4.0
	mapChannel := func(x float64) float64 {
		return x * (1 + x/(white*white)) / (1 + x)
	}
	mapped := mathpkg.NewVec3(mapChannel(c.X), mapChannel(c.Y), mapChannel(c.Z))
	return mapped.Clamp(0, 1).GammaCorrect(2.0)
}
