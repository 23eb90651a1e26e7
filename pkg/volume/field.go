// Package volume evaluates the scalar density, albedo and emission of the
// nested volumetric media: layered clouds, ground fog and polar light columns.
package volume

import (
	stdmath "math"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// Config holds the shared tuning constants of the density field
type Config struct {
	CloudAltMin float64 // bottom of the lowest cloud layer, meters
	CloudAltMax float64 // top of the highest cloud layer, meters

	FogAltMax      float64 // fog density reaches zero above this altitude
	FogScaleHeight float64 // exponential falloff scale of fog density

	PolarAltCenter float64 // altitude of peak polar column intensity
	PolarAltWidth  float64 // half-width of the polar intensity band

	BaseScale    float64 // world meters -> base noise tile frequency
	DetailScale  float64 // world meters -> detail noise tile frequency
	WeatherScale float64 // world meters -> weather coverage tile frequency

	DetailMaxOctaves float64 // detail octaves at zero camera distance
	DetailFadeDist   float64 // distance at which detail octaves reach zero

	LightningCellSize float64 // spatial hash cell size for lightning flashes
	LightningPeriod   float64 // seconds per lightning epoch per cell
}

// DefaultConfig returns the tuning used by the demo scene
func DefaultConfig() Config {
	return Config{
		CloudAltMin:       1500,
		CloudAltMax:       9000,
		FogAltMax:         800,
		FogScaleHeight:    250,
		PolarAltCenter:    25000,
		PolarAltWidth:     15000,
		BaseScale:         1.0 / 6000,
		DetailScale:       1.0 / 900,
		WeatherScale:      1.0 / 48000,
		DetailMaxOctaves:  3.5,
		DetailFadeDist:    30000,
		LightningCellSize: 2500,
		LightningPeriod:   7,
	}
}

// AltitudeBand returns the altitude band a volume kind can occupy. Positions
// outside the band have zero density for that kind, which is what lets the
// scheduler treat the bands as coarse shell volumes.
func (c Config) AltitudeBand(kind core.VolumeKind) (lo, hi float64) {
	switch kind {
	case core.KindFog:
		return 0, c.FogAltMax
	case core.KindPolar:
		return c.PolarAltCenter - c.PolarAltWidth, c.PolarAltCenter + c.PolarAltWidth
	default:
		return c.CloudAltMin, c.CloudAltMax
	}
}

// Field samples the nested volumetric media. All fields are read-only during
// a frame, so one Field is shared by every worker without synchronization.
type Field struct {
	Base    core.Sampler3D // low-frequency cloud shape
	Detail  core.Sampler3D // high-frequency erosion
	Weather core.Sampler2D // horizontal coverage mask

	PlanetCenter mathpkg.Vec3
	PlanetRadius float64
	PlanetAxis   mathpkg.Vec3
	Time         float64

	Cfg Config
}

// NewField builds a density field for one frame from the view state and the
// opaque noise samplers
func NewField(base, detail core.Sampler3D, weather core.Sampler2D, view *core.ViewState, cfg Config) *Field {
	return &Field{
		Base:         base,
		Detail:       detail,
		Weather:      weather,
		PlanetCenter: view.PlanetCenter,
		PlanetRadius: view.PlanetRadius,
		PlanetAxis:   view.PlanetAxis(),
		Time:         view.Time,
		Cfg:          cfg,
	}
}

// Sample evaluates the density, color and emission contributed by one
// primitive at a world point. camDist scales down detail sampling cost with
// distance. Density is clamped to [0,1]; zero-density paths return before
// touching the noise samplers.
func (f *Field) Sample(p mathpkg.Vec3, camDist float64, prim *core.Primitive) core.DensitySample {
	switch prim.Form.Kind() {
	case core.KindFog:
		return f.sampleFog(p, camDist, prim)
	case core.KindPolar:
		return f.samplePolar(p, prim)
	default:
		return f.sampleCloud(p, camDist, prim)
	}
}

// altitude returns height above the planet surface
func (f *Field) altitude(p mathpkg.Vec3) float64 {
	return p.Subtract(f.PlanetCenter).Length() - f.PlanetRadius
}

// localFrame returns the yaw-rotated tangent frame at a primitive: local up
// (radial), and the yawed east/north tangents
func (f *Field) localFrame(prim *core.Primitive) (up, east, north mathpkg.Vec3) {
	up = prim.Center.Subtract(f.PlanetCenter).Normalize()
	if up.LengthSquared() < 1e-12 {
		up = mathpkg.NewVec3(0, 1, 0)
	}
	ref := mathpkg.NewVec3(0, 0, 1)
	if stdmath.Abs(up.Dot(ref)) > 0.98 {
		ref = mathpkg.NewVec3(1, 0, 0)
	}
	east = up.Cross(ref).Normalize()
	north = up.Cross(east)

	rot := mathpkg.QuaternionFromAxisAngle(up, prim.Yaw)
	return up, rot.Rotate(east), rot.Rotate(north)
}

// Frame returns the yaw-rotated local tangent frame of a primitive; the
// interval scheduler shares it for oriented-bounds intersection
func (f *Field) Frame(prim *core.Primitive) (up, east, north mathpkg.Vec3) {
	return f.localFrame(prim)
}

// boxFalloff maps a point into a primitive's oriented extents and returns a
// soft [0,1] membership weight, zero at and beyond the bounds
func (f *Field) boxFalloff(p mathpkg.Vec3, prim *core.Primitive) float64 {
	up, east, north := f.localFrame(prim)
	d := p.Subtract(prim.Center)
	lx := stdmath.Abs(d.Dot(east)) / max(prim.Extents.X, 1)
	ly := stdmath.Abs(d.Dot(up)) / max(prim.Extents.Y, 1)
	lz := stdmath.Abs(d.Dot(north)) / max(prim.Extents.Z, 1)
	if lx >= 1 || ly >= 1 || lz >= 1 {
		return 0
	}
	fx := 1 - mathpkg.Smoothstep(0.7, 1, lx)
	fy := 1 - mathpkg.Smoothstep(0.7, 1, ly)
	fz := 1 - mathpkg.Smoothstep(0.7, 1, lz)
	return fx * fy * fz
}

// sampleFBM layers a 3D sampler at increasing frequency. The fractional part
// of octaves fades in the last layer so detail level varies continuously
// with camera distance instead of switching between discrete levels.
func sampleFBM(s core.Sampler3D, p mathpkg.Vec3, octaves float64) float64 {
	if octaves <= 0 {
		return 0.5
	}
	sum := 0.0
	norm := 0.0
	amp := 0.5
	freq := 1.0
	for remaining := octaves; remaining > 0; remaining-- {
		w := amp
		if remaining < 1 {
			w *= remaining
		}
		sum += w * s.Sample(p.X*freq, p.Y*freq, p.Z*freq)
		norm += w
		freq *= 2.17
		amp *= 0.5
	}
	if norm == 0 {
		return 0.5
	}
	return sum / norm
}
