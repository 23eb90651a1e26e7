package scene

import (
	stdmath "math"
	"math/rand"

	"github.com/cloudmarch/sky/pkg/atmosphere"
	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/noise"
	"github.com/cloudmarch/sky/pkg/volume"
)

// DemoPlanetRadius is an Earth-like planet for the built-in scene, meters
const DemoPlanetRadius = 6.371e6

const (
	baseFieldSize   = 48
	detailFieldSize = 32
	weatherSize     = 192
)

// NewDemoScene builds the built-in showcase scene: a cumulus ring around the
// viewpoint, a stratus deck, one anvil, drifting wisps, fog banks near the
// ground, and a polar light column on each end of the planet axis.
// Deterministic for a given seed.
func NewDemoScene(seed int64) (*Scene, error) {
	random := rand.New(rand.NewSource(seed))

	s := &Scene{
		Base:         bakeField3D(baseFieldSize, 4.0, 4, seed),
		Detail:       bakeField3D(detailFieldSize, 8.0, 3, seed+1),
		Weather:      bakeWeather(weatherSize, seed+2),
		Atmos:        atmosphere.NewModel(DemoPlanetRadius),
		VolumeCfg:    volume.DefaultConfig(),
		PlanetRadius: DemoPlanetRadius,
	}

	// World frame: planet center at origin, viewpoint region near +Y pole of
	// the surface. Primitives are placed in the tangent plane around it.
	surface := mathpkg.NewVec3(0, DemoPlanetRadius, 0)

	place := func(east, north, alt float64) mathpkg.Vec3 {
		return surface.Add(mathpkg.NewVec3(east, alt, north))
	}

	// Cumulus ring
	for i := 0; i < 10; i++ {
		angle := float64(i) / 10 * 2 * stdmath.Pi
		dist := 9000 + random.Float64()*7000
		s.Primitives = append(s.Primitives, core.Primitive{
			Center:     place(dist*stdmath.Cos(angle), dist*stdmath.Sin(angle), 2200+random.Float64()*900),
			Extents:    mathpkg.NewVec3(1800+random.Float64()*1400, 900+random.Float64()*600, 1800+random.Float64()*1400),
			Yaw:        random.Float64() * 2 * stdmath.Pi,
			Form:       core.FormCumulus,
			Density:    0.6 + random.Float64()*0.4,
			Detail:     0.4 + random.Float64()*0.4,
			Brightness: 1,
			Seed:       random.Uint32(),
		})
	}

	// Stratus deck overhead
	s.Primitives = append(s.Primitives, core.Primitive{
		Center:     place(0, 4000, 5600),
		Extents:    mathpkg.NewVec3(16000, 500, 12000),
		Yaw:        0.4,
		Form:       core.FormStratus,
		Density:    0.45,
		Detail:     0.3,
		Brightness: 1,
		Seed:       random.Uint32(),
	})

	// One distant anvil
	s.Primitives = append(s.Primitives, core.Primitive{
		Center:     place(26000, -14000, 7200),
		Extents:    mathpkg.NewVec3(6000, 2600, 5200),
		Yaw:        1.1,
		Form:       core.FormAnvil,
		Density:    0.85,
		Detail:     0.6,
		Brightness: 1,
		Seed:       random.Uint32(),
	})

	// High wisps
	for i := 0; i < 4; i++ {
		s.Primitives = append(s.Primitives, core.Primitive{
			Center:     place(-18000+float64(i)*9000, 11000+random.Float64()*5000, 8200),
			Extents:    mathpkg.NewVec3(5200, 260, 1600),
			Yaw:        random.Float64() * stdmath.Pi,
			Form:       core.FormWisp,
			Density:    0.25 + random.Float64()*0.2,
			Detail:     0.7,
			Brightness: 1,
			Seed:       random.Uint32(),
		})
	}

	// Ground fog banks
	for i := 0; i < 3; i++ {
		s.Primitives = append(s.Primitives, core.Primitive{
			Center:     place(-6000+float64(i)*5500, -3500-float64(i)*2200, 180),
			Extents:    mathpkg.NewVec3(4200, 320, 3600),
			Yaw:        random.Float64() * stdmath.Pi,
			Form:       core.FormFogBank,
			Density:    0.5 + random.Float64()*0.3,
			Detail:     0.5,
			Brightness: 0.2 + random.Float64()*0.5,
			Seed:       random.Uint32(),
		})
	}

	// Polar columns sit on the planet axis; only extents and brightness matter
	for _, sign := range []float64{1, -1} {
		s.Primitives = append(s.Primitives, core.Primitive{
			Center:     mathpkg.NewVec3(0, sign*(DemoPlanetRadius+25000), 0),
			Extents:    mathpkg.NewVec3(220000, 15000, 220000),
			Form:       core.FormPolarColumn,
			Density:    0.8,
			Detail:     0.5,
			Brightness: 0.9,
			Seed:       random.Uint32(),
		})
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// bakeField3D fills a cubic grid with fractal value noise, normalized to [0,1]
func bakeField3D(size int, freq float64, octaves int, seed int64) *core.Field3D {
	offset := noise.Hash11(float64(seed)*0.173) * 100
	data := make([]float64, size*size*size)
	for z := 0; z < size; z++ {
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				p := mathpkg.NewVec3(
					float64(x)/float64(size)*freq+offset,
					float64(y)/float64(size)*freq+offset,
					float64(z)/float64(size)*freq+offset,
				)
				data[(z*size+y)*size+x] = noise.FBM3(p, float64(octaves))
			}
		}
	}
	f, _ := core.NewField3D(size, size, size, data)
	return f
}

// bakeWeather fills the horizontal coverage mask. Two noise octaves give
// broad coverage regions with ragged boundaries.
func bakeWeather(size int, seed int64) *core.Field2D {
	offset := noise.Hash11(float64(seed)*0.389) * 100
	data := make([]float64, size*size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			p := mathpkg.NewVec3(
				float64(x)/float64(size)*3+offset,
				offset,
				float64(y)/float64(size)*3+offset,
			)
			broad := noise.FBM3(p, 2)
			ragged := noise.FBM3(p.Multiply(4.7), 2)
			data[y*size+x] = mathpkg.Clamp01(broad*0.75 + ragged*0.35)
		}
	}
	f, _ := core.NewField2D(size, size, data)
	return f
}
