package volume

import (
	"testing"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

const testPlanetRadius = 6.371e6

// countingSampler3D counts accesses so tests can assert the sampling gates
// never touch noise they do not need
type countingSampler3D struct {
	calls int
	value float64
}

func (c *countingSampler3D) Sample(x, y, z float64) float64 {
	c.calls++
	return c.value
}

type countingSampler2D struct {
	calls int
	value float64
}

func (c *countingSampler2D) Sample(x, y float64) float64 {
	c.calls++
	return c.value
}

type testField struct {
	field   *Field
	base    *countingSampler3D
	detail  *countingSampler3D
	weather *countingSampler2D
}

func newTestField(baseVal, detailVal, weatherVal float64) *testField {
	tf := &testField{
		base:    &countingSampler3D{value: baseVal},
		detail:  &countingSampler3D{value: detailVal},
		weather: &countingSampler2D{value: weatherVal},
	}
	tf.field = &Field{
		Base:         tf.base,
		Detail:       tf.detail,
		Weather:      tf.weather,
		PlanetCenter: mathpkg.Vec3{},
		PlanetRadius: testPlanetRadius,
		PlanetAxis:   mathpkg.NewVec3(0, 1, 0),
		Cfg:          DefaultConfig(),
	}
	return tf
}

// atAltitude returns a world point directly above the north surface point
func atAltitude(h float64) mathpkg.Vec3 {
	return mathpkg.NewVec3(0, testPlanetRadius+h, 0)
}

func cumulusAt(h float64) core.Primitive {
	return core.Primitive{
		Center:     atAltitude(h),
		Extents:    mathpkg.NewVec3(2500, 1500, 2500),
		Form:       core.FormCumulus,
		Density:    1,
		Detail:     0.5,
		Brightness: 1,
		Seed:       11,
	}
}

func TestSampleCloud_AltitudeGateSkipsAllSamplers(t *testing.T) {
	tf := newTestField(1, 0, 1)
	prim := cumulusAt(2500)

	tests := []struct {
		name string
		p    mathpkg.Vec3
	}{
		{"below cloud floor", atAltitude(100)},
		{"above cloud ceiling", atAltitude(20000)},
		{"outside bounds horizontally", atAltitude(2500).Add(mathpkg.NewVec3(50000, 0, 0))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf.base.calls, tf.detail.calls, tf.weather.calls = 0, 0, 0
			s := tf.field.Sample(tt.p, 0, &prim)
			if s.Density != 0 {
				t.Errorf("expected zero density, got %v", s.Density)
			}
			if tf.base.calls+tf.detail.calls+tf.weather.calls != 0 {
				t.Errorf("gated sample touched samplers: base=%d detail=%d weather=%d",
					tf.base.calls, tf.detail.calls, tf.weather.calls)
			}
		})
	}
}

func TestSampleCloud_ZeroCoverageSkipsBaseShape(t *testing.T) {
	tf := newTestField(1, 0, 0) // weather mask empty
	prim := cumulusAt(2500)

	s := tf.field.Sample(atAltitude(2500), 0, &prim)
	if s.Density != 0 {
		t.Errorf("expected zero density under empty weather, got %v", s.Density)
	}
	if tf.weather.calls == 0 {
		t.Errorf("coverage gate should have consulted the weather mask")
	}
	if tf.base.calls != 0 || tf.detail.calls != 0 {
		t.Errorf("empty coverage still sampled shape noise: base=%d detail=%d",
			tf.base.calls, tf.detail.calls)
	}
}

func TestSampleCloud_FullCoverageProducesDensity(t *testing.T) {
	tf := newTestField(1, 0, 1)
	prim := cumulusAt(2500)

	s := tf.field.Sample(atAltitude(2500), 0, &prim)
	if s.Density <= 0 || s.Density > 1 {
		t.Fatalf("expected density in (0,1], got %v", s.Density)
	}
	if s.Color.X <= 0 {
		t.Errorf("cloud sample missing albedo: %v", s.Color)
	}
	if tf.base.calls == 0 {
		t.Errorf("dense sample never consulted base shape")
	}
}

func TestSampleCloud_DetailFadesWithCameraDistance(t *testing.T) {
	tf := newTestField(1, 0.2, 1)
	prim := cumulusAt(2500)
	p := atAltitude(2400) // off the layer center so erosion weight is nonzero

	tf.field.Sample(p, 0, &prim)
	nearCalls := tf.detail.calls
	if nearCalls == 0 {
		t.Fatalf("near sample should erode with detail noise")
	}

	tf.detail.calls = 0
	tf.field.Sample(p, tf.field.Cfg.DetailFadeDist*2, &prim)
	if tf.detail.calls != 0 {
		t.Errorf("distant sample still paid for detail noise (%d calls)", tf.detail.calls)
	}
}

func TestSampleCloud_ErosionReducesDensity(t *testing.T) {
	// A saturated base signal remaps to 1 with or without erosion, so use a
	// partial base value to make the erosion observable.
	solid := newTestField(0.7, 0, 1)
	eroded := newTestField(0.7, 0.9, 1)
	prim := cumulusAt(2500)
	p := atAltitude(2200)

	ds := solid.field.Sample(p, 0, &prim)
	de := eroded.field.Sample(p, 0, &prim)
	if de.Density >= ds.Density {
		t.Errorf("high detail noise should erode density: solid %v, eroded %v",
			ds.Density, de.Density)
	}
}

func TestSampleFog_Gates(t *testing.T) {
	tf := newTestField(1, 0, 1)
	prim := core.Primitive{
		Center:     atAltitude(150),
		Extents:    mathpkg.NewVec3(4000, 300, 4000),
		Form:       core.FormFogBank,
		Density:    1,
		Detail:     0.5,
		Brightness: 1,
		Seed:       3,
	}

	if s := tf.field.Sample(atAltitude(5000), 0, &prim); s.Density != 0 {
		t.Errorf("fog above its ceiling should vanish, got %v", s.Density)
	}

	s := tf.field.Sample(atAltitude(60), 0, &prim)
	if s.Density < 0 || s.Density > 1 {
		t.Errorf("fog density out of range: %v", s.Density)
	}
	if s.Density > 0 && s.Color != mathpkg.NewVec3(0.78, 0.81, 0.85) {
		t.Errorf("fog albedo changed: %v", s.Color)
	}
	// Fog runs on its own turbulence, never the cloud samplers
	if tf.base.calls != 0 || tf.weather.calls != 0 {
		t.Errorf("fog touched cloud noise: base=%d weather=%d", tf.base.calls, tf.weather.calls)
	}
}

func TestSamplePolar_HemisphereAndBand(t *testing.T) {
	tf := newTestField(1, 0, 1)
	prim := core.Primitive{
		Center:     mathpkg.NewVec3(0, testPlanetRadius+25000, 0),
		Extents:    mathpkg.NewVec3(120000, 15000, 120000),
		Form:       core.FormPolarColumn,
		Density:    1,
		Brightness: 1,
		Seed:       5,
	}

	// On-axis, band center, correct hemisphere: bright emission
	s := tf.field.Sample(atAltitude(25000), 0, &prim)
	if s.Emission.Length() == 0 {
		t.Errorf("column core should emit")
	}
	if s.Density <= 0 || s.Density > 1 {
		t.Errorf("polar density out of range: %v", s.Density)
	}

	// Opposite hemisphere is rejected even inside the altitude band
	south := mathpkg.NewVec3(0, -(testPlanetRadius + 25000), 0)
	if s := tf.field.Sample(south, 0, &prim); s.Density != 0 || s.Emission.Length() != 0 {
		t.Errorf("wrong-hemisphere sample should be empty, got %+v", s)
	}

	// Outside the altitude band
	if s := tf.field.Sample(atAltitude(500), 0, &prim); s.Density != 0 {
		t.Errorf("below-band sample should be empty, got %v", s.Density)
	}

	// Off-axis beyond the column radius
	far := atAltitude(25000).Add(mathpkg.NewVec3(2e5, 0, 0))
	if s := tf.field.Sample(far, 0, &prim); s.Density != 0 {
		t.Errorf("outside-radius sample should be empty, got %v", s.Density)
	}
}

func TestLightning_DeterministicPerTime(t *testing.T) {
	tf := newTestField(1, 0, 1)
	prim := core.Primitive{
		Center:     atAltitude(150),
		Extents:    mathpkg.NewVec3(4000, 300, 4000),
		Form:       core.FormFogBank,
		Density:    1,
		Brightness: 1,
		Seed:       3,
	}
	tf.field.Time = 2.5

	p := atAltitude(60)
	a := tf.field.Sample(p, 0, &prim)
	b := tf.field.Sample(p, 0, &prim)
	if a.Emission != b.Emission || a.Density != b.Density {
		t.Errorf("fog sampling not deterministic at fixed time")
	}
}
