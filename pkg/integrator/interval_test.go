package integrator

import (
	stdmath "math"
	"testing"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/volume"
)

const testPlanetRadius = 6.371e6

type constSampler3D struct{ value float64 }

func (c constSampler3D) Sample(x, y, z float64) float64 { return c.value }

type constSampler2D struct{ value float64 }

func (c constSampler2D) Sample(x, y float64) float64 { return c.value }

func newTestVolume() *volume.Field {
	return &volume.Field{
		Base:         constSampler3D{value: 1},
		Detail:       constSampler3D{value: 0},
		Weather:      constSampler2D{value: 1},
		PlanetCenter: mathpkg.Vec3{},
		PlanetRadius: testPlanetRadius,
		PlanetAxis:   mathpkg.NewVec3(0, 1, 0),
		Cfg:          volume.DefaultConfig(),
	}
}

// horizontalRay starts at the given altitude over the north pole heading +Z
func horizontalRay(alt float64) mathpkg.Ray {
	return mathpkg.NewRay(
		mathpkg.NewVec3(0, testPlanetRadius+alt, 0),
		mathpkg.NewVec3(0, 0, 1),
	)
}

func cumulusAtZ(z, alt float64) core.Primitive {
	return core.Primitive{
		Center:  mathpkg.NewVec3(0, testPlanetRadius+alt, z),
		Extents: mathpkg.NewVec3(2000, 1000, 2000),
		Form:    core.FormCumulus,
		Density: 1,
	}
}

func TestScheduler_EmptyScene(t *testing.T) {
	field := newTestVolume()
	sched := NewScheduler(horizontalRay(2500), 20000, nil, field)

	sched.Advance(0)
	if len(sched.Active()) != 0 {
		t.Errorf("empty scene has active intervals")
	}
	if next := sched.NextEvent(0); next != 20000 {
		t.Errorf("expected next event at tMax, got %v", next)
	}
	// No primitives means no shells, so skipped spans carry no haze
	if haze := sched.HazeOverlap(0, 20000); haze != 0 {
		t.Errorf("expected zero haze, got %v", haze)
	}
}

func TestScheduler_SingleBoxWindow(t *testing.T) {
	field := newTestVolume()
	prims := []core.Primitive{cumulusAtZ(8000, 2500)}
	sched := NewScheduler(horizontalRay(2500), 20000, prims, field)

	sched.Advance(0)
	if len(sched.Active()) != 0 {
		t.Fatalf("interval admitted before its entry")
	}

	// The nearest pending entry bounds the empty-space skip
	next := sched.NextEvent(0)
	if stdmath.Abs(next-6000) > 50 {
		t.Errorf("expected entry near 6000, got %v", next)
	}

	sched.Advance(7000)
	active := sched.Active()
	if len(active) != 1 || active[0].Prim != 0 {
		t.Fatalf("expected one active interval, got %v", active)
	}
	if active[0].Enter > 7000 || active[0].Exit < 7000 {
		t.Errorf("active interval %v does not contain t=7000", active[0])
	}
	if stdmath.Abs(active[0].Exit-10000) > 50 {
		t.Errorf("expected exit near 10000, got %v", active[0].Exit)
	}

	sched.Advance(12000)
	if len(sched.Active()) != 0 {
		t.Errorf("interval survived past its exit")
	}
}

func TestScheduler_DisjointIntervalsSkip(t *testing.T) {
	field := newTestVolume()
	prims := []core.Primitive{
		cumulusAtZ(8000, 2500),
		cumulusAtZ(24000, 2500),
	}
	sched := NewScheduler(horizontalRay(2500), 40000, prims, field)

	// Between the boxes nothing is active and the next event is the second entry
	sched.Advance(12000)
	if len(sched.Active()) != 0 {
		t.Fatalf("expected gap between boxes, got %v", sched.Active())
	}
	next := sched.NextEvent(12000)
	if stdmath.Abs(next-22000) > 100 {
		t.Errorf("expected next entry near 22000, got %v", next)
	}

	// The gap lies fully inside the cloud shell, so it still carries haze
	haze := sched.HazeOverlap(12000, next)
	if stdmath.Abs(haze-(next-12000)) > 1 {
		t.Errorf("expected full-span haze, got %v over %v", haze, next-12000)
	}
}

func TestScheduler_CapacityBound(t *testing.T) {
	field := newTestVolume()
	var prims []core.Primitive
	for i := 0; i < IntervalCapacity+4; i++ {
		p := cumulusAtZ(8000, 2500)
		p.Extents = mathpkg.NewVec3(2000+float64(i)*10, 1000, 5000)
		prims = append(prims, p)
	}
	sched := NewScheduler(horizontalRay(2500), 40000, prims, field)

	sched.Advance(8000)
	if n := len(sched.Active()); n != IntervalCapacity {
		t.Errorf("expected window filled to capacity %d, got %d", IntervalCapacity, n)
	}

	// Past the shared exit everything is evicted, including the overflow
	sched.Advance(20000)
	if n := len(sched.Active()); n != 0 {
		t.Errorf("expected empty window after exits, got %d", n)
	}
}

func TestScheduler_PolarCylinderSpan(t *testing.T) {
	field := newTestVolume()
	prims := []core.Primitive{{
		Center:  mathpkg.NewVec3(0, testPlanetRadius+25000, 0),
		Extents: mathpkg.NewVec3(120000, 15000, 120000),
		Form:    core.FormPolarColumn,
		Density: 1,
	}}
	// Straight up the axis from the surface
	ray := mathpkg.NewRay(
		mathpkg.NewVec3(0, testPlanetRadius+400, 0),
		mathpkg.NewVec3(0, 1, 0),
	)
	sched := NewScheduler(ray, 100000, prims, field)

	lo, hi := field.Cfg.AltitudeBand(core.KindPolar)
	sched.Advance((lo + hi) / 2)
	active := sched.Active()
	if len(active) != 1 {
		t.Fatalf("expected the column interval, got %v", active)
	}
	if stdmath.Abs(active[0].Enter-(lo-400)) > 1 {
		t.Errorf("expected entry near %v, got %v", lo-400, active[0].Enter)
	}
	if stdmath.Abs(active[0].Exit-(hi-400)) > 1 {
		t.Errorf("expected exit near %v, got %v", hi-400, active[0].Exit)
	}
}

func TestScheduler_BehindRayDropped(t *testing.T) {
	field := newTestVolume()
	prims := []core.Primitive{cumulusAtZ(-8000, 2500)}
	sched := NewScheduler(horizontalRay(2500), 20000, prims, field)

	for _, probe := range []float64{0, 5000, 15000} {
		sched.Advance(probe)
		if len(sched.Active()) != 0 {
			t.Errorf("box behind the ray became active at t=%v", probe)
		}
	}
}
