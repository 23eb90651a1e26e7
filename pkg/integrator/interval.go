// Package integrator walks view rays through the volumetric media: the
// interval scheduler windows the primitives a ray can currently touch, and
// the raymarcher integrates transmittance and in-scattered light over them.
package integrator

import (
	stdmath "math"
	"sort"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
	"github.com/cloudmarch/sky/pkg/volume"
)

// IntervalCapacity bounds the number of simultaneously tracked primitive
// intervals per ray. The bound is a correctness-relevant performance
// contract: per-step work stays O(1) regardless of scene size.
const IntervalCapacity = 6

// Interval is a ray's overlap with one primitive's bounds.
// A sentinel "no intersection" is represented by Enter > Exit.
type Interval struct {
	Prim  int // index into the frame's primitive list
	Enter float64
	Exit  float64
}

// Shell is a ray's overlap with the coarse altitude band of a volume kind
type Shell struct {
	Kind  core.VolumeKind
	Enter float64
	Exit  float64
}

// Scheduler maintains the bounded window of active intervals as a ray
// advances, and exposes event boundaries for empty-space skipping.
type Scheduler struct {
	pending []Interval // all intersections, sorted by Enter then Prim
	next    int        // first not-yet-admitted pending interval
	active  [IntervalCapacity]Interval
	n       int
	tMax    float64
	shells  []Shell
}

// NewScheduler computes entry/exit intervals for every primitive along the
// ray, drops empty ones, and prepares the coarse kind shells. Degenerate
// ray directions yield an empty schedule.
func NewScheduler(ray mathpkg.Ray, tMax float64, prims []core.Primitive, field *volume.Field) *Scheduler {
	s := &Scheduler{tMax: tMax}
	if ray.Direction.LengthSquared() < 1e-18 || tMax <= 0 {
		return s
	}

	var kinds [3]bool
	for i := range prims {
		prim := &prims[i]
		kinds[prim.Form.Kind()] = true

		enter, exit, ok := primitiveSpan(ray, prim, field)
		if !ok {
			continue
		}
		if enter < 0 {
			enter = 0
		}
		if exit > tMax {
			exit = tMax
		}
		// Dropped, never queued, when the clamped window collapses
		if exit <= enter {
			continue
		}
		s.pending = append(s.pending, Interval{Prim: i, Enter: enter, Exit: exit})
	}

	sort.Slice(s.pending, func(a, b int) bool {
		if s.pending[a].Enter != s.pending[b].Enter {
			return s.pending[a].Enter < s.pending[b].Enter
		}
		return s.pending[a].Prim < s.pending[b].Prim
	})

	for kind := core.KindCloud; kind <= core.KindPolar; kind++ {
		if !kinds[kind] {
			continue
		}
		lo, hi := field.Cfg.AltitudeBand(kind)
		for _, sh := range shellSpans(ray, field.PlanetCenter, field.PlanetRadius+lo, field.PlanetRadius+hi, tMax) {
			sh.Kind = kind
			s.shells = append(s.shells, sh)
		}
	}

	return s
}

// Advance moves the window to parameter t: expired intervals are evicted
// with a compaction pass, then pending intervals whose entry has been
// reached are admitted while capacity remains.
func (s *Scheduler) Advance(t float64) {
	keep := 0
	for i := 0; i < s.n; i++ {
		if s.active[i].Exit >= t {
			s.active[keep] = s.active[i]
			keep++
		}
	}
	s.n = keep

	for s.next < len(s.pending) && s.n < IntervalCapacity && s.pending[s.next].Enter <= t {
		if s.pending[s.next].Exit >= t {
			s.active[s.n] = s.pending[s.next]
			s.n++
		}
		s.next++
	}
}

// Active returns the current interval window. The slice aliases internal
// storage and is only valid until the next Advance call.
func (s *Scheduler) Active() []Interval {
	return s.active[:s.n]
}

// NextEvent returns the nearest boundary after t: an active exit, a pending
// entry, or a shell boundary. Returns tMax when nothing lies ahead.
func (s *Scheduler) NextEvent(t float64) float64 {
	next := s.tMax
	for i := 0; i < s.n; i++ {
		if s.active[i].Exit > t && s.active[i].Exit < next {
			next = s.active[i].Exit
		}
	}
	if s.next < len(s.pending) {
		if e := s.pending[s.next].Enter; e > t && e < next {
			next = e
		}
	}
	for _, sh := range s.shells {
		if sh.Enter > t && sh.Enter < next {
			next = sh.Enter
		}
		if sh.Exit > t && sh.Exit < next {
			next = sh.Exit
		}
	}
	return next
}

// HazeOverlap returns the total length of [t0, t1] that lies inside cloud or
// fog shells, so skipped spans can still receive the dim atmospheric haze.
func (s *Scheduler) HazeOverlap(t0, t1 float64) float64 {
	if t1 <= t0 {
		return 0
	}
	total := 0.0
	for _, sh := range s.shells {
		if sh.Kind == core.KindPolar {
			continue
		}
		lo := max(t0, sh.Enter)
		hi := min(t1, sh.Exit)
		if hi > lo {
			total += hi - lo
		}
	}
	return total
}

// primitiveSpan solves the ray/bounds intersection for one primitive
func primitiveSpan(ray mathpkg.Ray, prim *core.Primitive, field *volume.Field) (float64, float64, bool) {
	if prim.Form.Kind() == core.KindPolar {
		return cylinderSpan(ray, prim, field)
	}
	return orientedBoxSpan(ray, prim, field)
}

// orientedBoxSpan is a slab test in the primitive's yaw-rotated local frame
func orientedBoxSpan(ray mathpkg.Ray, prim *core.Primitive, field *volume.Field) (float64, float64, bool) {
	up, east, north := field.Frame(prim)
	ro := ray.Origin.Subtract(prim.Center)
	o := mathpkg.NewVec3(ro.Dot(east), ro.Dot(up), ro.Dot(north))
	d := mathpkg.NewVec3(ray.Direction.Dot(east), ray.Direction.Dot(up), ray.Direction.Dot(north))
	ext := mathpkg.NewVec3(max(prim.Extents.X, 1), max(prim.Extents.Y, 1), max(prim.Extents.Z, 1))

	tEnter := stdmath.Inf(-1)
	tExit := stdmath.Inf(1)
	for _, axis := range [3][3]float64{{o.X, d.X, ext.X}, {o.Y, d.Y, ext.Y}, {o.Z, d.Z, ext.Z}} {
		ao, ad, ae := axis[0], axis[1], axis[2]
		if stdmath.Abs(ad) < 1e-12 {
			if stdmath.Abs(ao) > ae {
				return 0, 0, false
			}
			continue
		}
		t0 := (-ae - ao) / ad
		t1 := (ae - ao) / ad
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tEnter = max(tEnter, t0)
		tExit = min(tExit, t1)
	}
	if tEnter > tExit {
		return 0, 0, false
	}
	return tEnter, tExit, true
}

// cylinderSpan intersects an infinite cylinder around the planet rotation
// axis, clamped to the polar altitude band shell
func cylinderSpan(ray mathpkg.Ray, prim *core.Primitive, field *volume.Field) (float64, float64, bool) {
	axis := field.PlanetAxis
	radius := max(prim.Extents.X, 1)

	w := ray.Origin.Subtract(field.PlanetCenter)
	dPerp := ray.Direction.Subtract(axis.Multiply(ray.Direction.Dot(axis)))
	wPerp := w.Subtract(axis.Multiply(w.Dot(axis)))

	a := dPerp.LengthSquared()
	var cylEnter, cylExit float64
	if a < 1e-12 {
		// Ray parallel to the axis: inside or outside for its whole length
		if wPerp.LengthSquared() > radius*radius {
			return 0, 0, false
		}
		cylEnter, cylExit = stdmath.Inf(-1), stdmath.Inf(1)
	} else {
		b := wPerp.Dot(dPerp)
		c := wPerp.LengthSquared() - radius*radius
		disc := b*b - a*c
		if disc < 0 {
			return 0, 0, false
		}
		sq := stdmath.Sqrt(disc)
		cylEnter = (-b - sq) / a
		cylExit = (-b + sq) / a
	}

	lo, hi := field.Cfg.AltitudeBand(core.KindPolar)
	spans := shellSpans(ray, field.PlanetCenter, field.PlanetRadius+lo, field.PlanetRadius+hi, stdmath.Inf(1))
	for _, sh := range spans {
		enter := max(cylEnter, sh.Enter)
		exit := min(cylExit, sh.Exit)
		if exit > enter {
			return enter, exit, true
		}
	}
	return 0, 0, false
}

// shellSpans returns the ray's overlap (up to two spans) with the region
// between two concentric spheres, clamped to [0, tMax]
func shellSpans(ray mathpkg.Ray, center mathpkg.Vec3, innerR, outerR, tMax float64) []Shell {
	o0, o1, ok := raySphere(ray, center, outerR)
	if !ok || o1 <= 0 {
		return nil
	}
	o0 = max(o0, 0)
	o1 = min(o1, tMax)
	if o1 <= o0 {
		return nil
	}

	i0, i1, hitInner := raySphere(ray, center, innerR)
	if !hitInner || i1 <= o0 || i0 >= o1 {
		return []Shell{{Enter: o0, Exit: o1}}
	}

	var out []Shell
	if i0 > o0 {
		out = append(out, Shell{Enter: o0, Exit: min(i0, o1)})
	}
	if i1 < o1 {
		out = append(out, Shell{Enter: max(i1, o0), Exit: o1})
	}
	return out
}

// raySphere solves the quadratic intersection with epsilon guards; a miss
// returns false rather than degenerate roots
func raySphere(ray mathpkg.Ray, center mathpkg.Vec3, radius float64) (float64, float64, bool) {
	oc := ray.Origin.Subtract(center)
	a := ray.Direction.LengthSquared()
	if a < 1e-18 {
		return 0, 0, false
	}
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - radius*radius
	disc := halfB*halfB - a*c
	if disc < 0 {
		return 0, 0, false
	}
	sq := stdmath.Sqrt(disc)
	return (-halfB - sq) / a, (-halfB + sq) / a, true
}
