package scene

import (
	stdmath "math"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// OrbitCamera circles a point above the planet surface and emits per-frame
// view state. It tracks the previous frame's view-projection matrix so
// reprojection is valid from the second frame on.
type OrbitCamera struct {
	PlanetRadius float64
	Altitude     float64 // camera height above the surface, meters
	OrbitRadius  float64 // horizontal distance from the orbit center, meters
	OrbitPeriod  float64 // seconds per revolution
	FovY         float64 // vertical field of view, radians
	SunElevation float64 // radians above the horizon
	SunPeriod    float64 // seconds per sun revolution, 0 for a fixed sun

	time   float64
	frame  int
	prevVP mathpkg.Mat4
	primed bool
}

// NewOrbitCamera returns an orbit camera with showcase defaults for the
// given planet radius
func NewOrbitCamera(planetRadius float64) *OrbitCamera {
	return &OrbitCamera{
		PlanetRadius: planetRadius,
		Altitude:     400,
		OrbitRadius:  3000,
		OrbitPeriod:  120,
		FovY:         70 * stdmath.Pi / 180,
		SunElevation: 18 * stdmath.Pi / 180,
		SunPeriod:    0,
	}
}

// Next advances the camera by dt seconds and returns the view state for the
// next frame at the given output size
func (oc *OrbitCamera) Next(dt float64, width, height int) *core.ViewState {
	oc.time += dt

	angle := oc.time / oc.OrbitPeriod * 2 * stdmath.Pi
	surface := mathpkg.NewVec3(0, oc.PlanetRadius, 0)
	eye := surface.Add(mathpkg.NewVec3(
		oc.OrbitRadius*stdmath.Cos(angle),
		oc.Altitude,
		oc.OrbitRadius*stdmath.Sin(angle),
	))
	target := surface.Add(mathpkg.NewVec3(0, oc.Altitude+600, 0))

	aspect := float64(width) / float64(height)
	proj := mathpkg.Perspective(oc.FovY, aspect, 10, 2e6)
	viewMat := mathpkg.LookAt(eye, target, mathpkg.NewVec3(0, 1, 0))
	vp := proj.Mul(viewMat)
	inv, ok := vp.Inverse()
	if !ok {
		inv = mathpkg.Mat4Identity()
	}

	prev := oc.prevVP
	if !oc.primed {
		prev = vp
		oc.primed = true
	}
	oc.prevVP = vp

	sunAngle := 0.0
	if oc.SunPeriod > 0 {
		sunAngle = oc.time / oc.SunPeriod * 2 * stdmath.Pi
	}
	sun := mathpkg.NewVec3(
		stdmath.Cos(oc.SunElevation)*stdmath.Cos(sunAngle),
		stdmath.Sin(oc.SunElevation),
		stdmath.Cos(oc.SunElevation)*stdmath.Sin(sunAngle),
	).Normalize()

	view := &core.ViewState{
		CameraPos:      eye,
		ViewProj:       vp,
		InvViewProj:    inv,
		PrevViewProj:   prev,
		PlanetCenter:   mathpkg.Vec3{},
		PlanetRadius:   oc.PlanetRadius,
		PlanetRotation: mathpkg.QuaternionIdentity(),
		SunDir:         sun,
		Time:           oc.time,
		Frame:          oc.frame,
	}
	oc.frame++
	return view
}
