package core

import (
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// ViewState holds the immutable per-frame camera and world state.
// It is rebuilt from the host each frame and read concurrently by workers.
type ViewState struct {
	CameraPos      mathpkg.Vec3
	ViewProj       mathpkg.Mat4 // current world -> clip
	InvViewProj    mathpkg.Mat4 // current clip -> world
	PrevViewProj   mathpkg.Mat4 // previous frame world -> clip
	PlanetCenter   mathpkg.Vec3
	PlanetRadius   float64
	PlanetRotation mathpkg.Quaternion
	SunDir         mathpkg.Vec3 // unit vector toward the sun
	Time           float64      // elapsed seconds
	Frame          int
}

// RayThrough returns the world-space view ray through screen UV coordinates
// (u right, v down, both in [0,1]). Returns false for degenerate projections.
func (vs *ViewState) RayThrough(u, v float64) (mathpkg.Ray, bool) {
	ndcX := 2*u - 1
	ndcY := 1 - 2*v

	near, okA := vs.InvViewProj.Project(mathpkg.NewVec3(ndcX, ndcY, 0.1))
	far, okB := vs.InvViewProj.Project(mathpkg.NewVec3(ndcX, ndcY, 0.9))
	if !okA || !okB {
		return mathpkg.Ray{}, false
	}
	dir := far.Subtract(near)
	if dir.LengthSquared() < 1e-18 {
		return mathpkg.Ray{}, false
	}
	return mathpkg.NewRay(vs.CameraPos, dir.Normalize()), true
}

// ScreenUV projects a world point into current-frame screen UV space.
// Returns false if the point lies behind the camera.
func (vs *ViewState) ScreenUV(p mathpkg.Vec3) (mathpkg.Vec2, bool) {
	return projectUV(vs.ViewProj, p)
}

// PrevScreenUV projects a world point into previous-frame screen UV space
func (vs *ViewState) PrevScreenUV(p mathpkg.Vec3) (mathpkg.Vec2, bool) {
	return projectUV(vs.PrevViewProj, p)
}

func projectUV(m mathpkg.Mat4, p mathpkg.Vec3) (mathpkg.Vec2, bool) {
	ndc, ok := m.Project(p)
	if !ok {
		return mathpkg.Vec2{}, false
	}
	return mathpkg.NewVec2((ndc.X+1)*0.5, (1-ndc.Y)*0.5), true
}

// Altitude returns the height of a world point above the planet surface.
// Negative below the surface.
func (vs *ViewState) Altitude(p mathpkg.Vec3) float64 {
	return p.Subtract(vs.PlanetCenter).Length() - vs.PlanetRadius
}

// Up returns the local up direction (surface normal) at a world point
func (vs *ViewState) Up(p mathpkg.Vec3) mathpkg.Vec3 {
	d := p.Subtract(vs.PlanetCenter)
	if d.LengthSquared() < 1e-18 {
		return mathpkg.NewVec3(0, 1, 0)
	}
	return d.Normalize()
}

// PlanetAxis returns the planet rotation axis in world space
func (vs *ViewState) PlanetAxis() mathpkg.Vec3 {
	return vs.PlanetRotation.Rotate(mathpkg.NewVec3(0, 1, 0)).Normalize()
}
