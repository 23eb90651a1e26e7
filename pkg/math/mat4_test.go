package math

import (
	"math"
	"testing"
)

func TestMat4_InverseRoundTrip(t *testing.T) {
	proj := Perspective(70*math.Pi/180, 16.0/9.0, 10, 2e6)
	view := LookAt(NewVec3(100, 500, -300), NewVec3(0, 600, 0), NewVec3(0, 1, 0))
	vp := proj.Mul(view)

	inv, ok := vp.Inverse()
	if !ok {
		t.Fatalf("view-projection should be invertible")
	}

	ident := vp.Mul(inv)
	expected := Mat4Identity()
	for i := 0; i < 16; i++ {
		if math.Abs(ident[i]-expected[i]) > 1e-6 {
			t.Errorf("element %d: expected %v, got %v", i, expected[i], ident[i])
		}
	}
}

func TestMat4_ProjectUnproject(t *testing.T) {
	proj := Perspective(60*math.Pi/180, 1.5, 1, 1e5)
	view := LookAt(NewVec3(0, 0, 10), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	vp := proj.Mul(view)
	inv, ok := vp.Inverse()
	if !ok {
		t.Fatalf("view-projection should be invertible")
	}

	points := []Vec3{
		NewVec3(0, 0, 0),
		NewVec3(2, -1, -5),
		NewVec3(-3, 4, -50),
	}
	for _, p := range points {
		ndc, ok := vp.Project(p)
		if !ok {
			t.Fatalf("point %v failed to project", p)
		}
		back, ok := inv.Project(ndc)
		if !ok {
			t.Fatalf("ndc %v failed to unproject", ndc)
		}
		if back.Subtract(p).Length() > 1e-6*(1+p.Length()) {
			t.Errorf("round trip of %v gave %v", p, back)
		}
	}
}

func TestMat4_ProjectBehindCamera(t *testing.T) {
	proj := Perspective(60*math.Pi/180, 1, 1, 1e5)
	view := LookAt(NewVec3(0, 0, 10), NewVec3(0, 0, 0), NewVec3(0, 1, 0))
	vp := proj.Mul(view)

	// A point well behind the eye projects with negative w
	if ndc, ok := vp.Project(NewVec3(0, 0, 100)); ok && ndc.Z > 0 && ndc.Z < 1 {
		t.Errorf("point behind camera should not land in the depth range, got %v", ndc)
	}
}

func TestMat4_Singular(t *testing.T) {
	var zero Mat4
	if _, ok := zero.Inverse(); ok {
		t.Errorf("zero matrix should not be invertible")
	}
}
