package core

import (
	stdmath "math"
	"testing"
)

func TestField3D_SamplesLatticeValues(t *testing.T) {
	// 2x2x2 grid: value equals flat index
	data := make([]float64, 8)
	for i := range data {
		data[i] = float64(i)
	}
	f, err := NewField3D(2, 2, 2, data)
	if err != nil {
		t.Fatalf("NewField3D failed: %v", err)
	}

	// Sampling at a cell corner returns the lattice value exactly
	if got := f.Sample(0, 0, 0); stdmath.Abs(got-0) > 1e-9 {
		t.Errorf("corner sample: expected 0, got %v", got)
	}
	// Center of the first cell interpolates all eight corners equally
	want := (0.0 + 1 + 2 + 3 + 4 + 5 + 6 + 7) / 8
	if got := f.Sample(0.25, 0.25, 0.25); stdmath.Abs(got-want) > 1e-9 {
		t.Errorf("cell center: expected %v, got %v", want, got)
	}
}

func TestField3D_WrapAddressing(t *testing.T) {
	data := make([]float64, 27)
	for i := range data {
		data[i] = float64(i % 5)
	}
	f, err := NewField3D(3, 3, 3, data)
	if err != nil {
		t.Fatalf("NewField3D failed: %v", err)
	}

	base := f.Sample(0.2, 0.7, 0.4)
	shifted := [][3]float64{
		{-0.8, 1.7, 0.4}, // shifted by whole tiles
		{10.2, -5.3, 3.4},
	}
	for _, p := range shifted {
		if got := f.Sample(p[0], p[1], p[2]); stdmath.Abs(got-base) > 1e-9 {
			t.Errorf("sample at %v: expected %v, got %v", p, base, got)
		}
	}
}

func TestField3D_Errors(t *testing.T) {
	if _, err := NewField3D(0, 2, 2, nil); err == nil {
		t.Errorf("expected error for zero dimension")
	}
	if _, err := NewField3D(2, 2, 2, make([]float64, 7)); err == nil {
		t.Errorf("expected error for short data")
	}
}

func TestField2D_Bilinear(t *testing.T) {
	f, err := NewField2D(2, 2, []float64{0, 1, 2, 3})
	if err != nil {
		t.Fatalf("NewField2D failed: %v", err)
	}
	// Center of the first cell averages all four texels
	if got := f.Sample(0.25, 0.25); stdmath.Abs(got-1.5) > 1e-9 {
		t.Errorf("expected 1.5, got %v", got)
	}
	// Wrapped sample matches the unwrapped one
	a := f.Sample(0.3, 0.6)
	b := f.Sample(-2.7, 4.6)
	if stdmath.Abs(a-b) > 1e-9 {
		t.Errorf("wrap mismatch: %v vs %v", a, b)
	}
}
