package math

import (
	"math"
	"testing"
)

func TestVec3_BasicOperations(t *testing.T) {
	tests := []struct {
		name     string
		compute  func() Vec3
		expected Vec3
	}{
		{
			name:     "Add",
			compute:  func() Vec3 { return NewVec3(1, 2, 3).Add(NewVec3(4, 5, 6)) },
			expected: NewVec3(5, 7, 9),
		},
		{
			name:     "Subtract",
			compute:  func() Vec3 { return NewVec3(4, 5, 6).Subtract(NewVec3(1, 2, 3)) },
			expected: NewVec3(3, 3, 3),
		},
		{
			name:     "Multiply by scalar",
			compute:  func() Vec3 { return NewVec3(1, -2, 3).Multiply(2) },
			expected: NewVec3(2, -4, 6),
		},
		{
			name:     "Componentwise multiply",
			compute:  func() Vec3 { return NewVec3(1, 2, 3).MultiplyVec(NewVec3(2, 0.5, -1)) },
			expected: NewVec3(2, 1, -3),
		},
		{
			name:     "Cross of axes",
			compute:  func() Vec3 { return NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)) },
			expected: NewVec3(0, 0, 1),
		},
		{
			name:     "Lerp midpoint",
			compute:  func() Vec3 { return NewVec3(0, 0, 0).Lerp(NewVec3(2, 4, 6), 0.5) },
			expected: NewVec3(1, 2, 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.compute()

			const tolerance = 1e-9
			if result.Subtract(tt.expected).Length() > tolerance {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalize()
	if math.Abs(v.Length()-1) > 1e-9 {
		t.Errorf("Expected unit length, got %v", v.Length())
	}

	// Zero vector stays zero rather than producing NaNs
	zero := NewVec3(0, 0, 0).Normalize()
	if !zero.IsFinite() {
		t.Errorf("Normalizing zero vector produced non-finite result %v", zero)
	}
}

func TestVec3_Dot(t *testing.T) {
	got := NewVec3(1, 2, 3).Dot(NewVec3(4, -5, 6))
	if math.Abs(got-12) > 1e-9 {
		t.Errorf("Expected 12, got %v", got)
	}
}

func TestVec3_Clamp(t *testing.T) {
	got := NewVec3(-0.5, 0.5, 1.5).Clamp(0, 1)
	expected := NewVec3(0, 0.5, 1)
	if got.Subtract(expected).Length() > 1e-9 {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}
