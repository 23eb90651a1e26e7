package core

import (
	stdmath "math"
	"testing"

	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

func TestPackPrimitive_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		prim Primitive
	}{
		{
			name: "cumulus with rotation",
			prim: Primitive{
				Center:     mathpkg.NewVec3(1500, -220.5, 98000),
				Extents:    mathpkg.NewVec3(1800, 900, 2400),
				Yaw:        1.25,
				Form:       FormCumulus,
				Density:    0.75,
				Detail:     0.4,
				Brightness: 1,
				Seed:       0xdeadbeef,
			},
		},
		{
			name: "fog bank near origin",
			prim: Primitive{
				Center:     mathpkg.NewVec3(0, 120, 0),
				Extents:    mathpkg.NewVec3(4000, 300, 3500),
				Form:       FormFogBank,
				Density:    0.5,
				Detail:     0.5,
				Brightness: 0.3,
				Seed:       7,
			},
		},
		{
			name: "polar column with negative yaw",
			prim: Primitive{
				Center:     mathpkg.NewVec3(0, 6.4e6, 0),
				Extents:    mathpkg.NewVec3(120000, 15000, 120000),
				Yaw:        -2.5,
				Form:       FormPolarColumn,
				Density:    1,
				Detail:     0,
				Brightness: 0.9,
				Seed:       42,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, PackedPrimitiveSize)
			if err := PackPrimitive(&tt.prim, buf); err != nil {
				t.Fatalf("pack failed: %v", err)
			}
			got, err := UnpackPrimitive(buf)
			if err != nil {
				t.Fatalf("unpack failed: %v", err)
			}

			if got.Form != tt.prim.Form || got.Seed != tt.prim.Seed {
				t.Errorf("form/seed changed: got %v/%d, want %v/%d",
					got.Form, got.Seed, tt.prim.Form, tt.prim.Seed)
			}
			// Position carries float32 precision
			if got.Center.Subtract(tt.prim.Center).Length() > 0.01*(1+tt.prim.Center.Length()/1e4) {
				t.Errorf("center drifted: got %v, want %v", got.Center, tt.prim.Center)
			}
			// Extents quantize to 2m steps
			if got.Extents.Subtract(tt.prim.Extents).Length() > 2 {
				t.Errorf("extents drifted: got %v, want %v", got.Extents, tt.prim.Extents)
			}
			// Yaw quantizes to 256 steps over a full turn, modulo 2pi
			twoPi := 2 * stdmath.Pi
			wantYaw := tt.prim.Yaw - twoPi*stdmath.Floor(tt.prim.Yaw/twoPi)
			yawErr := stdmath.Abs(got.Yaw - wantYaw)
			if yawErr > twoPi/256+1e-9 {
				t.Errorf("yaw drifted: got %v, want %v", got.Yaw, wantYaw)
			}
			for _, ch := range []struct {
				name      string
				got, want float64
			}{
				{"density", got.Density, tt.prim.Density},
				{"detail", got.Detail, tt.prim.Detail},
				{"brightness", got.Brightness, tt.prim.Brightness},
			} {
				if stdmath.Abs(ch.got-ch.want) > 1.0/255+1e-9 {
					t.Errorf("%s drifted: got %v, want %v", ch.name, ch.got, ch.want)
				}
			}
		})
	}
}

func TestPackPrimitive_ShortBuffer(t *testing.T) {
	p := Primitive{Form: FormCumulus}
	if err := PackPrimitive(&p, make([]byte, PackedPrimitiveSize-1)); err == nil {
		t.Errorf("expected error for short buffer")
	}
	if _, err := UnpackPrimitive(make([]byte, PackedPrimitiveSize-1)); err == nil {
		t.Errorf("expected error for short buffer")
	}
}

func TestUnpackPrimitive_InvalidForm(t *testing.T) {
	buf := make([]byte, PackedPrimitiveSize)
	buf[19] = 0xff
	if _, err := UnpackPrimitive(buf); err == nil {
		t.Errorf("expected error for unknown form byte")
	}
}

func TestUnpackPrimitives_BadLength(t *testing.T) {
	if _, err := UnpackPrimitives(make([]byte, PackedPrimitiveSize+3)); err == nil {
		t.Errorf("expected error for non-multiple length")
	}
}

func TestPackPrimitives_List(t *testing.T) {
	prims := []Primitive{
		{Center: mathpkg.NewVec3(1, 2, 3), Extents: mathpkg.NewVec3(10, 20, 30), Form: FormStratus, Density: 0.5},
		{Center: mathpkg.NewVec3(-4, 5, -6), Extents: mathpkg.NewVec3(40, 50, 60), Form: FormWisp, Density: 0.25},
	}
	data, err := PackPrimitives(prims)
	if err != nil {
		t.Fatalf("pack list failed: %v", err)
	}
	if len(data) != 2*PackedPrimitiveSize {
		t.Fatalf("expected %d bytes, got %d", 2*PackedPrimitiveSize, len(data))
	}
	got, err := UnpackPrimitives(data)
	if err != nil {
		t.Fatalf("unpack list failed: %v", err)
	}
	if len(got) != 2 || got[0].Form != FormStratus || got[1].Form != FormWisp {
		t.Errorf("list round trip lost records: %+v", got)
	}
}
