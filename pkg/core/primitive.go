package core

import (
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// MaxPrimitives bounds the number of volume primitives accepted per frame
const MaxPrimitives = 2048

// VolumeKind selects the sampling strategy for a primitive
type VolumeKind int

const (
	KindCloud VolumeKind = iota
	KindFog
	KindPolar
)

// PrimitiveForm is the categorical shape variant of a volume primitive.
// The set is closed; sampling dispatches on it with an explicit switch.
type PrimitiveForm uint8

const (
	FormCumulus PrimitiveForm = iota
	FormStratus
	FormAnvil
	FormWisp
	FormFogBank
	FormPolarColumn
	formCount
)

// Kind returns the volume kind the form belongs to
func (f PrimitiveForm) Kind() VolumeKind {
	switch f {
	case FormFogBank:
		return KindFog
	case FormPolarColumn:
		return KindPolar
	default:
		return KindCloud
	}
}

// Valid reports whether the form is a known variant
func (f PrimitiveForm) Valid() bool {
	return f < formCount
}

func (f PrimitiveForm) String() string {
	switch f {
	case FormCumulus:
		return "cumulus"
	case FormStratus:
		return "stratus"
	case FormAnvil:
		return "anvil"
	case FormWisp:
		return "wisp"
	case FormFogBank:
		return "fogbank"
	case FormPolarColumn:
		return "polar"
	default:
		return "unknown"
	}
}

// Primitive describes one cloud-like volume blob. Read-only during a frame.
type Primitive struct {
	Center     mathpkg.Vec3 // world position
	Extents    mathpkg.Vec3 // half-sizes of the oriented bounds, meters
	Yaw        float64      // rotation around local up, radians
	Form       PrimitiveForm
	Density    float64 // [0,1] density multiplier
	Detail     float64 // [0,1] detail erosion weight
	Brightness float64 // [0,1] emission/brightness scale
	Seed       uint32  // per-primitive variation seed
}

// DensitySample is the transient result of sampling the density field at a point
type DensitySample struct {
	Density  float64      // extinction density, [0,1] after clamping
	Color    mathpkg.Vec3 // scattering albedo tint
	Emission mathpkg.Vec3 // self-emitted radiance
}
