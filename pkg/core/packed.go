package core

import (
	"encoding/binary"
	"fmt"
	stdmath "math"

	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// PackedPrimitiveSize is the wire size of one packed primitive record
const PackedPrimitiveSize = 28

// maxPackedExtent is the largest encodable half-extent in meters.
// Extents are quantized to uint16 at 2m resolution.
const maxPackedExtent = 131070.0

// PackPrimitive encodes a primitive into the compact transfer format:
// position as three float32s, extents quantized to uint16 (2m steps),
// yaw/density/detail/brightness quantized to uint8, form byte, seed uint32,
// one reserved byte. Little-endian throughout.
func PackPrimitive(p *Primitive, dst []byte) error {
	if len(dst) < PackedPrimitiveSize {
		return fmt.Errorf("pack primitive: need %d bytes, have %d", PackedPrimitiveSize, len(dst))
	}
	binary.LittleEndian.PutUint32(dst[0:], stdmath.Float32bits(float32(p.Center.X)))
	binary.LittleEndian.PutUint32(dst[4:], stdmath.Float32bits(float32(p.Center.Y)))
	binary.LittleEndian.PutUint32(dst[8:], stdmath.Float32bits(float32(p.Center.Z)))
	binary.LittleEndian.PutUint16(dst[12:], packExtent(p.Extents.X))
	binary.LittleEndian.PutUint16(dst[14:], packExtent(p.Extents.Y))
	binary.LittleEndian.PutUint16(dst[16:], packExtent(p.Extents.Z))
	dst[18] = packAngle(p.Yaw)
	dst[19] = byte(p.Form)
	dst[20] = packUnorm(p.Density)
	dst[21] = packUnorm(p.Detail)
	dst[22] = packUnorm(p.Brightness)
	dst[23] = 0
	binary.LittleEndian.PutUint32(dst[24:], p.Seed)
	return nil
}

// UnpackPrimitive decodes one packed primitive record
func UnpackPrimitive(src []byte) (Primitive, error) {
	if len(src) < PackedPrimitiveSize {
		return Primitive{}, fmt.Errorf("unpack primitive: need %d bytes, have %d", PackedPrimitiveSize, len(src))
	}
	form := PrimitiveForm(src[19])
	if !form.Valid() {
		return Primitive{}, fmt.Errorf("unpack primitive: unknown form %d", src[19])
	}
	return Primitive{
		Center: mathpkg.NewVec3(
			float64(stdmath.Float32frombits(binary.LittleEndian.Uint32(src[0:]))),
			float64(stdmath.Float32frombits(binary.LittleEndian.Uint32(src[4:]))),
			float64(stdmath.Float32frombits(binary.LittleEndian.Uint32(src[8:]))),
		),
		Extents: mathpkg.NewVec3(
			unpackExtent(binary.LittleEndian.Uint16(src[12:])),
			unpackExtent(binary.LittleEndian.Uint16(src[14:])),
			unpackExtent(binary.LittleEndian.Uint16(src[16:])),
		),
		Yaw:        unpackAngle(src[18]),
		Form:       form,
		Density:    unpackUnorm(src[20]),
		Detail:     unpackUnorm(src[21]),
		Brightness: unpackUnorm(src[22]),
		Seed:       binary.LittleEndian.Uint32(src[24:]),
	}, nil
}

// PackPrimitives encodes a full primitive list for the frame hand-off
func PackPrimitives(prims []Primitive) ([]byte, error) {
	if len(prims) > MaxPrimitives {
		return nil, fmt.Errorf("pack primitives: %d exceeds limit %d", len(prims), MaxPrimitives)
	}
	out := make([]byte, len(prims)*PackedPrimitiveSize)
	for i := range prims {
		if err := PackPrimitive(&prims[i], out[i*PackedPrimitiveSize:]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UnpackPrimitives decodes a packed primitive list
func UnpackPrimitives(data []byte) ([]Primitive, error) {
	if len(data)%PackedPrimitiveSize != 0 {
		return nil, fmt.Errorf("unpack primitives: %d bytes is not a multiple of %d", len(data), PackedPrimitiveSize)
	}
	n := len(data) / PackedPrimitiveSize
	if n > MaxPrimitives {
		return nil, fmt.Errorf("unpack primitives: %d exceeds limit %d", n, MaxPrimitives)
	}
	out := make([]Primitive, n)
	for i := 0; i < n; i++ {
		p, err := UnpackPrimitive(data[i*PackedPrimitiveSize:])
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

func packExtent(e float64) uint16 {
	return uint16(mathpkg.Clamp(e, 0, maxPackedExtent)/2 + 0.5)
}

func unpackExtent(u uint16) float64 {
	return float64(u) * 2
}

func packAngle(yaw float64) byte {
	twoPi := 2 * stdmath.Pi
	w := yaw - twoPi*stdmath.Floor(yaw/twoPi)
	return byte(uint32(w/twoPi*256) & 0xff)
}

func unpackAngle(b byte) float64 {
	return float64(b) / 256 * 2 * stdmath.Pi
}

func packUnorm(v float64) byte {
	return byte(mathpkg.Clamp01(v)*255 + 0.5)
}

func unpackUnorm(b byte) float64 {
	return float64(b) / 255
}
