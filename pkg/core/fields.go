package core

import (
	"fmt"
	stdmath "math"
)

// Sampler3D is an opaque read-only 3D scalar field. Coordinates are in
// tile space: one unit spans the whole field and addressing wraps.
type Sampler3D interface {
	Sample(x, y, z float64) float64
}

// Sampler2D is an opaque read-only 2D scalar field with wrap addressing
type Sampler2D interface {
	Sample(x, y float64) float64
}

// Field3D is a dense float grid with trilinear wrap sampling
type Field3D struct {
	nx, ny, nz int
	data       []float64
}

// NewField3D wraps raw grid data, laid out x-major within z-major slices
// (index = (z*ny + y)*nx + x)
func NewField3D(nx, ny, nz int, data []float64) (*Field3D, error) {
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, fmt.Errorf("field3d: invalid dims %dx%dx%d", nx, ny, nz)
	}
	if len(data) != nx*ny*nz {
		return nil, fmt.Errorf("field3d: have %d values, need %d", len(data), nx*ny*nz)
	}
	return &Field3D{nx: nx, ny: ny, nz: nz, data: data}, nil
}

// Sample returns the trilinearly interpolated value at tile-space (x, y, z)
func (f *Field3D) Sample(x, y, z float64) float64 {
	fx := wrapCoord(x) * float64(f.nx)
	fy := wrapCoord(y) * float64(f.ny)
	fz := wrapCoord(z) * float64(f.nz)

	x0 := int(fx) % f.nx
	y0 := int(fy) % f.ny
	z0 := int(fz) % f.nz
	x1 := (x0 + 1) % f.nx
	y1 := (y0 + 1) % f.ny
	z1 := (z0 + 1) % f.nz
	tx := fx - stdmath.Floor(fx)
	ty := fy - stdmath.Floor(fy)
	tz := fz - stdmath.Floor(fz)

	at := func(xi, yi, zi int) float64 {
		return f.data[(zi*f.ny+yi)*f.nx+xi]
	}

	c00 := lerp(at(x0, y0, z0), at(x1, y0, z0), tx)
	c10 := lerp(at(x0, y1, z0), at(x1, y1, z0), tx)
	c01 := lerp(at(x0, y0, z1), at(x1, y0, z1), tx)
	c11 := lerp(at(x0, y1, z1), at(x1, y1, z1), tx)
	c0 := lerp(c00, c10, ty)
	c1 := lerp(c01, c11, ty)
	return lerp(c0, c1, tz)
}

// Field2D is a dense float grid with bilinear wrap sampling
type Field2D struct {
	nx, ny int
	data   []float64
}

// NewField2D wraps raw grid data in row-major layout (index = y*nx + x)
func NewField2D(nx, ny int, data []float64) (*Field2D, error) {
	if nx <= 0 || ny <= 0 {
		return nil, fmt.Errorf("field2d: invalid dims %dx%d", nx, ny)
	}
	if len(data) != nx*ny {
		return nil, fmt.Errorf("field2d: have %d values, need %d", len(data), nx*ny)
	}
	return &Field2D{nx: nx, ny: ny, data: data}, nil
}

// Sample returns the bilinearly interpolated value at tile-space (x, y)
func (f *Field2D) Sample(x, y float64) float64 {
	fx := wrapCoord(x) * float64(f.nx)
	fy := wrapCoord(y) * float64(f.ny)

	x0 := int(fx) % f.nx
	y0 := int(fy) % f.ny
	x1 := (x0 + 1) % f.nx
	y1 := (y0 + 1) % f.ny
	tx := fx - stdmath.Floor(fx)
	ty := fy - stdmath.Floor(fy)

	c0 := lerp(f.data[y0*f.nx+x0], f.data[y0*f.nx+x1], tx)
	c1 := lerp(f.data[y1*f.nx+x0], f.data[y1*f.nx+x1], tx)
	return lerp(c0, c1, ty)
}

func wrapCoord(v float64) float64 {
	w := v - stdmath.Floor(v)
	if w >= 1 { // Floor of very small negatives can round back to 1.0
		w = 0
	}
	return w
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
