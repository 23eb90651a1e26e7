package core

import (
	"fmt"

	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// FrameBuffers holds the low-resolution per-frame outputs of the raymarch pass:
// color with coverage alpha, screen-space motion vectors, and normalized depth.
// Each element is written exactly once per frame by exactly one worker.
type FrameBuffers struct {
	Width, Height int
	Color         []mathpkg.Vec3
	Alpha         []float64 // coverage, [0,1]
	Motion        []mathpkg.Vec2 // uv delta, current - previous
	Depth         []float64 // [0,1], normalized by the march range
}

// NewFrameBuffers allocates low-resolution frame buffers
func NewFrameBuffers(width, height int) (*FrameBuffers, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("frame buffers: invalid size %dx%d", width, height)
	}
	n := width * height
	return &FrameBuffers{
		Width:  width,
		Height: height,
		Color:  make([]mathpkg.Vec3, n),
		Alpha:  make([]float64, n),
		Motion: make([]mathpkg.Vec2, n),
		Depth:  make([]float64, n),
	}, nil
}

// Index returns the flat buffer index for pixel (x, y)
func (f *FrameBuffers) Index(x, y int) int {
	return y*f.Width + x
}

// Clear zeroes all buffer contents
func (f *FrameBuffers) Clear() {
	for i := range f.Color {
		f.Color[i] = mathpkg.Vec3{}
		f.Alpha[i] = 0
		f.Motion[i] = mathpkg.Vec2{}
		f.Depth[i] = 0
	}
}

// History is one full-resolution temporal accumulation buffer.
// Two of these are ping-ponged by the reconstructor; within a frame one is
// read-only and the other write-only.
type History struct {
	Width, Height int
	Color         []mathpkg.Vec3
	Confidence    []float64 // per-pixel temporal trust, >= 1
}

// NewHistory allocates a history buffer with confidence reset to 1
func NewHistory(width, height int) (*History, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("history buffer: invalid size %dx%d", width, height)
	}
	h := &History{
		Width:      width,
		Height:     height,
		Color:      make([]mathpkg.Vec3, width*height),
		Confidence: make([]float64, width*height),
	}
	h.Reset()
	return h, nil
}

// Index returns the flat buffer index for pixel (x, y)
func (h *History) Index(x, y int) int {
	return y*h.Width + x
}

// Reset discards accumulated history: colors to zero, confidence to 1
func (h *History) Reset() {
	for i := range h.Color {
		h.Color[i] = mathpkg.Vec3{}
		h.Confidence[i] = 1
	}
}
