package renderer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/draw"

	"github.com/cloudmarch/sky/pkg/core"
	mathpkg "github.com/cloudmarch/sky/pkg/math"
)

// vec3ToColor converts a display-space color to RGBA with clamping
func vec3ToColor(colorVec mathpkg.Vec3) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0)
	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// ToImage converts a resolved frame to an RGBA image
func ToImage(frame *core.History) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, frame.Width, frame.Height))
	for y := 0; y < frame.Height; y++ {
		for x := 0; x < frame.Width; x++ {
			img.SetRGBA(x, y, vec3ToColor(frame.Color[frame.Index(x, y)]))
		}
	}
	return img
}

// Upscale resamples an image to the given size with Catmull-Rom filtering
func Upscale(img *image.RGBA, width, height int) *image.RGBA {
	if img.Bounds().Dx() == width && img.Bounds().Dy() == height {
		return img
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// WriteSnapshot encodes a frame to the given path, choosing the format from
// the file extension. Supported are .png and .webp.
func WriteSnapshot(path string, frame *core.History) error {
	img := ToImage(frame)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	case ".png", "":
		err = png.Encode(f, img)
	default:
		err = fmt.Errorf("unsupported snapshot format %q", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", path, err)
	}
	return nil
}
