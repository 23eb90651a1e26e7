package scene

import (
	"fmt"
	"image"
	"os"

	_ "image/jpeg"
	_ "image/png"

	_ "github.com/ftrvxmtrx/tga"

	"github.com/cloudmarch/sky/pkg/core"
)

// LoadWeatherImage reads a coverage mask from an image file. The red channel
// becomes the weather field value; PNG, JPEG and TGA are recognized.
func LoadWeatherImage(path string) (*core.Field2D, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("weather image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("weather image %s: %w", path, err)
	}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	data := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, _, _, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			data[y*w+x] = float64(r) / 0xffff
		}
	}
	return core.NewField2D(w, h, data)
}
