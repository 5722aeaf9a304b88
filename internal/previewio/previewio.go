// Package previewio renders range images and terrain heightfields to raster
// images for inspection, and loads heightmaps from raster images so a
// Terrain can be built from real elevation data instead of only synthetic
// diamond-square terrain.
package previewio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	"os"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"github.com/clarity-go/rangecam/internal/buffer"
)

// GrayscaleFromDepth1 maps a depth-1 Buffer's values into an 8-bit grayscale
// image, linearly rescaling [min, max] across the observed data to [0, 255].
func GrayscaleFromDepth1(b buffer.Buffer) *image.Gray {
	rows, cols := b.Size()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	lo, hi := float32(0), float32(0)
	first := true
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v, _ := b.At(r, c, 0)
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			if v < lo {
				lo = v
			}
			if v > hi {
				hi = v
			}
		}
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v, _ := b.At(r, c, 0)
			norm := (v - lo) / span
			img.SetGray(c, r, color.Gray{Y: clamp8(norm * 255)})
		}
	}
	return img
}

func clamp8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Resize scales img to the given width/height using Lanczos-approximating
// CatmullRom filtering.
func Resize(img image.Image, width, height int) *image.Gray {
	dst := image.NewGray(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// WritePreviewWebP encodes img as a lossless-capable WebP file at path.
func WritePreviewWebP(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("previewio: create %s: %w", path, err)
	}
	defer f.Close()

	if err := nativewebp.Encode(f, img, nil); err != nil {
		return fmt.Errorf("previewio: encode %s: %w", path, err)
	}
	return nil
}

// LoadHeightmap decodes a TGA or JPEG grayscale raster (any registered
// image/* decoder applies) and returns a depth-1 Buffer of elevations in
// metres, scaling 8-bit intensity [0, 255] to [0, maxHeightM].
func LoadHeightmap(path string, maxHeightM float64) (buffer.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return buffer.Buffer{}, fmt.Errorf("previewio: open %s: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return buffer.Buffer{}, fmt.Errorf("previewio: decode %s: %w", path, err)
	}

	b := img.Bounds()
	rows, cols := b.Dy(), b.Dx()
	buf, err := buffer.New(rows, cols, 1)
	if err != nil {
		return buffer.Buffer{}, err
	}

	gray := color.GrayModel
	scale := float32(maxHeightM) / 255
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			v := gray.Convert(img.At(b.Min.X+c, b.Min.Y+r)).(color.Gray).Y
			_ = buf.Set(r, c, 0, float32(v)*scale)
		}
	}
	return buf, nil
}
