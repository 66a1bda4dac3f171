package image

import (
	"fmt"
	"image"

	"github.com/jmylchreest/spraydex/internal/colour"
)

// MaxSamplesPerAxis bounds the pixels visited per axis when averaging a region.
const MaxSamplesPerAxis = 512

// Sampler averages colours over whole images or their borders.
type Sampler struct {
	// BorderPercent is the thickness of the border strips as a percentage of
	// the shorter image side (1-50). Default: 5.
	BorderPercent int
}

// NewSampler creates a sampler with default settings.
func NewSampler() *Sampler {
	return &Sampler{BorderPercent: 5}
}

// Average returns the mean colour of every pixel in img.
func (s *Sampler) Average(img image.Image) (colour.RGB, error) {
	return averageRegions(img, img.Bounds())
}

// Border returns the mean colour of the four edge strips of img. Corners are
// counted once.
func (s *Sampler) Border(img image.Image) (colour.RGB, error) {
	b := img.Bounds()
	if b.Empty() {
		return colour.RGB{}, fmt.Errorf("image has no pixels")
	}

	pct := s.BorderPercent
	if pct < 1 || pct > 50 {
		return colour.RGB{}, fmt.Errorf("invalid border percent: %d (valid: 1-50)", pct)
	}

	short := min(b.Dx(), b.Dy())
	t := max(short*pct/100, 1)
	if 2*t >= short {
		return averageRegions(img, b)
	}

	// Top and bottom span the full width; left and right fill the gap between them.
	regions := []image.Rectangle{
		image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+t),
		image.Rect(b.Min.X, b.Max.Y-t, b.Max.X, b.Max.Y),
		image.Rect(b.Min.X, b.Min.Y+t, b.Min.X+t, b.Max.Y-t),
		image.Rect(b.Max.X-t, b.Min.Y+t, b.Max.X, b.Max.Y-t),
	}
	return averageRegions(img, regions...)
}

// averageRegions computes the mean over the union of rects, which must not
// overlap. Large regions are sampled on a regular grid.
func averageRegions(img image.Image, rects ...image.Rectangle) (colour.RGB, error) {
	var totalR, totalG, totalB, count uint64

	for _, rect := range rects {
		rect = rect.Intersect(img.Bounds())
		if rect.Empty() {
			continue
		}
		stepX := max(rect.Dx()/MaxSamplesPerAxis, 1)
		stepY := max(rect.Dy()/MaxSamplesPerAxis, 1)

		for y := rect.Min.Y; y < rect.Max.Y; y += stepY {
			for x := rect.Min.X; x < rect.Max.X; x += stepX {
				r, g, b, _ := img.At(x, y).RGBA()
				// RGBA() returns values in range [0, 65535], convert to [0, 255].
				totalR += uint64(r >> 8)
				totalG += uint64(g >> 8)
				totalB += uint64(b >> 8)
				count++
			}
		}
	}

	if count == 0 {
		return colour.RGB{}, fmt.Errorf("image has no pixels")
	}

	// #nosec G115 -- averages of 8-bit values fit in uint8
	return colour.RGB{
		R: uint8((totalR + count/2) / count),
		G: uint8((totalG + count/2) / count),
		B: uint8((totalB + count/2) / count),
	}, nil
}
