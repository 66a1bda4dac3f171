package colour

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// NormalizationDeltaE is the CIE76 delta E that maps to a perceptual distance
// of 1.0. Black against white is exactly 100.
const NormalizationDeltaE = 100.0

// Lab is a colour in CIE L*a*b* (D65) on the conventional scale:
// L in [0, 100], a and b roughly in [-128, 127].
type Lab struct {
	L float64 `json:"l"`
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// String returns the Lab triple formatted to two decimal places.
func (l Lab) String() string {
	return fmt.Sprintf("lab(%.2f, %.2f, %.2f)", l.L, l.A, l.B)
}

// toColorful converts an RGB value to a go-colorful colour.
func toColorful(rgb RGB) colorful.Color {
	return colorful.Color{
		R: float64(rgb.R) / 255.0,
		G: float64(rgb.G) / 255.0,
		B: float64(rgb.B) / 255.0,
	}
}

// RGBToLab converts an RGB colour to CIE Lab.
func RGBToLab(rgb RGB) Lab {
	// go-colorful reports L in [0, 1]; rescale to the CIE convention.
	l, a, b := toColorful(rgb).Lab()
	return Lab{L: l * 100, A: a * 100, B: b * 100}
}

// HexToLab converts a 3- or 6-digit hex colour to CIE Lab.
func HexToLab(hex string) (Lab, error) {
	rgb, err := ParseHex(hex)
	if err != nil {
		return Lab{}, err
	}
	return RGBToLab(rgb), nil
}

// DeltaE76 returns the Euclidean distance between two Lab colours.
func DeltaE76(a, b Lab) float64 {
	dl := a.L - b.L
	da := a.A - b.A
	db := a.B - b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// LabDistance returns the normalised perceptual distance between two Lab
// colours in [0, 1].
func LabDistance(a, b Lab) float64 {
	return math.Min(DeltaE76(a, b)/NormalizationDeltaE, 1)
}

// PerceptualDistance returns the normalised CIE76 distance in [0, 1] between two
// hex colours. Returns *InvalidColorError if either value is malformed.
func PerceptualDistance(hexA, hexB string) (float64, error) {
	a, err := ParseHex(hexA)
	if err != nil {
		return 0, err
	}
	b, err := ParseHex(hexB)
	if err != nil {
		return 0, err
	}
	if a == b {
		return 0, nil
	}

	// DistanceCIE76 works on go-colorful's unit Lab scale, which is delta E / 100.
	d := toColorful(a).DistanceCIE76(toColorful(b))
	return math.Min(d*100/NormalizationDeltaE, 1), nil
}

// Similarity converts a perceptual distance to a 0-100 score.
func Similarity(distance float64) int {
	s := (1 - distance) * 100
	s = math.Max(0, math.Min(100, s))
	return int(math.Round(s))
}
