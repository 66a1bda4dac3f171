// Package colour provides hex parsing, CIE Lab conversion and perceptual
// distance for catalog colours.
package colour

import (
	"fmt"
	"strings"
)

// RGB represents a colour in 8-bit RGB format.
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// String returns the RGB colour as a string in the format "rgb(r, g, b)".
func (rgb RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", rgb.R, rgb.G, rgb.B)
}

// Hex returns the RGB colour as a lower-case hex string (e.g., "#1a2b3c").
func (rgb RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", rgb.R, rgb.G, rgb.B)
}

// InvalidColorError is returned when a string is not a 3- or 6-digit hex colour.
type InvalidColorError struct {
	Value  string
	Reason string
}

// Error implements the error interface.
func (e *InvalidColorError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid hex colour %q", e.Value)
	}
	return fmt.Sprintf("invalid hex colour %q: %s", e.Value, e.Reason)
}

// ParseHex parses "#rgb", "#rrggbb", "rgb" or "rrggbb" (any case).
func ParseHex(s string) (RGB, error) {
	digits := strings.TrimPrefix(s, "#")

	switch len(digits) {
	case 3, 6:
	default:
		return RGB{}, &InvalidColorError{Value: s, Reason: "must be 3 or 6 hex digits"}
	}

	var nibbles [6]uint8
	for i := 0; i < len(digits); i++ {
		v, ok := hexNibble(digits[i])
		if !ok {
			return RGB{}, &InvalidColorError{Value: s, Reason: fmt.Sprintf("unexpected character %q", digits[i])}
		}
		nibbles[i] = v
	}

	if len(digits) == 3 {
		return RGB{
			R: nibbles[0]<<4 | nibbles[0],
			G: nibbles[1]<<4 | nibbles[1],
			B: nibbles[2]<<4 | nibbles[2],
		}, nil
	}

	return RGB{
		R: nibbles[0]<<4 | nibbles[1],
		G: nibbles[2]<<4 | nibbles[3],
		B: nibbles[4]<<4 | nibbles[5],
	}, nil
}

// MustParseHex is like ParseHex but panics on invalid input.
// Only intended for constants and tests.
func MustParseHex(s string) RGB {
	rgb, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return rgb
}

// IsValidHex reports whether s is a syntactically valid 3- or 6-digit hex colour.
func IsValidHex(s string) bool {
	_, err := ParseHex(s)
	return err == nil
}

// CanonicalHex returns the catalog form of a hex colour: "#RRGGBB" in upper case
// with 3-digit shorthand expanded.
func CanonicalHex(s string) (string, error) {
	rgb, err := ParseHex(s)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(rgb.Hex()), nil
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
