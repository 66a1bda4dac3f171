package swatch

import (
	"strings"

	"github.com/jmylchreest/spraydex/internal/colour"
)

// MaxSwatches caps the number of hex colours ExtractHexPalette returns.
const MaxSwatches = 8

// ExtractHexPalette returns the valid channel colours of r in priority order,
// without case-insensitive duplicates and at most MaxSwatches long. Values keep
// their original spelling. Absent or invalid channels are skipped.
func ExtractHexPalette(r Report) []string {
	out := make([]string, 0, MaxSwatches)
	seen := make(map[string]struct{}, MaxSwatches)

	for _, ch := range channels {
		if len(out) >= MaxSwatches {
			break
		}

		value := ch.Value(r)
		if value == "" || !colour.IsValidHex(value) {
			continue
		}

		key := strings.ToLower(value)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, value)
	}

	return out
}
