// Package security provides validation for user-supplied paths that spraydex
// executes.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// ValidateAnalyzerPath checks that an analyzer plugin path names an existing
// executable file and returns its absolute form.
func ValidateAnalyzerPath(analyzerPath string) (string, error) {
	if analyzerPath == "" {
		return "", fmt.Errorf("empty analyzer path")
	}

	abs, err := filepath.Abs(filepath.Clean(analyzerPath))
	if err != nil {
		return "", fmt.Errorf("invalid analyzer path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("analyzer not found: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("analyzer path is not a regular file: %s", abs)
	}

	// Windows has no executable bit.
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		return "", fmt.Errorf("analyzer is not executable: %s", abs)
	}

	return abs, nil
}
