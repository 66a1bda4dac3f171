package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// Version represents a parsed protocol version.
type Version struct {
	Major int
	Minor int
	Patch int
}

// Parse parses a version string in "MAJOR.MINOR.PATCH" format. A leading "v"
// is accepted.
func Parse(version string) (Version, error) {
	parts := strings.Split(strings.TrimPrefix(strings.TrimSpace(version), "v"), ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version format: %s (expected MAJOR.MINOR.PATCH)", version)
	}

	var nums [3]int
	for i, name := range []string{"major", "minor", "patch"} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid %s version: %s", name, parts[i])
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// String returns the string representation of the version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0 or 1 as v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	for _, d := range [...]int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		switch {
		case d < 0:
			return -1
		case d > 0:
			return 1
		}
	}
	return 0
}

// IsCompatible checks a plugin protocol version against the host's
// plugin.ProtocolVersion and plugin.MinCompatibleVersion.
func IsCompatible(pluginVersion string) (bool, error) {
	return checkCompatible(pluginVersion, plugin.ProtocolVersion, plugin.MinCompatibleVersion)
}

// checkCompatible applies the compatibility rules:
// - Major version must match exactly.
// - The plugin must not be older than minimum.
// - Newer minor and patch versions are accepted.
func checkCompatible(pluginVersion, current, minimum string) (bool, error) {
	pv, err := Parse(pluginVersion)
	if err != nil {
		return false, fmt.Errorf("failed to parse plugin version: %w", err)
	}
	cv, err := Parse(current)
	if err != nil {
		return false, fmt.Errorf("failed to parse current protocol version: %w", err)
	}
	mv, err := Parse(minimum)
	if err != nil {
		return false, fmt.Errorf("failed to parse minimum compatible version: %w", err)
	}

	if pv.Major != cv.Major {
		return false, fmt.Errorf(
			"incompatible major version: plugin is %s, spraydex requires %d.x.x",
			pv, cv.Major,
		)
	}
	if pv.Compare(mv) < 0 {
		return false, fmt.Errorf("plugin version %s is too old, minimum required is %s", pv, mv)
	}

	return true, nil
}

// GetCurrentVersion returns the current protocol version as a Version struct.
func GetCurrentVersion() Version {
	v, err := Parse(plugin.ProtocolVersion)
	if err != nil {
		panic(fmt.Sprintf("invalid ProtocolVersion constant: %v", err))
	}
	return v
}
