// Package version reports how a spraydex binary was built and which analyzer
// protocol it speaks. Release builds inject Version, Commit and Date with
// ldflags, for example:
//
//	-ldflags "-X github.com/jmylchreest/spraydex/internal/version.Version=1.2.0"
//
// Builds without ldflags (go install, go run) fall back to the module and VCS
// data the Go toolchain embeds.
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// Build metadata, overridden with -ldflags -X.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// readBuildInfo is swapped in tests.
var readBuildInfo = debug.ReadBuildInfo

// Info describes a build.
type Info struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Date     string `json:"date"`
	Modified bool   `json:"modified,omitempty"`
	// AnalyzerProtocol is the plugin protocol version this build speaks and
	// the oldest analyzer protocol it still accepts.
	AnalyzerProtocol    string `json:"analyzerProtocol"`
	MinAnalyzerProtocol string `json:"minAnalyzerProtocol"`
	GoVersion           string `json:"goVersion"`
	Platform            string `json:"platform"`
}

// GetInfo returns the build information, filling fields not set by ldflags
// from the embedded build info.
func GetInfo() Info {
	info := Info{
		Version:             Version,
		Commit:              Commit,
		Date:                Date,
		AnalyzerProtocol:    plugin.ProtocolVersion,
		MinAnalyzerProtocol: plugin.MinCompatibleVersion,
		GoVersion:           runtime.Version(),
		Platform:            runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if info.Version == "dev" && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = strings.TrimPrefix(bi.Main.Version, "v")
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			if info.Commit == "unknown" {
				info.Commit = s.Value
			}
		case "vcs.time":
			if info.Date == "unknown" {
				info.Date = s.Value
			}
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

// String returns a one-line description of the build for the named program.
func String(program string) string {
	info := GetInfo()

	var details []string
	if info.Commit != "unknown" {
		commit := shortCommit(info.Commit)
		if info.Modified {
			commit += "-dirty"
		}
		details = append(details, "commit: "+commit)
	}
	if info.Date != "unknown" {
		details = append(details, "built: "+info.Date)
	}
	details = append(details, "analyzer protocol: "+info.AnalyzerProtocol, info.GoVersion, info.Platform)

	return fmt.Sprintf("%s version %s (%s)", program, info.Version, strings.Join(details, ", "))
}

// Short returns the version alone, as used by --version.
func Short() string {
	return GetInfo().Version
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
