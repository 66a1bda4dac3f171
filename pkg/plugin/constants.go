// Package plugin provides the public API for spraydex analyzer plugins.
package plugin

import (
	"github.com/hashicorp/go-plugin"
)

const (
	// ProtocolVersion defines the current analyzer API version.
	// Format: MAJOR.MINOR.PATCH.
	// - Increment MAJOR for breaking changes (incompatible API changes).
	// - Increment MINOR for backward-compatible additions.
	// - Increment PATCH for backward-compatible bug fixes.
	ProtocolVersion = "1.0.0"

	// MinCompatibleVersion is the oldest protocol version this spraydex version can work with.
	MinCompatibleVersion = "1.0.0"

	// AnalyzerPluginName is the name the analyzer is dispensed under.
	AnalyzerPluginName = "analyzer"

	// PluginInfoFlag makes an analyzer binary print its PluginInfo as JSON and exit.
	PluginInfoFlag = "--plugin-info"
)

// Handshake is the handshake configuration for go-plugin protocol.
// go-plugin only compares the major version; the full version check happens
// against PluginInfo.ProtocolVersion.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1, // Major version from ProtocolVersion
	MagicCookieKey:   "SPRAYDEX_ANALYZER",
	MagicCookieValue: "spraydex_swatch_report",
}

// PluginType defines the type of plugin communication protocol.
type PluginType string

const (
	// PluginTypeGoPlugin indicates the plugin uses HashiCorp go-plugin RPC protocol.
	PluginTypeGoPlugin PluginType = "go-plugin"

	// PluginTypeJSON indicates the plugin reads an AnalyseRequest on stdin and
	// writes a Report to stdout.
	PluginTypeJSON PluginType = "json-stdio"
)
