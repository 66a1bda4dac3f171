// Package protocol detects how an analyzer plugin talks to spraydex and
// whether its protocol version is compatible.
package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// DetectTimeout bounds the --plugin-info query.
const DetectTimeout = 5 * time.Second

// PluginType is an alias to the public plugin.PluginType.
type PluginType = plugin.PluginType

// Protocol types re-exported for internal callers.
const (
	PluginTypeGoPlugin = plugin.PluginTypeGoPlugin
	PluginTypeJSON     = plugin.PluginTypeJSON
)

// PluginInfo is a type alias to the public plugin.PluginInfo type.
// External plugins should import github.com/jmylchreest/spraydex/pkg/plugin directly.
type PluginInfo = plugin.PluginInfo

// DetectorResult contains information about a detected plugin protocol.
type DetectorResult struct {
	// Type indicates which protocol the plugin uses.
	Type PluginType

	// SupportsGoPlugin indicates if the plugin binary has go-plugin support.
	SupportsGoPlugin bool

	// PluginInfo contains metadata from --plugin-info.
	PluginInfo PluginInfo
}

// ErrIncompatible is returned when a plugin's protocol version cannot be used.
var ErrIncompatible = errors.New("incompatible plugin protocol")

// DetectProtocol queries pluginPath with --plugin-info and interprets the answer.
func DetectProtocol(ctx context.Context, pluginPath string) (*DetectorResult, error) {
	ctx, cancel := context.WithTimeout(ctx, DetectTimeout)
	defer cancel()

	output, err := exec.CommandContext(ctx, pluginPath, plugin.PluginInfoFlag).Output()
	if err != nil {
		return nil, fmt.Errorf("failed to query plugin: %w", err)
	}
	return ParsePluginInfo(output)
}

// ParsePluginInfo interprets --plugin-info output. An empty plugin_protocol
// means json-stdio. A protocol_version, when present, must be compatible.
func ParsePluginInfo(output []byte) (*DetectorResult, error) {
	var info PluginInfo
	if err := json.Unmarshal(output, &info); err != nil {
		return nil, fmt.Errorf("failed to parse plugin info: %w", err)
	}

	result := &DetectorResult{
		PluginInfo: info,
	}

	switch PluginType(info.PluginProtocol) {
	case PluginTypeGoPlugin:
		result.Type = PluginTypeGoPlugin
		result.SupportsGoPlugin = true
	case PluginTypeJSON, "":
		result.Type = PluginTypeJSON
	default:
		return nil, fmt.Errorf("unknown plugin_protocol: %s", info.PluginProtocol)
	}

	if info.ProtocolVersion != "" {
		if ok, err := IsCompatible(info.ProtocolVersion); !ok {
			return nil, fmt.Errorf("%w: %s: %w", ErrIncompatible, info.Name, err)
		}
	}

	return result, nil
}
