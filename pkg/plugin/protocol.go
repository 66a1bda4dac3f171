package plugin

// PluginInfo contains metadata about an analyzer plugin.
type PluginInfo struct {
	Name            string `json:"name"`
	Type            string `json:"type"` // always "analyzer"
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	PluginProtocol  string `json:"plugin_protocol"` // "json-stdio" or "go-plugin"
}
