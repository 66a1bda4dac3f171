package plugin

import (
	"github.com/jmylchreest/spraydex/internal/swatch"
)

// Report is the swatch report an analyzer returns. Any channel may be empty.
type Report = swatch.Report

// AnalyseRequest describes the image to analyse.
type AnalyseRequest struct {
	ImagePath  string         `json:"image_path"`
	Verbose    bool           `json:"verbose"`
	PluginArgs map[string]any `json:"plugin_args,omitempty"`
}
