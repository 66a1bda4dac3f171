package plugin

import (
	"context"
)

// Analyzer is implemented by image analyzers. It turns an image into a
// swatch report; spraydex does the catalog matching itself.
type Analyzer interface {
	// Analyse produces a swatch report for the requested image.
	Analyse(ctx context.Context, req AnalyseRequest) (Report, error)

	// GetMetadata returns plugin metadata.
	GetMetadata() PluginInfo
}
