// Package analyzer contains the reference analyzers served by
// spraydex-analyzer. They turn an image into a swatch report that the core
// matches against the catalog.
package analyzer

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/spraydex/internal/image"
	"github.com/jmylchreest/spraydex/internal/swatch"
	"github.com/jmylchreest/spraydex/internal/version"
	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// SampleAnalyzer fills the average and background channels by sampling
// pixels. It does no segmentation.
type SampleAnalyzer struct {
	loader  image.Loader
	sampler *image.Sampler
	logger  hclog.Logger
}

// NewSampleAnalyzer creates a SampleAnalyzer reading images from disk.
func NewSampleAnalyzer(logger hclog.Logger) *SampleAnalyzer {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &SampleAnalyzer{
		loader:  image.NewFileLoader(),
		sampler: image.NewSampler(),
		logger:  logger,
	}
}

// Analyse implements plugin.Analyzer. The "border_percent" plugin arg
// overrides the border thickness.
func (a *SampleAnalyzer) Analyse(ctx context.Context, req plugin.AnalyseRequest) (swatch.Report, error) {
	if err := ctx.Err(); err != nil {
		return swatch.Report{}, err
	}

	img, err := a.loader.Load(req.ImagePath)
	if err != nil {
		return swatch.Report{}, err
	}

	sampler := *a.sampler
	if pct, ok := req.PluginArgs["border_percent"].(float64); ok {
		sampler.BorderPercent = int(pct)
	}

	avg, err := sampler.Average(img)
	if err != nil {
		return swatch.Report{}, fmt.Errorf("failed to average image: %w", err)
	}
	border, err := sampler.Border(img)
	if err != nil {
		return swatch.Report{}, fmt.Errorf("failed to sample border: %w", err)
	}

	report := swatch.Report{
		Average:    avg.Hex(),
		Background: border.Hex(),
	}
	a.logger.Debug("sampled image", "path", req.ImagePath, "bounds", img.Bounds(), "average", report.Average, "background", report.Background)
	return report, nil
}

// GetMetadata implements plugin.Analyzer.
func (a *SampleAnalyzer) GetMetadata() plugin.PluginInfo {
	return metadata("sample", "Average and border colours by pixel sampling")
}

func metadata(name, description string) plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            name,
		Type:            "analyzer",
		Version:         version.Short(),
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     description,
		PluginProtocol:  string(plugin.PluginTypeGoPlugin),
	}
}
