// spraydex-analyzer - Swatch report analyzer (spraydex plugin)
//
// Turns an image into a swatch report (dominant, vibrant, background, ...)
// for `spraydex palette --image`. Two backends are available:
//
//   sample  average and border colours of the image (default)
//   genai   swatches chosen by a Google Gemini model (needs GOOGLE_API_KEY)
//
// Build:
//   go build -o spraydex-analyzer ./cmd/spraydex-analyzer
//
// Usage:
//   SPRAYDEX_ANALYZER_BACKEND=genai spraydex --analyzer ./spraydex-analyzer palette --image wall.jpg
//   spraydex-analyzer --image wall.jpg                       # print the report
//   spraydex-analyzer --protocol json-stdio < request.json    # single JSON request
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/pflag"

	"github.com/jmylchreest/spraydex/internal/analyzer"
	"github.com/jmylchreest/spraydex/internal/version"
	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// Environment variables read by the analyzer. spraydex starts analyzers
// without arguments, so they are the only way to configure a plugin run.
const (
	envBackend  = "SPRAYDEX_ANALYZER_BACKEND"
	envProtocol = "SPRAYDEX_ANALYZER_PROTOCOL"
	envModel    = "SPRAYDEX_ANALYZER_MODEL"
	envGenAI    = "SPRAYDEX_ANALYZER_GENAI_BACKEND"
	envLogLevel = "SPRAYDEX_ANALYZER_LOG"
)

type options struct {
	backend    string
	protocol   string
	model      string
	genaiAPI   string
	image      string
	logLevel   string
	pluginInfo bool
	version    bool
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	opts := options{}
	fs := pflag.NewFlagSet("spraydex-analyzer", pflag.ContinueOnError)
	fs.StringVar(&opts.backend, "backend", envOr(envBackend, "sample"), "analysis backend: sample, genai")
	fs.StringVar(&opts.protocol, "protocol", envOr(envProtocol, string(plugin.PluginTypeGoPlugin)), "plugin protocol: go-plugin, json-stdio")
	fs.StringVar(&opts.model, "model", envOr(envModel, analyzer.DefaultGenAIModel), "model for the genai backend")
	fs.StringVar(&opts.genaiAPI, "genai-backend", envOr(envGenAI, analyzer.BackendGeminiAPI), "genai API: gemini-api, vertex-ai")
	fs.StringVar(&opts.image, "image", "", "analyse an image and print its report")
	fs.StringVar(&opts.logLevel, "log-level", envOr(envLogLevel, "info"), "log level (trace, debug, info, warn, error)")
	fs.BoolVar(&opts.pluginInfo, strings.TrimPrefix(plugin.PluginInfoFlag, "--"), false, "print plugin metadata as JSON")
	fs.BoolVar(&opts.version, "version", false, "print version information")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	if opts.version {
		fmt.Println(version.String("spraydex-analyzer"))
		return nil
	}

	protocol := plugin.PluginType(opts.protocol)
	if protocol != plugin.PluginTypeGoPlugin && protocol != plugin.PluginTypeJSON {
		return fmt.Errorf("invalid protocol: %s (valid: %s, %s)", opts.protocol, plugin.PluginTypeGoPlugin, plugin.PluginTypeJSON)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "spraydex-analyzer",
		Level:  hclog.LevelFromString(opts.logLevel),
		Output: os.Stderr,
		// go-plugin hosts parse JSON log lines from stderr.
		JSONFormat: protocol == plugin.PluginTypeGoPlugin && opts.image == "" && !opts.pluginInfo,
	})

	impl, err := newAnalyzer(opts, logger)
	if err != nil {
		return err
	}
	impl = withProtocol{Analyzer: impl, protocol: protocol}

	if opts.pluginInfo {
		return plugin.WriteInfo(os.Stdout, impl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case opts.image != "":
		report, err := impl.Analyse(ctx, plugin.AnalyseRequest{ImagePath: opts.image, Verbose: logger.IsDebug()})
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(report)
	case protocol == plugin.PluginTypeJSON:
		return plugin.ServeJSON(ctx, impl, os.Stdin, os.Stdout)
	default:
		logger.Debug("serving analyzer", "backend", opts.backend)
		plugin.Serve(impl)
		return nil
	}
}

func newAnalyzer(opts options, logger hclog.Logger) (plugin.Analyzer, error) {
	switch opts.backend {
	case "sample":
		return analyzer.NewSampleAnalyzer(logger.Named("sample")), nil
	case "genai":
		return analyzer.NewGenAIAnalyzer(analyzer.GenAIConfig{
			Model:   opts.model,
			Backend: opts.genaiAPI,
		}, logger.Named("genai")), nil
	default:
		return nil, fmt.Errorf("invalid backend: %s (valid: sample, genai)", opts.backend)
	}
}

// withProtocol reports the protocol the binary is actually serving.
type withProtocol struct {
	plugin.Analyzer
	protocol plugin.PluginType
}

func (w withProtocol) GetMetadata() plugin.PluginInfo {
	info := w.Analyzer.GetMetadata()
	info.PluginProtocol = string(w.protocol)
	return info
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
