package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/hashicorp/go-plugin"
)

// Serve runs impl as a go-plugin analyzer. It blocks until the host
// disconnects.
func Serve(impl Analyzer) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			AnalyzerPluginName: &AnalyzerRPC{Impl: impl},
		},
	})
}

// WriteInfo writes impl's metadata in the --plugin-info format.
func WriteInfo(w io.Writer, impl Analyzer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(impl.GetMetadata()); err != nil {
		return fmt.Errorf("failed to encode plugin info: %w", err)
	}
	return nil
}

// ServeJSON answers a single json-stdio request: it reads an AnalyseRequest
// from in and writes the resulting Report to out.
func ServeJSON(ctx context.Context, impl Analyzer, in io.Reader, out io.Writer) error {
	var req AnalyseRequest
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("failed to decode analyse request: %w", err)
	}

	report, err := impl.Analyse(ctx, req)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(out).Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}
