package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/spraydex/internal/catalog"
	"github.com/jmylchreest/spraydex/internal/colour"
	"github.com/jmylchreest/spraydex/internal/config"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
)

// defaultWidth is assumed when stdout is not a terminal.
const defaultWidth = 100

// app carries state shared by all commands of one invocation.
type app struct {
	cfg     *config.Config
	verbose bool
	quiet   bool

	logger  hclog.Logger
	preview bool
	width   int
	store   *catalog.Store
}

// setup runs before every command, after flags are parsed.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := a.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	level := hclog.Warn
	switch {
	case a.verbose:
		level = hclog.Debug
	case a.quiet:
		level = hclog.Error
	}
	a.logger = hclog.New(&hclog.LoggerOptions{
		Name:   "spraydex",
		Level:  level,
		Output: cmd.ErrOrStderr(),
	})

	ansi := false
	a.width = defaultWidth
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		ansi = colour.SupportsANSIColours(f)
		a.width = colour.TerminalWidth(f, defaultWidth)
	}
	a.preview = a.cfg.PreviewEnabled(ansi)
	colour.DisableColourOutput = !a.preview

	a.store = catalog.NewStore(nil)
	return nil
}

// index loads the catalog on first use.
func (a *app) index(ctx context.Context) (*catalog.Index, error) {
	if idx := a.store.Index(); idx != nil {
		return idx, nil
	}

	policy, err := a.cfg.IntegrityPolicy()
	if err != nil {
		return nil, err
	}

	err = a.store.Reload(ctx, func(ctx context.Context) (*catalog.Index, error) {
		return catalog.Load(ctx, a.cfg.CatalogDir,
			catalog.WithLogger(a.logger.Named("catalog")),
			catalog.WithIntegrityPolicy(policy),
			catalog.WithPrecomputedLab(),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", a.cfg.CatalogDir, err)
	}

	idx := a.store.Index()
	stats := idx.Stats()
	a.logger.Debug("catalog loaded", "path", a.cfg.CatalogDir,
		"brands", stats.Brands, "series", stats.Series, "colors", stats.Colors, "excluded", stats.Excluded)
	return idx, nil
}

// swatch renders a small colour block, or nothing when previews are off.
func (a *app) swatch(hex string) string {
	if !a.preview {
		return ""
	}
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		return ""
	}
	return colour.ColourPreview(rgb, 4)
}

// label renders text on a block of the colour hex when previews are on.
func (a *app) label(hex, text string) string {
	if !a.preview {
		return text
	}
	rgb, err := colour.ParseHex(hex)
	if err != nil {
		return text
	}
	return colour.ColourPreviewWithText(rgb, text, len(text)+2)
}

// info prints progress to stderr unless --quiet is set.
func (a *app) info(cmd *cobra.Command, format string, args ...any) {
	if a.quiet {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
}

func validateFormat(format string) error {
	switch format {
	case formatText, formatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid: text, json)", format)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// resolveSeries returns the colours of the requested series, or the whole
// catalog when ids is empty. Unknown ids are an error.
func resolveSeries(idx *catalog.Index, ids []string) ([]catalog.Color, error) {
	if len(ids) == 0 {
		return idx.Colors(), nil
	}

	var unknown []string
	for _, id := range ids {
		if _, ok := idx.Series(id); !ok {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown series: %s", strings.Join(unknown, ", "))
	}
	return idx.ColorsForSeries(ids...), nil
}

// swatchTable creates a table with a leading preview column when previews
// are enabled.
func (a *app) swatchTable(headers ...string) *Table {
	if a.preview {
		headers = append([]string{""}, headers...)
	}
	return NewTable(headers...)
}

// addSwatchRow adds a row to a table made by swatchTable.
func (a *app) addSwatchRow(t *Table, hex string, cells ...string) {
	if a.preview {
		cells = append([]string{a.swatch(hex)}, cells...)
	}
	t.AddRow(cells...)
}
