package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/spraydex/internal/analyzer"
	"github.com/jmylchreest/spraydex/internal/image"
	"github.com/jmylchreest/spraydex/internal/match"
	"github.com/jmylchreest/spraydex/internal/plugin/executor"
	"github.com/jmylchreest/spraydex/internal/security"
	"github.com/jmylchreest/spraydex/internal/swatch"
	"github.com/jmylchreest/spraydex/pkg/plugin"
)

// paletteOutput is the JSON shape of the palette command.
type paletteOutput struct {
	Report  swatch.Report `json:"report"`
	Palette []string      `json:"palette"`
	Best    []matchView   `json:"best"`
	Results []queryResult `json:"results"`
}

func newPaletteCmd(a *app) *cobra.Command {
	var (
		format     string
		reportPath string
		imagePath  string
		seriesIDs  []string
	)

	cmd := &cobra.Command{
		Use:   "palette",
		Short: "Match an image's swatches against the catalog",
		Long: `Read a swatch report (JSON with channels such as dominant, vibrant and
background) or analyse an image, reduce it to at most 8 distinct hex colours
and find the closest catalog colour for each.

Images are analysed by the built-in sampler unless --analyzer names an
external analyzer plugin.`,
		Example: `  spraydex palette --report swatches.json --series S1
  spraydex palette --image wall.jpg -k 3
  analyzer-tool wall.jpg | spraydex palette --report -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if (reportPath == "") == (imagePath == "") {
				return errors.New("exactly one of --report or --image is required")
			}

			idx, err := a.index(cmd.Context())
			if err != nil {
				return err
			}
			candidates, err := resolveSeries(idx, seriesIDs)
			if err != nil {
				return err
			}

			var report swatch.Report
			if reportPath != "" {
				report, err = readReport(cmd.InOrStdin(), reportPath)
			} else {
				report, err = a.analyse(cmd.Context(), imagePath)
			}
			if err != nil {
				return err
			}

			hexes := swatch.ExtractHexPalette(report)
			a.logger.Debug("extracted palette", "swatches", len(hexes))
			if len(hexes) == 0 {
				a.info(cmd, "report contains no valid swatches")
			}

			matcher := match.New(a.logger.Named("match"))
			best, err := matcher.MatchPalette(hexes, candidates)
			if err != nil {
				return err
			}

			out := paletteOutput{
				Report:  report,
				Palette: hexes,
				Best:    a.queryResult(idx, "", "", best).Matches,
				Results: make([]queryResult, 0, len(hexes)),
			}
			for _, h := range hexes {
				ranked, err := matcher.FindClosestK(h, candidates, a.cfg.TopK)
				if err != nil {
					return err
				}
				out.Results = append(out.Results, a.queryResult(idx, h, channelOf(report, h), ranked))
			}

			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			return a.writePalette(cmd.OutOrStdout(), report, best, out)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	cmd.Flags().StringVarP(&reportPath, "report", "r", "", "swatch report JSON file (- for stdin)")
	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "image to analyse")
	cmd.Flags().StringSliceVarP(&seriesIDs, "series", "s", nil, "series to search, comma separated (default: all)")
	return cmd
}

func readReport(stdin io.Reader, path string) (swatch.Report, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path) // #nosec G304 - User-specified report path, intended to be read
		if err != nil {
			return swatch.Report{}, fmt.Errorf("failed to open report: %w", err)
		}
		defer f.Close()
		r = f
	}

	report, err := swatch.ParseReport(r)
	if err != nil {
		return swatch.Report{}, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	return report, nil
}

// analyse runs the configured analyzer on an image.
func (a *app) analyse(ctx context.Context, imagePath string) (swatch.Report, error) {
	if err := image.ValidateImagePath(imagePath); err != nil {
		return swatch.Report{}, fmt.Errorf("invalid image path: %w", err)
	}
	abs, err := filepath.Abs(imagePath)
	if err != nil {
		return swatch.Report{}, fmt.Errorf("failed to resolve image path: %w", err)
	}

	req := plugin.AnalyseRequest{ImagePath: abs, Verbose: a.verbose}
	logger := a.logger.Named("analyzer")

	if a.cfg.AnalyzerPath == "" {
		return analyzer.NewSampleAnalyzer(logger).Analyse(ctx, req)
	}

	analyzerPath, err := security.ValidateAnalyzerPath(a.cfg.AnalyzerPath)
	if err != nil {
		return swatch.Report{}, err
	}
	exec, err := executor.New(ctx, analyzerPath, executor.WithLogger(logger))
	if err != nil {
		return swatch.Report{}, err
	}
	defer exec.Close()

	return exec.Analyse(ctx, req)
}

// channelOf names the first channel carrying hex, matching case-insensitively.
func channelOf(r swatch.Report, hex string) string {
	for _, ch := range swatch.Channels() {
		if strings.EqualFold(ch.Value(r), hex) {
			return ch.Name
		}
	}
	return ""
}

func (a *app) writePalette(w io.Writer, report swatch.Report, best []match.Match, out paletteOutput) error {
	if len(best) == 0 {
		_, err := fmt.Fprintln(w, "no matches")
		return err
	}

	table := a.swatchTable("Swatch", "Hex", "Code", "Name", "Series", "Match")
	offset := 0
	if a.preview {
		offset = 1
	}
	table.SetAlignRight(offset + 5)
	for i, m := range best {
		v := out.Best[i]
		a.addSwatchRow(table, m.Color.Hex,
			channelOf(report, m.QueryHex), strings.ToUpper(m.QueryHex), v.Code, v.Name, v.SeriesName,
			strconv.Itoa(v.Similarity)+"%")
	}
	if err := table.Write(w); err != nil {
		return err
	}

	if a.cfg.TopK <= 1 {
		return nil
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	return a.writeResults(w, out.Results)
}
