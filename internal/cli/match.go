package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/spraydex/internal/catalog"
	"github.com/jmylchreest/spraydex/internal/match"
)

// matchView is one ranked catalog colour in command output.
type matchView struct {
	Rank       int     `json:"rank"`
	ColorID    string  `json:"colorId"`
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Hex        string  `json:"hex"`
	SeriesID   string  `json:"seriesId"`
	SeriesName string  `json:"seriesName"`
	BrandName  string  `json:"brandName"`
	Distance   float64 `json:"distance"`
	Similarity int     `json:"similarity"`
}

// queryResult groups the ranked matches of one query colour.
type queryResult struct {
	Query   string      `json:"query"`
	Channel string      `json:"channel,omitempty"`
	Matches []matchView `json:"matches"`
}

func newMatchCmd(a *app) *cobra.Command {
	var (
		format    string
		seriesIDs []string
	)

	cmd := &cobra.Command{
		Use:   "match <hex>...",
		Short: "Find the catalog colours closest to hex colours",
		Long: `Rank catalog colours by perceptual distance (CIE76 in Lab space) to each
hex colour given. Restrict the candidates with --series; without it the
whole catalog is searched.`,
		Example: `  spraydex match '#3a5f0b' --series S1,S2
  spraydex match ff8800 00aaff -k 5 --format json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			idx, err := a.index(cmd.Context())
			if err != nil {
				return err
			}
			candidates, err := resolveSeries(idx, seriesIDs)
			if err != nil {
				return err
			}

			matcher := match.New(a.logger.Named("match"))
			results := make([]queryResult, 0, len(args))
			for _, q := range args {
				ranked, err := matcher.FindClosestK(q, candidates, a.cfg.TopK)
				if err != nil {
					return err
				}
				results = append(results, a.queryResult(idx, q, "", ranked))
			}

			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			return a.writeResults(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	cmd.Flags().StringSliceVarP(&seriesIDs, "series", "s", nil, "series to search, comma separated (default: all)")
	return cmd
}

func (a *app) queryResult(idx *catalog.Index, query, channel string, ranked []match.Match) queryResult {
	views := make([]matchView, len(ranked))
	for i, m := range ranked {
		v := matchView{
			Rank:       i + 1,
			ColorID:    m.Color.ID,
			Code:       m.Color.Code,
			Name:       m.Color.DisplayName(a.cfg.Language),
			Hex:        m.Color.Hex,
			SeriesID:   m.Color.SeriesID,
			Distance:   m.Distance,
			Similarity: m.Similarity,
		}
		if s, ok := idx.Series(m.Color.SeriesID); ok {
			v.SeriesName = s.Name
			if b, ok := idx.Brand(s.BrandID); ok {
				v.BrandName = b.Name
			}
		}
		views[i] = v
	}
	return queryResult{Query: query, Channel: channel, Matches: views}
}

// writeResults prints one block per query: a heading with the query colour
// followed by its ranked matches.
func (a *app) writeResults(w io.Writer, results []queryResult) error {
	for i, r := range results {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}

		heading := strings.ToUpper(r.Query)
		if !strings.HasPrefix(heading, "#") {
			heading = "#" + heading
		}
		heading = a.label(r.Query, heading)
		if r.Channel != "" {
			heading = r.Channel + " " + heading
		}
		if _, err := fmt.Fprintln(w, heading); err != nil {
			return err
		}

		if len(r.Matches) == 0 {
			if _, err := fmt.Fprintln(w, "  no matches"); err != nil {
				return err
			}
			continue
		}

		table := a.swatchTable("#", "Code", "Name", "Series", "Brand", "Hex", "Match")
		offset := 0
		if a.preview {
			offset = 1
		}
		table.SetAlignRight(offset)
		table.SetAlignRight(offset + 6)
		for _, m := range r.Matches {
			a.addSwatchRow(table, m.Hex,
				strconv.Itoa(m.Rank), m.Code, m.Name, m.SeriesName, m.BrandName, m.Hex,
				strconv.Itoa(m.Similarity)+"%")
		}
		if err := table.Write(w); err != nil {
			return err
		}
	}
	return nil
}
