package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/spraydex/internal/catalog"
)

type brandView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Series      int    `json:"series"`
	Colors      int    `json:"colors"`
}

type seriesView struct {
	ID          string `json:"id"`
	BrandID     string `json:"brandId"`
	BrandName   string `json:"brandName"`
	Name        string `json:"name"`
	Finish      string `json:"finishType,omitempty"`
	Pressure    string `json:"pressureType,omitempty"`
	Description string `json:"description,omitempty"`
	Colors      int    `json:"colors"`
}

type colorView struct {
	ID       string `json:"id"`
	SeriesID string `json:"seriesId"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Hex      string `json:"hex"`
}

func newBrandsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "brands",
		Short: "List catalog brands",
		Long:  `List every brand in the catalog with its number of series and colours.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			idx, err := a.index(cmd.Context())
			if err != nil {
				return err
			}

			brands := idx.BrandsWithCount()
			views := make([]brandView, len(brands))
			for i, bc := range brands {
				views[i] = brandView{
					ID:          bc.Brand.ID,
					Name:        bc.Brand.Name,
					Description: bc.Brand.Description.Resolve(a.cfg.Language),
					Series:      len(idx.SeriesByBrand(bc.Brand.ID)),
					Colors:      bc.ColorCount,
				}
			}

			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}

			table := NewTable("ID", "Name", "Series", "Colours", "Description")
			table.SetAlignRight(2)
			table.SetAlignRight(3)
			table.SetColumnMaxWidth(4, max(a.width-50, 30))
			for _, v := range views {
				table.AddRow(v.ID, v.Name, strconv.Itoa(v.Series), strconv.Itoa(v.Colors), v.Description)
			}
			return table.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	return cmd
}

func newSeriesCmd(a *app) *cobra.Command {
	var (
		format  string
		brandID string
	)

	cmd := &cobra.Command{
		Use:   "series",
		Short: "List catalog series",
		Long:  `List series with their brand, finish, pressure and number of colours.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			idx, err := a.index(cmd.Context())
			if err != nil {
				return err
			}
			if brandID != "" {
				if _, ok := idx.Brand(brandID); !ok {
					return fmt.Errorf("unknown brand: %s", brandID)
				}
			}

			series := idx.SeriesWithCount(brandID)
			views := make([]seriesView, len(series))
			for i, sc := range series {
				views[i] = seriesView{
					ID:          sc.Series.ID,
					BrandID:     sc.Series.BrandID,
					BrandName:   sc.BrandName,
					Name:        sc.Series.Name,
					Finish:      string(sc.Series.FinishType),
					Pressure:    string(sc.Series.PressureType),
					Description: sc.Series.Description.Resolve(a.cfg.Language),
					Colors:      sc.ColorCount,
				}
			}

			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), views)
			}

			table := NewTable("ID", "Brand", "Name", "Finish", "Pressure", "Colours")
			table.SetAlignRight(5)
			for _, v := range views {
				table.AddRow(v.ID, v.BrandName, v.Name, v.Finish, v.Pressure, strconv.Itoa(v.Colors))
			}
			return table.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	cmd.Flags().StringVarP(&brandID, "brand", "b", "", "only list series of this brand")
	return cmd
}

func newColorsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "colors <series-id>",
		Aliases: []string{"colours"},
		Short:   "List the colours of a series",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			idx, err := a.index(cmd.Context())
			if err != nil {
				return err
			}
			if _, ok := idx.Series(args[0]); !ok {
				return fmt.Errorf("unknown series: %s", args[0])
			}

			colors := idx.ColorsBySeries(args[0])
			if format == formatJSON {
				views := make([]colorView, len(colors))
				for i, c := range colors {
					views[i] = a.colorView(c)
				}
				return writeJSON(cmd.OutOrStdout(), views)
			}

			table := a.swatchTable("Code", "Name", "Hex")
			for _, c := range colors {
				a.addSwatchRow(table, c.Hex, c.Code, c.DisplayName(a.cfg.Language), c.Hex)
			}
			return table.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	return cmd
}

func newStatsCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarise the loaded catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			idx, err := a.index(cmd.Context())
			if err != nil {
				return err
			}

			stats := idx.Stats()
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}

			table := NewTable("Brands", "Series", "Colours", "Excluded")
			for i := range 4 {
				table.SetAlignRight(i)
			}
			table.AddRow(strconv.Itoa(stats.Brands), strconv.Itoa(stats.Series), strconv.Itoa(stats.Colors), strconv.Itoa(stats.Excluded))
			return table.Write(cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	return cmd
}

func (a *app) colorView(c catalog.Color) colorView {
	return colorView{
		ID:       c.ID,
		SeriesID: c.SeriesID,
		Code:     c.Code,
		Name:     c.DisplayName(a.cfg.Language),
		Hex:      c.Hex,
	}
}
