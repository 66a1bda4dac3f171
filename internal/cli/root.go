// Package cli provides the command-line interface for spraydex.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/spraydex/internal/config"
	"github.com/jmylchreest/spraydex/internal/version"
)

// Execute builds the command tree and runs it against os.Args.
// This is called by main.main().
func Execute() {
	if err := ExecuteContext(context.Background(), os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// ExecuteContext runs the CLI with explicit arguments.
func ExecuteContext(ctx context.Context, args []string) error {
	cmd, err := newRootCmd()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// newRootCmd creates the root command. Configuration is resolved from
// defaults and SPRAYDEX_* variables first; flags override it during parsing.
func newRootCmd() (*cobra.Command, error) {
	cfg, err := config.NewBuilder().WithEnvConfig().Build()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg}

	rootCmd := &cobra.Command{
		Use:   "spraydex",
		Short: "Spray paint catalog browser and colour matcher",
		Long: `spraydex indexes spray paint catalogs (brands, series and colours) and finds
the catalog colours that look closest to a given colour.

Match hex colours directly, or analyse an image and match its swatches
against the series you own.`,
		Version:           version.Short(),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "suppress non-error output")
	cfg.BindFlags(flags)

	rootCmd.SetVersionTemplate(version.String("spraydex") + "\n")

	rootCmd.AddCommand(
		newVersionCmd(),
		newBrandsCmd(a),
		newSeriesCmd(a),
		newColorsCmd(a),
		newStatsCmd(a),
		newMatchCmd(a),
		newPaletteCmd(a),
	)

	return rootCmd, nil
}

func newVersionCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long: `Print detailed version information including build date, commit hash,
the analyzer plugin protocol version and Go version.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			if format == formatJSON {
				return writeJSON(cmd.OutOrStdout(), version.GetInfo())
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.String("spraydex"))
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format (text, json)")
	return cmd
}
