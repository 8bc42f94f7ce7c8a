// =============================================================================
// Bulk CM Parser - Params Command
// =============================================================================
//
// This file defines the 'params' command. It runs the discovery pass only and
// writes every discovered table with its own columns in parameter file
// format. The result can be edited down and passed to 'parse -p'.
//
// COMMAND USAGE:
//   bulkcmparser params -i <file|dir> -o <params.txt|params.xlsx> [-m]
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"

	"github.com/ginjaninja78/bulkcm-parser/internal/bulkcm"
	"github.com/ginjaninja78/bulkcm-parser/internal/config"
	"github.com/ginjaninja78/bulkcm-parser/internal/paramfile"
	"github.com/ginjaninja78/bulkcm-parser/pkg/utils"
	"github.com/spf13/cobra"
)

var paramsOpts struct {
	input  string
	output string
	merge  bool
}

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Write the discovered tables and columns as a parameter file",
	Long: `The params command reads the input documents once and writes every table
with its attribute columns, one table per line:

  vsDataSomeMO:parameter1,parameter2

An output path ending in .xlsx is written as a workbook instead. Edit the file
to keep the tables and columns you need, then pass it to 'parse -p'.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("input") {
			cfg.Input = paramsOpts.input
		}
		if cmd.Flags().Changed("merge") {
			cfg.MergeVendorData = paramsOpts.merge
		}
		return runParams(cmd.Context(), cfg, paramsOpts.output)
	},
}

// runParams runs discovery over cfg.Input and writes the tables found, with
// their own columns, to output.
func runParams(ctx context.Context, cfg *config.Config, output string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	files, isDir, err := utils.DiscoverInputFiles(cfg.Input)
	if err != nil {
		return err
	}

	session := bulkcm.NewSession(bulkcm.Options{
		MultiValueSeparator: cfg.MultiValueSeparator,
		MergeVendorData:     cfg.MergeVendorData,
		GenericPrefix:       cfg.GenericPrefix,
		ContinueOnError:     isDir && cfg.ShouldContinueOnError(),
		Logger:              newLogger(cfg),
	}, nil)

	result, err := session.Discover(ctx, files)
	if err != nil {
		return err
	}

	registry := session.Registry()
	entries := make([]paramfile.Entry, 0, len(result.Tables))
	for _, table := range result.Tables {
		entry, _ := registry.Entry(table)
		entries = append(entries, paramfile.Entry{Table: table, Columns: entry.Columns()})
	}

	if err := paramfile.Save(output, entries); err != nil {
		return err
	}

	fmt.Printf("Wrote %d table(s) from %d document(s) to %s\n", len(entries), len(files)-len(result.Failed), output)
	return nil
}

func init() {
	rootCmd.AddCommand(paramsCmd)

	paramsCmd.Flags().StringVarP(&paramsOpts.input, "input", "i", "", "Bulk CM XML file or directory")
	paramsCmd.Flags().StringVarP(&paramsOpts.output, "output", "o", "", "Parameter file to write (.txt or .xlsx)")
	paramsCmd.Flags().BoolVarP(&paramsOpts.merge, "merge", "m", false, "Name vendor tables after their standard MO")
	paramsCmd.MarkFlagRequired("output")
}
