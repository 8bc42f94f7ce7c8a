// =============================================================================
// Bulk CM Parser - Parse Command
// =============================================================================
//
// This file defines the 'parse' command, which runs a batch of Bulk CM
// documents through the parser and writes one file per table.
//
// COMMAND USAGE:
//   bulkcmparser parse -i <file|dir> -o <dir> [flags]
//
// FLAGS:
//   -i, --input                 Bulk CM XML file, or directory of *.xml files
//   -o, --output-dir            Directory for the per-table files
//   -p, --parameter-file        Column allow-list (text or .xlsx)
//   -m, --merge                 Merge vendor data into the standard tables
//       --multivalue-separator  Separator for repeated attribute values
//       --generic-prefix        Namespace prefix of generic NRM elements
//       --format                csv or xlsx
//       --summary               Write a processing summary file
//
// PROCESSING PIPELINE:
//   1. Load configuration, apply flags
//   2. Check the output directory (fatal before any parsing)
//   3. Discover input documents
//   4. Load the parameter file, if any
//   5. Run the batch: discovery pass, then emission pass
//   6. Print the per-document outcome and the summary
//
// A failing document is skipped when a directory is parsed. A single
// document that fails ends the command with an error.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/ginjaninja78/bulkcm-parser/internal/bulkcm"
	"github.com/ginjaninja78/bulkcm-parser/internal/config"
	"github.com/ginjaninja78/bulkcm-parser/internal/paramfile"
	"github.com/ginjaninja78/bulkcm-parser/internal/sink"
	"github.com/ginjaninja78/bulkcm-parser/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

type parseFlags struct {
	input         string
	outputDir     string
	parameterFile string
	merge         bool
	separator     string
	genericPrefix string
	format        string
	summary       bool
}

var parseOpts parseFlags

// =============================================================================
// PARSE COMMAND DEFINITION
// =============================================================================

var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse Bulk CM XML into per-table CSV files",
	Long: `The parse command reads one Bulk CM document, or every *.xml document under
a directory, and writes one file per managed object table to the output
directory.

All documents are read twice. The first pass discovers the columns of every
table across the whole batch; the second writes the rows, so every row of a
table has the same columns.

On error:
  - A malformed document is reported and none of its rows are written
  - In directory mode the remaining documents are still processed
  - A missing or unwritable output directory stops before parsing`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		applyParseFlags(cmd, cfg)
		return runParse(cmd.Context(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(parseCmd)

	f := parseCmd.Flags()
	f.StringVarP(&parseOpts.input, "input", "i", "", "Bulk CM XML file or directory")
	f.StringVarP(&parseOpts.outputDir, "output-dir", "o", "", "Output directory (default \".\")")
	f.StringVarP(&parseOpts.parameterFile, "parameter-file", "p", "", "Column allow-list file (text or .xlsx)")
	f.BoolVarP(&parseOpts.merge, "merge", "m", false, "Merge vendor data into the standard MO tables")
	f.StringVar(&parseOpts.separator, "multivalue-separator", "", "Separator for repeated attribute values (default \";\")")
	f.StringVar(&parseOpts.genericPrefix, "generic-prefix", "", "Namespace prefix of generic NRM elements (default \"xn\")")
	f.StringVar(&parseOpts.format, "format", "", "Output format: csv or xlsx (default \"csv\")")
	f.BoolVar(&parseOpts.summary, "summary", false, "Write a processing summary file to the output directory")
}

// applyParseFlags overrides configuration values with the flags that were set.
func applyParseFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") {
		cfg.Input = parseOpts.input
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = parseOpts.outputDir
	}
	if flags.Changed("parameter-file") {
		cfg.ParameterFile = parseOpts.parameterFile
	}
	if flags.Changed("merge") {
		cfg.MergeVendorData = parseOpts.merge
	}
	if flags.Changed("multivalue-separator") {
		cfg.MultiValueSeparator = parseOpts.separator
	}
	if flags.Changed("generic-prefix") {
		cfg.GenericPrefix = parseOpts.genericPrefix
	}
	if flags.Changed("format") {
		cfg.OutputFormat = parseOpts.format
	}
	if flags.Changed("summary") {
		cfg.WriteSummary = parseOpts.summary
	}
	cfg.ApplyDefaults()
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runParse(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := utils.CheckOutputDir(cfg.OutputDir); err != nil {
		return err
	}

	logger := newLogger(cfg)

	files, isDir, err := utils.DiscoverInputFiles(cfg.Input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Printf("No %s files found in %s\n", utils.InputExtension, cfg.Input)
		return nil
	}
	logger.Info("Found %d document(s) to parse", len(files))

	var allow map[string][]string
	if cfg.ParameterFile != "" {
		if !utils.FileExists(cfg.ParameterFile) {
			return fmt.Errorf("parameter file not found: %s", cfg.ParameterFile)
		}
		allow, err = paramfile.Load(cfg.ParameterFile)
		if err != nil {
			return err
		}
		logger.Info("Loaded %d table(s) from %s", len(allow), cfg.ParameterFile)
	}

	out := newSink(cfg, logger)

	session := bulkcm.NewSession(bulkcm.Options{
		MultiValueSeparator: cfg.MultiValueSeparator,
		MergeVendorData:     cfg.MergeVendorData,
		GenericPrefix:       cfg.GenericPrefix,
		AllowList:           allow,
		ContinueOnError:     isDir && cfg.ShouldContinueOnError(),
		Logger:              logger,
	}, out)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	result, runErr := session.Run(ctx, files)
	if result != nil {
		printOutcome(files, result, out)
		if cfg.WriteSummary {
			writeSummary(cfg, result, out, logger)
		}
	}

	return runErr
}

func newSink(cfg *config.Config, logger bulkcm.Logger) *sink.Sink {
	opts := sink.Options{Renames: cfg.TableRenames, Reporter: logger}
	if cfg.OutputFormat == config.FormatXLSX {
		return sink.NewXLSX(cfg.OutputDir, opts)
	}
	return sink.NewCSV(cfg.OutputDir, opts)
}

// =============================================================================
// OUTPUT
// =============================================================================

func printOutcome(files []string, result *bulkcm.Result, out *sink.Sink) {
	ok := color.New(color.FgGreen).SprintFunc()
	fail := color.New(color.FgRed).SprintFunc()
	skip := color.New(color.FgYellow).SprintFunc()

	failed := make(map[string]error, len(result.Failed))
	for _, f := range result.Failed {
		failed[f.Path] = f.Err
	}
	processed := make(map[string]bool, len(result.Processed))
	for _, p := range result.Processed {
		processed[p] = true
	}

	for _, path := range files {
		switch err, bad := failed[path]; {
		case bad:
			fmt.Printf("  %s %s: %v\n", fail("✗"), filepath.Base(path), err)
		case processed[path]:
			fmt.Printf("  %s %s\n", ok("✓"), filepath.Base(path))
		default:
			fmt.Printf("  %s %s: not processed\n", skip("-"), filepath.Base(path))
		}
	}

	fmt.Println("\n=== Parsing Complete ===")
	fmt.Printf("Run ID:          %s\n", result.RunID)
	fmt.Printf("Documents:       %d\n", result.Documents)
	fmt.Printf("Successful:      %d\n", result.Succeeded)
	fmt.Printf("Errors:          %d\n", len(result.Failed))
	fmt.Printf("Tables:          %d\n", len(out.Files()))
	fmt.Printf("Rows written:    %d\n", out.Rows())
	if dropped := out.Dropped(); dropped > 0 {
		color.Yellow("Rows dropped:    %d (tables that could not be opened: %v)", dropped, out.FailedTables())
	}
	fmt.Printf("Time elapsed:    %s\n", result.EndTime.Sub(result.StartTime))
}

func writeSummary(cfg *config.Config, result *bulkcm.Result, out *sink.Sink, logger bulkcm.Logger) {
	summary := utils.ProcessingSummary{
		RunID:           result.RunID,
		StartTime:       result.StartTime,
		EndTime:         result.EndTime,
		TotalFiles:      result.Documents,
		SuccessfulFiles: result.Succeeded,
		RowsWritten:     out.Rows(),
		RowsDropped:     out.Dropped(),
		Tables:          result.Tables,
		OutputFiles:     out.Files(),
	}
	for _, f := range result.Failed {
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:    f.Path,
			ErrorMessage: f.Err.Error(),
		})
	}

	path, err := utils.WriteSummaryLog(summary, cfg.OutputDir)
	if err != nil {
		logger.Error("Failed to write summary: %v", err)
		return
	}
	fmt.Printf("Summary written to %s\n", path)
}
