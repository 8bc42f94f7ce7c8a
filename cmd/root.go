// =============================================================================
// Bulk CM Parser - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (bulkcmparser)
//   ├── parseCmd   (bulkcmparser parse)
//   ├── paramsCmd  (bulkcmparser params)
//   └── versionCmd (bulkcmparser version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the YAML configuration shared by the subcommands
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/bulkcm-parser/internal/bulkcm"
	"github.com/ginjaninja78/bulkcm-parser/internal/config"
	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// defaultConfigFile is read when present; --config makes the file required.
const defaultConfigFile = "config.yaml"

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "bulkcmparser",
	Short: "Bulk CM Parser - Convert 3GPP Bulk CM XML into per-MO CSV files",
	Long: `Bulk CM Parser converts 3GPP Bulk CM configuration data XML documents
into one flat file per managed object type.

Every row is one managed object instance. The columns are FILENAME, DATETIME,
the identifying attributes of every ancestor, then the object's own
attributes. Vendor specific data (vsData<Type>) gets its own tables, or is
merged into the standard table with --merge.

Example Usage:
  bulkcmparser parse -i dump.xml -o out/              # One document
  bulkcmparser parse -i dumps/ -o out/ -p params.txt  # A directory, selected columns
  bulkcmparser params -i dumps/ -o params.txt         # Write the discovered columns`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// Persistent flags are available to this command and all subcommands.
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		defaultConfigFile,
		"Path to the configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadConfig reads the configuration file. The default file is optional; a
// file named with --config must exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	optional := !cmd.Flags().Changed("config")
	cfg, err := config.Load(cfgFile, optional)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// newLogger creates the console logger for cfg. Log lines go to stderr so
// they never mix with command output.
func newLogger(cfg *config.Config) bulkcm.Logger {
	return bulkcm.NewConsoleLogger(os.Stderr, cfg.LogLevel)
}
