// =============================================================================
// Bulk CM Parser - Configuration Module
// =============================================================================
//
// This module is responsible for loading and validating the parser
// configuration. Configuration comes from two places:
//   1. An optional YAML file (config.yaml by default)
//   2. Command line flags, which override values from the file
//
// Every setting has a default, so the parser runs without a config file.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// FormatCSV writes one CSV file per table.
	FormatCSV = "csv"

	// FormatXLSX writes one XLSX workbook per table.
	FormatXLSX = "xlsx"
)

// ErrNoInput is returned when no input file or directory is configured.
var ErrNoInput = errors.New("no input file or directory specified")

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the parser configuration.
type Config struct {
	// =========================================================================
	// INPUT / OUTPUT
	// =========================================================================

	// Input is a Bulk CM XML file or a directory of XML files.
	Input string `yaml:"input"`

	// OutputDir is the directory where the per-table files are written.
	// It must exist and be writable before parsing starts.
	// Default: "."
	OutputDir string `yaml:"output_dir"`

	// ParameterFile is an optional column allow-list. Lines have the form
	// "TypeName:col1,col2,...". An .xlsx file is read as a workbook with one
	// row per table.
	ParameterFile string `yaml:"parameter_file"`

	// OutputFormat selects the sink: "csv" or "xlsx".
	// Default: "csv"
	OutputFormat string `yaml:"output_format"`

	// =========================================================================
	// PARSING
	// =========================================================================

	// MultiValueSeparator joins the values of repeated attributes.
	// Default: ";"
	MultiValueSeparator string `yaml:"multi_value_separator"`

	// MergeVendorData writes vendor-specific objects to the table of their
	// standard counterpart (vsDataGsmCell -> GsmCell), with the standard
	// object's attributes appended.
	MergeVendorData bool `yaml:"merge_vendor_data"`

	// GenericPrefix is the namespace prefix of the generic NRM elements.
	// Default: "xn"
	GenericPrefix string `yaml:"generic_prefix"`

	// TableRenames maps table names to output file names. It resolves file
	// name collisions on case-insensitive file systems. Entries here are
	// added to the built-in table.
	TableRenames map[string]string `yaml:"table_renames"`

	// =========================================================================
	// PROCESSING
	// =========================================================================

	// ContinueOnError keeps a directory batch going when one document fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// WriteSummary writes a processing summary file to the output directory.
	WriteSummary bool `yaml:"write_summary"`

	// =========================================================================
	// LOGGING
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file at path and applies defaults.
//
// A missing file is not an error when optional is true; the defaults are
// returned instead.
func Load(path string, optional bool) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
		// Fall through to the defaults.
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults sets default values for any unset option.
func (c *Config) ApplyDefaults() {
	if c.OutputDir == "" {
		c.OutputDir = "."
	}
	if c.OutputFormat == "" {
		c.OutputFormat = FormatCSV
	}
	c.OutputFormat = strings.ToLower(c.OutputFormat)
	if c.MultiValueSeparator == "" {
		c.MultiValueSeparator = ";"
	}
	if c.GenericPrefix == "" {
		c.GenericPrefix = "xn"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.ContinueOnError == nil {
		continueOnError := true
		c.ContinueOnError = &continueOnError
	}
}

// ShouldContinueOnError reports the effective continue-on-error setting.
func (c *Config) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration before any document is parsed.
//
// The output directory must exist, be a directory and be writable; this is
// checked by the caller through utils.CheckOutputDir because it touches the
// file system.
func (c *Config) Validate() error {
	if c.Input == "" {
		return ErrNoInput
	}

	switch c.OutputFormat {
	case FormatCSV, FormatXLSX:
	default:
		return fmt.Errorf("unsupported output format %q (want %q or %q)", c.OutputFormat, FormatCSV, FormatXLSX)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unsupported log level %q", c.LogLevel)
	}

	if strings.ContainsAny(c.MultiValueSeparator, "\r\n") {
		return fmt.Errorf("multi-value separator must not contain line breaks")
	}

	return nil
}
