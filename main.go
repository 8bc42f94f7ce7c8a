// =============================================================================
// Bulk CM Parser - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Bulk CM Parser CLI application. It
// delegates command execution to the cmd package.
//
// USAGE:
//   bulkcmparser parse    - Convert Bulk CM XML documents to per-table files
//   bulkcmparser params   - Write the discovered columns as a parameter file
//   bulkcmparser version  - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Parser core, XML event source, sinks, configuration
//   - pkg/       : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/bulkcm-parser/cmd"
)

func main() {
	cmd.Execute()
}
