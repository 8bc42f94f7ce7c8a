// =============================================================================
// Bulk CM Parser - File Manager Utility
// =============================================================================
//
// This module provides the file handling around a parse run:
//   - Input discovery (a single document or a directory tree of *.xml)
//   - Output directory checks before any parsing starts
//   - The processing summary log
//
// =============================================================================

package utils

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// InputExtension is the extension of Bulk CM documents in input directories.
const InputExtension = ".xml"

// =============================================================================
// INPUT DISCOVERY
// =============================================================================

// DiscoverInputFiles resolves the input argument to a list of documents.
//
// PARAMETERS:
//   - input: A document path, or a directory scanned recursively for
//     *.xml files (extension matched case-insensitively).
//
// RETURNS:
//   - The document paths, sorted for a stable processing order.
//   - Whether input is a directory.
//   - An error if input does not exist or the directory cannot be walked.
func DiscoverInputFiles(input string) ([]string, bool, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, false, fmt.Errorf("failed to access input: %w", err)
	}

	if !info.IsDir() {
		return []string{input}, false, nil
	}

	var files []string
	err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), InputExtension) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, true, fmt.Errorf("failed to walk input directory: %w", err)
	}

	sort.Strings(files)
	return files, true, nil
}

// =============================================================================
// OUTPUT DIRECTORY
// =============================================================================

// CheckOutputDir verifies that dir exists, is a directory and is writable.
func CheckOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %s is not a directory", dir)
	}

	tmp, err := os.CreateTemp(dir, ".bulkcmparser-*")
	if err != nil {
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)

	return nil
}

// =============================================================================
// PROCESSING SUMMARY
// =============================================================================

// ProcessingSummary contains summary information about a parse run.
type ProcessingSummary struct {
	RunID           string
	StartTime       time.Time
	EndTime         time.Time
	TotalFiles      int
	SuccessfulFiles int
	RowsWritten     int
	RowsDropped     int
	Tables          []string
	OutputFiles     []string
	FailedFilesList []FailedFileInfo
}

// FailedFileInfo contains information about a failed document.
type FailedFileInfo struct {
	InputFile    string
	ErrorMessage string
}

// WriteSummaryLog writes a processing summary to a log file.
//
// PARAMETERS:
//   - summary: The processing summary.
//   - outputDir: The directory to write the summary file.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary ProcessingSummary, outputDir string) (string, error) {
	timestamp := summary.EndTime.Format("20060102_150405")
	summaryPath := filepath.Join(outputDir, fmt.Sprintf("processing_summary_%s.txt", timestamp))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	duration := summary.EndTime.Sub(summary.StartTime)
	fmt.Fprintf(writer, "Bulk CM Parser - Processing Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n\n"+
		"Statistics:\n"+
		"  Total Files:    %d\n"+
		"  Successful:     %d\n"+
		"  Failed:         %d\n"+
		"  Tables:         %d\n"+
		"  Rows Written:   %d\n"+
		"  Rows Dropped:   %d\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		duration.String(),
		summary.TotalFiles,
		summary.SuccessfulFiles,
		len(summary.FailedFilesList),
		len(summary.Tables),
		summary.RowsWritten,
		summary.RowsDropped)

	if len(summary.OutputFiles) > 0 {
		writer.WriteString("Output Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.OutputFiles {
			fmt.Fprintf(writer, "  %s\n", f)
		}
		writer.WriteString("\n")
	}

	if len(summary.FailedFilesList) > 0 {
		writer.WriteString("Failed Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, ff := range summary.FailedFilesList {
			fmt.Fprintf(writer, "  File:  %s\n", ff.InputFile)
			fmt.Fprintf(writer, "  Error: %s\n\n", ff.ErrorMessage)
		}
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
