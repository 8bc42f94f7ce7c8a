// =============================================================================
// Bulk CM Parser - Parameter File (Column Allow-List)
// =============================================================================
//
// A parameter file restricts the output to the listed tables and fixes their
// own columns. It comes in two formats, chosen by file extension.
//
// TEXT FORMAT (any extension other than .xlsx):
//
//   # comment
//   vsDataSomeMO:parameter1,parameter2
//   UtranCell:userLabel,cellId
//
//   Blank lines and lines starting with '#' are ignored. A line without ':'
//   lists a table with no own columns.
//
// XLSX FORMAT (.xlsx):
//
//   | Column A     | Column B               | Column C ... |
//   |--------------|------------------------|--------------|
//   | Table        | Columns                |              |
//   | vsDataSomeMO | parameter1,parameter2  |              |
//   | UtranCell    | userLabel              | cellId       |
//
//   The first sheet is read. A first row whose column A is "Table" is a
//   header. Columns come from column B onward; a cell may hold several
//   comma separated names.
//
// The `params` command writes the discovered schema in either format so it
// can be edited and passed back with --parameter-file.
//
// =============================================================================

package paramfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry is one table of a parameter file.
type Entry struct {
	// Table is the output table name.
	Table string

	// Columns are the own columns, in output order.
	Columns []string
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the parameter file at path.
//
// PARAMETERS:
//   - path: A text file, or an .xlsx workbook.
//
// RETURNS:
//   - The allow-list: table name -> own columns.
//   - An error if the file cannot be read or a line is malformed.
func Load(path string) (map[string][]string, error) {
	if isWorkbook(path) {
		return LoadXLSX(path)
	}
	return LoadText(path)
}

// LoadText reads a text parameter file.
func LoadText(path string) (map[string][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter file: %w", err)
	}
	defer file.Close()

	allow := make(map[string][]string)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		table, cols, _ := strings.Cut(line, ":")
		table = strings.TrimSpace(table)
		if table == "" {
			return nil, fmt.Errorf("line %d: missing table name", lineNum)
		}
		addColumns(allow, table, splitColumns(cols))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parameter file: %w", err)
	}

	return allow, nil
}

// addColumns appends cols to table, skipping duplicates. The table is
// recorded even when cols is empty.
func addColumns(allow map[string][]string, table string, cols []string) {
	existing, ok := allow[table]
	if !ok {
		existing = []string{}
	}
	seen := make(map[string]bool, len(existing))
	for _, c := range existing {
		seen[c] = true
	}
	for _, c := range cols {
		if !seen[c] {
			seen[c] = true
			existing = append(existing, c)
		}
	}
	allow[table] = existing
}

func splitColumns(s string) []string {
	var cols []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

// =============================================================================
// WRITING
// =============================================================================

// Save writes entries to path, as a workbook when path ends in .xlsx and as
// text otherwise.
func Save(path string, entries []Entry) error {
	if isWorkbook(path) {
		return SaveXLSX(path, entries)
	}
	return SaveText(path, entries)
}

// SaveText writes entries in the text format.
func SaveText(path string, entries []Entry) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create parameter file: %w", err)
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, e := range entries {
		fmt.Fprintf(w, "%s:%s\n", e.Table, strings.Join(e.Columns, ","))
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write parameter file: %w", err)
	}
	return file.Close()
}

func isWorkbook(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".xlsx")
}
