// =============================================================================
// Bulk CM Parser - Parameter Workbooks
// =============================================================================
//
// Workbook layout, first sheet only:
//
//   | Table        | Columns             |
//   | MeContext    | userLabel           |
//   | vsDataSomeMO | parameter1,param2   |
//
// The header row is optional. Columns may also be spread over B, C, ...
//
// =============================================================================

package paramfile

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// headerCell marks an optional header row in column A.
const headerCell = "Table"

// LoadXLSX reads the first sheet of a parameter workbook.
//
// PARAMETERS:
//   - path: The path to the .xlsx file.
//
// RETURNS:
//   - The allow-list: table name -> own columns.
//   - An error if the workbook cannot be opened or has no sheets.
func LoadXLSX(path string) (map[string][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open parameter workbook: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("parameter workbook has no sheets")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	allow := make(map[string][]string)
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		table := strings.TrimSpace(row[0])
		if table == "" || strings.HasPrefix(table, "#") {
			continue
		}
		if i == 0 && strings.EqualFold(table, headerCell) {
			continue
		}

		var cols []string
		for _, cell := range row[1:] {
			cols = append(cols, splitColumns(cell)...)
		}
		addColumns(allow, table, cols)
	}

	return allow, nil
}

// SaveXLSX writes entries as a workbook with a header row, one table per row
// and the columns comma separated in column B.
func SaveXLSX(path string, entries []Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if err := f.SetSheetRow(sheetName, "A1", &[]interface{}{headerCell, "Columns"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{e.Table, strings.Join(e.Columns, ",")}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s: %w", e.Table, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save parameter workbook: %w", err)
	}
	return nil
}
