// =============================================================================
// Bulk CM Parser - XLSX Sink
// =============================================================================

package sink

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// sheetName is the only sheet of every table workbook.
const sheetName = "Sheet1"

// NewXLSX creates a sink writing one <dir>/<Table>.xlsx workbook per table.
// Rows are streamed; the workbook is saved when the sink closes.
func NewXLSX(dir string, opts Options) *Sink {
	return newSink(dir, ".xlsx", openXLSX, opts)
}

type xlsxFile struct {
	path   string
	book   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func openXLSX(path string, header []string) (tableFile, error) {
	// The workbook is only saved on Close; create the file now so an
	// unwritable destination fails the open.
	check, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	check.Close()

	book := excelize.NewFile()
	stream, err := book.NewStreamWriter(sheetName)
	if err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to create stream writer: %w", err)
	}

	f := &xlsxFile{path: path, book: book, stream: stream}
	if err := f.WriteFields(header); err != nil {
		book.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return f, nil
}

func (f *xlsxFile) WriteFields(fields []string) error {
	if f.row >= excelize.TotalRows {
		return fmt.Errorf("sheet row limit %d reached", excelize.TotalRows)
	}
	f.row++

	cell, err := excelize.CoordinatesToCellName(1, f.row)
	if err != nil {
		return err
	}

	values := make([]interface{}, len(fields))
	for i, v := range fields {
		values[i] = v
	}
	return f.stream.SetRow(cell, values)
}

func (f *xlsxFile) Close() error {
	defer f.book.Close()

	if err := f.stream.Flush(); err != nil {
		return fmt.Errorf("failed to flush sheet: %w", err)
	}
	if err := f.book.SaveAs(f.path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}
