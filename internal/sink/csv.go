// =============================================================================
// Bulk CM Parser - CSV Sink
// =============================================================================

package sink

import (
	"encoding/csv"
	"fmt"
	"os"
)

// NewCSV creates a sink writing <dir>/<Table>.csv files. Fields containing a
// comma, a quote or a line break are quoted with inner quotes doubled.
func NewCSV(dir string, opts Options) *Sink {
	return newSink(dir, ".csv", openCSV, opts)
}

type csvFile struct {
	file *os.File
	w    *csv.Writer
}

func openCSV(path string, header []string) (tableFile, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	f := &csvFile{file: file, w: csv.NewWriter(file)}
	if err := f.WriteFields(header); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	return f, nil
}

func (f *csvFile) WriteFields(fields []string) error {
	return f.w.Write(fields)
}

func (f *csvFile) Close() error {
	f.w.Flush()
	if err := f.w.Error(); err != nil {
		f.file.Close()
		return err
	}
	return f.file.Close()
}
