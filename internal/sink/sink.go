// =============================================================================
// Bulk CM Parser - Table Sinks
// =============================================================================
//
// A Sink owns one output file per table in the output directory. Files are
// opened lazily: the first row of a table creates its file and writes the
// header, later rows are appended. Every file is closed by Close, which the
// session calls once at the end of the batch.
//
// OUTPUT FORMATS:
//   csv   <dir>/<Table>.csv   (encoding/csv)
//   xlsx  <dir>/<Table>.xlsx  (excelize stream writer, one sheet per file)
//
// OPEN FAILURES:
//   When a table file cannot be created the failure is reported once and the
//   table is marked failed; its later rows are dropped and counted. Other
//   tables are unaffected.
//
// =============================================================================

package sink

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Reporter receives open failures. bulkcm.Logger satisfies it.
type Reporter interface {
	Error(msg string, args ...interface{})
}

type nopReporter struct{}

func (nopReporter) Error(string, ...interface{}) {}

// Options configures a Sink.
type Options struct {
	// Renames maps table names to file base names. Entries override the
	// built-in collision renames.
	Renames map[string]string

	// Reporter is told about tables whose file could not be opened.
	Reporter Reporter
}

// tableFile is one open output file.
type tableFile interface {
	WriteFields(fields []string) error
	Close() error
}

// opener creates the file at path and writes header.
type opener func(path string, header []string) (tableFile, error)

// Sink writes rows to one file per table.
type Sink struct {
	dir      string
	ext      string
	open     opener
	names    *fileNamer
	reporter Reporter

	tables map[string]tableFile
	paths  map[string]string
	order  []string
	failed map[string]bool

	rows    int
	dropped int
	closed  bool
}

func newSink(dir, ext string, open opener, opts Options) *Sink {
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}
	return &Sink{
		dir:      dir,
		ext:      ext,
		open:     open,
		names:    newFileNamer(opts.Renames),
		reporter: reporter,
		tables:   make(map[string]tableFile),
		paths:    make(map[string]string),
		failed:   make(map[string]bool),
	}
}

// WriteRow appends fields to table, creating the table file with header on
// its first row.
func (s *Sink) WriteRow(table string, header, fields []string) error {
	if s.closed {
		return errors.New("sink is closed")
	}
	if s.failed[table] {
		s.dropped++
		return nil
	}

	tf, ok := s.tables[table]
	if !ok {
		path := filepath.Join(s.dir, s.names.Name(table)+s.ext)
		var err error
		tf, err = s.open(path, header)
		if err != nil {
			s.failed[table] = true
			s.dropped++
			s.reporter.Error("Failed to open output for table %s: %v", table, err)
			return nil
		}
		s.tables[table] = tf
		s.paths[table] = path
		s.order = append(s.order, table)
	}

	if err := tf.WriteFields(fields); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.paths[table], err)
	}
	s.rows++
	return nil
}

// Close flushes and closes every table file. It is safe to call twice.
func (s *Sink) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	for _, table := range s.order {
		if err := s.tables[table].Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close %s: %w", s.paths[table], err))
		}
	}
	return errors.Join(errs...)
}

// Rows returns the number of rows written.
func (s *Sink) Rows() int {
	return s.rows
}

// Dropped returns the number of rows lost to tables that could not be opened.
func (s *Sink) Dropped() int {
	return s.dropped
}

// Files returns the written files in the order their tables were opened.
func (s *Sink) Files() []string {
	files := make([]string, 0, len(s.order))
	for _, table := range s.order {
		files = append(files, s.paths[table])
	}
	return files
}

// FailedTables returns the tables whose file could not be opened.
func (s *Sink) FailedTables() []string {
	var tables []string
	for table := range s.failed {
		tables = append(tables, table)
	}
	return tables
}
