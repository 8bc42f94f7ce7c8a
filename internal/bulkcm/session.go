// =============================================================================
// Bulk CM Parser - Session (Pipeline Driver)
// =============================================================================
//
// A Session owns every piece of parser state for one batch of documents.
// Nothing is global, so sessions can be created side by side (tests do).
//
// BATCH STATE MACHINE:
//   EXTRACTING_PARAMETERS  discovery pass over all documents; the schema
//                          registry collects every table's columns
//   EXTRACTING_VALUES      emission pass over all documents; rows are laid
//                          out in the frozen schema and written
//   DONE                   sinks closed
//
// Discovery runs over the whole batch before the first row is written, so a
// column that first appears in the last document still exists (empty) in the
// rows of the first one.
//
// FAILURES:
//   A document that fails to parse is reported and skipped. Its rows are
//   buffered until the document completes, so no partial row is written.
//   Sinks are closed at the end of the batch in every case.
//
// =============================================================================

package bulkcm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
	"github.com/ginjaninja78/bulkcm-parser/internal/xmlsource"
	"github.com/google/uuid"
)

// =============================================================================
// STATES
// =============================================================================

// State is the batch state.
type State int

const (
	StateExtractingParameters State = iota + 1
	StateExtractingValues
	StateDone
)

func (s State) String() string {
	switch s {
	case StateExtractingParameters:
		return "EXTRACTING_PARAMETERS"
	case StateExtractingValues:
		return "EXTRACTING_VALUES"
	case StateDone:
		return "DONE"
	default:
		return "UNKNOWN"
	}
}

// =============================================================================
// OPTIONS AND RESULTS
// =============================================================================

// Options configures a Session.
type Options struct {
	// MultiValueSeparator joins repeated attribute values. Default ";".
	MultiValueSeparator string

	// MergeVendorData writes vendor objects to their standard table.
	MergeVendorData bool

	// GenericPrefix is the prefix of generic NRM elements. Default "xn".
	GenericPrefix string

	// AllowList maps table names to their fixed own columns. Nil writes
	// every table with discovered columns.
	AllowList map[string][]string

	// ContinueOnError skips failed documents instead of ending the batch.
	ContinueOnError bool

	// Logger receives progress and failure messages. Nil discards them.
	Logger Logger
}

func (o *Options) applyDefaults() {
	if o.MultiValueSeparator == "" {
		o.MultiValueSeparator = ";"
	}
	if o.GenericPrefix == "" {
		o.GenericPrefix = "xn"
	}
	if o.Logger == nil {
		o.Logger = nopLogger{}
	}
}

// DocumentError is a document that failed to parse.
type DocumentError struct {
	Path string
	Err  error
}

func (e DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e DocumentError) Unwrap() error {
	return e.Err
}

// Result summarises a batch.
type Result struct {
	// RunID identifies the batch.
	RunID string

	// Documents is the number of documents in the batch.
	Documents int

	// Succeeded counts the documents that were fully processed.
	Succeeded int

	// Processed lists the fully processed documents in batch order.
	Processed []string

	// Failed lists the documents that could not be parsed.
	Failed []DocumentError

	// RowsWritten counts the rows handed to the writer.
	RowsWritten int

	// Tables lists the tables in first-seen order.
	Tables []string

	StartTime time.Time
	EndTime   time.Time
}

// =============================================================================
// SESSION
// =============================================================================

// Session runs one batch.
type Session struct {
	opts     Options
	registry *SchemaRegistry
	writer   RowWriter
	parser   *parser
	state    State
	runID    string

	// timestamps holds each document's DATETIME, captured during discovery.
	timestamps map[string]string

	// failed holds the documents that failed during discovery.
	failed map[string]bool

	// handleRow is the row callback of the current pass.
	handleRow func(objectRow)
}

// NewSession creates a session writing to writer. writer may be nil when
// only Discover is used.
func NewSession(opts Options, writer RowWriter) *Session {
	opts.applyDefaults()

	s := &Session{
		opts:       opts,
		registry:   NewSchemaRegistry(allowedTables(opts.AllowList, opts.MergeVendorData)),
		writer:     writer,
		state:      StateExtractingParameters,
		runID:      uuid.New().String(),
		timestamps: make(map[string]string),
		failed:     make(map[string]bool),
	}
	s.parser = newParser(opts, func(obj objectRow) { s.handleRow(obj) })
	return s
}

// allowedTables keys the allow-list by output table. In merge mode a listed
// vendor type names the standard table it is written to; when both names are
// listed their columns are combined.
func allowedTables(allow map[string][]string, merge bool) map[string][]string {
	if allow == nil || !merge {
		return allow
	}

	names := make([]string, 0, len(allow))
	for name := range allow {
		names = append(names, name)
	}
	sort.Strings(names)

	tables := make(map[string][]string, len(allow))
	for _, name := range names {
		table := name
		if strings.HasPrefix(name, vendorTypeMarker) {
			table = vendorTable(name, true)
		}
		for _, col := range allow[name] {
			if !slices.Contains(tables[table], col) {
				tables[table] = append(tables[table], col)
			}
		}
		if _, ok := tables[table]; !ok {
			tables[table] = nil
		}
	}
	return tables
}

// RunID returns the batch identifier.
func (s *Session) RunID() string {
	return s.runID
}

// State returns the current batch state.
func (s *Session) State() State {
	return s.state
}

// Registry returns the schema registry.
func (s *Session) Registry() *SchemaRegistry {
	return s.registry
}

// Discover runs the discovery pass only and freezes the schema.
func (s *Session) Discover(ctx context.Context, paths []string) (*Result, error) {
	result := s.newResult(paths)

	err := s.discover(ctx, paths, result)
	s.registry.Freeze()
	s.state = StateDone

	s.finish(result)
	return result, err
}

// Run executes both passes over paths and closes the writer.
func (s *Session) Run(ctx context.Context, paths []string) (result *Result, err error) {
	if s.writer == nil {
		return nil, errors.New("session has no row writer")
	}

	result = s.newResult(paths)

	defer func() {
		if cerr := s.writer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output: %w", cerr)
		}
		s.state = StateDone
		s.finish(result)
	}()

	if err := s.discover(ctx, paths, result); err != nil {
		return result, err
	}
	s.registry.Freeze()

	s.state = StateExtractingValues
	s.opts.Logger.Info("Discovered %d table(s), writing values", len(s.registry.Tables()))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if s.failed[path] {
			continue
		}

		rows, err := s.emitDocument(path)
		if err != nil {
			// The document parsed during discovery, so this is an I/O
			// problem; treat it like any other document failure.
			if ferr := s.fail(result, path, err); ferr != nil {
				return result, ferr
			}
			continue
		}

		for _, row := range rows {
			if err := s.writer.WriteRow(row.table, row.header, row.fields); err != nil {
				return result, fmt.Errorf("failed to write %s row: %w", row.table, err)
			}
			result.RowsWritten++
		}
		result.Succeeded++
		result.Processed = append(result.Processed, path)
	}

	return result, nil
}

// =============================================================================
// PASSES
// =============================================================================

func (s *Session) discover(ctx context.Context, paths []string, result *Result) error {
	s.state = StateExtractingParameters

	// Objects are observed once their document has parsed completely, so a
	// malformed document contributes no columns.
	var observed []objectRow
	s.handleRow = func(obj objectRow) {
		observed = append(observed, obj)
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		observed = observed[:0]
		s.opts.Logger.Debug("Extracting parameters from %s", path)
		if err := s.parseDocument(path); err != nil {
			if ferr := s.fail(result, path, err); ferr != nil {
				return ferr
			}
			continue
		}

		for _, obj := range observed {
			s.registry.Observe(obj.Table, obj.Ancestors.Keys(), obj.Values.Keys())
		}
		s.timestamps[path] = s.parser.DateTime()
	}
	return nil
}

// emitDocument parses path and returns its rows laid out in the frozen schema.
func (s *Session) emitDocument(path string) ([]pendingRow, error) {
	filename := filepath.Base(path)
	dateTime := s.timestamps[path]

	var rows []pendingRow
	s.handleRow = func(obj objectRow) {
		if row, ok := layoutRow(s.registry, obj, filename, dateTime); ok {
			rows = append(rows, row)
		}
	}

	s.opts.Logger.Debug("Extracting values from %s", path)
	if err := s.parseDocument(path); err != nil {
		return nil, err
	}
	return rows, nil
}

// parseDocument feeds every event of path to the parser. Parser state is
// reset before and after, whatever the outcome.
func (s *Session) parseDocument(path string) error {
	s.parser.Reset()
	defer s.parser.Reset()

	src, err := xmlsource.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	return feed(src, s.parser)
}

// eventSource is the part of xmlsource.Source the driver needs.
type eventSource interface {
	Next() (types.Event, error)
}

func feed(src eventSource, p *parser) error {
	for {
		ev, err := src.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.Handle(ev); err != nil {
			return err
		}
	}
}

// fail records a document failure. It returns a non-nil error when the
// batch must stop.
func (s *Session) fail(result *Result, path string, err error) error {
	derr := DocumentError{Path: path, Err: err}
	result.Failed = append(result.Failed, derr)
	s.failed[path] = true
	s.opts.Logger.Error("Failed to parse %s: %v", path, err)

	if !s.opts.ContinueOnError {
		return derr
	}
	return nil
}

func (s *Session) newResult(paths []string) *Result {
	return &Result{
		RunID:     s.runID,
		Documents: len(paths),
		StartTime: time.Now(),
	}
}

func (s *Session) finish(result *Result) {
	if result == nil {
		return
	}
	result.Tables = s.registry.Tables()
	result.EndTime = time.Now()
}
