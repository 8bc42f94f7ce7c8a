// =============================================================================
// Bulk CM Parser - Row Emitter
// =============================================================================
//
// A completed object is laid out as
//
//   FILENAME, DATETIME, <ancestor ids...>, <own columns...>
//
// in the frozen order of its table. Rows are held per document and handed to
// the RowWriter only after the document has parsed cleanly.
//
// =============================================================================

package bulkcm

// RowWriter receives finished rows, one table at a time. Implementations
// write the header the first time they see a table.
type RowWriter interface {
	WriteRow(table string, header, fields []string) error
	Close() error
}

// pendingRow is a laid-out row waiting for its document to complete.
type pendingRow struct {
	table  string
	header []string
	fields []string
}

// layoutRow lays obj out in its table's frozen column order. Values missing
// from obj are empty; values outside the layout are dropped. ok is false for
// tables without a schema entry (not allowed, or never discovered).
func layoutRow(registry *SchemaRegistry, obj objectRow, filename, dateTime string) (pendingRow, bool) {
	entry, ok := registry.Entry(obj.Table)
	if !ok {
		return pendingRow{}, false
	}

	ancestors := entry.AncestorColumns()
	columns := entry.Columns()

	fields := make([]string, 0, 2+len(ancestors)+len(columns))
	fields = append(fields, filename, dateTime)
	for _, name := range ancestors {
		v, _ := obj.Ancestors.Get(name)
		fields = append(fields, v)
	}
	for _, name := range columns {
		v, _ := obj.Values.Get(name)
		fields = append(fields, v)
	}

	return pendingRow{
		table:  obj.Table,
		header: entry.Header(),
		fields: fields,
	}, true
}
