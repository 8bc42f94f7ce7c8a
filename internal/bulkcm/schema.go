// =============================================================================
// Bulk CM Parser - Schema Registry
// =============================================================================
//
// The schema registry fixes the column layout of every table before any row
// is written. It has two modes:
//
//   DISCOVERY: every completed object adds its unseen ancestor-id and own
//              column names to its table, in first-seen order.
//   FROZEN:    the layout is read-only; attributes outside it are ignored.
//
// Tables listed in a column allow-list use the listed own columns verbatim;
// only their ancestor-id columns are discovered. When an allow-list is given,
// tables not on it get no entry and are never written.
//
// =============================================================================

package bulkcm

// Fixed leading columns of every table.
const (
	FilenameColumn = "FILENAME"
	DateTimeColumn = "DATETIME"
)

// SchemaEntry is the column layout of one table.
type SchemaEntry struct {
	// Table is the table name.
	Table string

	ancestors *orderedSet
	columns   *orderedSet

	// fixed is set when the own columns come from the allow-list.
	fixed bool
}

// AncestorColumns returns the ancestor-id columns in order.
func (e *SchemaEntry) AncestorColumns() []string {
	return e.ancestors.Names()
}

// Columns returns the own attribute columns in order. Listed names that are
// already leading or ancestor-id columns are left out, so every header name
// appears once and those fields keep their real values.
func (e *SchemaEntry) Columns() []string {
	names := e.columns.Names()
	if !e.fixed {
		return names
	}

	own := make([]string, 0, len(names))
	for _, name := range names {
		if name == FilenameColumn || name == DateTimeColumn || e.ancestors.Has(name) {
			continue
		}
		own = append(own, name)
	}
	return own
}

// Header returns the full header: FILENAME, DATETIME, ancestors, columns.
func (e *SchemaEntry) Header() []string {
	header := make([]string, 0, 2+e.ancestors.Len()+e.columns.Len())
	header = append(header, FilenameColumn, DateTimeColumn)
	header = append(header, e.ancestors.Names()...)
	header = append(header, e.Columns()...)
	return header
}

// SchemaRegistry holds one SchemaEntry per table for the whole batch.
type SchemaRegistry struct {
	entries map[string]*SchemaEntry
	order   []string

	// allow is the column allow-list; nil means every table is written.
	allow map[string][]string

	frozen bool
}

// NewSchemaRegistry creates a registry. allow may be nil.
func NewSchemaRegistry(allow map[string][]string) *SchemaRegistry {
	return &SchemaRegistry{
		entries: make(map[string]*SchemaEntry),
		allow:   allow,
	}
}

// Allowed reports whether rows of table are written at all.
func (r *SchemaRegistry) Allowed(table string) bool {
	if r.allow == nil {
		return true
	}
	_, ok := r.allow[table]
	return ok
}

// Observe records the columns of one object of table. It is a no-op once the
// registry is frozen or when the table is not allowed.
func (r *SchemaRegistry) Observe(table string, ancestors, columns []string) {
	if r.frozen || !r.Allowed(table) {
		return
	}

	entry, ok := r.entries[table]
	if !ok {
		entry = &SchemaEntry{
			Table:     table,
			ancestors: newOrderedSet(),
			columns:   newOrderedSet(),
		}
		if listed, ok := r.allow[table]; ok {
			entry.columns = newOrderedSet(listed...)
			entry.fixed = true
		}
		r.entries[table] = entry
		r.order = append(r.order, table)
	}

	for _, name := range ancestors {
		entry.ancestors.Add(name)
	}
	if entry.fixed {
		return
	}
	for _, name := range columns {
		entry.columns.Add(name)
	}
}

// Freeze ends discovery.
func (r *SchemaRegistry) Freeze() {
	r.frozen = true
}

// Frozen reports whether discovery has ended.
func (r *SchemaRegistry) Frozen() bool {
	return r.frozen
}

// Entry returns the layout of table.
func (r *SchemaRegistry) Entry(table string) (*SchemaEntry, bool) {
	e, ok := r.entries[table]
	return e, ok
}

// Tables returns the known tables in first-seen order.
func (r *SchemaRegistry) Tables() []string {
	return r.order
}
