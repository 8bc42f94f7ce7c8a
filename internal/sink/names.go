// =============================================================================
// Bulk CM Parser - Output File Names
// =============================================================================
//
// Table names are case-sensitive, file systems often are not. Each table gets
// a base name that no other table shares ignoring case: a fixed rename for
// known clashes, then the configured renames, then a numeric suffix.
//
// =============================================================================

package sink

import (
	"strconv"
	"strings"
)

// collisionRenames gives fixed file names to known tables that differ from
// another vendor table only by case. Ericsson dumps carry both
// EUtranFreqRelation and EutranFreqRelation (the latter under UtranCell); on
// case-insensitive filesystems both would otherwise share one file.
var collisionRenames = map[string]string{
	"EutranFreqRelation":       "EutranFreqRelation_UtranCell",
	"vsDataEutranFreqRelation": "vsDataEutranFreqRelation_UtranCell",
}

// fileNamer assigns each table a file base name that is unique ignoring case.
type fileNamer struct {
	renames map[string]string

	// names is table -> base name.
	names map[string]string

	// owners is lower-cased base name -> table.
	owners map[string]string
}

func newFileNamer(renames map[string]string) *fileNamer {
	merged := make(map[string]string, len(collisionRenames)+len(renames))
	for k, v := range collisionRenames {
		merged[k] = v
	}
	for k, v := range renames {
		merged[k] = v
	}
	return &fileNamer{
		renames: merged,
		names:   make(map[string]string),
		owners:  make(map[string]string),
	}
}

// Name returns the base name for table. A name already taken by another
// table (ignoring case) gets the first free "_<n>" suffix, n >= 2.
func (n *fileNamer) Name(table string) string {
	if name, ok := n.names[table]; ok {
		return name
	}

	base := table
	if renamed, ok := n.renames[table]; ok {
		base = renamed
	}

	name := base
	for i := 2; ; i++ {
		owner, taken := n.owners[strings.ToLower(name)]
		if !taken || owner == table {
			break
		}
		name = base + "_" + strconv.Itoa(i)
	}

	n.owners[strings.ToLower(name)] = table
	n.names[table] = name
	return name
}
