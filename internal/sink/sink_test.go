package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type recordingReporter struct {
	messages []string
}

func (r *recordingReporter) Error(msg string, args ...interface{}) {
	r.messages = append(r.messages, fmt.Sprintf(msg, args...))
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return records
}

func TestCSVSink_HeaderOncePerTable(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(dir, Options{})

	header := []string{"FILENAME", "DATETIME", "Cell_id", "p1"}
	require.NoError(t, s.WriteRow("Cell", header, []string{"a.xml", "", "1", "x"}))
	require.NoError(t, s.WriteRow("Cell", header, []string{"a.xml", "", "2", "y"}))
	require.NoError(t, s.WriteRow("Site", []string{"FILENAME", "DATETIME"}, []string{"a.xml", ""}))
	require.NoError(t, s.Close())

	assert.Equal(t, [][]string{
		header,
		{"a.xml", "", "1", "x"},
		{"a.xml", "", "2", "y"},
	}, readCSV(t, filepath.Join(dir, "Cell.csv")))

	assert.Equal(t, 3, s.Rows())
	assert.Equal(t, []string{filepath.Join(dir, "Cell.csv"), filepath.Join(dir, "Site.csv")}, s.Files())
}

func TestCSVSink_Quoting(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(dir, Options{})

	value := `say "hi", then leave`
	require.NoError(t, s.WriteRow("T", []string{"FILENAME", "DATETIME", "v"}, []string{"a.xml", "", value}))
	require.NoError(t, s.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "T.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"say ""hi"", then leave"`)

	records := readCSV(t, filepath.Join(dir, "T.csv"))
	require.Len(t, records, 2)
	assert.Equal(t, value, records[1][2])
}

func TestCSVSink_OpenFailureDropsRows(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")
	reporter := &recordingReporter{}
	s := NewCSV(missing, Options{Reporter: reporter})

	for i := 0; i < 3; i++ {
		require.NoError(t, s.WriteRow("Cell", []string{"FILENAME"}, []string{"a.xml"}))
	}
	require.NoError(t, s.Close())

	assert.Equal(t, 3, s.Dropped())
	assert.Zero(t, s.Rows())
	assert.Len(t, reporter.messages, 1, "the failure is reported once")
	assert.Contains(t, reporter.messages[0], "Cell")
	assert.Equal(t, []string{"Cell"}, s.FailedTables())
}

func TestCSVSink_CaseCollisions(t *testing.T) {
	dir := t.TempDir()
	s := NewCSV(dir, Options{Renames: map[string]string{"Custom": "custom_table"}})

	header := []string{"FILENAME"}
	tables := []string{
		"EutranFreqRelation", "EUtranFreqRelation",
		"vsDataEutranFreqRelation", "vsDataEUtranFreqRelation",
		"meContext", "UtranCell", "utrancell", "Custom",
	}
	for _, table := range tables {
		require.NoError(t, s.WriteRow(table, header, []string{table}))
	}
	require.NoError(t, s.Close())

	var names []string
	for _, f := range s.Files() {
		names = append(names, filepath.Base(f))
	}
	assert.Equal(t, []string{
		"EutranFreqRelation_UtranCell.csv",
		"EUtranFreqRelation.csv",
		"vsDataEutranFreqRelation_UtranCell.csv",
		"vsDataEUtranFreqRelation.csv",
		"meContext.csv",
		"UtranCell.csv",
		"utrancell_2.csv",
		"custom_table.csv",
	}, names)

	records := readCSV(t, filepath.Join(dir, "utrancell_2.csv"))
	assert.Equal(t, "utrancell", records[1][0])
}

func TestFileNamer_KnownCollisionIndependentOfOrder(t *testing.T) {
	for _, order := range [][]string{
		{"EUtranFreqRelation", "EutranFreqRelation"},
		{"EutranFreqRelation", "EUtranFreqRelation"},
	} {
		n := newFileNamer(nil)
		for _, table := range order {
			n.Name(table)
		}
		assert.Equal(t, "EUtranFreqRelation", n.Name("EUtranFreqRelation"))
		assert.Equal(t, "EutranFreqRelation_UtranCell", n.Name("EutranFreqRelation"))
	}
}

func TestCSVSink_WriteAfterClose(t *testing.T) {
	s := NewCSV(t.TempDir(), Options{})
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Error(t, s.WriteRow("T", []string{"a"}, []string{"b"}))
}

func TestFileNamer_Stable(t *testing.T) {
	n := newFileNamer(nil)

	assert.Equal(t, "Cell", n.Name("Cell"))
	assert.Equal(t, "CELL_2", n.Name("CELL"))
	assert.Equal(t, "cell_3", n.Name("cell"))
	assert.Equal(t, "CELL_2", n.Name("CELL"))
}

func TestXLSXSink_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewXLSX(dir, Options{})

	header := []string{"FILENAME", "DATETIME", "Cell_id", "p1"}
	require.NoError(t, s.WriteRow("Cell", header, []string{"a.xml", "2024", "1", `x, "quoted"`}))
	require.NoError(t, s.WriteRow("Cell", header, []string{"b.xml", "", "2", "y"}))
	require.NoError(t, s.Close())

	book, err := excelize.OpenFile(filepath.Join(dir, "Cell.xlsx"))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(book.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, header, rows[0])
	assert.Equal(t, []string{"a.xml", "2024", "1", `x, "quoted"`}, rows[1])
	assert.Equal(t, "y", rows[2][3])
}

func TestXLSXSink_OpenFailure(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	s := NewXLSX(missing, Options{})

	require.NoError(t, s.WriteRow("Cell", []string{"FILENAME"}, []string{"a.xml"}))
	require.NoError(t, s.Close())
	assert.Equal(t, 1, s.Dropped())
	assert.True(t, strings.HasSuffix(s.FailedTables()[0], "Cell"))
}
