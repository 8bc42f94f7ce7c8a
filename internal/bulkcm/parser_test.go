package bulkcm

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
	"github.com/ginjaninja78/bulkcm-parser/internal/xmlsource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `<?xml version="1.0" encoding="UTF-8"?>
<bulkCmConfigDataFile xmlns="http://www.3gpp.org/ftp/specs/archive/32_series/32.615#configData"
    xmlns:xn="http://www.3gpp.org/ftp/specs/archive/32_series/32.625#genericNrm"
    xmlns:es="EricssonSpecificAttributes.17.28.xml">
  <fileHeader fileFormatVersion="32.615 V4.5" vendorName="Ericsson"/>
  <configData>
    <xn:SubNetwork id="1">
      <xn:SubNetwork id="101">
        <xn:MeContext id="1">
          <xn:ManagedElement id="1">
            <xn:VsDataContainer id="1">
              <xn:attributes>
                <xn:vsDataType>vsDataSomeMO</xn:vsDataType>
                <xn:vsDataFormatVersion>EricssonSpecificAttributes.17.28</xn:vsDataFormatVersion>
                <es:vsDataSomeMO>
                  <es:parameter1>value1</es:parameter1>
                  <es:parameter2>value2</es:parameter2>
                </es:vsDataSomeMO>
              </xn:attributes>
            </xn:VsDataContainer>
          </xn:ManagedElement>
        </xn:MeContext>
      </xn:SubNetwork>
    </xn:SubNetwork>
  </configData>
  <fileFooter dateTime="2024-03-01T10:00:00+00:00"/>
</bulkCmConfigDataFile>`

// parseRows runs one document through a fresh parser and returns its rows.
func parseRows(t *testing.T, opts Options, doc string) []objectRow {
	t.Helper()

	opts.applyDefaults()
	var rows []objectRow
	p := newParser(opts, func(obj objectRow) { rows = append(rows, obj) })
	require.NoError(t, feed(xmlsource.New(strings.NewReader(doc)), p))
	return rows
}

func findRow(t *testing.T, rows []objectRow, table string) objectRow {
	t.Helper()

	for _, r := range rows {
		if r.Table == table {
			return r
		}
	}
	require.Failf(t, "row not found", "no row for table %s", table)
	return objectRow{}
}

func valuesMap(v *orderedValues) map[string]string {
	m := make(map[string]string, v.Len())
	for _, k := range v.Keys() {
		m[k], _ = v.Get(k)
	}
	return m
}

func TestParser_VendorObjectInNestedHierarchy(t *testing.T) {
	rows := parseRows(t, Options{}, sampleDocument)

	row := findRow(t, rows, "vsDataSomeMO")
	assert.Equal(t, []string{
		"SubNetwork_id",
		"SubNetwork_2_id",
		"MeContext_id",
		"ManagedElement_id",
		"vsDataSomeMO_id",
	}, row.Ancestors.Keys())
	assert.Equal(t, map[string]string{
		"SubNetwork_id":     "1",
		"SubNetwork_2_id":   "101",
		"MeContext_id":      "1",
		"ManagedElement_id": "1",
		"vsDataSomeMO_id":   "1",
	}, valuesMap(row.Ancestors))

	assert.Equal(t, []string{"parameter1", "parameter2"}, row.Values.Keys())
	assert.Equal(t, "value1", mustGet(t, row.Values, "parameter1"))
	assert.Equal(t, "value2", mustGet(t, row.Values, "parameter2"))
}

func TestParser_StructuralRowsUseDisambiguatedNames(t *testing.T) {
	rows := parseRows(t, Options{}, sampleDocument)

	var tables []string
	for _, r := range rows {
		tables = append(tables, r.Table)
	}
	assert.Equal(t, []string{
		"fileHeader",
		"vsDataSomeMO",
		"ManagedElement",
		"MeContext",
		"SubNetwork_2",
		"SubNetwork",
		"configData",
		"fileFooter",
		"bulkCmConfigDataFile",
	}, tables)

	nested := findRow(t, rows, "SubNetwork_2")
	assert.Equal(t, []string{"SubNetwork_id", "SubNetwork_2_id"}, nested.Ancestors.Keys())
}

func TestParser_ContainerMetadataIsNotAVendorType(t *testing.T) {
	rows := parseRows(t, Options{}, sampleDocument)

	for _, r := range rows {
		assert.NotEqual(t, "vsDataType", r.Table)
		assert.NotEqual(t, "vsDataFormatVersion", r.Table)
	}
}

func TestParser_DateTime(t *testing.T) {
	opts := Options{}
	opts.applyDefaults()
	p := newParser(opts, func(objectRow) {})

	require.NoError(t, feed(xmlsource.New(strings.NewReader(sampleDocument)), p))
	assert.Equal(t, "2024-03-01T10:00:00+00:00", p.DateTime())

	p.Reset()
	headerFirst := `<root><fileHeader dateTime="header"/><fileFooter dateTime="footer"/></root>`
	require.NoError(t, feed(xmlsource.New(strings.NewReader(headerFirst)), p))
	assert.Equal(t, "header", p.DateTime())
}

func TestParser_StandardAttributes(t *testing.T) {
	doc := `<root xmlns:xn="urn:xn">
  <xn:MeContext id="ME1">
    <xn:attributes>
      <xn:userLabel> site one </xn:userLabel>
      <xn:neighbour>a</xn:neighbour>
      <xn:neighbour>b</xn:neighbour>
      <xn:neighbour>c</xn:neighbour>
      <xn:location>
        <xn:lat>1.5</xn:lat>
        <xn:long>2.5</xn:long>
      </xn:location>
    </xn:attributes>
  </xn:MeContext>
</root>`

	rows := parseRows(t, Options{}, doc)
	row := findRow(t, rows, "MeContext")

	assert.Equal(t, []string{"userLabel", "neighbour", "location_lat", "location_long"}, row.Values.Keys())
	assert.Equal(t, map[string]string{
		"userLabel":     "site one",
		"neighbour":     "a;b;c",
		"location_lat":  "1.5",
		"location_long": "2.5",
	}, valuesMap(row.Values))
	assert.Equal(t, map[string]string{"MeContext_id": "ME1"}, valuesMap(row.Ancestors))
}

func TestParser_NamespaceDeclarationsAreNotColumns(t *testing.T) {
	doc := `<root xmlns="urn:root" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
    xsi:schemaLocation="urn:root root.xsd">
  <Obj id="7"/>
</root>`

	rows := parseRows(t, Options{}, doc)
	row := findRow(t, rows, "Obj")
	assert.Equal(t, []string{"root_schemaLocation", "Obj_id"}, row.Ancestors.Keys())
}

func TestParser_MergeVendorData(t *testing.T) {
	doc := `<root xmlns:xn="urn:xn" xmlns:un="urn:un">
  <xn:ManagedElement id="1">
    <xn:UtranCell id="C1">
      <xn:attributes>
        <xn:userLabel>cell</xn:userLabel>
        <xn:cellId>11</xn:cellId>
      </xn:attributes>
      <xn:VsDataContainer id="V1">
        <xn:attributes>
          <xn:vsDataType>vsDataUtranCell</xn:vsDataType>
          <un:vsDataUtranCell>
            <un:power>40</un:power>
            <un:cellId>99</un:cellId>
          </un:vsDataUtranCell>
        </xn:attributes>
      </xn:VsDataContainer>
    </xn:UtranCell>
  </xn:ManagedElement>
</root>`

	t.Run("separate tables", func(t *testing.T) {
		rows := parseRows(t, Options{}, doc)
		vendor := findRow(t, rows, "vsDataUtranCell")
		assert.Equal(t, []string{"power", "cellId"}, vendor.Values.Keys())

		std := findRow(t, rows, "UtranCell")
		assert.Equal(t, []string{"userLabel", "cellId"}, std.Values.Keys())
	})

	t.Run("merged", func(t *testing.T) {
		rows := parseRows(t, Options{MergeVendorData: true}, doc)

		var cells []objectRow
		for _, r := range rows {
			if r.Table == "UtranCell" {
				cells = append(cells, r)
			}
		}
		require.Len(t, cells, 1, "the standard row is replaced by the merged row")

		merged := cells[0]
		assert.Equal(t, []string{"power", "cellId", "userLabel"}, merged.Values.Keys())
		assert.Equal(t, "99", mustGet(t, merged.Values, "cellId"))
		assert.Equal(t, "cell", mustGet(t, merged.Values, "userLabel"))
		assert.Equal(t, []string{"ManagedElement_id", "UtranCell_id", "vsDataUtranCell_id"}, merged.Ancestors.Keys())
	})
}

func TestParser_MergeWithoutMatchingAncestor(t *testing.T) {
	doc := `<root xmlns:xn="urn:xn" xmlns:es="urn:es">
  <xn:ManagedElement id="1">
    <xn:attributes><xn:userLabel>me</xn:userLabel></xn:attributes>
    <xn:VsDataContainer id="1">
      <xn:attributes>
        <es:vsDataENodeBFunction><es:eNBId>5</es:eNBId></es:vsDataENodeBFunction>
      </xn:attributes>
    </xn:VsDataContainer>
  </xn:ManagedElement>
</root>`

	rows := parseRows(t, Options{MergeVendorData: true}, doc)

	vendor := findRow(t, rows, "ENodeBFunction")
	assert.Equal(t, []string{"eNBId"}, vendor.Values.Keys())

	me := findRow(t, rows, "ManagedElement")
	assert.Equal(t, []string{"userLabel"}, me.Values.Keys())
}

func TestParser_SiblingContainersHaveIndependentTypes(t *testing.T) {
	doc := `<root xmlns:xn="urn:xn" xmlns:es="urn:es">
  <xn:ManagedElement id="1">
    <xn:VsDataContainer id="A">
      <xn:attributes><es:vsDataTypeA><es:p>1</es:p></es:vsDataTypeA></xn:attributes>
    </xn:VsDataContainer>
    <xn:VsDataContainer id="B">
      <xn:attributes><es:vsDataTypeB><es:q>2</es:q></es:vsDataTypeB></xn:attributes>
      <xn:VsDataContainer id="C">
        <xn:attributes><es:vsDataTypeC><es:r>3</es:r></es:vsDataTypeC></xn:attributes>
      </xn:VsDataContainer>
    </xn:VsDataContainer>
  </xn:ManagedElement>
</root>`

	rows := parseRows(t, Options{}, doc)

	a := findRow(t, rows, "vsDataTypeA")
	assert.Equal(t, map[string]string{"ManagedElement_id": "1", "vsDataTypeA_id": "A"}, valuesMap(a.Ancestors))
	assert.Equal(t, map[string]string{"p": "1"}, valuesMap(a.Values))

	b := findRow(t, rows, "vsDataTypeB")
	assert.Equal(t, map[string]string{"ManagedElement_id": "1", "vsDataTypeB_id": "B"}, valuesMap(b.Ancestors))

	c := findRow(t, rows, "vsDataTypeC")
	assert.Equal(t, []string{"ManagedElement_id", "vsDataTypeB_id", "vsDataTypeC_id"}, c.Ancestors.Keys())
	assert.Equal(t, map[string]string{"r": "3"}, valuesMap(c.Values))
}

func TestParser_ResetClearsState(t *testing.T) {
	opts := Options{}
	opts.applyDefaults()
	p := newParser(opts, func(objectRow) {})

	truncated := `<root><A id="1"><attributes><x>1`
	err := feed(xmlsource.New(strings.NewReader(truncated)), p)
	require.Error(t, err)
	assert.Equal(t, 2, p.hier.Depth())

	p.Reset()
	assert.Equal(t, 0, p.hier.Depth())
	assert.Equal(t, 0, p.markers)
	assert.Empty(t, p.open)
	assert.False(t, p.vendor.Active())
	assert.Empty(t, p.DateTime())
}

func TestParser_MismatchedEndElement(t *testing.T) {
	opts := Options{}
	opts.applyDefaults()
	p := newParser(opts, func(objectRow) {})

	err := p.Handle(types.Event{Kind: types.EndElement, Local: "A"})
	assert.Error(t, err)
}

func mustGet(t *testing.T, v *orderedValues, key string) string {
	t.Helper()

	got, ok := v.Get(key)
	require.True(t, ok, "missing key %s", key)
	return got
}
