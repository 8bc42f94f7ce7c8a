// =============================================================================
// Bulk CM Parser - Vendor Object Tracker
// =============================================================================
//
// Vendor specific data is carried inside the generic extension container:
//
//   <xn:VsDataContainer id="1">
//     <xn:attributes>
//       <xn:vsDataType>vsDataSomeMO</xn:vsDataType>
//       <es:vsDataSomeMO>
//         <es:parameter1>value1</es:parameter1>
//       </es:vsDataSomeMO>
//     </xn:attributes>
//   </xn:VsDataContainer>
//
// While a vsData<Type> element is open every child element is a vendor
// attribute; they are flattened with the same rules as standard attributes.
//
// MERGE MODE:
//   vsDataGsmCell rows go to the GsmCell table, and the attributes of the
//   enclosing standard GsmCell object are appended after the vendor columns.
//
// =============================================================================

package bulkcm

import "strings"

// vendorTracker holds the state of the active vendor type.
type vendorTracker struct {
	typeName  string
	container *frame
	collector *attributeCollector
}

func newVendorTracker(separator string) *vendorTracker {
	return &vendorTracker{collector: newAttributeCollector(separator)}
}

// Active reports whether a vendor type is open.
func (v *vendorTracker) Active() bool {
	return v.typeName != ""
}

// Open activates typeName and binds it to the enclosing container.
func (v *vendorTracker) Open(typeName string, container *frame) {
	v.typeName = typeName
	v.container = container
	v.collector.Reset()
	if container != nil {
		container.vendorType = typeName
	}
}

// Reset deactivates the tracker and drops its attributes.
func (v *vendorTracker) Reset() {
	v.typeName = ""
	v.container = nil
	v.collector.Reset()
}

// standardName returns the vendor type name without its vsData prefix.
func standardName(typeName string) string {
	name := strings.TrimPrefix(typeName, vendorTypeMarker)
	if name == "" {
		return typeName
	}
	return name
}

// vendorTable resolves the table a vendor type is written to.
func vendorTable(typeName string, merge bool) string {
	if merge {
		return standardName(typeName)
	}
	return typeName
}

// vendorRow assembles the row of the active vendor object. In merge mode the
// values of the matching standard ancestor are appended and that ancestor is
// marked as merged. No matching ancestor means no extra columns.
func (p *parser) vendorRow() objectRow {
	values := newOrderedValues()
	values.Merge(p.vendor.collector.Values())

	if p.merge {
		if std := p.hier.NearestStandard(standardName(p.vendor.typeName)); std != nil {
			for _, k := range std.values.Keys() {
				if _, ok := values.Get(k); ok {
					continue
				}
				v, _ := std.values.Get(k)
				values.Set(k, v)
			}
			std.merged = true
		}
	}

	return objectRow{
		Table:     vendorTable(p.vendor.typeName, p.merge),
		Ancestors: p.hier.AncestorIDs(),
		Values:    values,
	}
}
