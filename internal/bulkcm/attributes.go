// =============================================================================
// Bulk CM Parser - Attribute Collector
// =============================================================================
//
// The attribute collector buffers the text of attribute elements and turns
// them into columns. The same collector backs both kinds of attributes:
//   - standard attributes inside <xn:attributes> of a standard MO
//   - vendor attributes inside a vsData<Type> element
//
// FLATTENING RULES:
//   Simple:        <a>v</a>                   -> a=v
//   Parent-child:  <a><b>v</b></a>            -> a_b=v   (no "a" column)
//   Grandchild:    <a><b><c>v</c></b></a>     -> b_c=v   (immediate parent only)
//   Multi-valued:  <a>x</a><a>y</a><a>z</a>   -> a=x;y;z (configurable separator)
//
// Parent detection is structural: an element that had child elements when it
// closes is a parent and produces no column of its own.
//
// =============================================================================

package bulkcm

import "strings"

// parentChildSeparator joins a parent attribute name to its child's name.
const parentChildSeparator = "_"

// openAttribute is an attribute element that has not been closed yet.
type openAttribute struct {
	name     string
	hasChild bool
	text     strings.Builder
}

// attributeCollector accumulates the attributes of one object.
type attributeCollector struct {
	separator string
	open      []*openAttribute
	values    *orderedValues
}

func newAttributeCollector(separator string) *attributeCollector {
	return &attributeCollector{
		separator: separator,
		values:    newOrderedValues(),
	}
}

// Open records the start of an attribute element.
func (c *attributeCollector) Open(name string) {
	if n := len(c.open); n > 0 {
		c.open[n-1].hasChild = true
	}
	c.open = append(c.open, &openAttribute{name: name})
}

// Text appends character data to the innermost open attribute.
func (c *attributeCollector) Text(s string) {
	if n := len(c.open); n > 0 {
		c.open[n-1].text.WriteString(s)
	}
}

// Close ends the innermost open attribute and commits its value, unless the
// element turned out to be a parent of other attribute elements.
func (c *attributeCollector) Close() {
	n := len(c.open)
	if n == 0 {
		return
	}
	attr := c.open[n-1]
	c.open = c.open[:n-1]

	if attr.hasChild {
		return
	}

	column := attr.name
	if n > 1 {
		column = c.open[n-2].name + parentChildSeparator + attr.name
	}

	value := strings.TrimSpace(attr.text.String())
	if prev, ok := c.values.Get(column); ok {
		value = prev + c.separator + value
	}
	c.values.Set(column, value)
}

// Values returns the committed values.
func (c *attributeCollector) Values() *orderedValues {
	return c.values
}

// Take returns the committed values and starts a fresh set.
func (c *attributeCollector) Take() *orderedValues {
	v := c.values
	c.Reset()
	return v
}

// Reset drops all open and committed state.
func (c *attributeCollector) Reset() {
	c.open = c.open[:0]
	c.values = newOrderedValues()
}
