// =============================================================================
// Bulk CM Parser - Shared Types
// =============================================================================
//
// This package contains the parse-event types shared by the XML event source
// and the parser core. Keeping them here avoids an import cycle between:
//   - xmlsource (produces events)
//   - bulkcm    (consumes events)
//
// =============================================================================

package types

// =============================================================================
// EVENT KINDS
// =============================================================================

// EventKind identifies the kind of a parse event.
type EventKind int

const (
	// StartElement is an opening tag, including the start of a self-closing tag.
	StartElement EventKind = iota + 1

	// CharData is text content between tags.
	CharData

	// EndElement is a closing tag, including the end of a self-closing tag.
	EndElement
)

// String returns a readable name for the kind.
func (k EventKind) String() string {
	switch k {
	case StartElement:
		return "StartElement"
	case CharData:
		return "CharData"
	case EndElement:
		return "EndElement"
	default:
		return "Unknown"
	}
}

// =============================================================================
// EVENT STRUCTURE
// =============================================================================

// Attr is an XML attribute as delivered by the event source.
type Attr struct {
	// Prefix is the namespace prefix as written in the document (may be empty).
	Prefix string

	// Name is the local attribute name.
	Name string

	// Value is the unescaped attribute value.
	Value string
}

// Event is a single parse event, delivered in document order.
type Event struct {
	// Kind is the event kind.
	Kind EventKind

	// Prefix is the namespace prefix of the element (e.g. "xn", "es").
	// Empty for CharData events and unprefixed elements.
	Prefix string

	// Local is the local element name. Empty for CharData events.
	Local string

	// Attrs holds the element attributes in document order (StartElement only).
	Attrs []Attr

	// Text holds the character data (CharData only).
	Text string
}

// IsNamespaceDecl reports whether the attribute is an xmlns declaration.
func (a Attr) IsNamespaceDecl() bool {
	return a.Prefix == "xmlns" || (a.Prefix == "" && a.Name == "xmlns")
}
