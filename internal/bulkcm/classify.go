// =============================================================================
// Bulk CM Parser - Element Classification
// =============================================================================
//
// Every start tag is classified exactly once, in this order:
//
//   1. VsDataContainer (any case)          -> container
//   2. non-generic prefix + vsData<Type>   -> vendor type
//   3. inside an active vendor type        -> vendor attribute
//   4. <attributes>                        -> attributes wrapper
//   5. tag already on the ancestor path    -> repeated structural
//   6. inside <attributes>                 -> standard attribute
//   7. anything else                       -> new structural
//
// The kind is pushed on the open-element stack and popped by the matching
// end tag, so an element is always closed the way it was opened.
//
// =============================================================================

package bulkcm

import (
	"strings"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
)

// elementKind is the role of an element, decided once when it opens. The
// same kind drives the handling of its end tag.
type elementKind int

const (
	kindContainer elementKind = iota + 1
	kindVendorType
	kindVendorAttribute
	kindAttributesWrapper
	kindRepeatedStructural
	kindStandardAttribute
	kindNewStructural
)

func (k elementKind) String() string {
	switch k {
	case kindContainer:
		return "Container"
	case kindVendorType:
		return "VendorType"
	case kindVendorAttribute:
		return "VendorAttribute"
	case kindAttributesWrapper:
		return "AttributesWrapper"
	case kindRepeatedStructural:
		return "RepeatedStructural"
	case kindStandardAttribute:
		return "StandardAttribute"
	case kindNewStructural:
		return "NewStructural"
	default:
		return "Unknown"
	}
}

const (
	vendorTypeMarker = "vsData"
	attributesTag    = "attributes"
)

// containerMetadata are vsData-prefixed children of the generic container
// that describe it rather than start a vendor type.
var containerMetadata = map[string]bool{
	"vsDataType":          true,
	"vsDataFormatVersion": true,
}

// classify decides the role of a start element from the current parser state.
func (p *parser) classify(ev types.Event) elementKind {
	switch {
	case strings.EqualFold(ev.Local, containerTag):
		return kindContainer
	case !p.vendor.Active() && p.isVendorType(ev.Prefix, ev.Local):
		return kindVendorType
	case p.vendor.Active():
		return kindVendorAttribute
	case ev.Local == attributesTag:
		return kindAttributesWrapper
	case p.hier.Contains(ev.Local):
		return kindRepeatedStructural
	case p.markers > 0:
		return kindStandardAttribute
	default:
		return kindNewStructural
	}
}

func (p *parser) isVendorType(prefix, local string) bool {
	return prefix != p.genericPrefix &&
		strings.HasPrefix(local, vendorTypeMarker) &&
		!containerMetadata[local]
}
