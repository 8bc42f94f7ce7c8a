// =============================================================================
// Bulk CM Parser - Document State Machine
// =============================================================================
//
// The parser consumes the events of one document and reports a completed
// object row every time a standard MO or a vendor object closes. It knows
// nothing about passes or output; the session decides what to do with the
// rows (record their schema, or emit them).
//
// START ELEMENT DISPATCH (first match wins):
//   1. VsDataContainer                      -> Container
//   2. non-generic prefix + vsData<Type>    -> VendorType
//   3. vendor type active                   -> VendorAttribute
//   4. attributes                           -> AttributesWrapper
//   5. tag already on the ancestor path     -> RepeatedStructural
//   6. inside an attributes wrapper         -> StandardAttribute
//   7. anything else                        -> NewStructural
//
// =============================================================================

package bulkcm

import (
	"fmt"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
)

// Document header/footer elements carrying the document timestamp.
const (
	fileHeaderTag = "fileHeader"
	fileFooterTag = "fileFooter"
	dateTimeAttr  = "dateTime"
)

// objectRow is a completed object, before it is laid out in a table schema.
type objectRow struct {
	Table     string
	Ancestors *orderedValues
	Values    *orderedValues
}

// parser is the per-document state. It is reset between documents.
type parser struct {
	genericPrefix string
	merge         bool

	hier   *hierarchy
	vendor *vendorTracker

	// markers counts the open attributes wrappers.
	markers int

	// open holds the kind of every open element, innermost last.
	open []elementKind

	// dateTime is the document timestamp from the header or footer.
	dateTime       string
	footerDateTime string

	onRow func(objectRow)
}

func newParser(opts Options, onRow func(objectRow)) *parser {
	return &parser{
		genericPrefix: opts.GenericPrefix,
		merge:         opts.MergeVendorData,
		hier:          newHierarchy(opts.MultiValueSeparator),
		vendor:        newVendorTracker(opts.MultiValueSeparator),
		onRow:         onRow,
	}
}

// Reset discards all per-document state.
func (p *parser) Reset() {
	p.hier.Reset()
	p.vendor.Reset()
	p.markers = 0
	p.open = p.open[:0]
	p.dateTime = ""
	p.footerDateTime = ""
}

// DateTime returns the timestamp of the document parsed so far.
func (p *parser) DateTime() string {
	if p.dateTime != "" {
		return p.dateTime
	}
	return p.footerDateTime
}

// Handle processes one event.
func (p *parser) Handle(ev types.Event) error {
	switch ev.Kind {
	case types.StartElement:
		p.start(ev)
		return nil
	case types.CharData:
		p.text(ev.Text)
		return nil
	case types.EndElement:
		return p.end(ev)
	default:
		return fmt.Errorf("unknown event kind %d", ev.Kind)
	}
}

func (p *parser) start(ev types.Event) {
	kind := p.classify(ev)
	p.open = append(p.open, kind)

	switch kind {
	case kindContainer:
		p.hier.PushContainer(ev.Local, ev.Attrs)
		p.vendor.Reset()

	case kindVendorType:
		p.vendor.Open(ev.Local, p.hier.NearestContainer())

	case kindVendorAttribute:
		p.vendor.collector.Open(ev.Local)

	case kindAttributesWrapper:
		p.markers++

	case kindStandardAttribute:
		if top := p.hier.Top(); top != nil {
			top.collector.Open(ev.Local)
		}

	case kindRepeatedStructural, kindNewStructural:
		p.hier.PushStructural(ev.Local, ev.Attrs)
		p.captureDateTime(ev)
	}
}

func (p *parser) text(s string) {
	switch {
	case p.vendor.Active():
		p.vendor.collector.Text(s)
	case p.markers > 0:
		if top := p.hier.Top(); top != nil {
			top.collector.Text(s)
		}
	}
}

func (p *parser) end(ev types.Event) error {
	n := len(p.open)
	if n == 0 {
		return fmt.Errorf("unexpected end element </%s>", ev.Local)
	}
	kind := p.open[n-1]
	p.open = p.open[:n-1]

	switch kind {
	case kindContainer:
		p.hier.Pop()
		p.vendor.Reset()

	case kindVendorType:
		p.onRow(p.vendorRow())
		p.vendor.Reset()

	case kindVendorAttribute:
		p.vendor.collector.Close()

	case kindAttributesWrapper:
		p.markers--
		if top := p.hier.Top(); top != nil {
			top.values.Merge(top.collector.Take())
		}

	case kindStandardAttribute:
		if top := p.hier.Top(); top != nil {
			top.collector.Close()
		}

	case kindRepeatedStructural, kindNewStructural:
		top := p.hier.Top()
		if top == nil || top.tag != ev.Local {
			return fmt.Errorf("end element </%s> does not match the open object", ev.Local)
		}
		if !(p.merge && top.merged) {
			p.onRow(objectRow{
				Table:     top.name,
				Ancestors: p.hier.AncestorIDs(),
				Values:    top.values,
			})
		}
		p.hier.Pop()
	}

	return nil
}

// captureDateTime records the dateTime attribute of the document header or
// footer. The header wins when both carry one.
func (p *parser) captureDateTime(ev types.Event) {
	if ev.Local != fileHeaderTag && ev.Local != fileFooterTag {
		return
	}
	for _, a := range ev.Attrs {
		if a.Name != dateTimeAttr {
			continue
		}
		if ev.Local == fileHeaderTag {
			p.dateTime = a.Value
		} else {
			p.footerDateTime = a.Value
		}
	}
}
