// =============================================================================
// Bulk CM Parser - XML Event Source
// =============================================================================
//
// This module turns a Bulk CM XML document into the ordered stream of parse
// events consumed by the parser core:
//   - StartElement (local name + prefix + ordered attributes)
//   - CharData
//   - EndElement
//
// Prefixes are kept exactly as written in the document ("xn", "es", ...)
// because the core dispatches on them. Comments, processing instructions and
// directives are dropped.
//
// Documents declaring a non-UTF-8 encoding are decoded through the
// golang.org/x/net/html/charset readers.
//
// =============================================================================

package xmlsource

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
	"golang.org/x/net/html/charset"
)

// =============================================================================
// SOURCE STRUCTURE
// =============================================================================

// Source delivers parse events for one document.
type Source struct {
	dec    *xml.Decoder
	closer io.Closer

	// open tracks the raw names of the open elements so that mismatched end
	// tags are reported as syntax errors.
	open []xml.Name
}

// Open opens the document at path.
//
// The caller must Close the source.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}

	s := New(bufio.NewReader(f))
	s.closer = f
	return s, nil
}

// New creates a source reading from r.
func New(r io.Reader) *Source {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel

	return &Source{dec: dec}
}

// =============================================================================
// EVENT DELIVERY
// =============================================================================

// Next returns the next event. It returns io.EOF after the document element
// has been closed and the input is exhausted.
func (s *Source) Next() (types.Event, error) {
	for {
		tok, err := s.dec.RawToken()
		if err == io.EOF {
			if len(s.open) > 0 {
				return types.Event{}, fmt.Errorf("unexpected end of document: <%s> is not closed", qualified(s.open[len(s.open)-1]))
			}
			return types.Event{}, io.EOF
		}
		if err != nil {
			return types.Event{}, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			s.open = append(s.open, t.Name)
			return startEvent(t), nil

		case xml.EndElement:
			if len(s.open) == 0 {
				line, _ := s.dec.InputPos()
				return types.Event{}, fmt.Errorf("line %d: unexpected end element </%s>", line, qualified(t.Name))
			}
			top := s.open[len(s.open)-1]
			if top != t.Name {
				line, _ := s.dec.InputPos()
				return types.Event{}, fmt.Errorf("line %d: element <%s> closed by </%s>", line, qualified(top), qualified(t.Name))
			}
			s.open = s.open[:len(s.open)-1]
			return types.Event{Kind: types.EndElement, Prefix: t.Name.Space, Local: t.Name.Local}, nil

		case xml.CharData:
			if len(s.open) == 0 {
				// Whitespace around the document element.
				continue
			}
			return types.Event{Kind: types.CharData, Text: string(t)}, nil
		}
	}
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// startEvent converts a raw start element. RawToken leaves the prefix in
// Name.Space.
func startEvent(t xml.StartElement) types.Event {
	ev := types.Event{
		Kind:   types.StartElement,
		Prefix: t.Name.Space,
		Local:  t.Name.Local,
	}
	if len(t.Attr) > 0 {
		ev.Attrs = make([]types.Attr, 0, len(t.Attr))
		for _, a := range t.Attr {
			ev.Attrs = append(ev.Attrs, types.Attr{
				Prefix: a.Name.Space,
				Name:   a.Name.Local,
				Value:  a.Value,
			})
		}
	}
	return ev
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}
