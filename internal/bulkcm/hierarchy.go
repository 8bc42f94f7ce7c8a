// =============================================================================
// Bulk CM Parser - Hierarchy Tracker
// =============================================================================
//
// The hierarchy tracker keeps the live ancestor path of the document as an
// explicit stack of frames. Each frame owns everything that belongs to its
// depth:
//   - the identifying XML attributes (id, schemaLocation, ...)
//   - the attribute collector for its <xn:attributes> wrapper
//   - the snapshot of its standard attribute values
//   - the vendor type bound to it (VsDataContainer frames only)
//
// Depth is always len(frames); popping a frame drops its per-depth state.
//
// DISAMBIGUATION:
//   A structural tag already on the path gets a numeric suffix:
//     <SubNetwork id="1">            -> SubNetwork
//       <SubNetwork id="101">        -> SubNetwork_2
//         <SubNetwork id="102">      -> SubNetwork_3
//
// =============================================================================

package bulkcm

import (
	"strconv"

	"github.com/ginjaninja78/bulkcm-parser/internal/types"
)

// containerTag is the generic vendor extension container element.
const containerTag = "VsDataContainer"

// frame is one element on the ancestor path.
type frame struct {
	// tag is the local element name as written in the document.
	tag string

	// name is the disambiguated name (tag, tag_2, ... or VsDataContainer_<n>).
	name string

	container bool

	// ids holds the identifying attributes, emitted as ancestor-id columns.
	ids *orderedValues

	// collector buffers <xn:attributes> children while the wrapper is open.
	collector *attributeCollector

	// values is the snapshot taken when the attributes wrapper closed.
	values *orderedValues

	// vendorType is the vsData type carried by a container frame.
	vendorType string

	// merged is set once a vendor object has been merged into this frame.
	merged bool
}

// columnPrefix is the name used for this frame's ancestor-id columns.
// Containers are named after the vendor type they carry.
func (f *frame) columnPrefix() string {
	if f.container && f.vendorType != "" {
		return f.vendorType
	}
	return f.name
}

// hierarchy is the ancestor path of the current document.
type hierarchy struct {
	frames     []*frame
	containers int
	separator  string
}

func newHierarchy(separator string) *hierarchy {
	return &hierarchy{separator: separator}
}

// Depth returns the current depth, equal to the path length.
func (h *hierarchy) Depth() int {
	return len(h.frames)
}

// Top returns the innermost frame, or nil for an empty path.
func (h *hierarchy) Top() *frame {
	if len(h.frames) == 0 {
		return nil
	}
	return h.frames[len(h.frames)-1]
}

// Contains reports whether tag (or a suffixed occurrence of it) is on the path.
func (h *hierarchy) Contains(tag string) bool {
	return h.occurrences(tag) > 0
}

// occurrences counts the path entries named tag or tag_<digits>.
func (h *hierarchy) occurrences(tag string) int {
	count := 0
	for _, f := range h.frames {
		if matchesOccurrence(f.name, tag) {
			count++
		}
	}
	return count
}

func matchesOccurrence(name, tag string) bool {
	if name == tag {
		return true
	}
	if len(name) < len(tag)+2 || name[:len(tag)] != tag || name[len(tag)] != '_' {
		return false
	}
	for _, r := range name[len(tag)+1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// PushStructural pushes a standard MO frame. A tag already on the path is
// disambiguated with its occurrence number.
func (h *hierarchy) PushStructural(tag string, attrs []types.Attr) *frame {
	name := tag
	if n := h.occurrences(tag); n > 0 {
		name = tag + "_" + strconv.Itoa(n+1)
	}

	f := h.newFrame(tag, name)
	for _, a := range attrs {
		if a.IsNamespaceDecl() {
			continue
		}
		f.ids.Set(a.Name, a.Value)
	}
	h.frames = append(h.frames, f)
	return f
}

// PushContainer pushes a VsDataContainer frame. Only its id is recorded.
func (h *hierarchy) PushContainer(tag string, attrs []types.Attr) *frame {
	h.containers++

	f := h.newFrame(tag, containerTag+"_"+strconv.Itoa(h.containers))
	f.container = true
	for _, a := range attrs {
		if a.Name == "id" && !a.IsNamespaceDecl() {
			f.ids.Set("id", a.Value)
		}
	}
	h.frames = append(h.frames, f)
	return f
}

// Pop removes the innermost frame.
func (h *hierarchy) Pop() *frame {
	f := h.Top()
	if f == nil {
		return nil
	}
	h.frames = h.frames[:len(h.frames)-1]
	if f.container {
		h.containers--
	}
	return f
}

// NearestContainer returns the innermost open container frame.
func (h *hierarchy) NearestContainer() *frame {
	for i := len(h.frames) - 1; i >= 0; i-- {
		if h.frames[i].container {
			return h.frames[i]
		}
	}
	return nil
}

// NearestStandard returns the innermost non-container frame with the given tag.
func (h *hierarchy) NearestStandard(tag string) *frame {
	for i := len(h.frames) - 1; i >= 0; i-- {
		f := h.frames[i]
		if !f.container && f.tag == tag {
			return f
		}
	}
	return nil
}

// AncestorIDs returns the identifying attributes of every frame on the
// path, outermost first, keyed "<frame>_<attribute>".
func (h *hierarchy) AncestorIDs() *orderedValues {
	ids := newOrderedValues()
	for _, f := range h.frames {
		prefix := f.columnPrefix()
		for _, k := range f.ids.Keys() {
			v, _ := f.ids.Get(k)
			ids.Set(prefix+"_"+k, v)
		}
	}
	return ids
}

// Reset empties the path.
func (h *hierarchy) Reset() {
	h.frames = h.frames[:0]
	h.containers = 0
}

func (h *hierarchy) newFrame(tag, name string) *frame {
	return &frame{
		tag:       tag,
		name:      name,
		ids:       newOrderedValues(),
		collector: newAttributeCollector(h.separator),
		values:    newOrderedValues(),
	}
}
