// =============================================================================
// Bulk CM Parser - Ordered Collections
// =============================================================================

package bulkcm

// orderedValues is a string map that remembers first-insertion order.
type orderedValues struct {
	keys   []string
	values map[string]string
}

func newOrderedValues() *orderedValues {
	return &orderedValues{values: make(map[string]string)}
}

// Set stores value under key, keeping the key's original position.
func (o *orderedValues) Set(key, value string) {
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Get returns the value stored under key.
func (o *orderedValues) Get(key string) (string, bool) {
	if o == nil {
		return "", false
	}
	v, ok := o.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (o *orderedValues) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of keys.
func (o *orderedValues) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Merge copies every entry of other into o, in other's order.
func (o *orderedValues) Merge(other *orderedValues) {
	for _, k := range other.Keys() {
		o.Set(k, other.values[k])
	}
}

// orderedSet is a set of names in first-seen order.
type orderedSet struct {
	names []string
	seen  map[string]struct{}
}

func newOrderedSet(names ...string) *orderedSet {
	s := &orderedSet{seen: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.Add(n)
	}
	return s
}

// Add appends name unless it is already present.
func (s *orderedSet) Add(name string) {
	if _, ok := s.seen[name]; ok {
		return
	}
	s.seen[name] = struct{}{}
	s.names = append(s.names, name)
}

// Has reports whether name is present.
func (s *orderedSet) Has(name string) bool {
	_, ok := s.seen[name]
	return ok
}

// Names returns the names in first-seen order.
func (s *orderedSet) Names() []string {
	return s.names
}

// Len returns the number of names.
func (s *orderedSet) Len() int {
	return len(s.names)
}
