package reconcile

// DependencySet is an ordered set of package names. Names keep the position
// at which they were first added.
type DependencySet struct {
	names []string
	index map[string]struct{}
}

// NewDependencySet returns a set holding names.
func NewDependencySet(names ...string) *DependencySet {
	s := &DependencySet{index: make(map[string]struct{}, len(names))}
	s.Add(names...)
	return s
}

// Add inserts names not already present and returns how many were new.
func (s *DependencySet) Add(names ...string) int {
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	n := 0
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, ok := s.index[name]; ok {
			continue
		}
		s.index[name] = struct{}{}
		s.names = append(s.names, name)
		n++
	}
	return n
}

// Has reports whether name is in the set.
func (s *DependencySet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[name]
	return ok
}

// Len returns the number of names.
func (s *DependencySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Names returns a copy of the names in insertion order.
func (s *DependencySet) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}
