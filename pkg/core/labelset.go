package core

// LabelSet is an ordered collection of labels where the first occurrence wins
type LabelSet struct {
	order []string
	seen  map[string]struct{}
}

// NewLabelSet creates a set holding the given labels in order
func NewLabelSet(labels ...string) *LabelSet {
	s := &LabelSet{seen: make(map[string]struct{}, len(labels))}
	s.Add(labels...)
	return s
}

// Add appends labels that are not yet present
func (s *LabelSet) Add(labels ...string) {
	for _, label := range labels {
		if _, ok := s.seen[label]; ok {
			continue
		}
		s.seen[label] = struct{}{}
		s.order = append(s.order, label)
	}
}

// Contains reports whether the label is present
func (s *LabelSet) Contains(label string) bool {
	_, ok := s.seen[label]
	return ok
}

// Len returns the number of labels in the set
func (s *LabelSet) Len() int {
	return len(s.order)
}

// Slice returns a copy of the labels in insertion order
func (s *LabelSet) Slice() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
