package core

// Resolution holds the labels implied by checked and unchecked items
type Resolution struct {
	On  []string
	Off []string
}

// Empty reports whether no checkbox matched any rule
func (r Resolution) Empty() bool {
	return len(r.On) == 0 && len(r.Off) == 0
}

// Resolve matches item names against the rules. Each name takes the label of
// the first rule that accepts it; names no rule accepts are ignored.
func Resolve(checked, unchecked []string, rules []LabelRule) Resolution {
	return Resolution{
		On:  resolveNames(checked, rules),
		Off: resolveNames(unchecked, rules),
	}
}

func resolveNames(names []string, rules []LabelRule) []string {
	set := NewLabelSet()

	for _, name := range names {
		for _, rule := range rules {
			if rule.Matches(name) {
				set.Add(rule.Label)
				break
			}
		}
	}

	return set.Slice()
}
