// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package keyword

// orderedSet keeps strings unique in first-insertion order.
type orderedSet struct {
	items []string
	index map[string]struct{}
}

func newOrderedSet() *orderedSet {
	return &orderedSet{index: make(map[string]struct{})}
}

func (s *orderedSet) add(v string) bool {
	if _, ok := s.index[v]; ok {
		return false
	}
	s.index[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet) addAll(vs []string) {
	for _, v := range vs {
		s.add(v)
	}
}

func (s *orderedSet) len() int {
	return len(s.items)
}

func (s *orderedSet) values() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// filter keeps the items for which keep returns true.
func (s *orderedSet) filter(keep func(string) bool) {
	kept := s.items[:0]
	for _, v := range s.items {
		if keep(v) {
			kept = append(kept, v)
		} else {
			delete(s.index, v)
		}
	}
	s.items = kept
}
