package model

import "sort"

// IDSet is a membership set of canonical event id strings (favorites,
// calendar). Instances are treated as immutable: With and Without return a
// new set, and mutation of a published set only happens by whole-set
// replacement through the toggle coordinator.
type IDSet map[string]struct{}

func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[CanonicalID(id)] = struct{}{}
	}
	return s
}

// Has reports membership of an already-canonical id.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }

func (s IDSet) Clone() IDSet {
	out := make(IDSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// With returns a copy of s that contains id.
func (s IDSet) With(id string) IDSet {
	out := s.Clone()
	out[CanonicalID(id)] = struct{}{}
	return out
}

// Without returns a copy of s that does not contain id.
func (s IDSet) Without(id string) IDSet {
	out := s.Clone()
	delete(out, CanonicalID(id))
	return out
}

// IDs returns the members in sorted order.
func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
