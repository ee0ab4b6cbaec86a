// Package nodeset provides the ordered node container used as the working
// graph of a conversion run.
//
// A [Set] indexes nodes by identifier while remembering discovery order.
// Every rewrite stage iterates in that order, so two runs over the same
// scene visit nodes identically and produce byte-identical output.
//
// Sets are not safe for concurrent use. Each run owns its own.
package nodeset

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned when a node has an empty identifier.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Set.Add] when the identifier is
	// already present.
	ErrDuplicateNodeID = errors.New("duplicate node ID")
)

// Keyed is implemented by node types stored in a Set.
type Keyed interface {
	Key() string
}

// Set is an insertion-ordered collection of nodes keyed by ID.
//
// The zero value is not usable; create sets with [New].
type Set[N Keyed] struct {
	order []string
	byID  map[string]N
}

// New returns an empty set.
func New[N Keyed]() *Set[N] {
	return &Set[N]{byID: make(map[string]N)}
}

// Of builds a set from nodes in the given order.
func Of[N Keyed](nodes ...N) (*Set[N], error) {
	s := New[N]()
	for _, n := range nodes {
		if err := s.Add(n); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Add appends n. It fails on an empty or already present ID.
func (s *Set[N]) Add(n N) error {
	id := n.Key()
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, ok := s.byID[id]; ok {
		return ErrDuplicateNodeID
	}
	s.order = append(s.order, id)
	s.byID[id] = n
	return nil
}

// Put stores n, replacing a present node with the same ID in place or
// appending it otherwise.
func (s *Set[N]) Put(n N) error {
	id := n.Key()
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, ok := s.byID[id]; !ok {
		s.order = append(s.order, id)
	}
	s.byID[id] = n
	return nil
}

// Insert places n at position pos, shifting later nodes back. A position
// past the end appends.
func (s *Set[N]) Insert(pos int, n N) error {
	id := n.Key()
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, ok := s.byID[id]; ok {
		return ErrDuplicateNodeID
	}
	pos = max(0, min(pos, len(s.order)))
	s.order = slices.Insert(s.order, pos, id)
	s.byID[id] = n
	return nil
}

// Get returns the node with the given ID.
func (s *Set[N]) Get(id string) (N, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Has reports whether id is present.
func (s *Set[N]) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Index returns the position of id in discovery order, or -1.
func (s *Set[N]) Index(id string) int {
	if !s.Has(id) {
		return -1
	}
	return slices.Index(s.order, id)
}

// Remove deletes the node with the given ID and returns it.
func (s *Set[N]) Remove(id string) (N, bool) {
	n, ok := s.byID[id]
	if !ok {
		return n, false
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(x string) bool { return x == id })
	return n, true
}

// Splice replaces the node id with outs.
//
// Outputs whose ID is already present elsewhere in the set replace that
// node in place. New IDs are inserted where id used to be, in the order
// given. When outs does not contain id itself, the node is removed.
// Splicing an absent id appends new outputs.
func (s *Set[N]) Splice(id string, outs []N) error {
	pos := s.Index(id)
	if pos < 0 {
		pos = len(s.order)
	}
	keep := false
	for _, n := range outs {
		if n.Key() == "" {
			return ErrInvalidNodeID
		}
		if n.Key() == id {
			keep = true
		}
	}
	if !keep {
		s.Remove(id)
	}
	for _, n := range outs {
		key := n.Key()
		if s.Has(key) {
			s.byID[key] = n
			if key == id {
				pos = s.Index(id) + 1
			}
			continue
		}
		if err := s.Insert(pos, n); err != nil {
			return err
		}
		pos++
	}
	return nil
}

// Nodes returns the nodes in discovery order.
func (s *Set[N]) Nodes() []N {
	out := make([]N, len(s.order))
	for i, id := range s.order {
		out[i] = s.byID[id]
	}
	return out
}

// IDs returns a copy of the identifiers in discovery order.
func (s *Set[N]) IDs() []string { return slices.Clone(s.order) }

// Len returns the number of nodes.
func (s *Set[N]) Len() int { return len(s.order) }

// Clone returns a copy of the set. Nodes are copied with cp, or shared
// when cp is nil.
func (s *Set[N]) Clone(cp func(N) N) *Set[N] {
	c := &Set[N]{order: slices.Clone(s.order), byID: make(map[string]N, len(s.byID))}
	for id, n := range s.byID {
		if cp != nil {
			n = cp(n)
		}
		c.byID[id] = n
	}
	return c
}
