// Package idset supplies the two small ordered/unordered set shapes the
// core data model needs over resource ids and fact indices: a sorted
// uint32 set (the dataset's per-resource sets of fact indices) and a
// hashed Id set (an interpretation resource's `different_from`). Both
// are thin wrappers over github.com/hashicorp/go-set/v3 so the rest of the
// engine never imports it directly.
package idset

import (
	"github.com/hashicorp/go-set/v3"

	"github.com/rdfkit/inferdf/pkg/inferdf"
)

func compareUint32(a, b uint32) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Sorted is an ascending sorted set of uint32, used for per-resource fact
// indices (as-subject/as-predicate/as-object).
type Sorted struct {
	tree *set.TreeSet[uint32]
}

// NewSorted constructs an empty sorted set.
func NewSorted() *Sorted {
	return &Sorted{tree: set.NewTreeSet[uint32](compareUint32)}
}

// Insert adds i to the set.
func (s *Sorted) Insert(i uint32) { s.tree.Insert(i) }

// Remove deletes i from the set.
func (s *Sorted) Remove(i uint32) { s.tree.Remove(i) }

// Contains reports whether i is a member.
func (s *Sorted) Contains(i uint32) bool { return s.tree.Contains(i) }

// Len returns the number of members.
func (s *Sorted) Len() int { return s.tree.Size() }

// Slice returns the members in ascending order.
func (s *Sorted) Slice() []uint32 { return s.tree.Slice() }

// Ids is an unordered set of resource ids, used for an interpretation
// resource's `different_from`.
type Ids struct {
	set *set.Set[inferdf.Id]
}

// NewIds constructs an empty id set.
func NewIds() *Ids {
	return &Ids{set: set.New[inferdf.Id](0)}
}

// Insert adds id to the set, returning true if it was not already present.
func (s *Ids) Insert(id inferdf.Id) bool { return s.set.Insert(id) }

// Remove deletes id from the set, returning true if it was present.
func (s *Ids) Remove(id inferdf.Id) bool { return s.set.Remove(id) }

// Contains reports whether id is a member.
func (s *Ids) Contains(id inferdf.Id) bool { return s.set.Contains(id) }

// Len returns the number of members.
func (s *Ids) Len() int { return s.set.Size() }

// Slice returns the members in unspecified order.
func (s *Ids) Slice() []inferdf.Id { return s.set.Slice() }
