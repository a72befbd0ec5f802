// Package inferdf defines the core value types shared across the engine:
// resource identifiers, signs, triples/quads and fact provenance. These are
// the uninterpreted "currency" that interpretation, dataset, pattern, rule
// and inference packages all exchange.
package inferdf

import "fmt"

// Id is a dense, non-negative resource identifier. Ordering is significant:
// merging two ids always keeps the smaller one, which is what makes the
// builder's merge/replace fixed-point confluent.
type Id uint32

// String implements fmt.Stringer.
func (id Id) String() string {
	return fmt.Sprintf("_:r%d", uint32(id))
}

// Index returns the id as a slice index.
func (id Id) Index() int {
	return int(id)
}

// Less reports whether id is ordered before other.
func (id Id) Less(other Id) bool {
	return id < other
}

// Min returns the smaller of two ids.
func Min(a, b Id) Id {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of two ids.
func Max(a, b Id) Id {
	if a > b {
		return a
	}
	return b
}
