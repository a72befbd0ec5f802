// Package inference implements the forward-chaining rule engine: given a
// newly derived triple or a request to saturate the whole
// dataset, it finds which rules fire and what they conclude, leaving the
// caller (the builder) to decide how conclusions are folded back in.
package inference

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// Context is everything the engine needs from whatever owns the dataset and
// interpretation it reasons over. The builder implements it.
type Context interface {
	// PatternMatching returns every triple of the given sign currently known
	// that has the shape of pattern, treating pattern's variables as
	// wildcards. The engine re-applies pattern.Matching itself to enforce
	// that repeated variables within or across atoms agree.
	PatternMatching(pattern inferdf.Signed[pattern.Pattern]) ([]inferdf.Triple, error)

	// Resources lists every resource id known to the interpretation, the
	// fallback domain a rule variable ranges over when it appears in a
	// conclusion but nowhere in its hypothesis.
	Resources() []inferdf.Id

	// NewResource mints a fresh resource id directly, used by a Conclusion
	// to instantiate its own variables (those are never shared with a
	// caller-visible reservation: they always commit).
	NewResource() inferdf.Id

	// BeginReservation starts a reservation scoping any ids a substitution
	// search allocates while it explores dead-end branches, so they can be
	// discarded if the whole search is abandoned.
	BeginReservation() Reservation
}

// Reservation scopes resource allocation for the duration of one
// find-substitutions search.
type Reservation interface {
	NewResource() inferdf.Id
	Commit() error
	Discard()
}
