// Package interpretation implements the canonical mapping between external
// vocabulary handles and opaque resource ids: the local
// interpretation, its reservation mechanism for speculative id allocation,
// and the composite interpretation layering a local interpretation over
// read-only dependency interpretations.
package interpretation

import (
	"github.com/rdfkit/inferdf/internal/idset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
)

// Resource is the per-id record: the sets of IRI/blank/literal handles
// the id represents, and the set of ids it is known distinct from.
type Resource struct {
	AsIri     map[uint32]struct{}
	AsBlank   map[uint32]struct{}
	AsLiteral map[uint32]struct{}

	DifferentFrom *idset.Ids
}

// NewResource builds an empty resource record.
func NewResource() *Resource {
	return &Resource{
		AsIri:         make(map[uint32]struct{}),
		AsBlank:       make(map[uint32]struct{}),
		AsLiteral:     make(map[uint32]struct{}),
		DifferentFrom: idset.NewIds(),
	}
}

// IsAnonymous reports whether the resource has no IRI and no literal
// representation: it is blank-only, or has no representation
// at all (a freshly reserved resource).
func (r *Resource) IsAnonymous() bool {
	return len(r.AsIri) == 0 && len(r.AsLiteral) == 0
}

// AddTerm records an additional uninterpreted term in the resource's
// representation set. Idempotent.
func (r *Resource) AddTerm(t inferdf.Term) {
	switch t.Kind {
	case inferdf.TermIri:
		r.AsIri[t.Handle] = struct{}{}
	case inferdf.TermBlank:
		r.AsBlank[t.Handle] = struct{}{}
	case inferdf.TermLiteral:
		r.AsLiteral[t.Handle] = struct{}{}
	}
}

// Terms enumerates every uninterpreted term the resource is known to
// represent (used to reconstruct uninterpreted triples, e.g. for
// diagnostics).
func (r *Resource) Terms() []inferdf.Term {
	terms := make([]inferdf.Term, 0, len(r.AsIri)+len(r.AsBlank)+len(r.AsLiteral))
	for h := range r.AsIri {
		terms = append(terms, inferdf.Iri(h))
	}
	for h := range r.AsBlank {
		terms = append(terms, inferdf.Blank(h))
	}
	for h := range r.AsLiteral {
		terms = append(terms, inferdf.Literal(h))
	}
	return terms
}

func resourceFromTerm(t inferdf.Term) *Resource {
	r := NewResource()
	r.AddTerm(t)
	return r
}
