package interpretation

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
)

// Interpretation is the local RDF interpretation: the canonical
// mapping from uninterpreted terms to resource ids, with merge/split
// support and contradiction detection.
type Interpretation struct {
	resources *reservableSlab
	byIri     map[uint32]inferdf.Id
	byBlank   map[uint32]inferdf.Id
	byLiteral map[uint32]inferdf.Id
}

// New constructs an empty interpretation.
func New() *Interpretation {
	return &Interpretation{
		resources: newReservableSlab(),
		byIri:     make(map[uint32]inferdf.Id),
		byBlank:   make(map[uint32]inferdf.Id),
		byLiteral: make(map[uint32]inferdf.Id),
	}
}

// Len returns the number of resources (including anonymous, unreferenced
// ones created via NewResource).
func (it *Interpretation) Len() uint32 { return uint32(it.resources.Len()) }

// Get returns the resource record for id, if any.
func (it *Interpretation) Get(id inferdf.Id) (*Resource, bool) {
	return it.resources.Get(id.Index())
}

// Iter calls f for every resource, ascending by id.
func (it *Interpretation) Iter(f func(id inferdf.Id, r *Resource) bool) {
	it.resources.Iter(func(i int, r *Resource) bool {
		return f(inferdf.Id(i), r)
	})
}

// NewResource allocates a fresh id with an empty representation.
func (it *Interpretation) NewResource() inferdf.Id {
	return inferdf.Id(it.resources.Insert(NewResource()))
}

// TermInterpretation is a pure lookup: the id currently representing term,
// if any.
func (it *Interpretation) TermInterpretation(t inferdf.Term) (inferdf.Id, bool) {
	switch t.Kind {
	case inferdf.TermIri:
		id, ok := it.byIri[t.Handle]
		return id, ok
	case inferdf.TermBlank:
		id, ok := it.byBlank[t.Handle]
		return id, ok
	default:
		id, ok := it.byLiteral[t.Handle]
		return id, ok
	}
}

// InsertTerm returns the existing id for term, or allocates a fresh one
// whose representation is just {term}.
func (it *Interpretation) InsertTerm(t inferdf.Term) inferdf.Id {
	if id, ok := it.TermInterpretation(t); ok {
		return id
	}
	id := inferdf.Id(it.resources.Insert(resourceFromTerm(t)))
	it.index(t, id)
	return id
}

// SetTermInterpretation adds term to id's representation set (idempotent)
// and updates the reverse index.
func (it *Interpretation) SetTermInterpretation(t inferdf.Term, id inferdf.Id) {
	r, ok := it.Get(id)
	if !ok {
		return
	}
	r.AddTerm(t)
	it.index(t, id)
}

func (it *Interpretation) index(t inferdf.Term, id inferdf.Id) {
	switch t.Kind {
	case inferdf.TermIri:
		it.byIri[t.Handle] = id
	case inferdf.TermBlank:
		it.byBlank[t.Handle] = id
	case inferdf.TermLiteral:
		it.byLiteral[t.Handle] = id
	}
}

// InsertQuad interns all four (or three, for the default graph) uninterpreted
// terms of a quad, returning the interpreted quad.
func (it *Interpretation) InsertQuad(s, p, o inferdf.Term, g *inferdf.Term) inferdf.Quad {
	var graph *inferdf.Id
	if g != nil {
		id := it.InsertTerm(*g)
		graph = &id
	}
	return inferdf.NewQuad(it.InsertTerm(s), it.InsertTerm(p), it.InsertTerm(o), graph)
}

// Merge unifies a and b, canonicalising so the kept id is the smaller one.
// Fails with a Contradiction if a and b are already known distinct.
// Returns (kept, removed).
func (it *Interpretation) Merge(a, b inferdf.Id) (kept, removed inferdf.Id, err error) {
	if a == b {
		return a, b, nil
	}
	if b < a {
		a, b = b, a
	}

	removedResource, _ := it.resources.Remove(b.Index())

	if removedResource.DifferentFrom.Contains(a) {
		// Undo the removal before reporting the contradiction: checking
		// membership before touching any neighbor's DifferentFrom means a
		// rejected merge leaves every resource, not just b, exactly as it
		// was.
		it.resources.Insert(removedResource)
		return 0, 0, inferdf.NewMergeContradiction(a, b)
	}

	kept2, _ := it.Get(a)
	for _, d := range removedResource.DifferentFrom.Slice() {
		other, ok := it.Get(d)
		if ok {
			other.DifferentFrom.Remove(b)
			other.DifferentFrom.Insert(a)
		}
		// Keep the relation symmetric: the x-b edge becomes x-a on both sides.
		kept2.DifferentFrom.Insert(d)
	}

	for h := range removedResource.AsIri {
		it.byIri[h] = a
		kept2.AsIri[h] = struct{}{}
	}
	for h := range removedResource.AsBlank {
		it.byBlank[h] = a
		kept2.AsBlank[h] = struct{}{}
	}
	for h := range removedResource.AsLiteral {
		it.byLiteral[h] = a
		kept2.AsLiteral[h] = struct{}{}
	}

	return a, b, nil
}

// Split records that a and b are distinct resources. Fails if a ==
// b. Returns true iff the inequality was newly recorded.
func (it *Interpretation) Split(a, b inferdf.Id) (isNew bool, err error) {
	if a == b {
		return false, inferdf.NewSplitContradiction(a)
	}
	ra, _ := it.Get(a)
	rb, _ := it.Get(b)
	ra.DifferentFrom.Insert(b)
	isNew = rb.DifferentFrom.Insert(a)
	return isNew, nil
}

// BeginReservation opens a speculative append-only view of the id slab.
func (it *Interpretation) BeginReservation() *Reservation {
	return it.resources.BeginReservation()
}

// TermsOf enumerates every uninterpreted term id is known to represent.
func (it *Interpretation) TermsOf(id inferdf.Id) []inferdf.Term {
	r, ok := it.Get(id)
	if !ok {
		return nil
	}
	return r.Terms()
}
