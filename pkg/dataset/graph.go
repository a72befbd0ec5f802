package dataset

import (
	"github.com/rdfkit/inferdf/internal/idset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// resourceIndex is the per-resource occurrence index: the fact-slab indices
// in which the resource appears as subject, predicate, or object, each kept
// sorted ascending so ResourceFacts and the round-robin matcher can walk
// them like a merge of sorted streams.
type resourceIndex struct {
	asSubject   *idset.Sorted
	asPredicate *idset.Sorted
	asObject    *idset.Sorted
}

func newResourceIndex() *resourceIndex {
	return &resourceIndex{
		asSubject:   idset.NewSorted(),
		asPredicate: idset.NewSorted(),
		asObject:    idset.NewSorted(),
	}
}

// Graph is a single signed triple store (the default graph, or one named
// graph) with resource-indexed pattern matching.
type Graph struct {
	facts     *factSlab
	resources map[inferdf.Id]*resourceIndex
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{facts: newFactSlab(), resources: make(map[inferdf.Id]*resourceIndex)}
}

// Len returns the number of stored facts.
func (g *Graph) Len() int { return g.facts.Len() }

// Get returns the fact stored at slab index i.
func (g *Graph) Get(i uint32) (Fact, bool) { return g.facts.Get(i) }

// ResourceCount returns the number of distinct resources appearing in any
// fact.
func (g *Graph) ResourceCount() int { return len(g.resources) }

// Contains reports whether triple is stored with the given sign.
func (g *Graph) Contains(t inferdf.Triple, sign inferdf.Sign) bool {
	_, f, ok := g.FindTriple(t)
	return ok && f.Sign == sign
}

func (g *Graph) resourceOf(id inferdf.Id) *resourceIndex {
	r, ok := g.resources[id]
	if !ok {
		r = newResourceIndex()
		g.resources[id] = r
	}
	return r
}

// Insert adds a fact, or confirms an existing identical-sign fact
// (idempotent; isNew is false in that case), or reports a sign-clash
// Contradiction against an existing opposite-sign fact for the same triple.
func (g *Graph) Insert(f Fact) (index uint32, isNew bool, err error) {
	if i, current, ok := g.FindTriple(f.Triple); ok {
		if current.Sign == f.Sign {
			return i, false, nil
		}
		return 0, false, inferdf.NewSignContradiction(f.Triple)
	}

	i := g.facts.Insert(f)
	g.resourceOf(f.Triple.Subject).asSubject.Insert(i)
	g.resourceOf(f.Triple.Predicate).asPredicate.Insert(i)
	g.resourceOf(f.Triple.Object).asObject.Insert(i)
	return i, true, nil
}

// TryExtend inserts every fact, stopping at the first Contradiction.
func (g *Graph) TryExtend(facts []Fact) ([]uint32, error) {
	indexes := make([]uint32, 0, len(facts))
	for _, f := range facts {
		i, _, err := g.Insert(f)
		if err != nil {
			return nil, err
		}
		indexes = append(indexes, i)
	}
	return indexes, nil
}

func (g *Graph) removeTripleWith(t inferdf.Triple, keep func(Fact) bool) (Fact, bool) {
	i, f, ok := g.FindTriple(t)
	if !ok || !keep(f) {
		return Fact{}, false
	}
	g.unindex(i, t)
	removed, _ := g.facts.Remove(i)
	return removed, true
}

// RemoveTriple removes t regardless of sign.
func (g *Graph) RemoveTriple(t inferdf.Triple) (Fact, bool) {
	return g.removeTripleWith(t, func(Fact) bool { return true })
}

// RemovePositiveTriple removes t only if stored as positive.
func (g *Graph) RemovePositiveTriple(t inferdf.Triple) (Fact, bool) {
	return g.removeTripleWith(t, func(f Fact) bool { return f.Sign == inferdf.Positive })
}

// RemoveNegativeTriple removes t only if stored as negative.
func (g *Graph) RemoveNegativeTriple(t inferdf.Triple) (Fact, bool) {
	return g.removeTripleWith(t, func(f Fact) bool { return f.Sign == inferdf.Negative })
}

// RemoveResource deletes every fact mentioning id in any position, and
// returns them. The other positions' occurrence sets are unindexed too:
// the slab reuses removed indices, so a stale entry left behind would
// alias whatever fact is inserted there next.
func (g *Graph) RemoveResource(id inferdf.Id) []Fact {
	r, ok := g.resources[id]
	if !ok {
		return nil
	}
	delete(g.resources, id)

	var out []Fact
	remove := func(indices []uint32) {
		for _, i := range indices {
			f, ok := g.facts.Remove(i)
			if !ok {
				continue
			}
			g.unindex(i, f.Triple)
			out = append(out, f)
		}
	}
	remove(r.asSubject.Slice())
	remove(r.asPredicate.Slice())
	remove(r.asObject.Slice())
	return out
}

// unindex drops fact index i from the occurrence sets of every resource
// the triple mentions (the removed resource's own sets are already gone).
func (g *Graph) unindex(i uint32, t inferdf.Triple) {
	if r, ok := g.resources[t.Subject]; ok {
		r.asSubject.Remove(i)
	}
	if r, ok := g.resources[t.Predicate]; ok {
		r.asPredicate.Remove(i)
	}
	if r, ok := g.resources[t.Object]; ok {
		r.asObject.Remove(i)
	}
}

// FindTriple locates t regardless of sign.
func (g *Graph) FindTriple(t inferdf.Triple) (uint32, Fact, bool) {
	m := g.Matching(pattern.FromTriple(t))
	i, f, ok := m.Next()
	return i, f, ok
}

// ResourceFacts iterates, in ascending fact-index order and without
// duplicates, every fact mentioning id in any position.
func (g *Graph) ResourceFacts(id inferdf.Id) *ResourceFacts {
	r, ok := g.resources[id]
	if !ok {
		return &ResourceFacts{}
	}
	return &ResourceFacts{
		facts:     g.facts,
		subject:   r.asSubject.Slice(),
		predicate: r.asPredicate.Slice(),
		object:    r.asObject.Slice(),
	}
}

// ResourceFacts is a merge-iterator over a resource's subject/predicate/
// object occurrence lists, yielding each distinct fact index once in
// ascending order.
type ResourceFacts struct {
	facts               *factSlab
	subject, predicate, object []uint32
}

// IsEmpty reports whether the iterator has nothing left (or was never
// backed by a resource at all).
func (r *ResourceFacts) IsEmpty() bool {
	return len(r.subject) == 0 && len(r.predicate) == 0 && len(r.object) == 0
}

// Next returns the next (index, fact) pair, or ok=false when exhausted.
func (r *ResourceFacts) Next() (uint32, Fact, bool) {
	if r.facts == nil {
		return 0, Fact{}, false
	}

	var min uint32
	has := false
	consider := func(v []uint32) {
		if len(v) > 0 && (!has || v[0] < min) {
			min = v[0]
			has = true
		}
	}
	consider(r.subject)
	consider(r.predicate)
	consider(r.object)
	if !has {
		return 0, Fact{}, false
	}

	if len(r.subject) > 0 && r.subject[0] == min {
		r.subject = r.subject[1:]
	}
	if len(r.predicate) > 0 && r.predicate[0] == min {
		r.predicate = r.predicate[1:]
	}
	if len(r.object) > 0 && r.object[0] == min {
		r.object = r.object[1:]
	}

	f, _ := r.facts.Get(min)
	return min, f, true
}

// Matching returns every fact matching pattern, unconstrained by sign.
func (g *Graph) Matching(p pattern.Canonical) *Matching {
	return g.fullMatching(p, nil)
}

// SignedMatching returns every fact matching pattern and carrying the given
// sign.
func (g *Graph) SignedMatching(p inferdf.Signed[pattern.Canonical]) *Matching {
	return g.fullMatching(p.Value, &p.Sign)
}

func (g *Graph) fullMatching(p pattern.Canonical, sign *inferdf.Sign) *Matching {
	s, sGiven := p.SubjectID()
	pr, prGiven := p.PredicateID()
	o, oGiven := p.ObjectID()

	m := &Matching{pattern: p, sign: sign}

	if !sGiven && !prGiven && !oGiven {
		m.mode = matchAll
		g.facts.Iter(func(i uint32, f Fact) bool {
			m.all = append(m.all, allEntry{i, f})
			return true
		})
		return m
	}

	sRes, sOk := g.lookupOrNone(s, sGiven)
	prRes, prOk := g.lookupOrNone(pr, prGiven)
	oRes, oOk := g.lookupOrNone(o, oGiven)
	if !sOk || !prOk || !oOk {
		m.mode = matchNone
		return m
	}

	m.mode = matchConstrained
	m.factsRef = g.facts
	if sRes != nil {
		m.hasSubject = true
		m.subject = sRes.asSubject.Slice()
	}
	if prRes != nil {
		m.hasPredicate = true
		m.predicate = prRes.asPredicate.Slice()
	}
	if oRes != nil {
		m.hasObject = true
		m.object = oRes.asObject.Slice()
	}
	return m
}

// lookupOrNone: if the slot isn't given, "no constraint" (ok=true,
// res=nil); if given but the resource is unknown, the whole match is
// empty (ok=false); if given and known, that resource's index.
func (g *Graph) lookupOrNone(id inferdf.Id, given bool) (*resourceIndex, bool) {
	if !given {
		return nil, true
	}
	r, ok := g.resources[id]
	return r, ok
}

type matchMode uint8

const (
	matchNone matchMode = iota
	matchAll
	matchConstrained
)

type allEntry struct {
	index uint32
	fact  Fact
}

// Matching is the iterator returned by Graph.Matching/SignedMatching: the
// round-robin candidate search over up to three sorted index lists,
// filtered by any same-as/sign constraints the index itself cannot encode.
type Matching struct {
	pattern pattern.Canonical
	sign    *inferdf.Sign

	mode matchMode
	all  []allEntry

	factsRef                            *factSlab
	hasSubject, hasPredicate, hasObject bool
	subject, predicate, object          []uint32
}

// Next returns the next matching (index, fact) pair.
func (m *Matching) Next() (uint32, Fact, bool) {
	for {
		i, f, ok := m.advance()
		if !ok {
			return 0, Fact{}, false
		}
		if m.sign != nil && f.Sign != *m.sign {
			continue
		}
		if !m.pattern.FilterPredicate(f.Triple) || !m.pattern.FilterObject(f.Triple) {
			continue
		}
		return i, f, true
	}
}

func (m *Matching) advance() (uint32, Fact, bool) {
	switch m.mode {
	case matchAll:
		if len(m.all) == 0 {
			return 0, Fact{}, false
		}
		e := m.all[0]
		m.all = m.all[1:]
		return e.index, e.fact, true
	case matchConstrained:
		return m.advanceConstrained()
	default:
		return 0, Fact{}, false
	}
}

// advanceConstrained is a round-robin cursor: visit the subject,
// predicate, object lists in turn; each visited list must agree on
// (or yield nothing smaller than) a running candidate, and three
// consecutive agreements (one full cycle with no candidate change) confirm
// a match. A list with nothing left at all (meaning that slot had no
// constraint and thus no index to draw from) never blocks the cycle.
func (m *Matching) advanceConstrained() (uint32, Fact, bool) {
	lists := [3]*[]uint32{&m.subject, &m.predicate, &m.object}
	has := [3]bool{m.hasSubject, m.hasPredicate, m.hasObject}

	state := 0
	var candidate uint32
	haveCandidate := false
	count := 0

	for count < 3 {
		if has[state] {
			list := lists[state]
			advanced := false
			for !advanced {
				if len(*list) == 0 {
					return 0, Fact{}, false
				}
				i := (*list)[0]
				*list = (*list)[1:]
				if !haveCandidate {
					candidate = i
					haveCandidate = true
					advanced = true
				} else if i >= candidate {
					if i > candidate {
						candidate = i
						count = 0
					}
					advanced = true
				}
			}
		}
		count++
		state = (state + 1) % 3
	}

	if !haveCandidate {
		return 0, Fact{}, false
	}
	f, _ := m.factsRef.Get(candidate)
	return candidate, f, true
}

// ReplaceId rewrites every fact mentioning from (in any position) to mention
// to instead, re-deriving each through filter so the caller can veto
// reinsertion (e.g. because the new triple would now be a self-loop the
// caller's semantics forbid); the filter cannot change a fact's sign. Facts are detached
// from the removed resource, rewritten, and reinserted one at a time so a
// sign clash among them still reports cleanly.
func (g *Graph) ReplaceId(to, from inferdf.Id, filter func(Fact) (bool, error)) error {
	for _, f := range g.RemoveResource(from) {
		f.ReplaceId(to, from)
		keep, err := filter(f)
		if err != nil {
			return err
		}
		if keep {
			if _, _, err := g.Insert(f); err != nil {
				return err
			}
		}
	}
	return nil
}
