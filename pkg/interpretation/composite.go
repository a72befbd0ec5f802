package interpretation

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// Dependency is a read-only interpretation a Composite may import ids
// from.
type Dependency interface {
	Get(id inferdf.Id) (*Resource, bool)
	TermsOf(id inferdf.Id) []inferdf.Term
	TermInterpretation(t inferdf.Term) (inferdf.Id, bool)
}

// depInterface tracks the bidirectional mapping between a composite's local
// ids and one dependency's ids, and imports on first reference.
type depInterface struct {
	dep Dependency

	// source maps a local id to every dependency id known to denote the
	// same resource (a local id may aggregate more than one dependency id
	// if a later merge identifies resources that were distinct in the
	// dependency).
	source map[inferdf.Id][]inferdf.Id
	// target maps a dependency id to the local id it has been imported as.
	target map[inferdf.Id]inferdf.Id
}

func newDepInterface(dep Dependency) *depInterface {
	return &depInterface{
		dep:    dep,
		source: make(map[inferdf.Id][]inferdf.Id),
		target: make(map[inferdf.Id]inferdf.Id),
	}
}

// Composite layers a local interpretation on top of zero or more read-only
// dependency interpretations, importing dependency ids into the local space
// on first reference.
type Composite struct {
	*Interpretation
	deps map[int]*depInterface
	// order preserves the dependency iteration order (insertion order).
	order []int
}

// NewComposite builds a composite interpretation with an empty local layer
// and no dependencies.
func NewComposite() *Composite {
	return &Composite{Interpretation: New(), deps: make(map[int]*depInterface)}
}

// AddDependency registers dep under index d. Indices are caller-assigned
// (typically 0..n in the order dependency modules were opened) and must be
// distinct.
func (c *Composite) AddDependency(d int, dep Dependency) {
	c.deps[d] = newDepInterface(dep)
	c.order = append(c.order, d)
}

// DependencyIds returns every local id that the given dependency id of
// dependency `dep` has been (or, after this call, has just been) imported
// as. A dependency resource always imports to exactly one local id; the
// plural return keeps the shape uniform with DependencyTriples.
func (c *Composite) DependencyIds(dep int, depId inferdf.Id) []inferdf.Id {
	id, ok := c.ImportResource(dep, depId)
	if !ok {
		return nil
	}
	return []inferdf.Id{id}
}

// ImportResource returns the local id standing in for depId in dependency
// dep, importing it (and recursively any term-sharing resource) on first
// reference.
func (c *Composite) ImportResource(dep int, depId inferdf.Id) (inferdf.Id, bool) {
	di, ok := c.deps[dep]
	if !ok {
		return 0, false
	}
	if local, ok := di.target[depId]; ok {
		return local, true
	}

	depResource, ok := di.dep.Get(depId)
	if !ok {
		return 0, false
	}

	var local inferdf.Id
	terms := c.dep(di).TermsOf(depId)
	if len(terms) > 0 {
		// Bypass the dependency-aware InsertTerm here: we are about to wire
		// dep's own target/source mapping manually below, and calling the
		// override would redundantly (and, for other dependencies, still
		// usefully) rediscover it. Local-only lookup/insert first, then
		// importSharedTerm below picks up every *other* dependency sharing
		// the term.
		local = c.Interpretation.InsertTerm(terms[0])
		for _, t := range terms[1:] {
			c.SetTermInterpretation(t, local)
		}
	} else {
		// A purely anonymous, term-less dependency resource (e.g. a fresh
		// reservation that never got a term) still needs a local id.
		local = c.NewResource()
	}

	di.target[depId] = local
	di.source[local] = append(di.source[local], depId)

	// Inherit the dependency's already-known different_from constraints:
	// every dependency id known distinct from depId is itself imported
	// (recursively) and recorded as distinct locally.
	for _, distinctDep := range depResource.DifferentFrom.Slice() {
		distinctLocal, ok := c.ImportResource(dep, distinctDep)
		if ok {
			_, _ = c.Split(local, distinctLocal)
		}
	}

	if len(terms) > 0 {
		c.importSharedTerm(terms[0], local, dep)
	}

	return local, true
}

func (c *Composite) dep(di *depInterface) Dependency { return di.dep }

// Merge unifies a and b in the local layer, then migrates every dependency
// interface entry of the removed id onto the kept one, so dependency ids
// previously imported as the removed id keep resolving. Shadows the
// embedded local Interpretation's Merge.
func (c *Composite) Merge(a, b inferdf.Id) (kept, removed inferdf.Id, err error) {
	kept, removed, err = c.Interpretation.Merge(a, b)
	if err != nil || kept == removed {
		return kept, removed, err
	}
	for _, d := range c.order {
		di := c.deps[d]
		moved, ok := di.source[removed]
		if !ok {
			continue
		}
		delete(di.source, removed)
		for _, depId := range moved {
			di.target[depId] = kept
		}
		di.source[kept] = append(di.source[kept], moved...)
	}
	return kept, removed, nil
}

// InsertTerm returns the existing id for term, else allocates a fresh local
// one, checking every OTHER dependency the first time term is seen
// locally, so a term shared with a dependency immediately inherits that
// dependency's other representations and different_from constraints,
// rather than waiting for an explicit ImportResource to notice the shared
// term. Shadows the embedded local Interpretation's InsertTerm.
func (c *Composite) InsertTerm(term inferdf.Term) inferdf.Id {
	if id, ok := c.Interpretation.TermInterpretation(term); ok {
		return id
	}
	id := c.Interpretation.InsertTerm(term)
	c.importSharedTerm(term, id, -1)
	return id
}

// importSharedTerm wires up di.target/di.source (and the dependency's
// inherited different_from constraints and other representations) for
// every dependency, other than skipDep if non-negative, that already
// interprets term.
func (c *Composite) importSharedTerm(term inferdf.Term, id inferdf.Id, skipDep int) {
	for _, d := range c.order {
		if d == skipDep {
			continue
		}
		di := c.deps[d]
		depId, ok := di.dep.TermInterpretation(term)
		if !ok {
			continue
		}
		if _, already := di.target[depId]; already {
			continue
		}
		di.target[depId] = id
		di.source[id] = append(di.source[id], depId)

		if depResource, ok := di.dep.Get(depId); ok {
			for _, distinctDep := range depResource.DifferentFrom.Slice() {
				if otherLocal, ok := di.target[distinctDep]; ok {
					_, _ = c.Split(id, otherLocal)
				}
			}
		}
		for _, other := range di.dep.TermsOf(depId) {
			c.Interpretation.SetTermInterpretation(other, id)
		}
	}
}

// DependencyTriples translates a local triple into every corresponding
// triple in dependency dep's id space, for each local id that has at least
// one imported dependency-side id. Positions whose local id was never
// imported from this dependency yield no triples.
func (c *Composite) DependencyTriples(dep int, t inferdf.Triple) []inferdf.Triple {
	di, ok := c.deps[dep]
	if !ok {
		return nil
	}
	ss, sok := di.source[t.Subject]
	ps, pok := di.source[t.Predicate]
	os, ook := di.source[t.Object]
	if !sok || !pok || !ook {
		return nil
	}
	out := make([]inferdf.Triple, 0, len(ss)*len(ps)*len(os))
	for _, s := range ss {
		for _, p := range ps {
			for _, o := range os {
				out = append(out, inferdf.NewTriple(s, p, o))
			}
		}
	}
	return out
}

// DependencyIdsOf returns every dependency id of dependency dep that local
// id id has been imported as (the reverse of DependencyIds), used when the
// builder needs to translate a local id into the dependency's id space
// (e.g. to check whether a named graph is known to that dependency).
func (c *Composite) DependencyIdsOf(dep int, id inferdf.Id) []inferdf.Id {
	di, ok := c.deps[dep]
	if !ok {
		return nil
	}
	return di.source[id]
}

// ImportTriple imports every position of a dependency-local triple into
// the local id space, used when re-deriving from a dependency-imported
// fact after a merge.
func (c *Composite) ImportTriple(dep int, t inferdf.Triple) inferdf.Triple {
	s, _ := c.ImportResource(dep, t.Subject)
	p, _ := c.ImportResource(dep, t.Predicate)
	o, _ := c.ImportResource(dep, t.Object)
	return inferdf.NewTriple(s, p, o)
}

// DependencyPatterns translates local canonical pattern p into every
// corresponding canonical pattern in dependency dep's id space, for
// pattern matching against dependencies. A position given locally that has
// never been imported from dep yields no patterns at all: dep can never
// hold a fact mentioning an id it never exported. Same-as-subject/predicate
// relations need no translation, since they constrain shape, not identity.
func (c *Composite) DependencyPatterns(dep int, p pattern.Canonical) []pattern.Canonical {
	di, ok := c.deps[dep]
	if !ok {
		return nil
	}

	subjectIds := []*inferdf.Id{nil}
	if p.SubjectKind == pattern.SubjectGiven {
		ids := di.source[p.SubjectId]
		if len(ids) == 0 {
			return nil
		}
		subjectIds = idPointers(ids)
	}
	predicateIds := []*inferdf.Id{nil}
	if p.PredicateKind == pattern.PredicateGiven {
		ids := di.source[p.PredicateId]
		if len(ids) == 0 {
			return nil
		}
		predicateIds = idPointers(ids)
	}
	objectIds := []*inferdf.Id{nil}
	if p.ObjectKind == pattern.ObjectGiven {
		ids := di.source[p.ObjectId]
		if len(ids) == 0 {
			return nil
		}
		objectIds = idPointers(ids)
	}

	var out []pattern.Canonical
	for _, s := range subjectIds {
		for _, pr := range predicateIds {
			for _, o := range objectIds {
				translated := p
				if s != nil {
					translated.SubjectId = *s
				}
				if pr != nil {
					translated.PredicateId = *pr
				}
				if o != nil {
					translated.ObjectId = *o
				}
				out = append(out, translated)
			}
		}
	}
	return out
}

func idPointers(ids []inferdf.Id) []*inferdf.Id {
	out := make([]*inferdf.Id, len(ids))
	for i := range ids {
		v := ids[i]
		out[i] = &v
	}
	return out
}

// Dependencies returns the dependency indices in registration order.
func (c *Composite) Dependencies() []int {
	return append([]int(nil), c.order...)
}
