// Package pattern implements triple patterns with variables: the
// canonical pattern shape used to index facts for matching, the
// substitution a match accumulates, and the bipolar map used by the
// inference engine to find which rule atoms a newly derived triple could
// feed.
package pattern

import "github.com/rdfkit/inferdf/pkg/inferdf"

// IdOrVar is either a concrete resource id or a pattern variable, identified
// by its position in the enclosing rule's variable list.
type IdOrVar struct {
	isVar bool
	id    inferdf.Id
	v     int
}

// IdOf builds a concrete-id pattern slot.
func IdOf(id inferdf.Id) IdOrVar { return IdOrVar{id: id} }

// VarOf builds a variable pattern slot bound to variable index v.
func VarOf(v int) IdOrVar { return IdOrVar{isVar: true, v: v} }

func (x IdOrVar) IsVar() bool     { return x.isVar }
func (x IdOrVar) Id() inferdf.Id  { return x.id }
func (x IdOrVar) Var() int        { return x.v }

// Matching checks x against id, binding x's variable in substitution if x is
// unbound, or confirming an existing binding / concrete id agrees.
func (x IdOrVar) Matching(substitution *Substitution, id inferdf.Id) bool {
	if x.isVar {
		return substitution.Bind(x.v, id)
	}
	return x.id == id
}

// Instantiate resolves x to a concrete id using substitution, failing if x
// is a variable with no binding.
func (x IdOrVar) Instantiate(substitution *Substitution) (inferdf.Id, bool) {
	if x.isVar {
		return substitution.Get(x.v)
	}
	return x.id, true
}

// InstantiateOrCreate resolves x using substitution, minting a fresh id via
// newId (and recording the binding) if x is an unbound variable.
func (x IdOrVar) InstantiateOrCreate(substitution *Substitution, newId func() inferdf.Id) inferdf.Id {
	if x.isVar {
		return substitution.GetOrInsertWith(x.v, newId)
	}
	return x.id
}

// Pattern is a triple pattern: each position either a fixed resource id or a
// variable.
type Pattern struct {
	Subject, Predicate, Object IdOrVar
}

// New builds a pattern from three slots.
func New(s, p, o IdOrVar) Pattern { return Pattern{s, p, o} }

// Matching checks whether t satisfies the pattern, extending substitution
// with any new variable bindings. Bindings already made by an earlier
// partial match (e.g. an earlier hypothesis atom) are preserved and
// re-checked, so repeated variables across atoms are enforced.
func (p Pattern) Matching(substitution *Substitution, t inferdf.Triple) bool {
	return p.Subject.Matching(substitution, t.Subject) &&
		p.Predicate.Matching(substitution, t.Predicate) &&
		p.Object.Matching(substitution, t.Object)
}

// Instantiate resolves every slot of the pattern against substitution,
// failing if any variable it references is unbound.
func (p Pattern) Instantiate(substitution *Substitution) (inferdf.Triple, bool) {
	s, ok := p.Subject.Instantiate(substitution)
	if !ok {
		return inferdf.Triple{}, false
	}
	pr, ok := p.Predicate.Instantiate(substitution)
	if !ok {
		return inferdf.Triple{}, false
	}
	o, ok := p.Object.Instantiate(substitution)
	if !ok {
		return inferdf.Triple{}, false
	}
	return inferdf.NewTriple(s, pr, o), true
}

// Substitution is the binding environment built up while matching a
// sequence of patterns. A Substitution is copied by value
// wherever a search explores more than one branch from the same partial
// state, so branches never see each other's bindings.
type Substitution struct {
	bindings map[int]inferdf.Id
}

// NewSubstitution returns an empty substitution.
func NewSubstitution() *Substitution {
	return &Substitution{bindings: make(map[int]inferdf.Id)}
}

// Clone returns an independent copy of the substitution.
func (s *Substitution) Clone() *Substitution {
	c := make(map[int]inferdf.Id, len(s.bindings))
	for k, v := range s.bindings {
		c[k] = v
	}
	return &Substitution{bindings: c}
}

// Contains reports whether variable x is bound.
func (s *Substitution) Contains(x int) bool {
	_, ok := s.bindings[x]
	return ok
}

// Get returns the id bound to x, if any.
func (s *Substitution) Get(x int) (inferdf.Id, bool) {
	id, ok := s.bindings[x]
	return id, ok
}

// Bind binds x to id unless it is already bound to a different id, in which
// case the match fails. Returns whether the binding succeeded.
func (s *Substitution) Bind(x int, id inferdf.Id) bool {
	if existing, ok := s.bindings[x]; ok {
		return existing == id
	}
	s.bindings[x] = id
	return true
}

// GetOrInsertWith returns x's binding, computing and recording one via f if
// none exists yet.
func (s *Substitution) GetOrInsertWith(x int, f func() inferdf.Id) inferdf.Id {
	if id, ok := s.bindings[x]; ok {
		return id
	}
	id := f()
	s.bindings[x] = id
	return id
}

// Slice returns bindings 0..n-1 as a dense slice (nil entries for unbound
// variables that fall within the range), where n is the number of distinct
// variable indices seen so far.
func (s *Substitution) Slice(n int) []*inferdf.Id {
	out := make([]*inferdf.Id, n)
	for i := 0; i < n; i++ {
		if id, ok := s.bindings[i]; ok {
			v := id
			out[i] = &v
		}
	}
	return out
}
