package rule

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// StatementKind discriminates a StatementPattern's variant.
type StatementKind uint8

const (
	StatementTriple StatementKind = iota
	StatementEq
)

// StatementPattern is a conclusion-scoped statement template: either a
// triple pattern, or an equality between two term slots.
type StatementPattern struct {
	Kind StatementKind

	TriplePattern pattern.Pattern

	EqLeft, EqRight pattern.IdOrVar
}

// TripleOf builds a triple statement pattern.
func TripleOf(p pattern.Pattern) StatementPattern {
	return StatementPattern{Kind: StatementTriple, TriplePattern: p}
}

// EqOf builds an equality statement pattern.
func EqOf(a, b pattern.IdOrVar) StatementPattern {
	return StatementPattern{Kind: StatementEq, EqLeft: a, EqRight: b}
}

// Trust marks whether a concluded statement is asserted outright (Trusted)
// or only tentatively, pending the dependency filter the builder applies
// on ingestion (Untrusted).
type Trust bool

const (
	Trusted   Trust = true
	Untrusted Trust = false
)

// MaybeTrusted pairs a value with its trust level.
type MaybeTrusted[T any] struct {
	Value T
	Trust Trust
}

// NewMaybeTrusted wraps value with the given trust level.
func NewMaybeTrusted[T any](value T, trust Trust) MaybeTrusted[T] {
	return MaybeTrusted[T]{Value: value, Trust: trust}
}

// Instantiate resolves a statement pattern against substitution into a
// concrete statement, failing if any referenced variable is unbound.
func (s StatementPattern) Instantiate(substitution *pattern.Substitution) (Statement, bool) {
	switch s.Kind {
	case StatementTriple:
		t, ok := s.TriplePattern.Instantiate(substitution)
		if !ok {
			return Statement{}, false
		}
		return Statement{Kind: StatementTriple, Triple: t}, true
	default:
		a, ok := s.EqLeft.Instantiate(substitution)
		if !ok {
			return Statement{}, false
		}
		b, ok := s.EqRight.Instantiate(substitution)
		if !ok {
			return Statement{}, false
		}
		return Statement{Kind: StatementEq, EqLeft: a, EqRight: b}, true
	}
}

// InstantiateOrCreate resolves a statement pattern against substitution,
// minting fresh resources via newId for any conclusion variable
// substitution does not already bind. Bindings it mints are recorded back into
// substitution so repeated references to the same variable within a
// conclusion resolve to the same fresh resource.
func (s StatementPattern) InstantiateOrCreate(substitution *pattern.Substitution, newId func() inferdf.Id) Statement {
	switch s.Kind {
	case StatementTriple:
		p := s.TriplePattern
		return Statement{
			Kind: StatementTriple,
			Triple: inferdf.NewTriple(
				p.Subject.InstantiateOrCreate(substitution, newId),
				p.Predicate.InstantiateOrCreate(substitution, newId),
				p.Object.InstantiateOrCreate(substitution, newId),
			),
		}
	default:
		return Statement{
			Kind:    StatementEq,
			EqLeft:  s.EqLeft.InstantiateOrCreate(substitution, newId),
			EqRight: s.EqRight.InstantiateOrCreate(substitution, newId),
		}
	}
}

// Statement is a fully instantiated StatementPattern: a concrete triple, or
// a concrete equality between two resource ids. The builder's fixed-point
// loop consumes these directly.
type Statement struct {
	Kind StatementKind

	Triple inferdf.Triple

	EqLeft, EqRight inferdf.Id
}
