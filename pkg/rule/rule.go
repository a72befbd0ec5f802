// Package rule represents deduction rules: formulas built from universal
// and existential quantifiers over a conclusion, constructed
// programmatically. There is no textual rule syntax in this package; any
// source rule format is a consumer's concern (see cmd/inferdf).
package rule

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// Variable names one of a rule's dense variable indices.
type Variable struct {
	Index int
	Name  string
}

// Rule pairs an identifier with its formula.
type Rule struct {
	Id      inferdf.Id
	Formula Formula
}

// New builds a rule. Formula shadowing is validated separately by Builder.Build,
// since construction order (innermost formula built first) makes it
// impossible to check incrementally.
func New(id inferdf.Id, formula Formula) Rule {
	return Rule{Id: id, Formula: formula}
}

// IsExistential reports whether the rule's formula has no ForAll binder
// anywhere. Such rules are excluded from Close, since they assert "there
// exists a witness" rather than "for every antecedent".
func (r Rule) IsExistential() bool { return r.Formula.IsFullyExistential() }

// FormulaKind discriminates a Formula's variant.
type FormulaKind uint8

const (
	FormulaForAll FormulaKind = iota
	FormulaExists
	FormulaConclusion
)

// Formula is a quantified implication or its terminal conclusion.
// Exactly one of ForAllData/ExistsData/ConclusionData is set, matching
// Kind.
type Formula struct {
	Kind FormulaKind

	ForAllData     *ForAll
	ExistsData     *Exists
	ConclusionData *Conclusion
}

// ForAllOf builds a universally quantified formula: "for every binding of
// vars satisfying constraints, inner must hold".
func ForAllOf(vars []Variable, constraints Hypothesis, inner Formula) Formula {
	return Formula{Kind: FormulaForAll, ForAllData: &ForAll{Variables: vars, Constraints: constraints, Inner: inner}}
}

// ExistsOf builds an existentially quantified formula: "there exists a
// binding of vars satisfying hypothesis such that inner holds".
func ExistsOf(vars []Variable, hypothesis Hypothesis, inner Formula) Formula {
	return Formula{Kind: FormulaExists, ExistsData: &Exists{Variables: vars, Hypothesis: hypothesis, Inner: inner}}
}

// ConclusionOf wraps a terminal conclusion as a formula.
func ConclusionOf(c Conclusion) Formula {
	return Formula{Kind: FormulaConclusion, ConclusionData: &c}
}

// IsFullyExistential reports whether the formula never universally
// quantifies.
func (f Formula) IsFullyExistential() bool {
	switch f.Kind {
	case FormulaForAll:
		return false
	case FormulaExists:
		return f.ExistsData.Inner.IsFullyExistential()
	default:
		return true
	}
}

func (f Formula) IsUniversal() bool   { return f.Kind == FormulaForAll }
func (f Formula) IsExistential() bool { return f.Kind == FormulaExists }
func (f Formula) IsConclusion() bool  { return f.Kind == FormulaConclusion }

// Conclusion returns the formula's terminal conclusion, descending through
// any quantifiers.
func (f Formula) Conclusion() *Conclusion {
	switch f.Kind {
	case FormulaForAll:
		return f.ForAllData.Inner.Conclusion()
	case FormulaExists:
		return f.ExistsData.Inner.Conclusion()
	default:
		return f.ConclusionData
	}
}

// VisitVariables calls v for every variable index referenced anywhere in
// the formula (in constraints, hypotheses, and the final conclusion),
// without distinguishing bound occurrences from the binder itself.
func (f Formula) VisitVariables(v func(x int)) {
	switch f.Kind {
	case FormulaForAll:
		visitHypothesisVariables(f.ForAllData.Constraints, v)
		f.ForAllData.Inner.VisitVariables(v)
	case FormulaExists:
		visitHypothesisVariables(f.ExistsData.Hypothesis, v)
		f.ExistsData.Inner.VisitVariables(v)
	case FormulaConclusion:
		visitConclusionVariables(*f.ConclusionData, v)
	}
}

// VisitDeclaredVariables calls v for every variable index introduced by a
// quantifier (ForAll or Exists) anywhere in the formula.
func (f Formula) VisitDeclaredVariables(v func(x int)) {
	switch f.Kind {
	case FormulaForAll:
		for _, x := range f.ForAllData.Variables {
			v(x.Index)
		}
		f.ForAllData.Inner.VisitDeclaredVariables(v)
	case FormulaExists:
		for _, x := range f.ExistsData.Variables {
			v(x.Index)
		}
		f.ExistsData.Inner.VisitDeclaredVariables(v)
	}
}

// ForAll is a universally bound formula.
type ForAll struct {
	Variables   []Variable
	Constraints Hypothesis
	Inner       Formula
}

// Exists is an existentially bound formula.
type Exists struct {
	Variables  []Variable
	Hypothesis Hypothesis
	Inner      Formula
}

func visitHypothesisVariables(h Hypothesis, v func(x int)) {
	for _, sp := range h.Patterns {
		p := sp.Value
		if p.Subject.IsVar() {
			v(p.Subject.Var())
		}
		if p.Predicate.IsVar() {
			v(p.Predicate.Var())
		}
		if p.Object.IsVar() {
			v(p.Object.Var())
		}
	}
}

func visitConclusionVariables(c Conclusion, v func(x int)) {
	for _, mt := range c.Statements {
		switch mt.Value.Value.Kind {
		case StatementTriple:
			p := mt.Value.Value.TriplePattern
			if p.Subject.IsVar() {
				v(p.Subject.Var())
			}
			if p.Predicate.IsVar() {
				v(p.Predicate.Var())
			}
			if p.Object.IsVar() {
				v(p.Object.Var())
			}
		case StatementEq:
			a, b := mt.Value.Value.EqLeft, mt.Value.Value.EqRight
			if a.IsVar() {
				v(a.Var())
			}
			if b.IsVar() {
				v(b.Var())
			}
		}
	}
}

// Hypothesis is a conjunction of signed triple patterns.
type Hypothesis struct {
	Patterns []inferdf.Signed[pattern.Pattern]
}

// NewHypothesis builds a hypothesis from its patterns.
func NewHypothesis(patterns...inferdf.Signed[pattern.Pattern]) Hypothesis {
	return Hypothesis{Patterns: patterns}
}

func (h Hypothesis) IsEmpty() bool { return len(h.Patterns) == 0 }

// Path names one hypothesis atom of one existential rule: Rule is an index
// into a System's rule list, Pattern an index into that rule's
// ExistentialHypothesis (the atoms of all its nested Exists quantifiers). The inference engine's bipolar pattern map is keyed by
// the atom's canonical shape and valued by Path, so a newly derived triple
// can find every rule it might make progress on without scanning all rules.
type Path struct {
	Rule    int
	Pattern int
}

// VariableCount returns one past the highest variable index declared
// anywhere in the formula, i.e. the width an Entailment substitution slice
// for this rule must have.
func (f Formula) VariableCount() int {
	max := -1
	f.VisitDeclaredVariables(func(x int) {
		if x > max {
			max = x
		}
	})
	return max + 1
}

// ExistentialHypothesis returns the atoms of every nested Exists
// quantifier's hypothesis, outermost first, if the formula is fully
// existential. Only fully
// existential rules register paths into the inference engine's bipolar
// map, since only they can be triggered by a single newly derived triple
// rather than requiring a full Close pass.
func (f Formula) ExistentialHypothesis() (Hypothesis, bool) {
	switch f.Kind {
	case FormulaExists:
		if inner, ok := f.ExistsData.Inner.ExistentialHypothesis(); ok {
			merged := append(append([]inferdf.Signed[pattern.Pattern]{}, f.ExistsData.Hypothesis.Patterns...), inner.Patterns...)
			return Hypothesis{Patterns: merged}, true
		}
		return f.ExistsData.Hypothesis, true
	case FormulaConclusion:
		return Hypothesis{}, true
	default:
		return Hypothesis{}, false
	}
}
