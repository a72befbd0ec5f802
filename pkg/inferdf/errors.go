package inferdf

import "fmt"

// Contradiction is raised when a triple is asserted with the opposite sign
// of an existing fact (dataset contradiction), or when an equality is
// asserted between two resources already known distinct, or an inequality
// is asserted between a resource and itself (interpretation contradiction).
type Contradiction struct {
	// Kind distinguishes a dataset-level sign clash from an
	// interpretation-level merge/split clash.
	Kind    ContradictionKind
	Triple  Triple
	A, B    Id
	HasAB   bool
	HasTrip bool
}

// ContradictionKind discriminates the sources of a Contradiction.
type ContradictionKind uint8

const (
	// ContradictionSign: a triple was asserted with both signs.
	ContradictionSign ContradictionKind = iota
	// ContradictionMerge: merge(a, b) attempted while a and b are known
	// distinct.
	ContradictionMerge
	// ContradictionSplit: split(a, a) attempted.
	ContradictionSplit
)

// NewSignContradiction builds a Contradiction for a triple asserted with
// conflicting signs.
func NewSignContradiction(t Triple) Contradiction {
	return Contradiction{Kind: ContradictionSign, Triple: t, HasTrip: true}
}

// NewMergeContradiction builds a Contradiction for a merge of two resources
// already known distinct.
func NewMergeContradiction(a, b Id) Contradiction {
	return Contradiction{Kind: ContradictionMerge, A: a, B: b, HasAB: true}
}

// NewSplitContradiction builds a Contradiction for split(a, a).
func NewSplitContradiction(a Id) Contradiction {
	return Contradiction{Kind: ContradictionSplit, A: a, B: a, HasAB: true}
}

// Error implements error.
func (c Contradiction) Error() string {
	switch c.Kind {
	case ContradictionSign:
		return fmt.Sprintf("contradiction: triple %v asserted with both signs", c.Triple)
	case ContradictionMerge:
		return fmt.Sprintf("contradiction: cannot merge %v and %v, already known distinct", c.A, c.B)
	case ContradictionSplit:
		return fmt.Sprintf("contradiction: cannot split %v from itself", c.A)
	default:
		return "contradiction"
	}
}

// MissingStatement is returned by Builder.Check when a universally
// quantified rule's conclusion was never satisfied.
type MissingStatement struct {
	Statement  Triple
	Entailment Entailment
}

// Error implements error.
func (m MissingStatement) Error() string {
	return fmt.Sprintf("missing required statement %v (required by rule %v)", m.Statement, m.Entailment.RuleId)
}

// InvalidRule is returned when a rule fails construction-time validation:
// shadowed variable indices across nested quantifiers, or an unconstrained
// universal quantifier.
type InvalidRule struct {
	Reason string
}

// Error implements error.
func (e InvalidRule) Error() string {
	return fmt.Sprintf("invalid rule: %s", e.Reason)
}

func (e InvalidRule) Unwrap() error { return nil }

var _ error = Contradiction{}
var _ error = MissingStatement{}
var _ error = InvalidRule{}
