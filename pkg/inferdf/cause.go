package inferdf

// Cause records the provenance of a fact: either it was stated by an
// external source (identified by an opaque metadata index) or it was
// entailed by a specific rule application.
type Cause struct {
	// Kind discriminates Stated from Entailed.
	Kind CauseKind
	// Index is the metadata index (Stated) or entailment table index
	// (Entailed).
	Index uint32
}

// CauseKind discriminates the two kinds of Cause.
type CauseKind uint8

const (
	// CauseStated marks a fact that came from an external source (an
	// ingested quad).
	CauseStated CauseKind = iota
	// CauseEntailed marks a fact produced by rule evaluation.
	CauseEntailed
)

// Stated builds a Cause for an externally stated fact.
func Stated(metadataIndex uint32) Cause {
	return Cause{Kind: CauseStated, Index: metadataIndex}
}

// Entailed builds a Cause for a rule-derived fact.
func Entailed(entailmentIndex uint32) Cause {
	return Cause{Kind: CauseEntailed, Index: entailmentIndex}
}

// IsStated reports whether the cause is an externally stated fact.
func (c Cause) IsStated() bool {
	return c.Kind == CauseStated
}

// IsEntailed reports whether the cause is rule-derived.
func (c Cause) IsEntailed() bool {
	return c.Kind == CauseEntailed
}

// Entailment names a specific rule application: the rule that fired and the
// values bound to its variables. A nil entry in Substitution means the
// corresponding rule variable was not bound (should not normally occur in a
// committed entailment, but is tolerated for partial substitutions under
// construction).
type Entailment struct {
	RuleId       Id
	Substitution []*Id
}

// NewEntailment constructs an Entailment, copying the substitution so later
// mutation of the caller's slice cannot alias it.
func NewEntailment(ruleId Id, substitution []*Id) Entailment {
	cp := make([]*Id, len(substitution))
	copy(cp, substitution)
	return Entailment{RuleId: ruleId, Substitution: cp}
}
