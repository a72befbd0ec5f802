package inference

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/rule"
)

// Deduction accumulates the sub-deductions produced while evaluating one
// formula tree (one per ForAll/Conclusion node that actually fired).
type Deduction struct {
	subs []SubDeduction
}

// IsEmpty reports whether evaluating the formula produced no conclusions at
// all, the signal a ForAll uses to decide a witness contributed nothing.
func (d Deduction) IsEmpty() bool { return len(d.subs) == 0 }

// MergeWith absorbs other's sub-deductions.
func (d *Deduction) MergeWith(other Deduction) {
	d.subs = append(d.subs, other.subs...)
}

// Collect stamps each accumulated statement with the entailment that
// produced it (assigning each distinct entailment an index via
// entailmentIndex) and hands it to newTriple.
func (d Deduction) Collect(
	entailmentIndex func(inferdf.Entailment) uint32,
	newTriple func(rule.MaybeTrusted[inferdf.Signed[rule.Statement]], inferdf.Cause),
) {
	for _, s := range d.subs {
		e := entailmentIndex(s.Entailment)
		cause := inferdf.Entailed(e)
		for _, statement := range s.Statements {
			newTriple(statement, cause)
		}
	}
}

// SubDeduction is the statements one Entailment (one rule firing, with one
// concrete substitution) concludes.
type SubDeduction struct {
	Entailment inferdf.Entailment
	Statements []rule.MaybeTrusted[inferdf.Signed[rule.Statement]]
}

// NewSubDeduction starts an empty sub-deduction for the given entailment.
func NewSubDeduction(e inferdf.Entailment) SubDeduction {
	return SubDeduction{Entailment: e}
}

// Insert records one concluded statement.
func (s *SubDeduction) Insert(st rule.MaybeTrusted[inferdf.Signed[rule.Statement]]) {
	s.Statements = append(s.Statements, st)
}

// MergeWith folds every statement of every sub-deduction in other into s,
// keeping s's own Entailment (used when a ForAll absorbs the deductions its
// inner formula produced for each witness into its own sub-deduction).
func (s *SubDeduction) MergeWith(other Deduction) {
	for _, o := range other.subs {
		s.Statements = append(s.Statements, o.Statements...)
	}
}

// ToDeduction wraps s as a single-element Deduction.
func (s SubDeduction) ToDeduction() Deduction {
	return Deduction{subs: []SubDeduction{s}}
}
