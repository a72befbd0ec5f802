package inference

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/rule"
)

// System is the set of rules a builder evaluates against, plus the index
// (paths) that lets a single newly derived triple find every fully
// existential rule it might let fire, without scanning every rule in the
// system.
type System struct {
	rules []rule.Rule
	index map[inferdf.Id]int

	// paths maps each hypothesis atom's canonical shape, signed, to the
	// (rule, atom) pairs it could feed.
	paths *pattern.Bipolar[rule.Path]

	// varCount[i] is rules[i].Formula.VariableCount(), cached so Entailment
	// substitution slices are sized without re-walking the formula.
	varCount []int
}

// NewSystem returns an empty rule system.
func NewSystem() *System {
	return &System{index: make(map[inferdf.Id]int), paths: pattern.NewBipolar[rule.Path]()}
}

// Len returns the number of distinct rules inserted.
func (s *System) Len() int { return len(s.rules) }

// Get returns the i-th rule.
func (s *System) Get(i int) (rule.Rule, bool) {
	if i < 0 || i >= len(s.rules) {
		return rule.Rule{}, false
	}
	return s.rules[i], true
}

// Insert adds r to the system, indexing its hypothesis atoms for
// deduce-from-triple lookups if it is fully existential. Inserting
// the same rule id twice is a no-op; the caller is expected to give each
// distinct rule a distinct id.
func (s *System) Insert(r rule.Rule) int {
	if i, ok := s.index[r.Id]; ok {
		return i
	}
	i := len(s.rules)
	s.rules = append(s.rules, r)
	s.varCount = append(s.varCount, r.Formula.VariableCount())
	s.index[r.Id] = i

	if r.IsExistential() {
		if hyp, ok := r.Formula.ExistentialHypothesis(); ok {
			for p, atom := range hyp.Patterns {
				shape := pattern.FromPattern(atom.Value)
				s.paths.Insert(inferdf.NewSigned(atom.Sign, shape), rule.Path{Rule: i, Pattern: p})
			}
		}
	}
	return i
}

// DeduceFromTriple evaluates every fully existential rule that triple's
// shape could feed.
func (s *System) DeduceFromTriple(ctx Context, triple inferdf.Signed[inferdf.Triple]) (Deduction, error) {
	var deduction Deduction
	for _, path := range s.paths.Get(triple) {
		d, err := s.deduceFromPath(ctx, path)
		if err != nil {
			return Deduction{}, err
		}
		deduction.MergeWith(d)
	}
	return deduction, nil
}

// Close evaluates every non-existential rule against the current state from
// scratch, in a single pass over the rules; conclusions are returned, not
// fed back in, so it does not iterate to a fixed point.
func (s *System) Close(ctx Context) (Deduction, error) {
	var deduction Deduction
	for i, r := range s.rules {
		if r.IsExistential() {
			continue
		}
		d, err := s.deduceFromRule(ctx, i, r, pattern.NewSubstitution())
		if err != nil {
			return Deduction{}, err
		}
		deduction.MergeWith(d)
	}
	return deduction, nil
}

// deduceFromPath re-evaluates the whole rule path.Rule names from scratch.
// The path only tells us *which* existential rule the new triple might have
// unlocked a solution for: by the time findSubstitutions runs, the triple
// is already part of the dataset Context.PatternMatching queries, so the
// fresh, empty-substitution re-derivation still picks it up as a candidate
// for whichever hypothesis atom it matches.
func (s *System) deduceFromPath(ctx Context, path rule.Path) (Deduction, error) {
	r, ok := s.Get(path.Rule)
	if !ok {
		return Deduction{}, nil
	}
	return s.deduceFromRule(ctx, path.Rule, r, pattern.NewSubstitution())
}

func (s *System) deduceFromRule(ctx Context, ruleIndex int, r rule.Rule, substitution *pattern.Substitution) (Deduction, error) {
	return s.deduceFromFormula(ctx, r.Id, s.varCount[ruleIndex], r.Formula, substitution)
}

func (s *System) deduceFromFormula(ctx Context, ruleId inferdf.Id, varCount int, f rule.Formula, substitution *pattern.Substitution) (Deduction, error) {
	switch f.Kind {
	case rule.FormulaExists:
		e := f.ExistsData
		subs, err := findSubstitutions(ctx, e.Hypothesis, e.Variables, substitution, -1)
		if err != nil {
			return Deduction{}, err
		}
		var deduction Deduction
		for _, sub := range subs {
			d, err := s.deduceFromFormula(ctx, ruleId, varCount, e.Inner, sub)
			if err != nil {
				return Deduction{}, err
			}
			deduction.MergeWith(d)
		}
		return deduction, nil

	case rule.FormulaForAll:
		a := f.ForAllData
		sub := NewSubDeduction(inferdf.NewEntailment(ruleId, substitution.Slice(varCount)))

		subs, err := findSubstitutions(ctx, a.Constraints, a.Variables, substitution, -1)
		if err != nil {
			return Deduction{}, err
		}
		for _, s2 := range subs {
			d, err := s.deduceFromFormula(ctx, ruleId, varCount, a.Inner, s2)
			if err != nil {
				return Deduction{}, err
			}
			// A universal rule asserts its conclusion only if it holds
			// for EVERY witness satisfying the constraints: one witness
			// contributing nothing voids the whole rule's firing.
			if d.IsEmpty() {
				return Deduction{}, nil
			}
			sub.MergeWith(d)
		}
		return sub.ToDeduction(), nil

	default:
		c := f.ConclusionData
		sub := NewSubDeduction(inferdf.NewEntailment(ruleId, substitution.Slice(varCount)))
		for _, statement := range c.Statements {
			instantiated := statement.Value.Value.InstantiateOrCreate(substitution, ctx.NewResource)
			sub.Insert(rule.NewMaybeTrusted(inferdf.NewSigned(statement.Value.Sign, instantiated), statement.Trust))
		}
		return sub.ToDeduction(), nil
	}
}
