package inference

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/rule"
)

// findSubstitutions extends initial into every substitution that satisfies
// hypothesis's atoms (skipping index excluded, or no atom if excluded is
// negative) and binds every one of vars:
//
//  1. For each remaining hypothesis atom, ctx.PatternMatching fetches every
//     currently known triple of the atom's shape, treating the atom's own
//     variables as wildcards.
//  2. Atom by atom, every partial substitution so far is extended with each
//     candidate triple of that atom, keeping only the extensions where
//     re-applying the atom's pattern agrees with bindings an earlier atom
//     already made; the search stops early once no partial substitution
//     survives. The results come out in the same order a depth-first walk
//     over the candidates would produce them.
//  3. Once every atom has contributed, any variable in vars the hypothesis
//     never bound is expanded across every known resource id ("a witness
//     exists somewhere in the known universe"), since such a variable only
//     appears in the formula's inner conclusion or constraints.
//
// The whole search runs under one reservation; resource ids any step mints
// are committed together only once the full set of substitutions is ready,
// and discarded together if the search fails outright.
func findSubstitutions(
	ctx Context,
	hypothesis rule.Hypothesis,
	vars []rule.Variable,
	initial *pattern.Substitution,
	excluded int,
) ([]*pattern.Substitution, error) {
	if hypothesis.IsEmpty() {
		return expandEscapingVariables(ctx, vars, []*pattern.Substitution{initial})
	}

	reservation := ctx.BeginReservation()

	var atoms []patternAtom
	for i, p := range hypothesis.Patterns {
		if i == excluded {
			continue
		}
		candidates, err := ctx.PatternMatching(p)
		if err != nil {
			reservation.Discard()
			return nil, err
		}
		atoms = append(atoms, patternAtom{pattern: p.Value, candidates: candidates})
	}

	results := []*pattern.Substitution{initial}
	for _, a := range atoms {
		var next []*pattern.Substitution
		for _, sub := range results {
			for _, t := range a.candidates {
				extended := sub.Clone()
				if a.pattern.Matching(extended, t) {
					next = append(next, extended)
				}
			}
		}
		results = next
		if len(results) == 0 {
			break
		}
	}

	expanded, err := expandEscapingVariables(ctx, vars, results)
	if err != nil {
		reservation.Discard()
		return nil, err
	}

	if err := reservation.Commit(); err != nil {
		return nil, err
	}
	return expanded, nil
}

type patternAtom struct {
	pattern    pattern.Pattern
	candidates []inferdf.Triple
}

// expandEscapingVariables cross-products each substitution in subs across
// every known resource id, for each variable in vars it does not already
// bind.
func expandEscapingVariables(ctx Context, vars []rule.Variable, subs []*pattern.Substitution) ([]*pattern.Substitution, error) {
	if len(subs) == 0 {
		return subs, nil
	}
	var unbound []rule.Variable
	for _, v := range vars {
		if !subs[0].Contains(v.Index) {
			unbound = append(unbound, v)
		}
	}
	if len(unbound) == 0 {
		return subs, nil
	}
	resources := ctx.Resources()
	result := subs
	for _, v := range unbound {
		var next []*pattern.Substitution
		for _, sub := range result {
			if sub.Contains(v.Index) {
				next = append(next, sub)
				continue
			}
			for _, r := range resources {
				extended := sub.Clone()
				extended.Bind(v.Index, r)
				next = append(next, extended)
			}
		}
		result = next
	}
	return result, nil
}
