package inference

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/rule"
)

// Entailed is one concluded statement, already stamped with the cause
// naming the entailment that produced it.
type Entailed struct {
	Statement rule.MaybeTrusted[inferdf.Signed[rule.Statement]]
	Cause     inferdf.Cause
}

// Deduce evaluates every fully existential rule triple might have unlocked
// and returns its conclusions, assigning each firing an entailment index via
// entailmentIndex (which the caller is expected to back with its own
// entailment table, deduplicating identical (rule, substitution) pairs).
func (s *System) Deduce(ctx Context, triple inferdf.Signed[inferdf.Triple], entailmentIndex func(inferdf.Entailment) uint32) ([]Entailed, error) {
	d, err := s.DeduceFromTriple(ctx, triple)
	if err != nil {
		return nil, err
	}
	return collect(d, entailmentIndex), nil
}

// CloseAll evaluates every non-existential rule from scratch in a single
// pass (the pass Builder.Check runs once); it does not iterate to a fixed
// point.
func (s *System) CloseAll(ctx Context, entailmentIndex func(inferdf.Entailment) uint32) ([]Entailed, error) {
	d, err := s.Close(ctx)
	if err != nil {
		return nil, err
	}
	return collect(d, entailmentIndex), nil
}

func collect(d Deduction, entailmentIndex func(inferdf.Entailment) uint32) []Entailed {
	var out []Entailed
	d.Collect(entailmentIndex, func(st rule.MaybeTrusted[inferdf.Signed[rule.Statement]], cause inferdf.Cause) {
		out = append(out, Entailed{Statement: st, Cause: cause})
	})
	return out
}
