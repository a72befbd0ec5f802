// Package builder implements the fixed-point statement-insertion loop:
// inserting a signed quad, filtering it against any
// dependency modules, folding it into the dataset, running the inference
// engine on what changed, and draining whatever the engine concludes
// (further quads, resource equalities, resource inequalities) until nothing
// is left to process.
package builder

import (
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"

	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inference"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/rule"
)

// Builder owns the interpretation, dataset and rule system for one engine
// instance, and drives the insertion fixed point against zero or more
// read-only dependency modules.
type Builder struct {
	log hclog.Logger

	interp  *interpretation.Composite
	dataset *dataset.Dataset
	system  *inference.System
	deps    map[int]Dependency

	entailments []inferdf.Entailment
	entailIndex map[string]uint32
}

// New returns an empty builder with no dependencies.
func New(system *inference.System) *Builder {
	return &Builder{
		log:         hclog.NewNullLogger(),
		interp:      interpretation.NewComposite(),
		dataset:     dataset.New(),
		system:      system,
		deps:        make(map[int]Dependency),
		entailIndex: make(map[string]uint32),
	}
}

// SetLogger replaces the builder's logger (default: discard).
func (b *Builder) SetLogger(log hclog.Logger) { b.log = log }

// AddDependency registers dep under index d (caller-assigned, typically
// 0..n in the order dependency modules were opened), wiring it into both
// the composite interpretation and the builder's own dependency table.
func (b *Builder) AddDependency(d int, dep Dependency) {
	b.interp.AddDependency(d, dep)
	b.deps[d] = dep
}

// Interpretation returns the builder's composite interpretation.
func (b *Builder) Interpretation() *interpretation.Composite { return b.interp }

// Dataset returns the builder's dataset.
func (b *Builder) Dataset() *dataset.Dataset { return b.dataset }

// InsertTerm interns term, checking every dependency for a shared
// representation the first time it is seen locally.
func (b *Builder) InsertTerm(term inferdf.Term) inferdf.Id {
	return b.interp.InsertTerm(term)
}

// InsertQuad interns all of a quad's uninterpreted terms.
func (b *Builder) InsertQuad(s, p, o inferdf.Term, g *inferdf.Term) inferdf.Quad {
	var graph *inferdf.Id
	if g != nil {
		id := b.InsertTerm(*g)
		graph = &id
	}
	return inferdf.NewQuad(b.InsertTerm(s), b.InsertTerm(p), b.InsertTerm(o), graph)
}

// Insert adds a signed quad to the built dataset and runs the fixed-point
// saturation loop to exhaustion: the quad is folded
// into the dataset (unless a dependency already accounts for it), the
// inference engine evaluates every rule the new triple could unlock, and
// each conclusion is queued for the same treatment, including equalities
// (triggering an interpretation merge and re-derivation across every fact
// of the kept resource) and inequalities (a plain split).
func (b *Builder) Insert(q inferdf.Signed[inferdf.Quad], cause inferdf.Cause) error {
	stack := []stackEntry{{sign: q.Sign, stmt: quadOf(q.Value), cause: cause}}

	for len(stack) > 0 {
		entry := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch entry.stmt.kind {
		case quadStatementQuad:
			if err := b.insertQuadStatement(entry, &stack); err != nil {
				return err
			}

		case quadStatementEq:
			if entry.sign == inferdf.Positive {
				if err := b.mergeAndRederive(entry.stmt.a, entry.stmt.b, entry.stmt.graph, &stack); err != nil {
					return err
				}
			} else {
				if _, err := b.interp.Split(entry.stmt.a, entry.stmt.b); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (b *Builder) insertQuadStatement(entry stackEntry, stack *[]stackEntry) error {
	triple, graph := entry.stmt.quad.SplitGraph()

	ok, err := b.filter(triple, entry.sign)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	_, inserted, err := b.dataset.Insert(inferdf.NewSigned(entry.sign, entry.stmt.quad), entry.cause)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	b.log.Trace("inserted fact", "triple", triple, "sign", entry.sign)

	entailed, err := b.deduce(inferdf.NewSigned(entry.sign, triple))
	if err != nil {
		return err
	}
	for _, e := range entailed {
		*stack = append(*stack, b.toStackEntry(e, graph))
	}
	return nil
}

// mergeAndRederive merges a and b, rewrites every stored fact and every
// still-pending stack entry accordingly, then re-runs deduction across
// every fact (local and imported from a dependency) the kept resource now
// participates in.
func (b *Builder) mergeAndRederive(x, y inferdf.Id, graph *inferdf.Id, stack *[]stackEntry) error {
	if x == y {
		// A rule concluding ?x = ?y can bind both to the same resource.
		// There is nothing to merge, and re-deriving from the resource's
		// facts would push the same equality forever.
		return nil
	}
	kept, removed, err := b.interp.Merge(x, y)
	if err != nil {
		return err
	}

	if err := b.dataset.ReplaceId(kept, removed, func(f dataset.Fact) (bool, error) {
		return b.filter(f.Triple, f.Sign)
	}); err != nil {
		return err
	}
	for i := range *stack {
		(*stack)[i].replaceId(kept, removed)
	}

	if otherId, found := b.resolveLiteralAliases(kept, removed); found {
		// A future multi-vocabulary composition that can actually trigger
		// this would need its own Cause; none of our Vocabulary
		// implementations ever make resolveLiteralAliases report found=true
		// (see its doc comment), so this branch is presently unreachable.
		*stack = append(*stack, stackEntry{sign: inferdf.Positive, stmt: eqOf(kept, otherId, graph), cause: inferdf.Stated(0)})
	}

	b.log.Trace("merged resources", "kept", kept, "removed", removed)

	facts, err := b.resourceFacts(kept)
	if err != nil {
		return err
	}
	for _, rf := range facts {
		entailed, err := b.deduce(inferdf.NewSigned(rf.Sign, rf.Triple))
		if err != nil {
			return err
		}
		for _, e := range entailed {
			*stack = append(*stack, b.toStackEntry(e, graph))
		}
	}
	return nil
}

// InsertAll inserts every quad, continuing past a Contradiction on any one
// quad rather than aborting the whole batch, and aggregating every failure
// into a single *multierror.Error (nil if every quad succeeded).
func (b *Builder) InsertAll(quads []inferdf.Signed[inferdf.Quad], causeFor func(int) inferdf.Cause) error {
	var result *multierror.Error
	for i, q := range quads {
		if err := b.Insert(q, causeFor(i)); err != nil {
			result = multierror.Append(result, fmt.Errorf("quad %d: %w", i, err))
		}
	}
	return result.ErrorOrNil()
}

// Check runs one full saturation pass over every non-existential rule and
// reports the first MissingStatement it finds, if any universal rule's
// conclusion was never satisfied.
func (b *Builder) Check() error {
	ctx := &builderContext{b: b}
	deduced, err := b.system.CloseAll(ctx, b.entailmentIndex)
	if err != nil {
		return err
	}
	for _, e := range deduced {
		if e.Statement.Value.Value.Kind != rule.StatementTriple {
			continue
		}
		t := e.Statement.Value.Value.Triple
		if _, _, found := b.dataset.FindQuad(t.WithGraph(nil)); found {
			continue
		}
		entailment, ok := b.entailmentFor(e.Cause)
		if !ok {
			continue
		}
		return inferdf.MissingStatement{Statement: t, Entailment: entailment}
	}
	return nil
}

// resolveLiteralAliases would, after a merge, check whether a literal
// representation the discarded resource carried was already separately
// interpreted under a different id, and queue a further equality if so.
//
// Every literal's lexical form is interned into exactly one vocabulary
// handle by a Vocabulary's InsertLiteral before it ever reaches the
// interpretation layer (see vocabulary.Memory), so two resources can never
// hold two different literal handles denoting the same (value, datatype,
// lang), so the aliasing condition this hook guards against cannot arise in
// this module's term model. The hook stays wired into the merge path for
// a vocabulary composition that reintroduces the condition; today it
// always reports nothing found.
func (b *Builder) resolveLiteralAliases(kept, removed inferdf.Id) (otherId inferdf.Id, found bool) {
	return 0, false
}

func (b *Builder) deduce(triple inferdf.Signed[inferdf.Triple]) ([]inference.Entailed, error) {
	ctx := &builderContext{b: b}
	return b.system.Deduce(ctx, triple, b.entailmentIndex)
}

// entailmentIndex deduplicates (rule, substitution) pairs, assigning each
// distinct entailment a stable index into b.entailments, so two rule
// firings with the same bindings share one Cause.
func (b *Builder) entailmentIndex(e inferdf.Entailment) uint32 {
	key := entailmentKey(e)
	if i, ok := b.entailIndex[key]; ok {
		return i
	}
	i := uint32(len(b.entailments))
	b.entailments = append(b.entailments, e)
	b.entailIndex[key] = i
	return i
}

func (b *Builder) entailmentFor(cause inferdf.Cause) (inferdf.Entailment, bool) {
	if !cause.IsEntailed() || int(cause.Index) >= len(b.entailments) {
		return inferdf.Entailment{}, false
	}
	return b.entailments[cause.Index], true
}

func entailmentKey(e inferdf.Entailment) string {
	key := fmt.Sprintf("%d", e.RuleId)
	for _, s := range e.Substitution {
		if s == nil {
			key += ",_"
		} else {
			key += fmt.Sprintf(",%d", *s)
		}
	}
	return key
}

// toStackEntry wraps one deduced statement back into a stack entry scoped
// to the graph the triggering statement came from.
func (b *Builder) toStackEntry(e inference.Entailed, graph *inferdf.Id) stackEntry {
	signed := e.Statement.Value
	switch signed.Value.Kind {
	case rule.StatementTriple:
		q := signed.Value.Triple.WithGraph(graph)
		return stackEntry{sign: signed.Sign, stmt: quadOf(q), cause: e.Cause}
	default:
		return stackEntry{
			sign:  signed.Sign,
			stmt:  eqOf(signed.Value.EqLeft, signed.Value.EqRight, graph),
			cause: e.Cause,
		}
	}
}

// filter checks triple against every dependency's dataset: true means no dependency accounts for it (insert
// it locally); false means a dependency already stores it with the same
// sign (nothing to do); an error means a dependency stores its opposite
// (the triple cannot be added without contradiction).
func (b *Builder) filter(triple inferdf.Triple, sign inferdf.Sign) (bool, error) {
	for _, d := range b.interp.Dependencies() {
		dep := b.deps[d]
		for _, dependencyTriple := range b.interp.DependencyTriples(d, triple) {
			depSign, found, err := dep.FindTriple(dependencyTriple)
			if err != nil {
				return false, err
			}
			if !found {
				continue
			}
			if depSign == sign {
				return false, nil
			}
			return false, inferdf.NewSignContradiction(triple)
		}
	}
	return true, nil
}

// resourceFacts enumerates every fact kept appears in, local facts first,
// then each dependency's facts translated into local id space.
func (b *Builder) resourceFacts(kept inferdf.Id) ([]DependencyFact, error) {
	var out []DependencyFact
	for _, grf := range b.dataset.ResourceFacts(kept) {
		for _, gf := range grf.Facts {
			out = append(out, DependencyFact{Triple: gf.Fact.Triple, Sign: gf.Fact.Sign})
		}
	}

	for _, d := range b.interp.Dependencies() {
		dep := b.deps[d]
		for _, depId := range b.interp.DependencyIdsOf(d, kept) {
			facts, err := dep.ResourceFacts(depId)
			if err != nil {
				return nil, err
			}
			for _, f := range facts {
				local := b.interp.ImportTriple(d, f.Triple)
				out = append(out, DependencyFact{Triple: local, Sign: f.Sign})
			}
		}
	}

	return out, nil
}
