package builder_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/inference"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/rule"
)

// subClassTransitivityRule builds "if a subClassOf b and b subClassOf c
// then a subClassOf c" as a fully existential rule: b is the existentially
// searched witness, a and c are bound by the hypothesis atoms themselves.
func subClassTransitivityRule(t *testing.T, id inferdf.Id, subClassOf inferdf.Id) rule.Rule {
	t.Helper()

	vb := rule.NewBuilder()
	a := vb.Var("a")
	b := vb.Var("b")
	c := vb.Var("c")

	hyp := rule.NewHypothesis(
		inferdf.NewSigned(inferdf.Positive, pattern.New(pattern.VarOf(a.Index), pattern.IdOf(subClassOf), pattern.VarOf(b.Index))),
		inferdf.NewSigned(inferdf.Positive, pattern.New(pattern.VarOf(b.Index), pattern.IdOf(subClassOf), pattern.VarOf(c.Index))),
	)
	conclusion := rule.NewConclusion(nil, rule.TrustedStatement(inferdf.Positive,
		rule.TripleOf(pattern.New(pattern.VarOf(a.Index), pattern.IdOf(subClassOf), pattern.VarOf(c.Index)))))

	formula := rule.ExistsOf([]rule.Variable{a, b, c}, hyp, rule.ConclusionOf(conclusion))

	r, err := vb.Build(id, formula)
	require.NoError(t, err)
	return r
}

// sameAsRule concludes an equality whenever two resources share a value of
// predicate p: "if x p v and y p v then x = y". Exercises the
// builder's Eq branch (mergeAndRederive) when it fires.
func sameAsRule(t *testing.T, id inferdf.Id, p inferdf.Id) rule.Rule {
	t.Helper()

	vb := rule.NewBuilder()
	x := vb.Var("x")
	y := vb.Var("y")
	v := vb.Var("v")

	hyp := rule.NewHypothesis(
		inferdf.NewSigned(inferdf.Positive, pattern.New(pattern.VarOf(x.Index), pattern.IdOf(p), pattern.VarOf(v.Index))),
		inferdf.NewSigned(inferdf.Positive, pattern.New(pattern.VarOf(y.Index), pattern.IdOf(p), pattern.VarOf(v.Index))),
	)
	conclusion := rule.NewConclusion(nil, rule.TrustedStatement(inferdf.Positive,
		rule.EqOf(pattern.VarOf(x.Index), pattern.VarOf(y.Index))))

	formula := rule.ExistsOf([]rule.Variable{x, y, v}, hyp, rule.ConclusionOf(conclusion))

	r, err := vb.Build(id, formula)
	require.NoError(t, err)
	return r
}

func newTestBuilder() (*builder.Builder, *inference.System) {
	system := inference.NewSystem()
	return builder.New(system), system
}

func TestInsertDerivesTransitiveConclusion(t *testing.T) {
	b, system := newTestBuilder()

	person := b.InsertTerm(inferdf.Iri(1))
	mammal := b.InsertTerm(inferdf.Iri(2))
	animal := b.InsertTerm(inferdf.Iri(3))
	subClassOf := b.InsertTerm(inferdf.Iri(4))

	system.Insert(subClassTransitivityRule(t, 0, subClassOf))

	require.NoError(t, b.Insert(
		inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(person, subClassOf, mammal, nil)),
		inferdf.Stated(0),
	))
	require.NoError(t, b.Insert(
		inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(mammal, subClassOf, animal, nil)),
		inferdf.Stated(1),
	))

	fact, graph, ok := b.Dataset().FindQuad(inferdf.NewQuad(person, subClassOf, animal, nil))
	require.True(t, ok)
	require.Nil(t, graph)
	require.Equal(t, inferdf.Positive, fact.Sign)
	require.True(t, fact.Cause.IsEntailed())

	// Chaining a third link derives the transitive conclusion across all three.
	reptile := b.InsertTerm(inferdf.Iri(5))
	require.NoError(t, b.Insert(
		inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(animal, subClassOf, reptile, nil)),
		inferdf.Stated(2),
	))
	_, _, ok = b.Dataset().FindQuad(inferdf.NewQuad(mammal, subClassOf, reptile, nil))
	require.True(t, ok)
}

func TestInsertIsIdempotent(t *testing.T) {
	b, system := newTestBuilder()

	x := b.InsertTerm(inferdf.Iri(1))
	y := b.InsertTerm(inferdf.Iri(2))
	p := b.InsertTerm(inferdf.Iri(3))
	system.Insert(subClassTransitivityRule(t, 0, p))

	q := inferdf.NewQuad(x, p, y, nil)
	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, q), inferdf.Stated(0)))
	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, q), inferdf.Stated(1)))

	require.Equal(t, 1, b.Dataset().DefaultGraph.Len())
}

func TestInsertMergesResourcesOnSameAsConclusion(t *testing.T) {
	b, system := newTestBuilder()

	alice := b.InsertTerm(inferdf.Iri(1))
	aliceAgain := b.InsertTerm(inferdf.Iri(2))
	email := b.InsertTerm(inferdf.Iri(3))
	hasEmail := b.InsertTerm(inferdf.Iri(4))
	knows := b.InsertTerm(inferdf.Iri(5))
	bob := b.InsertTerm(inferdf.Iri(6))

	system.Insert(sameAsRule(t, 0, hasEmail))

	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(alice, hasEmail, email, nil)), inferdf.Stated(0)))
	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(aliceAgain, knows, bob, nil)), inferdf.Stated(1)))

	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(aliceAgain, hasEmail, email, nil)), inferdf.Stated(2)))

	// alice was interned before aliceAgain, so the merge (smaller id wins)
	// keeps alice's id: the fact stated about aliceAgain should now be found
	// under alice.
	_, _, ok := b.Dataset().FindQuad(inferdf.NewQuad(alice, knows, bob, nil))
	require.True(t, ok)

	resource, found := b.Interpretation().Get(alice)
	require.True(t, found)
	require.Contains(t, resource.AsIri, uint32(2))
}

func TestCheckReportsMissingStatement(t *testing.T) {
	b, system := newTestBuilder()

	person := b.InsertTerm(inferdf.Iri(1))
	agent := b.InsertTerm(inferdf.Iri(2))
	typeOf := b.InsertTerm(inferdf.Iri(3))

	vb := rule.NewBuilder()
	x := vb.Var("x")
	constraints := rule.NewHypothesis(
		inferdf.NewSigned(inferdf.Positive, pattern.New(pattern.VarOf(x.Index), pattern.IdOf(typeOf), pattern.IdOf(person))),
	)
	conclusion := rule.NewConclusion(nil, rule.TrustedStatement(inferdf.Positive,
		rule.TripleOf(pattern.New(pattern.VarOf(x.Index), pattern.IdOf(typeOf), pattern.IdOf(agent)))))
	formula := rule.ForAllOf([]rule.Variable{x}, constraints, rule.ConclusionOf(conclusion))
	r, err := vb.Build(0, formula)
	require.NoError(t, err)
	system.Insert(r)

	alice := b.InsertTerm(inferdf.Iri(5))
	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(alice, typeOf, person, nil)), inferdf.Stated(0)))

	err = b.Check()
	var missing inferdf.MissingStatement
	require.ErrorAs(t, err, &missing)
	require.Equal(t, inferdf.NewTriple(alice, typeOf, agent), missing.Statement)

	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(alice, typeOf, agent, nil)), inferdf.Stated(1)))
	require.NoError(t, b.Check())
}

func TestInsertSkipsFactAlreadyAccountedForByDependency(t *testing.T) {
	dep := newMemDependency()
	dep.insertTerm(10, inferdf.Iri(100))
	dep.insertTerm(20, inferdf.Iri(200))
	dep.insertTerm(30, inferdf.Iri(300))
	dep.insertFact(inferdf.NewTriple(10, 20, 30), inferdf.Positive)

	b, _ := newTestBuilder()
	b.AddDependency(0, dep)

	x := b.InsertTerm(inferdf.Iri(100))
	p := b.InsertTerm(inferdf.Iri(200))
	y := b.InsertTerm(inferdf.Iri(300))

	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(x, p, y, nil)), inferdf.Stated(0)))

	require.Equal(t, 0, b.Dataset().DefaultGraph.Len())
}

func TestInsertContradictsOppositeSignInDependency(t *testing.T) {
	dep := newMemDependency()
	dep.insertTerm(10, inferdf.Iri(100))
	dep.insertTerm(20, inferdf.Iri(200))
	dep.insertTerm(30, inferdf.Iri(300))
	dep.insertFact(inferdf.NewTriple(10, 20, 30), inferdf.Positive)

	b, _ := newTestBuilder()
	b.AddDependency(0, dep)

	x := b.InsertTerm(inferdf.Iri(100))
	p := b.InsertTerm(inferdf.Iri(200))
	y := b.InsertTerm(inferdf.Iri(300))

	err := b.Insert(inferdf.NewSigned(inferdf.Negative, inferdf.NewQuad(x, p, y, nil)), inferdf.Stated(0))

	var contradiction inferdf.Contradiction
	require.ErrorAs(t, err, &contradiction)
	require.Equal(t, inferdf.ContradictionSign, contradiction.Kind)
}

func TestInsertAllAggregatesFailures(t *testing.T) {
	b, _ := newTestBuilder()

	x := b.InsertTerm(inferdf.Iri(1))
	p := b.InsertTerm(inferdf.Iri(2))
	y := b.InsertTerm(inferdf.Iri(3))

	quads := []inferdf.Signed[inferdf.Quad]{
		inferdf.NewSigned(inferdf.Positive, inferdf.NewQuad(x, p, y, nil)),
		inferdf.NewSigned(inferdf.Negative, inferdf.NewQuad(x, p, y, nil)),
	}

	err := b.InsertAll(quads, func(i int) inferdf.Cause { return inferdf.Stated(uint32(i)) })
	require.Error(t, err)
	require.Contains(t, err.Error(), "quad 1")
}

// memDependency is a minimal in-memory builder.Dependency used only by
// tests: a fixed interpretation plus dataset, never mutated once built.
type memDependency struct {
	resources map[inferdf.Id]*memResource
	terms     map[inferdf.Term]inferdf.Id
	facts     []dependencyFact
}

type memResource struct {
	terms []inferdf.Term
}

type dependencyFact struct {
	triple inferdf.Triple
	sign   inferdf.Sign
}

func newMemDependency() *memDependency {
	return &memDependency{
		resources: make(map[inferdf.Id]*memResource),
		terms:     make(map[inferdf.Term]inferdf.Id),
	}
}

func (d *memDependency) insertTerm(id inferdf.Id, term inferdf.Term) {
	d.resources[id] = &memResource{terms: []inferdf.Term{term}}
	d.terms[term] = id
}

func (d *memDependency) insertFact(t inferdf.Triple, sign inferdf.Sign) {
	d.facts = append(d.facts, dependencyFact{triple: t, sign: sign})
}

func (d *memDependency) Get(id inferdf.Id) (*interpretation.Resource, bool) {
	r, ok := d.resources[id]
	if !ok {
		return nil, false
	}
	res := interpretation.NewResource()
	for _, t := range r.terms {
		res.AddTerm(t)
	}
	return res, true
}

func (d *memDependency) TermsOf(id inferdf.Id) []inferdf.Term {
	r, ok := d.resources[id]
	if !ok {
		return nil
	}
	return r.terms
}

func (d *memDependency) TermInterpretation(t inferdf.Term) (inferdf.Id, bool) {
	id, ok := d.terms[t]
	return id, ok
}

func (d *memDependency) FindTriple(t inferdf.Triple) (inferdf.Sign, bool, error) {
	for _, f := range d.facts {
		if f.triple == t {
			return f.sign, true, nil
		}
	}
	return false, false, nil
}

func (d *memDependency) SignedQuadMatching(p inferdf.Signed[pattern.Canonical]) ([]builder.DependencyFact, error) {
	var out []builder.DependencyFact
	for _, f := range d.facts {
		if f.sign != p.Sign {
			continue
		}
		if !matchesCanonical(p.Value, f.triple) {
			continue
		}
		out = append(out, builder.DependencyFact{Triple: f.triple, Sign: f.sign})
	}
	return out, nil
}

func (d *memDependency) ResourceFacts(id inferdf.Id) ([]builder.DependencyFact, error) {
	var out []builder.DependencyFact
	for _, f := range d.facts {
		if f.triple.Subject == id || f.triple.Predicate == id || f.triple.Object == id {
			out = append(out, builder.DependencyFact{Triple: f.triple, Sign: f.sign})
		}
	}
	return out, nil
}

func matchesCanonical(c pattern.Canonical, t inferdf.Triple) bool {
	if c.SubjectKind == pattern.SubjectGiven && c.SubjectId != t.Subject {
		return false
	}
	switch c.PredicateKind {
	case pattern.PredicateGiven:
		if c.PredicateId != t.Predicate {
			return false
		}
	case pattern.PredicateSameAsSubject:
		if t.Predicate != t.Subject {
			return false
		}
	}
	switch c.ObjectKind {
	case pattern.ObjectGiven:
		if c.ObjectId != t.Object {
			return false
		}
	case pattern.ObjectSameAsSubject:
		if t.Object != t.Subject {
			return false
		}
	case pattern.ObjectSameAsPredicate:
		if t.Object != t.Predicate {
			return false
		}
	}
	return true
}
