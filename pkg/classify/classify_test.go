package classify_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rdfkit/inferdf/pkg/classify"
	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
)

func insert(t *testing.T, ds *dataset.Dataset, s, p, o inferdf.Id) {
	t.Helper()
	_, _, err := ds.DefaultGraph.Insert(dataset.Fact{
		Sign:   inferdf.Positive,
		Triple: inferdf.NewTriple(s, p, o),
		Cause:  inferdf.Stated(0),
	})
	require.NoError(t, err)
}

// A lone anonymous resource with a single property pointing at a named
// resource gets its own one-member group, no matter how many times the
// same named object is reused elsewhere.
func TestClassifyNonReflexive(t *testing.T) {
	interp := interpretation.New()
	ds := dataset.New()

	knows := interp.InsertTerm(inferdf.Iri(1))
	bob := interp.InsertTerm(inferdf.Iri(2))
	a := interp.NewResource()
	insert(t, ds, a, knows, bob)

	cl := classify.Classify(interp, ds)

	class, ok := cl.ResourceClass(a)
	require.True(t, ok)
	require.Equal(t, uint32(0), class.Group.Layer)

	desc, ok := cl.Group(class.Group)
	require.True(t, ok)
	require.Len(t, desc.Members, 1)
	require.Len(t, desc.Members[0].Properties, 1)

	binding := desc.Members[0].Properties[0]
	require.Equal(t, inferdf.Positive, binding.Sign)
	require.Equal(t, classify.ReferenceSingleton, binding.A.Kind)
	require.Equal(t, knows, binding.A.Singleton)
	require.Equal(t, classify.ReferenceSingleton, binding.B.Kind)
	require.Equal(t, bob, binding.B.Singleton)
}

// Two anonymous resources that merely reference each other (no named
// properties at all) but are NOT mutually reachable form two distinct
// non-reflexive, strictly layered classes: the one with no outgoing edge
// classifies first (layer 0), and the one pointing at it classifies next
// (layer 1), referencing the first by Class rather than by Group.
func TestClassifyLayering(t *testing.T) {
	interp := interpretation.New()
	ds := dataset.New()

	p := interp.InsertTerm(inferdf.Iri(1))
	leaf := interp.NewResource()
	parent := interp.NewResource()
	insert(t, ds, parent, p, leaf)

	cl := classify.Classify(interp, ds)

	leafClass, ok := cl.ResourceClass(leaf)
	require.True(t, ok)
	require.Equal(t, uint32(0), leafClass.Group.Layer)

	parentClass, ok := cl.ResourceClass(parent)
	require.True(t, ok)
	require.Equal(t, uint32(1), parentClass.Group.Layer)

	desc, ok := cl.Group(parentClass.Group)
	require.True(t, ok)
	binding := desc.Members[0].Properties[0]
	require.Equal(t, classify.ReferenceClass, binding.B.Kind)
	require.Equal(t, leafClass, binding.B.ClassValue)
}

// Two structurally identical, mutually independent anonymous 3-rings
// collapse to a single interned GroupId, regardless of the arbitrary
// order resource ids happened to be allocated in.
func TestClassifyReflexiveRingsCollapse(t *testing.T) {
	interp := interpretation.New()
	ds := dataset.New()

	next := interp.InsertTerm(inferdf.Iri(1))

	ring := func() [3]inferdf.Id {
		a := interp.NewResource()
		b := interp.NewResource()
		c := interp.NewResource()
		insert(t, ds, a, next, b)
		insert(t, ds, b, next, c)
		insert(t, ds, c, next, a)
		return [3]inferdf.Id{a, b, c}
	}

	ring1 := ring()
	ring2 := ring()

	cl := classify.Classify(interp, ds)

	c1, ok := cl.ResourceClass(ring1[0])
	require.True(t, ok)
	c2, ok := cl.ResourceClass(ring2[0])
	require.True(t, ok)

	require.Equal(t, c1.Group, c2.Group, "two independent isomorphic rings must land in the same group")

	desc, ok := cl.Group(c1.Group)
	require.True(t, ok)
	require.Len(t, desc.Members, 3)
	for _, m := range desc.Members {
		require.Len(t, m.Properties, 1)
		require.Equal(t, classify.ReferenceGroup, m.Properties[0].B.Kind)
	}
}

// The same anonymous ring built in two independent interpretations (with
// different resource ids for the blank nodes) produces identical group
// descriptions: classes depend only on structure and the ids of named
// neighbours.
func TestClassifyDescriptionsEqualAcrossRuns(t *testing.T) {
	build := func(padding int) (classify.Description, classify.GroupId) {
		interp := interpretation.New()
		ds := dataset.New()

		next := interp.InsertTerm(inferdf.Iri(1))
		// Shift the blank nodes' ids between runs so equality can only
		// come from structure, never from id coincidence.
		for i := 0; i < padding; i++ {
			interp.InsertTerm(inferdf.Iri(uint32(10 + i)))
		}

		a := interp.NewResource()
		b := interp.NewResource()
		c := interp.NewResource()
		insert(t, ds, a, next, b)
		insert(t, ds, b, next, c)
		insert(t, ds, c, next, a)

		cl := classify.Classify(interp, ds)
		class, ok := cl.ResourceClass(a)
		require.True(t, ok)
		desc, ok := cl.Group(class.Group)
		require.True(t, ok)
		return desc, class.Group
	}

	desc1, group1 := build(0)
	desc2, group2 := build(5)

	require.Equal(t, group1, group2)
	if diff := cmp.Diff(desc1, desc2); diff != "" {
		t.Fatalf("ring descriptions differ across runs (-run1 +run2):\n%s", diff)
	}
}

// A dataset with no anonymous resources at all classifies to nothing.
func TestClassifyEmpty(t *testing.T) {
	interp := interpretation.New()
	ds := dataset.New()

	p := interp.InsertTerm(inferdf.Iri(1))
	a := interp.InsertTerm(inferdf.Iri(2))
	b := interp.InsertTerm(inferdf.Iri(3))
	insert(t, ds, a, p, b)

	cl := classify.Classify(interp, ds)
	require.Empty(t, cl.Classes)
}
