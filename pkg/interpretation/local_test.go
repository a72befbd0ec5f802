package interpretation_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
)

// TestMergeContradictionLeavesNeighborsUntouched exercises Merge's failure
// path with a removed resource whose DifferentFrom set has more than one
// member, so that the contradiction-causing id (a) is not necessarily the
// first one Slice() happens to return.
// Before any neighbor's DifferentFrom is rewritten, Merge must already know
// the merge will fail, so no resource besides b is ever touched.
func TestMergeContradictionLeavesNeighborsUntouched(t *testing.T) {
	it := interpretation.New()

	a := it.NewResource()
	b := it.NewResource()
	x := it.NewResource()
	y := it.NewResource()

	// b is known distinct from both x and a; x and y are unrelated to a.
	_, err := it.Split(b, x)
	require.NoError(t, err)
	_, err = it.Split(b, a)
	require.NoError(t, err)
	_, err = it.Split(b, y)
	require.NoError(t, err)

	kept, removed, err := it.Merge(a, b)
	require.Error(t, err)
	require.Zero(t, kept)
	require.Zero(t, removed)

	var contra inferdf.Contradiction
	require.ErrorAs(t, err, &contra)
	require.Equal(t, inferdf.ContradictionMerge, contra.Kind)

	// b must still exist, with every one of its original DifferentFrom
	// edges intact.
	rb, ok := it.Get(b)
	require.True(t, ok)
	require.True(t, rb.DifferentFrom.Contains(x))
	require.True(t, rb.DifferentFrom.Contains(a))
	require.True(t, rb.DifferentFrom.Contains(y))

	// Neither x nor y may have been rewritten to point at a instead of b:
	// the rejected merge must not touch any resource besides b.
	rx, ok := it.Get(x)
	require.True(t, ok)
	require.True(t, rx.DifferentFrom.Contains(b))
	require.False(t, rx.DifferentFrom.Contains(a))

	ry, ok := it.Get(y)
	require.True(t, ok)
	require.True(t, ry.DifferentFrom.Contains(b))
	require.False(t, ry.DifferentFrom.Contains(a))

	// a's own DifferentFrom must be exactly what Split(b, a) recorded,
	// nothing more.
	ra, ok := it.Get(a)
	require.True(t, ok)
	require.True(t, ra.DifferentFrom.Contains(b))
	require.Equal(t, 1, ra.DifferentFrom.Len())
}

// A successful merge still rewrites every neighbor's DifferentFrom edge
// from the removed id to the kept one, keeping the relation symmetric, and
// retires the removed id from every handle map.
func TestMergeRewritesDifferentFromOnSuccess(t *testing.T) {
	it := interpretation.New()

	a := it.NewResource()
	b := it.NewResource()
	x := it.NewResource()

	_, err := it.Split(b, x)
	require.NoError(t, err)

	kept, removed, err := it.Merge(a, b)
	require.NoError(t, err)
	require.Equal(t, a, kept)
	require.Equal(t, b, removed)

	_, ok := it.Get(b)
	require.False(t, ok, "removed id must no longer be reachable")

	rx, ok := it.Get(x)
	require.True(t, ok)
	require.True(t, rx.DifferentFrom.Contains(a))
	require.False(t, rx.DifferentFrom.Contains(b))

	ra, ok := it.Get(a)
	require.True(t, ok)
	require.True(t, ra.DifferentFrom.Contains(x))
}

// Merge always keeps the smaller id regardless of call order.
func TestMergeCanonicalisesToSmallerId(t *testing.T) {
	it := interpretation.New()

	a := it.NewResource()
	b := it.NewResource()

	kept, removed, err := it.Merge(b, a)
	require.NoError(t, err)
	require.Equal(t, a, kept)
	require.Equal(t, b, removed)
}

// Split(a, a) fails, and does not record a into its own DifferentFrom set.
func TestSplitSameIdFails(t *testing.T) {
	it := interpretation.New()
	a := it.NewResource()

	_, err := it.Split(a, a)
	require.Error(t, err)

	var contra inferdf.Contradiction
	require.ErrorAs(t, err, &contra)
	require.Equal(t, inferdf.ContradictionSplit, contra.Kind)

	ra, ok := it.Get(a)
	require.True(t, ok)
	require.False(t, ra.DifferentFrom.Contains(a))
	require.Zero(t, ra.DifferentFrom.Len())
}

// Split is symmetric and idempotent: the second call on the same pair
// reports no new inequality, and both sides see each other.
func TestSplitIsSymmetricAndIdempotent(t *testing.T) {
	it := interpretation.New()
	a := it.NewResource()
	b := it.NewResource()

	isNew, err := it.Split(a, b)
	require.NoError(t, err)
	require.True(t, isNew)

	isNew, err = it.Split(a, b)
	require.NoError(t, err)
	require.False(t, isNew)

	ra, _ := it.Get(a)
	rb, _ := it.Get(b)
	require.True(t, ra.DifferentFrom.Contains(b))
	require.True(t, rb.DifferentFrom.Contains(a))
}
