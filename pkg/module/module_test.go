package module_test

import (
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdfkit/inferdf/pkg/classify"
	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/module"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

// buildFixture populates an interpretation and dataset with a mix of
// IRI-named and anonymous (blank-only) resources: a stated triple between
// two named resources, an entailed one sharing its subject, and an
// anonymous resource hanging off a named one so classification produces a
// non-empty Classification for Write to persist alongside it.
func buildFixture(t *testing.T) (vocabulary.Vocabulary, *interpretation.Interpretation, *dataset.Dataset, *classify.Classification) {
	t.Helper()

	vocab := vocabulary.NewMemory()
	interp := interpretation.New()

	alice := interp.InsertTerm(inferdf.Iri(vocab.InsertIri("https://example.org/alice")))
	bob := interp.InsertTerm(inferdf.Iri(vocab.InsertIri("https://example.org/bob")))
	knows := interp.InsertTerm(inferdf.Iri(vocab.InsertIri("https://example.org/knows")))
	name := interp.InsertTerm(inferdf.Iri(vocab.InsertIri("https://example.org/name")))
	aliceName := interp.InsertTerm(inferdf.Literal(vocab.InsertLiteral("Alice", "http://www.w3.org/2001/XMLSchema#string", "")))
	anon := interp.NewResource()

	ds := dataset.New()
	_, inserted, err := ds.DefaultGraph.Insert(dataset.Fact{
		Sign:   inferdf.Positive,
		Triple: inferdf.NewTriple(alice, knows, bob),
		Cause:  inferdf.Stated(0),
	})
	require.NoError(t, err)
	require.True(t, inserted)

	_, _, err = ds.DefaultGraph.Insert(dataset.Fact{
		Sign:   inferdf.Positive,
		Triple: inferdf.NewTriple(alice, name, aliceName),
		Cause:  inferdf.Entailed(0),
	})
	require.NoError(t, err)

	_, _, err = ds.DefaultGraph.Insert(dataset.Fact{
		Sign:   inferdf.Negative,
		Triple: inferdf.NewTriple(bob, name, aliceName),
		Cause:  inferdf.Stated(1),
	})
	require.NoError(t, err)

	_, _, err = ds.DefaultGraph.Insert(dataset.Fact{
		Sign:   inferdf.Positive,
		Triple: inferdf.NewTriple(anon, knows, alice),
		Cause:  inferdf.Stated(2),
	})
	require.NoError(t, err)

	cl := classify.Classify(interp, ds)
	return vocab, interp, ds, cl
}

func tempModuleFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "module-*.brdf")
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

// Write followed by Open must preserve exactly the same set of asserted
// quads regardless of the
// page size chosen, including the minimum 512-byte page size.
func TestWriteOpenRoundTripsFacts(t *testing.T) {
	for _, pageSize := range []uint32{512, module.DefaultPageSize} {
		vocab, interp, ds, cl := buildFixture(t)
		f := tempModuleFile(t)

		require.NoError(t, module.Write(f, vocab, interp, ds, cl, pageSize))

		readVocab := vocabulary.NewMemory()
		r, err := module.Open(f, readVocab, 0)
		require.NoError(t, err)

		alice, ok := r.TermInterpretation(inferdf.Iri(readVocab.InsertIri("https://example.org/alice")))
		require.True(t, ok)
		bob, ok := r.TermInterpretation(inferdf.Iri(readVocab.InsertIri("https://example.org/bob")))
		require.True(t, ok)
		knows, ok := r.TermInterpretation(inferdf.Iri(readVocab.InsertIri("https://example.org/knows")))
		require.True(t, ok)
		name, ok := r.TermInterpretation(inferdf.Iri(readVocab.InsertIri("https://example.org/name")))
		require.True(t, ok)
		aliceName, ok := r.TermInterpretation(inferdf.Literal(readVocab.InsertLiteral("Alice", "http://www.w3.org/2001/XMLSchema#string", "")))
		require.True(t, ok)

		sign, found, err := r.FindTriple(inferdf.NewTriple(alice, knows, bob))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, inferdf.Positive, sign)

		sign, found, err = r.FindTriple(inferdf.NewTriple(alice, name, aliceName))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, inferdf.Positive, sign)

		sign, found, err = r.FindTriple(inferdf.NewTriple(bob, name, aliceName))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, inferdf.Negative, sign)

		_, found, err = r.FindTriple(inferdf.NewTriple(bob, knows, alice))
		require.NoError(t, err)
		require.False(t, found)

		facts, err := r.ResourceFacts(alice)
		require.NoError(t, err)
		require.Len(t, facts, 3)

		matches, err := r.SignedQuadMatching(inferdf.NewSigned(inferdf.Positive, pattern.FromOptionTriple(&alice, nil, nil)))
		require.NoError(t, err)
		require.Len(t, matches, 2)
	}
}

// A resource with no IRI or literal representation (the anonymous subject
// of a blank subgraph, classified by package classify before Write is
// called) still round-trips through Get as blank-only, and contributes no
// IRI/literal table rows, even though its entry in the resources table
// carries a class.
func TestWriteOpenPreservesAnonymousResource(t *testing.T) {
	vocab, interp, ds, cl := buildFixture(t)
	f := tempModuleFile(t)

	require.NoError(t, module.Write(f, vocab, interp, ds, cl, module.DefaultPageSize))

	var anon inferdf.Id
	interp.Iter(func(id inferdf.Id, r *interpretation.Resource) bool {
		if r.IsAnonymous() {
			anon = id
			return false
		}
		return true
	})
	_, ok := cl.ResourceClass(anon)
	require.True(t, ok, "fixture's anonymous resource must have classified before Write")

	readVocab := vocabulary.NewMemory()
	r, err := module.Open(f, readVocab, 0)
	require.NoError(t, err)

	res, ok := r.Get(anon)
	require.True(t, ok)
	require.True(t, res.IsAnonymous())
}

func TestOpenRejectsBadTag(t *testing.T) {
	f := tempModuleFile(t)
	_, err := f.Write(make([]byte, 512))
	require.NoError(t, err)
	_, err = f.Seek(0, io.SeekStart)
	require.NoError(t, err)

	_, err = module.Open(f, vocabulary.NewMemory(), 0)
	require.ErrorIs(t, err, module.ErrInvalidTag)
}
