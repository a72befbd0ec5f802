package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/inference"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

func TestFormatTermIriAndLiteral(t *testing.T) {
	vocab := vocabulary.NewMemory()
	b := builder.New(inference.NewSystem())

	iriID := b.InsertTerm(inferdf.Iri(vocab.InsertIri("http://example.com/a")))
	litID := b.InsertTerm(inferdf.Literal(vocab.InsertLiteral("hi \"there\"", "", "en")))

	require.Equal(t, "<http://example.com/a>", formatTerm(b.Interpretation(), vocab, iriID))
	require.Equal(t, `"hi \"there\""@en`, formatTerm(b.Interpretation(), vocab, litID))
}

func TestFormatTermFallsBackToId(t *testing.T) {
	b := builder.New(inference.NewSystem())
	vocab := vocabulary.NewMemory()

	id := b.InsertTerm(inferdf.Blank(vocab.InsertBlank("ghost")))
	vocab2 := vocabulary.NewMemory()
	// Looked up against a vocabulary that never saw this blank label.
	got := formatTerm(b.Interpretation(), vocab2, id)
	require.Equal(t, id.String(), got)
}

func TestAllQuadsRendersInsertedFacts(t *testing.T) {
	vocab := vocabulary.NewMemory()
	b := builder.New(inference.NewSystem())

	s := inferdf.Iri(vocab.InsertIri("http://example.com/s"))
	p := inferdf.Iri(vocab.InsertIri("http://example.com/p"))
	o := inferdf.Iri(vocab.InsertIri("http://example.com/o"))

	quad := b.InsertQuad(s, p, o, nil)
	require.NoError(t, b.Insert(inferdf.NewSigned(inferdf.Positive, quad), inferdf.Stated(0)))

	lines := allQuads(b, vocab)
	require.Len(t, lines, 1)
	require.Equal(t, "<http://example.com/s> <http://example.com/p> <http://example.com/o> .", lines[0])
}
