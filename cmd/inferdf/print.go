package main

import (
	"fmt"
	"strings"

	"github.com/rdfkit/inferdf/pkg/builder"
	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
	"github.com/rdfkit/inferdf/pkg/vocabulary"
)

// formatTerm renders a resource id back to its first known lexical
// representation, N-Quads-style. A freshly minted resource with no
// vocabulary-backed term (e.g. a conclusion-only existential the engine
// invented) falls back to its bare id.
func formatTerm(interp *interpretation.Composite, vocab vocabulary.Vocabulary, id inferdf.Id) string {
	for _, t := range interp.TermsOf(id) {
		switch t.Kind {
		case inferdf.TermIri:
			if iri, ok := vocab.Iri(t.Handle); ok {
				return "<" + iri + ">"
			}
		case inferdf.TermBlank:
			if label, ok := vocab.Blank(t.Handle); ok {
				return "_:" + label
			}
		case inferdf.TermLiteral:
			if lit, ok := vocab.Literal(t.Handle); ok {
				return formatLiteral(lit)
			}
		}
	}
	return id.String()
}

func formatLiteral(l vocabulary.Literal) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range l.Value {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	if l.Lang != "" {
		b.WriteByte('@')
		b.WriteString(l.Lang)
		return b.String()
	}
	if l.Datatype != "" {
		b.WriteString("^^<")
		b.WriteString(l.Datatype)
		b.WriteByte('>')
	}
	return b.String()
}

func formatTriple(interp *interpretation.Composite, vocab vocabulary.Vocabulary, t inferdf.Triple) string {
	return fmt.Sprintf("%s %s %s .",
		formatTerm(interp, vocab, t.Subject),
		formatTerm(interp, vocab, t.Predicate),
		formatTerm(interp, vocab, t.Object))
}

// allQuads renders every fact of the final dataset as N-Quads-style lines,
// default graph first, then named graphs in map iteration order.
func allQuads(b *builder.Builder, vocab vocabulary.Vocabulary) []string {
	interp := b.Interpretation()
	ds := b.Dataset()

	var lines []string
	lines = append(lines, graphLines(interp, vocab, ds.DefaultGraph, nil)...)
	for id, g := range ds.NamedGraphs {
		graphId := id
		lines = append(lines, graphLines(interp, vocab, g, &graphId)...)
	}
	return lines
}

func graphLines(interp *interpretation.Composite, vocab vocabulary.Vocabulary, g *dataset.Graph, graph *inferdf.Id) []string {
	var lines []string
	m := g.Matching(pattern.FromOptionTriple(nil, nil, nil))
	for {
		_, f, ok := m.Next()
		if !ok {
			break
		}
		line := formatTriple(interp, vocab, f.Triple)
		if graph != nil {
			line = line[:len(line)-1] + formatTerm(interp, vocab, *graph) + " ."
		}
		if f.Sign == inferdf.Negative {
			line = "# (negative) " + line
		}
		lines = append(lines, line)
	}
	return lines
}
