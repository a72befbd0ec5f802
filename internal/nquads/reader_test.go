package nquads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadAllTriples(t *testing.T) {
	input := `<http://a> <http://p> <http://b> .
# a comment line

_:x <http://p> "hello"@en .
<http://a> <http://p> "42"^^<http://www.w3.org/2001/XMLSchema#integer> <http://g> .
`
	quads, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, quads, 3)

	require.Equal(t, Term{Kind: IRI, Value: "http://a"}, quads[0].Subject)
	require.Equal(t, Term{Kind: IRI, Value: "http://b"}, quads[0].Object)
	require.Nil(t, quads[0].Graph)

	require.Equal(t, Term{Kind: BlankNode, Value: "x"}, quads[1].Subject)
	require.Equal(t, Term{Kind: Literal, Value: "hello", Datatype: RDFLangString, Lang: "en"}, quads[1].Object)

	require.NotNil(t, quads[2].Graph)
	require.Equal(t, Term{Kind: IRI, Value: "http://g"}, *quads[2].Graph)
	require.Equal(t, "http://www.w3.org/2001/XMLSchema#integer", quads[2].Object.Datatype)
}

func TestReadAllEscapesAndPlainLiteral(t *testing.T) {
	input := `<http://a> <http://p> "line\nbreak \"quoted\"" .` + "\n"
	quads, err := ReadAll(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, quads, 1)
	require.Equal(t, "line\nbreak \"quoted\"", quads[0].Object.Value)
	require.Equal(t, XSDString, quads[0].Object.Datatype)
}

func TestReadAllRejectsMissingDot(t *testing.T) {
	input := `<http://a> <http://p> <http://b>` + "\n"
	_, err := ReadAll(strings.NewReader(input))
	require.Error(t, err)
}

func TestReadAllRejectsLiteralGraph(t *testing.T) {
	input := `<http://a> <http://p> <http://b> "not a graph" .` + "\n"
	_, err := ReadAll(strings.NewReader(input))
	require.Error(t, err)
}
