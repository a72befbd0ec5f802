package builder

import "github.com/rdfkit/inferdf/pkg/inferdf"

// quadStatementKind discriminates a queued statement's variant.
type quadStatementKind uint8

const (
	quadStatementQuad quadStatementKind = iota
	quadStatementEq
)

// quadStatement is one item of the fixed-point stack the Insert loop drains:
// either a whole quad to add to the dataset, or an
// equality/inequality between two resources discovered by a rule
// conclusion, still scoped to the graph it was derived in.
type quadStatement struct {
	kind quadStatementKind

	quad inferdf.Quad

	a, b  inferdf.Id
	graph *inferdf.Id
}

func quadOf(q inferdf.Quad) quadStatement {
	return quadStatement{kind: quadStatementQuad, quad: q}
}

func eqOf(a, b inferdf.Id, graph *inferdf.Id) quadStatement {
	return quadStatement{kind: quadStatementEq, a: a, b: b, graph: graph}
}

// replaceId rewrites every occurrence of from into to in place, matching
// the ReplaceId idiom used throughout pkg/inferdf.
func (s *quadStatement) replaceId(to, from inferdf.Id) {
	switch s.kind {
	case quadStatementQuad:
		s.quad.ReplaceId(to, from)
	default:
		if s.a == from {
			s.a = to
		}
		if s.b == from {
			s.b = to
		}
		if s.graph != nil && *s.graph == from {
			*s.graph = to
		}
	}
}

// stackEntry is one signed, caused statement queued for processing.
type stackEntry struct {
	sign  inferdf.Sign
	stmt  quadStatement
	cause inferdf.Cause
}

func (e *stackEntry) replaceId(to, from inferdf.Id) {
	e.stmt.replaceId(to, from)
}
