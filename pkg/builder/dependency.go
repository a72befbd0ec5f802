package builder

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// DependencyFact is one fact read back from a dependency's dataset, in the
// dependency's own id space.
type DependencyFact struct {
	Triple inferdf.Triple
	Sign   inferdf.Sign
}

// Dependency is a read-only module a Builder may import resources and facts
// from: its interpretation (to resolve shared terms, per
// interpretation.Dependency) and its dataset (to filter incoming statements
// and re-derive across a merge). Built against by both an in-memory
// dependency (tests) and the paged module reader.
type Dependency interface {
	interpretation.Dependency

	// FindTriple reports the sign t is stored with in the dependency's
	// dataset, searching every graph.
	FindTriple(t inferdf.Triple) (inferdf.Sign, bool, error)

	// SignedQuadMatching returns every triple of the given sign that has
	// the shape of p, searched across every graph.
	SignedQuadMatching(p inferdf.Signed[pattern.Canonical]) ([]DependencyFact, error)

	// ResourceFacts returns every fact id appears in, across every graph.
	ResourceFacts(id inferdf.Id) ([]DependencyFact, error)
}
