package dataset

import (
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// Dataset is the default graph plus zero or more named graphs.
type Dataset struct {
	DefaultGraph *Graph
	NamedGraphs  map[inferdf.Id]*Graph
}

// New returns an empty dataset.
func New() *Dataset {
	return &Dataset{DefaultGraph: NewGraph(), NamedGraphs: make(map[inferdf.Id]*Graph)}
}

// Graph returns the graph named by g, or the default graph if g is nil,
// creating a named graph on first reference.
func (d *Dataset) Graph(g *inferdf.Id) *Graph {
	if g == nil {
		return d.DefaultGraph
	}
	gr, ok := d.NamedGraphs[*g]
	if !ok {
		gr = NewGraph()
		d.NamedGraphs[*g] = gr
	}
	return gr
}

// GraphIfExists is like Graph but never creates a named graph.
func (d *Dataset) GraphIfExists(g *inferdf.Id) (*Graph, bool) {
	if g == nil {
		return d.DefaultGraph, true
	}
	gr, ok := d.NamedGraphs[*g]
	return gr, ok
}

// Insert stores a signed quad, routing it to its graph.
func (d *Dataset) Insert(q inferdf.Signed[inferdf.Quad], cause inferdf.Cause) (uint32, bool, error) {
	triple, graph := q.Value.SplitGraph()
	return d.Graph(graph).Insert(newFact(q.Sign, triple, cause))
}

// FindQuad locates a quad regardless of sign, searching only the quad's own
// graph (the default graph when its graph is nil); other graphs are not
// searched.
func (d *Dataset) FindQuad(q inferdf.Quad) (Fact, *inferdf.Id, bool) {
	triple, graph := q.SplitGraph()
	if graph != nil {
		gr, ok := d.GraphIfExists(graph)
		if !ok {
			return Fact{}, nil, false
		}
		_, f, ok := gr.FindTriple(triple)
		return f, graph, ok
	}
	if _, f, ok := d.DefaultGraph.FindTriple(triple); ok {
		return f, nil, true
	}
	return Fact{}, nil, false
}

// GraphFact pairs a fact with the slab index it occupies in its graph.
type GraphFact struct {
	Index uint32
	Fact  Fact
}

// GraphResourceFacts pairs a graph id (nil for the default graph) with the
// facts a resource appears in within that graph.
type GraphResourceFacts struct {
	Graph *inferdf.Id
	Facts []GraphFact
}

// ResourceFacts returns, for every graph that mentions id (default graph
// first, then named graphs), the facts id appears in.
func (d *Dataset) ResourceFacts(id inferdf.Id) []GraphResourceFacts {
	var out []GraphResourceFacts
	collect := func(g *inferdf.Id, gr *Graph) {
		it := gr.ResourceFacts(id)
		var facts []GraphFact
		for {
			i, f, ok := it.Next()
			if !ok {
				break
			}
			facts = append(facts, GraphFact{Index: i, Fact: f})
		}
		if len(facts) > 0 {
			out = append(out, GraphResourceFacts{Graph: g, Facts: facts})
		}
	}
	collect(nil, d.DefaultGraph)
	for g, gr := range d.NamedGraphs {
		g := g
		collect(&g, gr)
	}
	return out
}

// QuadMatching matches a pattern plus optional graph restriction across the
// whole dataset, default graph first.
func (d *Dataset) QuadMatching(p pattern.Canonical, graph *inferdf.Id) []QuadMatch {
	var out []QuadMatch
	if graph != nil {
		gr, ok := d.GraphIfExists(graph)
		if !ok {
			return nil
		}
		m := gr.Matching(p)
		for {
			i, f, ok := m.Next()
			if !ok {
				break
			}
			out = append(out, QuadMatch{Index: i, Fact: f, Graph: graph})
		}
		return out
	}

	m := d.DefaultGraph.Matching(p)
	for {
		i, f, ok := m.Next()
		if !ok {
			break
		}
		out = append(out, QuadMatch{Index: i, Fact: f, Graph: nil})
	}
	for g, gr := range d.NamedGraphs {
		g := g
		m := gr.Matching(p)
		for {
			i, f, ok := m.Next()
			if !ok {
				break
			}
			out = append(out, QuadMatch{Index: i, Fact: f, Graph: &g})
		}
	}
	return out
}

// SignedQuadMatching is QuadMatching restricted to facts carrying the given
// sign, searched across every graph (default graph first), used by the
// inference engine's Context.PatternMatching to enumerate every triple of
// the given sign currently known.
func (d *Dataset) SignedQuadMatching(p inferdf.Signed[pattern.Canonical]) []QuadMatch {
	var out []QuadMatch
	m := d.DefaultGraph.SignedMatching(p)
	for {
		i, f, ok := m.Next()
		if !ok {
			break
		}
		out = append(out, QuadMatch{Index: i, Fact: f, Graph: nil})
	}
	for g, gr := range d.NamedGraphs {
		g := g
		m := gr.SignedMatching(p)
		for {
			i, f, ok := m.Next()
			if !ok {
				break
			}
			out = append(out, QuadMatch{Index: i, Fact: f, Graph: &g})
		}
	}
	return out
}

// QuadMatch pairs a matched fact with the graph it was found in (nil for
// the default graph).
type QuadMatch struct {
	Index uint32
	Fact  Fact
	Graph *inferdf.Id
}

// ReplaceId rewrites from to to across every graph.
func (d *Dataset) ReplaceId(to, from inferdf.Id, filter func(Fact) (bool, error)) error {
	if err := d.DefaultGraph.ReplaceId(to, from, filter); err != nil {
		return err
	}
	for _, gr := range d.NamedGraphs {
		if err := gr.ReplaceId(to, from, filter); err != nil {
			return err
		}
	}
	return nil
}
