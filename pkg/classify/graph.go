package classify

import (
	"sort"

	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
	"github.com/rdfkit/inferdf/pkg/pattern"
)

// node is a vertex of the classification graph: either the anonymous
// resource itself, or one (sign, predicate, object) edge hanging off it. A
// triple node exists so that the predicate and object each get their own
// place in the SCC decomposition.
type node struct {
	isResource bool

	// isResource == true: the anonymous resource.
	resource inferdf.Id

	// isResource == false: the (subject, sign, predicate, object) edge.
	subject   inferdf.Id
	sign      inferdf.Sign
	predicate inferdf.Id
	object    inferdf.Id
}

func resourceNode(id inferdf.Id) node {
	return node{isResource: true, resource: id}
}

func tripleNode(subject inferdf.Id, sign inferdf.Sign, predicate, object inferdf.Id) node {
	return node{subject: subject, sign: sign, predicate: predicate, object: object}
}

// classGraph is the adjacency list built from every anonymous resource's
// outgoing triples.
type classGraph struct {
	vertices []node
	adj      map[node][]node
}

// buildGraph scans interp for anonymous resources and, for each, every
// triple in ds (default graph and every named graph) with that resource as
// subject, building the Resource/Triple bipartite graph the SCC
// decomposition then runs over.
func buildGraph(interp *interpretation.Interpretation, ds *dataset.Dataset) *classGraph {
	g := &classGraph{adj: make(map[node][]node)}

	graphs := make([]*dataset.Graph, 0, 1+len(ds.NamedGraphs))
	graphs = append(graphs, ds.DefaultGraph)
	for _, gr := range ds.NamedGraphs {
		graphs = append(graphs, gr)
	}

	interp.Iter(func(id inferdf.Id, r *interpretation.Resource) bool {
		if !r.IsAnonymous() {
			return true
		}
		rn := resourceNode(id)
		g.vertices = append(g.vertices, rn)
		if _, ok := g.adj[rn]; !ok {
			g.adj[rn] = nil
		}

		p := pattern.FromOptionTriple(&id, nil, nil)
		for _, gr := range graphs {
			m := gr.Matching(p)
			for {
				_, f, ok := m.Next()
				if !ok {
					break
				}
				tn := tripleNode(id, f.Sign, f.Triple.Predicate, f.Triple.Object)
				g.vertices = append(g.vertices, tn)
				g.adj[rn] = append(g.adj[rn], tn)
				g.adj[tn] = append(g.adj[tn], resourceNode(f.Triple.Predicate), resourceNode(f.Triple.Object))
			}
		}
		return true
	})

	return g
}

// tarjanSCC decomposes g into strongly connected components, returned in
// reverse-topological order (a component's condensation successors always
// appear before it), matching Tarjan's algorithm's natural emission order.
// A from-scratch implementation of the textbook algorithm; see DESIGN.md
// for why no graph library serves this.
func tarjanSCC(g *classGraph) (comps [][]node, compOf map[node]int) {
	index := make(map[node]int)
	low := make(map[node]int)
	onStack := make(map[node]bool)
	var stack []node
	compOf = make(map[node]int)
	next := 0

	var strongconnect func(v node)
	strongconnect = func(v node) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.adj[v] {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var comp []node
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			for _, w := range comp {
				compOf[w] = len(comps)
			}
			comps = append(comps, comp)
		}
	}

	for _, v := range g.vertices {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}

	return comps, compOf
}

// computeDepths assigns each component its dependency depth, counted
// over the anonymous resources only: a component with no
// anonymous-resource dependencies below it is depth 0, and each
// anonymous-resource component on a dependency path adds one. Triple nodes
// and named resources pass their successors' depth through without adding
// a layer; they are plumbing of the graph encoding, not classifiable
// entities, and layer monotonicity (a class at layer l depends only on
// classes at layers < l) is a statement about classes alone. Because Tarjan
// above already emits components in reverse-topological order, every
// successor component of comps[i] has index < i, so a single forward pass
// suffices, with no recursion needed.
//
// reflexive[i] reports whether component i contains more than one node,
// or a single node with a self-loop.
func computeDepths(interp *interpretation.Interpretation, g *classGraph, comps [][]node, compOf map[node]int) (depth []int, reflexive []bool) {
	depth = make([]int, len(comps))
	reflexive = make([]bool, len(comps))

	anon := make([]bool, len(comps))
	for i, comp := range comps {
		for _, v := range comp {
			if v.isResource && isAnonymous(interp, v.resource) {
				anon[i] = true
				break
			}
		}
	}

	for i, comp := range comps {
		reflexive[i] = len(comp) > 1

		max := 0
		for _, v := range comp {
			for _, w := range g.adj[v] {
				j := compOf[w]
				if j == i {
					reflexive[i] = true
					continue
				}
				d := depth[j]
				if anon[j] {
					d++
				}
				if d > max {
					max = d
				}
			}
		}
		depth[i] = max
	}

	return depth, reflexive
}

func isAnonymous(interp *interpretation.Interpretation, id inferdf.Id) bool {
	r, ok := interp.Get(id)
	return ok && r.IsAnonymous()
}

// anonymousIds returns the anonymous resource ids in comp, ascending.
// Named resources reached as successors (and the triple nodes themselves)
// are part of the SCC decomposition but are never classified.
func anonymousIds(interp *interpretation.Interpretation, comp []node) []inferdf.Id {
	var ids []inferdf.Id
	for _, v := range comp {
		if v.isResource && isAnonymous(interp, v.resource) {
			ids = append(ids, v.resource)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

