package classify

import (
	"sort"

	"github.com/rdfkit/inferdf/pkg/dataset"
	"github.com/rdfkit/inferdf/pkg/inferdf"
	"github.com/rdfkit/inferdf/pkg/interpretation"
)

// Classify runs the structural classification pass over a finished local
// interpretation and its dataset: every anonymous resource is placed
// in a strongly connected component of the graph formed by its outgoing
// triples, components are processed leaves-first by dependency depth, and
// each component's canonical Description is interned into that depth's
// Layer, so that structurally identical anonymous subgraphs (wherever
// they occur, and regardless of which module produced them) end up with
// equal Class values.
//
// The graph construction, SCC decomposition and canonical labelling are
// split out into graph.go and canonical.go.
func Classify(interp *interpretation.Interpretation, ds *dataset.Dataset) *Classification {
	classes := make(map[inferdf.Id]Class)

	g := buildGraph(interp, ds)
	if len(g.vertices) == 0 {
		return &Classification{Classes: classes}
	}

	comps, compOf := tarjanSCC(g)
	depth, reflexive := computeDepths(interp, g, comps, compOf)

	maxDepth := 0
	for _, d := range depth {
		if d > maxDepth {
			maxDepth = d
		}
	}

	layers := make([]Layer, maxDepth+1)

	for layerIdx := 0; layerIdx <= maxDepth; layerIdx++ {
		lb := &layerBuilder{}
		type pendingClass struct {
			id          inferdf.Id
			localGroup  int
			member      uint32
		}
		var pending []pendingClass

		for ci, comp := range comps {
			if depth[ci] != layerIdx {
				continue
			}
			ids := anonymousIds(interp, comp)
			if len(ids) == 0 {
				// Triple nodes and named successor resources get components
				// of their own in the decomposition; only anonymous
				// resources are classified.
				continue
			}

			if !reflexive[ci] {
				id := ids[0]
				desc := computeNonReflexive(id, g, interp, classes)
				localGroup := lb.add(desc)
				pending = append(pending, pendingClass{id: id, localGroup: localGroup, member: 0})
				continue
			}

			desc, order := computeReflexive(ids, g, interp, classes)
			localGroup := lb.add(desc)
			for finalIdx, origIdx := range order {
				pending = append(pending, pendingClass{id: ids[origIdx], localGroup: localGroup, member: uint32(finalIdx)})
			}
		}

		substitution := lb.sortAndSubstitute()
		for _, pc := range pending {
			classes[pc.id] = Class{
				Group:  GroupId{Layer: uint32(layerIdx), Index: uint32(substitution[pc.localGroup])},
				Member: pc.member,
			}
		}
		layers[layerIdx] = Layer{Groups: lb.list}
	}

	return &Classification{Layers: layers, Classes: classes}
}

// layerBuilder interns group descriptions within one layer, deduplicating
// by value (two independent isomorphic components collapse to one group)
// and only fixing final sorted indices once every component in the layer
// has been seen.
type layerBuilder struct {
	list []Description
}

// add interns d, returning its (possibly pre-existing) local index.
func (lb *layerBuilder) add(d Description) int {
	for i, existing := range lb.list {
		if compareDescription(existing, d) == 0 {
			return i
		}
	}
	lb.list = append(lb.list, d)
	return len(lb.list) - 1
}

// sortAndSubstitute sorts the interned descriptions ascending and returns
// the local-index -> final-index substitution; a layer's GroupId indices
// always follow the sorted order of their descriptions.
func (lb *layerBuilder) sortAndSubstitute() []int {
	order := make([]int, len(lb.list))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return compareDescription(lb.list[order[a]], lb.list[order[b]]) < 0
	})

	substitution := make([]int, len(lb.list))
	sorted := make([]Description, len(lb.list))
	for finalIdx, localIdx := range order {
		substitution[localIdx] = finalIdx
		sorted[finalIdx] = lb.list[localIdx]
	}
	lb.list = sorted
	return substitution
}

// computeNonReflexive builds the (single-member) Description of a
// component with no internal cycle: just the resource's own sorted
// bindings, each reference resolved against already-classified (strictly
// lower-layer) resources or named terms.
func computeNonReflexive(id inferdf.Id, g *classGraph, interp *interpretation.Interpretation, classes map[inferdf.Id]Class) Description {
	bindings := bindingsOf(id, g, interp, classes, nil)
	return Description{Members: []Member{{Properties: bindings}}}
}

// computeReflexive builds the Description of a mutually recursive
// component: each member's bindings, with references to a sibling member
// expressed as Group(j) using ids's order, then canonicalized so the
// member order (and therefore which j) no longer depends on the arbitrary
// order the SCC decomposition happened to produce.
func computeReflexive(ids []inferdf.Id, g *classGraph, interp *interpretation.Interpretation, classes map[inferdf.Id]Class) (Description, []int) {
	local := make(map[inferdf.Id]int, len(ids))
	for i, id := range ids {
		local[id] = i
	}

	members := make([]Member, len(ids))
	for i, id := range ids {
		members[i] = Member{Properties: bindingsOf(id, g, interp, classes, local)}
	}

	return canonicalize(members)
}

// bindingsOf collects id's sorted (sign, predicate, object) bindings,
// resolving each predicate/object against local (siblings of the same
// reflexive component being built, or nil for a non-reflexive component),
// already-classified anonymous resources, or plain named resources.
func bindingsOf(id inferdf.Id, g *classGraph, interp *interpretation.Interpretation, classes map[inferdf.Id]Class, local map[inferdf.Id]int) []Binding {
	var bindings []Binding
	for _, w := range g.adj[resourceNode(id)] {
		if w.isResource {
			continue
		}
		bindings = append(bindings, Binding{
			Sign: w.sign,
			A:    resolveRef(interp, classes, local, w.predicate),
			B:    resolveRef(interp, classes, local, w.object),
		})
	}
	sortBindings(bindings)
	return bindings
}

func resolveRef(interp *interpretation.Interpretation, classes map[inferdf.Id]Class, local map[inferdf.Id]int, target inferdf.Id) Reference {
	if local != nil {
		if j, ok := local[target]; ok {
			return GroupRef(uint32(j))
		}
	}
	if r, ok := interp.Get(target); ok && r.IsAnonymous() {
		if c, ok := classes[target]; ok {
			return ClassRef(c)
		}
		// Layer monotonicity guarantees any anonymous dependency is
		// already classified by the time its dependent's layer is processed;
		// this fallback only guards against that invariant being violated.
		return SingletonRef(target)
	}
	return SingletonRef(target)
}
