package inferdf

// Triple is an ordered (subject, predicate, object) of resource ids.
type Triple struct {
	Subject   Id
	Predicate Id
	Object    Id
}

// NewTriple constructs a Triple.
func NewTriple(s, p, o Id) Triple {
	return Triple{Subject: s, Predicate: p, Object: o}
}

// WithGraph turns the triple into a Quad in the given (possibly default)
// graph.
func (t Triple) WithGraph(g *Id) Quad {
	return Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object, Graph: g}
}

// ReplaceId rewrites every occurrence of `from` into `to` in place.
func (t *Triple) ReplaceId(to, from Id) {
	if t.Subject == from {
		t.Subject = to
	}
	if t.Predicate == from {
		t.Predicate = to
	}
	if t.Object == from {
		t.Object = to
	}
}

// Quad adds an optional named-graph id to a Triple. A nil Graph denotes the
// default graph.
type Quad struct {
	Subject   Id
	Predicate Id
	Object    Id
	Graph     *Id
}

// NewQuad constructs a Quad.
func NewQuad(s, p, o Id, g *Id) Quad {
	return Quad{Subject: s, Predicate: p, Object: o, Graph: g}
}

// SplitGraph decomposes the quad into its triple and the graph it belongs
// to.
func (q Quad) SplitGraph() (Triple, *Id) {
	return Triple{Subject: q.Subject, Predicate: q.Predicate, Object: q.Object}, q.Graph
}

// Triple discards the graph component.
func (q Quad) Triple() Triple {
	t, _ := q.SplitGraph()
	return t
}

// ReplaceId rewrites every occurrence of `from` into `to` in place,
// including the graph component if present.
func (q *Quad) ReplaceId(to, from Id) {
	if q.Subject == from {
		q.Subject = to
	}
	if q.Predicate == from {
		q.Predicate = to
	}
	if q.Object == from {
		q.Object = to
	}
	if q.Graph != nil && *q.Graph == from {
		*q.Graph = to
	}
}

// ReplaceId is implemented by any value whose embedded ids may need
// rewriting after an interpretation merge.
type ReplaceIder interface {
	ReplaceId(to, from Id)
}
