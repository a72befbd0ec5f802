package pattern

import "github.com/rdfkit/inferdf/pkg/inferdf"

// Map indexes values of type V by the canonical pattern shape they were
// registered under, and answers "which values were registered under a
// shape that t could instantiate" without scanning every registered
// pattern: every distinct Canonical is its own bucket, and Get enumerates
// the (small, fixed) set of shapes a concrete triple could have come from,
// in place of a multi-level trie keyed per position.
type Map[V comparable] struct {
	buckets map[Canonical]map[V]struct{}
}

// NewMap returns an empty pattern map.
func NewMap[V comparable]() *Map[V] {
	return &Map[V]{buckets: make(map[Canonical]map[V]struct{})}
}

// Insert registers value under pattern's canonical shape. Returns whether
// value was newly added (false if already present under that shape).
func (m *Map[V]) Insert(pattern Canonical, value V) bool {
	b, ok := m.buckets[pattern]
	if !ok {
		b = make(map[V]struct{})
		m.buckets[pattern] = b
	}
	if _, exists := b[value]; exists {
		return false
	}
	b[value] = struct{}{}
	return true
}

func (m *Map[V]) add(c Canonical, out *[]V, seen map[V]struct{}) {
	for v := range m.buckets[c] {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			*out = append(*out, v)
		}
	}
}

// Get returns every value registered under a shape that t instantiates.
func (m *Map[V]) Get(t inferdf.Triple) []V {
	var out []V
	seen := make(map[V]struct{})

	// subject: any, predicate: any
	m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateAny, ObjectKind: ObjectAny}, &out, seen)
	if t.Subject == t.Object {
		m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateAny, ObjectKind: ObjectSameAsSubject}, &out, seen)
	}
	if t.Predicate == t.Object {
		m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateAny, ObjectKind: ObjectSameAsPredicate}, &out, seen)
	}
	m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateAny, ObjectKind: ObjectGiven, ObjectId: t.Object}, &out, seen)

	// subject: any, predicate: same as subject
	if t.Predicate == t.Subject {
		m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateSameAsSubject, ObjectKind: ObjectAny}, &out, seen)
		if t.Subject == t.Object {
			m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateSameAsSubject, ObjectKind: ObjectSameAsSubject}, &out, seen)
		}
		m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateSameAsSubject, ObjectKind: ObjectGiven, ObjectId: t.Object}, &out, seen)
	}

	// subject: any, predicate: given
	m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateGiven, PredicateId: t.Predicate, ObjectKind: ObjectAny}, &out, seen)
	if t.Subject == t.Object {
		m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateGiven, PredicateId: t.Predicate, ObjectKind: ObjectSameAsSubject}, &out, seen)
	}
	m.add(Canonical{SubjectKind: SubjectAny, PredicateKind: PredicateGiven, PredicateId: t.Predicate, ObjectKind: ObjectGiven, ObjectId: t.Object}, &out, seen)

	// subject: given, predicate: any
	m.add(Canonical{SubjectKind: SubjectGiven, SubjectId: t.Subject, PredicateKind: PredicateAny, ObjectKind: ObjectAny}, &out, seen)
	if t.Predicate == t.Object {
		m.add(Canonical{SubjectKind: SubjectGiven, SubjectId: t.Subject, PredicateKind: PredicateAny, ObjectKind: ObjectSameAsPredicate}, &out, seen)
	}
	m.add(Canonical{SubjectKind: SubjectGiven, SubjectId: t.Subject, PredicateKind: PredicateAny, ObjectKind: ObjectGiven, ObjectId: t.Object}, &out, seen)

	// subject: given, predicate: given
	m.add(Canonical{SubjectKind: SubjectGiven, SubjectId: t.Subject, PredicateKind: PredicateGiven, PredicateId: t.Predicate, ObjectKind: ObjectAny}, &out, seen)
	m.add(Canonical{SubjectKind: SubjectGiven, SubjectId: t.Subject, PredicateKind: PredicateGiven, PredicateId: t.Predicate, ObjectKind: ObjectGiven, ObjectId: t.Object}, &out, seen)

	return out
}

// ReplaceId rewrites every given id equal to from, across every bucket key
// and the ids embedded in patterns themselves, to to. Used when the
// interpretation merges two resources and the rule dispatch index
// must stop distinguishing them.
func (m *Map[V]) ReplaceId(to, from inferdf.Id) {
	replaced := make(map[Canonical]map[V]struct{}, len(m.buckets))
	for c, values := range m.buckets {
		if c.SubjectKind == SubjectGiven && c.SubjectId == from {
			c.SubjectId = to
		}
		if c.PredicateKind == PredicateGiven && c.PredicateId == from {
			c.PredicateId = to
		}
		if c.ObjectKind == ObjectGiven && c.ObjectId == from {
			c.ObjectId = to
		}
		dst, ok := replaced[c]
		if !ok {
			dst = make(map[V]struct{}, len(values))
			replaced[c] = dst
		}
		for v := range values {
			dst[v] = struct{}{}
		}
	}
	m.buckets = replaced
}

// Bipolar is a pair of maps, one per Sign, sharing a value type. It is the
// index the inference engine uses to find which rule hypothesis atoms a
// freshly derived signed triple could satisfy.
type Bipolar[V comparable] struct {
	positive *Map[V]
	negative *Map[V]
}

// NewBipolar returns an empty bipolar pattern map.
func NewBipolar[V comparable]() *Bipolar[V] {
	return &Bipolar[V]{positive: NewMap[V](), negative: NewMap[V]()}
}

func (b *Bipolar[V]) side(sign inferdf.Sign) *Map[V] {
	if sign == inferdf.Positive {
		return b.positive
	}
	return b.negative
}

// Insert registers value under pattern's shape on the given sign's side.
func (b *Bipolar[V]) Insert(pattern inferdf.Signed[Canonical], value V) bool {
	return b.side(pattern.Sign).Insert(pattern.Value, value)
}

// Get returns every value registered for t's shape on the matching sign's
// side.
func (b *Bipolar[V]) Get(t inferdf.Signed[inferdf.Triple]) []V {
	return b.side(t.Sign).Get(t.Value)
}

// ReplaceId rewrites from to to on both sides.
func (b *Bipolar[V]) ReplaceId(to, from inferdf.Id) {
	b.positive.ReplaceId(to, from)
	b.negative.ReplaceId(to, from)
}
